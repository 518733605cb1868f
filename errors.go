package wikimelt

import (
	"errors"

	"github.com/tsawler/wikimelt/classify"
	"github.com/tsawler/wikimelt/fetch"
	"github.com/tsawler/wikimelt/htmldoc"
	"github.com/tsawler/wikimelt/model"
	"github.com/tsawler/wikimelt/pipeline"
	"github.com/tsawler/wikimelt/targets"
)

var (
	// ErrNoSource is returned when an Extractor has nothing to read.
	ErrNoSource = errors.New("no input specified")

	// ErrEmptyResult is returned when no table produced a record.
	ErrEmptyResult = pipeline.ErrEmptyResult

	// ErrNoIdentifierColumn marks a table skipped for lack of an
	// identifier column.
	ErrNoIdentifierColumn = classify.ErrNoIdentifierColumn

	// ErrEmptyTargets is returned for an empty target identifier list.
	ErrEmptyTargets = targets.ErrEmptyTargets
)

type (
	// DocumentParseError reports input that could not be parsed at all.
	DocumentParseError = htmldoc.DocumentParseError

	// TableParseError reports one table that could not be parsed.
	TableParseError = htmldoc.TableParseError

	// RetrievalError reports a failed fetch.
	RetrievalError = fetch.RetrievalError

	Record  = model.Record
	Dataset = model.Dataset
	Report  = pipeline.Report
)
