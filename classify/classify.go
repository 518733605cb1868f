// Package classify decides which column of a table holds the identifiers.
//
// Every column is scored on its content, not its header:
//
//	score = hits*weight + shape
//
// where hits counts cells whose folded form is a target identifier and shape
// counts cells whose folded length lies in [MinLength, MaxLength]. The
// highest score wins; ties go to the leftmost column.
package classify

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/tsawler/wikimelt/model"
	"github.com/tsawler/wikimelt/textnorm"
)

// ErrNoIdentifierColumn is returned when no column scores above zero.
var ErrNoIdentifierColumn = errors.New("no identifier column found")

// Targets is the membership test the classifier needs.
type Targets interface {
	ContainsFolded(folded string) bool
}

// Config holds the heuristic's constants.
type Config struct {
	// HitWeight multiplies the hit count. It must exceed any shape score
	// a column can reach, so that one hit outranks any number of
	// plausible-looking cells. Tables with more rows than HitWeight are
	// scored with a weight of rows+1.
	HitWeight int

	// MinLength and MaxLength bound, in runes and inclusive, the folded
	// length of a cell that looks like a short identifying label.
	MinLength int
	MaxLength int
}

// DefaultConfig returns weight 1000 and a 3-30 rune label length.
func DefaultConfig() Config {
	return Config{
		HitWeight: 1000,
		MinLength: 3,
		MaxLength: 30,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.HitWeight <= 0 {
		return fmt.Errorf("hit weight must be positive, got %d", c.HitWeight)
	}
	if c.MinLength <= 0 {
		return fmt.Errorf("min length must be positive, got %d", c.MinLength)
	}
	if c.MaxLength < c.MinLength {
		return fmt.Errorf("max length %d is below min length %d", c.MaxLength, c.MinLength)
	}
	return nil
}

// ColumnScore is the evaluation of one column.
type ColumnScore struct {
	Index int
	Label string
	Hits  int
	Shape int
	Score int
}

// Classifier scores table columns. It holds no mutable state and is safe for
// concurrent use.
type Classifier struct {
	cfg Config
}

// New returns a classifier for cfg. Zero fields take their default values.
func New(cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.HitWeight == 0 {
		cfg.HitWeight = def.HitWeight
	}
	if cfg.MinLength == 0 {
		cfg.MinLength = def.MinLength
	}
	if cfg.MaxLength == 0 {
		cfg.MaxLength = def.MaxLength
	}
	return &Classifier{cfg: cfg}
}

// Config returns the classifier's effective configuration.
func (c *Classifier) Config() Config {
	return c.cfg
}

// Score evaluates every column of table, left to right, over its data rows.
func (c *Classifier) Score(table *model.Table, targets Targets) []ColumnScore {
	if table == nil {
		return nil
	}

	weight := c.cfg.HitWeight
	if rows := table.RowCount(); weight <= rows {
		weight = rows + 1
	}

	scores := make([]ColumnScore, 0, table.ColCount())
	for _, col := range table.Columns() {
		s := ColumnScore{Index: col.Index, Label: col.Label}
		for _, v := range col.Values {
			folded := textnorm.Fold(v)
			if targets.ContainsFolded(folded) {
				s.Hits++
			}
			if n := utf8.RuneCountInString(folded); n >= c.cfg.MinLength && n <= c.cfg.MaxLength {
				s.Shape++
			}
		}
		s.Score = s.Hits*weight + s.Shape
		scores = append(scores, s)
	}

	return scores
}

// Best returns the index of the highest-scoring column. A strict comparison
// in a left-to-right scan makes the leftmost column win ties.
func Best(scores []ColumnScore) (int, error) {
	best, bestScore := -1, 0
	for _, s := range scores {
		if s.Score > bestScore {
			best, bestScore = s.Index, s.Score
		}
	}
	if best < 0 {
		return -1, ErrNoIdentifierColumn
	}
	return best, nil
}

// Identify returns the index of table's identifier column, or
// ErrNoIdentifierColumn.
func (c *Classifier) Identify(table *model.Table, targets Targets) (int, error) {
	return Best(c.Score(table, targets))
}
