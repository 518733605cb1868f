// Package model defines the data structures shared by every stage of the
// wikimelt pipeline.
//
// # Input
//
// A [Document] is the parsed form of one reference page. It holds the page's
// [Heading] values and its recognized data tables ([Table]) in document
// order, plus a [TableFailure] for every table that matched the table marker
// but could not be turned into a row/column grid. A Document is built once
// by the htmldoc package and is read-only afterwards.
//
// # Tables and columns
//
// A [Table] stores one flattened label per column in Header and the data
// rows in Rows. Rows are rectangular: every row has exactly len(Header)
// cells. A [Column] is a view over a Table returned by [Table.Column]; it is
// not stored independently.
//
// # Output
//
// A [Record] is one (Identifier, Attribute, Value) triple together with the
// index of the table it came from and the nearest preceding heading. A
// [Dataset] is the ordered, deduplicated collection of records produced by a
// single run.
package model
