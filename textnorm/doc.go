// Package textnorm provides the two text forms used throughout wikimelt.
//
// # Display form
//
// [Clean] produces the text that is stored in records and shown to users.
// It strips Wikipedia rendering artifacts that are not part of the data:
//
//   - footnote and edit markers enclosed in square brackets ("[1]", "[editar]")
//   - non-breaking and narrow no-break spaces
//   - runs of whitespace, including leading and trailing whitespace
//
// # Search form
//
// [Fold] produces a key for equality and membership checks only. It applies
// [Clean], removes diacritics (compatibility decomposition followed by
// dropping combining marks) and lowercases the result:
//
//	textnorm.Fold("  México[3] ") // "mexico"
//	textnorm.Fold("ESPAÑA")       // "espana"
//
// Folded text is never written to a record.
//
// Both functions accept any value and never fail: values that are not strings
// are converted with fmt.Sprint, and nil becomes the empty string.
package textnorm
