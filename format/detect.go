// Package format detects whether an input is a raw HTML page or a MediaWiki
// Parse API response.
package format

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format represents a supported input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// HTML indicates a rendered HTML page or fragment.
	HTML
	// ParseAPI indicates a MediaWiki action=parse JSON response.
	ParseAPI
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case HTML:
		return "HTML"
	case ParseAPI:
		return "ParseAPI"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case HTML:
		return ".html"
	case ParseAPI:
		return ".json"
	default:
		return ""
	}
}

// Detect determines the format from the filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm", ".xhtml":
		return HTML
	case ".json":
		return ParseAPI
	default:
		return Unknown
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectContent inspects the first non-space byte: '{' is a Parse API
// response and '<' is HTML.
func DetectContent(data []byte) Format {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return Unknown
	}

	switch data[0] {
	case '{':
		return ParseAPI
	case '<':
		return HTML
	default:
		return Unknown
	}
}

// Resolve prefers the extension and falls back to the content.
func Resolve(filename string, data []byte) Format {
	if f := Detect(filename); f != Unknown {
		return f
	}
	return DetectContent(data)
}
