// Package parser splits delimited article lines into field values.
package parser

import (
	"strings"
	"unicode/utf8"
)

// Comma is the delimiter used by the article datasets.
const Comma = ','

const quote = '"'

// RecordFields is the number of fields an article line carries:
// title, text, subject, date.
const RecordFields = 4

// Fields holds the four record fields of one parsed line.
type Fields struct {
	Title   string
	Text    string
	Subject string
	Date    string
	// Segments is the number of delimiter-separated segments found on the line.
	Segments int
}

// Short reports whether the line had fewer segments than a record needs.
func (f Fields) Short() bool { return f.Segments < RecordFields }

// Extra returns the number of segments beyond the four record fields.
func (f Fields) Extra() int {
	if f.Segments <= RecordFields {
		return 0
	}
	return f.Segments - RecordFields
}

// Split segments line on delim. A quote character toggles a quoted span and
// is dropped from the output; delim only ends a field outside a quoted span.
// Whitespace and non-UTF-8 bytes are kept as is. An unterminated quote runs to the end of the line.
func Split(line string, delim rune) []string {
	line = strings.TrimSuffix(line, "\r")

	var (
		out      []string
		field    strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); {
		ch, size := utf8.DecodeRuneInString(line[i:])
		switch {
		case ch == quote:
			inQuotes = !inQuotes
		case ch == delim && !inQuotes:
			out = append(out, field.String())
			field.Reset()
		default:
			// Raw bytes, so invalid UTF-8 is stored untouched.
			field.WriteString(line[i : i+size])
		}
		i += size
	}
	return append(out, field.String())
}

// ParseRecord splits line and maps the first four segments onto Fields.
// Missing segments stay empty; surplus segments are counted but dropped.
func ParseRecord(line string, delim rune) Fields {
	parts := Split(line, delim)
	f := Fields{Segments: len(parts)}

	targets := [RecordFields]*string{&f.Title, &f.Text, &f.Subject, &f.Date}
	for i, p := range parts {
		if i == RecordFields {
			break
		}
		*targets[i] = p
	}
	return f
}
