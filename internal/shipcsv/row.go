// Package shipcsv reads and rewrites ship_visuals_database.csv rows.
//
// The file is not standard CSV: fields are never quoted and the last column
// holds a JSON array whose commas must not split the row. SplitRow only
// protects bracketed spans.
package shipcsv

import "strings"

// Kind classifies one physical line of the database file.
type Kind int

const (
	// KindPassthrough is a blank or comment line, written back verbatim.
	KindPassthrough Kind = iota
	// KindHeader is the column header row, written back verbatim.
	KindHeader
	// KindData is a ship row.
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindPassthrough:
		return "passthrough"
	case KindHeader:
		return "header"
	case KindData:
		return "data"
	}
	return "unknown"
}

// SplitRow splits a line on commas that are outside a [...] span.
// Brackets stay part of their field and are not depth counted, so a nested
// "]" ends the protected span early. A trailing "\n" or "\r\n" is removed
// from the last field.
func SplitRow(line string) []string {
	var (
		fields     []string
		cur        strings.Builder
		inBrackets bool
	)
	// Delimiters are ASCII; scanning bytes keeps invalid UTF-8 intact.
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '[':
			inBrackets = true
			cur.WriteByte(c)
		case c == ']':
			inBrackets = false
			cur.WriteByte(c)
		case c == ',' && !inBrackets:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	last := strings.TrimSuffix(cur.String(), "\n")
	return append(fields, strings.TrimSuffix(last, "\r"))
}

// Classify decides how a line is handled. Header and data lines are returned
// split; passthrough lines return nil fields.
func Classify(line string) (Kind, []string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, CommentPrefix) {
		return KindPassthrough, nil
	}
	fields := SplitRow(line)
	if strings.Contains(fields[ColShipID], HeaderLabel) {
		return KindHeader, fields
	}
	return KindData, fields
}

// Join rebuilds a row with a trailing newline.
func Join(fields []string) string {
	return strings.Join(fields, ",") + "\n"
}

// Pad appends empty fields until len(fields) >= n.
func Pad(fields []string, n int) []string {
	for len(fields) < n {
		fields = append(fields, "")
	}
	return fields
}

// ShipID returns the trimmed identifier of a split data row.
func ShipID(fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimSpace(fields[ColShipID])
}
