package shipcsv

import (
	"fmt"
	"os"
	"strings"
)

// newlines maps CRLF and lone CR terminators to "\n".
var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ReadLines loads the whole file and splits it into lines that keep their
// terminators. Line endings are normalized to "\n", so a CRLF file is written
// back with LF endings. A final line without a terminator is kept as is.
func ReadLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shipcsv: read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	lines := strings.SplitAfter(newlines.Replace(string(raw)), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// WriteLines overwrites path with the concatenated lines.
func WriteLines(path string, lines []string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("shipcsv: write %s: %w", path, err)
	}
	return nil
}
