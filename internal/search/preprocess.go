package search

import (
	"strings"
)

// PrepareSource tidies pasted study material before it is sent to the
// model. Markdown table rows are flattened into one line of cells joined by
// spaces, separator rows are dropped, surrounding whitespace is trimmed per
// line and runs of blank lines collapse to one.
func PrepareSource(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(text))
	blank := true // suppress leading blank lines

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				b.WriteByte('\n')
				blank = true
			}
			continue
		}
		if isTableRow(line) {
			cells, sep := tableCells(line)
			if sep || len(cells) == 0 {
				continue
			}
			line = strings.Join(cells, " ")
		}
		b.WriteString(line)
		b.WriteByte('\n')
		blank = false
	}
	return strings.TrimRight(b.String(), "\n")
}

func isTableRow(line string) bool {
	return len(line) > 1 && strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|")
}

// tableCells returns the non-empty cells of a row and whether the row is a
// header separator such as |---|:--:|.
func tableCells(line string) (cells []string, separator bool) {
	separator = true
	for _, c := range strings.Split(strings.Trim(line, "|"), "|") {
		cell := strings.TrimSpace(c)
		if strings.Trim(cell, ":- ") != "" {
			separator = false
		}
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells, separator
}
