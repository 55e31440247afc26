// Package formatter provides markdown formatting utilities.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// FormatTables aligns the columns of every pipe table in content, using
// display width so CJK text lines up. Tables inside fenced code blocks are
// left alone.
func FormatTables(content string) string {
	lines := strings.Split(content, "\n")

	var formattedLines []string

	var tableBuffer []string

	fence := ""

	flush := func() {
		if len(tableBuffer) > 0 {
			formattedLines = append(formattedLines, processTable(tableBuffer)...)
			tableBuffer = nil
		}
	}

	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)

		if marker := fenceMarker(trimmedLine); marker != "" {
			switch {
			case fence == "":
				flush()
				fence = marker
			case strings.HasPrefix(trimmedLine, fence):
				fence = ""
			}

			formattedLines = append(formattedLines, line)

			continue
		}

		if fence == "" && strings.HasPrefix(trimmedLine, "|") && strings.HasSuffix(trimmedLine, "|") && len(trimmedLine) > 1 {
			tableBuffer = append(tableBuffer, line)
			continue
		}

		flush()

		formattedLines = append(formattedLines, line)
	}

	flush()

	return strings.Join(formattedLines, "\n")
}

// fenceMarker returns the run of backticks or tildes opening a code fence.
func fenceMarker(trimmed string) string {
	for _, ch := range []string{"`", "~"} {
		if strings.HasPrefix(trimmed, ch+ch+ch) {
			n := len(trimmed) - len(strings.TrimLeft(trimmed, ch))
			return strings.Repeat(ch, n)
		}
	}

	return ""
}

type alignment int

const (
	alignNone alignment = iota
	alignLeft
	alignCenter
	alignRight
)

func splitRow(row string) []string {
	parts := strings.Split(strings.TrimSpace(row), "|")

	// Leading and trailing pipes leave empty strings at both ends.
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}

	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}

	return cells
}

// parseSeparator reports whether cells form a header separator row and the
// alignment of each column.
func parseSeparator(cells []string) ([]alignment, bool) {
	if len(cells) == 0 {
		return nil, false
	}

	aligns := make([]alignment, len(cells))

	for i, cell := range cells {
		left := strings.HasPrefix(cell, ":")
		right := strings.HasSuffix(cell, ":")

		dashes := strings.Trim(cell, ":")
		if dashes == "" || strings.Trim(dashes, "-") != "" {
			return nil, false
		}

		switch {
		case left && right:
			aligns[i] = alignCenter
		case right:
			aligns[i] = alignRight
		case left:
			aligns[i] = alignLeft
		}
	}

	return aligns, true
}

func processTable(rows []string) []string {
	// A header without separator is not a table we can format.
	if len(rows) < 2 {
		return rows
	}

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, splitRow(row))
	}

	aligns, ok := parseSeparator(table[1])
	if !ok {
		return rows
	}

	colCount := 0
	for _, row := range table {
		colCount = max(colCount, len(row))
	}

	colWidths := make([]int, colCount)

	for rIdx, row := range table {
		if rIdx == 1 {
			continue
		}

		for i, cell := range row {
			colWidths[i] = max(colWidths[i], runewidth.StringWidth(cell))
		}
	}

	// A separator needs at least three dashes.
	for i := range colWidths {
		colWidths[i] = max(colWidths[i], 3)
	}

	result := make([]string, 0, len(table))

	for rIdx, row := range table {
		var sb strings.Builder

		sb.WriteString("|")

		for j := range colCount {
			sb.WriteString(" ")

			var align alignment
			if j < len(aligns) {
				align = aligns[j]
			}

			if rIdx == 1 {
				sb.WriteString(separatorCell(colWidths[j], align))
			} else {
				content := ""
				if j < len(row) {
					content = row[j]
				}

				sb.WriteString(content)
				sb.WriteString(strings.Repeat(" ", colWidths[j]-runewidth.StringWidth(content)))
			}

			sb.WriteString(" |")
		}

		result = append(result, sb.String())
	}

	return result
}

func separatorCell(width int, align alignment) string {
	switch align {
	case alignLeft:
		return ":" + strings.Repeat("-", width-1)
	case alignRight:
		return strings.Repeat("-", width-1) + ":"
	case alignCenter:
		return ":" + strings.Repeat("-", width-2) + ":"
	default:
		return strings.Repeat("-", width)
	}
}
