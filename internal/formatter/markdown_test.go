package formatter

import (
	"strings"
	"testing"
)

func TestFormatTables(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "Basic table formatting",
			input: `
| Header 1 | Header 2 |
| --- | --- |
| val 1 | val 2 |
`,
			expected: `
| Header 1 | Header 2 |
| -------- | -------- |
| val 1    | val 2    |
`,
		},
		{
			name: "Fix excessive dashes",
			input: `
| Col A | Col B |
| ---------------------- | ---------------------------------- |
| A | B |
`,
			expected: `
| Col A | Col B |
| ----- | ----- |
| A     | B     |
`,
		},
		{
			name: "Keep alignment markers",
			input: `
| Left | Center | Right |
| :--- | :----: | ----: |
| a | b | c |
`,
			expected: `
| Left | Center | Right |
| :--- | :----: | ----: |
| a    | b      | c     |
`,
		},
		{
			name: "Mixed content",
			input: `
# Title

| H1 | H2 |
| -- | -- |
| v1 | v2 |

Text after table.
`,
			expected: `
# Title

| H1  | H2  |
| --- | --- |
| v1  | v2  |

Text after table.
`,
		},
		{
			name: "Mixed CJK and ASCII",
			input: `
| Date | Event |
| --- | --- |
| 2025-01-01 | 消防處：增至83死。 |
| 2025-01-02 | Short text |
`,
			// Eight double-width characters plus two digits: 18 columns.
			expected: `
| Date       | Event              |
| ---------- | ------------------ |
| 2025-01-01 | 消防處：增至83死。 |
| 2025-01-02 | Short text         |
`,
		},
		{
			name: "Ragged rows are padded",
			input: `
| A | B | C |
| --- | --- | --- |
| 1 |
`,
			expected: `
| A   | B   | C   |
| --- | --- | --- |
| 1   |     |     |
`,
		},
		{
			name: "No separator row is left alone",
			input: `
| not | a table |
| just | pipes |
`,
			expected: `
| not | a table |
| just | pipes |
`,
		},
		{
			name: "Tables in code fences are untouched",
			input: "```md\n| a | b |\n| - | - |\n```\n\n| x | y |\n| --- | --- |",
			expected: "```md\n| a | b |\n| - | - |\n```\n\n| x   | y   |\n| --- | --- |",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatTables(strings.TrimSpace(tt.input))

			if strings.TrimSpace(got) != strings.TrimSpace(tt.expected) {
				t.Errorf("FormatTables() = \n%v\nwant \n%v", got, tt.expected)
			}
		})
	}
}

func TestFormatTables_Idempotent(t *testing.T) {
	input := "| a | bb |\n|:-|-:|\n| ccc | d |"

	once := FormatTables(input)
	if twice := FormatTables(once); twice != once {
		t.Errorf("second pass changed output:\n%s\n---\n%s", once, twice)
	}
}
