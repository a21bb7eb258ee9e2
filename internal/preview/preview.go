// Package preview renders the head of a cleaned table as an aligned text
// table for the console.
package preview

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"salesclean/pkg/records"
)

// MissingText is shown for Missing cells. The written file leaves them empty.
const MissingText = "NaN"

// Options tunes the rendering. Zero values select defaults.
type Options struct {
	// MaxCellWidth truncates wider cells with "...". Zero means 40.
	MaxCellWidth int
}

// Write renders the first n rows of t to w. Columns are right-aligned by
// display width so wide runes line up, and a leading column carries the
// 0-based row index. An empty table prints its header and a row count.
func Write(w io.Writer, t *records.Table, n int, opt Options) error {
	if opt.MaxCellWidth <= 0 {
		opt.MaxCellWidth = 40
	}
	head := t.Head(n)
	layouts := t.DateLayouts()

	grid := make([][]string, 0, len(head)+1)
	grid = append(grid, append([]string{""}, t.Columns...))
	for i, r := range head {
		line := make([]string, 0, len(t.Columns)+1)
		line = append(line, strconv.Itoa(i))
		for j, s := range t.Strings(r, layouts) {
			if j >= len(r.Cells) || r.Cells[j].IsMissing() {
				s = MissingText
			}
			line = append(line, runewidth.Truncate(s, opt.MaxCellWidth, "..."))
		}
		grid = append(grid, line)
	}

	widths := make([]int, len(grid[0]))
	for _, line := range grid {
		for j, s := range line {
			if j < len(widths) {
				widths[j] = max(widths[j], runewidth.StringWidth(s))
			}
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		for j := range widths {
			if j > 0 {
				sb.WriteString("  ")
			}
			s := ""
			if j < len(line) {
				s = line[j]
			}
			sb.WriteString(strings.Repeat(" ", widths[j]-runewidth.StringWidth(s)))
			sb.WriteString(s)
		}
		sb.WriteString("\n")
	}
	if len(head) == 0 {
		fmt.Fprintf(&sb, "[0 rows x %d columns]\n", len(t.Columns))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
