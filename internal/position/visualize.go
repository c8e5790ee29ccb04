// This file contains visualization tools for inspecting nested offset ranges.
package position

import (
	"fmt"
	"strings"
)

// SpanRow is one labelled line of a span chart.
type SpanRow struct {
	Label string
	Span  Span
	Depth int
}

// SpanChart renders offset spans as ASCII bars scaled to a fixed width.
type SpanChart struct {
	Width  int
	Extent Span
}

// NewSpanChart creates a chart covering extent.
func NewSpanChart(extent Span, width int) *SpanChart {
	if width < 8 {
		width = 8
	}
	return &SpanChart{Width: width, Extent: extent}
}

// column maps an offset to a chart column.
func (c *SpanChart) column(offset uint64) int {
	total := c.Extent.Len()
	if total == 0 {
		return 0
	}
	if offset <= c.Extent.Start {
		return 0
	}
	if offset >= c.Extent.End {
		return c.Width
	}
	return int((offset - c.Extent.Start) * uint64(c.Width) / total)
}

// Render returns one line per row, indented by depth.
func (c *SpanChart) Render(rows []SpanRow) string {
	labelWidth := 0
	for _, r := range rows {
		if n := len(r.Label) + 2*r.Depth; n > labelWidth {
			labelWidth = n
		}
	}

	var b strings.Builder
	for _, r := range rows {
		label := strings.Repeat("  ", r.Depth) + r.Label
		from := c.column(r.Span.Start)
		to := c.column(r.Span.End)
		if to <= from {
			// Single offsets still get a visible mark.
			to = from + 1
			if to > c.Width {
				from, to = c.Width-1, c.Width
			}
		}
		bar := strings.Repeat(" ", from) + strings.Repeat("=", to-from) + strings.Repeat(" ", c.Width-to)
		fmt.Fprintf(&b, "%-*s |%s| %s\n", labelWidth, label, bar, r.Span)
	}
	return b.String()
}
