package chart

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

const defaultWidth = 30

// Text draws datasets as horizontal bar charts on a terminal.
type Text struct {
	W     io.Writer
	Width int
}

// NewText returns a Text renderer writing to w.
func NewText(w io.Writer) *Text {
	return &Text{W: w, Width: defaultWidth}
}

func (t *Text) Render(ctx context.Context, ds Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	width := t.Width
	if width <= 0 {
		width = defaultWidth
	}

	var peak float64
	for _, s := range ds.Series {
		for _, v := range s.Values {
			if v > peak {
				peak = v
			}
		}
	}

	labelWidth := 0
	for _, l := range ds.Labels {
		labelWidth = max(labelWidth, len(l))
	}
	seriesWidth := 0
	if len(ds.Series) > 1 {
		for _, s := range ds.Series {
			seriesWidth = max(seriesWidth, len(s.Label))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", ds.Title)
	for i, label := range ds.Labels {
		for j, s := range ds.Series {
			if i >= len(s.Values) {
				continue
			}
			name := label
			if j > 0 {
				name = ""
			}
			v := s.Values[i]
			n := 0
			if peak > 0 {
				n = int(v / peak * float64(width))
			}
			fmt.Fprintf(&b, "  %-*s ", labelWidth, name)
			if seriesWidth > 0 {
				fmt.Fprintf(&b, "%-*s ", seriesWidth, s.Label)
			}
			fmt.Fprintf(&b, "%s %s\n", strings.Repeat("#", n), humanize.CommafWithDigits(v, 2))
		}
	}
	_, err := io.WriteString(t.W, b.String())
	return err
}
