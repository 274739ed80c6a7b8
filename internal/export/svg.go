// Package export renders trajectories as standalone SVG line charts.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

// Series is one curve of a chart.
type Series struct {
	Name  string
	Color string
	Data  *dynamo.Trajectory
}

type SVGOptions struct {
	Width  int
	Height int
	Title  string
}

var palette = []string{"#00ff88", "#ff9900", "#44aaff", "#ff4477"}

// WriteSVG draws all series on shared axes. Non-finite samples break the
// path instead of ending it, so a solution that blows up and comes back
// stays visible on both sides.
func WriteSVG(w io.Writer, series []Series, opts SVGOptions) error {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 400
	}

	minX, maxX, minY, maxY, ok := bounds(series)
	if !ok {
		return fmt.Errorf("export: no finite samples to draw")
	}

	// 10% padding
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	width, height := float64(opts.Width), float64(opts.Height)
	project := func(t, y float64) (float64, float64) {
		return (t - minX) / rangeX * width, height - (y-minY)/rangeY*height
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Width, opts.Height, opts.Width, opts.Height)

	if opts.Title != "" {
		fmt.Fprintf(&sb, "<text x=\"10\" y=\"20\" fill=\"#cccccc\" font-family=\"monospace\" font-size=\"14\">%s</text>\n", escape(opts.Title))
	}

	for i, s := range series {
		color := s.Color
		if color == "" {
			color = palette[i%len(palette)]
		}

		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, color)
		pen := false
		for j := range s.Data.T {
			t, y := s.Data.T[j], s.Data.Y[j]
			if !dynamo.IsFinite(y) {
				pen = false
				continue
			}
			x, py := project(t, y)
			if pen {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, py)
			} else {
				fmt.Fprintf(&sb, " M%.1f,%.1f", x, py)
				pen = true
			}
		}
		sb.WriteString("\"/>\n")

		if s.Name != "" {
			fmt.Fprintf(&sb, "<text x=\"%d\" y=\"%d\" fill=\"%s\" font-family=\"monospace\" font-size=\"12\">%s</text>\n",
				opts.Width-120, 20+16*i, color, escape(s.Name))
		}
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func bounds(series []Series) (minX, maxX, minY, maxY float64, ok bool) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, s := range series {
		for j, y := range s.Data.Y {
			if !dynamo.IsFinite(y) {
				continue
			}
			t := s.Data.T[j]
			minX, maxX = math.Min(minX, t), math.Max(maxX, t)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
			ok = true
		}
	}
	return
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return escaper.Replace(s) }
