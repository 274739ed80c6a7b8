package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

type PlotOptions struct {
	Height  int
	Width   int
	Caption string
}

func (o PlotOptions) withDefaults() PlotOptions {
	if o.Height <= 0 {
		o.Height = 15
	}
	if o.Width <= 0 {
		o.Width = 80
	}
	return o
}

// Plot charts the y values of tr. Non-finite samples are left as gaps.
func Plot(tr *dynamo.Trajectory, opts PlotOptions) string {
	return PlotMany([][]float64{tr.Y}, nil, opts)
}

// PlotMany overlays several series; legends may be nil. Series with no
// finite value are dropped, and an empty string is returned if none remain.
func PlotMany(series [][]float64, legends []string, opts PlotOptions) string {
	opts = opts.withDefaults()

	data := make([][]float64, 0, len(series))
	names := make([]string, 0, len(series))
	for i, s := range series {
		clean, ok := sanitize(s)
		if !ok {
			continue
		}
		data = append(data, clean)
		if i < len(legends) {
			names = append(names, legends[i])
		}
	}
	if len(data) == 0 {
		return ""
	}

	options := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.SeriesColors(seriesColors[:min(len(data), len(seriesColors))]...),
	}
	if opts.Caption != "" {
		options = append(options, asciigraph.Caption(opts.Caption))
	}
	if len(names) == len(data) && len(names) > 1 {
		options = append(options, asciigraph.SeriesLegends(names...))
	}

	return asciigraph.PlotMany(data, options...)
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Cyan,
	asciigraph.Magenta,
}

// sanitize maps ±Inf to NaN so asciigraph treats them as gaps, and
// reports whether any finite value is left.
func sanitize(s []float64) ([]float64, bool) {
	out := make([]float64, len(s))
	finite := false
	for i, v := range s {
		if dynamo.IsFinite(v) {
			out[i] = v
			finite = true
		} else {
			out[i] = math.NaN()
		}
	}
	return out, finite
}

// ExactSeries evaluates exact at every time of tr.
func ExactSeries(tr *dynamo.Trajectory, exact dynamo.Func) []float64 {
	out := make([]float64, tr.Len())
	for i, t := range tr.T {
		out[i] = exact(t)
	}
	return out
}
