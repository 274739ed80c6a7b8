package export

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

func TestWriteSVGDrawsOnePathPerSeries(t *testing.T) {
	a := &dynamo.Trajectory{T: []float64{0, 1, 2}, Y: []float64{0, 1, 4}}
	b := &dynamo.Trajectory{T: []float64{0, 1, 2}, Y: []float64{0, 1.1, 3.9}}

	var buf bytes.Buffer
	err := WriteSVG(&buf, []Series{{Name: "rk4", Data: a}, {Name: "exact <y>", Data: b}}, SVGOptions{Title: "t & y"})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Equal(t, 2, strings.Count(out, "<path"))
	assert.Contains(t, out, "exact &lt;y&gt;")
	assert.Contains(t, out, "t &amp; y")
	assert.Contains(t, out, `width="800"`)
}

func TestWriteSVGBreaksPathAtNonFinite(t *testing.T) {
	tr := &dynamo.Trajectory{
		T: []float64{0, 1, 2, 3},
		Y: []float64{1, math.Inf(1), 2, 3},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, []Series{{Data: tr}}, SVGOptions{Width: 100, Height: 50}))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, " M"), "expected a new subpath after the gap")
	assert.NotContains(t, out, "Inf")
	assert.NotContains(t, out, "NaN")
}

func TestWriteSVGRejectsEmptyData(t *testing.T) {
	tr := &dynamo.Trajectory{T: []float64{0}, Y: []float64{math.NaN()}}
	err := WriteSVG(&bytes.Buffer{}, []Series{{Data: tr}}, SVGOptions{})
	assert.Error(t, err)
}
