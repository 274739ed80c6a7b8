package analysis

import (
	"math"
	"sort"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

// Interpolate evaluates tr at t by linear interpolation between the
// neighbouring samples. Outside the sampled range it returns NaN.
func Interpolate(tr *dynamo.Trajectory, t float64) float64 {
	n := tr.Len()
	if n == 0 || t < tr.T[0] || t > tr.T[n-1] {
		return math.NaN()
	}

	// first index with T[i] >= t
	i := sort.SearchFloat64s(tr.T, t)
	if tr.T[i] == t || i == 0 {
		return tr.Y[i]
	}

	t0, t1 := tr.T[i-1], tr.T[i]
	y0, y1 := tr.Y[i-1], tr.Y[i]
	if t1 == t0 {
		return y1
	}
	return y0 + (y1-y0)*(t-t0)/(t1-t0)
}

// DiffResult summarises the gap between two trajectories.
type DiffResult struct {
	MaxAbs   float64
	AtTime   float64
	RMS      float64
	Compared int
}

// Difference compares b against a at a's sample times, interpolating b
// where needed. Times outside b's range are skipped.
func Difference(a, b *dynamo.Trajectory) DiffResult {
	var (
		res   DiffResult
		sumSq float64
	)
	for i, t := range a.T {
		yb := Interpolate(b, t)
		if math.IsNaN(yb) || !dynamo.IsFinite(a.Y[i]) {
			continue
		}
		d := math.Abs(a.Y[i] - yb)
		if d > res.MaxAbs || res.Compared == 0 {
			res.MaxAbs, res.AtTime = d, t
		}
		sumSq += d * d
		res.Compared++
	}
	if res.Compared > 0 {
		res.RMS = math.Sqrt(sumSq / float64(res.Compared))
	}
	return res
}
