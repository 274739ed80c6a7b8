package sim

import "math"

// MaxGridPoints bounds the length of a fixed-step grid.
const MaxGridPoints = 1 << 24

// gridSlack absorbs quotients such as 0.3/0.1 = 2.9999999999999996 that
// land just below an integer.
const gridSlack = 1e-9

// GridPoints returns floor((tf-t0)/h)+1 as a float64 so that it can be
// range checked before conversion. It is at least 1.
func GridPoints(t0, tf, h float64) float64 {
	n := math.Floor((tf-t0)/h+gridSlack) + 1
	if !(n >= 1) {
		return 1
	}
	return n
}

// Grid returns floor((tf-t0)/h)+1 evenly spaced points from t0 to tf, both
// ends included. The spacing equals h only when h divides the span.
// Counts above MaxGridPoints are clamped; the driver rejects them before
// calling Grid.
func Grid(t0, tf, h float64) []float64 {
	n := int(math.Min(GridPoints(t0, tf, h), MaxGridPoints))

	grid := make([]float64, n)
	if n == 1 {
		grid[0] = t0
		return grid
	}

	step := (tf - t0) / float64(n-1)
	for i := range grid {
		grid[i] = t0 + float64(i)*step
	}
	grid[n-1] = tf
	return grid
}
