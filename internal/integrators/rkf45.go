package integrators

// Runge-Kutta-Fehlberg 4(5).
var fehlberg = &tableau{
	c: []float64{0, 1.0 / 4.0, 3.0 / 8.0, 12.0 / 13.0, 1, 1.0 / 2.0},
	a: [][]float64{
		{},
		{1.0 / 4.0},
		{3.0 / 32.0, 9.0 / 32.0},
		{1932.0 / 2197.0, -7200.0 / 2197.0, 7296.0 / 2197.0},
		{439.0 / 216.0, -8.0, 3680.0 / 513.0, -845.0 / 4104.0},
		{-8.0 / 27.0, 2.0, -3544.0 / 2565.0, 1859.0 / 4104.0, -11.0 / 40.0},
	},
	high: []float64{16.0 / 135.0, 0, 6656.0 / 12825.0, 28561.0 / 56430.0, -9.0 / 50.0, 2.0 / 55.0},
	low:  []float64{25.0 / 216.0, 0, 1408.0 / 2565.0, 2197.0 / 4104.0, -1.0 / 5.0, 0},
}

// RKF45 is the six-stage Fehlberg pair. The fifth-order solution is
// propagated and the fourth-order one only feeds the error estimate.
type RKF45 struct {
	*embedded
}

// NewRKF45 returns an RKF45 stepper with local tolerance tol. A
// non-positive tol selects dynamo.DefaultAdaptiveTol.
func NewRKF45(tol float64) *RKF45 {
	return &RKF45{embedded: newEmbedded(fehlberg, tol)}
}
