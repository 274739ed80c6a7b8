package integrators_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/integrators"
)

type adaptiveMethod interface {
	dynamo.AdaptiveIntegrator
	Tolerance() float64
	Stages() int
}

var equations = map[string]dynamo.Derivative{
	"decay":  func(y, t float64) float64 { return -2 * y },
	"linear": func(y, t float64) float64 { return t + 3*y },
	"bump":   func(y, t float64) float64 { return (y - 1) * (y - 1) * (t - 1) * (t - 1) },
	"cosine": func(y, t float64) float64 { return math.Cos(t) },
}

var _ = Describe("Embedded Runge-Kutta methods", func() {
	methods := []struct {
		name  string
		build func(tol float64) adaptiveMethod
	}{
		{"rkf45", func(tol float64) adaptiveMethod { return integrators.NewRKF45(tol) }},
		{"dopri", func(tol float64) adaptiveMethod { return integrators.NewDormandPrince(tol) }},
	}

	for _, m := range methods {
		build := m.build

		Context(m.name, func() {
			var method adaptiveMethod

			BeforeEach(func() {
				method = build(1e-6)
			})

			It("should fall back to the default tolerance", func() {
				Expect(build(0).Tolerance()).To(Equal(dynamo.DefaultAdaptiveTol))
				Expect(build(-1).Tolerance()).To(Equal(dynamo.DefaultAdaptiveTol))
			})

			It("should accept only steps within tolerance and shrink h on rejection", func() {
				for eqName, f := range equations {
					for _, h := range []float64{1.0, 0.5, 0.1, 0.01} {
						for _, t0 := range []float64{0, 0.9, 2} {
							res := method.StepAdaptive(f, 0.5, t0, h)
							if res.Accepted {
								Expect(res.Err).To(BeNumerically("<=", method.Tolerance()), eqName)
							} else {
								Expect(res.Err).To(BeNumerically(">", method.Tolerance()), eqName)
								Expect(res.H).To(BeNumerically("<", h), eqName)
							}
							Expect(res.H).To(BeNumerically(">", 0), eqName)
						}
					}
				}
			})

			It("should grow h when the error is far below tolerance", func() {
				res := method.StepAdaptive(equations["decay"], 1, 0, 1e-3)
				Expect(res.Accepted).To(BeTrue())
				Expect(res.H).To(BeNumerically(">", 1e-3))
				Expect(res.H).To(BeNumerically("<=", 5e-3))
			})

			It("should bound the shrink factor", func() {
				res := method.StepAdaptive(equations["linear"], 1, 0, 10)
				Expect(res.Accepted).To(BeFalse())
				Expect(res.H).To(BeNumerically(">=", 10*0.2-1e-12))
			})

			It("should integrate exactly when the solution is a low-degree polynomial in t", func() {
				res := method.StepAdaptive(func(y, t float64) float64 { return 3 * t * t }, 0, 0, 1)
				Expect(res.Accepted).To(BeTrue())
				Expect(res.Y).To(BeNumerically("~", 1, 1e-12))
			})

			It("should propagate the higher-order estimate", func() {
				f := equations["decay"]
				res := method.StepAdaptive(f, 1, 0, 0.05)
				Expect(res.Accepted).To(BeTrue())
				Expect(math.Abs(res.Y - math.Exp(-0.1))).To(BeNumerically("<", 1e-8))
			})

			It("should reject a step that produced a non-finite value", func() {
				f := func(y, t float64) float64 { return math.Inf(1) }
				res := method.StepAdaptive(f, 1, 0, 0.1)
				Expect(res.Accepted).To(BeFalse())
				Expect(res.H).To(BeNumerically("<", 0.1))
			})

			It("should match the fixed-step entry point", func() {
				f := equations["cosine"]
				y, err := method.Step(f, 0, 0, 0.1)
				Expect(err).ToNot(HaveOccurred())
				Expect(y).To(Equal(method.StepAdaptive(f, 0, 0, 0.1).Y))
			})
		})
	}

	It("should use six and seven stages", func() {
		Expect(integrators.NewRKF45(0).Stages()).To(Equal(6))
		Expect(integrators.NewDormandPrince(0).Stages()).To(Equal(7))
	})
})
