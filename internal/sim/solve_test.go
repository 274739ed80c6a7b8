package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/integrators"
	"github.com/san-kum/ivpsolve/internal/metrics"
	"github.com/san-kum/ivpsolve/internal/sim"
)

var _ = Describe("Solving initial value problems", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("fixed-step solvers", func() {
		linear := func(y, t float64) float64 { return t + 3*y }

		It("should return one value per grid point starting at y0", func() {
			ys, err := sim.SolveFixed(ctx, integrators.NewEuler(), linear, 1, dynamo.Span{T0: 0, Tf: 3}, 0.1)
			Expect(err).ToNot(HaveOccurred())
			Expect(ys).To(HaveLen(31))
			Expect(ys[0]).To(Equal(1.0))
			Expect(ys[1]).To(BeNumerically("~", 1.3, 1e-12))
		})

		It("should converge at fourth order with RK4", func() {
			f := func(y, t float64) float64 { return y * math.Cos(t) }
			exact := math.Exp(math.Sin(2))
			span := dynamo.Span{T0: 0, Tf: 2}

			coarse, err := sim.SolveFixed(ctx, integrators.NewRK4(), f, 1, span, 0.1)
			Expect(err).ToNot(HaveOccurred())
			fine, err := sim.SolveFixed(ctx, integrators.NewRK4(), f, 1, span, 0.05)
			Expect(err).ToNot(HaveOccurred())

			ratio := math.Abs(coarse[len(coarse)-1]-exact) / math.Abs(fine[len(fine)-1]-exact)
			Expect(ratio).To(BeNumerically("~", 16, 4))
		})

		It("should land on tf when h does not divide the span", func() {
			f := func(y, t float64) float64 { return -y }
			result, err := sim.New(integrators.NewRK4()).Run(ctx, f, 1, sim.Config{Span: dynamo.Span{T0: 0, Tf: 1}, H: 0.3})
			Expect(err).ToNot(HaveOccurred())

			last, y, _ := result.Final()
			Expect(last).To(Equal(1.0))
			Expect(y).To(BeNumerically("~", math.Exp(-1), 1e-3))
		})

		It("should reject a step too small to grid the span", func() {
			_, err := sim.SolveFixed(ctx, integrators.NewRK4(), linear, 1, dynamo.Span{T0: 0, Tf: 1}, 1e-300)
			Expect(err).To(MatchError(dynamo.ErrTooManySteps))
		})

		It("should keep backward euler bounded where forward euler diverges", func() {
			stiff := func(y, t float64) float64 { return -50 * y }
			span := dynamo.Span{T0: 0, Tf: 3}

			implicit, err := sim.SolveFixed(ctx, integrators.NewBackwardEuler(), stiff, 1, span, 0.1)
			Expect(err).ToNot(HaveOccurred())
			explicit, err := sim.SolveFixed(ctx, integrators.NewEuler(), stiff, 1, span, 0.1)
			Expect(err).ToNot(HaveOccurred())

			for i := 1; i < len(implicit); i++ {
				Expect(implicit[i]).To(BeNumerically(">=", 0))
				Expect(implicit[i]).To(BeNumerically("<=", implicit[i-1]))
			}
			Expect(math.Abs(explicit[len(explicit)-1])).To(BeNumerically(">", 1e6))
		})

		It("should surface root finder failure with the partial trajectory", func() {
			noRoot := func(y, t float64) float64 { return y*y + 1 }
			cfg := sim.Config{Span: dynamo.Span{T0: 0, Tf: 3}, H: 1}

			result, err := sim.New(integrators.NewBackwardEuler()).Run(ctx, noRoot, 1, cfg)
			Expect(errors.Is(err, dynamo.ErrNoConvergence)).To(BeTrue())

			var stepErr *dynamo.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(0))
			Expect(result.States).To(Equal([]float64{1}))
		})

		It("should track the global error against the exact solution", func() {
			f := func(y, t float64) float64 { return -2 * y }
			ge := metrics.NewGlobalError(func(t float64) float64 { return math.Exp(-2 * t) })

			s := sim.New(integrators.NewRK4())
			s.AddMetric(ge)
			result, err := s.Run(ctx, f, 1, sim.Config{Span: dynamo.Span{T0: 0, Tf: 1}, H: 0.01})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Metrics["max_error"]).To(BeNumerically("<", 1e-8))
			Expect(result.Evaluations).To(Equal(400))
		})
	})

	Describe("adaptive solvers", func() {
		adaptive := []struct {
			name  string
			build func() dynamo.AdaptiveIntegrator
		}{
			{"rkf45", func() dynamo.AdaptiveIntegrator { return integrators.NewRKF45(1e-8) }},
			{"dopri", func() dynamo.AdaptiveIntegrator { return integrators.NewDormandPrince(1e-8) }},
		}

		for _, m := range adaptive {
			build := m.build

			Context(m.name, func() {
				It("should follow the exact solution", func() {
					f := func(y, t float64) float64 { return -2 * y }
					tr, err := sim.SolveAdaptive(ctx, build(), f, 1, dynamo.Span{T0: 0, Tf: 3}, 0.1)
					Expect(err).ToNot(HaveOccurred())
					Expect(tr.Len()).To(BeNumerically(">", 10))
					Expect(tr.T).To(HaveLen(len(tr.Y)))

					for i := range tr.T {
						Expect(tr.Y[i]).To(BeNumerically("~", math.Exp(-2*tr.T[i]), 1e-7))
						if i > 0 {
							Expect(tr.T[i]).To(BeNumerically(">=", tr.T[i-1]))
						}
					}
					last, _, _ := tr.Last()
					Expect(last).To(BeNumerically("<=", 3))
				})

				It("should stop early at a singularity", func() {
					// y' = y², y(0) = 1 blows up at t = 1.
					f := func(y, t float64) float64 { return y * y }
					result, err := sim.New(build()).Run(ctx, f, 1, sim.Config{
						Span:     dynamo.Span{T0: 0, Tf: 2},
						H:        0.1,
						Adaptive: true,
					})
					Expect(err).ToNot(HaveOccurred())
					Expect(result.Aborted).To(BeTrue())

					last, _, ok := result.Final()
					Expect(ok).To(BeTrue())
					Expect(last).To(BeNumerically("<", 1))
					Expect(last).To(BeNumerically(">", 0.99))
				})
			})
		}

		It("should abort at once from a step far below the floor", func() {
			f := func(y, t float64) float64 { return -y }
			tr, err := sim.SolveAdaptive(ctx, integrators.NewRKF45(0), f, 1, dynamo.Span{T0: 0, Tf: 1}, 1e-300)
			Expect(err).ToNot(HaveOccurred())
			Expect(tr.Len()).To(Equal(1))
		})

		It("should run cleanly at the default tolerance", func() {
			f := func(y, t float64) float64 { return math.Log(math.Abs(y)) - math.Cos(t) }
			tr, err := sim.SolveAdaptive(ctx, integrators.NewRKF45(0), f, 1, dynamo.Span{T0: 0, Tf: 1}, 0.1)
			Expect(err).ToNot(HaveOccurred())
			Expect(tr.Y[0]).To(Equal(1.0))
			Expect(tr.IsValid()).To(BeTrue())
		})
	})
})
