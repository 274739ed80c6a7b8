package sim

import (
	"context"
	"io"
	"log/slog"
	"math"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

// Simulator owns the time-stepping loop around a single-step integrator.
// A Simulator is not safe for concurrent Run calls because its metrics
// accumulate per run; build one per goroutine.
type Simulator struct {
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	logger     *slog.Logger
}

func New(integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) WithLogger(l *slog.Logger) *Simulator {
	if l != nil {
		s.logger = l
	}
	return s
}

// Run integrates y' = f(y, t) from cfg.Span.T0 with y0. With cfg.Adaptive
// the integrator must implement dynamo.AdaptiveIntegrator.
//
// On failure Run returns the samples recorded so far together with the
// error; a step-floor abort is not a failure and only sets Result.Aborted.
func (s *Simulator) Run(ctx context.Context, f dynamo.Derivative, y0 float64, cfg Config) (*Result, error) {
	if err := validateConfig(f, cfg); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	counter := &CountingDerivative{F: f}

	var (
		result *Result
		err    error
	)
	if cfg.Adaptive {
		adaptive, ok := s.integrator.(dynamo.AdaptiveIntegrator)
		if !ok {
			return nil, dynamo.ErrNotAdaptive
		}
		result, err = s.runAdaptive(ctx, adaptive, counter.Derive, y0, cfg)
	} else {
		result, err = s.runFixed(ctx, counter.Derive, y0, cfg)
	}

	result.Evaluations = counter.Calls
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Debug("integration finished",
		"samples", len(result.Times),
		"accepted", result.Accepted,
		"rejected", result.Rejected,
		"evaluations", result.Evaluations,
		"aborted", result.Aborted,
	)

	return result, err
}

func newResult(capacity int) *Result {
	return &Result{
		Times:   make([]float64, 0, capacity),
		States:  make([]float64, 0, capacity),
		Metrics: make(map[string]float64),
	}
}

func (s *Simulator) record(r *Result, t, y float64) {
	r.Times = append(r.Times, t)
	r.States = append(r.States, y)

	for _, m := range s.metrics {
		m.Observe(t, y)
	}
	for _, obs := range s.observers {
		obs.OnStep(t, y)
	}
}

// runFixed walks the uniform grid. The sample at grid point i is the state
// before stepping from it, so the output is aligned with Grid. Each step
// spans exactly one grid interval, which differs from cfg.H when h does
// not divide the span.
func (s *Simulator) runFixed(ctx context.Context, f dynamo.Derivative, y0 float64, cfg Config) (*Result, error) {
	grid := Grid(cfg.Span.T0, cfg.Span.Tf, cfg.H)
	result := newResult(len(grid))

	y := y0
	for i, t := range grid {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		s.record(result, t, y)
		if i == len(grid)-1 {
			break
		}

		next, err := s.integrator.Step(f, y, t, grid[i+1]-t)
		if err != nil {
			s.logger.Warn("step failed", "step", i, "t", t, "y", y, "err", err)
			return result, &dynamo.StepError{Step: i, Time: t, Y: y, Wrapped: err}
		}
		if cfg.ValidateState && !dynamo.IsFinite(next) {
			return result, &dynamo.StepError{Step: i, Time: t, Y: y, Wrapped: dynamo.ErrDiverged}
		}

		y = next
		result.Accepted++
	}

	return result, nil
}

// runAdaptive records (t, y) at the top of every attempt, rejected ones
// included, so a retried time appears once per attempt.
func (s *Simulator) runAdaptive(ctx context.Context, integ dynamo.AdaptiveIntegrator, f dynamo.Derivative, y0 float64, cfg Config) (*Result, error) {
	capacity := int(math.Min(cfg.Span.Length()/cfg.H+1, 1<<16))
	result := newResult(capacity)

	t, y, h := cfg.Span.T0, y0, cfg.H
	for step := 0; t <= cfg.Span.Tf; step++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		s.record(result, t, y)

		res := integ.StepAdaptive(f, y, t, h)
		if res.H < dynamo.MinStep {
			result.Aborted = true
			s.logger.Warn("step size below floor, stopping early",
				"step", step, "t", t, "y", y, "h", res.H, "floor", dynamo.MinStep)
			break
		}

		if res.Accepted {
			// Advance by the h that produced this step, then switch to
			// the recommended one for the next attempt.
			next := t + h
			if next <= t {
				result.Aborted = true
				s.logger.Warn("step does not advance time, stopping early",
					"step", step, "t", t, "h", h)
				break
			}
			y = res.Y
			t = next
			result.Accepted++
		} else {
			result.Rejected++
		}
		h = res.H
	}

	return result, nil
}

// SolveFixed integrates on the uniform grid Grid(span.T0, span.Tf, h) and
// returns one y per grid point.
func SolveFixed(ctx context.Context, integ dynamo.Integrator, f dynamo.Derivative, y0 float64, span dynamo.Span, h float64) ([]float64, error) {
	cfg := Config{Span: span, H: h}
	result, err := New(integ).Run(ctx, f, y0, cfg)
	if result == nil {
		return nil, err
	}
	return result.States, err
}

// SolveAdaptive integrates with step-size control starting from step h.
// The trajectory ends early, without error, when the step size collapses.
func SolveAdaptive(ctx context.Context, integ dynamo.AdaptiveIntegrator, f dynamo.Derivative, y0 float64, span dynamo.Span, h float64) (*dynamo.Trajectory, error) {
	cfg := Config{Span: span, H: h, Adaptive: true}
	result, err := New(integ).Run(ctx, f, y0, cfg)
	if result == nil {
		return nil, err
	}
	return result.Trajectory(), err
}
