package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

type testIntegrator struct{}

func (t *testIntegrator) Step(f dynamo.Derivative, y, time, h float64) (float64, error) {
	return y + h*f(y, time), nil
}

// scriptedAdaptive replays a fixed sequence of accept/reject decisions and
// always recommends twice the current step.
type scriptedAdaptive struct {
	testIntegrator
	accept []bool
	calls  int
}

func (s *scriptedAdaptive) StepAdaptive(f dynamo.Derivative, y, t, h float64) dynamo.StepResult {
	ok := true
	if s.calls < len(s.accept) {
		ok = s.accept[s.calls]
	}
	s.calls++
	return dynamo.StepResult{Y: y + 1, H: 2 * h, Accepted: ok}
}

type failingIntegrator struct {
	after int
	calls int
}

func (f *failingIntegrator) Step(fn dynamo.Derivative, y, t, h float64) (float64, error) {
	f.calls++
	if f.calls > f.after {
		return y, dynamo.ErrNoConvergence
	}
	return y, nil
}

func decay(y, t float64) float64 { return -y }

func TestSimulatorRun(t *testing.T) {
	s := New(&testIntegrator{})

	cfg := Config{Span: dynamo.Span{T0: 0, Tf: 1}, H: 0.1}
	result, err := s.Run(context.Background(), decay, 1.0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if result.Accepted != 10 {
		t.Errorf("expected 10 steps, got %d", result.Accepted)
	}
	if result.Evaluations != 10 {
		t.Errorf("expected 10 evaluations, got %d", result.Evaluations)
	}

	final := result.States[len(result.States)-1]
	if math.Abs(final-math.Pow(0.9, 10)) > 1e-12 {
		t.Errorf("expected final state %.6f, got %.6f", math.Pow(0.9, 10), final)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(&testIntegrator{})

	tests := []struct {
		name string
		f    dynamo.Derivative
		cfg  Config
		want error
	}{
		{"zero h", decay, Config{Span: dynamo.Span{T0: 0, Tf: 1}, H: 0}, dynamo.ErrInvalidStep},
		{"negative h", decay, Config{Span: dynamo.Span{T0: 0, Tf: 1}, H: -0.1}, dynamo.ErrInvalidStep},
		{"nan h", decay, Config{Span: dynamo.Span{T0: 0, Tf: 1}, H: math.NaN()}, dynamo.ErrInvalidStep},
		{"reversed span", decay, Config{Span: dynamo.Span{T0: 1, Tf: 0}, H: 0.1}, dynamo.ErrInvalidSpan},
		{"nil derivative", nil, Config{Span: dynamo.Span{T0: 0, Tf: 1}, H: 0.1}, dynamo.ErrNilDerivative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.f, 1.0, tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSimulatorRequiresAdaptive(t *testing.T) {
	s := New(&testIntegrator{})
	cfg := Config{Span: dynamo.Span{T0: 0, Tf: 1}, H: 0.1, Adaptive: true}

	_, err := s.Run(context.Background(), decay, 1, cfg)
	if !errors.Is(err, dynamo.ErrNotAdaptive) {
		t.Errorf("expected ErrNotAdaptive, got %v", err)
	}
}

func TestAdaptiveAdvancesByPreviousStep(t *testing.T) {
	integ := &scriptedAdaptive{}
	cfg := Config{Span: dynamo.Span{T0: 0, Tf: 1}, H: 0.1, Adaptive: true}

	result, err := New(integ).Run(context.Background(), decay, 0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// h doubles every step; t must advance by the h in effect before the
	// update: 0 -> 0.1 -> 0.3 -> 0.7 -> 1.5 (past tf).
	want := []float64{0, 0.1, 0.3, 0.7}
	if len(result.Times) != len(want) {
		t.Fatalf("times = %v, want %v", result.Times, want)
	}
	for i := range want {
		if math.Abs(result.Times[i]-want[i]) > 1e-12 {
			t.Errorf("times[%d] = %g, want %g", i, result.Times[i], want[i])
		}
		if result.States[i] != float64(i) {
			t.Errorf("states[%d] = %g, want %d", i, result.States[i], i)
		}
	}
}

func TestAdaptiveRejectedStepRetriesAtSameTime(t *testing.T) {
	integ := &scriptedAdaptive{accept: []bool{true, false, true}}
	cfg := Config{Span: dynamo.Span{T0: 0, Tf: 0.45}, H: 0.1, Adaptive: true}

	result, err := New(integ).Run(context.Background(), decay, 0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// Accept at h=0.1, reject at h=0.2 (t stays 0.1), accept at h=0.4.
	wantT := []float64{0, 0.1, 0.1}
	wantY := []float64{0, 1, 1}
	if len(result.Times) != len(wantT) {
		t.Fatalf("times = %v, want %v", result.Times, wantT)
	}
	for i := range wantT {
		if math.Abs(result.Times[i]-wantT[i]) > 1e-12 || result.States[i] != wantY[i] {
			t.Errorf("sample %d = (%g, %g), want (%g, %g)", i, result.Times[i], result.States[i], wantT[i], wantY[i])
		}
	}
	if result.Accepted != 2 || result.Rejected != 1 {
		t.Errorf("accepted/rejected = %d/%d, want 2/1", result.Accepted, result.Rejected)
	}
}

func TestFixedStepFailureKeepsPartialTrajectory(t *testing.T) {
	integ := &failingIntegrator{after: 3}
	cfg := Config{Span: dynamo.Span{T0: 0, Tf: 1}, H: 0.1}

	result, err := New(integ).Run(context.Background(), decay, 1, cfg)

	var stepErr *dynamo.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected *StepError, got %v", err)
	}
	if !errors.Is(err, dynamo.ErrNoConvergence) {
		t.Errorf("expected ErrNoConvergence in chain, got %v", err)
	}
	if stepErr.Step != 3 {
		t.Errorf("failed at step %d, want 3", stepErr.Step)
	}
	if len(result.States) != 4 {
		t.Errorf("expected 4 recorded states, got %d", len(result.States))
	}
}

func TestFixedStepValidatesState(t *testing.T) {
	blowup := func(y, t float64) float64 { return math.Inf(1) }
	cfg := Config{Span: dynamo.Span{T0: 0, Tf: 1}, H: 0.1, ValidateState: true}

	_, err := New(&testIntegrator{}).Run(context.Background(), blowup, 1, cfg)
	if !errors.Is(err, dynamo.ErrDiverged) {
		t.Errorf("expected ErrDiverged, got %v", err)
	}
}

// stepRecorder is an Euler step that remembers every h it was handed.
type stepRecorder struct {
	hs []float64
}

func (r *stepRecorder) Step(f dynamo.Derivative, y, t, h float64) (float64, error) {
	r.hs = append(r.hs, h)
	return y + h*f(y, t), nil
}

func TestFixedStepFollowsGridSpacing(t *testing.T) {
	integ := &stepRecorder{}
	cfg := Config{Span: dynamo.Span{T0: 0, Tf: 1}, H: 0.3}

	result, err := New(integ).Run(context.Background(), decay, 1, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// 0.3 does not divide 1: the grid has 4 points spaced 1/3, and every
	// step must cover exactly one grid interval.
	wantT := []float64{0, 1.0 / 3, 2.0 / 3, 1}
	if len(result.Times) != len(wantT) {
		t.Fatalf("times = %v, want %v", result.Times, wantT)
	}
	for i := range wantT {
		if math.Abs(result.Times[i]-wantT[i]) > 1e-12 {
			t.Errorf("times[%d] = %g, want %g", i, result.Times[i], wantT[i])
		}
	}

	var sum float64
	for i, h := range integ.hs {
		if math.Abs(h-1.0/3) > 1e-12 {
			t.Errorf("step %d used h=%g, want 1/3", i, h)
		}
		sum += h
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("steps cover %g, want the whole span", sum)
	}

	want := math.Pow(2.0/3, 3)
	if final := result.States[len(result.States)-1]; math.Abs(final-want) > 1e-12 {
		t.Errorf("final state %g, want %g", final, want)
	}
}

func TestTinyStepDoesNotOverflow(t *testing.T) {
	span := dynamo.Span{T0: 0, Tf: 1}

	_, err := New(&testIntegrator{}).Run(context.Background(), decay, 1, Config{Span: span, H: 1e-300})
	if !errors.Is(err, dynamo.ErrTooManySteps) {
		t.Errorf("fixed step: expected ErrTooManySteps, got %v", err)
	}

	// The scripted integrator recommends 2e-300, far below the floor.
	result, err := New(&scriptedAdaptive{}).Run(context.Background(), decay, 1, Config{Span: span, H: 1e-300, Adaptive: true})
	if err != nil {
		t.Fatalf("adaptive: %v", err)
	}
	if !result.Aborted || len(result.Times) != 1 {
		t.Errorf("adaptive: aborted=%v samples=%d, want an immediate abort", result.Aborted, len(result.Times))
	}
}

func TestAdaptiveStopsWhenTimeStalls(t *testing.T) {
	// At 1e17 the spacing between floats is 16, so t + 1 == t.
	cfg := Config{Span: dynamo.Span{T0: 1e17, Tf: 2e17}, H: 1, Adaptive: true}

	result, err := New(&scriptedAdaptive{}).Run(context.Background(), decay, 0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !result.Aborted {
		t.Error("expected the run to abort")
	}
	if result.Accepted != 0 || len(result.Times) != 1 {
		t.Errorf("accepted=%d samples=%d, want 0 and 1", result.Accepted, len(result.Times))
	}
}

func TestSimulatorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{Span: dynamo.Span{T0: 0, Tf: 1}, H: 0.1}
	result, err := New(&testIntegrator{}).Run(ctx, decay, 1, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || len(result.States) != 0 {
		t.Errorf("expected empty partial result, got %+v", result)
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(time, y float64) {
	t.count++
	t.sum += y
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

type countingObserver struct{ n int }

func (c *countingObserver) OnStep(t, y float64) { c.n++ }

func TestSimulatorMetricsAndObservers(t *testing.T) {
	s := New(&testIntegrator{})

	metric := &testMetric{}
	obs := &countingObserver{}
	s.AddMetric(metric)
	s.AddObserver(obs)

	cfg := Config{Span: dynamo.Span{T0: 0, Tf: 1}, H: 0.1}
	result, err := s.Run(context.Background(), decay, 1.0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}
	if obs.n != 11 {
		t.Errorf("expected 11 observer calls, got %d", obs.n)
	}

	// Metrics reset between runs.
	if _, err := s.Run(context.Background(), decay, 1.0, cfg); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if metric.count != 11 {
		t.Errorf("metric not reset between runs: %d observations", metric.count)
	}
}
