package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/ivpsolve/internal/analysis"
	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/experiment"
	"github.com/san-kum/ivpsolve/internal/models"
)

var studyMethods []string

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [equation]",
		Short: "run several methods on the same problem",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompare,
	}
	addProblemFlags(cmd)
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringSliceVar(&studyMethods, "methods", nil, "methods to compare (default all)")
	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	cfg, err := resolveConfig(cmd, reg, args[0])
	if err != nil {
		return err
	}

	methods := studyMethods
	if len(methods) == 0 {
		methods = reg.ListIntegrators()
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s on [%g, %g], h=%g, y0=%g", cfg.Model, cfg.T0, cfg.Tf, cfg.H, cfg.Y0)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tFINAL T\tFINAL Y\tMAX ERROR\tEVALS\tACCEPTED\tREJECTED\tTIME\tNOTE")

	for _, name := range methods {
		ec := cfg.Experiment()
		ec.Integrator = name

		exp, err := experiment.Build(reg, ec)
		if err != nil {
			return err
		}
		exp.WithLogger(logger)

		start := time.Now()
		result, runErr := exp.Run(cmd.Context())
		elapsed := time.Since(start)
		if result == nil {
			return runErr
		}

		note := ""
		switch {
		case runErr != nil:
			note = runErr.Error()
		case result.Aborted:
			note = "aborted"
		}

		maxErr := "-"
		if v, ok := result.Metrics["max_error"]; ok {
			maxErr = fmt.Sprintf("%.3e", v)
		}

		t, y, _ := result.Final()
		fmt.Fprintf(w, "%s\t%.4g\t%.10g\t%s\t%d\t%d\t%d\t%v\t%s\n",
			name, t, y, maxErr, result.Evaluations, result.Accepted, result.Rejected,
			elapsed.Round(time.Microsecond), note)
	}
	return w.Flush()
}

func newOrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order [equation]",
		Short: "measure convergence order and work-precision",
		Long: `For fixed-step methods, halves h repeatedly and fits the observed order
of the final error. For adaptive methods, tightens the tolerance by
decades and reports error against derivative evaluations.`,
		Args: cobra.ExactArgs(1),
		RunE: runOrder,
	}
	addProblemFlags(cmd)
	cmd.Flags().StringSliceVar(&studyMethods, "methods", nil, "methods to study (default all)")
	cmd.Flags().IntVar(&levels, "levels", 5, "refinement levels (halvings of h or tolerance decades)")
	return cmd
}

func runOrder(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	cfg, err := resolveConfig(cmd, reg, args[0])
	if err != nil {
		return err
	}

	exact, err := exactSolution(reg, cfg.Model, cfg.Params, cfg.Y0, cfg.T0)
	if err != nil {
		return err
	}
	if exact == nil {
		return fmt.Errorf("%s has no closed-form solution to measure against", cfg.Model)
	}

	model, err := reg.GetModel(cfg.Model)
	if err != nil {
		return err
	}
	if err := models.ApplyParams(model, cfg.Params); err != nil {
		return err
	}
	f := models.Derivative(model)
	span := dynamo.Span{T0: cfg.T0, Tf: cfg.Tf}

	methods := studyMethods
	if len(methods) == 0 {
		methods = reg.ListIntegrators()
	}

	for _, name := range methods {
		if _, err := reg.GetIntegrator(name, cfg.Tolerance); err != nil {
			return err
		}

		fmt.Println(titleStyle.Render(name))
		if reg.IsAdaptive(name) {
			err = printWorkPrecision(cmd, reg, name, f, exact, span, cfg.Y0, cfg.H)
		} else {
			err = printOrder(cmd, reg, name, f, exact, span, cfg.Y0, cfg.H)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Println()
	}
	return nil
}

func printOrder(cmd *cobra.Command, reg *experiment.Registry, name string, f dynamo.Derivative, exact dynamo.Func, span dynamo.Span, y0, h0 float64) error {
	integ, err := reg.GetIntegrator(name, 0)
	if err != nil {
		return err
	}

	points, order, err := analysis.StudyOrder(cmd.Context(), integ, f, exact, y0, span, h0, levels)
	if err != nil && len(points) == 0 {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "H\tERROR\tEVALS\tRATIO")
	for i, p := range points {
		ratio := "-"
		if i > 0 && p.Error > 0 {
			ratio = fmt.Sprintf("%.2f", points[i-1].Error/p.Error)
		}
		fmt.Fprintf(w, "%.5g\t%.3e\t%d\t%s\n", p.H, p.Error, p.Evaluations, ratio)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if err != nil {
		fmt.Println(warnStyle.Render(err.Error()))
		return nil
	}
	fmt.Printf("%s%.3f\n", labelStyle.Render("order"), order)
	return nil
}

func printWorkPrecision(cmd *cobra.Command, reg *experiment.Registry, name string, f dynamo.Derivative, exact dynamo.Func, span dynamo.Span, y0, h0 float64) error {
	tols := make([]float64, levels)
	for i := range tols {
		tols[i] = math.Pow(10, -float64(i+2))
	}

	// name is known to be registered and adaptive here.
	build := func(tol float64) dynamo.AdaptiveIntegrator {
		integ, _ := reg.GetIntegrator(name, tol)
		return integ.(dynamo.AdaptiveIntegrator)
	}

	points, err := analysis.WorkPrecision(cmd.Context(), build, f, exact, y0, span, h0, tols)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOL\tERROR\tEVALS\tACCEPTED\tREJECTED\tNOTE")
	for _, p := range points {
		note := ""
		if p.Aborted {
			note = "aborted"
		}
		fmt.Fprintf(w, "%.0e\t%.3e\t%d\t%d\t%d\t%s\n", p.Tolerance, p.Error, p.Evaluations, p.Accepted, p.Rejected, note)
	}
	return w.Flush()
}
