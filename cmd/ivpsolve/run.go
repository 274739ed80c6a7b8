package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/ivpsolve/internal/config"
	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/experiment"
	"github.com/san-kum/ivpsolve/internal/sim"
	"github.com/san-kum/ivpsolve/internal/storage"
	"github.com/san-kum/ivpsolve/internal/viz"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [equation]",
		Short: "integrate an equation and store the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	addProblemFlags(cmd)
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the run to the data directory")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "also record samples into this SQLite database")
	cmd.Flags().BoolVar(&showPlot, "plot", false, "plot the solution after the run")
	return cmd
}

func runSolve(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	cfg, err := resolveConfig(cmd, reg, args[0])
	if err != nil {
		return err
	}
	if sqlitePath == "" {
		sqlitePath = cfg.Record.SQLite
	}

	exp, err := experiment.Build(reg, cfg.Experiment())
	if err != nil {
		return err
	}
	exp.WithLogger(logger)

	meta := runMetadata(cfg, exp.Adaptive())

	if sqlitePath != "" {
		rec, err := storage.NewRecorder(sqlitePath)
		if err != nil {
			return fmt.Errorf("open %s: %w", sqlitePath, err)
		}
		defer rec.Close()

		meta.ID = storage.NewRunID(cfg.Model)
		if err := rec.BeginRun(meta); err != nil {
			return err
		}
		exp.GetSimulator().AddObserver(rec)
	}

	logger.Info("starting run", "equation", cfg.Model, "method", cfg.Integrator,
		"adaptive", exp.Adaptive(), "h", cfg.H, "span", fmt.Sprintf("[%g, %g]", cfg.T0, cfg.Tf))

	start := time.Now()
	result, runErr := exp.Run(cmd.Context())
	elapsed := time.Since(start)

	if result == nil {
		return runErr
	}

	printSummary(cfg, result, elapsed, runErr)

	// a config file may turn saving off with record.save: false
	if !noSave && (configFile == "" || cfg.Record.Save) {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(meta, result)
		if err != nil {
			return err
		}
		fmt.Printf("%s%s\n", labelStyle.Render("run id"), runID)
	}

	if showPlot && len(result.States) > 0 {
		caption := fmt.Sprintf("%s / %s", cfg.Model, cfg.Integrator)
		fmt.Println()
		fmt.Println(viz.Plot(result.Trajectory(), viz.PlotOptions{Caption: caption}))
	}

	return runErr
}

func runMetadata(cfg *config.Config, adaptive bool) storage.RunMetadata {
	return storage.RunMetadata{
		Model:      cfg.Model,
		Integrator: cfg.Integrator,
		Y0:         cfg.Y0,
		T0:         cfg.T0,
		Tf:         cfg.Tf,
		H:          cfg.H,
		Tolerance:  cfg.Tolerance,
		Adaptive:   adaptive,
		Params:     cfg.Params,
	}
}

func printSummary(cfg *config.Config, result *sim.Result, elapsed time.Duration, runErr error) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("%s with %s", cfg.Model, cfg.Integrator)))

	row := func(label string, format string, a ...any) {
		fmt.Printf("%s%s\n", labelStyle.Render(label), fmt.Sprintf(format, a...))
	}

	row("completed in", "%v", elapsed)
	row("samples", "%d", len(result.States))
	row("accepted", "%d", result.Accepted)
	if result.Rejected > 0 {
		row("rejected", "%d", result.Rejected)
	}
	row("evaluations", "%d", result.Evaluations)
	if t, y, ok := result.Final(); ok {
		row("final", "y(%.6g) = %.10g", t, y)
	}

	if result.Aborted {
		fmt.Println(warnStyle.Render(fmt.Sprintf("step size fell below %g; trajectory stops early", dynamo.MinStep)))
	}
	if runErr != nil {
		var stepErr *dynamo.StepError
		if errors.As(runErr, &stepErr) {
			fmt.Println(errStyle.Render(fmt.Sprintf("failed at step %d, t=%.6g", stepErr.Step, stepErr.Time)))
		}
	}

	if len(result.Metrics) > 0 {
		names := make([]string, 0, len(result.Metrics))
		for name := range result.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println("\nmetrics:")
		for _, name := range names {
			fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
		}
	}
}

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live [equation]",
		Short: "integrate with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addProblemFlags(cmd)
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	return cmd
}

func runLive(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	cfg, err := resolveConfig(cmd, reg, args[0])
	if err != nil {
		return err
	}

	exp, err := experiment.Build(reg, cfg.Experiment())
	if err != nil {
		return err
	}
	integ, err := reg.GetIntegrator(cfg.Integrator, cfg.Tolerance)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(exp.Model(), integ, viz.Config{
		Name:     cfg.Model,
		Method:   cfg.Integrator,
		Y0:       cfg.Y0,
		T0:       cfg.T0,
		Tf:       cfg.Tf,
		H:        cfg.H,
		Adaptive: exp.Adaptive(),
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithOutput(os.Stdout))
	_, err = p.Run()
	return err
}
