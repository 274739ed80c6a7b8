package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

const dataEnv = "IVPSOLVE_DATA"

var (
	dataDir    string
	verbose    bool
	method     string
	y0         float64
	t0         float64
	tf         float64
	h          float64
	tolerance  float64
	fixedStep  bool
	params     []string
	configFile string
	preset     string
	noSave     bool
	sqlitePath string
	showPlot   bool
	outFile    string
	levels     int

	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// main wires the cobra command tree. Exit goes through atexit so recorders
// registered there get flushed.
func main() {
	// A missing .env is fine; anything else is worth a warning.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	defaultData := os.Getenv(dataEnv)
	if defaultData == "" {
		defaultData = ".ivpsolve"
	}

	rootCmd := &cobra.Command{
		Use:           "ivpsolve",
		Short:         "initial value problem solver lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", defaultData, "data directory (env "+dataEnv+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newRunCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportJSONCmd(),
		newExportCSVCmd(),
		newExportSVGCmd(),
		newDiffCmd(),
		newCompareCmd(),
		newOrderCmd(),
		newEquationsCmd(),
		newPresetsCmd(),
		newLiveCmd(),
		newScenarioCmd(),
		newSweepCmd(),
		newMonteCarloCmd(),
		newRootCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// addProblemFlags registers the flags shared by every command that sets
// up an integration.
func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&method, "method", "m", "rk4", "integration method")
	cmd.Flags().Float64Var(&y0, "y0", 1.0, "initial value")
	cmd.Flags().Float64Var(&t0, "t0", 0.0, "start time")
	cmd.Flags().Float64Var(&tf, "tf", 3.0, "end time")
	cmd.Flags().Float64Var(&h, "h", 0.1, "step size (initial step for adaptive methods)")
	cmd.Flags().Float64Var(&tolerance, "tol", 0, "local error tolerance for adaptive methods (0 = default)")
	cmd.Flags().BoolVar(&fixedStep, "fixed", false, "run adaptive methods on the uniform grid")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "equation parameter name=value (repeatable)")
}
