package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/ivpsolve/internal/automation"
	"github.com/san-kum/ivpsolve/internal/experiment"
	"github.com/san-kum/ivpsolve/internal/storage"
)

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted sequence of integrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			runner := automation.NewRunner(experiment.NewRegistry())
			runner.Logger = logger

			fmt.Println(titleStyle.Render(scenario.Name))
			if scenario.Description != "" {
				fmt.Println(scenario.Description)
			}

			results, runErr := runner.RunScenario(cmd.Context(), scenario)

			var st *storage.Store
			if !noSave {
				st = storage.New(dataDir)
				if err := st.Init(); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tEQUATION\tMETHOD\tSAMPLES\tEVALS\tFINAL Y\tRUN ID")
			for i, r := range results {
				_, y, _ := r.Result.Final()
				runID := "-"
				if st != nil {
					meta := storage.RunMetadata{
						ID:         r.Step.SaveAs,
						Model:      r.Step.Model,
						Integrator: r.Step.Integrator,
						Y0:         r.Step.Y0,
						T0:         r.Step.T0,
						Tf:         r.Step.Tf,
						H:          r.Step.H,
						Tolerance:  r.Step.Tolerance,
						Adaptive:   runner.Registry.IsAdaptive(r.Step.Integrator) && !r.Step.FixedStep,
						Params:     r.Step.Params,
					}
					if runID, err = st.Save(meta, r.Result); err != nil {
						return err
					}
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%.10g\t%s\n",
					i+1, r.Step.Model, r.Step.Integrator, len(r.Result.States), r.Result.Evaluations, y, runID)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the runs to the data directory")
	return cmd
}

func newSweepCmd() *cobra.Command {
	var (
		name     string
		from, to float64
		steps    int
	)
	cmd := &cobra.Command{
		Use:   "sweep [equation]",
		Short: "repeat a run across a range of one equation parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := experiment.NewRegistry()
			cfg, err := resolveConfig(cmd, reg, args[0])
			if err != nil {
				return err
			}

			runner := automation.NewRunner(reg)
			runner.Logger = logger
			results, runErr := runner.RunSweep(cmd.Context(), &automation.ParameterSweep{
				Base:      cfg.Experiment(),
				ParamName: name,
				ParamMin:  from,
				ParamMax:  to,
				NumSteps:  steps,
			})

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tFINAL T\tFINAL Y\tMAX ERROR\tNOTE\n", name)
			for _, r := range results {
				note := ""
				if r.Aborted {
					note = "aborted"
				}
				fmt.Fprintf(w, "%g\t%.4g\t%.10g\t%.3e\t%s\n", r.ParamValue, r.FinalTime, r.FinalState, r.MaxError, note)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return runErr
		},
	}
	addProblemFlags(cmd)
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&name, "name", "", "parameter to sweep")
	cmd.Flags().Float64Var(&from, "from", 0, "first parameter value")
	cmd.Flags().Float64Var(&to, "to", 1, "last parameter value")
	cmd.Flags().IntVar(&steps, "steps", 5, "number of parameter values")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newMonteCarloCmd() *cobra.Command {
	var (
		trials int
		spread float64
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "montecarlo [equation]",
		Short: "perturb y0 at random and count runs that stay bounded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := experiment.NewRegistry()
			cfg, err := resolveConfig(cmd, reg, args[0])
			if err != nil {
				return err
			}

			runner := automation.NewRunner(reg)
			runner.Logger = logger
			results, err := runner.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
				Base:         cfg.Experiment(),
				Perturbation: spread,
				NumTrials:    trials,
				Seed:         seed,
			})
			if err != nil {
				return err
			}

			stable, unstable := automation.MonteCarloStats(results)
			fmt.Println(titleStyle.Render(fmt.Sprintf("%s, y0 = %g ± %g", cfg.Model, cfg.Y0, spread)))
			fmt.Printf("%s%d\n", labelStyle.Render("trials"), len(results))
			fmt.Printf("%s%d\n", labelStyle.Render("bounded"), stable)
			fmt.Printf("%s%d\n", labelStyle.Render("unbounded"), unstable)
			return nil
		},
	}
	addProblemFlags(cmd)
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	cmd.Flags().Float64Var(&spread, "spread", 0.1, "half-width of the uniform y0 perturbation")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	return cmd
}
