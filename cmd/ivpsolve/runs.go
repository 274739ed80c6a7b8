package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/ivpsolve/internal/analysis"
	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/experiment"
	"github.com/san-kum/ivpsolve/internal/export"
	"github.com/san-kum/ivpsolve/internal/sim"
	"github.com/san-kum/ivpsolve/internal/storage"
	"github.com/san-kum/ivpsolve/internal/viz"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs in", dataDir)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEQUATION\tMETHOD\tSAMPLES\tEVALS\tSTATUS\tTIME")
			for _, r := range runs {
				status := "ok"
				if r.Aborted {
					status = "aborted"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
					r.ID, r.Model, r.Integrator, r.Samples, r.Evaluations, status,
					r.Timestamp.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
}

func newPlotCmd() *cobra.Command {
	var exact bool
	cmd := &cobra.Command{
		Use:   "plot [run-id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			tr, err := st.LoadTrajectory(args[0])
			if err != nil {
				return err
			}

			caption := fmt.Sprintf("%s / %s", meta.Model, meta.Integrator)
			if !exact {
				fmt.Println(viz.Plot(tr, viz.PlotOptions{Caption: caption}))
				return nil
			}

			sol, err := exactSolution(experiment.NewRegistry(), meta.Model, meta.Params, meta.Y0, meta.T0)
			if err != nil {
				return err
			}
			if sol == nil {
				return fmt.Errorf("%s has no closed-form solution", meta.Model)
			}
			fmt.Println(viz.PlotMany(
				[][]float64{tr.Y, viz.ExactSeries(tr, sol)},
				[]string{meta.Integrator, "exact"},
				viz.PlotOptions{Caption: caption},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&exact, "exact", false, "overlay the closed-form solution")
	return cmd
}

// withOutput calls write with stdout, or with a created file when -o is set.
func withOutput(write func(io.Writer) error) error {
	if outFile == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "wrote", outFile)
	return nil
}

func newExportJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-json [run-id]",
		Short: "export a run with its metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			tr, err := st.LoadTrajectory(args[0])
			if err != nil {
				return err
			}

			data := storage.NewExportData(*meta, &sim.Result{
				Times:       tr.T,
				States:      tr.Y,
				Accepted:    meta.Accepted,
				Rejected:    meta.Rejected,
				Evaluations: meta.Evaluations,
				Aborted:     meta.Aborted,
				Metrics:     meta.Metrics,
			})
			return withOutput(func(w io.Writer) error { return storage.ExportJSON(w, data) })
		},
	}
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newExportCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-csv [run-id]",
		Short: "export a run as t,y CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := storage.New(dataDir).LoadTrajectory(args[0])
			if err != nil {
				return err
			}
			return withOutput(func(w io.Writer) error { return storage.ExportCSV(w, tr.T, tr.Y) })
		},
	}
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [run-a] [run-b]",
		Short: "compare two stored runs",
		Long:  "Compares run-b against run-a at run-a's sample times, interpolating run-b linearly.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			a, err := st.LoadTrajectory(args[0])
			if err != nil {
				return err
			}
			b, err := st.LoadTrajectory(args[1])
			if err != nil {
				return err
			}

			res := analysis.Difference(a, b)
			if res.Compared == 0 {
				return fmt.Errorf("runs %s and %s share no time range", args[0], args[1])
			}

			fmt.Println(titleStyle.Render(fmt.Sprintf("%s vs %s", args[0], args[1])))
			fmt.Printf("%s%d\n", labelStyle.Render("compared"), res.Compared)
			fmt.Printf("%s%.6e (t=%.6g)\n", labelStyle.Render("max |Δy|"), res.MaxAbs, res.AtTime)
			fmt.Printf("%s%.6e\n", labelStyle.Render("rms"), res.RMS)
			return nil
		},
	}
}

func newExportSVGCmd() *cobra.Command {
	var withExact bool
	cmd := &cobra.Command{
		Use:   "export-svg [run-id]",
		Short: "render a run as an SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			tr, err := st.LoadTrajectory(args[0])
			if err != nil {
				return err
			}

			series := []export.Series{{Name: meta.Integrator, Data: tr}}
			if withExact {
				sol, err := exactSolution(experiment.NewRegistry(), meta.Model, meta.Params, meta.Y0, meta.T0)
				if err != nil {
					return err
				}
				if sol == nil {
					return fmt.Errorf("%s has no closed-form solution", meta.Model)
				}
				series = append(series, export.Series{
					Name: "exact",
					Data: &dynamo.Trajectory{T: tr.T, Y: viz.ExactSeries(tr, sol)},
				})
			}

			opts := export.SVGOptions{Title: fmt.Sprintf("%s / %s", meta.Model, meta.Integrator)}
			return withOutput(func(w io.Writer) error { return export.WriteSVG(w, series, opts) })
		},
	}
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&withExact, "exact", false, "add the closed-form solution")
	return cmd
}
