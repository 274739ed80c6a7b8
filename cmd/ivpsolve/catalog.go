package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/ivpsolve/internal/config"
	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/experiment"
)

func newEquationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "equations",
		Short: "list built-in equations and methods",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := experiment.NewRegistry()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EQUATION\tFORMULA\tPARAMS\tY0\tEXACT")
			for _, name := range reg.ListModels() {
				m, err := reg.GetModel(name)
				if err != nil {
					return err
				}
				_, solvable := m.(dynamo.Solvable)
				exact := "no"
				if solvable {
					exact = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%s\n", name, m.Formula(), formatParams(m.GetParams()), m.DefaultState(), exact)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Println()
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tSTEP CONTROL")
			for _, name := range reg.ListIntegrators() {
				control := "fixed"
				if reg.IsAdaptive(name) {
					control = "adaptive"
				}
				fmt.Fprintf(w, "%s\t%s\n", name, control)
			}
			return w.Flush()
		},
	}
}

func formatParams(p map[string]float64) string {
	if len(p) == 0 {
		return "-"
	}
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, p[name])
	}
	return strings.Join(parts, " ")
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [equation]",
		Short: "list preset configurations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			equations := config.ListPresetModels()
			if len(args) == 1 {
				equations = []string{args[0]}
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EQUATION\tPRESET\tMETHOD\tSPAN\tH\tTOL\tPARAMS")
			for _, eq := range equations {
				names := config.ListPresets(eq)
				if len(names) == 0 {
					return fmt.Errorf("no presets for %s", eq)
				}
				for _, name := range names {
					p := config.GetPreset(eq, name)
					tol := "-"
					if p.Tolerance > 0 {
						tol = fmt.Sprintf("%g", p.Tolerance)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t[%g, %g]\t%g\t%s\t%s\n",
						eq, name, p.Integrator, p.T0, p.Tf, p.H, tol, formatParams(p.Params))
				}
			}
			return w.Flush()
		},
	}
}
