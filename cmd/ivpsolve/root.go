package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/experiment"
	"github.com/san-kum/ivpsolve/internal/models"
	"github.com/san-kum/ivpsolve/internal/rootfind"
)

// newRootCmd exposes one implicit Euler solve: it finds y1 with
// y1 - y - h·f(y1, t+h) = 0 and reports how Newton-Raphson got there.
func newRootCmd() *cobra.Command {
	var rootTol float64
	cmd := &cobra.Command{
		Use:   "root [equation]",
		Short: "solve one implicit Euler step with Newton-Raphson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := experiment.NewRegistry()
			cfg, err := resolveConfig(cmd, reg, args[0])
			if err != nil {
				return err
			}

			model, err := reg.GetModel(cfg.Model)
			if err != nil {
				return err
			}
			if err := models.ApplyParams(model, cfg.Params); err != nil {
				return err
			}
			f := models.Derivative(model)

			y, t, step := cfg.Y0, cfg.T0, cfg.H
			g := func(yNext, tNext float64) float64 {
				return yNext - y - step*f(yNext, tNext)
			}

			fmt.Println(titleStyle.Render(fmt.Sprintf("%s: y(%g) = %g, h = %g", cfg.Model, t, y, step)))

			root, err := rootfind.NewNewton(rootTol).Solve(g, t+step, y)
			if err != nil {
				var nerr *rootfind.Error
				if errors.As(err, &nerr) {
					fmt.Printf("%s%d\n", labelStyle.Render("iterations"), nerr.Iterations)
					fmt.Printf("%s%g\n", labelStyle.Render("last iterate"), nerr.Last)
				}
				if errors.Is(err, dynamo.ErrZeroDerivative) {
					fmt.Println(warnStyle.Render("the residual is flat at the iterate; try a smaller h"))
				}
				return err
			}

			fmt.Printf("%s%.12g\n", labelStyle.Render("y1"), root.Y)
			fmt.Printf("%s%d\n", labelStyle.Render("iterations"), root.Iterations)
			fmt.Printf("%s%.3e\n", labelStyle.Render("residual"), root.Residual)
			return nil
		},
	}
	addProblemFlags(cmd)
	cmd.Flags().Float64Var(&rootTol, "root-tol", dynamo.DefaultRootTol, "Newton-Raphson tolerance on successive iterates")
	return cmd
}
