package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var applyCommand = &cobra.Command{
	Use:   "apply [dir]",
	Short: "Create or update declared resources",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := loadEnv(cmd, args)
		defer e.state.Close() // nolint: errcheck

		g, p := e.buildPlan()

		ctx := signalContext(context.Background())
		rep, err := e.rec.Apply(ctx, e.cfg.Project.Name, g, p, e.base)
		if err != nil {
			fatal(err)
		}
		printReport(rep)
		if !rep.OK() {
			os.Exit(1)
		}

		// An output that cannot be resolved does not fail a run that
		// realized every resource.
		writeOutputs(context.Background(), e.rec, e.cfg.Project.Name, e.cfg.Outputs, e.base, os.Stdout, os.Stderr)
	},
}

func init() {
	Landform.AddCommand(applyCommand)
}
