package cmd

import (
	"context"
	"fmt"

	"github.com/landform/landform/reconciler"
	"github.com/spf13/cobra"
)

var planCommand = &cobra.Command{
	Use:   "plan [dir]",
	Short: "Show the actions apply would take",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := loadEnv(cmd, args)
		defer e.state.Close() // nolint: errcheck

		g, p := e.buildPlan()

		ctx := signalContext(context.Background())
		changes, err := e.rec.Preview(ctx, e.cfg.Project.Name, g, p, e.base)
		if err != nil {
			fatal(err)
		}

		n := 0
		for _, c := range changes {
			if c.Action == reconciler.ActionNone {
				continue
			}
			fmt.Printf("%s %s\n", actionSymbol(c.Action), c.Address)
			n++
		}
		if n == 0 {
			fmt.Println("No changes.")
			return
		}
		fmt.Printf("\n%d change(s). Run apply to execute them.\n", n)
	},
}

func actionSymbol(a reconciler.Action) string {
	switch a {
	case reconciler.ActionCreate:
		return "  +"
	case reconciler.ActionUpdate:
		return "  ~"
	case reconciler.ActionReplace:
		return "-/+"
	case reconciler.ActionDelete:
		return "  -"
	}
	return "   "
}

func init() {
	Landform.AddCommand(planCommand)
}
