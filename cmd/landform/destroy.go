package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var destroyCommand = &cobra.Command{
	Use:   "destroy [dir]",
	Short: "Destroy all provisioned resources",
	Long: `Destroy deletes every resource recorded in the project state, in the
reverse of the order they were applied in. The config is only used to
determine the project; resources no longer declared are destroyed too.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := loadEnv(cmd, args)
		defer e.state.Close() // nolint: errcheck

		ctx := signalContext(context.Background())
		rep, err := e.rec.Destroy(ctx, e.cfg.Project.Name)
		if err != nil {
			fatal(err)
		}
		printReport(rep)
		if !rep.OK() {
			os.Exit(1)
		}
	},
}

func init() {
	Landform.AddCommand(destroyCommand)
}
