package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/hashicorp/hcl2/hcl"
	"github.com/landform/landform/config"
	"github.com/landform/landform/reconciler"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

var outputsCommand = &cobra.Command{
	Use:   "outputs [dir]",
	Short: "Print output values from realized resources",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := loadEnv(cmd, args)
		defer e.state.Close() // nolint: errcheck

		vals, err := e.rec.Outputs(context.Background(), e.cfg.Project.Name, e.cfg.Outputs, e.base)
		if err != nil {
			if _, ok := errors.Cause(err).(reconciler.OutputUnavailableError); ok {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			fatal(err)
		}

		names := make([]string, 0, len(vals))
		for name := range vals {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s = %s\n", name, formatValue(vals[name]))
		}
	},
}

// writeOutputs resolves the declared outputs and prints them to w, preceded
// by a blank line. A resolution failure is reported on errw; it never fails
// the run that requested the printout.
func writeOutputs(ctx context.Context, rec *reconciler.Reconciler, project string, outputs []config.Output, base *hcl.EvalContext, w, errw io.Writer) {
	if len(outputs) == 0 {
		return
	}
	vals, err := rec.Outputs(ctx, project, outputs, base)
	if err != nil {
		fmt.Fprintln(errw, err)
		return
	}
	names := make([]string, 0, len(vals))
	for name := range vals {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w)
	for _, name := range names {
		fmt.Fprintf(w, "%s = %s\n", name, formatValue(vals[name]))
	}
}

// formatValue renders a value for terminal output. Strings are printed bare,
// everything else as json.
func formatValue(v cty.Value) string {
	if v.Type() == cty.String {
		return v.AsString()
	}
	b, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return v.GoString()
	}
	return string(b)
}

func init() {
	Landform.AddCommand(outputsCommand)
}
