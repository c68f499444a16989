// Package cmd implements the landform command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl2/hcl"
	"github.com/landform/landform/auth"
	"github.com/landform/landform/config"
	"github.com/landform/landform/graph"
	"github.com/landform/landform/plan"
	"github.com/landform/landform/provider/aws"
	"github.com/landform/landform/reconciler"
	"github.com/landform/landform/resource"
	"github.com/landform/landform/storage"
	"github.com/landform/landform/storage/kvbackend"
	"github.com/spf13/cobra"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"
)

// Landform is the root command.
var Landform = &cobra.Command{
	Use:           "landform",
	Short:         "Provision AWS resources from declarative config",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	Landform.PersistentFlags().String("state", "", "State file (default ~/.landform/state.db)")
	Landform.PersistentFlags().BoolP("verbose", "v", false, "Log provisioning activity")
}

// An env holds everything a command needs to operate on a project: the loaded
// config, the evaluation context for var and secret references, the state
// store and the reconciler.
type env struct {
	cfg   *config.Config
	base  *hcl.EvalContext
	state *storage.KV
	rec   *reconciler.Reconciler
	reg   *resource.Registry
}

// loadEnv loads the project from the directory given as the first argument,
// or the working directory. Load failures are fatal.
func loadEnv(cmd *cobra.Command, args []string) *env {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	loader := &config.Loader{}
	cfg, diags := loader.Load(dir)
	if diags.HasErrors() {
		loader.WriteDiagnostics(os.Stderr, diags)
		os.Exit(2)
	}
	secrets, diags := loader.LoadSecrets(dir)
	if diags.HasErrors() {
		loader.WriteDiagnostics(os.Stderr, diags)
		os.Exit(2)
	}

	base := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var":    cty.ObjectVal(cfg.VariableValues()),
			"secret": cty.ObjectVal(secrets),
		},
	}

	reg := &resource.Registry{}
	aws.Register(reg)

	state := openState(cmd)
	rec := &reconciler.Reconciler{
		State:    state,
		Registry: reg,
		Auth:     &auth.Default{},
		Logger:   logger(cmd),
	}

	return &env{cfg: cfg, base: base, state: state, rec: rec, reg: reg}
}

// buildPlan builds the resource graph and its execution plan. Graph errors
// (cycles, dangling references, unknown types) are fatal.
func (e *env) buildPlan() (*graph.Graph, *plan.Plan) {
	b := &graph.Builder{Registry: e.reg}
	g, err := b.Build(e.cfg, e.base)
	if err != nil {
		fatal(err)
	}
	p, err := plan.Create(g)
	if err != nil {
		fatal(err)
	}
	return g, p
}

func openState(cmd *cobra.Command) *storage.KV {
	file, err := cmd.Flags().GetString("state")
	if err != nil {
		fatal(err)
	}
	var backend storage.Backend
	if file == "" {
		backend, err = kvbackend.NewBolt()
	} else {
		backend, err = kvbackend.NewBoltWithFile(file)
	}
	if err != nil {
		fatal(err)
	}
	return &storage.KV{Backend: backend}
}

func logger(cmd *cobra.Command) *zap.Logger {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil || !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// fatal prints the error and exits with the fatal exit code. It is used for
// errors that prevented a run from starting at all, as opposed to a run that
// started but left some resources unrealized.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(2)
}

// printReport prints the terminal state of every node. Nodes that did not
// complete keep the run from exiting cleanly.
func printReport(rep *reconciler.Report) {
	for _, n := range rep.Nodes {
		if n.Err != nil {
			fmt.Printf("  %-12s %s: %v\n", n.Status, n.Address, n.Err)
			continue
		}
		fmt.Printf("  %-12s %s\n", n.Status, n.Address)
	}
	fmt.Printf("\nCreated: %d, Updated: %d, Deleted: %d\n", rep.Created, rep.Updated, rep.Deleted+rep.Destroyed)
}
