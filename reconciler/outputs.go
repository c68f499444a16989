package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl2/hcl"
	"github.com/landform/landform/config"
	"github.com/landform/landform/resource"
	"github.com/landform/landform/storage"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// An OutputUnavailableError is returned when a declared output reads an
// attribute off an instance that has not been realized.
type OutputUnavailableError struct {
	Name    string // The output name.
	Address string // The instance the output needs, if known.
}

func (e OutputUnavailableError) Error() string {
	if e.Address != "" {
		return fmt.Sprintf("output %q unavailable: %s is not realized", e.Name, e.Address)
	}
	return fmt.Sprintf("output %q unavailable", e.Name)
}

// Outputs resolves the declared output values against stored state.
//
// Returns OutputUnavailableError for the first output that references an
// instance without a state record, including instances whose apply never
// reached done.
func (r *Reconciler) Outputs(ctx context.Context, project string, outputs []config.Output, base *hcl.EvalContext) (map[string]cty.Value, error) {
	records, err := r.State.ListRecords(ctx, project)
	if err != nil {
		return nil, errors.Wrap(err, "list state records")
	}

	vals := make(map[string]cty.Value, len(records))
	for addr, rec := range records {
		def := r.Registry.New(rec.Type)
		if def == nil {
			return nil, errors.Errorf("stored type not registered: %q", rec.Type)
		}
		if err := resource.UnmarshalDefinition(def, rec.Def); err != nil {
			return nil, errors.Wrapf(err, "decode stored state for %s", addr)
		}
		v, err := resource.CtyValue(def)
		if err != nil {
			return nil, errors.Wrapf(err, "realize value of %s", addr)
		}
		vals[addr] = v
	}
	vars, err := resourceVariables(vals)
	if err != nil {
		return nil, err
	}

	evalCtx := &hcl.EvalContext{Variables: vars}
	if base != nil {
		evalCtx = base.NewChild()
		evalCtx.Variables = vars
	}

	out := make(map[string]cty.Value, len(outputs))
	for _, o := range outputs {
		for _, trav := range o.Value.Variables() {
			if addr, ok := r.missingReference(records, trav); ok {
				return nil, OutputUnavailableError{Name: o.Name, Address: addr}
			}
		}
		v, diags := o.Value.Value(evalCtx)
		if diags.HasErrors() {
			return nil, errors.Wrapf(diags, "evaluate output %q", o.Name)
		}
		if !v.IsWhollyKnown() {
			return nil, OutputUnavailableError{Name: o.Name}
		}
		out[o.Name] = v
	}
	return out, nil
}

// missingReference reports whether a traversal references an instance that
// has no state record.
func (r *Reconciler) missingReference(records map[string]storage.Record, trav hcl.Traversal) (string, bool) {
	root := trav.RootName()
	if r.Registry.New(root) == nil {
		// Not a resource reference; var or secret.
		return "", false
	}
	if len(trav) < 2 {
		return root, true
	}
	attr, ok := trav[1].(hcl.TraverseAttr)
	if !ok {
		return root, true
	}
	base := root + "." + attr.Name

	// A literal index selects a single ordinal.
	if len(trav) > 2 {
		if idx, ok := trav[2].(hcl.TraverseIndex); ok && idx.Key.IsKnown() {
			var i int
			if err := gocty.FromCtyValue(idx.Key, &i); err == nil {
				addr := fmt.Sprintf("%s[%d]", base, i)
				if _, ok := records[addr]; !ok {
					return addr, true
				}
				return "", false
			}
		}
	}

	if _, ok := records[base]; ok {
		return "", false
	}
	for addr := range records {
		if strings.HasPrefix(addr, base+"[") {
			return "", false
		}
	}
	return base, true
}
