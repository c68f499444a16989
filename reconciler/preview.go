package reconciler

import (
	"context"

	"github.com/hashicorp/hcl2/gohcl"
	"github.com/hashicorp/hcl2/hcl"
	"github.com/landform/landform/graph"
	"github.com/landform/landform/plan"
	"github.com/landform/landform/resource"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// An Action is the operation an apply would perform on an instance.
type Action int

// Actions, in the order an apply considers them.
const (
	ActionNone Action = iota
	ActionCreate
	ActionUpdate
	ActionReplace
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "no-op"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionReplace:
		return "replace"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// A Change is a planned operation on a single instance.
type Change struct {
	Address string
	Action  Action
}

// Preview computes the operations an apply would perform, without calling
// the provider.
//
// When an instance's configuration depends on an output that does not exist
// yet, its exact diff is not knowable in advance; such instances are reported
// as updates.
func (r *Reconciler) Preview(ctx context.Context, project string, g *graph.Graph, p *plan.Plan, base *hcl.EvalContext) ([]Change, error) {
	records, err := r.State.ListRecords(ctx, project)
	if err != nil {
		return nil, errors.Wrap(err, "list state records")
	}
	order, err := r.State.GetOrder(ctx, project)
	if err != nil {
		return nil, errors.Wrap(err, "get recorded order")
	}

	vals := make(map[string]cty.Value, len(records))
	for addr, rec := range records {
		def := r.Registry.New(rec.Type)
		if def == nil {
			continue
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

	changes := make([]Change, 0, len(p.Steps))
	for _, n := range p.Steps {
		addr := n.Addr.String()
		rec, exists := records[addr]
		if !exists {
			changes = append(changes, Change{Address: addr, Action: ActionCreate})
			continue
		}

		evalCtx := &hcl.EvalContext{Variables: vars}
		if base != nil {
			evalCtx = base.NewChild()
			evalCtx.Variables = vars
		}
		if n.Addr.Index >= 0 {
			child := evalCtx.NewChild()
			child.Variables = map[string]cty.Value{
				"count": cty.ObjectVal(map[string]cty.Value{
					"index": cty.NumberIntVal(int64(n.Addr.Index)),
				}),
			}
			evalCtx = child
		}

		def := r.Registry.New(n.Addr.Type)
		if def == nil {
			return nil, errors.Errorf("type not registered: %q", n.Addr.Type)
		}
		if diags := gohcl.DecodeBody(n.Config, evalCtx, def); diags.HasErrors() {
			// Depends on values only known after apply.
			changes = append(changes, Change{Address: addr, Action: ActionUpdate})
			continue
		}
		if resource.Hash(def) == rec.Hash {
			changes = append(changes, Change{Address: addr, Action: ActionNone})
			continue
		}

		prev := r.Registry.New(rec.Type)
		if prev != nil {
			if err := resource.UnmarshalDefinition(prev, rec.Def); err == nil && forceNewChanged(def, prev) {
				changes = append(changes, Change{Address: addr, Action: ActionReplace})
				continue
			}
		}
		changes = append(changes, Change{Address: addr, Action: ActionUpdate})
	}

	// Instances with a record but no declaration get deleted, children
	// before parents.
	for _, addr := range plan.Reverse(order) {
		if _, ok := records[addr]; !ok {
			continue
		}
		if g.Get(addr) != nil {
			continue
		}
		changes = append(changes, Change{Address: addr, Action: ActionDelete})
	}
	return changes, nil
}
