package reconciler

import (
	"github.com/landform/landform/resource"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// resourceVariables groups realized instance values into variables for
// expression evaluation.
//
// values is keyed by instance address. Instances without count become plain
// objects (aws_vpc.main), counted instances become tuples indexed by ordinal
// (aws_subnet.private[1]). Ordinals missing from values are unknown, which
// lets an expression index into the known part of a tuple.
func resourceVariables(values map[string]cty.Value) (map[string]cty.Value, error) {
	type instance struct {
		typ, name string
	}
	plain := make(map[instance]cty.Value)
	counted := make(map[instance]map[int]cty.Value)
	for s, v := range values {
		addr, err := resource.ParseAddress(s)
		if err != nil {
			return nil, errors.Wrap(err, "group realized values")
		}
		key := instance{addr.Type, addr.Name}
		if addr.Index < 0 {
			plain[key] = v
			continue
		}
		m, ok := counted[key]
		if !ok {
			m = make(map[int]cty.Value)
			counted[key] = m
		}
		m[addr.Index] = v
	}

	byType := make(map[string]map[string]cty.Value)
	set := func(typ, name string, v cty.Value) {
		m, ok := byType[typ]
		if !ok {
			m = make(map[string]cty.Value)
			byType[typ] = m
		}
		m[name] = v
	}
	for key, v := range plain {
		set(key.typ, key.name, v)
	}
	for key, m := range counted {
		max := -1
		for i := range m {
			if i > max {
				max = i
			}
		}
		elems := make([]cty.Value, max+1)
		for i := range elems {
			v, ok := m[i]
			if !ok {
				v = cty.UnknownVal(cty.DynamicPseudoType)
			}
			elems[i] = v
		}
		set(key.typ, key.name, cty.TupleVal(elems))
	}

	out := make(map[string]cty.Value, len(byType))
	for typ, m := range byType {
		out[typ] = cty.ObjectVal(m)
	}
	return out, nil
}
