package resource

import (
	"fmt"
	"reflect"
	"sort"
)

// A Registry maintains a list of registered resource definitions.
type Registry struct {
	resources map[string]reflect.Type
}

// RegistryFromDefinitions creates a new registry from a predefined list of
// definitions. It is primarily used in tests to set up a registry.
func RegistryFromDefinitions(defs ...Definition) *Registry {
	r := &Registry{}
	for _, def := range defs {
		r.Register(def)
	}
	return r
}

// Register adds a new resource type.
//
// The Definition interface must be implemented on a pointer receiver on a
// struct. Panics otherwise. If another resource with the same type is already
// registered, it is overwritten.
//
// Not safe for concurrent access.
func (r *Registry) Register(def Definition) {
	t := reflect.TypeOf(def)
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("Definition must be a pointer to a struct, not %s", t.Kind()))
	}
	if r.resources == nil {
		r.resources = make(map[string]reflect.Type)
	}
	r.resources[def.Type()] = t.Elem()
}

// New returns a new zero value instance of the definition registered with the
// given type name. Returns nil if the type has not been registered.
func (r *Registry) New(typename string) Definition {
	t, ok := r.resources[typename]
	if !ok {
		return nil
	}
	return reflect.New(t).Interface().(Definition)
}

// Type returns the registered struct type with a certain name. Returns nil if
// the type has not been registered.
func (r *Registry) Type(typename string) reflect.Type {
	return r.resources[typename]
}

// Types returns the type names that have been registered. The results are
// lexicographically sorted.
func (r *Registry) Types() []string {
	tt := make([]string, 0, len(r.resources))
	for k := range r.resources {
		tt = append(tt, k)
	}
	sort.Strings(tt)
	return tt
}
