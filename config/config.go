package config

import (
	"github.com/hashicorp/hcl2/hcl"
	"github.com/zclconf/go-cty/cty"
)

// A Config contains all declarations loaded for a project.
type Config struct {
	Project   Project
	Resources []Declaration
	Variables []Variable
	Outputs   []Output
}

// A Project is the root configuration block. The project name namespaces the
// persisted state.
type Project struct {
	Name      string
	DeclRange hcl.Range
}

// A Declaration is a single resource block. A declaration with a count
// expands into multiple resource instances at graph build time.
type Declaration struct {
	Type string // Resource type, first block label.
	Name string // Resource name, second block label.

	// Count is the count attribute expression, or nil if count was not set.
	Count hcl.Expression

	// Config is the block body with the count attribute removed. It is
	// decoded into the resource definition once references can be resolved.
	Config hcl.Body

	DeclRange hcl.Range
}

// A Variable is a named configuration value, referenced as var.<name>.
type Variable struct {
	Name      string
	Default   cty.Value
	DeclRange hcl.Range
}

// An Output is a named value computed from realized resources after apply.
type Output struct {
	Name      string
	Value     hcl.Expression
	DeclRange hcl.Range
}

// Variable lookup, keyed by name.
func (c *Config) VariableValues() map[string]cty.Value {
	vals := make(map[string]cty.Value, len(c.Variables))
	for _, v := range c.Variables {
		vals[v.Name] = v.Default
	}
	return vals
}
