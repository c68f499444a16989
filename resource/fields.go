package resource

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
)

// A Field represents an extracted field from a definition struct.
type Field struct {
	Index int               // The field's index, relative to the parent struct.
	Type  reflect.Type      // The field's type.
	Tags  map[string]string // Struct tags set on the field, excluding func and name tags.

	dir  string   // input or output, from func:""
	opts []string // options after the direction, such as forcenew or secret
}

// Input returns true if the field is marked as an input with func:"input".
func (f Field) Input() bool { return f.dir == "input" }

// Output returns true if the field is marked as an output with func:"output".
func (f Field) Output() bool { return f.dir == "output" }

// ForceNew returns true if a change to the field's value requires the
// resource to be replaced, rather than updated in place.
func (f Field) ForceNew() bool { return f.hasOpt("forcenew") }

// Secret returns true if the field's value must never be persisted or logged
// in plain text.
func (f Field) Secret() bool { return f.hasOpt("secret") }

func (f Field) hasOpt(name string) bool {
	for _, o := range f.opts {
		if o == name {
			return true
		}
	}
	return false
}

// A FieldSet contains extracted fields, keyed by the field's configuration
// name.
type FieldSet map[string]Field

// Inputs filters the FieldSet and returns all fields that are marked as an
// input.
func (ff FieldSet) Inputs() FieldSet {
	out := make(FieldSet, len(ff))
	for k, v := range ff {
		if v.Input() {
			out[k] = v
		}
	}
	return out
}

// Outputs filters the FieldSet and returns all fields that are marked as an
// output.
func (ff FieldSet) Outputs() FieldSet {
	out := make(FieldSet, len(ff))
	for k, v := range ff {
		if v.Output() {
			out[k] = v
		}
	}
	return out
}

// Names returns the field names in the set, lexicographically sorted.
func (ff FieldSet) Names() []string {
	names := make([]string, 0, len(ff))
	for k := range ff {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Fields extracts fields from target. Unexported fields are ignored.
//
// All fields are extracted, regardless if they are marked as an input, output
// or neither. The returned FieldSet may be further filtered to get the
// desired fields.
//
// The name of the field is derived from the struct field name. For example,
// ExampleField becomes example_field. This can be overridden by setting a
// `name:"<override>"` tag.
//
// Panics if target is not a struct or a pointer to a struct, or if a field is
// marked as both an input and an output.
func Fields(target reflect.Type) FieldSet {
	t := target
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("Target must be a struct or pointer to struct, not %s", target.Kind()))
	}
	fields := make(FieldSet, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		tag, ok := f.Tag.Lookup("func")
		if !ok {
			continue
		}
		parts := strings.Split(tag, ",")
		field := Field{
			Index: i,
			Type:  f.Type,
			Tags:  otherTags(f.Tag),
			dir:   parts[0],
			opts:  parts[1:],
		}
		if field.dir != "input" && field.dir != "output" {
			panic(fmt.Sprintf("Field %q has invalid func tag %q; must start with input or output", f.Name, tag))
		}
		fields[fieldName(f)] = field
	}
	return fields
}

var reFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
var reAllCap = regexp.MustCompile("([a-z0-9])([A-Z])")

func fieldName(f reflect.StructField) string {
	if n, ok := f.Tag.Lookup("name"); ok {
		return n
	}
	snake := reFirstCap.ReplaceAllString(f.Name, "${1}_${2}")
	snake = reAllCap.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}

// otherTags collects struct tags, excluding the tags that carry field
// identity (func, name, hcl).
func otherTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string)
	for _, name := range []string{"validate"} {
		if v, ok := tag.Lookup(name); ok {
			tags[name] = v
		}
	}
	return tags
}
