package resource

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// CtyValue converts a definition to a cty object value containing the
// resource's input and output fields.
//
// The value is used for resolving references from dependent resources and for
// evaluating user declared outputs. Fields that are not set are null.
func CtyValue(def Definition) (cty.Value, error) {
	v := reflect.Indirect(reflect.ValueOf(def))
	ff := Fields(v.Type())
	vals := make(map[string]cty.Value, len(ff))
	for name, f := range ff {
		if f.Type.Kind() == reflect.Interface {
			continue
		}
		val, err := toCtyValue(v.Field(f.Index))
		if err != nil {
			return cty.NilVal, errors.Wrapf(err, "convert %s", name)
		}
		vals[name] = val
	}
	if len(vals) == 0 {
		return cty.EmptyObjectVal, nil
	}
	return cty.ObjectVal(vals), nil
}

func toCtyValue(v reflect.Value) (cty.Value, error) {
	t := v.Type()
	if t.Kind() == reflect.Ptr {
		if v.IsNil() {
			return cty.NullVal(ImpliedType(t)), nil
		}
		return toCtyValue(v.Elem())
	}
	switch t.Kind() {
	case reflect.Struct:
		obj := make(map[string]cty.Value, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" {
				continue
			}
			val, err := toCtyValue(v.Field(i))
			if err != nil {
				return cty.NilVal, errors.Wrapf(err, "field %s", f.Name)
			}
			obj[fieldName(f)] = val
		}
		if len(obj) == 0 {
			return cty.EmptyObjectVal, nil
		}
		return cty.ObjectVal(obj), nil
	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && v.IsNil() {
			return cty.NullVal(ImpliedType(t)), nil
		}
		if v.Len() == 0 {
			return cty.ListValEmpty(ImpliedType(t.Elem())), nil
		}
		list := make([]cty.Value, v.Len())
		for i := 0; i < v.Len(); i++ {
			val, err := toCtyValue(v.Index(i))
			if err != nil {
				return cty.NilVal, errors.Wrapf(err, "index %d", i)
			}
			list[i] = val
		}
		return cty.ListVal(list), nil
	case reflect.Map:
		if v.IsNil() {
			return cty.NullVal(ImpliedType(t)), nil
		}
		if v.Len() == 0 {
			return cty.MapValEmpty(ImpliedType(t.Elem())), nil
		}
		m := make(map[string]cty.Value, v.Len())
		for _, k := range v.MapKeys() {
			val, err := toCtyValue(v.MapIndex(k))
			if err != nil {
				return cty.NilVal, errors.Wrapf(err, "key %s", k.String())
			}
			m[k.String()] = val
		}
		return cty.MapVal(m), nil
	case reflect.Bool:
		return cty.BoolVal(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cty.NumberIntVal(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return cty.NumberUIntVal(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return cty.NumberFloatVal(v.Float()), nil
	case reflect.String:
		return cty.StringVal(v.String()), nil
	}
	return cty.NilVal, errors.Errorf("cannot convert %s", t.Kind())
}
