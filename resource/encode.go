package resource

import (
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"
)

// MarshalDefinition encodes a definition for storage.
//
// Fields marked as secret are masked; the persisted snapshot never contains
// their values in plain text. The input hash is stored separately so masking
// does not affect change detection.
func MarshalDefinition(def Definition) ([]byte, error) {
	v := reflect.Indirect(reflect.ValueOf(def))
	ff := Fields(v.Type())
	out := make(map[string]interface{}, len(ff))
	for name, f := range ff {
		if f.Type.Kind() == reflect.Interface {
			continue
		}
		if f.Secret() {
			out[name] = nil
			continue
		}
		out[name] = v.Field(f.Index).Interface()
	}
	return json.Marshal(out)
}

// UnmarshalDefinition decodes a stored definition snapshot into def. Fields
// not present in the snapshot (including masked secrets) are left at their
// zero value.
func UnmarshalDefinition(def Definition, data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "unmarshal snapshot")
	}
	v := reflect.ValueOf(def).Elem()
	ff := Fields(v.Type())
	for name, f := range ff {
		b, ok := raw[name]
		if !ok || string(b) == "null" {
			continue
		}
		if err := json.Unmarshal(b, v.Field(f.Index).Addr().Interface()); err != nil {
			return errors.Wrapf(err, "unmarshal %s", name)
		}
	}
	return nil
}
