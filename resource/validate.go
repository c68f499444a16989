package resource

import (
	"fmt"
	"net"
	"reflect"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	validator "gopkg.in/go-playground/validator.v9"
)

var check = validator.New()

func mustRegister(err error) {
	if err != nil {
		panic(fmt.Sprintf("Register custom validator: %v", err))
	}
}

func init() {
	mustRegister(check.RegisterValidation("cidr", func(fl validator.FieldLevel) bool {
		_, _, err := net.ParseCIDR(fl.Field().String())
		return err == nil
	}))
	mustRegister(check.RegisterValidation("arn", func(fl validator.FieldLevel) bool {
		_, err := arn.Parse(fl.Field().String())
		return err == nil
	}))
}

// Validate checks all input values against the validation rules declared in
// the fields' validate struct tags. All inputs are checked; the returned
// error contains every violation.
//
// Inputs that are nil pointers are not validated.
func Validate(def Definition) error {
	v := reflect.Indirect(reflect.ValueOf(def))
	inputs := Fields(v.Type()).Inputs()
	var err error
	for _, name := range inputs.Names() {
		f := inputs[name]
		fv := reflect.Indirect(v.Field(f.Index))
		if !fv.IsValid() {
			// Optional input not set.
			continue
		}
		if rules := f.Tags["validate"]; rules != "" {
			if verr := checkVar(fv.Interface(), rules); verr != nil {
				err = multierr.Append(err, errors.Wrap(verr, name))
			}
		}
		err = multierr.Append(err, checkNested(name, fv))
	}
	return err
}

// checkNested validates the rules declared inside block structs. Inputs that
// are not structs or slices of structs have no nested rules and pass.
func checkNested(name string, fv reflect.Value) error {
	switch fv.Kind() {
	case reflect.Struct:
		if verr := friendly(check.Struct(fv.Interface())); verr != nil {
			return errors.Wrap(verr, name)
		}
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.Struct {
			return nil
		}
		var err error
		for i := 0; i < fv.Len(); i++ {
			if verr := friendly(check.Struct(fv.Index(i).Interface())); verr != nil {
				err = multierr.Append(err, errors.Wrapf(verr, "%s[%d]", name, i))
			}
		}
		return err
	}
	return nil
}

var once sync.Once
var formats map[string]string

func checkVar(v interface{}, tag string) error {
	return friendly(check.Var(v, tag))
}

// friendly replaces a validator error with the human readable message for the
// first failed rule, when one is defined.
func friendly(err error) error {
	if err == nil {
		return nil
	}
	once.Do(initFormatters)
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err
	}
	fe := errs[0]
	format, ok := formats[fe.Tag()]
	if !ok {
		return err
	}
	if !strings.Contains(format, "%") {
		return fmt.Errorf(format)
	}
	return fmt.Errorf(format, fe.Param())
}

func initFormatters() {
	formats = map[string]string{
		"min":   "must be %v or more",
		"max":   "must be %v or less",
		"gte":   "must be %v or more",
		"gt":    "must be more than %v",
		"lte":   "must be %v or less",
		"lt":    "must be less than %v",
		"oneof": "must be one of: [%v]",

		// custom
		"cidr": "must be a valid CIDR block",
		"arn":  "must be a valid arn (https://docs.aws.amazon.com/general/latest/gr/aws-arns-and-namespaces.html)",
	}
}
