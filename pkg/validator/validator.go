package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

type Validator interface {
	Validate(value interface{}) error
}

type StringFunc func(s string) error

// Form validates a request struct field by field. Keys are json tag names,
// or the Go field name for embedded/untagged fields.
type Form struct {
	validators map[string]Validator
}

func MustForm(validators map[string]Validator) *Form {
	if len(validators) == 0 {
		panic("form has no validators")
	}
	return &Form{validators: validators}
}

func (f *Form) Validate(value interface{}) error {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return errors.New("expect a struct, got nil")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return fmt.Errorf("expect a struct, got %v", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		var (
			field = t.Field(i)
			key   = fieldKey(field)
		)

		fv, ok := f.validators[key]
		if !ok {
			continue
		}

		if err := fv.Validate(v.Field(i).Interface()); err != nil {
			return fmt.Errorf("%s: %v", key, err)
		}
	}

	return nil
}

func fieldKey(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		tag = field.Tag.Get("schema")
	}
	if tag == "" {
		return field.Name
	}

	name := strings.Split(tag, ",")[0]
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

type String struct {
	Optional   bool
	UnsetZero  bool
	MinLen     int
	MaxLen     int
	Regex      *regexp.Regexp
	Validators []StringFunc
}

func (v *String) Validate(value interface{}) error {
	var (
		s     string
		isSet bool
	)
	switch val := value.(type) {
	case string:
		s, isSet = val, true
	case *string:
		if val != nil {
			s, isSet = *val, true
		}
	default:
		return errors.New("expect a string")
	}

	if isSet && v.UnsetZero && s == "" {
		isSet = false
	}

	if !isSet {
		if v.Optional {
			return nil
		}
		return errors.New("is required")
	}

	if v.MinLen > 0 && len(s) < v.MinLen {
		return fmt.Errorf("must be at least %d chars", v.MinLen)
	}

	if v.MaxLen > 0 && len(s) > v.MaxLen {
		return fmt.Errorf("must be at most %d chars", v.MaxLen)
	}

	if v.Regex != nil && !v.Regex.MatchString(s) {
		return errors.New("has invalid format")
	}

	for _, fn := range v.Validators {
		if err := fn(s); err != nil {
			return err
		}
	}

	return nil
}

type UInt64 struct {
	Optional bool
	Min      *uint64
	Max      *uint64
}

func (v *UInt64) Validate(value interface{}) error {
	var (
		ui    uint64
		isSet bool
	)
	switch val := value.(type) {
	case uint64:
		ui, isSet = val, true
	case *uint64:
		if val != nil {
			ui, isSet = *val, true
		}
	default:
		return errors.New("expect a uint64")
	}

	if !isSet {
		if v.Optional {
			return nil
		}
		return errors.New("is required")
	}

	if v.Min != nil && ui < *v.Min {
		return fmt.Errorf("must be >= %d", *v.Min)
	}

	if v.Max != nil && ui > *v.Max {
		return fmt.Errorf("must be <= %d", *v.Max)
	}

	return nil
}

type Slice struct {
	Optional  bool
	MinLen    int
	MaxLen    int
	Validator Validator
}

func (v *Slice) Validate(value interface{}) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() == reflect.Slice && rv.IsNil()) {
		if v.Optional {
			return nil
		}
		return errors.New("is required")
	}

	if rv.Kind() != reflect.Slice {
		return errors.New("expect a slice")
	}

	if v.MinLen > 0 && rv.Len() < v.MinLen {
		return fmt.Errorf("must have at least %d elements", v.MinLen)
	}

	if v.MaxLen > 0 && rv.Len() > v.MaxLen {
		return fmt.Errorf("must have at most %d elements", v.MaxLen)
	}

	if v.Validator != nil {
		for i := 0; i < rv.Len(); i++ {
			if err := v.Validator.Validate(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("[%d] %v", i, err)
			}
		}
	}

	return nil
}
