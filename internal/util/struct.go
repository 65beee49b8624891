package util

import (
	"reflect"

	"github.com/pkg/errors"
)

var ErrNotInitialized = errors.New("struct is not fully initialized")

// IsStructInitialized checks that every exported pointer, interface, map, slice
// and func field of the struct behind s is non-nil. Fields tagged `wire:"-"`
// are checked too, they are expected to be set after wiring.
func IsStructInitialized(s any) error {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return errors.Wrap(ErrNotInitialized, "nil pointer")
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return errors.Errorf("expected struct, got %s", val.Kind())
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		value := val.Field(i)
		switch value.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			if value.IsNil() {
				return errors.Wrapf(ErrNotInitialized, "field %s is nil", field.Name)
			}
		default:
		}
	}

	return nil
}
