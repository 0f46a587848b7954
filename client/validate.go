package client

import "github.com/go-playground/validator/v10"

var structValidator = validator.New()

// validateStruct runs v's "validate" struct tags, wrapping any failure in
// a ValidationError tagged with op so callers can tell which argument
// struct rejected the call.
func validateStruct(op string, v interface{}) error {
	if err := structValidator.Struct(v); err != nil {
		return &ValidationError{Op: op, Err: err}
	}
	return nil
}
