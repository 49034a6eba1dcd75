// FILE: lixenwraith/datacast/errors.go
package datacast

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every error returned by a cast matches one of these via errors.Is,
// except original caster errors propagated under raise_original or extra-field casting.
var (
	ErrRequiredField = errors.New("required field missing")
	ErrCast          = errors.New("value cannot be cast")
	ErrExtraField    = errors.New("input contains extra fields")
	ErrConfiguration = errors.New("invalid configuration")
	ErrInvalidSchema = errors.New("invalid schema")
)

// RequiredFieldError reports a declared field without default that is absent from the input.
type RequiredFieldError struct {
	Field string
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRequiredField, e.Field)
}

func (e *RequiredFieldError) Is(target error) bool {
	return target == ErrRequiredField
}

// CastError reports a caster chain failure for a declared field.
// Value holds the raw value that entered the chain.
type CastError struct {
	Field string
	Value any
	Err   error
}

func (e *CastError) Error() string {
	return fmt.Sprintf("%s: field %q (value %v): %v", ErrCast, e.Field, e.Value, e.Err)
}

func (e *CastError) Is(target error) bool {
	return target == ErrCast
}

func (e *CastError) Unwrap() error {
	return e.Err
}

// ExtraFieldError names the undeclared input keys rejected under on_extra=raise.
type ExtraFieldError struct {
	Keys []string
}

func (e *ExtraFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrExtraField, strings.Join(e.Keys, ", "))
}

func (e *ExtraFieldError) Is(target error) bool {
	return target == ErrExtraField
}

// ConfigurationError reports an unknown or malformed setting.
type ConfigurationError struct {
	Setting string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Setting == "" {
		return fmt.Sprintf("%s: %v", ErrConfiguration, e.Err)
	}
	return fmt.Sprintf("%s: setting %q: %v", ErrConfiguration, e.Setting, e.Err)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// PanicError carries a panic recovered from a caster.
// It is returned as the caster error, so under raise_original the cast
// fails with the *PanicError itself rather than the raw panic value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("caster panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
