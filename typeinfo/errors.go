package typeinfo

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below.
var (
	ErrUnknownType       = errors.New("unknown type")
	ErrDuplicateType     = errors.New("type already registered")
	ErrDescriptorNil     = errors.New("descriptor cannot be nil")
	ErrInvalidDescriptor = errors.New("invalid descriptor")
)

var (
	_ error = UnknownTypeError{}
	_ error = DuplicateTypeError{}
	_ error = InvalidDescriptorError{}
)

// UnknownTypeError indicates the provider has no descriptor for a name.
type UnknownTypeError struct {
	Name string
}

func (e UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Name)
}

func (e UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}

// DuplicateTypeError indicates a name was registered twice.
type DuplicateTypeError struct {
	Name string
}

func (e DuplicateTypeError) Error() string {
	return fmt.Sprintf("type %q already registered", e.Name)
}

func (e DuplicateTypeError) Is(target error) bool {
	return target == ErrDuplicateType
}

// InvalidDescriptorError reports a structural problem in a descriptor.
type InvalidDescriptorError struct {
	Name   string
	Reason string
}

func (e InvalidDescriptorError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid descriptor: %s", e.Reason)
	}
	return fmt.Sprintf("invalid descriptor %q: %s", e.Name, e.Reason)
}

func (e InvalidDescriptorError) Is(target error) bool {
	return target == ErrInvalidDescriptor
}
