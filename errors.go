package ioc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quillwire/ioc/internal/graph"
	"github.com/quillwire/ioc/typeinfo"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// These are matched with errors.Is. The container returns the typed errors
// below, never the sentinels directly.

var (
	// Resolution errors.
	ErrServiceNotFound            = errors.New("service not found")
	ErrServiceNotInstantiable     = errors.New("service not instantiable")
	ErrParameterHasNoDefaultValue = errors.New("parameter has no default value")
	ErrMethodNotFound             = errors.New("method not found")
	ErrParameterNotFound          = errors.New("parameter not found")
	ErrCircularDependency         = graph.ErrCircularDependency
	ErrMaxDepthExceeded           = errors.New("maximum resolution depth exceeded")

	// Boundary errors.
	ErrInvalidRequest = errors.New("invalid request")
	ErrNoTypeRegistry = errors.New("container types are not a *typeinfo.Registry")
)

var (
	_ error = ServiceNotFoundError{}
	_ error = ServiceNotInstantiableError{}
	_ error = ParameterHasNoDefaultValueError{}
	_ error = MethodNotFoundError{}
	_ error = ParameterNotFoundError{}
	_ error = CircularDependencyError{}
	_ error = ResolutionDepthError{}
	_ error = ConstructorError{}
	_ error = PanicError{}
	_ error = RequestError{}
	_ error = ModuleError{}
	_ error = ManifestError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// CircularDependencyError reports a frame that reappeared on the resolution chain.
type CircularDependencyError = graph.CircularDependencyError

// ServiceNotFoundError indicates the type provider cannot describe a type.
type ServiceNotFoundError struct {
	Type  string
	Cause error
}

func (e ServiceNotFoundError) Error() string {
	if e.Cause != nil && !errors.Is(e.Cause, typeinfo.ErrUnknownType) {
		return fmt.Sprintf("service not found: %s: %v", e.Type, e.Cause)
	}
	return fmt.Sprintf("service not found: %s", e.Type)
}

func (e ServiceNotFoundError) Unwrap() error {
	return e.Cause
}

func (e ServiceNotFoundError) Is(target error) bool {
	return target == ErrServiceNotFound
}

// ServiceNotInstantiableError indicates a type is known but cannot be constructed.
type ServiceNotInstantiableError struct {
	Type string
	Kind typeinfo.Kind
}

func (e ServiceNotInstantiableError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "service %s is not instantiable", e.Type)

	switch e.Kind {
	case typeinfo.KindInterface:
		b.WriteString(": interfaces need a binding to a class")
	case typeinfo.KindClass:
		b.WriteString(": the class is abstract or has no constructor")
	}
	return b.String()
}

func (e ServiceNotInstantiableError) Is(target error) bool {
	return target == ErrServiceNotInstantiable
}

// ParameterHasNoDefaultValueError indicates a parameter had no override, no
// resolvable dependency and no default value.
type ParameterHasNoDefaultValueError struct {
	Service   string
	Method    string // empty for constructor parameters
	Parameter string
	Cause     error // the dependency failure, if any
}

func (e ParameterHasNoDefaultValueError) Error() string {
	msg := fmt.Sprintf("parameter %q of %s has no default value", e.Parameter, owner(e.Service, e.Method))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e ParameterHasNoDefaultValueError) Unwrap() error {
	return e.Cause
}

func (e ParameterHasNoDefaultValueError) Is(target error) bool {
	return target == ErrParameterHasNoDefaultValue
}

// MethodNotFoundError indicates the resolved type has no such method.
type MethodNotFoundError struct {
	Type   string
	Method string
}

func (e MethodNotFoundError) Error() string {
	return fmt.Sprintf("method %q not found on %s", e.Method, e.Type)
}

func (e MethodNotFoundError) Is(target error) bool {
	return target == ErrMethodNotFound
}

// ParameterNotFoundError indicates an override names a parameter the
// method does not declare. Only returned with WithStrictParameters.
type ParameterNotFoundError struct {
	Service   string
	Method    string
	Parameter string
}

func (e ParameterNotFoundError) Error() string {
	return fmt.Sprintf("parameter %q not found on %s", e.Parameter, owner(e.Service, e.Method))
}

func (e ParameterNotFoundError) Is(target error) bool {
	return target == ErrParameterNotFound
}

// ResolutionDepthError indicates the resolution chain grew past the limit.
type ResolutionDepthError struct {
	Service string
	Limit   int
	Path    []string
}

func (e ResolutionDepthError) Error() string {
	return fmt.Sprintf("resolving %s exceeded the maximum depth of %d: %s",
		e.Service, e.Limit, strings.Join(e.Path, " -> "))
}

func (e ResolutionDepthError) Is(target error) bool {
	return target == ErrMaxDepthExceeded
}

// ConstructorError wraps an error returned by a constructor, factory or method.
type ConstructorError struct {
	Service string
	Method  string
	Cause   error
}

func (e ConstructorError) Error() string {
	return fmt.Sprintf("failed to build %s: %v", owner(e.Service, e.Method), e.Cause)
}

func (e ConstructorError) Unwrap() error {
	return e.Cause
}

// PanicError indicates a constructor, factory or method panicked.
// It captures the panic value and stack trace for debugging.
type PanicError struct {
	Service string
	Method  string
	Panic   any
	Stack   []byte
}

func (e PanicError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s panicked: %v\n", owner(e.Service, e.Method), e.Panic)

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Check for nil dependencies in the constructor\n")
	b.WriteString("  • Return an error instead of panicking\n")

	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:\n")
		b.Write(e.Stack)
	}

	return b.String()
}

// RequestError indicates subscript input could not be decoded.
type RequestError struct {
	Input  any
	Reason string
	Cause  error
}

func (e RequestError) Error() string {
	msg := fmt.Sprintf("invalid request %s: %s", describeInput(e.Input), e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e RequestError) Unwrap() error {
	return e.Cause
}

func (e RequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// ModuleError wraps errors from module installation.
type ModuleError struct {
	Module string
	Cause  error
}

func (e ModuleError) Error() string {
	return fmt.Sprintf("module %q: %v", e.Module, e.Cause)
}

func (e ModuleError) Unwrap() error {
	return e.Cause
}

// ManifestError wraps errors from loading or applying a binding manifest.
type ManifestError struct {
	Source string
	Entry  string // binding key, empty for file-level errors
	Cause  error
}

func (e ManifestError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("manifest %s: binding %q: %v", e.Source, e.Entry, e.Cause)
	}
	return fmt.Sprintf("manifest %s: %v", e.Source, e.Cause)
}

func (e ManifestError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is, or wraps, a ServiceNotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrServiceNotFound)
}

// IsNotInstantiable reports whether err is, or wraps, a ServiceNotInstantiableError.
func IsNotInstantiable(err error) bool {
	return errors.Is(err, ErrServiceNotInstantiable)
}

// IsCircular reports whether err is, or wraps, a CircularDependencyError.
func IsCircular(err error) bool {
	return errors.Is(err, ErrCircularDependency)
}

// IsMissingValue reports whether err is, or wraps, a ParameterHasNoDefaultValueError.
func IsMissingValue(err error) bool {
	return errors.Is(err, ErrParameterHasNoDefaultValue)
}

// recoverable reports whether a dependency failure may be replaced by the
// parameter's default. Only the resolution kinds qualify; a failure that
// merely wraps one (a factory error, for instance) does not.
func recoverable(err error) bool {
	switch err.(type) {
	case ServiceNotFoundError, ServiceNotInstantiableError,
		ParameterHasNoDefaultValueError, MethodNotFoundError, CircularDependencyError:
		return true
	}
	return false
}

// passthrough reports whether err already carries container context and
// should not be wrapped again.
func passthrough(err error) bool {
	if recoverable(err) {
		return true
	}
	switch err.(type) {
	case ParameterNotFoundError, ResolutionDepthError, ConstructorError, PanicError:
		return true
	}
	return false
}

func owner(service, method string) string {
	if method == "" {
		return service
	}
	return service + "::" + method
}

func describeInput(v any) string {
	switch in := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return fmt.Sprintf("%q", in)
	case []byte:
		return fmt.Sprintf("%q", in)
	default:
		return fmt.Sprintf("%T", v)
	}
}
