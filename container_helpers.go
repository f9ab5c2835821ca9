package ioc

import (
	"fmt"
)

// Version is the release of the container's resolution semantics. It moves
// with behaviour visible through Get, Make and their method forms.
const Version = "1.2.0"

// Resolve is a generic helper function that resolves abstract through r's
// cache and asserts the result to T.
func Resolve[T any](r Resolver, abstract string) (T, error) {
	instance, err := r.Get(abstract)
	if err != nil {
		var zero T
		return zero, err
	}
	return assertType[T](abstract, instance)
}

// ResolveMethod is a generic helper function that resolves the cached
// result of method on abstract and asserts it to T.
func ResolveMethod[T any](r Resolver, abstract, method string, args Args) (T, error) {
	instance, err := r.GetMethod(abstract, method, args)
	if err != nil {
		var zero T
		return zero, err
	}
	return assertType[T](owner(abstract, method), instance)
}

// MakeAs is a generic helper function that builds a fresh abstract and
// asserts the result to T.
func MakeAs[T any](r Resolver, abstract string) (T, error) {
	instance, err := r.Make(abstract)
	if err != nil {
		var zero T
		return zero, err
	}
	return assertType[T](abstract, instance)
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](r Resolver, abstract string) T {
	result, err := Resolve[T](r, abstract)
	if err != nil {
		panic(err)
	}
	return result
}

func assertType[T any](name string, instance any) (T, error) {
	var zero T
	if instance == nil {
		return zero, nil
	}

	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("type assertion failed for %s: expected %T, got %T", name, zero, instance)
	}
	return result, nil
}
