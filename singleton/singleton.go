// Package singleton provides lazily created, process-wide single instances.
//
// A Holder creates its value on first use and hands out that same value
// forever after. Attempts to copy or decode a Holder fail with an error
// instead of producing a second instance.
package singleton

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	ErrCloneNotAllowed  = errors.New("singleton cannot be cloned")
	ErrDecodeNotAllowed = errors.New("singleton cannot be decoded")
	ErrNilInit          = errors.New("singleton init function cannot be nil")
)

var (
	_ error = CloneError{}
	_ error = DecodeError{}
)

// CloneError is returned by Holder.Clone.
type CloneError struct {
	Type reflect.Type
}

func (e CloneError) Error() string {
	return fmt.Sprintf("singleton %v cannot be cloned", e.Type)
}

func (e CloneError) Is(target error) bool {
	return target == ErrCloneNotAllowed
}

// DecodeError is returned by the decoding hooks of Holder.
type DecodeError struct {
	Type   reflect.Type
	Format string
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("singleton %v cannot be decoded from %s", e.Type, e.Format)
}

func (e DecodeError) Is(target error) bool {
	return target == ErrDecodeNotAllowed
}

// Holder lazily creates and keeps one value of type T. It is safe for
// concurrent use. A failed init is not remembered; the next Get tries again.
type Holder[T any] struct {
	mu    sync.Mutex
	init  func() (T, error)
	value T
	done  bool
}

// New returns a Holder that creates its value with init on first use.
func New[T any](init func() (T, error)) *Holder[T] {
	return &Holder[T]{init: init}
}

// Get returns the held value, creating it on the first successful call.
func (h *Holder[T]) Get() (T, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done {
		return h.value, nil
	}

	var zero T
	if h.init == nil {
		return zero, ErrNilInit
	}

	v, err := h.init()
	if err != nil {
		return zero, err
	}
	h.value = v
	h.done = true
	return v, nil
}

// MustGet is like Get but panics on error.
func (h *Holder[T]) MustGet() T {
	v, err := h.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Initialized reports whether the value has been created.
func (h *Holder[T]) Initialized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

// Clone always fails.
func (h *Holder[T]) Clone() (*Holder[T], error) {
	return nil, CloneError{Type: typeOf[T]()}
}

// UnmarshalJSON always fails.
func (h *Holder[T]) UnmarshalJSON([]byte) error {
	return DecodeError{Type: typeOf[T](), Format: "JSON"}
}

// UnmarshalText always fails.
func (h *Holder[T]) UnmarshalText([]byte) error {
	return DecodeError{Type: typeOf[T](), Format: "text"}
}

// GobDecode always fails.
func (h *Holder[T]) GobDecode([]byte) error {
	return DecodeError{Type: typeOf[T](), Format: "gob"}
}

var holders sync.Map // reflect.Type -> *Holder[T]

// Of returns the process-wide Holder for T, creating it with init the
// first time T is requested. Later calls ignore init.
func Of[T any](init func() (T, error)) *Holder[T] {
	t := typeOf[T]()
	if h, ok := holders.Load(t); ok {
		return h.(*Holder[T])
	}
	h, _ := holders.LoadOrStore(t, New(init))
	return h.(*Holder[T])
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
