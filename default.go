package ioc

import (
	"github.com/quillwire/ioc/singleton"
)

// shared holds the process-wide container.
var shared = singleton.New(func() (*Container, error) {
	return New(nil), nil
})

// Shared returns the process-wide container, creating it on first use with
// an empty type registry. Register types through Install and RegisterTypes.
//
// Package-level code that needs a container should prefer an explicit one;
// Shared exists for programs that want a single global registry, similar to
// slog.Default.
func Shared() *Container {
	return shared.MustGet()
}

// SharedHolder returns the holder behind Shared, for callers that need its
// copy guards or want to check whether it was created.
func SharedHolder() *singleton.Holder[*Container] {
	return shared
}
