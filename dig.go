package ioc

import (
	"go.uber.org/dig"
)

// FromDig returns a Factory that pulls a T out of a dig container. It lets
// values built by an existing dig graph be bound under a string abstract.
//
//	c.Set("db", ioc.FromDig[*sql.DB](digContainer))
func FromDig[T any](dc *dig.Container, opts ...dig.InvokeOption) Factory {
	return func(Resolver) (any, error) {
		var out T
		err := dc.Invoke(func(v T) {
			out = v
		}, opts...)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// ProvideToDig makes the value bound to abstract available to a dig
// container as a T. The value is resolved through c's cache when dig first
// needs it.
func ProvideToDig[T any](c *Container, dc *dig.Container, abstract string, opts ...dig.ProvideOption) error {
	return dc.Provide(func() (T, error) {
		return Resolve[T](c, abstract)
	}, opts...)
}
