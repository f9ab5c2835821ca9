package ioc

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quillwire/ioc/typeinfo"
)

// ============================================================================
// Shared Test Types
// ============================================================================

// TmpClass3 needs a name and has no default for it.
type TmpClass3 struct {
	Name string
}

// TmpClass2 depends on TmpClass3.
type TmpClass2 struct {
	Cls    *TmpClass3
	Family string
}

func (t *TmpClass2) FullName() string {
	return t.Cls.Name + " " + t.Family
}

// TmpClass1 depends on TmpClass2.
type TmpClass1 struct {
	Cls          *TmpClass2
	RandomNumber float64
}

func (t *TmpClass1) ShowName() string {
	return fmt.Sprintf("%s (%v)", t.Cls.FullName(), t.RandomNumber)
}

// ITest2 is the contract TmpITest.SetName works with.
type ITest2 interface {
	SetName(name string)
	GetName() string
}

// TmpITest2 implements ITest2.
type TmpITest2 struct {
	name string
}

func (t *TmpITest2) SetName(name string) { t.name = name }
func (t *TmpITest2) GetName() string     { return t.name }

// TmpITest takes an optional contract in its constructor and one through
// its setName method.
type TmpITest struct {
	Peer         any
	RandomNumber float64
	name         string
}

func (t *TmpITest) SetName(ti ITest2, name string) string {
	if name != "" {
		ti.SetName(name)
	}
	t.name = name
	return ti.GetName()
}

// tmpTypes builds the descriptor table for the Tmp fixtures. It describes
// TmpClass3 with a default name when threeDefault is not empty.
func tmpTypes(threeDefault string) *typeinfo.Registry {
	three := typeinfo.Value("name")
	if threeDefault != "" {
		three = typeinfo.ValueOr("name", threeDefault)
	}

	return typeinfo.NewRegistry().MustRegister(
		typeinfo.Class("TmpClass3", func(args []any) (any, error) {
			return &TmpClass3{Name: args[0].(string)}, nil
		}, three),

		typeinfo.Class("TmpClass2", func(args []any) (any, error) {
			return &TmpClass2{Cls: args[0].(*TmpClass3), Family: args[1].(string)}, nil
		},
			typeinfo.Dependency("cls", "TmpClass3"),
			typeinfo.ValueOr("family", "Cooper"),
		).WithMethod(
			typeinfo.PublicMethod("getFullName", func(recv any, _ []any) (any, error) {
				return recv.(*TmpClass2).FullName(), nil
			}),
		),

		typeinfo.Class("TmpClass1", func(args []any) (any, error) {
			return &TmpClass1{Cls: args[0].(*TmpClass2), RandomNumber: args[1].(float64)}, nil
		},
			typeinfo.Dependency("cls", "TmpClass2"),
			typeinfo.ValueOr("random_number", 500.0),
		).WithMethod(
			typeinfo.PublicMethod("showName", func(recv any, _ []any) (any, error) {
				return recv.(*TmpClass1).ShowName(), nil
			}),
		),

		typeinfo.Interface("ITest"),
		typeinfo.Interface("ITest2"),

		typeinfo.Class("TmpITest2", func([]any) (any, error) {
			return &TmpITest2{name: "Ted"}, nil
		}),

		typeinfo.Class("TmpITest", func(args []any) (any, error) {
			return &TmpITest{Peer: args[0], RandomNumber: args[1].(float64)}, nil
		},
			typeinfo.ContractOr("test_interface", "ITest", nil),
			typeinfo.ValueOr("random_number", 500.0),
		).WithMethod(
			typeinfo.PublicMethod("setName", func(recv any, args []any) (any, error) {
				ti, ok := args[0].(ITest2)
				if !ok {
					return nil, fmt.Errorf("test_interface: got %T", args[0])
				}
				return recv.(*TmpITest).SetName(ti, args[1].(string)), nil
			},
				typeinfo.Contract("test_interface", "ITest2"),
				typeinfo.ValueOr("name", "Alexa"),
			),
		),
	)
}

// newTmpContainer returns a container over the Tmp fixtures.
func newTmpContainer(t *testing.T, threeDefault string, opts ...Option) *Container {
	t.Helper()
	return New(tmpTypes(threeDefault), opts...)
}

// ============================================================================
// Counting Fixtures
// ============================================================================

// counted is a type whose constructor and methods record invocations.
type counted struct {
	ID int
}

type callCounter struct {
	ctor   atomic.Int32
	method atomic.Int32
	next   atomic.Int32
}

// countedDescriptor describes "Counted" with:
//   - echo(x Stringer): returns fmt.Sprint(x)
//   - pair(first, second): returns "first,second"
//   - hidden(): not public
//   - build(): static, returns "static"
//   - fail(): returns an error
//   - boom(): panics
func (cc *callCounter) countedDescriptor() *typeinfo.Descriptor {
	invoke := func(fn func(recv any, args []any) (any, error)) typeinfo.Invoker {
		return func(recv any, args []any) (any, error) {
			cc.method.Add(1)
			return fn(recv, args)
		}
	}

	return typeinfo.Class("Counted", func([]any) (any, error) {
		cc.ctor.Add(1)
		return &counted{ID: int(cc.next.Add(1))}, nil
	}).WithMethod(
		typeinfo.PublicMethod("echo", invoke(func(_ any, args []any) (any, error) {
			return fmt.Sprint(args[0]), nil
		}), typeinfo.Contract("x", "Stringer")),

		typeinfo.PublicMethod("pair", invoke(func(_ any, args []any) (any, error) {
			return fmt.Sprintf("%v,%v", args[0], args[1]), nil
		}), typeinfo.Value("first"), typeinfo.ValueOr("second", "dflt")),

		typeinfo.PrivateMethod("hidden"),

		typeinfo.StaticMethod("build", invoke(func(recv any, _ []any) (any, error) {
			if recv != nil {
				return nil, errors.New("static method received an instance")
			}
			return "static", nil
		})),

		typeinfo.PublicMethod("fail", invoke(func(any, []any) (any, error) {
			return nil, errors.New("method failed")
		})),

		typeinfo.PublicMethod("boom", invoke(func(any, []any) (any, error) {
			panic("kaboom")
		})),

		typeinfo.PublicMethod("id", invoke(func(recv any, _ []any) (any, error) {
			return recv.(*counted).ID, nil
		})),
	)
}

func newCountedContainer(t *testing.T, opts ...Option) (*Container, *callCounter) {
	t.Helper()
	cc := &callCounter{}
	types := typeinfo.NewRegistry()
	require.NoError(t, types.Register(cc.countedDescriptor(), typeinfo.Interface("Stringer")))
	return New(types, opts...), cc
}

// ============================================================================
// Log Capture
// ============================================================================

// logBuffer is a concurrency-safe buffer for a JSON slog handler.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger() (*slog.Logger, *logBuffer) {
	buf := &logBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// bindingCached reports whether the binding for abstract, or for
// (abstract, method) when method is set, holds a cached result.
func bindingCached(c *Container, abstract, method string) bool {
	for _, b := range c.Bindings() {
		if b.Abstract == abstract && b.Method == method {
			return b.Cached
		}
	}
	return false
}
