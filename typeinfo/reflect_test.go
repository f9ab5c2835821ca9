package typeinfo_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/quillwire/ioc/typeinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type store struct {
	dsn string
}

func newStore(dsn string) *store {
	return &store{dsn: dsn}
}

type notifier interface {
	Notify(msg string) string
}

type service struct {
	store   *store
	notify  notifier
	buf     *bytes.Buffer
	retries int
}

func newService(s *store, n notifier, buf *bytes.Buffer, retries int) (*service, error) {
	if retries < 0 {
		return nil, errors.New("retries must be positive")
	}
	return &service{store: s, notify: n, buf: buf, retries: retries}, nil
}

func (s *service) Send(n notifier, msg string) string {
	return n.Notify(msg)
}

func (s *service) DSN() string {
	return s.store.dsn
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, "github.com/quillwire/ioc/typeinfo_test.store", typeinfo.NameOf[*store]())
	assert.Equal(t, typeinfo.NameOf[store](), typeinfo.NameOf[*store]())
	assert.Equal(t, "github.com/quillwire/ioc/typeinfo_test.notifier", typeinfo.NameOf[notifier]())
	assert.Equal(t, "int", typeinfo.NameOf[int]())

	d := typeinfo.InterfaceOf[notifier]()
	assert.Equal(t, typeinfo.KindInterface, d.Kind)
	assert.Equal(t, typeinfo.NameOf[notifier](), d.Name)
}

func TestFromConstructor(t *testing.T) {
	d, err := typeinfo.FromConstructor("service", newService,
		typeinfo.Names("store", "notify", "buf", "retries"),
		typeinfo.Default("retries", 3),
		typeinfo.Expose("Send", "notifier", "msg"),
		typeinfo.MethodDefault("Send", "msg", "hello"),
		typeinfo.Expose("DSN"),
	)
	require.NoError(t, err)

	assert.Equal(t, typeinfo.KindClass, d.Kind)
	assert.True(t, d.Instantiable())
	require.Len(t, d.Params, 4)

	assert.Equal(t, typeinfo.Parameter{
		Name: "store", Kind: typeinfo.KindClass, Type: typeinfo.NameOf[store](),
	}, d.Params[0])
	assert.Equal(t, typeinfo.KindInterface, d.Params[1].Kind)
	assert.Equal(t, typeinfo.NameOf[notifier](), d.Params[1].Type)
	assert.Equal(t, typeinfo.KindClass, d.Params[2].Kind)
	assert.True(t, d.Params[2].Builtin)
	assert.Equal(t, "bytes.Buffer", d.Params[2].Type)
	assert.Equal(t, typeinfo.Parameter{
		Name: "retries", Kind: typeinfo.KindPrimitive, Builtin: true, HasDefault: true, Default: 3,
	}, d.Params[3])

	t.Run("constructs", func(t *testing.T) {
		s := newStore("mem://")
		out, err := d.New([]any{s, nil, nil, 2})
		require.NoError(t, err)
		svc := out.(*service)
		assert.Same(t, s, svc.store)
		assert.Equal(t, 2, svc.retries)

		_, err = d.New([]any{s, nil, nil, -1})
		assert.EqualError(t, err, "retries must be positive")
	})

	t.Run("methods", func(t *testing.T) {
		send, ok := d.Method("Send")
		require.True(t, ok)
		assert.True(t, send.Public)
		require.Len(t, send.Params, 2)
		assert.Equal(t, "notifier", send.Params[0].Name)
		assert.Equal(t, typeinfo.KindInterface, send.Params[0].Kind)
		assert.True(t, send.Params[1].HasDefault)

		dsn, ok := d.Method("DSN")
		require.True(t, ok)
		out, err := dsn.Invoke(&service{store: newStore("pg://")}, nil)
		require.NoError(t, err)
		assert.Equal(t, "pg://", out)
	})
}

func TestFromConstructor_DefaultNames(t *testing.T) {
	d, err := typeinfo.FromConstructor("store", newStore, typeinfo.AsInternal())
	require.NoError(t, err)
	assert.True(t, d.Builtin)
	require.Len(t, d.Params, 1)
	assert.Equal(t, "arg0", d.Params[0].Name)
	assert.Equal(t, typeinfo.KindPrimitive, d.Params[0].Kind)
}

func TestFromConstructor_Errors(t *testing.T) {
	tests := []struct {
		name string
		ctor any
		opts []typeinfo.Option
	}{
		{"not a function", 42, nil},
		{"no result", func() {}, nil},
		{"only error", func() error { return nil }, nil},
		{"too many names", newStore, []typeinfo.Option{typeinfo.Names("a", "b")}},
		{"default for unknown parameter", newStore, []typeinfo.Option{typeinfo.Default("nope", 1)}},
		{"unknown method", newStore, []typeinfo.Option{typeinfo.Expose("Missing")}},
		{"duplicate names", newService, []typeinfo.Option{typeinfo.Names("x", "x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := typeinfo.FromConstructor("T", tt.ctor, tt.opts...)
			assert.ErrorIs(t, err, typeinfo.ErrInvalidDescriptor)
		})
	}

	assert.Panics(t, func() {
		typeinfo.MustFromConstructor("T", nil)
	})
}
