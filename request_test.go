package ioc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	t.Parallel()

	var a Args
	assert.True(t, a.IsEmpty())
	assert.Zero(t, a.Len())

	b := a.With("name", "x").At(1, "y")
	assert.True(t, a.IsEmpty(), "With and At return copies")
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []string{"name", "1"}, b.Keys())

	v, ok := b.lookup("name", 0)
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	v, ok = b.lookup("other", 1)
	assert.True(t, ok)
	assert.Equal(t, "y", v)

	_, ok = b.lookup("other", 2)
	assert.False(t, ok)
}

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Request
	}{
		{
			name: "plain string",
			raw:  "TmpClass1",
			want: ByKey("TmpClass1"),
		},
		{
			name: "type name",
			raw:  TypeName("TmpClass1"),
			want: ByKey("TmpClass1"),
		},
		{
			name: "string that looks like JSON but is not a record",
			raw:  "{not json",
			want: ByKey("{not json"),
		},
		{
			name: "JSON object without abstract is a key",
			raw:  `{"concrete":"X"}`,
			want: ByKey(`{"concrete":"X"}`),
		},
		{
			name: "descriptor without method",
			raw:  `{"abstract":"TmpClass1"}`,
			want: ByDescriptor("TmpClass1", "", Args{}),
		},
		{
			name: "descriptor with named parameters",
			raw:  `{"abstract":"TmpITest","method":{"name":"setName","parameters":{"name":"mmdm"}}}`,
			want: ByDescriptor("TmpITest", "setName", Named(map[string]any{"name": "mmdm"})),
		},
		{
			name: "integer keys are positional",
			raw:  []byte(`{"abstract":"A","method":{"name":"m","parameters":{"0":"first","x":true}}}`),
			want: ByDescriptor("A", "m", Args{}.At(0, "first").With("x", true)),
		},
		{
			name: "array parameters",
			raw:  json.RawMessage(`{"abstract":"A","method":{"name":"m","parameters":["a",2]}}`),
			want: ByDescriptor("A", "m", Positional("a", 2.0)),
		},
		{
			name: "method without name is ignored",
			raw:  `{"abstract":"A","method":{"parameters":{"x":1}}}`,
			want: ByDescriptor("A", "", Args{}),
		},
		{
			name: "map record",
			raw: map[string]any{
				"abstract": "A",
				"method":   map[string]any{"name": "m", "parameters": Named(map[string]any{"k": "v"})},
			},
			want: ByDescriptor("A", "m", Named(map[string]any{"k": "v"})),
		},
		{
			name: "request value",
			raw:  ByDescriptor("A", "m", Positional(1)),
			want: ByDescriptor("A", "m", Positional(1)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRequest(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("pointer request", func(t *testing.T) {
		req := ByKey("A")
		got, err := DecodeRequest(&req)
		require.NoError(t, err)
		assert.Equal(t, req, got)
	})

	invalid := []struct {
		name string
		raw  any
	}{
		{"nil", nil},
		{"nil pointer", (*Request)(nil)},
		{"unsupported type", 42},
		{"bytes that are not an object", []byte(`"A"`)},
		{"bytes without abstract", []byte(`{"method":{"name":"m"}}`)},
		{"empty abstract", `{"abstract":""}`},
		{"abstract not a string", `{"abstract":7}`},
		{"method not an object", `{"abstract":"A","method":"m"}`},
		{"bad parameters", `{"abstract":"A","method":{"name":"m","parameters":"x"}}`},
	}

	for _, tt := range invalid {
		t.Run("invalid "+tt.name, func(t *testing.T) {
			_, err := DecodeRequest(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)

			var re RequestError
			assert.ErrorAs(t, err, &re)
		})
	}

	t.Run("HasMethod", func(t *testing.T) {
		assert.False(t, ByKey("A").HasMethod())
		assert.False(t, ByDescriptor("A", "", Args{}).HasMethod())
		assert.True(t, ByDescriptor("A", "m", Args{}).HasMethod())
	})
}

func TestDecodeAssignment(t *testing.T) {
	t.Run("type name string", func(t *testing.T) {
		a, err := DecodeAssignment("TmpClass2")
		require.NoError(t, err)
		assert.Equal(t, TypeName("TmpClass2"), a.Concrete)
	})

	t.Run("nil self-binds", func(t *testing.T) {
		a, err := DecodeAssignment(nil)
		require.NoError(t, err)
		assert.Nil(t, a.Concrete)
	})

	t.Run("concrete values", func(t *testing.T) {
		a, err := DecodeAssignment(TypeName("X"))
		require.NoError(t, err)
		assert.Equal(t, TypeName("X"), a.Concrete)

		a, err = DecodeAssignment(Instance(1))
		require.NoError(t, err)
		assert.IsType(t, Factory(nil), a.Concrete)
	})

	t.Run("bare function becomes a factory", func(t *testing.T) {
		a, err := DecodeAssignment(func(Resolver) (any, error) { return "built", nil })
		require.NoError(t, err)

		f, ok := a.Concrete.(Factory)
		require.True(t, ok)
		v, err := f(nil)
		require.NoError(t, err)
		assert.Equal(t, "built", v)
	})

	t.Run("JSON record with method", func(t *testing.T) {
		a, err := DecodeAssignment(`{"concrete":"TmpITest","method":{"name":"setName","parameters":{"name":"mmdm"}}}`)
		require.NoError(t, err)
		assert.Equal(t, Assignment{
			Concrete: TypeName("TmpITest"),
			Method:   "setName",
			Args:     Named(map[string]any{"name": "mmdm"}),
		}, a)
	})

	t.Run("bytes record with null concrete", func(t *testing.T) {
		a, err := DecodeAssignment([]byte(`{"concrete":null,"method":{"name":"m"}}`))
		require.NoError(t, err)
		assert.Nil(t, a.Concrete)
		assert.Equal(t, "m", a.Method)
	})

	t.Run("map without concrete is an instance", func(t *testing.T) {
		m := map[string]any{"host": "localhost"}
		a, err := DecodeAssignment(m)
		require.NoError(t, err)

		v, err := a.Concrete.(Factory)(nil)
		require.NoError(t, err)
		assert.Equal(t, m, v)
	})

	t.Run("other values are instances", func(t *testing.T) {
		a, err := DecodeAssignment(42)
		require.NoError(t, err)

		v, err := a.Concrete.(Factory)(nil)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := DecodeAssignment([]byte("nope"))
		assert.ErrorIs(t, err, ErrInvalidRequest)

		_, err = DecodeAssignment(json.RawMessage(`[1]`))
		assert.ErrorIs(t, err, ErrInvalidRequest)

		_, err = DecodeAssignment(`{"concrete":5}`)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}
