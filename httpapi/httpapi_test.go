package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillwire/ioc"
	"github.com/quillwire/ioc/typeinfo"
)

// Test types
type greeter struct {
	Greeting string
}

func (g *greeter) Greet(name string) string {
	return g.Greeting + ", " + name
}

func newTestContainer(t *testing.T) *ioc.Container {
	t.Helper()

	types := typeinfo.NewRegistry().MustRegister(
		typeinfo.Class("Greeter", func(args []any) (any, error) {
			return &greeter{Greeting: args[0].(string)}, nil
		}, typeinfo.ValueOr("greeting", "Hello")).WithMethod(
			typeinfo.PublicMethod("greet", func(recv any, args []any) (any, error) {
				return recv.(*greeter).Greet(args[0].(string)), nil
			}, typeinfo.Value("name")),
		),
		typeinfo.Class("Needy", func(args []any) (any, error) {
			return args[0], nil
		}, typeinfo.Value("missing")),
		typeinfo.Interface("Clock"),
		typeinfo.Class("Broken", func([]any) (any, error) {
			return nil, errors.New("disk on fire")
		}),
	)

	return ioc.New(types, ioc.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestBindings(t *testing.T) {
	t.Run("lists bindings", func(t *testing.T) {
		c := newTestContainer(t)
		c.Set("greeter", ioc.TypeName("Greeter"))
		c.SetMethod("Greeter", "greet", nil, ioc.Named(map[string]any{"name": "Ada"}))
		h := New(c)

		rec := do(t, h, http.MethodGet, "/bindings", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		views := decode[[]BindingView](t, rec)
		require.Len(t, views, 2)
		assert.Equal(t, "greeter", views[0].Abstract)
		assert.Equal(t, "Greeter", views[0].Concrete)
		assert.Equal(t, "greet", views[1].Method)
		assert.Equal(t, map[string]any{"name": "Ada"}, views[1].Parameters)
	})

	t.Run("shows one binding", func(t *testing.T) {
		c := newTestContainer(t)
		c.Set("clock", ioc.Instance("noon"))
		h := New(c)

		rec := do(t, h, http.MethodGet, "/bindings/clock", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		view := decode[BindingView](t, rec)
		assert.True(t, view.Factory)
	})

	t.Run("missing binding is 404", func(t *testing.T) {
		h := New(newTestContainer(t))

		rec := do(t, h, http.MethodGet, "/bindings/nope", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, decode[errorBody](t, rec).Error, "nope")
	})

	t.Run("put binds a concrete", func(t *testing.T) {
		c := newTestContainer(t)
		h := New(c)

		rec := do(t, h, http.MethodPut, "/bindings/greeter", `{"concrete":"Greeter"}`)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		v, err := c.Get("greeter")
		require.NoError(t, err)
		assert.Equal(t, "Hello", v.(*greeter).Greeting)
	})

	t.Run("put binds a value", func(t *testing.T) {
		c := newTestContainer(t)
		h := New(c)

		rec := do(t, h, http.MethodPut, "/bindings/port", `{"value":8080}`)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		v, err := c.Get("port")
		require.NoError(t, err)
		assert.Equal(t, 8080.0, v)
	})

	t.Run("put without body self-binds", func(t *testing.T) {
		c := newTestContainer(t)
		h := New(c)

		rec := do(t, h, http.MethodPut, "/bindings/Greeter", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, c.Has("Greeter"))
	})

	t.Run("put binds a method with parameters", func(t *testing.T) {
		c := newTestContainer(t)
		h := New(c)

		rec := do(t, h, http.MethodPut, "/bindings/Greeter?method=greet", `{"parameters":{"name":"Grace"}}`)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		v, err := c.GetMethod("Greeter", "greet", ioc.Args{})
		require.NoError(t, err)
		assert.Equal(t, "Hello, Grace", v)
	})

	t.Run("put rejects parameters without a method", func(t *testing.T) {
		h := New(newTestContainer(t))

		rec := do(t, h, http.MethodPut, "/bindings/Greeter", `{"parameters":{"name":"Grace"}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("put rejects concrete with value", func(t *testing.T) {
		h := New(newTestContainer(t))

		rec := do(t, h, http.MethodPut, "/bindings/x", `{"concrete":"Greeter","value":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("put rejects malformed JSON", func(t *testing.T) {
		h := New(newTestContainer(t))

		rec := do(t, h, http.MethodPut, "/bindings/x", `{"concrete":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete unbinds", func(t *testing.T) {
		c := newTestContainer(t)
		c.Set("greeter", ioc.TypeName("Greeter"))
		c.SetMethod("Greeter", "greet", nil, ioc.Args{})
		h := New(c)

		rec := do(t, h, http.MethodDelete, "/bindings/Greeter?method=greet", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, c.HasMethod("Greeter", "greet"))
		assert.True(t, c.Has("greeter"))

		rec = do(t, h, http.MethodDelete, "/bindings/greeter", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, c.Has("greeter"))
	})
}

func TestResolve(t *testing.T) {
	t.Run("resolves through the cache", func(t *testing.T) {
		c := newTestContainer(t)
		h := New(c)

		rec := do(t, h, http.MethodPost, "/resolve/Greeter", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		res := decode[ResolveResult](t, rec)
		assert.Equal(t, "Greeter", res.Abstract)
		assert.Equal(t, "*httpapi.greeter", res.Type)
		assert.False(t, res.Fresh)
		assert.Equal(t, map[string]any{"Greeting": "Hello"}, res.Value)
		assert.True(t, c.Has("Greeter"))
	})

	t.Run("fresh builds without caching", func(t *testing.T) {
		c := newTestContainer(t)
		h := New(c)

		rec := do(t, h, http.MethodPost, "/resolve/Greeter?fresh=true", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[ResolveResult](t, rec).Fresh)
		assert.False(t, c.Bindings()[0].Cached)
	})

	t.Run("method with body parameters", func(t *testing.T) {
		h := New(newTestContainer(t))

		rec := do(t, h, http.MethodPost, "/resolve/Greeter?method=greet", `{"name":"Linus"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		res := decode[ResolveResult](t, rec)
		assert.Equal(t, "greet", res.Method)
		assert.Equal(t, "Hello, Linus", res.Value)
	})

	t.Run("method with positional parameters", func(t *testing.T) {
		h := New(newTestContainer(t))

		rec := do(t, h, http.MethodPost, "/resolve/Greeter?method=greet&fresh=1", `["Ken"]`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Hello, Ken", decode[ResolveResult](t, rec).Value)
	})

	t.Run("values that do not encode are formatted", func(t *testing.T) {
		c := newTestContainer(t)
		c.Set("ch", ioc.Instance(make(chan int)))
		h := New(c)

		rec := do(t, h, http.MethodPost, "/resolve/ch", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		res := decode[ResolveResult](t, rec)
		assert.Equal(t, "chan int", res.Type)
		assert.IsType(t, "", res.Value)
	})

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown type", "/resolve/Unknown", http.StatusNotFound},
		{"unknown method", "/resolve/Greeter?method=wave", http.StatusNotFound},
		{"interface", "/resolve/Clock", http.StatusUnprocessableEntity},
		{"missing value", "/resolve/Needy", http.StatusUnprocessableEntity},
		{"method missing value", "/resolve/Greeter?method=greet", http.StatusUnprocessableEntity},
		{"constructor failure", "/resolve/Broken", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(newTestContainer(t))

			rec := do(t, h, http.MethodPost, tt.target, "")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	t.Run("server errors hide details", func(t *testing.T) {
		h := New(newTestContainer(t), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

		rec := do(t, h, http.MethodPost, "/resolve/Broken", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "disk on fire")
	})

	t.Run("cycle is 409", func(t *testing.T) {
		c := newTestContainer(t)
		c.Set("a", ioc.Factory(func(r ioc.Resolver) (any, error) {
			return r.Get("a")
		}))
		h := New(c)

		rec := do(t, h, http.MethodPost, "/resolve/a", "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestOptions(t *testing.T) {
	t.Run("custom error handler", func(t *testing.T) {
		var got error
		h := New(newTestContainer(t), WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			got = err
			w.WriteHeader(http.StatusTeapot)
		}))

		rec := do(t, h, http.MethodPost, "/resolve/Unknown", "")

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.True(t, ioc.IsNotFound(got))
	})

	t.Run("middlewares run in order", func(t *testing.T) {
		var order []string
		mw := func(name string) func(http.Handler) http.Handler {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		h := New(newTestContainer(t), WithMiddleware(mw("first")), WithMiddleware(mw("second")))
		do(t, h, http.MethodGet, "/bindings", "")

		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("routes can be mounted", func(t *testing.T) {
		h := New(newTestContainer(t))

		outer := http.NewServeMux()
		outer.Handle("/admin/", http.StripPrefix("/admin", h.Routes()))

		rec := do(t, outer, http.MethodGet, "/admin/bindings", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ioc.RequestError{Reason: "bad"}, http.StatusBadRequest},
		{ioc.ServiceNotFoundError{Type: "x"}, http.StatusNotFound},
		{ioc.MethodNotFoundError{Type: "x", Method: "m"}, http.StatusNotFound},
		{ioc.ServiceNotInstantiableError{Type: "x"}, http.StatusUnprocessableEntity},
		{ioc.ParameterNotFoundError{Service: "x", Parameter: "p"}, http.StatusUnprocessableEntity},
		{ioc.CircularDependencyError{Node: "x"}, http.StatusConflict},
		{ioc.ResolutionDepthError{Service: "x", Limit: 1}, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
		// The outer kind decides, not the wrapped cause.
		{ioc.ParameterHasNoDefaultValueError{
			Service: "x", Parameter: "p",
			Cause: ioc.ServiceNotFoundError{Type: "y"},
		}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, StatusCode(tt.err))
		})
	}
}
