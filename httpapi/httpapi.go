// Package httpapi exposes a container over HTTP for inspection and
// administration.
//
// Routes:
//
//	GET    /bindings                       list every binding
//	GET    /bindings/{abstract}?method=    report whether a binding exists
//	PUT    /bindings/{abstract}?method=    bind; body {"concrete", "value", "parameters"}
//	DELETE /bindings/{abstract}?method=    unbind
//	POST   /resolve/{abstract}?method=&fresh=true
//	                                       resolve; body holds method parameters
//
// Example usage:
//
//	c := ioc.New(types)
//	api := httpapi.New(c, httpapi.WithMiddleware(middleware.Logger))
//	http.ListenAndServe(":8080", api)
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/quillwire/ioc"
)

const maxBodySize = 1 << 20 // 1 MB

// Config holds the configuration for the API handler.
type Config struct {
	// ErrorHandler writes error responses.
	// If nil, a JSON body {"error": ...} with the status from StatusCode is written.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Middlewares run before every route, after panic recovery.
	Middlewares []func(http.Handler) http.Handler

	// Logger receives server-side failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// Option configures the API handler.
type Option func(*Config)

// WithErrorHandler sets the error handler.
func WithErrorHandler(h func(http.ResponseWriter, *http.Request, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithMiddleware adds a middleware. Multiple middlewares run in the order
// they are added.
func WithMiddleware(mw func(http.Handler) http.Handler) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// Handler serves the container API.
type Handler struct {
	c      *ioc.Container
	cfg    *Config
	mux    chi.Router
	logger *slog.Logger
}

// New creates a Handler for c.
func New(c *ioc.Container, opts ...Option) *Handler {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		c:      c,
		cfg:    cfg,
		logger: logger.With("container_id", c.ID()),
	}
	if h.cfg.ErrorHandler == nil {
		h.cfg.ErrorHandler = h.writeError
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cfg.Middlewares...)

	r.Get("/bindings", h.listBindings)
	r.Get("/bindings/{abstract}", h.showBinding)
	r.Put("/bindings/{abstract}", h.putBinding)
	r.Delete("/bindings/{abstract}", h.deleteBinding)
	r.Post("/resolve/{abstract}", h.resolve)

	h.mux = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Routes returns the underlying router so it can be mounted elsewhere.
func (h *Handler) Routes() chi.Router {
	return h.mux
}

// BindingView is the JSON form of an ioc.Binding.
type BindingView struct {
	Abstract   string         `json:"abstract"`
	Method     string         `json:"method,omitempty"`
	Concrete   string         `json:"concrete,omitempty"`
	Factory    bool           `json:"factory,omitempty"`
	Cached     bool           `json:"cached"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

func newBindingView(b ioc.Binding) BindingView {
	v := BindingView{
		Abstract: b.Abstract,
		Method:   b.Method,
		Concrete: b.Concrete,
		Factory:  b.Factory,
		Cached:   b.Cached,
	}
	if !b.Args.IsEmpty() {
		v.Parameters = make(map[string]any, b.Args.Len())
		for name, val := range b.Args.Named {
			v.Parameters[name] = val
		}
		for i, val := range b.Args.Positional {
			v.Parameters[strconv.Itoa(i)] = val
		}
	}
	return v
}

// ResolveResult is the response of POST /resolve.
type ResolveResult struct {
	Abstract string `json:"abstract"`
	Method   string `json:"method,omitempty"`
	Fresh    bool   `json:"fresh"`
	Type     string `json:"type"`
	Value    any    `json:"value"`
}

func (h *Handler) listBindings(w http.ResponseWriter, r *http.Request) {
	bindings := h.c.Bindings()
	views := make([]BindingView, 0, len(bindings))
	for _, b := range bindings {
		views = append(views, newBindingView(b))
	}
	h.writeJSON(w, http.StatusOK, views)
}

func (h *Handler) showBinding(w http.ResponseWriter, r *http.Request) {
	abstract := chi.URLParam(r, "abstract")
	method := r.URL.Query().Get("method")

	for _, b := range h.c.Bindings() {
		if b.Abstract == abstract && b.Method == method {
			h.writeJSON(w, http.StatusOK, newBindingView(b))
			return
		}
	}
	h.cfg.ErrorHandler(w, r, ioc.ServiceNotFoundError{Type: abstract})
}

type assignBody struct {
	Concrete   string `json:"concrete"`
	Value      any    `json:"value"`
	Parameters any    `json:"parameters"`
}

func (h *Handler) putBinding(w http.ResponseWriter, r *http.Request) {
	abstract := chi.URLParam(r, "abstract")
	method := r.URL.Query().Get("method")

	var body assignBody
	if err := decodeBody(w, r, &body); err != nil {
		h.cfg.ErrorHandler(w, r, err)
		return
	}
	if body.Concrete != "" && body.Value != nil {
		h.cfg.ErrorHandler(w, r, ioc.RequestError{Input: abstract, Reason: "concrete and value are mutually exclusive"})
		return
	}

	var target ioc.Concrete
	switch {
	case body.Value != nil:
		target = ioc.Instance(body.Value)
	case body.Concrete != "":
		target = ioc.TypeName(body.Concrete)
	}

	if method == "" {
		if body.Parameters != nil {
			h.cfg.ErrorHandler(w, r, ioc.RequestError{Input: abstract, Reason: "parameters require a method"})
			return
		}
		h.c.Set(abstract, target)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	req, err := methodRequest(abstract, method, body.Parameters)
	if err != nil {
		h.cfg.ErrorHandler(w, r, err)
		return
	}
	h.c.SetMethod(abstract, method, target, req.Args)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteBinding(w http.ResponseWriter, r *http.Request) {
	abstract := chi.URLParam(r, "abstract")
	if method := r.URL.Query().Get("method"); method != "" {
		h.c.UnsetMethod(abstract, method)
	} else {
		h.c.Unset(abstract)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	abstract := chi.URLParam(r, "abstract")
	method := r.URL.Query().Get("method")
	fresh, _ := strconv.ParseBool(r.URL.Query().Get("fresh"))

	var params any
	if err := decodeBody(w, r, &params); err != nil {
		h.cfg.ErrorHandler(w, r, err)
		return
	}

	var (
		v   any
		err error
	)
	switch {
	case method == "" && fresh:
		v, err = h.c.Make(abstract)
	case method == "":
		v, err = h.c.Get(abstract)
	default:
		req, derr := methodRequest(abstract, method, params)
		if derr != nil {
			h.cfg.ErrorHandler(w, r, derr)
			return
		}
		if fresh {
			v, err = h.c.MakeMethod(abstract, method, req.Args)
		} else {
			v, err = h.c.GetMethod(abstract, method, req.Args)
		}
	}
	if err != nil {
		h.cfg.ErrorHandler(w, r, err)
		return
	}

	res := ResolveResult{
		Abstract: abstract,
		Method:   method,
		Fresh:    fresh,
		Type:     fmt.Sprintf("%T", v),
		Value:    v,
	}
	if _, err := json.Marshal(v); err != nil {
		res.Value = fmt.Sprint(v)
	}
	h.writeJSON(w, http.StatusOK, res)
}

// methodRequest decodes parameters the same way subscript keys are decoded,
// so names, positions and arrays behave identically.
func methodRequest(abstract, method string, params any) (ioc.Request, error) {
	return ioc.DecodeRequest(map[string]any{
		"abstract": abstract,
		"method": map[string]any{
			"name":       method,
			"parameters": params,
		},
	})
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return ioc.RequestError{Input: r.URL.Path, Reason: "malformed JSON body", Cause: err}
	}
	return nil
}

// StatusCode maps a container error to an HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ioc.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ioc.ErrParameterHasNoDefaultValue),
		errors.Is(err, ioc.ErrServiceNotInstantiable),
		errors.Is(err, ioc.ErrParameterNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ioc.ErrCircularDependency),
		errors.Is(err, ioc.ErrMaxDepthExceeded):
		return http.StatusConflict
	case errors.Is(err, ioc.ErrServiceNotFound),
		errors.Is(err, ioc.ErrMethodNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		msg = http.StatusText(status)
	}
	h.writeJSON(w, status, errorBody{Error: msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}
