package reflection

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Category classifies a parameter type for autowiring.
type Category int

const (
	// Scalar types are supplied by overrides or defaults, never resolved.
	Scalar Category = iota

	// Struct covers structs and pointers to structs.
	Struct

	// Interface covers interface types.
	Interface
)

// Analyzer performs reflection-based analysis of functions and methods.
// It caches analysis results for performance.
type Analyzer struct {
	mu    sync.RWMutex
	cache map[analysisKey]*FuncInfo
}

type analysisKey struct {
	fn     uintptr
	recv   reflect.Type
	method string
}

// FuncInfo contains analyzed information about a function or method.
type FuncInfo struct {
	Type           reflect.Type
	Value          reflect.Value
	Parameters     []ParameterInfo
	Result         reflect.Type // First non-error return, nil when there is none
	HasErrorReturn bool
	IsMethod       bool // Value expects the receiver as its first argument
	IsVariadic     bool
}

// ParameterInfo describes a single parameter.
type ParameterInfo struct {
	Type     reflect.Type
	Index    int
	Category Category
	TypeName string
	Builtin  bool
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		cache: make(map[analysisKey]*FuncInfo),
	}
}

// Analyze analyzes a function value and extracts its parameters and result.
func (a *Analyzer) Analyze(fn any) (*FuncInfo, error) {
	if fn == nil {
		return nil, fmt.Errorf("function cannot be nil")
	}

	val := reflect.ValueOf(fn)
	if val.Kind() != reflect.Func {
		return nil, fmt.Errorf("expected a function, got %T", fn)
	}
	if val.IsNil() {
		return nil, fmt.Errorf("function cannot be nil")
	}

	key := analysisKey{fn: val.Pointer()}
	if cached, ok := a.lookup(key); ok {
		return cached, nil
	}

	info, err := analyzeFunc(val, 0)
	if err != nil {
		return nil, err
	}

	return a.store(key, info), nil
}

// AnalyzeMethod analyzes the exported method name on recv.
// The receiver is not part of the returned parameter list.
func (a *Analyzer) AnalyzeMethod(recv reflect.Type, name string) (*FuncInfo, error) {
	if recv == nil {
		return nil, fmt.Errorf("receiver type cannot be nil")
	}

	key := analysisKey{recv: recv, method: name}
	if cached, ok := a.lookup(key); ok {
		return cached, nil
	}

	m, ok := recv.MethodByName(name)
	if !ok {
		return nil, fmt.Errorf("type %s has no exported method %q", recv, name)
	}

	// For interface types Func is invalid; only concrete receivers are supported.
	if !m.Func.IsValid() {
		return nil, fmt.Errorf("method %q on %s has no implementation", name, recv)
	}

	info, err := analyzeFunc(m.Func, 1)
	if err != nil {
		return nil, err
	}
	info.IsMethod = true

	return a.store(key, info), nil
}

func analyzeFunc(val reflect.Value, skip int) (*FuncInfo, error) {
	fnType := val.Type()

	info := &FuncInfo{
		Type:       fnType,
		Value:      val,
		IsVariadic: fnType.IsVariadic(),
	}

	info.Parameters = make([]ParameterInfo, 0, fnType.NumIn()-skip)
	for i := skip; i < fnType.NumIn(); i++ {
		paramType := fnType.In(i)
		info.Parameters = append(info.Parameters, ParameterInfo{
			Type:     paramType,
			Index:    i - skip,
			Category: Classify(paramType),
			TypeName: TypeName(paramType),
			Builtin:  IsBuiltin(paramType),
		})
	}

	switch fnType.NumOut() {
	case 0:
	case 1:
		if fnType.Out(0) == errType {
			info.HasErrorReturn = true
		} else {
			info.Result = fnType.Out(0)
		}
	case 2:
		if !fnType.Out(1).Implements(errType) {
			return nil, fmt.Errorf("second return value of %s must be error", fnType)
		}
		info.Result = fnType.Out(0)
		info.HasErrorReturn = true
	default:
		return nil, fmt.Errorf("%s must return at most 2 values", fnType)
	}

	return info, nil
}

func (a *Analyzer) lookup(key analysisKey) (*FuncInfo, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	info, ok := a.cache[key]
	return info, ok
}

func (a *Analyzer) store(key analysisKey, info *FuncInfo) *FuncInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cached, ok := a.cache[key]; ok {
		return cached
	}
	a.cache[key] = info
	return info
}

// CacheSize returns the number of cached analyses.
func (a *Analyzer) CacheSize() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cache)
}

// Classify returns the autowiring category of t.
func Classify(t reflect.Type) Category {
	if t == nil {
		return Scalar
	}
	if t.Kind() == reflect.Interface {
		return Interface
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		return Struct
	}
	return Scalar
}

// TypeName returns the identifier used for t in a type table: the package
// path and name of the (pointer-stripped) named type, or its String form
// when the type is unnamed or predeclared.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// IsBuiltin reports whether t is predeclared or comes from the standard library.
func IsBuiltin(t reflect.Type) bool {
	if t == nil {
		return true
	}
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	pkg := t.PkgPath()
	if pkg == "" {
		return true
	}
	first, _, _ := strings.Cut(pkg, "/")
	return !strings.Contains(first, ".")
}
