package ioc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RequestKind tags a Request.
type RequestKind uint8

const (
	// KeyRequest addresses a plain binding by its abstract.
	KeyRequest RequestKind = iota

	// DescriptorRequest addresses an abstract and optionally one of its
	// methods with parameter overrides.
	DescriptorRequest
)

// Request is the decoded form of a subscript key.
type Request struct {
	Kind     RequestKind
	Abstract string
	Method   string
	Args     Args
}

// ByKey addresses the plain binding for name.
func ByKey(name string) Request {
	return Request{Kind: KeyRequest, Abstract: name}
}

// ByDescriptor addresses abstract and, when method is not empty, the method
// binding for (abstract, method).
func ByDescriptor(abstract, method string, args Args) Request {
	return Request{Kind: DescriptorRequest, Abstract: abstract, Method: method, Args: args}
}

// HasMethod reports whether the request targets a method binding.
func (r Request) HasMethod() bool {
	return r.Kind == DescriptorRequest && r.Method != ""
}

// Assignment is the decoded form of a subscript write.
type Assignment struct {
	Concrete Concrete
	Method   string
	Args     Args
}

// DecodeRequest turns subscript input into a Request. It accepts a Request,
// a TypeName or plain string key, a JSON object
// {"abstract": ..., "method": {"name": ..., "parameters": {...}}} given as a
// string or bytes, or the same record as a map[string]any. A string that is
// not such a JSON record is used verbatim as a key.
func DecodeRequest(raw any) (Request, error) {
	switch v := raw.(type) {
	case Request:
		return v, nil
	case *Request:
		if v == nil {
			return Request{}, RequestError{Input: raw, Reason: "nil request"}
		}
		return *v, nil
	case TypeName:
		return ByKey(string(v)), nil
	case string:
		if rec, ok := jsonRecord([]byte(v)); ok {
			if _, has := rec["abstract"]; has {
				return requestFromRecord(raw, rec)
			}
		}
		return ByKey(v), nil
	case []byte:
		return decodeRequestBytes(raw, v)
	case json.RawMessage:
		return decodeRequestBytes(raw, v)
	case map[string]any:
		return requestFromRecord(raw, v)
	case nil:
		return Request{}, RequestError{Input: raw, Reason: "key cannot be nil"}
	default:
		return Request{}, RequestError{Input: raw, Reason: "unsupported key type"}
	}
}

func decodeRequestBytes(raw any, data []byte) (Request, error) {
	rec, ok := jsonRecord(data)
	if !ok {
		return Request{}, RequestError{Input: raw, Reason: "not a JSON object"}
	}
	return requestFromRecord(raw, rec)
}

func requestFromRecord(raw any, rec map[string]any) (Request, error) {
	abstract, err := stringField(raw, rec, "abstract")
	if err != nil {
		return Request{}, err
	}

	method, args, err := methodField(raw, rec)
	if err != nil {
		return Request{}, err
	}
	return ByDescriptor(abstract, method, args), nil
}

// DecodeAssignment turns a subscript value into an Assignment. It accepts
// an Assignment, a Concrete, a plain string (a type name), a JSON object
// {"concrete": ..., "method": {...}} given as a string or bytes, or the same
// record as a map[string]any. Any other value is bound as an instance.
func DecodeAssignment(value any) (Assignment, error) {
	switch v := value.(type) {
	case Assignment:
		return v, nil
	case nil:
		return Assignment{}, nil
	case Concrete:
		return Assignment{Concrete: v}, nil
	case func(Resolver) (any, error):
		return Assignment{Concrete: Factory(v)}, nil
	case string:
		if rec, ok := jsonRecord([]byte(v)); ok {
			if _, has := rec["concrete"]; has {
				return assignmentFromRecord(value, rec)
			}
		}
		return Assignment{Concrete: TypeName(v)}, nil
	case []byte:
		rec, ok := jsonRecord(v)
		if !ok {
			return Assignment{}, RequestError{Input: value, Reason: "not a JSON object"}
		}
		return assignmentFromRecord(value, rec)
	case json.RawMessage:
		rec, ok := jsonRecord(v)
		if !ok {
			return Assignment{}, RequestError{Input: value, Reason: "not a JSON object"}
		}
		return assignmentFromRecord(value, rec)
	case map[string]any:
		if _, has := v["concrete"]; !has {
			return Assignment{Concrete: Instance(v)}, nil
		}
		return assignmentFromRecord(value, v)
	default:
		return Assignment{Concrete: Instance(value)}, nil
	}
}

func assignmentFromRecord(raw any, rec map[string]any) (Assignment, error) {
	var a Assignment
	switch c := rec["concrete"].(type) {
	case nil:
	case string:
		a.Concrete = TypeName(c)
	case Concrete:
		a.Concrete = c
	default:
		return Assignment{}, RequestError{Input: raw, Reason: fmt.Sprintf(`"concrete" must be a string, got %T`, c)}
	}

	method, args, err := methodField(raw, rec)
	if err != nil {
		return Assignment{}, err
	}
	a.Method = method
	a.Args = args
	return a, nil
}

func jsonRecord(data []byte) (map[string]any, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, false
	}
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return rec, true
}

func stringField(raw any, rec map[string]any, field string) (string, error) {
	switch v := rec[field].(type) {
	case string:
		if v == "" {
			return "", RequestError{Input: raw, Reason: fmt.Sprintf("%q cannot be empty", field)}
		}
		return v, nil
	case TypeName:
		return string(v), nil
	case nil:
		return "", RequestError{Input: raw, Reason: fmt.Sprintf("missing %q", field)}
	default:
		return "", RequestError{Input: raw, Reason: fmt.Sprintf("%q must be a string, got %T", field, v)}
	}
}

// methodField reads the optional "method" entry. Without a name, any
// parameters are ignored.
func methodField(raw any, rec map[string]any) (string, Args, error) {
	m, ok := rec["method"]
	if !ok || m == nil {
		return "", Args{}, nil
	}

	fields, ok := m.(map[string]any)
	if !ok {
		return "", Args{}, RequestError{Input: raw, Reason: fmt.Sprintf(`"method" must be an object, got %T`, m)}
	}

	name, ok := fields["name"].(string)
	if !ok || name == "" {
		return "", Args{}, nil
	}

	args, err := decodeArgs(raw, fields["parameters"])
	if err != nil {
		return "", Args{}, err
	}
	return name, args, nil
}

// decodeArgs maps parameters to Args. Object keys that are integers and
// array elements become positional overrides.
func decodeArgs(raw any, params any) (Args, error) {
	switch p := params.(type) {
	case nil:
		return Args{}, nil
	case Args:
		return p.clone(), nil
	case []any:
		return Positional(p...), nil
	case map[string]any:
		var args Args
		for k, v := range p {
			if i, err := strconv.Atoi(k); err == nil && i >= 0 {
				args = args.At(i, v)
				continue
			}
			args = args.With(k, v)
		}
		return args, nil
	case map[int]any:
		var args Args
		for i, v := range p {
			args = args.At(i, v)
		}
		return args, nil
	default:
		return Args{}, RequestError{Input: raw, Reason: fmt.Sprintf(`"parameters" must be an object or array, got %T`, params)}
	}
}
