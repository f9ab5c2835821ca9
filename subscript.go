package ioc

// Subscript exposes a container through loosely typed keys, as decoded by
// DecodeRequest and DecodeAssignment. Each method translates its input into
// exactly one canonical container call.
type Subscript struct {
	c *Container
}

// Subscript returns the subscript adapter for c.
func (c *Container) Subscript() Subscript {
	return Subscript{c: c}
}

// Exists reports whether the addressed binding exists or has a cached value.
func (s Subscript) Exists(key any) (bool, error) {
	req, err := DecodeRequest(key)
	if err != nil {
		return false, err
	}
	if req.HasMethod() {
		return s.c.HasMethod(req.Abstract, req.Method), nil
	}
	return s.c.Has(req.Abstract), nil
}

// Lookup resolves the addressed binding through the cache.
func (s Subscript) Lookup(key any) (any, error) {
	req, err := DecodeRequest(key)
	if err != nil {
		return nil, err
	}
	if req.HasMethod() {
		return s.c.GetMethod(req.Abstract, req.Method, req.Args)
	}
	return s.c.Get(req.Abstract)
}

// Assign registers value under key.
//
// With a nil key the value names the abstract itself: a string or TypeName
// self-binds, and a {"concrete": ...} record self-binds its concrete,
// including any method it carries.
func (s Subscript) Assign(key any, value any) error {
	if key == nil {
		return s.assignSelf(value)
	}

	req, err := DecodeRequest(key)
	if err != nil {
		return err
	}
	a, err := DecodeAssignment(value)
	if err != nil {
		return err
	}

	method, args := a.Method, a.Args
	if method == "" && req.HasMethod() {
		method, args = req.Method, req.Args
	}

	if method != "" {
		s.c.SetMethod(req.Abstract, method, a.Concrete, args)
		return nil
	}
	s.c.Set(req.Abstract, a.Concrete)
	return nil
}

func (s Subscript) assignSelf(value any) error {
	switch v := value.(type) {
	case string:
		if rec, ok := jsonRecord([]byte(v)); !ok || rec["concrete"] == nil {
			s.c.Set(v, nil)
			return nil
		}
	case TypeName:
		s.c.Set(string(v), nil)
		return nil
	case nil:
		return RequestError{Input: value, Reason: "key and value cannot both be nil"}
	}

	a, err := DecodeAssignment(value)
	if err != nil {
		return err
	}
	name, ok := a.Concrete.(TypeName)
	if !ok {
		return RequestError{Input: value, Reason: "a value without a key must name its concrete type"}
	}

	if a.Method != "" {
		s.c.SetMethod(string(name), a.Method, nil, a.Args)
		return nil
	}
	s.c.Set(string(name), nil)
	return nil
}

// Delete removes the addressed binding and its cached value.
func (s Subscript) Delete(key any) error {
	req, err := DecodeRequest(key)
	if err != nil {
		return err
	}
	if req.HasMethod() {
		s.c.UnsetMethod(req.Abstract, req.Method)
		return nil
	}
	s.c.Unset(req.Abstract)
	return nil
}
