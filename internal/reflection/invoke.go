package reflection

import (
	"fmt"
	"math"
	"reflect"
)

// ArgumentError reports an argument that cannot be passed to a parameter.
type ArgumentError struct {
	Index    int
	Expected reflect.Type
	Actual   reflect.Type
	Reason   string // set when the types convert but the value does not fit
}

func (e ArgumentError) Error() string {
	actual := "<nil>"
	if e.Actual != nil {
		actual = e.Actual.String()
	}
	msg := fmt.Sprintf("argument %d: cannot use %s as %s", e.Index, actual, e.Expected)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Call invokes the analyzed function with args and returns its first result.
// When info describes a method, recv is passed as the receiver.
func Call(info *FuncInfo, recv any, args []any) (any, error) {
	if info == nil {
		return nil, fmt.Errorf("function info cannot be nil")
	}
	if info.IsVariadic {
		if len(args) < len(info.Parameters)-1 {
			return nil, fmt.Errorf("%s expects at least %d arguments, got %d", info.Type, len(info.Parameters)-1, len(args))
		}
	} else if len(args) != len(info.Parameters) {
		return nil, fmt.Errorf("%s expects %d arguments, got %d", info.Type, len(info.Parameters), len(args))
	}

	in := make([]reflect.Value, 0, len(args)+1)
	if info.IsMethod {
		if recv == nil {
			return nil, fmt.Errorf("method %s requires a receiver", info.Type)
		}
		in = append(in, reflect.ValueOf(recv))
	}

	// A variadic function called with one argument per declared parameter
	// receives its last argument as the whole slice.
	spread := info.IsVariadic && len(args) != len(info.Parameters)

	for i, arg := range args {
		paramType := info.paramType(i, spread)
		v, err := coerce(arg, paramType)
		if err != nil {
			if ae, ok := err.(ArgumentError); ok {
				ae.Index = i
				return nil, ae
			}
			return nil, err
		}
		in = append(in, v)
	}

	if info.IsVariadic && !spread {
		return unpack(info, info.Value.CallSlice(in))
	}
	return unpack(info, info.Value.Call(in))
}

func (info *FuncInfo) paramType(i int, spread bool) reflect.Type {
	last := len(info.Parameters) - 1
	if spread && i >= last {
		return info.Parameters[last].Type.Elem()
	}
	return info.Parameters[i].Type
}

// coerce turns an arbitrary value into a reflect.Value assignable to t.
// nil becomes the zero value and convertible scalars are converted. A
// numeric conversion must preserve the value exactly: fractions are not
// truncated and out-of-range values are rejected instead of wrapping.
func coerce(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(t) {
		return v, nil
	}

	if Classify(t) == Scalar && v.Type().ConvertibleTo(t) {
		switch {
		case isNumeric(v.Kind()) && isNumeric(t.Kind()):
			if reason := numericLoss(v, t); reason != "" {
				return reflect.Value{}, ArgumentError{Expected: t, Actual: v.Type(), Reason: reason}
			}
			return v.Convert(t), nil
		case v.Kind() == reflect.String && t.Kind() == reflect.String:
			// int to string would also convert, yielding a rune
			return v.Convert(t), nil
		}
	}

	return reflect.Value{}, ArgumentError{Expected: t, Actual: v.Type()}
}

// numericLoss describes why converting v to t would change its value, or
// returns "" when the conversion is exact enough to perform.
func numericLoss(v reflect.Value, t reflect.Type) string {
	target := reflect.Zero(t)

	switch {
	case isInt(v.Kind()):
		n := v.Int()
		switch {
		case isInt(t.Kind()):
			if target.OverflowInt(n) {
				return fmt.Sprintf("%d overflows %s", n, t)
			}
		case isUint(t.Kind()):
			if n < 0 || target.OverflowUint(uint64(n)) {
				return fmt.Sprintf("%d overflows %s", n, t)
			}
		}

	case isUint(v.Kind()):
		u := v.Uint()
		switch {
		case isInt(t.Kind()):
			if u > math.MaxInt64 || target.OverflowInt(int64(u)) {
				return fmt.Sprintf("%d overflows %s", u, t)
			}
		case isUint(t.Kind()):
			if target.OverflowUint(u) {
				return fmt.Sprintf("%d overflows %s", u, t)
			}
		}

	default:
		f := v.Float()
		switch {
		case isInt(t.Kind()):
			if f != math.Trunc(f) || math.IsInf(f, 0) {
				return fmt.Sprintf("%v is not a whole number", f)
			}
			if f < math.MinInt64 || f >= math.MaxInt64 || target.OverflowInt(int64(f)) {
				return fmt.Sprintf("%v overflows %s", f, t)
			}
		case isUint(t.Kind()):
			if f != math.Trunc(f) || math.IsInf(f, 0) {
				return fmt.Sprintf("%v is not a whole number", f)
			}
			if f < 0 || f >= math.MaxUint64 || target.OverflowUint(uint64(f)) {
				return fmt.Sprintf("%v overflows %s", f, t)
			}
		default:
			if !math.IsInf(f, 0) && !math.IsNaN(f) && target.OverflowFloat(f) {
				return fmt.Sprintf("%v overflows %s", f, t)
			}
		}
	}
	return ""
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func unpack(info *FuncInfo, out []reflect.Value) (any, error) {
	var result any
	var err error

	switch len(out) {
	case 0:
	case 1:
		if info.HasErrorReturn {
			err = asError(out[0])
		} else {
			result = out[0].Interface()
		}
	case 2:
		result = out[0].Interface()
		err = asError(out[1])
	}

	if err != nil {
		return nil, err
	}
	return result, nil
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}
