package sqlsession

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
)

// ParamKind enumerates the scalar kinds a Param can carry.
type ParamKind uint8

const (
	ParamNull ParamKind = iota
	ParamText
	ParamInt
	ParamFloat
	ParamBool
	ParamBlob
)

func (k ParamKind) String() string {
	switch k {
	case ParamNull:
		return "null"
	case ParamText:
		return "text"
	case ParamInt:
		return "int"
	case ParamFloat:
		return "float"
	case ParamBool:
		return "bool"
	case ParamBlob:
		return "blob"
	default:
		return fmt.Sprintf("ParamKind(%d)", uint8(k))
	}
}

// Param is one positional statement parameter. The zero value is NULL.
type Param struct {
	kind ParamKind
	text string
	num  int64
	real float64
	flag bool
	blob []byte
}

func Text(v string) Param { return Param{kind: ParamText, text: v} }

func Int(v int64) Param { return Param{kind: ParamInt, num: v} }

func Float(v float64) Param { return Param{kind: ParamFloat, real: v} }

func Bool(v bool) Param { return Param{kind: ParamBool, flag: v} }

func Null() Param { return Param{} }

// Blob copies v so later changes by the caller do not reach the statement.
func Blob(v []byte) Param {
	b := make([]byte, len(v))
	copy(b, v)

	return Param{kind: ParamBlob, blob: b}
}

func (p Param) Kind() ParamKind {
	return p.kind
}

// Value implements driver.Valuer.
func (p Param) Value() (driver.Value, error) {
	switch p.kind {
	case ParamText:
		return p.text, nil
	case ParamInt:
		return p.num, nil
	case ParamFloat:
		return p.real, nil
	case ParamBool:
		return p.flag, nil
	case ParamBlob:
		return p.blob, nil
	default:
		return nil, nil
	}
}

func (p Param) String() string {
	switch p.kind {
	case ParamText:
		return fmt.Sprintf("%q", p.text)
	case ParamInt:
		return fmt.Sprint(p.num)
	case ParamFloat:
		return fmt.Sprint(p.real)
	case ParamBool:
		return fmt.Sprint(p.flag)
	case ParamBlob:
		return fmt.Sprintf("blob(%d bytes)", len(p.blob))
	default:
		return "NULL"
	}
}

// maxValuerDepth bounds chains of driver.Valuer values returning other Valuers.
const maxValuerDepth = 8

// ToParam maps a native Go value onto the closed Param set: strings, byte slices, booleans,
// every integer and float width, nil, pointers to those and driver.Valuer implementations
// producing one of them. Anything else is rejected with ErrUnsupportedParam.
func ToParam(v any) (Param, error) {
	return toParam(v, 0)
}

//nolint:gocyclo // one case per supported Go type.
func toParam(v any, depth int) (Param, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Param:
		return x, nil
	case string:
		return Text(x), nil
	case []byte:
		if x == nil {
			return Null(), nil
		}

		return Blob(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x)
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case driver.Valuer:
		return fromValuer(x, depth)
	}

	return fromReflect(reflect.ValueOf(v), depth)
}

func fromUint(v uint64) (Param, error) {
	if v > math.MaxInt64 {
		return Param{}, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedParam, v)
	}

	return Int(int64(v)), nil
}

func fromValuer(v driver.Valuer, depth int) (Param, error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return Null(), nil
	}

	if depth >= maxValuerDepth {
		return Param{}, fmt.Errorf("%w: %T nests driver.Valuer too deeply", ErrUnsupportedParam, v)
	}

	dv, err := v.Value()
	if err != nil {
		return Param{}, err
	}

	return toParam(dv, depth+1)
}

// fromReflect handles pointers and named types such as `type Status string`.
//
//nolint:exhaustive // unsupported kinds fall through to the error.
func fromReflect(rv reflect.Value, depth int) (Param, error) {
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return Null(), nil
		}

		return toParam(rv.Elem().Interface(), depth)
	case reflect.String:
		return Text(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.IsNil() {
				return Null(), nil
			}

			return Blob(rv.Bytes()), nil
		}
	}

	return Param{}, fmt.Errorf("%w: %T", ErrUnsupportedParam, rv.Interface())
}

// bindParams converts params in order. The first failure aborts the whole bind and reports its
// 1-indexed position.
func bindParams(op string, params []any) ([]any, error) {
	args := make([]any, len(params))

	for i, p := range params {
		param, err := ToParam(p)
		if err != nil {
			return nil, &Error{Kind: KindBind, Op: op, Position: i + 1, Err: err}
		}

		v, _ := param.Value()
		args[i] = v
	}

	return args, nil
}
