package mapper

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"krypt.co/rpcgate/common/descriptor"
)

// funcMapper adapts two closures to the Mapper interface, letting the
// built-in table below stay a flat list of (encode, decode) pairs.
type funcMapper struct {
	encode func(reflect.Value) (string, error)
	decode func(string) (reflect.Value, error)
}

func (f funcMapper) EncodeValue(v reflect.Value) (string, error) { return f.encode(v) }
func (f funcMapper) DecodeValue(s string) (reflect.Value, error) { return f.decode(s) }

// builtins returns the built-in mapper table: signed integer widths
// 8/16/32/64, 32/64-bit floats, boolean, char and string. Numeric/string
// conversions use strconv, which parses independent of locale.
func builtins() map[string]Mapper {
	return map[string]Mapper{
		"int8": funcMapper{
			encode: func(v reflect.Value) (string, error) {
				return strconv.FormatInt(v.Int(), 10), nil
			},
			decode: func(s string) (reflect.Value, error) {
				n, err := strconv.ParseInt(s, 10, 8)
				if err != nil {
					return reflect.Value{}, err
				}
				return reflect.ValueOf(int8(n)), nil
			},
		},
		"int16": funcMapper{
			encode: func(v reflect.Value) (string, error) {
				return strconv.FormatInt(v.Int(), 10), nil
			},
			decode: func(s string) (reflect.Value, error) {
				n, err := strconv.ParseInt(s, 10, 16)
				if err != nil {
					return reflect.Value{}, err
				}
				return reflect.ValueOf(int16(n)), nil
			},
		},
		"int32": funcMapper{
			encode: func(v reflect.Value) (string, error) {
				return strconv.FormatInt(v.Int(), 10), nil
			},
			decode: func(s string) (reflect.Value, error) {
				n, err := strconv.ParseInt(s, 10, 32)
				if err != nil {
					return reflect.Value{}, err
				}
				return reflect.ValueOf(int32(n)), nil
			},
		},
		"int64": funcMapper{
			encode: func(v reflect.Value) (string, error) {
				return strconv.FormatInt(v.Int(), 10), nil
			},
			decode: func(s string) (reflect.Value, error) {
				n, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return reflect.Value{}, err
				}
				return reflect.ValueOf(n), nil
			},
		},
		"int": funcMapper{
			encode: func(v reflect.Value) (string, error) {
				return strconv.FormatInt(v.Int(), 10), nil
			},
			decode: func(s string) (reflect.Value, error) {
				n, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return reflect.Value{}, err
				}
				return reflect.ValueOf(int(n)), nil
			},
		},
		"float32": funcMapper{
			encode: func(v reflect.Value) (string, error) {
				return strconv.FormatFloat(v.Float(), 'g', -1, 32), nil
			},
			decode: func(s string) (reflect.Value, error) {
				f, err := strconv.ParseFloat(s, 32)
				if err != nil {
					return reflect.Value{}, err
				}
				return reflect.ValueOf(float32(f)), nil
			},
		},
		"float64": funcMapper{
			encode: func(v reflect.Value) (string, error) {
				return strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
			},
			decode: func(s string) (reflect.Value, error) {
				f, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return reflect.Value{}, err
				}
				return reflect.ValueOf(f), nil
			},
		},
		"bool": funcMapper{
			encode: func(v reflect.Value) (string, error) {
				if v.Bool() {
					return "true", nil
				}
				return "false", nil
			},
			decode: func(s string) (reflect.Value, error) {
				switch strings.ToLower(s) {
				case "true":
					return reflect.ValueOf(true), nil
				case "false":
					return reflect.ValueOf(false), nil
				default:
					return reflect.Value{}, fmt.Errorf("not a bool: %q", s)
				}
			},
		},
		"char": funcMapper{
			encode: func(v reflect.Value) (string, error) {
				return string(rune(v.Uint())), nil
			},
			decode: func(s string) (reflect.Value, error) {
				if len(s) == 0 {
					return reflect.Value{}, fmt.Errorf("empty char")
				}
				r := []rune(s)[0]
				return reflect.ValueOf(descriptor.Char(r)), nil
			},
		},
		"java.lang.String": funcMapper{
			encode: func(v reflect.Value) (string, error) { return v.String(), nil },
			decode: func(s string) (reflect.Value, error) { return reflect.ValueOf(s), nil },
		},
	}
}

var arraySplit = regexp.MustCompile(`,\s*`)

// arrayMapper implements element-wise recursion over []T and renders the
// result in the canonical "[e1, e2, …]" form.
type arrayMapper struct {
	elemType reflect.Type
	elem     Mapper
}

func newArrayMapper(elemType reflect.Type, elem Mapper) Mapper {
	return arrayMapper{elemType: elemType, elem: elem}
}

func (a arrayMapper) EncodeValue(v reflect.Value) (string, error) {
	parts := make([]string, v.Len())
	for i := 0; i < v.Len(); i++ {
		s, err := a.elem.EncodeValue(v.Index(i))
		if err != nil {
			return "", fmt.Errorf("array element %d: %w", i, err)
		}
		parts[i] = s
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

func (a arrayMapper) DecodeValue(s string) (reflect.Value, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return reflect.Value{}, fmt.Errorf("array rendering must be bracketed: %q", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	slice := reflect.MakeSlice(reflect.SliceOf(a.elemType), 0, 0)
	if inner == "" {
		return slice, nil
	}
	for _, tok := range arraySplit.Split(inner, -1) {
		ev, err := a.elem.DecodeValue(tok)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("array element %q: %w", tok, err)
		}
		slice = reflect.Append(slice, ev.Convert(a.elemType))
	}
	return slice, nil
}
