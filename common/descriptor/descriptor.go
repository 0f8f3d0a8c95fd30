// Package descriptor implements bidirectional mapping between reflect.Types
// and the compact JVM-field-descriptor-style strings that travel on the
// wire, plus overload resolution by descriptor.
package descriptor

import (
	"reflect"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

var charType = reflect.TypeOf(Char(0))

// Describe returns the wire mnemonic for a single type: one of the
// primitive letters, an "L<name>;" nominal descriptor, or a "["-prefixed
// array descriptor. It fails with InvalidTypeError for types with no wire
// representation (chans, funcs, maps/sets without a registered mapper are
// still describable — the *mapper* may reject them later; Describe only
// rejects types that can never be named at all).
func Describe(reg *Registry, t reflect.Type) (string, error) {
	switch t.Kind() {
	case reflect.Int8:
		return "B", nil
	case reflect.Int16:
		return "S", nil
	case reflect.Int32:
		if t == charType {
			return "C", nil
		}
		return "I", nil
	case reflect.Int, reflect.Int64:
		return "J", nil
	case reflect.Float32:
		return "F", nil
	case reflect.Float64:
		return "D", nil
	case reflect.Bool:
		return "Z", nil
	case reflect.Uint16:
		if t == charType {
			return "C", nil
		}
		return "S", nil
	case reflect.Slice, reflect.Array:
		elem, err := Describe(reg, t.Elem())
		if err != nil {
			return "", err
		}
		return "[" + elem, nil
	case reflect.Ptr:
		return Describe(reg, t.Elem())
	case reflect.Struct, reflect.Interface, reflect.Map, reflect.String:
		if t.Kind() == reflect.String {
			return "Ljava/lang/String;", nil
		}
		name := reg.NameOf(t)
		return "L" + WireName(name) + ";", nil
	case reflect.Invalid:
		return "V", nil
	default:
		return "", InvalidTypeError{Type: t}
	}
}

// DescribeParams builds the "(T1T2…Tn)" method descriptor for an ordered
// parameter list.
func DescribeParams(reg *Registry, params []reflect.Type) (string, error) {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range params {
		d, err := Describe(reg, p)
		if err != nil {
			return "", err
		}
		b.WriteString(d)
	}
	b.WriteByte(')')
	return b.String(), nil
}

// DescribeMethod is DescribeParams applied to a reflect.Method's in
// (non-receiver) argument types.
func DescribeMethod(reg *Registry, m reflect.Method) (string, error) {
	return DescribeParams(reg, MethodParamTypes(m))
}

// MethodParamTypes returns a reflect.Method's in (non-receiver) argument
// types in declared order. Exported so request parsers can decode
// arguments into their declared types without recomputing this.
func MethodParamTypes(m reflect.Method) []reflect.Type {
	ft := m.Func.Type()
	params := make([]reflect.Type, 0, ft.NumIn()-1)
	for i := 1; i < ft.NumIn(); i++ { // skip receiver
		params = append(params, ft.In(i))
	}
	return params
}

// ParseParams streams a "(...)" descriptor into an ordered list of
// reflect.Types, resolving nominal segments through reg. It fails with
// MalformedDescriptorError on truncation or an unknown letter, and
// UnknownTypeNameError when a nominal segment names a type reg has never
// seen.
func ParseParams(reg *Registry, d string) ([]reflect.Type, error) {
	if len(d) < 2 || d[0] != '(' {
		return nil, MalformedDescriptorError{Descriptor: d, Reason: "missing leading '('"}
	}
	close := strings.IndexByte(d, ')')
	if close < 0 {
		return nil, MalformedDescriptorError{Descriptor: d, Reason: "missing ')'"}
	}
	body := d[1:close]
	var types []reflect.Type
	i := 0
	for i < len(body) {
		t, consumed, err := parseOne(reg, body[i:])
		if err != nil {
			return nil, err
		}
		types = append(types, t)
		i += consumed
	}
	return types, nil
}

func parseOne(reg *Registry, s string) (reflect.Type, int, error) {
	if len(s) == 0 {
		return nil, 0, MalformedDescriptorError{Descriptor: s, Reason: "truncated"}
	}
	switch s[0] {
	case '[':
		elem, n, err := parseOne(reg, s[1:])
		if err != nil {
			return nil, 0, err
		}
		return reflect.SliceOf(elem), n + 1, nil
	case 'B':
		return reflect.TypeOf(int8(0)), 1, nil
	case 'S':
		return reflect.TypeOf(int16(0)), 1, nil
	case 'I':
		return reflect.TypeOf(int32(0)), 1, nil
	case 'J':
		return reflect.TypeOf(int64(0)), 1, nil
	case 'F':
		return reflect.TypeOf(float32(0)), 1, nil
	case 'D':
		return reflect.TypeOf(float64(0)), 1, nil
	case 'Z':
		return reflect.TypeOf(false), 1, nil
	case 'C':
		return charType, 1, nil
	case 'V':
		return nil, 1, nil
	case 'L':
		semi := strings.IndexByte(s, ';')
		if semi < 0 {
			return nil, 0, MalformedDescriptorError{Descriptor: s, Reason: "unterminated nominal type"}
		}
		wireName := s[1:semi]
		if wireName == "java/lang/String" {
			return reflect.TypeOf(""), semi + 1, nil
		}
		name := CanonicalName(wireName)
		t, ok := reg.Resolve(name)
		if !ok {
			return nil, 0, UnknownTypeNameError{Name: name}
		}
		return t, semi + 1, nil
	default:
		return nil, 0, MalformedDescriptorError{Descriptor: s, Reason: "unknown letter '" + string(s[0]) + "'"}
	}
}

// methodCache caches (class pointer identity, name, descriptor) -> resolved
// reflect.Method, avoiding a full reflective re-scan of every call on a hot
// connection. Sized generously; it only ever holds one entry per distinct
// overload actually invoked.
var methodCache, _ = lru.New(4096)

type methodCacheKey struct {
	class      reflect.Type
	name       string
	descriptor string
}

// FindMethod iterates the declared (promoted-method-inclusive, via Go's
// normal method set rules) methods of class looking for the one whose
// computed parameter descriptor byte-equals descriptor. There is no
// implicit widening: "(I)" never matches a "(J)" method.
//
// A Go type can't hold two methods under one name, so when name is an
// overloaded wire method, overloads supplies the distinct Go method names
// that share it; a nil overloads or a name it has no group for just
// matches name against the Go method name directly, which is the
// non-overloaded common case.
func FindMethod(reg *Registry, overloads *OverloadGroups, class reflect.Type, name, descriptor string) (reflect.Method, error) {
	key := methodCacheKey{class: class, name: name, descriptor: descriptor}
	if cached, ok := methodCache.Get(key); ok {
		return cached.(reflect.Method), nil
	}

	candidateNames, hasGroup := overloads.candidates(class, name)
	if !hasGroup {
		candidateNames = []string{name}
	}

	for i := 0; i < class.NumMethod(); i++ {
		m := class.Method(i)
		if !containsString(candidateNames, m.Name) {
			continue
		}
		got, err := DescribeMethod(reg, m)
		if err != nil {
			continue
		}
		if got == descriptor {
			methodCache.Add(key, m)
			return m, nil
		}
	}
	return reflect.Method{}, NoSuchMethodError{Class: reg.NameOf(class), Method: name, Descriptor: descriptor}
}

func containsString(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// MethodName extracts the method name (before the first '(') from a
// combined "methodName(descriptor)" string.
func MethodName(methodPart string) string {
	if i := strings.IndexByte(methodPart, '('); i >= 0 {
		return methodPart[:i]
	}
	return methodPart
}

// Signature extracts the "(...)" portion (inclusive of parens) from a
// combined "methodName(descriptor)" string.
func Signature(methodPart string) string {
	if i := strings.IndexByte(methodPart, '('); i >= 0 {
		return methodPart[i:]
	}
	return "()"
}
