// Package mapper implements the Mapper registry: the table both codec sides
// consult to turn a Go value into its wire string and back. The Mapper
// contract is exactly the two-method pair (EncodeValue/DecodeValue) — never
// a one-method "map(String) Object" variant.
package mapper

import (
	"fmt"
	"reflect"
	"sync"

	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/log"
)

// Mapper is a type-specific (object→string, string→object) pair.
type Mapper interface {
	EncodeValue(v reflect.Value) (string, error)
	DecodeValue(s string) (reflect.Value, error)
}

// MapperNotFoundError is returned by Resolve when no mapper covers a type
// by any resolution rule.
type MapperNotFoundError struct {
	Type   reflect.Type
	Reason string
}

func (e MapperNotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("no mapper for %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("no mapper for %s", e.Type)
}

// IsProtocolError marks MapperNotFoundError as one of the error kinds a
// Codec reports under the protocol-error status code.
func (e MapperNotFoundError) IsProtocolError() bool { return true }

// Registry holds exact-name mapper registrations, built-ins plus anything
// user-registered via AddMapper. It is safe for concurrent use.
type Registry struct {
	descriptors *descriptor.Registry

	mu     sync.RWMutex
	byName map[string]Mapper
}

// NewRegistry returns a Registry pre-populated with the built-in mappers
// for primitives, char and string, bound to the given descriptor Registry
// for resolving nominal type names.
func NewRegistry(descriptors *descriptor.Registry) *Registry {
	r := &Registry{
		descriptors: descriptors,
		byName:      make(map[string]Mapper),
	}
	for name, m := range builtins() {
		r.byName[name] = m
	}
	return r
}

// Default is the process-wide mapper registry paired with
// descriptor.Default.
var Default = NewRegistry(descriptor.Default)

// AddMapper registers pair under typeName, overwriting and logging a
// warning if the name was already in use.
func (r *Registry) AddMapper(typeName string, pair Mapper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[typeName]; exists {
		log.Log.Warningf("mapper for %q replaced by new registration", typeName)
	}
	r.byName[typeName] = pair
}

func (r *Registry) exact(name string) (Mapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byName[name]
	return m, ok
}

// Resolve finds the mapper for a target type t, trying in order:
//  1. an exact mapper registered under t's canonical name (this is how
//     built-in primitive/char/string mappers, and any user override — including
//     one registered for a named slice/array type — are found), ahead of
//     every built-in conversion below;
//  2. if t is a map, the self-describing key-value walker;
//  3. if t is a struct, the self-describing field walker (Go's stand-in for
//     "advertises the self-describing capability");
//  4. if t is a slice/array, element-wise recursion built from the
//     resolved mapper for t.Elem();
//  5. otherwise MapperNotFoundError.
func (r *Registry) Resolve(t reflect.Type) (Mapper, error) {
	named := t
	for named.Kind() == reflect.Ptr {
		named = named.Elem()
	}

	name := r.descriptors.NameOf(named)
	if named.Kind() == reflect.String {
		name = "java.lang.String"
	}
	if named == reflect.TypeOf(descriptor.Char(0)) {
		name = "char"
	}
	if m, ok := r.exact(name); ok {
		return m, nil
	}

	switch named.Kind() {
	case reflect.Map:
		return newMapMapper(r, named), nil
	case reflect.Struct:
		return newStructMapper(r, named), nil
	case reflect.Slice, reflect.Array:
		elemMapper, err := r.Resolve(named.Elem())
		if err != nil {
			return nil, MapperNotFoundError{Type: t, Reason: err.Error()}
		}
		return newArrayMapper(named.Elem(), elemMapper), nil
	default:
		return nil, MapperNotFoundError{Type: t}
	}
}
