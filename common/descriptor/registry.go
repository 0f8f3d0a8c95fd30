package descriptor

import (
	"reflect"
	"strings"
	"sync"
)

// Char is the wire representation of the JVM-style 16-bit 'C' primitive.
// Go has no distinct character type; callers that want a parameter to
// serialize as 'C' rather than 'I' (int32) declare it as descriptor.Char.
type Char uint16

// Registry maps canonical dotted type names ("demo.Calc") to the
// reflect.Type they resolve to, and back. It is the Go substitute for a JVM
// classloader: TypeDescriptor needs it to turn "Ldemo/Calc;" into a concrete
// type, and to turn a concrete type back into its canonical name.
//
// Resource registration (registry.ResourceRegistry) populates whichever
// Registry it was built with. A Registry is safe for concurrent
// reads/writes.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}

// NewRegistry returns an empty type registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]reflect.Type),
		byType: make(map[reflect.Type]string),
	}
}

// Default is the process-wide registry used when callers don't build their
// own. Tests that need isolation construct their own Registry instead.
var Default = NewRegistry()

// Register associates a canonical dotted name (e.g. "demo.Calc") with a
// type. Re-registering a name overwrites the previous mapping.
func (r *Registry) Register(name string, t reflect.Type) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = t
	r.byType[t] = name
}

// Resolve looks up a type by its canonical dotted name.
func (r *Registry) Resolve(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// NameOf returns the canonical dotted name for a type, registering a
// default derived from its package path if none was explicitly set.
func (r *Registry) NameOf(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	r.mu.RLock()
	name, ok := r.byType[t]
	r.mu.RUnlock()
	if ok {
		return name
	}
	derived := derivedName(t)
	r.mu.Lock()
	r.byType[t] = derived
	if _, exists := r.byName[derived]; !exists {
		r.byName[derived] = t
	}
	r.mu.Unlock()
	return derived
}

func derivedName(t reflect.Type) string {
	pkg := strings.ReplaceAll(t.PkgPath(), "/", ".")
	if pkg == "" {
		return t.Name()
	}
	return pkg + "." + t.Name()
}

// WireName converts a canonical dotted name to the slash-separated form
// used inside an "L<name>;" descriptor segment.
func WireName(dotted string) string {
	return strings.ReplaceAll(dotted, ".", "/")
}

// CanonicalName converts a slash-separated wire name back to the registry's
// dotted form.
func CanonicalName(wire string) string {
	return strings.ReplaceAll(wire, "/", ".")
}
