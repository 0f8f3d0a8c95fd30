// Package registry implements the server-side ResourceRegistry and its
// Resolver: the process-wide tables of resource classes and singleton
// instances, and the algorithm that turns a request's class name into a
// live instance to invoke against.
package registry

import (
	"fmt"
	"reflect"
	"sync"

	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/log"
	"krypt.co/rpcgate/common/mapper"
)

// ResourceRegistry holds the two guarded tables described in the
// concurrency model: resource classes (constructed fresh per resolution)
// and singleton instances (resolved once, reused forever). Both are keyed
// by canonical dotted class name.
type ResourceRegistry struct {
	descriptors *descriptor.Registry
	mappers     *mapper.Registry

	mu              sync.RWMutex
	resourceClasses map[string]reflect.Type
	singletons      map[string]reflect.Value
	strictTypeCheck bool
}

// NewResourceRegistry returns an empty registry bound to descriptors (for
// resolving class names to types) and mappers (for strictTypeCheck
// validation of resource method signatures).
func NewResourceRegistry(descriptors *descriptor.Registry, mappers *mapper.Registry) *ResourceRegistry {
	return &ResourceRegistry{
		descriptors:     descriptors,
		mappers:         mappers,
		resourceClasses: make(map[string]reflect.Type),
		singletons:      make(map[string]reflect.Value),
	}
}

// SetStrictTypeCheck toggles whether AddResource rejects (true) or merely
// warns about (false, the default) a class whose method signatures
// reference types with no mapper and no self-describing capability.
func (r *ResourceRegistry) SetStrictTypeCheck(strict bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strictTypeCheck = strict
}

// AddResource registers class as a resource: every resolution that can't
// be satisfied by a singleton constructs a fresh instance of it via
// newInstance. class is typically obtained as reflect.TypeOf((*Impl)(nil)),
// a pointer type whose method set is the methods to expose.
func (r *ResourceRegistry) AddResource(class reflect.Type) error {
	name := r.descriptors.NameOf(class)
	if err := r.checkSignatures(class); err != nil {
		return err
	}

	r.descriptors.Register(name, class)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resourceClasses[name]; exists {
		log.Log.Warningf("resource class %q replaced by new registration", name)
	}
	r.resourceClasses[name] = class
	return nil
}

// DeleteResource removes a previously registered resource class.
func (r *ResourceRegistry) DeleteResource(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.resourceClasses, name)
}

// AddSingleton registers instance under its concrete type's canonical
// name; every resolution for that name (or for an interface instance
// implements) returns this exact value.
func (r *ResourceRegistry) AddSingleton(instance interface{}) error {
	v := reflect.ValueOf(instance)
	name := r.descriptors.NameOf(v.Type())
	if err := r.checkSignatures(v.Type()); err != nil {
		return err
	}

	r.descriptors.Register(name, v.Type())

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.singletons[name]; exists {
		log.Log.Warningf("singleton %q replaced by new registration", name)
	}
	r.singletons[name] = v
	return nil
}

// DeleteSingleton removes a previously registered singleton.
func (r *ResourceRegistry) DeleteSingleton(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.singletons, name)
}

// checkSignatures validates that every exported method's parameter and
// return types can round-trip through the mapper registry. Under
// strictTypeCheck it rejects the class; otherwise it only warns.
func (r *ResourceRegistry) checkSignatures(class reflect.Type) error {
	strict := r.strict()
	for i := 0; i < class.NumMethod(); i++ {
		m := class.Method(i)
		ft := m.Func.Type()
		for j := 1; j < ft.NumIn(); j++ { // skip receiver
			if _, err := r.mappers.Resolve(ft.In(j)); err != nil {
				return r.reportUnmappable(class, m.Name, ft.In(j), err, strict)
			}
		}
		for j := 0; j < ft.NumOut(); j++ {
			if ft.Out(j) == errorType {
				continue
			}
			if _, err := r.mappers.Resolve(ft.Out(j)); err != nil {
				return r.reportUnmappable(class, m.Name, ft.Out(j), err, strict)
			}
		}
	}
	return nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func (r *ResourceRegistry) reportUnmappable(class reflect.Type, method string, t reflect.Type, cause error, strict bool) error {
	msg := fmt.Sprintf("%s.%s references %s, which has no mapper: %v", class, method, t, cause)
	if strict {
		return fmt.Errorf("%s", msg)
	}
	log.Log.Warning(msg)
	return nil
}

func (r *ResourceRegistry) strict() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.strictTypeCheck
}

// newInstance constructs a zero-value instance of class, matching the Go
// idiom for "the zero-argument constructor": reflect.New for a pointer
// type's element, reflect.New(...).Elem() otherwise.
func newInstance(class reflect.Type) reflect.Value {
	if class.Kind() == reflect.Ptr {
		return reflect.New(class.Elem())
	}
	return reflect.New(class).Elem()
}
