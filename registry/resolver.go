package registry

import "reflect"

// Resolver implements the four-step resolution order that turns a request's
// class name into a live instance to invoke against.
type Resolver struct {
	reg *ResourceRegistry
}

// NewResolver binds a Resolver to reg.
func NewResolver(reg *ResourceRegistry) *Resolver {
	return &Resolver{reg: reg}
}

// Find resolves targetClass — a canonical dotted class or interface name —
// to a live instance, trying in order:
//  1. a singleton registered directly under targetClass;
//  2. if targetClass names an interface, the first registered resource
//     class or singleton whose concrete type implements it, resolved
//     recursively under its own name;
//  3. a singleton registered under the concrete name (redundant with step 1
//     once step 2 has substituted the concrete name, but cheap to repeat);
//  4. a fresh instance of a registered resource class.
func (r *Resolver) Find(targetClass string) (reflect.Value, error) {
	return r.find(targetClass, make(map[string]bool))
}

func (r *Resolver) find(targetClass string, visited map[string]bool) (reflect.Value, error) {
	if visited[targetClass] {
		return reflect.Value{}, ClassNotFoundError{Class: targetClass}
	}
	visited[targetClass] = true

	r.reg.mu.RLock()
	if singleton, ok := r.reg.singletons[targetClass]; ok {
		r.reg.mu.RUnlock()
		return singleton, nil
	}
	r.reg.mu.RUnlock()

	t, ok := r.reg.descriptors.Resolve(targetClass)
	if !ok {
		return reflect.Value{}, ClassNotFoundError{Class: targetClass}
	}

	if t.Kind() == reflect.Interface {
		if concrete, ok := r.findImplementor(t); ok {
			return r.find(r.reg.descriptors.NameOf(concrete), visited)
		}
		return reflect.Value{}, ClassNotFoundError{Class: targetClass}
	}

	r.reg.mu.RLock()
	if resourceClass, ok := r.reg.resourceClasses[targetClass]; ok {
		r.reg.mu.RUnlock()
		return newInstance(resourceClass), nil
	}
	r.reg.mu.RUnlock()

	return reflect.Value{}, ClassNotFoundError{Class: targetClass}
}

// findImplementor scans both registries for a concrete type implementing
// iface, checking resource classes before singletons only because maps
// iterate in an arbitrary order and some deterministic tie-break is
// better than none when more than one type qualifies.
func (r *Resolver) findImplementor(iface reflect.Type) (reflect.Type, bool) {
	r.reg.mu.RLock()
	defer r.reg.mu.RUnlock()

	for _, class := range r.reg.resourceClasses {
		if class.Implements(iface) {
			return class, true
		}
	}
	for _, v := range r.reg.singletons {
		if v.Type().Implements(iface) {
			return v.Type(), true
		}
	}
	return nil, false
}
