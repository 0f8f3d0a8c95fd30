package registry

import (
	"reflect"
	"testing"

	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/mapper"
)

type greeterImpl struct{ prefix string }

func (g *greeterImpl) Greet(name string) string { return g.prefix + name }

type greeter interface {
	Greet(name string) string
}

func newRegistries() (*descriptor.Registry, *ResourceRegistry) {
	descriptors := descriptor.NewRegistry()
	mappers := mapper.NewRegistry(descriptors)
	return descriptors, NewResourceRegistry(descriptors, mappers)
}

func TestAddResourceProducesFreshInstances(t *testing.T) {
	descriptors, resources := newRegistries()
	class := reflect.TypeOf((*greeterImpl)(nil))
	if err := resources.AddResource(class); err != nil {
		t.Fatal(err)
	}

	resolver := NewResolver(resources)
	name := descriptors.NameOf(class)

	a, err := resolver.Find(name)
	if err != nil {
		t.Fatal(err)
	}
	b, err := resolver.Find(name)
	if err != nil {
		t.Fatal(err)
	}
	if a.Interface() == b.Interface() {
		t.Error("two resolutions of a resource class returned the same instance")
	}
}

func TestAddSingletonReturnsSameInstance(t *testing.T) {
	descriptors, resources := newRegistries()
	instance := &greeterImpl{prefix: "hi "}
	if err := resources.AddSingleton(instance); err != nil {
		t.Fatal(err)
	}

	resolver := NewResolver(resources)
	name := descriptors.NameOf(reflect.TypeOf(instance))

	a, err := resolver.Find(name)
	if err != nil {
		t.Fatal(err)
	}
	if a.Interface().(*greeterImpl) != instance {
		t.Error("singleton resolution did not return the registered instance")
	}
}

func TestResolveByInterfaceFindsImplementor(t *testing.T) {
	descriptors, resources := newRegistries()
	instance := &greeterImpl{prefix: "hi "}
	if err := resources.AddSingleton(instance); err != nil {
		t.Fatal(err)
	}

	ifaceType := reflect.TypeOf((*greeter)(nil)).Elem()
	descriptors.Register("demo.Greeter", ifaceType)

	resolver := NewResolver(resources)
	v, err := resolver.Find("demo.Greeter")
	if err != nil {
		t.Fatal(err)
	}
	if v.Interface().(*greeterImpl) != instance {
		t.Error("interface resolution did not find the registered implementor")
	}
}

func TestResolveUnknownClassFails(t *testing.T) {
	_, resources := newRegistries()
	resolver := NewResolver(resources)
	if _, err := resolver.Find("nope.NoSuchClass"); err == nil {
		t.Error("expected ClassNotFoundError for an unregistered class")
	}
}

func TestDeleteResourceRemovesIt(t *testing.T) {
	descriptors, resources := newRegistries()
	class := reflect.TypeOf((*greeterImpl)(nil))
	if err := resources.AddResource(class); err != nil {
		t.Fatal(err)
	}
	name := descriptors.NameOf(class)
	resources.DeleteResource(name)

	resolver := NewResolver(resources)
	if _, err := resolver.Find(name); err == nil {
		t.Error("expected ClassNotFoundError after DeleteResource")
	}
}
