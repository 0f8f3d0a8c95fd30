package mapper

import (
	"reflect"
	"testing"

	"krypt.co/rpcgate/common/descriptor"
)

type point struct {
	X int32
	Y int32
}

type withNested struct {
	Label string
	At    point
}

func TestStructMapperRoundTrip(t *testing.T) {
	descriptors := descriptor.NewRegistry()
	r := NewRegistry(descriptors)
	descriptors.Register("demo.Point", reflect.TypeOf(point{}))

	m, err := r.Resolve(reflect.TypeOf(point{}))
	if err != nil {
		t.Fatal(err)
	}

	encoded, err := m.EncodeValue(reflect.ValueOf(point{X: 3, Y: 4}))
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := m.DecodeValue(encoded)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.Interface().(point)
	if got.X != 3 || got.Y != 4 {
		t.Errorf("DecodeValue = %+v, want {3 4}", got)
	}
}

func TestStructMapperNestedStruct(t *testing.T) {
	descriptors := descriptor.NewRegistry()
	r := NewRegistry(descriptors)
	descriptors.Register("demo.Point", reflect.TypeOf(point{}))
	descriptors.Register("demo.WithNested", reflect.TypeOf(withNested{}))

	m, err := r.Resolve(reflect.TypeOf(withNested{}))
	if err != nil {
		t.Fatal(err)
	}

	in := withNested{Label: "origin", At: point{X: 1, Y: 2}}
	encoded, err := m.EncodeValue(reflect.ValueOf(in))
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := m.DecodeValue(encoded)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.Interface().(withNested)
	if got != in {
		t.Errorf("DecodeValue = %+v, want %+v", got, in)
	}
}

func TestStructMapperRejectsTypeTagMismatch(t *testing.T) {
	descriptors := descriptor.NewRegistry()
	r := NewRegistry(descriptors)
	descriptors.Register("demo.Point", reflect.TypeOf(point{}))

	m, err := r.Resolve(reflect.TypeOf(point{}))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.DecodeValue("not.the.Right.Tag\n"); err == nil {
		t.Error("expected an error decoding a payload tagged for a different type")
	}
}

func TestMapMapperRoundTrip(t *testing.T) {
	descriptors := descriptor.NewRegistry()
	r := NewRegistry(descriptors)

	typ := reflect.TypeOf(map[string]int32{})
	m, err := r.Resolve(typ)
	if err != nil {
		t.Fatal(err)
	}

	in := map[string]int32{"a": 1, "b": 2}
	encoded, err := m.EncodeValue(reflect.ValueOf(in))
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := m.DecodeValue(encoded)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.Interface().(map[string]int32)
	if len(got) != 2 || got["a"] != 1 || got["b"] != 2 {
		t.Errorf("DecodeValue = %+v, want %+v", got, in)
	}
}

func TestMapMapperEmpty(t *testing.T) {
	descriptors := descriptor.NewRegistry()
	r := NewRegistry(descriptors)

	typ := reflect.TypeOf(map[string]int32{})
	m, err := r.Resolve(typ)
	if err != nil {
		t.Fatal(err)
	}

	encoded, err := m.EncodeValue(reflect.ValueOf(map[string]int32{}))
	if err != nil {
		t.Fatal(err)
	}
	if encoded != "" {
		t.Errorf("EncodeValue of an empty map = %q, want \"\"", encoded)
	}

	decoded, err := m.DecodeValue(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Len() != 0 {
		t.Errorf("DecodeValue of empty payload produced a map of length %d", decoded.Len())
	}
}
