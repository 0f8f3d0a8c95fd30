package mapper

import (
	"reflect"
	"testing"

	"krypt.co/rpcgate/common/descriptor"
)

func TestBuiltinRoundTrip(t *testing.T) {
	reg := descriptor.NewRegistry()
	r := NewRegistry(reg)

	cases := []struct {
		v    interface{}
		wire string
	}{
		{int32(42), "42"},
		{int64(-7), "-7"},
		{float64(3.5), "3.5"},
		{true, "true"},
		{"hello", "hello"},
	}
	for _, c := range cases {
		v := reflect.ValueOf(c.v)
		m, err := r.Resolve(v.Type())
		if err != nil {
			t.Fatalf("Resolve(%T): %v", c.v, err)
		}
		enc, err := m.EncodeValue(v)
		if err != nil {
			t.Fatalf("EncodeValue(%v): %v", c.v, err)
		}
		if enc != c.wire {
			t.Errorf("EncodeValue(%v) = %q, want %q", c.v, enc, c.wire)
		}
		dec, err := m.DecodeValue(enc)
		if err != nil {
			t.Fatalf("DecodeValue(%q): %v", enc, err)
		}
		if dec.Interface() != c.v {
			t.Errorf("DecodeValue(%q) = %v, want %v", enc, dec.Interface(), c.v)
		}
	}
}

func TestArrayMapperRoundTrip(t *testing.T) {
	reg := descriptor.NewRegistry()
	r := NewRegistry(reg)

	v := reflect.ValueOf([]int32{1, 2, 3})
	m, err := r.Resolve(v.Type())
	if err != nil {
		t.Fatal(err)
	}
	enc, err := m.EncodeValue(v)
	if err != nil {
		t.Fatal(err)
	}
	if enc != "[1, 2, 3]" {
		t.Errorf("EncodeValue = %q, want [1, 2, 3]", enc)
	}
	dec, err := m.DecodeValue(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(dec.Interface(), []int32{1, 2, 3}) {
		t.Errorf("DecodeValue = %v, want [1 2 3]", dec.Interface())
	}
}

func TestArrayMapperEmpty(t *testing.T) {
	reg := descriptor.NewRegistry()
	r := NewRegistry(reg)
	m, err := r.Resolve(reflect.TypeOf([]int32{}))
	if err != nil {
		t.Fatal(err)
	}
	dec, err := m.DecodeValue("[]")
	if err != nil {
		t.Fatal(err)
	}
	if dec.Len() != 0 {
		t.Errorf("decoded empty array has len %d, want 0", dec.Len())
	}
}

func TestResolveUnmappableChan(t *testing.T) {
	reg := descriptor.NewRegistry()
	r := NewRegistry(reg)
	if _, err := r.Resolve(reflect.TypeOf(make(chan int))); err == nil {
		t.Error("expected MapperNotFoundError for chan type")
	}
}

type byteBlob []byte

func TestAddMapperOverrideOnNamedSliceType(t *testing.T) {
	reg := descriptor.NewRegistry()
	r := NewRegistry(reg)
	reg.Register("demo.ByteBlob", reflect.TypeOf(byteBlob(nil)))
	r.AddMapper("demo.ByteBlob", funcMapper{
		encode: func(v reflect.Value) (string, error) { return "overridden", nil },
		decode: func(s string) (reflect.Value, error) { return reflect.ValueOf(byteBlob(nil)), nil },
	})

	m, err := r.Resolve(reflect.TypeOf(byteBlob{1, 2, 3}))
	if err != nil {
		t.Fatal(err)
	}
	enc, err := m.EncodeValue(reflect.ValueOf(byteBlob{1, 2, 3}))
	if err != nil {
		t.Fatal(err)
	}
	if enc != "overridden" {
		t.Errorf("EncodeValue on a named slice type with an exact mapper override = %q, want overridden (exact mapper must win over the generic arrayMapper)", enc)
	}
}

func TestAddMapperOverride(t *testing.T) {
	reg := descriptor.NewRegistry()
	r := NewRegistry(reg)
	r.AddMapper("int32", funcMapper{
		encode: func(v reflect.Value) (string, error) { return "overridden", nil },
		decode: func(s string) (reflect.Value, error) { return reflect.ValueOf(int32(0)), nil },
	})
	m, err := r.Resolve(reflect.TypeOf(int32(0)))
	if err != nil {
		t.Fatal(err)
	}
	enc, _ := m.EncodeValue(reflect.ValueOf(int32(5)))
	if enc != "overridden" {
		t.Errorf("EncodeValue after override = %q, want overridden", enc)
	}
}
