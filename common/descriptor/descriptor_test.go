package descriptor

import (
	"reflect"
	"testing"
)

type calcStub struct{}

func (calcStub) AddInts(a, b int32) int32       { return a + b }
func (calcStub) AddFloats(a, b float64) float64 { return a + b }
func (calcStub) Echo(s string) string           { return s }

func TestDescribePrimitives(t *testing.T) {
	reg := NewRegistry()
	cases := []struct {
		t    reflect.Type
		want string
	}{
		{reflect.TypeOf(int8(0)), "B"},
		{reflect.TypeOf(int16(0)), "S"},
		{reflect.TypeOf(int32(0)), "I"},
		{reflect.TypeOf(int64(0)), "J"},
		{reflect.TypeOf(float32(0)), "F"},
		{reflect.TypeOf(float64(0)), "D"},
		{reflect.TypeOf(false), "Z"},
		{reflect.TypeOf(Char(0)), "C"},
		{reflect.TypeOf(""), "Ljava/lang/String;"},
		{reflect.TypeOf([]int32{}), "[I"},
	}
	for _, c := range cases {
		got, err := Describe(reg, c.t)
		if err != nil {
			t.Fatalf("Describe(%s): %v", c.t, err)
		}
		if got != c.want {
			t.Errorf("Describe(%s) = %q, want %q", c.t, got, c.want)
		}
	}
}

func TestParseParamsRoundTrip(t *testing.T) {
	reg := NewRegistry()
	params := []reflect.Type{reflect.TypeOf(int32(0)), reflect.TypeOf(float64(0)), reflect.TypeOf("")}
	d, err := DescribeParams(reg, params)
	if err != nil {
		t.Fatal(err)
	}
	if d != "(IDLjava/lang/String;)" {
		t.Fatalf("DescribeParams = %q", d)
	}
	got, err := ParseParams(reg, d)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, params) {
		t.Errorf("ParseParams round-trip = %v, want %v", got, params)
	}
}

func TestParseParamsMalformed(t *testing.T) {
	reg := NewRegistry()
	if _, err := ParseParams(reg, "I)"); err == nil {
		t.Error("expected error for missing leading '('")
	}
	if _, err := ParseParams(reg, "(I"); err == nil {
		t.Error("expected error for missing ')'")
	}
	if _, err := ParseParams(reg, "(Q)"); err == nil {
		t.Error("expected error for unknown letter")
	}
}

func TestFindMethodNonOverloaded(t *testing.T) {
	reg := NewRegistry()
	class := reflect.TypeOf((*calcStub)(nil))
	m, err := FindMethod(reg, nil, class, "Echo", "(Ljava/lang/String;)")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "Echo" {
		t.Errorf("FindMethod returned %q, want Echo", m.Name)
	}
}

func TestFindMethodOverloadedByDescriptor(t *testing.T) {
	reg := NewRegistry()
	class := reflect.TypeOf((*calcStub)(nil))
	groups := NewOverloadGroups()
	groups.Register(class, "add", "AddInts", "AddFloats")

	ints, err := FindMethod(reg, groups, class, "add", "(II)")
	if err != nil {
		t.Fatal(err)
	}
	if ints.Name != "AddInts" {
		t.Errorf("FindMethod(add,(II)) = %q, want AddInts", ints.Name)
	}

	floats, err := FindMethod(reg, groups, class, "add", "(DD)")
	if err != nil {
		t.Fatal(err)
	}
	if floats.Name != "AddFloats" {
		t.Errorf("FindMethod(add,(DD)) = %q, want AddFloats", floats.Name)
	}
}

func TestFindMethodNoSuchMethod(t *testing.T) {
	reg := NewRegistry()
	class := reflect.TypeOf((*calcStub)(nil))
	if _, err := FindMethod(reg, nil, class, "missing", "()"); err == nil {
		t.Error("expected NoSuchMethodError")
	} else if _, ok := err.(NoSuchMethodError); !ok {
		t.Errorf("got %T, want NoSuchMethodError", err)
	}
}

func TestOverloadGroupsCountAndWireName(t *testing.T) {
	class := reflect.TypeOf((*calcStub)(nil))
	groups := NewOverloadGroups()
	groups.Register(class, "add", "AddInts", "AddFloats")

	if n := groups.Count(class, "add"); n != 2 {
		t.Errorf("Count(add) = %d, want 2", n)
	}
	if n := groups.Count(class, "Echo"); n != 1 {
		t.Errorf("Count(Echo) = %d, want 1 (plain method fallback)", n)
	}
	if n := groups.Count(class, "nope"); n != 0 {
		t.Errorf("Count(nope) = %d, want 0", n)
	}

	if w := groups.WireNameOf(class, "AddInts"); w != "add" {
		t.Errorf("WireNameOf(AddInts) = %q, want add", w)
	}
	if w := groups.WireNameOf(class, "Echo"); w != "Echo" {
		t.Errorf("WireNameOf(Echo) = %q, want Echo (pass-through)", w)
	}
}

func TestOverloadGroupsNilIsPassthrough(t *testing.T) {
	var groups *OverloadGroups
	class := reflect.TypeOf((*calcStub)(nil))
	if w := groups.WireNameOf(class, "Echo"); w != "Echo" {
		t.Errorf("nil OverloadGroups.WireNameOf = %q, want Echo", w)
	}
	if n := groups.Count(class, "Echo"); n != 1 {
		t.Errorf("nil OverloadGroups.Count(Echo) = %d, want 1", n)
	}
}

func TestRegistryNameRoundTrip(t *testing.T) {
	reg := NewRegistry()
	class := reflect.TypeOf((*calcStub)(nil))
	reg.Register("demo.Calc", class)

	if name := reg.NameOf(class); name != "demo.Calc" {
		t.Errorf("NameOf = %q, want demo.Calc", name)
	}
	resolved, ok := reg.Resolve("demo.Calc")
	if !ok || resolved != class.Elem() {
		t.Errorf("Resolve(demo.Calc) = %v, %v", resolved, ok)
	}
	if WireName("demo.Calc") != "demo/Calc" {
		t.Error("WireName did not convert dots to slashes")
	}
	if CanonicalName("demo/Calc") != "demo.Calc" {
		t.Error("CanonicalName did not convert slashes to dots")
	}
}
