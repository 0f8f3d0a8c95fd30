package server

import (
	"errors"
	"reflect"
	"testing"
)

type invokerFixture struct{}

func (invokerFixture) NoReturn()          { /* no-op */ }
func (invokerFixture) ValueOnly() int32   { return 42 }
func (invokerFixture) ErrorOnlyNil() error { return nil }
func (invokerFixture) ErrorOnlyFailing() error {
	return errors.New("boom")
}
func (invokerFixture) ValueAndNilError() (int32, error) { return 7, nil }
func (invokerFixture) ValueAndError() (int32, error) {
	return 0, errors.New("division by zero")
}
func (invokerFixture) Panics() int32 { panic("business logic exploded") }

func invokeFixtureMethod(t *testing.T, name string) (reflect.Value, error) {
	t.Helper()
	instance := reflect.ValueOf(invokerFixture{})
	method, ok := instance.Type().MethodByName(name)
	if !ok {
		t.Fatalf("no such method %s", name)
	}
	ctx := &InvocationContext{
		Class:          "demo.InvokerFixture",
		MethodName:     name,
		Method:         method,
		TargetInstance: instance,
	}
	return Invoke(ctx)
}

func TestInvokeNoReturn(t *testing.T) {
	v, err := invokeFixtureMethod(t, "NoReturn")
	if err != nil {
		t.Fatal(err)
	}
	if v.IsValid() {
		t.Errorf("expected an invalid reflect.Value, got %v", v)
	}
}

func TestInvokeValueOnly(t *testing.T) {
	v, err := invokeFixtureMethod(t, "ValueOnly")
	if err != nil {
		t.Fatal(err)
	}
	if v.Interface().(int32) != 42 {
		t.Errorf("ValueOnly = %v, want 42", v.Interface())
	}
}

func TestInvokeErrorOnlyNil(t *testing.T) {
	v, err := invokeFixtureMethod(t, "ErrorOnlyNil")
	if err != nil {
		t.Fatal(err)
	}
	if v.IsValid() {
		t.Errorf("expected an invalid reflect.Value for a (error) method returning nil, got %v", v)
	}
}

func TestInvokeErrorOnlyFailing(t *testing.T) {
	_, err := invokeFixtureMethod(t, "ErrorOnlyFailing")
	if err == nil || err.Error() != "boom" {
		t.Errorf("ErrorOnlyFailing error = %v, want \"boom\"", err)
	}
}

func TestInvokeValueAndNilError(t *testing.T) {
	v, err := invokeFixtureMethod(t, "ValueAndNilError")
	if err != nil {
		t.Fatal(err)
	}
	if v.Interface().(int32) != 7 {
		t.Errorf("ValueAndNilError = %v, want 7", v.Interface())
	}
}

func TestInvokeValueAndError(t *testing.T) {
	_, err := invokeFixtureMethod(t, "ValueAndError")
	if err == nil || err.Error() != "division by zero" {
		t.Errorf("ValueAndError error = %v, want \"division by zero\"", err)
	}
}

func TestInvokeRecoversPanic(t *testing.T) {
	_, err := invokeFixtureMethod(t, "Panics")
	if err == nil {
		t.Fatal("expected a panic to be recovered as an error")
	}
}
