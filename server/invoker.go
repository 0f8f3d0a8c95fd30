package server

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Invoke reflectively calls ctx.Method on ctx.TargetInstance with
// ctx.Params. It recognizes the Go calling conventions "()", "(T)",
// "(error)", and "(T, error)" for a method's return values; anything else
// is returned as the first result, with a non-nil trailing error result
// returned in its place.
//
// A panic during the call (a business-logic bug, not a calling-convention
// mismatch — Parser already guarantees argument types match) is recovered
// and reported as an error, mirroring the "catch reflective failures"
// requirement for V1 responses without a status channel.
func Invoke(ctx *InvocationContext) (value reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during invocation of %s.%s: %v", ctx.Class, ctx.MethodName, r)
		}
	}()

	args := make([]reflect.Value, 0, len(ctx.Params)+1)
	args = append(args, ctx.TargetInstance)
	args = append(args, ctx.Params...)
	out := ctx.Method.Func.Call(args)

	switch len(out) {
	case 0:
		return reflect.Value{}, nil
	case 1:
		if out[0].Type() == errorType {
			if out[0].IsNil() {
				return reflect.Value{}, nil
			}
			return reflect.Value{}, out[0].Interface().(error)
		}
		return out[0], nil
	default:
		last := out[len(out)-1]
		if last.Type() == errorType {
			if !last.IsNil() {
				return reflect.Value{}, last.Interface().(error)
			}
			return out[0], nil
		}
		return out[0], nil
	}
}
