package wire

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/mapper"
	"krypt.co/rpcgate/common/security"
)

type calcIface interface {
	AddInts(a, b int32) int32
	AddFloats(a, b float64) float64
}

func newV1Codec(overloads *descriptor.OverloadGroups) Codec {
	descriptors := descriptor.NewRegistry()
	mappers := mapper.NewRegistry(descriptors)
	sec := security.NewProtocolSecurity(security.DefaultSecurityConfig(), nil)
	return NewV1Codec(descriptors, overloads, mappers, sec)
}

func TestV1EncodeRequestDecodeMetaRoundTrip(t *testing.T) {
	codec := newV1Codec(nil)

	args := []reflect.Value{reflect.ValueOf(int32(3)), reflect.ValueOf(int32(4))}
	line, err := codec.EncodeRequest(nil, "demo.Calc", "plus", args)
	require.NoError(t, err)

	meta, err := codec.DecodeRequestMeta(line)
	require.NoError(t, err)
	require.Equal(t, "demo.Calc", meta.Class)
	require.Equal(t, "plus", meta.Method)
	require.Len(t, meta.ArgTokens, 2)
}

func TestV1EncodeRequestRejectsOverloadedMethod(t *testing.T) {
	ifaceType := reflect.TypeOf((*calcIface)(nil)).Elem()
	overloads := descriptor.NewOverloadGroups()
	overloads.Register(ifaceType, "add", "AddInts", "AddFloats")

	codec := newV1Codec(overloads)
	args := []reflect.Value{reflect.ValueOf(int32(1)), reflect.ValueOf(int32(2))}
	_, err := codec.EncodeRequest(ifaceType, "demo.Calc", "add", args)
	require.Error(t, err)

	var protoErr ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestV1EncodeDecodeResponseSuccess(t *testing.T) {
	codec := newV1Codec(nil)
	line, err := codec.EncodeResponse(StatusSuccess, "7")
	require.NoError(t, err)

	v, err := codec.DecodeResponse(line, reflect.TypeOf(int32(0)))
	require.NoError(t, err)
	require.Equal(t, int32(7), v.Interface())
}

func TestV1FailureCollapsesToNullObj(t *testing.T) {
	codec := newV1Codec(nil)
	line, err := codec.EncodeResponse(StatusServerError, "boom")
	require.NoError(t, err)

	_, err = codec.DecodeResponse(line, reflect.TypeOf(int32(0)))
	require.Error(t, err)

	var remote RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, "NullObj", remote.Message)
}

func TestV1NullArgument(t *testing.T) {
	codec := newV1Codec(nil)
	args := []reflect.Value{reflect.Zero(reflect.TypeOf((*string)(nil)))}
	line, err := codec.EncodeRequest(nil, "demo.Null", "echo", args)
	require.NoError(t, err)

	meta, err := codec.DecodeRequestMeta(line)
	require.NoError(t, err)
	require.Equal(t, "~", meta.ArgTokens[0])

	v, err := DecodeParamTokenV1(mapper.NewRegistry(descriptor.NewRegistry()), meta.ArgTokens[0], reflect.TypeOf(""))
	require.NoError(t, err)
	require.Equal(t, "", v.String())
}
