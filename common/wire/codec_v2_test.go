package wire

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/mapper"
	"krypt.co/rpcgate/common/security"
)

func newV2Codec() (Codec, *descriptor.Registry, *mapper.Registry) {
	descriptors := descriptor.NewRegistry()
	mappers := mapper.NewRegistry(descriptors)
	sec := security.NewProtocolSecurity(security.DefaultSecurityConfig(), nil)
	return NewV2Codec(descriptors, mappers, sec), descriptors, mappers
}

func TestV2EncodeRequestDecodeMetaRoundTrip(t *testing.T) {
	codec, _, _ := newV2Codec()

	args := []reflect.Value{reflect.ValueOf(int32(3)), reflect.ValueOf(int32(4))}
	line, err := codec.EncodeRequest(nil, "demo.Calc", "add", args)
	require.NoError(t, err)

	meta, err := codec.DecodeRequestMeta(line)
	require.NoError(t, err)
	require.Equal(t, "demo.Calc", meta.Class)
	require.Equal(t, "add", meta.Method)
	require.Equal(t, "(II)", meta.Descriptor)
	require.Len(t, meta.ArgTokens, 2)
}

func TestV2EncodeRequestWithNullArgument(t *testing.T) {
	codec, _, _ := newV2Codec()

	args := []reflect.Value{reflect.ValueOf("a"), reflect.Zero(reflect.TypeOf((*string)(nil))), reflect.ValueOf("c")}
	line, err := codec.EncodeRequest(nil, "demo.Null", "echo", args)
	require.NoError(t, err)

	meta, err := codec.DecodeRequestMeta(line)
	require.NoError(t, err)
	require.Len(t, meta.ArgTokens, 3)

	decoded, err := DecodeParamToken(mapper.NewRegistry(descriptor.NewRegistry()), meta.ArgTokens[0], reflect.TypeOf(""))
	require.NoError(t, err)
	require.Equal(t, "a", decoded.String())
}

func TestV2EncodeDecodeResponseSuccess(t *testing.T) {
	codec, _, mappers := newV2Codec()

	m, err := mappers.Resolve(reflect.TypeOf(int32(0)))
	require.NoError(t, err)
	body, err := m.EncodeValue(reflect.ValueOf(int32(7)))
	require.NoError(t, err)

	line, err := codec.EncodeResponse(StatusSuccess, body)
	require.NoError(t, err)

	v, err := codec.DecodeResponse(line, reflect.TypeOf(int32(0)))
	require.NoError(t, err)
	require.Equal(t, int32(7), v.Interface())
}

func TestV2DecodeResponseBusinessException(t *testing.T) {
	codec, _, _ := newV2Codec()

	line, err := codec.EncodeResponse(StatusBusinessException, "ValidationException: bad input")
	require.NoError(t, err)

	_, err = codec.DecodeResponse(line, reflect.TypeOf(int32(0)))
	require.Error(t, err)

	var remote RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, StatusBusinessException, remote.Status)
	require.True(t, remote.IsBusinessException())
}

func TestV2ChecksumRejectsTampering(t *testing.T) {
	descriptors := descriptor.NewRegistry()
	mappers := mapper.NewRegistry(descriptors)
	cfg := &security.SecurityConfig{Checksum: security.ChecksumCRC32, Whitelist: security.Disabled()}
	sec := security.NewProtocolSecurity(cfg, nil)
	codec := NewV2Codec(descriptors, mappers, sec)

	line, err := codec.EncodeResponse(StatusSuccess, "7")
	require.NoError(t, err)

	tampered := line[:len(line)-1] + "9"
	_, err = codec.DecodeResponse(tampered, reflect.TypeOf(int32(0)))
	require.Error(t, err)
}
