package wire

import (
	"reflect"

	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/mapper"
	"krypt.co/rpcgate/common/security"
)

// Codec turns typed Go values into wire lines and back, speaking either the
// V1 legacy grammar or the V2 canonical grammar depending on which
// constructor built it.
type Codec interface {
	Version() ProtocolVersion

	// EncodeRequest assembles a request line calling method on class with
	// args. ifaceType is the client interface the call was made through;
	// V1 consults it to refuse calls to an overloaded method name.
	EncodeRequest(ifaceType reflect.Type, class, method string, args []reflect.Value) (string, error)

	// EncodeResponse assembles a response line carrying status and a
	// pre-rendered body: the mapper-encoded return value, or an
	// "<ExceptionClassName>: <message>" exception rendering.
	EncodeResponse(status StatusCode, body string) (string, error)

	// DecodeResponse parses a response line and, on a success status,
	// decodes its body into a value of expectedReturnType. Any other
	// status yields a RemoteError instead of a value.
	DecodeResponse(line string, expectedReturnType reflect.Type) (reflect.Value, error)

	// DecodeRequestMeta verifies a request line's checksum/signature and
	// splits it into its meta fields and raw, still-Base64'd argument
	// tokens, without resolving the target class/method or decoding
	// arguments into typed values — that's the request parser's job, since
	// it needs the resolved method's declared parameter types to do it.
	DecodeRequestMeta(line string) (RequestMeta, error)
}

// RequestMeta is the result of splitting a request line into its fields,
// prior to resolving the target method or decoding arguments.
type RequestMeta struct {
	Class      string
	Method     string
	Descriptor string
	ArgTokens  []string
}

// RemoteError is what a client-side DecodeResponse raises for any non-
// success status: it carries enough to reconstruct the original
// classification if the caller forwards it through another ClassifyStatus
// call (e.g. a proxy in front of a proxy).
type RemoteError struct {
	Status  StatusCode
	Message string
}

func (e RemoteError) Error() string {
	return e.Status.String() + ": " + e.Message
}

func (e RemoteError) IsBusinessException() bool { return e.Status == StatusBusinessException }
func (e RemoteError) IsProtocolError() bool      { return e.Status == StatusProtocolError }

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

// EncodeParamToken renders v as the "~" null sentinel, the empty token, or
// a URL-safe-Base64'd mapper encoding, per the ParameterToken grammar
// shared by both V1 and V2. Exported so server-side request parsing (which
// needs the same token grammar, driven by the declared parameter type
// rather than an encoded value) can share it.
func EncodeParamToken(mappers *mapper.Registry, v reflect.Value) (string, error) {
	if !v.IsValid() || isNilValue(v) {
		return "~", nil
	}
	m, err := mappers.Resolve(v.Type())
	if err != nil {
		return "", err
	}
	s, err := m.EncodeValue(v)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", nil
	}
	return security.EncodeToken([]byte(s)), nil
}

// DecodeParamToken reverses EncodeParamToken for a declared parameter type t.
func DecodeParamToken(mappers *mapper.Registry, tok string, t reflect.Type) (reflect.Value, error) {
	if tok == "~" {
		return reflect.Zero(t), nil
	}
	if tok == "" {
		if t.Kind() == reflect.String {
			return reflect.ValueOf("").Convert(t), nil
		}
	}
	raw, err := security.DecodeToken(tok)
	if err != nil {
		return reflect.Value{}, ProtocolError{Reason: "invalid base64 parameter token", Cause: err}
	}
	m, err := mappers.Resolve(t)
	if err != nil {
		return reflect.Value{}, err
	}
	return m.DecodeValue(string(raw))
}

// argDescriptor computes the "(T1T2…Tn)" descriptor for args by their
// runtime types, which for a call made through a statically typed Go
// interface always equal the method's declared parameter types.
func argDescriptor(descriptors *descriptor.Registry, args []reflect.Value) (string, error) {
	types := make([]reflect.Type, len(args))
	for i, a := range args {
		types[i] = a.Type()
	}
	return descriptor.DescribeParams(descriptors, types)
}

// decodeBody turns a response BODY string into a value of
// expectedReturnType, honoring the "null"/"NullObj" sentinels.
func decodeBody(mappers *mapper.Registry, body string, expectedReturnType reflect.Type) (reflect.Value, error) {
	if expectedReturnType == nil {
		return reflect.Value{}, nil
	}
	if body == "null" || body == "NullObj" {
		return reflect.Zero(expectedReturnType), nil
	}
	m, err := mappers.Resolve(expectedReturnType)
	if err != nil {
		return reflect.Value{}, err
	}
	return m.DecodeValue(body)
}

func overloadCount(overloads *descriptor.OverloadGroups, ifaceType reflect.Type, method string) int {
	if ifaceType == nil {
		return 1
	}
	return overloads.Count(ifaceType, method)
}

// WrapB64 renders s as the "{{<b64(s)>}}" envelope used around META and
// response BODY fields in both grammars.
func WrapB64(s string) string {
	return "{{" + security.EncodeToken([]byte(s)) + "}}"
}

// UnwrapB64 reverses WrapB64.
func UnwrapB64(tok string) (string, error) {
	if len(tok) < 4 || tok[:2] != "{{" || tok[len(tok)-2:] != "}}" {
		return "", ProtocolError{Reason: "missing {{ }} wrapper"}
	}
	raw, err := security.DecodeToken(tok[2 : len(tok)-2])
	if err != nil {
		return "", ProtocolError{Reason: "invalid base64 in {{ }} wrapper", Cause: err}
	}
	return string(raw), nil
}
