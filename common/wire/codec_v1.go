package wire

import (
	"fmt"
	"reflect"
	"strings"

	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/mapper"
	"krypt.co/rpcgate/common/security"
)

// v1Codec speaks the legacy grammar, retained for compatibility with peers
// that predate overload resolution and status-coded responses:
//
//	request:  0|{{b64(ClassName/methodName)}}|{{b64("tok1:::tok2:::…")}}   (CHK? SIG?)
//	response: 0|{{b64(body)}}                                              (CHK? SIG?)
//
// Each tok_i is itself "{{b64(value)}}", or the bare literal "~" for null —
// so a V1 parameter list is Base64 nested two levels deep. There is no
// status code: any failure collapses to the literal body "NullObj".
type v1Codec struct {
	descriptors *descriptor.Registry
	overloads   *descriptor.OverloadGroups
	mappers     *mapper.Registry
	sec         *security.ProtocolSecurity
}

// NewV1Codec builds a Codec speaking the V1 legacy grammar. overloads may
// be nil if the client's service interface has no overloaded method name.
func NewV1Codec(descriptors *descriptor.Registry, overloads *descriptor.OverloadGroups, mappers *mapper.Registry, sec *security.ProtocolSecurity) Codec {
	return &v1Codec{descriptors: descriptors, overloads: overloads, mappers: mappers, sec: sec}
}

func (c *v1Codec) Version() ProtocolVersion { return V1 }

func (c *v1Codec) EncodeRequest(ifaceType reflect.Type, class, method string, args []reflect.Value) (string, error) {
	if overloadCount(c.overloads, ifaceType, method) > 1 {
		return "", ProtocolError{Reason: fmt.Sprintf("%s is overloaded; V1 cannot disambiguate, use V2", method)}
	}
	if err := c.sec.CheckClassAllowed(class); err != nil {
		return "", err
	}
	if err := c.sec.CheckMethodName(method); err != nil {
		return "", err
	}

	meta := class + "/" + method
	tokens := make([]string, len(args))
	for i, a := range args {
		tok, err := c.encodeTokenV1(a)
		if err != nil {
			return "", err
		}
		tokens[i] = tok
	}
	joined := strings.Join(tokens, ":::")

	line := "0|" + WrapB64(meta) + "|" + WrapB64(joined)
	return c.appendSecurity(line)
}

func (c *v1Codec) encodeTokenV1(v reflect.Value) (string, error) {
	if !v.IsValid() || isNilValue(v) {
		return "~", nil
	}
	m, err := c.mappers.Resolve(v.Type())
	if err != nil {
		return "", err
	}
	s, err := m.EncodeValue(v)
	if err != nil {
		return "", err
	}
	return WrapB64(s), nil
}

func (c *v1Codec) EncodeResponse(status StatusCode, body string) (string, error) {
	if status != StatusSuccess {
		body = "NullObj"
	}
	line := "0|" + WrapB64(body)
	return c.appendSecurity(line)
}

func (c *v1Codec) appendSecurity(body string) (string, error) {
	var chkHex string
	var hasChk bool
	if c.sec.ChecksumEnabled() {
		h, err := c.sec.Checksum(body)
		if err != nil {
			return "", err
		}
		chkHex, hasChk = h, true
	}

	signedOver := body
	if hasChk {
		signedOver = body + chkPrefix + chkHex
	}

	var sigAlgo, sigValue string
	var hasSig bool
	if c.sec.SignatureEnabled() {
		algo, sig, err := c.sec.Sign([]byte(signedOver))
		if err != nil {
			return "", err
		}
		sigAlgo, sigValue, hasSig = algo, security.EncodeToken(sig), true
	}

	return AppendSecuritySuffixes(body, chkHex, hasChk, sigAlgo, sigValue, hasSig), nil
}

func (c *v1Codec) verifySecurity(line string) (string, error) {
	body, chkHex, hasChk, sigAlgo, sigValue, hasSig := SplitSecuritySuffixes(line)

	if hasSig {
		signedOver := body
		if hasChk {
			signedOver = body + chkPrefix + chkHex
		}
		sigBytes, err := security.DecodeToken(sigValue)
		if err != nil {
			return "", ProtocolError{Reason: "invalid signature encoding", Cause: err}
		}
		if err := c.sec.VerifySignature(sigAlgo, []byte(signedOver), sigBytes); err != nil {
			return "", err
		}
	} else if c.sec.SignatureEnabled() {
		return "", security.SecurityError{Reason: "missing required signature"}
	}

	if hasChk {
		if err := c.sec.VerifyChecksum(body, chkHex); err != nil {
			return "", err
		}
	} else if c.sec.ChecksumEnabled() {
		return "", security.SecurityError{Reason: "missing required checksum"}
	}

	return body, nil
}

func (c *v1Codec) DecodeResponse(line string, expectedReturnType reflect.Type) (reflect.Value, error) {
	body, err := c.verifySecurity(line)
	if err != nil {
		return reflect.Value{}, err
	}
	if !strings.HasPrefix(body, "0|") {
		return reflect.Value{}, ProtocolError{Reason: "missing V1 prefix"}
	}
	parts := strings.SplitN(body, "|", 2)
	if len(parts) != 2 {
		return reflect.Value{}, ProtocolError{Reason: "expected 2 '|'-separated response fields"}
	}
	bodyStr, err := UnwrapB64(parts[1])
	if err != nil {
		return reflect.Value{}, err
	}
	if bodyStr == "NullObj" {
		return reflect.Value{}, RemoteError{Status: StatusServerError, Message: "NullObj"}
	}
	return decodeBody(c.mappers, bodyStr, expectedReturnType)
}

func (c *v1Codec) DecodeRequestMeta(line string) (RequestMeta, error) {
	body, err := c.verifySecurity(line)
	if err != nil {
		return RequestMeta{}, err
	}
	if !strings.HasPrefix(body, "0|") {
		return RequestMeta{}, ProtocolError{Reason: "missing V1 prefix"}
	}
	parts := strings.SplitN(body, "|", 3)
	if len(parts) != 3 {
		return RequestMeta{}, ProtocolError{Reason: "expected 3 '|'-separated request fields"}
	}
	metaStr, err := UnwrapB64(parts[1])
	if err != nil {
		return RequestMeta{}, err
	}
	className, methodName, ok := strings.Cut(metaStr, "/")
	if !ok {
		return RequestMeta{}, ProtocolError{Reason: "META missing '/' between class and method"}
	}
	if err := c.sec.CheckClassAllowed(className); err != nil {
		return RequestMeta{}, err
	}
	if err := c.sec.CheckMethodName(methodName); err != nil {
		return RequestMeta{}, err
	}

	argsStr, err := UnwrapB64(parts[2])
	if err != nil {
		return RequestMeta{}, err
	}
	var argTokens []string
	if argsStr != "" {
		argTokens = strings.Split(argsStr, ":::")
	}

	return RequestMeta{Class: className, Method: methodName, ArgTokens: argTokens}, nil
}

// DecodeParamTokenV1 reverses encodeTokenV1 for a declared parameter type t.
// Exported so the V1 request parser (which resolves the method — and so
// the declared parameter types — only after DecodeRequestMeta returns) can
// decode each raw token.
func DecodeParamTokenV1(mappers *mapper.Registry, tok string, t reflect.Type) (reflect.Value, error) {
	if tok == "~" {
		return reflect.Zero(t), nil
	}
	s, err := UnwrapB64(tok)
	if err != nil {
		return reflect.Value{}, err
	}
	if s == "" && t.Kind() == reflect.String {
		return reflect.ValueOf("").Convert(t), nil
	}
	m, err := mappers.Resolve(t)
	if err != nil {
		return reflect.Value{}, err
	}
	return m.DecodeValue(s)
}
