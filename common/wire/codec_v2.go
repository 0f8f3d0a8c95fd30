package wire

import (
	"fmt"
	"reflect"
	"strings"

	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/mapper"
	"krypt.co/rpcgate/common/security"
)

// v2Codec speaks the canonical grammar:
//
//	request:  V2|0|{{b64(META)}}|[tok1,tok2,…]            (CHK? SIG?)
//	response: V2|0|<STATUS>|{{b64(BODY)}}                  (CHK? SIG?)
type v2Codec struct {
	descriptors *descriptor.Registry
	mappers     *mapper.Registry
	sec         *security.ProtocolSecurity
}

// NewV2Codec builds a Codec speaking the V2 grammar.
func NewV2Codec(descriptors *descriptor.Registry, mappers *mapper.Registry, sec *security.ProtocolSecurity) Codec {
	return &v2Codec{descriptors: descriptors, mappers: mappers, sec: sec}
}

func (c *v2Codec) Version() ProtocolVersion { return V2 }

func (c *v2Codec) EncodeRequest(ifaceType reflect.Type, class, method string, args []reflect.Value) (string, error) {
	if err := c.sec.CheckClassAllowed(class); err != nil {
		return "", err
	}
	if err := c.sec.CheckMethodName(method); err != nil {
		return "", err
	}
	desc, err := argDescriptor(c.descriptors, args)
	if err != nil {
		return "", err
	}
	meta := class + "/" + method + desc

	tokens := make([]string, len(args))
	for i, a := range args {
		tok, err := EncodeParamToken(c.mappers, a)
		if err != nil {
			return "", err
		}
		tokens[i] = tok
	}

	line := "V2|0|" + WrapB64(meta) + "|[" + strings.Join(tokens, ",") + "]"
	return c.appendSecurity(line)
}

func (c *v2Codec) EncodeResponse(status StatusCode, body string) (string, error) {
	line := fmt.Sprintf("V2|0|%d|%s", int(status), WrapB64(body))
	return c.appendSecurity(line)
}

func (c *v2Codec) appendSecurity(body string) (string, error) {
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

func (c *v2Codec) verifySecurity(line string) (body string, err error) {
	body, chkHex, hasChk, sigAlgo, sigValue, hasSig := SplitSecuritySuffixes(line)

	if hasSig {
		signedOver := body
		if hasChk {
			signedOver = body + chkPrefix + chkHex
		}
		sigBytes, derr := security.DecodeToken(sigValue)
		if derr != nil {
			return "", ProtocolError{Reason: "invalid signature encoding", Cause: derr}
		}
		if verr := c.sec.VerifySignature(sigAlgo, []byte(signedOver), sigBytes); verr != nil {
			return "", verr
		}
	} else if c.sec.SignatureEnabled() {
		return "", security.SecurityError{Reason: "missing required signature"}
	}

	if hasChk {
		if verr := c.sec.VerifyChecksum(body, chkHex); verr != nil {
			return "", verr
		}
	} else if c.sec.ChecksumEnabled() {
		return "", security.SecurityError{Reason: "missing required checksum"}
	}

	return body, nil
}

func (c *v2Codec) DecodeResponse(line string, expectedReturnType reflect.Type) (reflect.Value, error) {
	body, err := c.verifySecurity(line)
	if err != nil {
		return reflect.Value{}, err
	}
	if !strings.HasPrefix(body, "V2|") {
		return reflect.Value{}, ProtocolError{Reason: "missing V2 prefix"}
	}
	parts := strings.SplitN(body, "|", 4)
	if len(parts) != 4 {
		return reflect.Value{}, ProtocolError{Reason: "expected 4 '|'-separated response fields"}
	}
	status, err := parseStatus(parts[2])
	if err != nil {
		return reflect.Value{}, err
	}
	bodyStr, err := UnwrapB64(parts[3])
	if err != nil {
		return reflect.Value{}, err
	}
	if status != StatusSuccess {
		return reflect.Value{}, RemoteError{Status: status, Message: bodyStr}
	}
	return decodeBody(c.mappers, bodyStr, expectedReturnType)
}

func (c *v2Codec) DecodeRequestMeta(line string) (RequestMeta, error) {
	body, err := c.verifySecurity(line)
	if err != nil {
		return RequestMeta{}, err
	}
	if !strings.HasPrefix(body, "V2|") {
		return RequestMeta{}, ProtocolError{Reason: "missing V2 prefix"}
	}
	parts := strings.SplitN(body, "|", 4)
	if len(parts) < 3 {
		return RequestMeta{}, ProtocolError{Reason: "expected at least 3 '|'-separated request fields"}
	}
	metaStr, err := UnwrapB64(parts[2])
	if err != nil {
		return RequestMeta{}, err
	}
	className, methodPart, ok := strings.Cut(metaStr, "/")
	if !ok {
		return RequestMeta{}, ProtocolError{Reason: "META missing '/' between class and method"}
	}
	if err := c.sec.CheckClassAllowed(className); err != nil {
		return RequestMeta{}, err
	}

	methodName := descriptor.MethodName(methodPart)
	desc := descriptor.Signature(methodPart)
	if err := c.sec.CheckMethodName(methodName); err != nil {
		return RequestMeta{}, err
	}

	var argTokens []string
	if len(parts) == 4 {
		arr := strings.TrimSpace(parts[3])
		if !strings.HasPrefix(arr, "[") || !strings.HasSuffix(arr, "]") {
			return RequestMeta{}, ProtocolError{Reason: "malformed parameter array"}
		}
		inner := arr[1 : len(arr)-1]
		if inner != "" {
			argTokens = strings.Split(inner, ",")
		}
	}

	return RequestMeta{Class: className, Method: methodName, Descriptor: desc, ArgTokens: argTokens}, nil
}

func parseStatus(s string) (StatusCode, error) {
	switch s {
	case "0":
		return StatusSuccess, nil
	case "1":
		return StatusBusinessException, nil
	case "2":
		return StatusServerError, nil
	case "3":
		return StatusProtocolError, nil
	default:
		return 0, ProtocolError{Reason: fmt.Sprintf("unknown status code %q", s)}
	}
}
