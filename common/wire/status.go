// Package wire implements the Codec: the V1 and V2 wire grammars, the
// Message/StatusCode vocabulary shared by both, and the error-kind
// classification that turns an invocation error into one of the four
// normative status codes a response carries.
package wire

import "fmt"

// ProtocolVersion selects which wire grammar a Codec speaks.
type ProtocolVersion int

const (
	V1 ProtocolVersion = iota
	V2
)

func (v ProtocolVersion) String() string {
	switch v {
	case V1:
		return "V1"
	case V2:
		return "V2"
	default:
		return fmt.Sprintf("ProtocolVersion(%d)", int(v))
	}
}

// StatusCode is the one-digit V2 response status. V1 responses carry no
// status code at all.
type StatusCode int

const (
	StatusSuccess StatusCode = iota
	StatusBusinessException
	StatusServerError
	StatusProtocolError
)

func (s StatusCode) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusBusinessException:
		return "BUSINESS_EXCEPTION"
	case StatusServerError:
		return "SERVER_ERROR"
	case StatusProtocolError:
		return "PROTOCOL_ERROR"
	default:
		return fmt.Sprintf("StatusCode(%d)", int(s))
	}
}
