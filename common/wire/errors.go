package wire

import (
	"errors"
	"fmt"
	"reflect"
)

// ProtocolError covers malformed frames: truncated segments, a missing
// delimiter, a META section that doesn't parse. It is always bucketed
// under the protocol-error status code.
type ProtocolError struct {
	Reason string
	Cause  error
}

func (e ProtocolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("protocol: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("protocol: %s", e.Reason)
}

func (e ProtocolError) Unwrap() error { return e.Cause }

// IsProtocolError satisfies protocolKinded.
func (e ProtocolError) IsProtocolError() bool { return true }

// protocolKinded is implemented by every error kind a Codec buckets under
// the protocol-error status code: malformed frames, unresolvable classes
// and methods, unmappable types, and security failures.
type protocolKinded interface {
	IsProtocolError() bool
}

// BusinessException marks an error as business-layer: the callee validated
// its input and is signaling an expected failure, not an infrastructure
// fault. It carries status 1 rather than 2.
type BusinessException interface {
	error
	IsBusinessException() bool
}

type businessError struct {
	class string
	msg   string
}

func (e businessError) Error() string             { return e.msg }
func (e businessError) IsBusinessException() bool { return true }
func (e businessError) ClassName() string         { return e.class }

// NewBusinessException builds a BusinessException carrying msg, reported
// under class in a response body. class stands in for the exception
// class name a JVM implementation would recover by reflection (e.g.
// "ValidationException"); Go has no such hierarchy to inspect, so the
// caller names it directly.
func NewBusinessException(class, msg string) error {
	return businessError{class: class, msg: msg}
}

// classNamed is implemented by error kinds that carry their own reported
// class name rather than relying on ShortClassName's reflect fallback.
type classNamed interface {
	ClassName() string
}

type markedBusiness struct{ error }

func (m markedBusiness) IsBusinessException() bool { return true }
func (m markedBusiness) Unwrap() error             { return m.error }

// MarkBusiness wraps an existing error so ClassifyStatus treats it as
// business-layer without discarding its original message or Unwrap chain.
// Useful when a resource method returns a plain error that should still
// reach the caller as a business exception rather than a server error.
func MarkBusiness(err error) error {
	if err == nil {
		return nil
	}
	return markedBusiness{err}
}

// ClassifyStatus buckets err into one of the four response status codes:
// BusinessException implementations get StatusBusinessException,
// protocolKinded implementations (malformed frames, unresolved classes or
// methods, unmappable types, security failures) get StatusProtocolError,
// and anything else — a panic recovered into an error, an infrastructure
// failure from the resource implementation — gets StatusServerError.
func ClassifyStatus(err error) StatusCode {
	if err == nil {
		return StatusSuccess
	}
	var be BusinessException
	if errors.As(err, &be) && be.IsBusinessException() {
		return StatusBusinessException
	}
	var pk protocolKinded
	if errors.As(err, &pk) && pk.IsProtocolError() {
		return StatusProtocolError
	}
	return StatusServerError
}

// ShortClassName renders the Go stand-in for a thrown exception's simple
// class name in a response body ("<ClassName>: <message>"): the ClassName()
// of the first classNamed error in err's chain if there is one, otherwise
// the bare type name of the innermost error in err's Unwrap chain.
func ShortClassName(err error) string {
	var cn classNamed
	if errors.As(err, &cn) {
		return cn.ClassName()
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	t := reflect.TypeOf(err)
	if t == nil {
		return "error"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "error"
	}
	return t.Name()
}
