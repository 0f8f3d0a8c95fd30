package client

import "fmt"

// WrongInterfaceError is raised locally, without a network call, when the
// proxy's bound expectedClassName doesn't match the interface the caller
// built the proxy for.
type WrongInterfaceError struct {
	Expected string
	Got      string
}

func (e WrongInterfaceError) Error() string {
	return fmt.Sprintf("proxy bound to %q, not %q", e.Expected, e.Got)
}

// Timeout is raised when a read or write against the connection exceeds the
// call's effective timeout. It is never produced by the server — only the
// client applies socket deadlines.
type Timeout struct {
	Class, Method string
}

func (e Timeout) Error() string {
	return fmt.Sprintf("timeout calling %s.%s", e.Class, e.Method)
}

// BusinessException re-materializes a server-side status-1 response as a
// local error the caller can type-switch on, distinct from ServerError and
// ProtocolError at status 2/3.
type BusinessException struct {
	Message string
}

func (e BusinessException) Error() string           { return e.Message }
func (e BusinessException) IsBusinessException() bool { return true }

// ServerError re-materializes a status-2 response: an in-handler exception
// that wasn't marked business-layer.
type ServerError struct {
	Message string
}

func (e ServerError) Error() string { return e.Message }

// ProtocolError re-materializes a status-3 response: the server rejected
// the request itself (malformed frame, security violation, unknown
// method), as opposed to failing while running the handler.
type ProtocolError struct {
	Message string
}

func (e ProtocolError) Error() string            { return e.Message }
func (e ProtocolError) IsProtocolError() bool { return true }
