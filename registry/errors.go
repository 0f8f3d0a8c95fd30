package registry

import "fmt"

// ClassNotFoundError is returned by Resolver.Find when a class name from a
// request's META resolves to nothing registered.
type ClassNotFoundError struct {
	Class string
}

func (e ClassNotFoundError) Error() string {
	return fmt.Sprintf("no resource, singleton, or registered implementation for %q", e.Class)
}

// IsProtocolError marks ClassNotFoundError as one of the error kinds a
// Codec reports under the protocol-error status code.
func (e ClassNotFoundError) IsProtocolError() bool { return true }
