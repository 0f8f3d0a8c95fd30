package descriptor

import "fmt"

// InvalidTypeError is returned by Describe when a reflect.Type has no wire
// representation (e.g. a channel, a func, or a uint32).
type InvalidTypeError struct {
	Type interface{}
}

func (e InvalidTypeError) Error() string {
	return fmt.Sprintf("type %v cannot be represented on the wire", e.Type)
}

// IsProtocolError marks InvalidTypeError as one of the error kinds a Codec
// reports under the protocol-error status code.
func (e InvalidTypeError) IsProtocolError() bool { return true }

// MalformedDescriptorError is returned by ParseParams when a descriptor
// string is truncated or contains an unknown letter.
type MalformedDescriptorError struct {
	Descriptor string
	Reason     string
}

func (e MalformedDescriptorError) Error() string {
	return fmt.Sprintf("malformed descriptor %q: %s", e.Descriptor, e.Reason)
}

// IsProtocolError marks MalformedDescriptorError as one of the error kinds
// a Codec reports under the protocol-error status code.
func (e MalformedDescriptorError) IsProtocolError() bool { return true }

// NoSuchMethodError is returned by FindMethod when no declared method of a
// class has a descriptor byte-equal to the one requested.
type NoSuchMethodError struct {
	Class      string
	Method     string
	Descriptor string
}

func (e NoSuchMethodError) Error() string {
	return fmt.Sprintf("no method %s.%s%s", e.Class, e.Method, e.Descriptor)
}

// IsProtocolError marks NoSuchMethodError as one of the error kinds a Codec
// reports under the protocol-error status code.
func (e NoSuchMethodError) IsProtocolError() bool { return true }

// UnknownTypeNameError is returned when a nominal descriptor segment names
// a type that was never registered with the descriptor Registry.
type UnknownTypeNameError struct {
	Name string
}

func (e UnknownTypeNameError) Error() string {
	return fmt.Sprintf("unknown nominal type %q", e.Name)
}

// IsProtocolError marks UnknownTypeNameError as one of the error kinds a
// Codec reports under the protocol-error status code.
func (e UnknownTypeNameError) IsProtocolError() bool { return true }
