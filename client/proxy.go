package client

import (
	"bufio"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"reflect"
	"time"

	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/mapper"
	"krypt.co/rpcgate/common/security"
	"krypt.co/rpcgate/common/wire"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// proxy binds one service interface to a fixed host:port and codec, and is
// the receiver behind every reflect.MakeFunc-synthesized method call built
// by NewProxy.
type proxy struct {
	ifaceType         reflect.Type
	expectedClassName string
	addr              string
	tlsConfig         *tls.Config
	codec             wire.Codec
	descriptors       *descriptor.Registry
	overloads         *descriptor.OverloadGroups
	mappers           *mapper.Registry
	timeouts          methodTimeouts
}

// NewProxy builds a proxy for iface bound to expectedClassName at
// host:port, and fills every exported func-typed field of target (a
// pointer to a struct) whose name matches one of iface's methods.
//
// This is Go's substitute for a dynamic proxy: reflect has no operation
// that synthesizes a new concrete type satisfying an arbitrary interface
// at runtime, so the caller supplies a struct shaped like the interface —
// one function field per method, same name, same signature — and NewProxy
// populates each field with a reflect.MakeFunc closure that encodes the
// call, makes one round trip, and decodes the result.
func NewProxy(iface reflect.Type, target interface{}, expectedClassName, host string, port int, opts Options) error {
	if iface.Kind() != reflect.Interface {
		return fmt.Errorf("rpcgate: %s is not an interface type", iface)
	}

	targetVal := reflect.ValueOf(target)
	if targetVal.Kind() != reflect.Ptr || targetVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("rpcgate: target must be a pointer to a struct of function fields")
	}
	structVal := targetVal.Elem()

	opts = opts.withDefaults()
	sec := security.NewProtocolSecurity(opts.Security, opts.SPI)

	var codec wire.Codec
	if opts.ProtocolVersion == wire.V1 {
		codec = wire.NewV1Codec(opts.Descriptors, opts.Overloads, opts.Mappers, sec)
	} else {
		codec = wire.NewV2Codec(opts.Descriptors, opts.Mappers, sec)
	}

	tlsCfg, err := opts.tlsConfig()
	if err != nil {
		return err
	}

	p := &proxy{
		ifaceType:         iface,
		expectedClassName: expectedClassName,
		addr:              fmt.Sprintf("%s:%d", host, port),
		tlsConfig:         tlsCfg,
		codec:             codec,
		descriptors:       opts.Descriptors,
		overloads:         opts.Overloads,
		mappers:           opts.Mappers,
		timeouts:          newMethodTimeouts(opts.TimeoutSeconds, opts.MethodTimeouts),
	}

	for i := 0; i < iface.NumMethod(); i++ {
		ifaceMethod := iface.Method(i)
		field := structVal.FieldByName(ifaceMethod.Name)
		if !field.IsValid() || field.Kind() != reflect.Func {
			return fmt.Errorf("rpcgate: target missing function field %q for interface method", ifaceMethod.Name)
		}
		if field.Type() != ifaceMethod.Type {
			return fmt.Errorf("rpcgate: target.%s has type %s, want %s", ifaceMethod.Name, field.Type(), ifaceMethod.Type)
		}
		wireName := opts.Overloads.WireNameOf(iface, ifaceMethod.Name)
		field.Set(reflect.MakeFunc(field.Type(), p.caller(ifaceMethod.Name, wireName)))
	}

	return nil
}

// caller returns the reflect.MakeFunc implementation backing one
// interface method. goMethod names the Go method (used for per-method
// timeout lookup and the return shape); wireName is what travels in the
// request META — identical to goMethod except for an overloaded method,
// where several Go methods share one wireName.
func (p *proxy) caller(goMethod, wireName string) func([]reflect.Value) []reflect.Value {
	retType, hasError := p.returnShape(goMethod)
	return func(args []reflect.Value) []reflect.Value {
		value, err := p.invoke(goMethod, wireName, args, retType)
		return packReturn(retType, hasError, value, err)
	}
}

func (p *proxy) returnShape(method string) (retType reflect.Type, hasError bool) {
	m, _ := p.ifaceType.MethodByName(method)
	switch m.Type.NumOut() {
	case 0:
		return nil, false
	case 1:
		if m.Type.Out(0) == errorType {
			return nil, true
		}
		return m.Type.Out(0), false
	default:
		return m.Type.Out(0), true
	}
}

func packReturn(retType reflect.Type, hasError bool, value reflect.Value, err error) []reflect.Value {
	var out []reflect.Value
	if retType != nil {
		if value.IsValid() {
			out = append(out, value)
		} else {
			out = append(out, reflect.Zero(retType))
		}
	}
	if hasError {
		if err != nil {
			out = append(out, reflect.ValueOf(err))
		} else {
			out = append(out, reflect.Zero(errorType))
		}
		return out
	}
	if err != nil {
		// The declared method has no error return to carry this through;
		// there is no other channel left to report it on.
		panic(err)
	}
	return out
}

func (p *proxy) invoke(goMethod, wireName string, args []reflect.Value, retType reflect.Type) (reflect.Value, error) {
	className := p.descriptors.NameOf(p.ifaceType)
	if className != p.expectedClassName {
		return reflect.Value{}, WrongInterfaceError{Expected: p.expectedClassName, Got: className}
	}

	line, err := p.codec.EncodeRequest(p.ifaceType, className, wireName, args)
	if err != nil {
		return reflect.Value{}, err
	}

	timeout := p.timeouts.For(goMethod)

	conn, err := p.dial(timeout)
	if err != nil {
		return reflect.Value{}, err
	}
	defer conn.Close()

	if timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			return reflect.Value{}, err
		}
	}

	if _, err := fmt.Fprintln(conn, line); err != nil {
		if isTimeout(err) {
			return reflect.Value{}, Timeout{Class: className, Method: wireName}
		}
		return reflect.Value{}, err
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		if serr := scanner.Err(); serr != nil && isTimeout(serr) {
			return reflect.Value{}, Timeout{Class: className, Method: wireName}
		}
		return reflect.Value{}, fmt.Errorf("rpcgate: connection closed before a response was read")
	}

	value, err := p.codec.DecodeResponse(scanner.Text(), retType)
	if err != nil {
		return reflect.Value{}, remoteErrorTo(err)
	}
	return value, nil
}

func (p *proxy) dial(timeout time.Duration) (net.Conn, error) {
	dialer := net.Dialer{Timeout: timeout}
	if p.tlsConfig != nil {
		return tls.DialWithDialer(&dialer, "tcp", p.addr, p.tlsConfig)
	}
	return dialer.Dial("tcp", p.addr)
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// remoteErrorTo turns a wire.RemoteError (the codec's reconstruction of a
// status/body response) into the local error kind re-thrown to the caller.
// Any other error (a malformed response line the codec itself rejected)
// passes through unchanged.
func remoteErrorTo(err error) error {
	var re wire.RemoteError
	if errors.As(err, &re) {
		switch re.Status {
		case wire.StatusBusinessException:
			return BusinessException{Message: re.Message}
		case wire.StatusServerError:
			return ServerError{Message: re.Message}
		case wire.StatusProtocolError:
			return ProtocolError{Message: re.Message}
		}
	}
	return err
}
