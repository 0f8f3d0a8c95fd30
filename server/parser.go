// Package server implements the server half of the pipeline: parsing an
// incoming request line into an invocation context, reflectively invoking
// the resolved method, and running the per-connection read-dispatch-write
// loop.
package server

import (
	"fmt"
	"reflect"
	"strings"

	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/mapper"
	"krypt.co/rpcgate/common/wire"
	"krypt.co/rpcgate/registry"
)

// InvocationContext carries everything the Invoker needs to make the
// reflective call once a request line has been fully resolved.
type InvocationContext struct {
	Class          string
	MethodName     string
	Method         reflect.Method
	TargetInstance reflect.Value
	Params         []reflect.Value
	Version        wire.ProtocolVersion
}

// PinnedVersion restricts the server to a single protocol version, instead
// of detecting it per request.
type PinnedVersion int

const (
	AUTO PinnedVersion = iota
	PinV1
	PinV2
)

// Parser turns a raw request line into an InvocationContext, performing
// security checks and overload resolution along the way.
type Parser struct {
	descriptors *descriptor.Registry
	overloads   *descriptor.OverloadGroups
	mappers     *mapper.Registry
	resolver    *registry.Resolver
	codecV1     wire.Codec
	codecV2     wire.Codec
	pinned      PinnedVersion
}

// NewParser binds a Parser to the registries and codecs it needs. overloads
// may be nil if no registered resource exposes an overloaded method name.
func NewParser(descriptors *descriptor.Registry, overloads *descriptor.OverloadGroups, mappers *mapper.Registry, resolver *registry.Resolver, codecV1, codecV2 wire.Codec, pinned PinnedVersion) *Parser {
	return &Parser{
		descriptors: descriptors,
		overloads:   overloads,
		mappers:     mappers,
		resolver:    resolver,
		codecV1:     codecV1,
		codecV2:     codecV2,
		pinned:      pinned,
	}
}

// Parse dispatches line to the V1 or V2 algorithm by its version prefix,
// resolves the target instance and method, and decodes arguments into
// their declared types.
func (p *Parser) Parse(line string) (*InvocationContext, wire.Codec, error) {
	if line == "" {
		return nil, nil, wire.ProtocolError{Reason: "empty request line"}
	}

	var version wire.ProtocolVersion
	var codec wire.Codec
	switch {
	case strings.HasPrefix(line, "V2|"):
		version, codec = wire.V2, p.codecV2
	case strings.HasPrefix(line, "0|"):
		version, codec = wire.V1, p.codecV1
	default:
		return nil, nil, wire.ProtocolError{Reason: "version prefix is neither 'V2|' nor '0|'"}
	}

	if p.pinned == PinV1 && version != wire.V1 {
		return nil, nil, wire.ProtocolError{Reason: "server is pinned to V1"}
	}
	if p.pinned == PinV2 && version != wire.V2 {
		return nil, nil, wire.ProtocolError{Reason: "server is pinned to V2"}
	}

	meta, err := codec.DecodeRequestMeta(line)
	if err != nil {
		return nil, codec, err
	}

	instance, err := p.resolver.Find(meta.Class)
	if err != nil {
		return nil, codec, err
	}

	var method reflect.Method
	if version == wire.V2 {
		method, err = descriptor.FindMethod(p.descriptors, p.overloads, instance.Type(), meta.Method, meta.Descriptor)
	} else {
		method, err = findMethodByNameOnly(p.overloads, instance.Type(), meta.Method)
	}
	if err != nil {
		return nil, codec, err
	}

	paramTypes := descriptor.MethodParamTypes(method)
	if len(paramTypes) != len(meta.ArgTokens) {
		return nil, codec, wire.ProtocolError{
			Reason: fmt.Sprintf("%s.%s expects %d argument(s), got %d", meta.Class, meta.Method, len(paramTypes), len(meta.ArgTokens)),
		}
	}

	params := make([]reflect.Value, len(paramTypes))
	for i, tok := range meta.ArgTokens {
		var v reflect.Value
		var derr error
		if version == wire.V2 {
			v, derr = wire.DecodeParamToken(p.mappers, tok, paramTypes[i])
		} else {
			v, derr = wire.DecodeParamTokenV1(p.mappers, tok, paramTypes[i])
		}
		if derr != nil {
			return nil, codec, wire.ProtocolError{Reason: fmt.Sprintf("argument %d: %v", i, derr), Cause: derr}
		}
		params[i] = v
	}

	return &InvocationContext{
		Class:          meta.Class,
		MethodName:     meta.Method,
		Method:         method,
		TargetInstance: instance,
		Params:         params,
		Version:        version,
	}, codec, nil
}

// findMethodByNameOnly implements V1's name-only dispatch: the sole
// method answering to name, refusing if it is an overloaded wire name
// since V1 carries no descriptor to disambiguate with.
func findMethodByNameOnly(overloads *descriptor.OverloadGroups, class reflect.Type, name string) (reflect.Method, error) {
	switch overloads.Count(class, name) {
	case 0:
		return reflect.Method{}, descriptor.NoSuchMethodError{Class: class.String(), Method: name}
	case 1:
		m, ok := class.MethodByName(name)
		if !ok {
			return reflect.Method{}, descriptor.NoSuchMethodError{Class: class.String(), Method: name}
		}
		return m, nil
	default:
		return reflect.Method{}, wire.ProtocolError{Reason: fmt.Sprintf("%s is overloaded; V1 cannot disambiguate", name)}
	}
}
