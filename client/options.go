package client

import (
	"crypto/tls"

	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/mapper"
	"krypt.co/rpcgate/common/security"
	"krypt.co/rpcgate/common/wire"
)

// Options configures a proxy at construction time, matching the factory
// surface createProxy(interfaceType, host, port, options).
type Options struct {
	TLS             *security.TLSConfig
	Security        *security.SecurityConfig
	Descriptors     *descriptor.Registry
	Overloads       *descriptor.OverloadGroups // shared overload-name groups, keyed by the service interface type
	Mappers         *mapper.Registry
	SPI             *security.SPIRegistry
	ProtocolVersion wire.ProtocolVersion // V1 or V2; AUTO-detection has no meaning on the client, which always picks

	// TimeoutSeconds is the default per-call read timeout; 0 means
	// infinite. MethodTimeouts overrides it per method name, the
	// Go stand-in for a per-method Timeout(seconds=…) annotation.
	TimeoutSeconds int
	MethodTimeouts map[string]int
}

func (o Options) withDefaults() Options {
	if o.Descriptors == nil {
		o.Descriptors = descriptor.NewRegistry()
	}
	if o.Mappers == nil {
		o.Mappers = mapper.NewRegistry(o.Descriptors)
	}
	if o.Overloads == nil {
		o.Overloads = descriptor.NewOverloadGroups()
	}
	if o.Security == nil {
		o.Security = security.DefaultSecurityConfig()
	}
	return o
}

func (o Options) tlsConfig() (*tls.Config, error) {
	return o.TLS.Build()
}
