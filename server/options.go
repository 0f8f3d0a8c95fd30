package server

import (
	"crypto/tls"

	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/mapper"
	"krypt.co/rpcgate/common/security"
	"krypt.co/rpcgate/registry"
)

// Options configures a Server at construction time. The zero value is
// usable: AUTO protocol detection, no TLS, default security (everything
// disabled), and fresh descriptor/mapper/resource registries.
type Options struct {
	BindAddress string // default ":0" picks any free port
	TLS         *security.TLSConfig
	Security    *security.SecurityConfig
	Pinned      PinnedVersion

	Descriptors *descriptor.Registry
	Overloads   *descriptor.OverloadGroups
	Mappers     *mapper.Registry
	Resources   *registry.ResourceRegistry
	SPI         *security.SPIRegistry
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
	if o.Resources == nil {
		o.Resources = registry.NewResourceRegistry(o.Descriptors, o.Mappers)
	}
	if o.Security == nil {
		o.Security = security.DefaultSecurityConfig()
	}
	if o.BindAddress == "" {
		o.BindAddress = ":0"
	}
	return o
}

func (o Options) tlsConfig() (*tls.Config, error) {
	return o.TLS.Build()
}
