// Package security implements SecurityConfig and the checksum, signature,
// validator and whitelist machinery both the codec and the request parser
// consult under the name ProtocolSecurity.
package security

import (
	"fmt"
	"sync/atomic"
)

// SecurityConfig is process-owned and may be replaced atomically between
// requests: readers observe either the old or new value, never a torn one.
// It is deliberately immutable once constructed — Server/Client hold a
// pointer and swap it rather than mutating fields in place.
type SecurityConfig struct {
	Checksum       ChecksumAlgorithm
	ChecksumSecret []byte

	SignatureAlgorithm string // "", "RSA-SHA256", or an SPIRegistry-registered name
	Signer             Signer

	Whitelist *Whitelist
}

// DefaultSecurityConfig disables every check: no checksum, no signature, no
// whitelist.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		Checksum:  ChecksumNone,
		Whitelist: Disabled(),
	}
}

// SecurityError is the error kind for checksum/signature/whitelist
// failures. It is bucketed alongside protocol errors when a server turns an
// invocation error into a response status code.
type SecurityError struct {
	Reason string
	Cause  error
}

func (e SecurityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("security: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("security: %s", e.Reason)
}

func (e SecurityError) Unwrap() error { return e.Cause }

// IsProtocolError marks SecurityError as one of the error kinds a Codec
// reports under the protocol-error status code.
func (e SecurityError) IsProtocolError() bool { return true }

// ProtocolSecurity binds a SecurityConfig to the operations the codec and
// parser actually need: compute/verify a checksum over a payload, and
// sign/verify over a payload, without either side needing to know which
// algorithm is configured. The config is held behind an atomic.Pointer so
// SetConfig can replace it between requests without readers ever observing
// a torn value.
type ProtocolSecurity struct {
	cfg atomic.Pointer[SecurityConfig]
	spi *SPIRegistry
}

// NewProtocolSecurity binds cfg. spi may be nil, in which case only the
// built-in RSA-SHA256 algorithm (via cfg.Signer) is available.
func NewProtocolSecurity(cfg *SecurityConfig, spi *SPIRegistry) *ProtocolSecurity {
	p := &ProtocolSecurity{spi: spi}
	p.cfg.Store(cfg)
	return p
}

// Config returns the currently bound SecurityConfig.
func (p *ProtocolSecurity) Config() *SecurityConfig { return p.cfg.Load() }

// SetConfig atomically replaces the bound SecurityConfig.
func (p *ProtocolSecurity) SetConfig(cfg *SecurityConfig) { p.cfg.Store(cfg) }

// ChecksumEnabled reports whether a "|CHK:" segment should be produced.
func (p *ProtocolSecurity) ChecksumEnabled() bool { return p.Config().Checksum != ChecksumNone }

// SignatureEnabled reports whether a "|SIG:" segment should be produced.
func (p *ProtocolSecurity) SignatureEnabled() bool {
	cfg := p.Config()
	return cfg.SignatureAlgorithm != "" && cfg.Signer != nil
}

// Checksum computes the configured checksum over payload.
func (p *ProtocolSecurity) Checksum(payload string) (string, error) {
	cfg := p.Config()
	return ComputeChecksum(cfg.Checksum, cfg.ChecksumSecret, payload)
}

// VerifyChecksum verifies got against payload, wrapping any failure as a
// SecurityError.
func (p *ProtocolSecurity) VerifyChecksum(payload, got string) error {
	cfg := p.Config()
	if err := VerifyChecksum(cfg.Checksum, cfg.ChecksumSecret, payload, got); err != nil {
		return SecurityError{Reason: "checksum mismatch", Cause: err}
	}
	return nil
}

// Sign signs payload with the configured signer.
func (p *ProtocolSecurity) Sign(payload []byte) (algo string, signature []byte, err error) {
	if !p.SignatureEnabled() {
		return "", nil, fmt.Errorf("signing not enabled")
	}
	cfg := p.Config()
	sig, err := cfg.Signer.Sign(payload)
	if err != nil {
		return "", nil, err
	}
	return cfg.Signer.Algorithm(), sig, nil
}

// VerifySignature verifies signature over payload using algo. algo must
// match the configured signer's algorithm, or be resolvable through the
// SPI registry; a mismatch or verification failure both yield a
// SecurityError, and a missing signature where one is required is the
// caller's responsibility to detect before calling this.
func (p *ProtocolSecurity) VerifySignature(algo string, payload, signature []byte) error {
	signer := p.resolveSigner(algo)
	if signer == nil {
		return SecurityError{Reason: fmt.Sprintf("unknown signature algorithm %q", algo)}
	}
	if err := signer.Verify(payload, signature); err != nil {
		return SecurityError{Reason: "signature invalid", Cause: err}
	}
	return nil
}

func (p *ProtocolSecurity) resolveSigner(algo string) Signer {
	cfg := p.Config()
	if cfg.Signer != nil && cfg.Signer.Algorithm() == algo {
		return cfg.Signer
	}
	if p.spi != nil {
		if s, ok := p.spi.Lookup(algo); ok {
			return s
		}
	}
	return nil
}

// CheckClassAllowed applies the class-name validator and whitelist.
func (p *ProtocolSecurity) CheckClassAllowed(className string) error {
	if !IsValidClassName(className) {
		return SecurityError{Reason: fmt.Sprintf("invalid class name %q", className)}
	}
	if !p.Config().Whitelist.Allows(className) {
		return SecurityError{Reason: fmt.Sprintf("class %q is not whitelisted", className)}
	}
	return nil
}

// CheckMethodName applies the method-name validator.
func (p *ProtocolSecurity) CheckMethodName(methodName string) error {
	if !IsValidMethodName(methodName) {
		return SecurityError{Reason: fmt.Sprintf("invalid method name %q", methodName)}
	}
	return nil
}
