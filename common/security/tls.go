package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSConfig is the plain-struct TLS configuration surface: a keystore (this
// side's certificate + private key, PEM), an optional truststore (peer CA
// certificates, PEM) and a client-certificate requirement flag. There is
// no keystore password scheme in Go's PEM-based certificate loading, so
// KeystorePass is accepted for surface parity but unused — Go keeps key
// material unencrypted on disk or relies on the OS keychain, neither of
// which this struct models.
type TLSConfig struct {
	KeystorePath      string
	KeystorePass      string
	TruststorePath    string
	RequireClientCert bool
}

// Build materializes a standard TLS 1.2+ context from cfg. A nil cfg (or
// one with neither KeystorePath nor TruststorePath) means "don't use TLS"
// and both Server and Client treat a nil *tls.Config as a plain TCP
// connection. A truststore without a keystore yields a context with no
// certificate of its own, as a client verifying the server uses.
func (cfg *TLSConfig) Build() (*tls.Config, error) {
	if cfg == nil || (cfg.KeystorePath == "" && cfg.TruststorePath == "") {
		return nil, nil
	}

	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if cfg.KeystorePath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.KeystorePath, cfg.KeystorePath)
		if err != nil {
			return nil, fmt.Errorf("loading keystore %q: %w", cfg.KeystorePath, err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	if cfg.TruststorePath != "" {
		pem, err := os.ReadFile(cfg.TruststorePath)
		if err != nil {
			return nil, fmt.Errorf("loading truststore %q: %w", cfg.TruststorePath, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("truststore %q contains no usable certificates", cfg.TruststorePath)
		}
		tlsCfg.ClientCAs = pool
		tlsCfg.RootCAs = pool
	}

	if cfg.RequireClientCert {
		tlsCfg.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return tlsCfg, nil
}
