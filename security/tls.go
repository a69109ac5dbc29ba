package security

import "crypto/tls"

// ServerTLSConfig builds the HTTPS listener config for cert. minVersion
// defaults to TLS 1.2.
func ServerTLSConfig(cert *Certificate, minVersion uint16) *tls.Config {
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}
	return &tls.Config{
		MinVersion:   minVersion,
		Certificates: []tls.Certificate{cert.TLS()},
		NextProtos:   []string{"h2", "http/1.1"},
	}
}
