package server

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Schemes.
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// AnyAddress binds every interface.
const AnyAddress = "*"

// Binding is one listen endpoint.
type Binding struct {
	Scheme  string
	Address string
	Port    int
}

// HTTPBinding returns http://address:port.
func HTTPBinding(address string, port int) Binding {
	return Binding{Scheme: SchemeHTTP, Address: address, Port: port}
}

// HTTPSBinding returns https://address:port.
func HTTPSBinding(address string, port int) Binding {
	return Binding{Scheme: SchemeHTTPS, Address: address, Port: port}
}

// URL renders scheme://address:port with the address as configured.
func (b Binding) URL() string {
	return fmt.Sprintf("%s://%s:%d", b.Scheme, b.Address, b.Port)
}

// IsWildcard reports whether address means every interface.
func IsWildcard(address string) bool {
	switch strings.TrimSpace(address) {
	case "", AnyAddress, "+", "0.0.0.0", "::", "[::]":
		return true
	}
	return false
}

// ListenAddr is the net.Listen address. Wildcards listen on every interface
// and bracketed IPv6 literals are unwrapped before joining.
func (b Binding) ListenAddr() string {
	host := strings.TrimSpace(b.Address)
	if IsWildcard(host) {
		host = ""
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	return net.JoinHostPort(host, strconv.Itoa(b.Port))
}

// Secure reports whether the binding needs TLS.
func (b Binding) Secure() bool { return b.Scheme == SchemeHTTPS }

func (b Binding) String() string { return b.URL() }
