package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"

	"github.com/kbukum/apphost/component"
	"github.com/kbukum/apphost/logger"
	"github.com/kbukum/apphost/security"
	"github.com/kbukum/apphost/security/tlstest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := New(Config{ServiceName: "apphost-test", Version: "test"}, logger.Nop())
	s.RegisterSystemRoutes(nil)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func TestBinding(t *testing.T) {
	b := HTTPBinding("*", 8787)
	assert.Equal(t, "http://*:8787", b.URL())
	assert.Equal(t, ":8787", b.ListenAddr())
	assert.False(t, b.Secure())

	b = HTTPSBinding("127.0.0.1", 6868)
	assert.Equal(t, "https://127.0.0.1:6868", b.URL())
	assert.Equal(t, "127.0.0.1:6868", b.ListenAddr())
	assert.True(t, b.Secure())

	assert.Equal(t, "[::1]:80", HTTPBinding("::1", 80).ListenAddr())
}

func TestBinding_WildcardListenAddr(t *testing.T) {
	for _, addr := range []string{"", "*", "+", "0.0.0.0", "::", "[::]", " * "} {
		t.Run(addr, func(t *testing.T) {
			assert.True(t, IsWildcard(addr))
			assert.Equal(t, ":9000", HTTPBinding(addr, 9000).ListenAddr())
		})
	}
	assert.False(t, IsWildcard("localhost"))
	assert.Equal(t, "[::1]:80", HTTPBinding("[::1]", 80).ListenAddr())
}

func TestServer_PlusAddressBinds(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.AddBinding(HTTPBinding("+", 0), nil))
	require.NoError(t, s.Start(context.Background()))

	port := s.Addrs()[0].(*net.TCPAddr).Port
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/ping", port))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAddBinding_Validation(t *testing.T) {
	s := newTestServer(t)
	assert.Error(t, s.AddBinding(HTTPSBinding("127.0.0.1", 0), nil))
	assert.Error(t, s.AddBinding(Binding{Scheme: "ftp", Address: "*", Port: 21}, nil))
	assert.Empty(t, s.Bindings())
	assert.Error(t, s.Start(context.Background()), "no bindings")
}

func TestServer_HTTPAndH2C(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.AddBinding(HTTPBinding("127.0.0.1", 0), nil))
	require.NoError(t, s.Start(context.Background()))
	require.True(t, s.Running())

	base := "http://" + s.Addrs()[0].String()

	resp, err := http.Get(base + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	h2c := &http.Client{Transport: &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}}
	resp, err = h2c.Get(base + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, resp.ProtoMajor)

	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.Running())
	assert.Empty(t, s.Addrs())
}

func TestServer_HTTPS(t *testing.T) {
	bundle := tlstest.GenerateBundle(t)
	cert, err := security.ValidateCertificate(bundle.Path, "")
	require.NoError(t, err)

	s := newTestServer(t)
	require.NoError(t, s.AddBinding(HTTPBinding("127.0.0.1", 0), nil))
	require.NoError(t, s.AddBinding(HTTPSBinding("127.0.0.1", 0), security.ServerTLSConfig(cert, 0)))
	require.NoError(t, s.Start(context.Background()))

	addrs := s.Addrs()
	require.Len(t, addrs, 2)

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig:   &tls.Config{RootCAs: bundle.Pool},
		ForceAttemptHTTP2: true,
	}}
	resp, err := client.Get(fmt.Sprintf("https://%s/ping", addrs[1]))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, resp.ProtoMajor)
}

func TestServer_BindFailureStartsNothing(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	s := newTestServer(t)
	require.NoError(t, s.AddBinding(HTTPBinding("127.0.0.1", 0), nil))
	require.NoError(t, s.AddBinding(HTTPBinding("127.0.0.1", busy.Addr().(*net.TCPAddr).Port), nil))

	err = s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to bind")
	assert.False(t, s.Running())
	assert.Empty(t, s.Addrs())
}

func TestServer_AddBindingAfterStart(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.AddBinding(HTTPBinding("127.0.0.1", 0), nil))
	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.AddBinding(HTTPBinding("127.0.0.1", 0), nil))
}

func TestRoutes_ApplicationFirst(t *testing.T) {
	s := newTestServer(t)
	s.RegisterRoutes(RouteRegistrarFunc(func(r gin.IRouter) {
		r.GET("/api/v1/series", func(c *gin.Context) { c.Status(http.StatusOK) })
		r.DELETE("/api/v1/series", func(c *gin.Context) { c.Status(http.StatusOK) })
	}), nil)

	routes := s.Routes()
	require.Len(t, routes, 5)
	assert.Equal(t, "/api/v1/series", routes[0].Path)
	assert.Equal(t, "GET", routes[0].Method)
	assert.Equal(t, "DELETE", routes[1].Method)
	for _, r := range routes[2:] {
		assert.True(t, systemPaths[r.Path], r.Path)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"github.com/org/app/api.(*Series).List-fm", "Series.List"},
		{"github.com/kbukum/apphost/server/endpoint.Health.func1", "health"},
		{"main.handler", "handler"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatHandlerName(tt.in), tt.in)
	}
}

func TestComponent(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.AddBinding(HTTPBinding("127.0.0.1", 0), nil))
	c := NewComponent(s)
	ctx := context.Background()

	assert.Equal(t, component.StatusUnhealthy, c.Health(ctx).Status)
	require.NoError(t, c.Start(ctx))
	assert.Equal(t, component.StatusHealthy, c.Health(ctx).Status)
	assert.Equal(t, "http://127.0.0.1:0", c.Describe().Details)
	require.NoError(t, c.Stop(ctx))
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{IdleTimeout: -time.Second, ShutdownTimeout: time.Second}
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultReadHeaderTimeout, cfg.ReadHeaderTimeout)
	assert.Equal(t, DefaultIdleTimeout, cfg.IdleTimeout)
	assert.Equal(t, time.Second, cfg.ShutdownTimeout)
	assert.EqualValues(t, DefaultMaxConcurrentStreams, cfg.MaxConcurrentStreams)
}
