// Package tlstest writes throwaway certificates for tests.
//
// Files live in t.TempDir() and disappear with the test:
//
//	b := tlstest.GenerateBundle(t)
//	cert, err := security.ValidateCertificate(b.Path, "")
package tlstest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

// Bundle is a CA-signed localhost certificate written as PEM files.
type Bundle struct {
	// Path is a single PEM file holding the leaf, the CA and the key.
	Path string
	// CertFile and KeyFile hold the leaf and the key separately.
	CertFile string
	KeyFile  string
	// PFXPath is a PBES2/AES-256 archive with a SHA-256 MAC, the format
	// current OpenSSL exports. LegacyPFXPath uses 3DES/RC2 and SHA-1.
	// Both are protected by PFXPassword.
	PFXPath       string
	LegacyPFXPath string

	CACert *x509.Certificate
	Leaf   *x509.Certificate
	// Pool trusts CACert, for clients dialing the test listener.
	Pool *x509.CertPool
}

// PFXPassword protects the PKCS#12 files of a Bundle.
const PFXPassword = "secret"

// GenerateBundle creates a CA and a localhost certificate valid for one day.
func GenerateBundle(t testing.TB) *Bundle {
	t.Helper()
	return generate(t, time.Now().Add(24*time.Hour))
}

// GenerateExpiredBundle is GenerateBundle with a leaf that expired an hour ago.
func GenerateExpiredBundle(t testing.TB) *Bundle {
	t.Helper()
	return generate(t, time.Now().Add(-time.Hour))
}

func generate(t testing.TB, notAfter time.Time) *Bundle {
	dir := t.TempDir()

	caKey := newKey(t)
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"AppHost Test CA"}},
		NotBefore:             time.Now().Add(-2 * time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("tlstest: create CA cert: %v", err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		t.Fatalf("tlstest: parse CA cert: %v", err)
	}

	leafKey := newKey(t)
	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{Organization: []string{"AppHost Test"}, CommonName: "localhost"},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		NotBefore:    time.Now().Add(-2 * time.Hour),
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTemplate, caCert, &leafKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("tlstest: create leaf cert: %v", err)
	}
	leaf, err := x509.ParseCertificate(leafDER)
	if err != nil {
		t.Fatalf("tlstest: parse leaf cert: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(leafKey)
	if err != nil {
		t.Fatalf("tlstest: marshal key: %v", err)
	}

	leafBlock := &pem.Block{Type: "CERTIFICATE", Bytes: leafDER}
	caBlock := &pem.Block{Type: "CERTIFICATE", Bytes: caDER}
	keyBlock := &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}

	b := &Bundle{
		Path:     filepath.Join(dir, "bundle.pem"),
		CertFile: filepath.Join(dir, "cert.pem"),
		KeyFile:  filepath.Join(dir, "key.pem"),
		CACert:   caCert,
		Leaf:     leaf,
		Pool:     x509.NewCertPool(),
	}
	b.Pool.AddCert(caCert)

	writePEM(t, b.Path, leafBlock, caBlock, keyBlock)
	writePEM(t, b.CertFile, leafBlock)
	writePEM(t, b.KeyFile, keyBlock)

	b.PFXPath = filepath.Join(dir, "bundle.pfx")
	b.LegacyPFXPath = filepath.Join(dir, "legacy.pfx")
	writePFX(t, b.PFXPath, pkcs12.Modern, leafKey, leaf, caCert)
	writePFX(t, b.LegacyPFXPath, pkcs12.LegacyRC2, leafKey, leaf, caCert)
	return b
}

// WriteInvalidPEM writes a file that looks like PEM but does not decode.
func WriteInvalidPEM(t testing.TB, filename string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), filename)
	content := []byte("-----BEGIN CERTIFICATE-----\nnot-valid-base64-data\n-----END CERTIFICATE-----\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("tlstest: write invalid PEM: %v", err)
	}
	return path
}

// WriteGarbage writes bytes that are neither PEM nor PKCS#12.
func WriteGarbage(t testing.TB, filename string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), filename)
	if err := os.WriteFile(path, []byte("this is not a certificate"), 0o600); err != nil {
		t.Fatalf("tlstest: write garbage: %v", err)
	}
	return path
}

func newKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("tlstest: generate key: %v", err)
	}
	return key
}

func writePFX(t testing.TB, path string, enc *pkcs12.Encoder, key *ecdsa.PrivateKey, leaf, ca *x509.Certificate) {
	t.Helper()
	data, err := enc.Encode(key, leaf, []*x509.Certificate{ca}, PFXPassword)
	if err != nil {
		t.Fatalf("tlstest: encode PFX %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("tlstest: write PFX %s: %v", path, err)
	}
}

func writePEM(t testing.TB, path string, blocks ...*pem.Block) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("tlstest: create %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()
	for _, b := range blocks {
		if err := pem.Encode(f, b); err != nil {
			t.Fatalf("tlstest: encode PEM %s: %v", path, err)
		}
	}
}
