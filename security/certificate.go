package security

import (
	"bytes"
	"crypto"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	pkcs12 "software.sslmate.com/src/go-pkcs12"

	apperrors "github.com/kbukum/apphost/errors"
)

// Certificate is a decoded certificate chain plus private key.
type Certificate struct {
	pair tls.Certificate
	leaf *x509.Certificate
	path string
}

// TLS returns the pair for a tls.Config.
func (c *Certificate) TLS() tls.Certificate { return c.pair }

// Leaf returns the parsed end-entity certificate.
func (c *Certificate) Leaf() *x509.Certificate { return c.leaf }

// Path returns the file the certificate was read from.
func (c *Certificate) Path() string { return c.path }

// Subject returns the leaf subject common name.
func (c *Certificate) Subject() string { return c.leaf.Subject.CommonName }

// NotAfter returns the leaf expiry.
func (c *Certificate) NotAfter() time.Time { return c.leaf.NotAfter }

// Fingerprint returns the hex SHA-256 of the leaf DER bytes.
func (c *Certificate) Fingerprint() string {
	sum := sha256.Sum256(c.leaf.Raw)
	return hex.EncodeToString(sum[:])
}

// Expired reports whether the leaf is past its NotAfter at t.
func (c *Certificate) Expired(t time.Time) bool {
	return t.After(c.leaf.NotAfter)
}

func (c *Certificate) String() string {
	return fmt.Sprintf("certificate subject=%q not_after=%s sha256=%s",
		c.Subject(), c.NotAfter().UTC().Format(time.RFC3339), c.Fingerprint())
}

// ValidateCertificate loads the certificate at path and proves it can be
// decoded with password. A missing, unreadable or directory path is
// CERTIFICATE_NOT_FOUND; content that does not decode is CRYPTOGRAPHIC.
func ValidateCertificate(path, password string) (*Certificate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.CertificateNotFound(path, err)
	}
	if info.IsDir() {
		return nil, apperrors.CertificateNotFound(path, fmt.Errorf("%s is a directory", path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.CertificateNotFound(path, err)
	}

	var pair tls.Certificate
	if isPEM(data) {
		pair, err = tls.X509KeyPair(data, data)
	} else {
		pair, err = decodePKCS12(data, password)
	}
	if err != nil {
		return nil, apperrors.Cryptographic(path, err)
	}

	leaf := pair.Leaf
	if leaf == nil {
		if leaf, err = x509.ParseCertificate(pair.Certificate[0]); err != nil {
			return nil, apperrors.Cryptographic(path, err)
		}
		pair.Leaf = leaf
	}

	return &Certificate{pair: pair, leaf: leaf, path: path}, nil
}

func isPEM(data []byte) bool {
	return bytes.Contains(data, []byte("-----BEGIN "))
}

// decodePKCS12 reads the key, leaf and CA chain of a PFX archive. Both
// legacy (SHA-1, 3DES/RC2) and PBES2/AES archives decode.
func decodePKCS12(data []byte, password string) (tls.Certificate, error) {
	key, leaf, chain, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return tls.Certificate{}, err
	}
	if leaf == nil {
		return tls.Certificate{}, errors.New("pkcs12: no certificate in archive")
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return tls.Certificate{}, fmt.Errorf("pkcs12: unsupported private key %T", key)
	}
	if pub, ok := signer.Public().(interface{ Equal(crypto.PublicKey) bool }); !ok || !pub.Equal(leaf.PublicKey) {
		return tls.Certificate{}, errors.New("pkcs12: private key does not match certificate")
	}

	pair := tls.Certificate{PrivateKey: key, Leaf: leaf, Certificate: [][]byte{leaf.Raw}}
	for _, ca := range chain {
		pair.Certificate = append(pair.Certificate, ca.Raw)
	}
	return pair, nil
}
