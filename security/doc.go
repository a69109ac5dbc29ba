// Package security loads and checks the HTTPS certificate.
//
// ValidateCertificate accepts a PKCS#12 archive (.pfx, .p12) or a PEM bundle
// holding the certificate chain and the private key:
//
//	cert, err := security.ValidateCertificate(cfg.SSLCertPath, cfg.SSLCertPassword)
//	if err != nil {
//	    return err // CERTIFICATE_NOT_FOUND or CRYPTOGRAPHIC
//	}
//	srv.TLSConfig = security.ServerTLSConfig(cert, 0)
//
// Certificate material is never logged; Certificate.String prints only the
// subject, expiry and fingerprint.
package security
