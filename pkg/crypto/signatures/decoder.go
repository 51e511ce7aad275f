/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signatures

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"fmt"

	"github.com/webpki/saturn-go/pkg/crypto/keys"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// VerificationError signals a failed cryptographic check on a signature.
// It is security-significant and must never be downgraded to a schema error.
type VerificationError struct {
	msg string
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	return e.msg
}

// KeyInfoPolicy states what key material a message type accepts in its
// signature: some require certificate-path proof (provider and acquirer
// attestations), others accept bare public keys (wallet and payee
// signatures).
type KeyInfoPolicy int

// Key material policies.
const (
	AnyKeyInfo KeyInfoPolicy = iota
	RequirePublicKey
	RequireCertificatePath
)

// Decoded is a parsed and cryptographically verified embedded signature.
type Decoded struct {
	Algorithm       Algorithm
	PublicKey       crypto.PublicKey
	CertificatePath []*x509.Certificate
}

// Decode parses the signature property name on the message root rd and
// verifies it against the normalized document bytes. Verification is not
// optional: a Decoded result implies the signature checked out against the
// disclosed key material.
func Decode(root *json.Reader, name string, policy KeyInfoPolicy) (*Decoded, error) {
	sigRd, err := root.GetObject(name)
	if err != nil {
		return nil, err
	}

	algID, err := sigRd.GetString(AlgorithmProperty)
	if err != nil {
		return nil, err
	}

	alg, err := AlgorithmFromID(algID)
	if err != nil {
		return nil, err
	}

	decoded := &Decoded{Algorithm: alg}

	switch {
	case sigRd.HasProperty(CertificatePathProperty):
		if policy == RequirePublicKey {
			return nil, &VerificationError{msg: fmt.Sprintf("%q must be signed with a raw public key", name)}
		}

		if err := readCertificatePath(sigRd, decoded); err != nil {
			return nil, err
		}
	default:
		if policy == RequireCertificatePath {
			return nil, &VerificationError{msg: fmt.Sprintf("%q must carry a certificate path", name)}
		}

		jwkRd, err := sigRd.GetObject(PublicKeyProperty)
		if err != nil {
			return nil, err
		}

		decoded.PublicKey, err = keys.ParsePublicKey(jwkRd)
		if err != nil {
			return nil, err
		}
	}

	value, err := sigRd.GetBinary(ValueProperty)
	if err != nil {
		return nil, err
	}

	// The signature covers the document with the value property absent.
	sigRd.Object().Remove(ValueProperty)

	data, err := root.Normalized()
	if err != nil {
		return nil, err
	}

	sigRd.Object().SetBinary(ValueProperty, value)

	if err := sigRd.ScanAway(ValueProperty); err != nil {
		return nil, err
	}

	if err := alg.verify(data, value, decoded.PublicKey); err != nil {
		return nil, err
	}

	return decoded, nil
}

func readCertificatePath(sigRd *json.Reader, decoded *Decoded) error {
	arr, err := sigRd.GetArray(CertificatePathProperty)
	if err != nil {
		return err
	}

	for arr.HasMore() {
		der, err := arr.GetBinary()
		if err != nil {
			return err
		}

		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return fmt.Errorf("malformed certificate in %q: %w", CertificatePathProperty, err)
		}

		decoded.CertificatePath = append(decoded.CertificatePath, cert)
	}

	if len(decoded.CertificatePath) == 0 {
		return &VerificationError{msg: "empty certificate path"}
	}

	decoded.PublicKey = decoded.CertificatePath[0].PublicKey

	return nil
}

// VerifyTrust checks the certificate path against a trust anchor.
func (d *Decoded) VerifyTrust(anchor *x509.Certificate) error {
	if len(d.CertificatePath) == 0 {
		return &VerificationError{msg: "no certificate path to verify"}
	}

	roots := x509.NewCertPool()
	roots.AddCert(anchor)

	intermediates := x509.NewCertPool()
	for _, cert := range d.CertificatePath[1:] {
		intermediates.AddCert(cert)
	}

	_, err := d.CertificatePath[0].Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	if err != nil {
		return &VerificationError{msg: fmt.Sprintf("certificate path not trusted: %v", err)}
	}

	return nil
}

// CompareCertificatePaths fails unless the two paths are byte-identical.
// Response messages use it to prove key continuity with the request they
// embed.
func CompareCertificatePaths(a, b []*x509.Certificate) error {
	if len(a) != len(b) {
		return &VerificationError{msg: "certificate path mismatch"}
	}

	for i := range a {
		if !bytes.Equal(a[i].Raw, b[i].Raw) {
			return &VerificationError{msg: "certificate path mismatch"}
		}
	}

	return nil
}
