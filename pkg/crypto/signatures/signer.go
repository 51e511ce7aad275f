/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package signatures implements the embedded JSON signature scheme used by
// Saturn messages: a signature sub-object carrying the algorithm, the
// signer's key material (raw JOSE public key or X.509 certificate path) and
// the signature value, where the value covers the normalized serialization
// of the entire document with everything but the value itself in place.
package signatures

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"fmt"

	"github.com/webpki/saturn-go/pkg/crypto/keys"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// Wire property names of the signature sub-object.
const (
	AlgorithmProperty       = "algorithm"
	PublicKeyProperty       = "publicKey"
	CertificatePathProperty = "certificatePath"
	ValueProperty           = "value"
)

// Signer produces an embedded signature. Implementations decide what key
// material (raw public key or certificate path) the signature discloses.
type Signer interface {
	algorithm() Algorithm
	writeKeyInfo(sigObj *json.Object) error
	sign(data []byte) ([]byte, error)
}

// KeySigner signs with a private key and discloses the matching raw public
// key. Wallet and payee signatures use this flavor.
type KeySigner struct {
	alg  Algorithm
	priv crypto.PrivateKey
	pub  crypto.PublicKey
}

// NewKeySigner creates a KeySigner for the given algorithm and private key.
func NewKeySigner(alg Algorithm, priv crypto.PrivateKey) (*KeySigner, error) {
	pub, err := publicOf(priv)
	if err != nil {
		return nil, err
	}

	return &KeySigner{alg: alg, priv: priv, pub: pub}, nil
}

// PublicKey returns the disclosed public key.
func (s *KeySigner) PublicKey() crypto.PublicKey {
	return s.pub
}

func (s *KeySigner) algorithm() Algorithm {
	return s.alg
}

func (s *KeySigner) writeKeyInfo(sigObj *json.Object) error {
	jwk, err := keys.WritePublicKey(s.pub)
	if err != nil {
		return err
	}

	sigObj.SetObject(PublicKeyProperty, jwk)

	return sigObj.Err()
}

func (s *KeySigner) sign(data []byte) ([]byte, error) {
	return s.alg.sign(data, s.priv)
}

// X509Signer signs with a private key and discloses an X.509 certificate
// path. Provider and acquirer attestations use this flavor.
type X509Signer struct {
	alg   Algorithm
	priv  crypto.PrivateKey
	certs []*x509.Certificate
}

// NewX509Signer creates an X509Signer. The certificate path must start with
// the end-entity certificate matching the private key.
func NewX509Signer(alg Algorithm, priv crypto.PrivateKey, certPath []*x509.Certificate) (*X509Signer, error) {
	if len(certPath) == 0 {
		return nil, fmt.Errorf("empty certificate path")
	}

	pub, err := publicOf(priv)
	if err != nil {
		return nil, err
	}

	if !keys.Equal(pub, certPath[0].PublicKey) {
		return nil, fmt.Errorf("end-entity certificate does not match signing key")
	}

	return &X509Signer{alg: alg, priv: priv, certs: certPath}, nil
}

// CertificatePath returns the disclosed certificate path.
func (s *X509Signer) CertificatePath() []*x509.Certificate {
	return s.certs
}

func (s *X509Signer) algorithm() Algorithm {
	return s.alg
}

func (s *X509Signer) writeKeyInfo(sigObj *json.Object) error {
	ders := make([][]byte, 0, len(s.certs))
	for _, cert := range s.certs {
		ders = append(ders, cert.Raw)
	}

	sigObj.SetBinaryArray(CertificatePathProperty, ders)

	return sigObj.Err()
}

func (s *X509Signer) sign(data []byte) ([]byte, error) {
	return s.alg.sign(data, s.priv)
}

// Sign appends a signature sub-object under name covering everything written
// to obj so far. It must be the last property the encoder adds.
func Sign(obj *json.Object, name string, signer Signer) error {
	sigObj := json.NewObject().SetString(AlgorithmProperty, signer.algorithm().ID())

	if err := signer.writeKeyInfo(sigObj); err != nil {
		return fmt.Errorf("write signature key info: %w", err)
	}

	obj.SetObject(name, sigObj)

	data, err := obj.Normalized()
	if err != nil {
		return err
	}

	value, err := signer.sign(data)
	if err != nil {
		return fmt.Errorf("sign %q: %w", name, err)
	}

	sigObj.SetBinary(ValueProperty, value)

	return sigObj.Err()
}

func publicOf(priv crypto.PrivateKey) (crypto.PublicKey, error) {
	switch key := priv.(type) {
	case *ecdsa.PrivateKey:
		return &key.PublicKey, nil
	case *rsa.PrivateKey:
		return &key.PublicKey, nil
	default:
		return nil, fmt.Errorf("unsupported private key type %T", priv)
	}
}
