/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signatures

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"math/big"
)

// Algorithm is a supported signature algorithm, identified on the wire by
// its JOSE name. ECDSA signatures use the JOSE raw R||S form.
type Algorithm int

// Supported signature algorithms.
const (
	ES256 Algorithm = iota
	ES384
	ES512
	RS256
)

var algorithmIDs = map[Algorithm]string{
	ES256: "ES256",
	ES384: "ES384",
	ES512: "ES512",
	RS256: "RS256",
}

// ID returns the JOSE algorithm identifier.
func (a Algorithm) ID() string {
	return algorithmIDs[a]
}

// AlgorithmFromID maps a JOSE identifier to an Algorithm.
func AlgorithmFromID(id string) (Algorithm, error) {
	for alg, algID := range algorithmIDs {
		if algID == id {
			return alg, nil
		}
	}

	return 0, fmt.Errorf("unsupported signature algorithm: %q", id)
}

func (a Algorithm) hash() crypto.Hash {
	switch a {
	case ES384:
		return crypto.SHA384
	case ES512:
		return crypto.SHA512
	default:
		return crypto.SHA256
	}
}

func (a Algorithm) curve() elliptic.Curve {
	switch a {
	case ES256:
		return elliptic.P256()
	case ES384:
		return elliptic.P384()
	case ES512:
		return elliptic.P521()
	default:
		return nil
	}
}

func (a Algorithm) sign(data []byte, priv crypto.PrivateKey) ([]byte, error) {
	hash := a.hash()
	hasher := hash.New()
	hasher.Write(data)
	digest := hasher.Sum(nil)

	switch key := priv.(type) {
	case *ecdsa.PrivateKey:
		curve := a.curve()
		if curve == nil || key.Curve != curve {
			return nil, fmt.Errorf("key curve does not match algorithm %s", a.ID())
		}

		r, s, err := ecdsa.Sign(rand.Reader, key, digest)
		if err != nil {
			return nil, err
		}

		return encodeRawSignature(r, s, curve), nil
	case *rsa.PrivateKey:
		if a != RS256 {
			return nil, fmt.Errorf("RSA key requires RS256, not %s", a.ID())
		}

		return rsa.SignPKCS1v15(rand.Reader, key, hash, digest)
	default:
		return nil, fmt.Errorf("unsupported private key type %T", priv)
	}
}

func (a Algorithm) verify(data, signature []byte, pub crypto.PublicKey) error {
	hash := a.hash()
	hasher := hash.New()
	hasher.Write(data)
	digest := hasher.Sum(nil)

	switch key := pub.(type) {
	case *ecdsa.PublicKey:
		curve := a.curve()
		if curve == nil || key.Curve != curve {
			return &VerificationError{msg: fmt.Sprintf("key curve does not match algorithm %s", a.ID())}
		}

		r, s, err := decodeRawSignature(signature, curve)
		if err != nil {
			return err
		}

		if !ecdsa.Verify(key, digest, r, s) {
			return &VerificationError{msg: "ECDSA signature verification failed"}
		}

		return nil
	case *rsa.PublicKey:
		if a != RS256 {
			return &VerificationError{msg: fmt.Sprintf("RSA key requires RS256, not %s", a.ID())}
		}

		if err := rsa.VerifyPKCS1v15(key, hash, digest, signature); err != nil {
			return &VerificationError{msg: "RSA signature verification failed"}
		}

		return nil
	default:
		return &VerificationError{msg: fmt.Sprintf("unsupported public key type %T", pub)}
	}
}

func curveByteSize(curve elliptic.Curve) int {
	return (curve.Params().BitSize + 7) / 8
}

func encodeRawSignature(r, s *big.Int, curve elliptic.Curve) []byte {
	size := curveByteSize(curve)
	out := make([]byte, 2*size)
	r.FillBytes(out[:size])
	s.FillBytes(out[size:])

	return out
}

func decodeRawSignature(signature []byte, curve elliptic.Curve) (*big.Int, *big.Int, error) {
	size := curveByteSize(curve)
	if len(signature) != 2*size {
		return nil, nil, &VerificationError{msg: "malformed ECDSA signature length"}
	}

	r := new(big.Int).SetBytes(signature[:size])
	s := new(big.Int).SetBytes(signature[size:])

	return r, s, nil
}
