/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package keys reads and writes the JOSE-format ("JWK") public key
// sub-objects embedded in Saturn messages, and computes the key hash used
// for binding a payment credential to its provisioning.
package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	jose "github.com/go-jose/go-jose/v3"

	"github.com/webpki/saturn-go/pkg/doc/json"
)

// WritePublicKey converts a public key into its ordered JWK sub-object.
func WritePublicKey(pub crypto.PublicKey) (*json.Object, error) {
	switch pub.(type) {
	case *ecdsa.PublicKey, *rsa.PublicKey:
	default:
		return nil, fmt.Errorf("unsupported public key type %T", pub)
	}

	raw, err := (&jose.JSONWebKey{Key: pub}).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}

	rd, err := json.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("re-parse public key: %w", err)
	}

	return rd.Object(), nil
}

// ParsePublicKey reads a JWK sub-object back into a public key. The whole
// sub-object is consumed for unread accounting.
func ParsePublicKey(rd *json.Reader) (crypto.PublicKey, error) {
	raw, err := rd.Normalized()
	if err != nil {
		return nil, err
	}

	var jwk jose.JSONWebKey

	if err := jwk.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("malformed public key: %w", err)
	}

	if !jwk.IsPublic() {
		return nil, fmt.Errorf("private key material in public key position")
	}

	rd.ScanAwayAll()

	switch key := jwk.Key.(type) {
	case *ecdsa.PublicKey, *rsa.PublicKey:
		return key, nil
	default:
		return nil, fmt.Errorf("unsupported public key type %T", jwk.Key)
	}
}

// Equal reports whether two public keys are the same key.
func Equal(a, b crypto.PublicKey) bool {
	type comparer interface {
		Equal(crypto.PublicKey) bool
	}

	if a == nil || b == nil {
		return a == b
	}

	ac, ok := a.(comparer)
	if !ok {
		return false
	}

	return ac.Equal(b)
}

// Hash returns the SHA-256 digest of the key's normalized JWK serialization.
// This is the "keyHash" value linking a virtual card to its provisioning.
func Hash(pub crypto.PublicKey) ([]byte, error) {
	obj, err := WritePublicKey(pub)
	if err != nil {
		return nil, err
	}

	normalized, err := obj.Normalized()
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(normalized)

	return digest[:], nil
}
