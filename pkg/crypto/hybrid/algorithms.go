/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package hybrid implements the Saturn hybrid encryption engine: symmetric
// content encryption (a JOSE-style A128CBC-HS256 construction) combined with
// asymmetric key encapsulation, either RSA-OAEP-256 key wrapping or ECDH-ES
// key agreement with a single-round NIST Concat KDF. Algorithm identifiers
// are JOSE-compatible.
package hybrid

import (
	"errors"
	"fmt"
)

// KeyEncryptionAlgorithm identifies the key-encapsulation mechanism.
type KeyEncryptionAlgorithm string

// ContentEncryptionAlgorithm identifies the symmetric content encryption.
type ContentEncryptionAlgorithm string

// Supported algorithms.
const (
	RSAOAEP256   KeyEncryptionAlgorithm     = "RSA-OAEP-256"
	ECDHES       KeyEncryptionAlgorithm     = "ECDH-ES"
	A128CBCHS256 ContentEncryptionAlgorithm = "A128CBC-HS256"
)

// PermittedKeyEncryptionAlgorithm reports whether the identifier names a
// supported key-encapsulation mechanism.
func PermittedKeyEncryptionAlgorithm(alg KeyEncryptionAlgorithm) bool {
	return alg == RSAOAEP256 || alg == ECDHES
}

// PermittedContentEncryptionAlgorithm reports whether the identifier names a
// supported content encryption.
func PermittedContentEncryptionAlgorithm(alg ContentEncryptionAlgorithm) bool {
	return alg == A128CBCHS256
}

// IsRSA reports whether the key-encapsulation mechanism is the RSA key-wrap
// flavor (as opposed to ECDH key agreement).
func (a KeyEncryptionAlgorithm) IsRSA() bool {
	return a == RSAOAEP256
}

// AuthenticationError signals an authentication-tag mismatch during
// decryption. Plaintext is never returned when it occurs.
type AuthenticationError struct {
	alg ContentEncryptionAlgorithm
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error on algorithm %q", e.alg)
}

// Decryption key selection errors. Both are cryptographic failures: the
// caller held keys, but none fit the envelope.
var (
	ErrNoMatchingKey        = errors.New("no matching decryption key found")
	ErrKeyAlgorithmMismatch = errors.New("decryption key found but algorithm mismatch")
)
