/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package hybrid

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// RSAEncryptKey wraps a content encryption key with RSA-OAEP (SHA-256).
func RSAEncryptKey(alg KeyEncryptionAlgorithm, rawKey []byte, pub *rsa.PublicKey) ([]byte, error) {
	if alg != RSAOAEP256 {
		return nil, fmt.Errorf("unsupported RSA key encryption algorithm: %q", alg)
	}

	return rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, rawKey, nil)
}

// RSADecryptKey unwraps a content encryption key with RSA-OAEP (SHA-256).
func RSADecryptKey(alg KeyEncryptionAlgorithm, encryptedKey []byte, priv *rsa.PrivateKey) ([]byte, error) {
	if alg != RSAOAEP256 {
		return nil, fmt.Errorf("unsupported RSA key encryption algorithm: %q", alg)
	}

	return rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, encryptedKey, nil)
}

// SenderKeyAgreement generates an ephemeral key pair on the recipient's
// curve, performs ECDH against the recipient's static key and derives the
// content encryption key. The ephemeral public key travels in the envelope.
func SenderKeyAgreement(keyAlg KeyEncryptionAlgorithm, contentAlg ContentEncryptionAlgorithm,
	staticKey *ecdsa.PublicKey) (cek []byte, ephemeralKey *ecdsa.PublicKey, err error) {
	ephemeral, err := ecdsa.GenerateKey(staticKey.Curve, rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	cek, err = ReceiverKeyAgreement(keyAlg, contentAlg, staticKey, ephemeral)
	if err != nil {
		return nil, nil, err
	}

	return cek, &ephemeral.PublicKey, nil
}

// ReceiverKeyAgreement performs ECDH between the received public key and the
// local private key and derives the content encryption key with a
// single-round NIST Concat KDF (SHA-256, AlgorithmID = the content
// encryption algorithm identifier, empty PartyUInfo/PartyVInfo,
// SuppPubInfo = key length in bits).
func ReceiverKeyAgreement(keyAlg KeyEncryptionAlgorithm, contentAlg ContentEncryptionAlgorithm,
	receivedKey *ecdsa.PublicKey, priv crypto.PrivateKey) ([]byte, error) {
	if keyAlg != ECDHES {
		return nil, fmt.Errorf("unsupported ECDH key encryption algorithm: %q", keyAlg)
	}

	if !PermittedContentEncryptionAlgorithm(contentAlg) {
		return nil, fmt.Errorf("unsupported content encryption algorithm: %q", contentAlg)
	}

	ecPriv, ok := priv.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("ECDH requires an EC private key, got %T", priv)
	}

	if ecPriv.Curve != receivedKey.Curve {
		return nil, fmt.Errorf("ECDH curve mismatch")
	}

	ecdhPriv, err := ecPriv.ECDH()
	if err != nil {
		return nil, fmt.Errorf("ECDH private key: %w", err)
	}

	ecdhPub, err := receivedKey.ECDH()
	if err != nil {
		return nil, fmt.Errorf("ECDH public key: %w", err)
	}

	z, err := ecdhPriv.ECDH(ecdhPub)
	if err != nil {
		return nil, fmt.Errorf("ECDH agreement: %w", err)
	}

	return concatKDF(z, string(contentAlg)), nil
}

// concatKDF is the single-round NIST SP 800-56A Concat KDF over SHA-256.
func concatKDF(z []byte, algorithmID string) []byte {
	hasher := sha256.New()

	// Round 1 counter.
	writeInt4(hasher, 1)
	hasher.Write(z)
	// AlgorithmID = content encryption algorithm.
	writeInt4(hasher, uint32(len(algorithmID)))
	hasher.Write([]byte(algorithmID))
	// PartyUInfo and PartyVInfo are empty.
	writeInt4(hasher, 0)
	writeInt4(hasher, 0)
	// SuppPubInfo = derived key length in bits.
	writeInt4(hasher, contentKeySize*8)

	return hasher.Sum(nil)
}

func writeInt4(hasher interface{ Write([]byte) (int, error) }, v uint32) {
	var buf [4]byte

	binary.BigEndian.PutUint32(buf[:], v)
	hasher.Write(buf[:]) //nolint:errcheck // hash writes cannot fail
}
