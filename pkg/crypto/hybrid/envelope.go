/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package hybrid

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"

	"github.com/webpki/saturn-go/pkg/crypto/keys"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// Wire property names of the encryption envelope.
const (
	EncryptedDataProperty = "encryptedData"
	EncryptedKeyProperty  = "encryptedKey"
	StaticKeyProperty     = "staticKey"
	EphemeralKeyProperty  = "ephemeralKey"
	AlgorithmProperty     = "algorithm"
	PublicKeyProperty     = "publicKey"
	IVProperty            = "iv"
	TagProperty           = "tag"
	CipherTextProperty    = "cipherText"
)

// DecryptionKey is one candidate key a receiver holds. Envelope decryption
// selects by public-key equality first, then algorithm equality.
type DecryptionKey struct {
	PublicKey              crypto.PublicKey
	PrivateKey             crypto.PrivateKey
	KeyEncryptionAlgorithm KeyEncryptionAlgorithm
}

// Envelope is a parsed encryption envelope awaiting decryption.
type Envelope struct {
	contentAlg        ContentEncryptionAlgorithm
	keyAlg            KeyEncryptionAlgorithm
	publicKey         crypto.PublicKey // the recipient's static key
	ephemeralKey      *ecdsa.PublicKey // ECDH-ES only
	encryptedKeyData  []byte           // RSA only
	iv                []byte
	tag               []byte
	cipherText        []byte
	authenticatedData []byte
}

// Encrypt protects the normalized serialization of plaintext for the holder
// of recipientKey: a fresh content key per envelope (random for RSA key
// wrap, KDF-derived from a fresh ephemeral key for ECDH-ES), with the
// normalized encryptedKey sub-object as associated data so that tampering
// with the key encapsulation breaks payload authentication.
func Encrypt(plaintext *json.Object, contentAlg ContentEncryptionAlgorithm,
	keyAlg KeyEncryptionAlgorithm, recipientKey crypto.PublicKey) (*json.Object, error) {
	data, err := plaintext.Normalized()
	if err != nil {
		return nil, err
	}

	encryptedKey := json.NewObject().SetString(AlgorithmProperty, string(keyAlg))

	var cek []byte

	if keyAlg.IsRSA() {
		rsaKey, ok := recipientKey.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%q requires an RSA recipient key, got %T", keyAlg, recipientKey)
		}

		cek, err = GenerateContentEncryptionKey(contentAlg)
		if err != nil {
			return nil, err
		}

		wrapped, err := RSAEncryptKey(keyAlg, cek, rsaKey)
		if err != nil {
			return nil, err
		}

		jwk, err := keys.WritePublicKey(recipientKey)
		if err != nil {
			return nil, err
		}

		encryptedKey.SetObject(PublicKeyProperty, jwk).
			SetBinary(CipherTextProperty, wrapped)
	} else {
		ecKey, ok := recipientKey.(*ecdsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%q requires an EC recipient key, got %T", keyAlg, recipientKey)
		}

		var ephemeral *ecdsa.PublicKey

		cek, ephemeral, err = SenderKeyAgreement(keyAlg, contentAlg, ecKey)
		if err != nil {
			return nil, err
		}

		staticJWK, err := keys.WritePublicKey(recipientKey)
		if err != nil {
			return nil, err
		}

		ephemeralJWK, err := keys.WritePublicKey(ephemeral)
		if err != nil {
			return nil, err
		}

		encryptedKey.SetObject(StaticKeyProperty, staticJWK).
			SetObject(EphemeralKeyProperty, ephemeralJWK)
	}

	aad, err := encryptedKey.Normalized()
	if err != nil {
		return nil, err
	}

	result, err := ContentEncryption(contentAlg, cek, data, aad)
	if err != nil {
		return nil, err
	}

	encryptedData := json.NewObject().
		SetString(AlgorithmProperty, string(contentAlg)).
		SetObject(EncryptedKeyProperty, encryptedKey).
		SetBinary(IVProperty, result.IV).
		SetBinary(TagProperty, result.Tag).
		SetBinary(CipherTextProperty, result.CipherText)

	wrapper := json.NewObject().SetObject(EncryptedDataProperty, encryptedData)

	return wrapper, wrapper.Err()
}

// ParseEnvelope reads an encryption envelope from the wrapper object rd
// (the message property holding {"encryptedData": {...}}).
func ParseEnvelope(rd *json.Reader) (*Envelope, error) {
	dataRd, err := rd.GetObject(EncryptedDataProperty)
	if err != nil {
		return nil, err
	}

	env := &Envelope{}

	contentAlg, err := dataRd.GetString(AlgorithmProperty)
	if err != nil {
		return nil, err
	}

	env.contentAlg = ContentEncryptionAlgorithm(contentAlg)
	if !PermittedContentEncryptionAlgorithm(env.contentAlg) {
		return nil, fmt.Errorf("unsupported content encryption algorithm: %q", contentAlg)
	}

	keyRd, err := dataRd.GetObject(EncryptedKeyProperty)
	if err != nil {
		return nil, err
	}

	// The authenticated data is the canonical encryptedKey sub-object.
	env.authenticatedData, err = keyRd.Normalized()
	if err != nil {
		return nil, err
	}

	keyAlg, err := keyRd.GetString(AlgorithmProperty)
	if err != nil {
		return nil, err
	}

	env.keyAlg = KeyEncryptionAlgorithm(keyAlg)
	if !PermittedKeyEncryptionAlgorithm(env.keyAlg) {
		return nil, fmt.Errorf("unsupported key encryption algorithm: %q", keyAlg)
	}

	if env.keyAlg.IsRSA() {
		if err := parseRSAKeyInfo(keyRd, env); err != nil {
			return nil, err
		}
	} else {
		if err := parseECDHKeyInfo(keyRd, env); err != nil {
			return nil, err
		}
	}

	if env.iv, err = dataRd.GetBinary(IVProperty); err != nil {
		return nil, err
	}

	if env.tag, err = dataRd.GetBinary(TagProperty); err != nil {
		return nil, err
	}

	if env.cipherText, err = dataRd.GetBinary(CipherTextProperty); err != nil {
		return nil, err
	}

	return env, nil
}

func parseRSAKeyInfo(keyRd *json.Reader, env *Envelope) error {
	jwkRd, err := keyRd.GetObject(PublicKeyProperty)
	if err != nil {
		return err
	}

	if env.publicKey, err = keys.ParsePublicKey(jwkRd); err != nil {
		return err
	}

	env.encryptedKeyData, err = keyRd.GetBinary(CipherTextProperty)

	return err
}

func parseECDHKeyInfo(keyRd *json.Reader, env *Envelope) error {
	staticRd, err := keyRd.GetObject(StaticKeyProperty)
	if err != nil {
		return err
	}

	if env.publicKey, err = keys.ParsePublicKey(staticRd); err != nil {
		return err
	}

	ephemeralRd, err := keyRd.GetObject(EphemeralKeyProperty)
	if err != nil {
		return err
	}

	ephemeral, err := keys.ParsePublicKey(ephemeralRd)
	if err != nil {
		return err
	}

	ecKey, ok := ephemeral.(*ecdsa.PublicKey)
	if !ok {
		return fmt.Errorf("ephemeral key must be an EC key, got %T", ephemeral)
	}

	env.ephemeralKey = ecKey

	return nil
}

// Decrypt iterates the caller's candidate keys, matching first by public-key
// equality and then by key-encryption algorithm, and returns the decrypted
// plaintext bytes. ErrNoMatchingKey and ErrKeyAlgorithmMismatch distinguish
// the two selection failures.
func (e *Envelope) Decrypt(candidates []DecryptionKey) ([]byte, error) {
	keyFound := false

	for _, candidate := range candidates {
		if !keys.Equal(candidate.PublicKey, e.publicKey) {
			continue
		}

		keyFound = true

		if candidate.KeyEncryptionAlgorithm != e.keyAlg {
			continue
		}

		cek, err := e.contentKey(candidate)
		if err != nil {
			return nil, err
		}

		return ContentDecryption(e.contentAlg, cek, e.cipherText, e.iv, e.authenticatedData, e.tag)
	}

	if keyFound {
		return nil, ErrKeyAlgorithmMismatch
	}

	return nil, ErrNoMatchingKey
}

func (e *Envelope) contentKey(candidate DecryptionKey) ([]byte, error) {
	if e.keyAlg.IsRSA() {
		rsaKey, ok := candidate.PrivateKey.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%q requires an RSA private key, got %T", e.keyAlg, candidate.PrivateKey)
		}

		return RSADecryptKey(e.keyAlg, e.encryptedKeyData, rsaKey)
	}

	return ReceiverKeyAgreement(e.keyAlg, e.contentAlg, e.ephemeralKey, candidate.PrivateKey)
}
