/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package hybrid

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

const (
	contentKeySize = 32
	ivSize         = 16
	tagSize        = 16
)

// ContentEncryptionResult carries the output of authenticated content
// encryption.
type ContentEncryptionResult struct {
	IV         []byte
	Tag        []byte
	CipherText []byte
}

// GenerateContentEncryptionKey returns a fresh random 32-byte content
// encryption key for the given algorithm.
func GenerateContentEncryptionKey(alg ContentEncryptionAlgorithm) ([]byte, error) {
	if !PermittedContentEncryptionAlgorithm(alg) {
		return nil, fmt.Errorf("unsupported content encryption algorithm: %q", alg)
	}

	key := make([]byte, contentKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}

	return key, nil
}

// ContentEncryption encrypts plainText under the 32-byte content key with a
// fresh random IV and computes the authentication tag over authenticatedData.
func ContentEncryption(alg ContentEncryptionAlgorithm, key, plainText,
	authenticatedData []byte) (*ContentEncryptionResult, error) {
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	cipherText, err := aesCBC(alg, key, iv, plainText, true)
	if err != nil {
		return nil, err
	}

	return &ContentEncryptionResult{
		IV:         iv,
		Tag:        computeTag(key, cipherText, iv, authenticatedData),
		CipherText: cipherText,
	}, nil
}

// ContentDecryption recomputes and constant-time-compares the authentication
// tag before decrypting; a mismatch is a hard AuthenticationError and no
// plaintext is returned. The key length is checked first: an unwrapped key
// of the wrong size may be attacker-chosen and must fail cleanly.
func ContentDecryption(alg ContentEncryptionAlgorithm, key, cipherText, iv,
	authenticatedData, tag []byte) ([]byte, error) {
	if len(key) != contentKeySize {
		return nil, &AuthenticationError{alg: alg}
	}

	if !hmac.Equal(tag, computeTag(key, cipherText, iv, authenticatedData)) {
		return nil, &AuthenticationError{alg: alg}
	}

	return aesCBC(alg, key, iv, cipherText, false)
}

// computeTag derives the A128CBC-HS256 authentication tag: HMAC-SHA-256
// keyed with the first 16 bytes of the content key, over
// AAD || IV || cipherText || AL, where AL is the AAD length in bits as a
// 64-bit big-endian integer, truncated to 16 bytes. This exact ordering and
// truncation is fixed by the wire format.
func computeTag(key, cipherText, iv, authenticatedData []byte) []byte {
	al := make([]byte, 8)
	binary.BigEndian.PutUint64(al, uint64(len(authenticatedData))*8)

	mac := hmac.New(sha256.New, key[:tagSize])
	mac.Write(authenticatedData)
	mac.Write(iv)
	mac.Write(cipherText)
	mac.Write(al)

	return mac.Sum(nil)[:tagSize]
}

// aesCBC runs AES-128-CBC with PKCS#7 padding using the last 16 bytes of the
// content key.
func aesCBC(alg ContentEncryptionAlgorithm, key, iv, data []byte, encrypt bool) ([]byte, error) {
	if !PermittedContentEncryptionAlgorithm(alg) {
		return nil, fmt.Errorf("unsupported content encryption algorithm: %q", alg)
	}

	if len(key) != contentKeySize {
		return nil, fmt.Errorf("content encryption key must be %d bytes", contentKeySize)
	}

	if len(iv) != ivSize {
		return nil, fmt.Errorf("IV must be %d bytes", ivSize)
	}

	block, err := aes.NewCipher(key[tagSize:])
	if err != nil {
		return nil, err
	}

	if encrypt {
		padded := pad(data)
		out := make([]byte, len(padded))
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

		return out, nil
	}

	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, &AuthenticationError{alg: alg}
	}

	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)

	return unpad(out, alg)
}

func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)

	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}

	return padded
}

func unpad(data []byte, alg ContentEncryptionAlgorithm) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, &AuthenticationError{alg: alg}
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, &AuthenticationError{alg: alg}
		}
	}

	return data[:len(data)-n], nil
}
