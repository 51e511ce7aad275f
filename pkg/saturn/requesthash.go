/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/webpki/saturn-go/pkg/doc/json"
)

// RequestHashAlgorithmID is the only hash algorithm request hashes may use.
const RequestHashAlgorithmID = "S256"

// HashNormalized returns the SHA-256 digest of the normalized serialization
// of obj. This digest is what request hashes bind to.
func HashNormalized(obj *json.Object) ([]byte, error) {
	normalized, err := obj.Normalized()
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(normalized)

	return digest[:], nil
}

func writeRequestHash(wr *json.Object, hash []byte) *json.Object {
	return wr.SetObject(requestHashProperty, json.NewObject().
		SetString(algorithmProperty, RequestHashAlgorithmID).
		SetBinary(valueProperty, hash))
}

func parseRequestHash(rd *json.Reader) ([]byte, error) {
	sub, err := rd.GetObject(requestHashProperty)
	if err != nil {
		return nil, err
	}

	algorithm, err := sub.GetString(algorithmProperty)
	if err != nil {
		return nil, err
	}

	if algorithm != RequestHashAlgorithmID {
		return nil, json.NewSchemaError("unsupported request hash algorithm: %s", algorithm)
	}

	return sub.GetBinary(valueProperty)
}

func hashEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
