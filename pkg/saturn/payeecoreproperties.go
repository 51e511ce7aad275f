/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"crypto"
	"strings"

	"github.com/webpki/saturn-go/pkg/crypto/keys"
	"github.com/webpki/saturn-go/pkg/crypto/signatures"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// SignatureParameter is one signature key a payee is enrolled with at its
// provider, together with the algorithm the key is restricted to.
type SignatureParameter struct {
	Algorithm signatures.Algorithm
	PublicKey crypto.PublicKey
}

// PayeeCoreProperties is the provider-attested description of a payee:
// identity, optional hashed receive accounts, and the signature keys the
// payee is allowed to sign payment requests with.
type PayeeCoreProperties struct {
	LocalPayeeID        string
	CommonName          string
	HomePage            string
	LogotypeURL         string
	AccountHashes       [][]byte // optional
	SignatureParameters []SignatureParameter
}

func (p *PayeeCoreProperties) write(wr *json.Object) error {
	wr.SetString(localPayeeIDProperty, p.LocalPayeeID).
		SetString(commonNameProperty, p.CommonName).
		SetString(homePageProperty, p.HomePage).
		SetString(logotypeURLProperty, p.LogotypeURL)

	if len(p.AccountHashes) > 0 {
		wr.SetObject(accountVerifierProperty, json.NewObject().
			SetString(algorithmProperty, RequestHashAlgorithmID).
			SetBinaryArray(hashedPayeeAccountsProperty, p.AccountHashes))
	}

	params := make([]*json.Object, 0, len(p.SignatureParameters))

	for _, param := range p.SignatureParameters {
		jwk, err := keys.WritePublicKey(param.PublicKey)
		if err != nil {
			return err
		}

		params = append(params, json.NewObject().
			SetString(algorithmProperty, param.Algorithm.ID()).
			SetObject(publicKeyProperty, jwk))
	}

	wr.SetObjectArray(signatureParametersProperty, params)

	return wr.Err()
}

func parsePayeeCoreProperties(rd *json.Reader) (*PayeeCoreProperties, error) {
	core := &PayeeCoreProperties{}

	var err error

	if core.LocalPayeeID, err = rd.GetString(localPayeeIDProperty); err != nil {
		return nil, err
	}

	if core.CommonName, err = rd.GetString(commonNameProperty); err != nil {
		return nil, err
	}

	if core.HomePage, err = rd.GetString(homePageProperty); err != nil {
		return nil, err
	}

	if core.LogotypeURL, err = rd.GetString(logotypeURLProperty); err != nil {
		return nil, err
	}

	if rd.HasProperty(accountVerifierProperty) {
		if err = parseAccountVerifier(rd, core); err != nil {
			return nil, err
		}
	}

	paramsRd, err := rd.GetArray(signatureParametersProperty)
	if err != nil {
		return nil, err
	}

	for paramsRd.HasMore() {
		paramRd, err := paramsRd.GetObject()
		if err != nil {
			return nil, err
		}

		algorithmID, err := paramRd.GetString(algorithmProperty)
		if err != nil {
			return nil, err
		}

		algorithm, err := signatures.AlgorithmFromID(algorithmID)
		if err != nil {
			return nil, err
		}

		jwkRd, err := paramRd.GetObject(publicKeyProperty)
		if err != nil {
			return nil, err
		}

		publicKey, err := keys.ParsePublicKey(jwkRd)
		if err != nil {
			return nil, err
		}

		core.SignatureParameters = append(core.SignatureParameters,
			SignatureParameter{Algorithm: algorithm, PublicKey: publicKey})
	}

	if len(core.SignatureParameters) == 0 {
		return nil, json.NewSchemaError("empty %s", signatureParametersProperty)
	}

	return core, nil
}

func parseAccountVerifier(rd *json.Reader, core *PayeeCoreProperties) error {
	verifierRd, err := rd.GetObject(accountVerifierProperty)
	if err != nil {
		return err
	}

	algorithm, err := verifierRd.GetString(algorithmProperty)
	if err != nil {
		return err
	}

	if algorithm != RequestHashAlgorithmID {
		return json.NewSchemaError("unsupported account hash algorithm: %s", algorithm)
	}

	hashesRd, err := verifierRd.GetArray(hashedPayeeAccountsProperty)
	if err != nil {
		return err
	}

	for hashesRd.HasMore() {
		hash, err := hashesRd.GetBinary()
		if err != nil {
			return err
		}

		core.AccountHashes = append(core.AccountHashes, hash)
	}

	return nil
}

// Verify checks that a payment request signature was made with one of the
// enrolled payee keys, distinguishing a wrong key from a right key used
// with the wrong algorithm.
func (p *PayeeCoreProperties) Verify(decoded *signatures.Decoded) error {
	keyMatched := false

	for _, param := range p.SignatureParameters {
		if !keys.Equal(param.PublicKey, decoded.PublicKey) {
			continue
		}

		keyMatched = true

		if param.Algorithm == decoded.Algorithm {
			return nil
		}
	}

	if keyMatched {
		return integrityErrorf("payee %s signed with an enrolled key but a wrong algorithm",
			p.LocalPayeeID)
	}

	return integrityErrorf("payee %s signed with an unknown key", p.LocalPayeeID)
}

// VerifyAccount checks that a receive account the payee disclosed in a
// transaction belongs to the set attested by the provider.
func (p *PayeeCoreProperties) VerifyAccount(account AccountDescriptor) error {
	hash, err := HashAccount(account)
	if err != nil {
		return err
	}

	for _, attested := range p.AccountHashes {
		if hashEqual(hash, attested) {
			return nil
		}
	}

	return integrityErrorf("account %s is not attested for payee %s", account.ID, p.LocalPayeeID)
}

// HashAccount computes the attestation digest of a receive account: the
// hash of the normalized account descriptor object.
func HashAccount(account AccountDescriptor) ([]byte, error) {
	obj, err := accountDescriptorObject(account)
	if err != nil {
		return nil, err
	}

	return HashNormalized(obj)
}

// URLSafeID converts a local payee id to a form usable inside an authority
// URL path segment.
func URLSafeID(id string) string {
	var out strings.Builder

	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			out.WriteRune(r)
		default:
			out.WriteByte('_')
		}
	}

	return out.String()
}
