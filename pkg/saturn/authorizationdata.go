/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"crypto"
	"time"

	"github.com/webpki/saturn-go/pkg/crypto/keys"
	"github.com/webpki/saturn-go/pkg/crypto/signatures"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// AuthorizationDataInput is the wallet input to EncodeAuthorizationData.
type AuthorizationDataInput struct {
	PaymentRequest *PaymentRequest
	PaymentMethod  PaymentMethod
	DomainName     string
	PayerAccount   AccountDescriptor
	CredentialID   string // optional
	TimeStamp      time.Time
	Software       Software
}

// EncodeAuthorizationData builds and signs the wallet's authorization: the
// user consent object that binds the payer account to the payment request by
// hash. The result is always encrypted before leaving the wallet.
func EncodeAuthorizationData(input *AuthorizationDataInput, signer *signatures.KeySigner) (*json.Object, error) {
	requestHash, err := input.PaymentRequest.RequestHash()
	if err != nil {
		return nil, err
	}

	wr := json.NewObject()
	writeRequestHash(wr, requestHash)

	wr.SetString(paymentMethodProperty, input.PaymentMethod.URL()).
		SetString(domainNameProperty, input.DomainName)

	if err := writeAccountDescriptor(wr, payerAccountProperty, input.PayerAccount); err != nil {
		return nil, err
	}

	if input.CredentialID != "" {
		wr.SetString(credentialIDProperty, input.CredentialID)
	}

	wr.SetDateTime(timeStampProperty, input.TimeStamp, false)
	writeSoftware(wr, input.Software)

	if err := signatures.Sign(wr, authorizationSignatureProperty, signer); err != nil {
		return nil, err
	}

	return wr, nil
}

// AuthorizationData is the decrypted and verified wallet authorization.
type AuthorizationData struct {
	RequestHash   []byte
	PaymentMethod PaymentMethod
	DomainName    string
	PayerAccount  AccountDescriptor
	CredentialID  string
	TimeStamp     time.Time
	Software      Software

	// PublicKey is the verified wallet credential key.
	PublicKey crypto.PublicKey

	root *json.Reader
}

// ParseAuthorizationData decodes and verifies a decrypted wallet
// authorization.
func ParseAuthorizationData(rd *json.Reader) (*AuthorizationData, error) {
	data := &AuthorizationData{root: rd}

	var err error

	if data.RequestHash, err = parseRequestHash(rd); err != nil {
		return nil, err
	}

	methodURL, err := rd.GetString(paymentMethodProperty)
	if err != nil {
		return nil, err
	}

	if data.PaymentMethod, err = PaymentMethodFromURL(methodURL); err != nil {
		return nil, err
	}

	if data.DomainName, err = rd.GetString(domainNameProperty); err != nil {
		return nil, err
	}

	if data.PayerAccount, err = parseAccountDescriptor(rd, payerAccountProperty); err != nil {
		return nil, err
	}

	if data.CredentialID, err = rd.GetStringConditional(credentialIDProperty); err != nil {
		return nil, err
	}

	if data.TimeStamp, err = rd.GetDateTime(timeStampProperty); err != nil {
		return nil, err
	}

	if data.Software, err = parseSoftware(rd); err != nil {
		return nil, err
	}

	decoded, err := signatures.Decode(rd, authorizationSignatureProperty, signatures.RequirePublicKey)
	if err != nil {
		return nil, err
	}

	data.PublicKey = decoded.PublicKey

	if err := rd.CheckForUnread(); err != nil {
		return nil, err
	}

	return data, nil
}

// KeyHash returns the hash of the wallet credential key, used by providers
// to look up the enrolled credential.
func (a *AuthorizationData) KeyHash() ([]byte, error) {
	return keys.Hash(a.PublicKey)
}
