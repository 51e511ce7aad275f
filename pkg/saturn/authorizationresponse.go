/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"crypto"
	"time"

	"github.com/webpki/saturn-go/pkg/crypto/hybrid"
	"github.com/webpki/saturn-go/pkg/crypto/signatures"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// AuthorizationResponseData is the provider input to
// EncodeAuthorizationResponse.
type AuthorizationResponseData struct {
	AuthorizationRequest *AuthorizationRequest
	AccountReference     string
	ReferenceID          string
	TimeStamp            time.Time
	Software             Software

	// ProtectedAccountData is encrypted for the acquirer using the
	// encryption parameter below before it enters the message.
	ProtectedAccountData *ProtectedAccountData
	ContentAlgorithm     hybrid.ContentEncryptionAlgorithm
	KeyAlgorithm         hybrid.KeyEncryptionAlgorithm
	EncryptionKey        crypto.PublicKey
}

// EncodeAuthorizationResponse builds the provider's signed response: the
// authorization request is re-embedded verbatim and the account data is
// disclosed only inside an envelope encrypted for the acquirer.
func EncodeAuthorizationResponse(data *AuthorizationResponseData,
	signer *signatures.X509Signer) (*json.Object, error) {
	wr := CreateBaseMessage(MsgAuthorizationResponse)

	wr.SetObject(MsgAuthorizationRequest.EmbeddedName(), data.AuthorizationRequest.Root().Object()).
		SetString(accountReferenceProperty, data.AccountReference)

	plaintext, err := data.ProtectedAccountData.Encode()
	if err != nil {
		return nil, err
	}

	envelope, err := hybrid.Encrypt(plaintext, data.ContentAlgorithm, data.KeyAlgorithm,
		data.EncryptionKey)
	if err != nil {
		return nil, err
	}

	wr.SetObject(encryptedAccountDataProperty, envelope).
		SetString(referenceIDProperty, data.ReferenceID).
		SetDateTime(timeStampProperty, data.TimeStamp, false)

	writeSoftware(wr, data.Software)

	if err := signatures.Sign(wr, issuerSignatureProperty, signer); err != nil {
		return nil, err
	}

	return wr, nil
}

// AuthorizationResponse is a decoded and verified authorization response.
type AuthorizationResponse struct {
	AuthorizationRequest *AuthorizationRequest
	AccountReference     string
	ReferenceID          string
	TimeStamp            time.Time
	Software             Software

	// Signature is the provider's certificate path signature. Callers
	// anchor it in their trust store with VerifyTrust.
	Signature *signatures.Decoded

	envelope *hybrid.Envelope
	root     *json.Reader
}

// ParseAuthorizationResponse decodes an authorization response, verifying
// the issuer signature and the full embedded message chain.
func ParseAuthorizationResponse(rd *json.Reader) (*AuthorizationResponse, error) {
	if err := ParseBaseMessage(MsgAuthorizationResponse, rd); err != nil {
		return nil, err
	}

	response := &AuthorizationResponse{root: rd}

	requestRd, err := rd.GetObject(MsgAuthorizationRequest.EmbeddedName())
	if err != nil {
		return nil, err
	}

	if response.AuthorizationRequest, err = ParseAuthorizationRequest(requestRd); err != nil {
		return nil, err
	}

	if response.AccountReference, err = rd.GetString(accountReferenceProperty); err != nil {
		return nil, err
	}

	envelopeRd, err := rd.GetObject(encryptedAccountDataProperty)
	if err != nil {
		return nil, err
	}

	if response.envelope, err = hybrid.ParseEnvelope(envelopeRd); err != nil {
		return nil, err
	}

	if response.ReferenceID, err = rd.GetString(referenceIDProperty); err != nil {
		return nil, err
	}

	if response.TimeStamp, err = rd.GetDateTime(timeStampProperty); err != nil {
		return nil, err
	}

	if response.Software, err = parseSoftware(rd); err != nil {
		return nil, err
	}

	if response.Signature, err = signatures.Decode(rd, issuerSignatureProperty,
		signatures.RequireCertificatePath); err != nil {
		return nil, err
	}

	if err := rd.CheckForUnread(); err != nil {
		return nil, err
	}

	return response, nil
}

// Root exposes the underlying document for verbatim re-embedding.
func (a *AuthorizationResponse) Root() *json.Reader {
	return a.root
}

// PaymentRequest returns the payment request at the bottom of the chain.
func (a *AuthorizationResponse) PaymentRequest() *PaymentRequest {
	return a.AuthorizationRequest.PaymentRequest
}

// DecryptAccountData opens the protected account data using the acquirer's
// decryption keys.
func (a *AuthorizationResponse) DecryptAccountData(
	candidates []hybrid.DecryptionKey) (*ProtectedAccountData, error) {
	plaintext, err := a.envelope.Decrypt(candidates)
	if err != nil {
		return nil, err
	}

	dataRd, err := json.Parse(plaintext)
	if err != nil {
		return nil, err
	}

	return ParseProtectedAccountData(dataRd)
}
