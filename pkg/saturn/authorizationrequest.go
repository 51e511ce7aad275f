/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"crypto"
	"time"

	"github.com/webpki/saturn-go/pkg/crypto/hybrid"
	"github.com/webpki/saturn-go/pkg/crypto/keys"
	"github.com/webpki/saturn-go/pkg/crypto/signatures"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// AuthorizationRequestData is the payee input to EncodeAuthorizationRequest.
type AuthorizationRequestData struct {
	TestMode               bool
	RecipientURL           string
	PayeeAuthorityURL      string
	PaymentMethod          PaymentMethod
	PaymentRequest         *PaymentRequest
	EncryptedAuthorization *json.Object // the wallet's encrypted consent, embedded verbatim
	ClientIPAddress        string
	ReferenceID            string
	TimeStamp              time.Time
	Software               Software
}

// EncodeAuthorizationRequest builds and signs the payee's request to the
// payer's provider. The payment request is re-embedded verbatim and also
// bound by hash, and the outer signature must use the payment request key.
func EncodeAuthorizationRequest(data *AuthorizationRequestData,
	signer *signatures.KeySigner) (*json.Object, error) {
	wr := CreateBaseMessage(MsgAuthorizationRequest)

	if data.TestMode {
		wr.SetBoolean(testModeProperty, true)
	}

	wr.SetString(recipientURLProperty, data.RecipientURL).
		SetString(payeeAuthorityURLProperty, data.PayeeAuthorityURL).
		SetString(paymentMethodProperty, data.PaymentMethod.URL()).
		SetObject(paymentRequestProperty, data.PaymentRequest.Root().Object())

	requestHash, err := data.PaymentRequest.RequestHash()
	if err != nil {
		return nil, err
	}

	writeRequestHash(wr, requestHash)

	wr.SetObject(encryptedAuthorizationProperty, data.EncryptedAuthorization).
		SetString(clientIPAddressProperty, data.ClientIPAddress).
		SetString(referenceIDProperty, data.ReferenceID).
		SetDateTime(timeStampProperty, data.TimeStamp, false)

	writeSoftware(wr, data.Software)

	if err := signatures.Sign(wr, requestSignatureProperty, signer); err != nil {
		return nil, err
	}

	return wr, nil
}

// AuthorizationRequest is a decoded and verified authorization request.
type AuthorizationRequest struct {
	TestMode          bool
	RecipientURL      string
	PayeeAuthorityURL string
	PaymentMethod     PaymentMethod
	PaymentRequest    *PaymentRequest
	ClientIPAddress   string
	ReferenceID       string
	TimeStamp         time.Time
	Software          Software
	PublicKey         crypto.PublicKey

	envelope *hybrid.Envelope
	root     *json.Reader
}

// ParseAuthorizationRequest decodes an authorization request, verifies its
// signature and the embedded payment request, and checks that the request
// hash and the signature key line up with the embedded request.
func ParseAuthorizationRequest(rd *json.Reader) (*AuthorizationRequest, error) {
	if err := ParseBaseMessage(MsgAuthorizationRequest, rd); err != nil {
		return nil, err
	}

	request := &AuthorizationRequest{root: rd}

	var err error

	if request.TestMode, err = rd.GetBooleanConditional(testModeProperty); err != nil {
		return nil, err
	}

	if request.RecipientURL, err = rd.GetString(recipientURLProperty); err != nil {
		return nil, err
	}

	if request.PayeeAuthorityURL, err = rd.GetString(payeeAuthorityURLProperty); err != nil {
		return nil, err
	}

	methodURL, err := rd.GetString(paymentMethodProperty)
	if err != nil {
		return nil, err
	}

	if request.PaymentMethod, err = PaymentMethodFromURL(methodURL); err != nil {
		return nil, err
	}

	requestRd, err := rd.GetObject(paymentRequestProperty)
	if err != nil {
		return nil, err
	}

	if request.PaymentRequest, err = ParsePaymentRequest(requestRd); err != nil {
		return nil, err
	}

	requestHash, err := parseRequestHash(rd)
	if err != nil {
		return nil, err
	}

	expectedHash, err := request.PaymentRequest.RequestHash()
	if err != nil {
		return nil, err
	}

	if !hashEqual(requestHash, expectedHash) {
		return nil, integrityErrorf("request hash does not match the embedded payment request")
	}

	envelopeRd, err := rd.GetObject(encryptedAuthorizationProperty)
	if err != nil {
		return nil, err
	}

	if request.envelope, err = hybrid.ParseEnvelope(envelopeRd); err != nil {
		return nil, err
	}

	if request.ClientIPAddress, err = rd.GetString(clientIPAddressProperty); err != nil {
		return nil, err
	}

	if request.ReferenceID, err = rd.GetString(referenceIDProperty); err != nil {
		return nil, err
	}

	if request.TimeStamp, err = rd.GetDateTime(timeStampProperty); err != nil {
		return nil, err
	}

	if request.Software, err = parseSoftware(rd); err != nil {
		return nil, err
	}

	decoded, err := signatures.Decode(rd, requestSignatureProperty, signatures.RequirePublicKey)
	if err != nil {
		return nil, err
	}

	request.PublicKey = decoded.PublicKey

	// One actor, one key: the outer message and the embedded payment
	// request must be signed by the same payee key.
	if !keys.Equal(request.PublicKey, request.PaymentRequest.PublicKey) {
		return nil, integrityErrorf("authorization request signed with a different key than its payment request")
	}

	if err := rd.CheckForUnread(); err != nil {
		return nil, err
	}

	return request, nil
}

// Root exposes the underlying document for verbatim re-embedding.
func (a *AuthorizationRequest) Root() *json.Reader {
	return a.root
}

// DecryptAuthorization decrypts and verifies the wallet consent using the
// provider's decryption keys. It enforces that the consent binds to the very
// payment request carried by this message and that the wallet authorized the
// payment method the payee asked for.
func (a *AuthorizationRequest) DecryptAuthorization(
	candidates []hybrid.DecryptionKey) (*AuthorizationData, error) {
	plaintext, err := a.envelope.Decrypt(candidates)
	if err != nil {
		return nil, err
	}

	dataRd, err := json.Parse(plaintext)
	if err != nil {
		return nil, err
	}

	authorization, err := ParseAuthorizationData(dataRd)
	if err != nil {
		return nil, err
	}

	expectedHash, err := a.PaymentRequest.RequestHash()
	if err != nil {
		return nil, err
	}

	if !hashEqual(authorization.RequestHash, expectedHash) {
		return nil, integrityErrorf("wallet authorization bound to a different payment request")
	}

	if authorization.PaymentMethod != a.PaymentMethod {
		return nil, integrityErrorf("wallet authorized %s but the request uses %s",
			authorization.PaymentMethod, a.PaymentMethod)
	}

	return authorization, nil
}
