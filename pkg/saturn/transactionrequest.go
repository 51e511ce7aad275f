/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"crypto"
	"crypto/x509"
	"time"

	"github.com/shopspring/decimal"

	"github.com/webpki/saturn-go/pkg/crypto/keys"
	"github.com/webpki/saturn-go/pkg/crypto/signatures"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// TransactionRequestData is the payee input to EncodeTransactionRequest.
type TransactionRequestData struct {
	AuthorizationResponse *AuthorizationResponse
	RecipientURL          string

	// Amount is the actual transaction amount. It may be lower than the
	// authorized amount but never higher.
	Amount decimal.Decimal

	ReferenceID string
	TimeStamp   time.Time
	Software    Software
}

// EncodeTransactionRequest builds the payee's signed request to actually
// move money, re-embedding the provider's authorization verbatim.
func EncodeTransactionRequest(data *TransactionRequestData,
	signer *signatures.KeySigner) (*json.Object, error) {
	wr := CreateBaseMessage(MsgTransactionRequest)

	currency := data.AuthorizationResponse.PaymentRequest().Currency

	wr.SetObject(MsgAuthorizationResponse.EmbeddedName(), data.AuthorizationResponse.Root().Object()).
		SetString(recipientURLProperty, data.RecipientURL).
		SetMoney(amountProperty, data.Amount, currency.Decimals()).
		SetString(referenceIDProperty, data.ReferenceID).
		SetDateTime(timeStampProperty, data.TimeStamp, false)

	writeSoftware(wr, data.Software)

	if err := signatures.Sign(wr, requestSignatureProperty, signer); err != nil {
		return nil, err
	}

	return wr, nil
}

// TransactionRequest is a decoded and verified transaction request.
type TransactionRequest struct {
	AuthorizationResponse *AuthorizationResponse
	RecipientURL          string
	Amount                decimal.Decimal
	ReferenceID           string
	TimeStamp             time.Time
	Software              Software
	PublicKey             crypto.PublicKey

	root *json.Reader
}

// ParseTransactionRequest decodes a transaction request and verifies the
// whole embedded chain. The amount must not exceed the authorized amount,
// the signature key must be the payee key of the original payment request,
// and when cardNetwork is non-nil the payment method must match it.
func ParseTransactionRequest(rd *json.Reader, cardNetwork *bool) (*TransactionRequest, error) {
	if err := ParseBaseMessage(MsgTransactionRequest, rd); err != nil {
		return nil, err
	}

	request := &TransactionRequest{root: rd}

	responseRd, err := rd.GetObject(MsgAuthorizationResponse.EmbeddedName())
	if err != nil {
		return nil, err
	}

	if request.AuthorizationResponse, err = ParseAuthorizationResponse(responseRd); err != nil {
		return nil, err
	}

	if request.RecipientURL, err = rd.GetString(recipientURLProperty); err != nil {
		return nil, err
	}

	paymentRequest := request.AuthorizationResponse.PaymentRequest()

	if request.Amount, err = rd.GetMoney(amountProperty,
		paymentRequest.Currency.Decimals()); err != nil {
		return nil, err
	}

	if request.Amount.GreaterThan(paymentRequest.Amount) {
		return nil, businessErrorf(ErrNotAuthorized,
			"transaction amount %s exceeds the authorized amount %s",
			request.Amount, paymentRequest.Amount)
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

	if !keys.Equal(request.PublicKey, paymentRequest.PublicKey) {
		return nil, integrityErrorf("transaction request signed with a different key than the payment request")
	}

	method := request.AuthorizationResponse.AuthorizationRequest.PaymentMethod
	if cardNetwork != nil && method.CardPayment() != *cardNetwork {
		return nil, businessErrorf(ErrNotAuthorized,
			"payment method %s is not usable here", method)
	}

	if err := rd.CheckForUnread(); err != nil {
		return nil, err
	}

	return request, nil
}

// Root exposes the underlying document for verbatim re-embedding.
func (t *TransactionRequest) Root() *json.Reader {
	return t.root
}

// PaymentRequest returns the payment request at the bottom of the chain.
func (t *TransactionRequest) PaymentRequest() *PaymentRequest {
	return t.AuthorizationResponse.PaymentRequest()
}

// TestMode reports whether the chain was started in test mode.
func (t *TransactionRequest) TestMode() bool {
	return t.AuthorizationResponse.AuthorizationRequest.TestMode
}

// VerifyPayerProvider anchors the embedded provider signature in the
// caller's trust store.
func (t *TransactionRequest) VerifyPayerProvider(anchor *x509.Certificate) error {
	return t.AuthorizationResponse.Signature.VerifyTrust(anchor)
}
