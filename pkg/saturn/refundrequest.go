/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"crypto"
	"time"

	"github.com/shopspring/decimal"

	"github.com/webpki/saturn-go/pkg/crypto/keys"
	"github.com/webpki/saturn-go/pkg/crypto/signatures"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// RefundRequestData is the payee input to EncodeRefundRequest.
type RefundRequestData struct {
	AuthorizationResponse *AuthorizationResponse
	RecipientURL          string

	// Amount is the amount to return. It may be lower than the original
	// payment but never higher.
	Amount decimal.Decimal

	ReferenceID string
	TimeStamp   time.Time
	Software    Software
}

// EncodeRefundRequest builds the payee's signed request to return money for
// an earlier payment, re-embedding the provider's authorization verbatim.
func EncodeRefundRequest(data *RefundRequestData,
	signer *signatures.KeySigner) (*json.Object, error) {
	wr := CreateBaseMessage(MsgRefundRequest)

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

// RefundRequest is a decoded and verified refund request.
type RefundRequest struct {
	AuthorizationResponse *AuthorizationResponse
	RecipientURL          string
	Amount                decimal.Decimal
	ReferenceID           string
	TimeStamp             time.Time
	Software              Software
	PublicKey             crypto.PublicKey

	root *json.Reader
}

// ParseRefundRequest decodes a refund request and verifies the whole
// embedded chain. Refunds above the original amount are refused and the
// signature key must be the payee key of the original payment request.
func ParseRefundRequest(rd *json.Reader) (*RefundRequest, error) {
	if err := ParseBaseMessage(MsgRefundRequest, rd); err != nil {
		return nil, err
	}

	request := &RefundRequest{root: rd}

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
			"refund amount %s exceeds the paid amount %s",
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
		return nil, integrityErrorf("refund request signed with a different key than the payment request")
	}

	if err := rd.CheckForUnread(); err != nil {
		return nil, err
	}

	return request, nil
}

// Root exposes the underlying document for verbatim re-embedding.
func (r *RefundRequest) Root() *json.Reader {
	return r.root
}

// PaymentRequest returns the payment request at the bottom of the chain.
func (r *RefundRequest) PaymentRequest() *PaymentRequest {
	return r.AuthorizationResponse.PaymentRequest()
}
