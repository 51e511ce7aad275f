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

// FinalizeRequestData is the payee input to EncodeFinalizeRequest.
type FinalizeRequestData struct {
	TransactionResponse *TransactionResponse

	// Amount is the final amount to capture. It may be lower than the
	// transaction amount but never higher.
	Amount decimal.Decimal

	ReferenceID string
	TimeStamp   time.Time
	Software    Software
}

// EncodeFinalizeRequest builds the payee's signed capture request for a
// previously reserved card payment, re-embedding the transaction receipt
// verbatim.
func EncodeFinalizeRequest(data *FinalizeRequestData,
	signer *signatures.KeySigner) (*json.Object, error) {
	wr := CreateBaseMessage(MsgFinalizeRequest)

	currency := data.TransactionResponse.PaymentRequest().Currency

	wr.SetObject(MsgTransactionResponse.EmbeddedName(), data.TransactionResponse.Root().Object()).
		SetMoney(amountProperty, data.Amount, currency.Decimals()).
		SetString(referenceIDProperty, data.ReferenceID).
		SetDateTime(timeStampProperty, data.TimeStamp, false)

	writeSoftware(wr, data.Software)

	if err := signatures.Sign(wr, requestSignatureProperty, signer); err != nil {
		return nil, err
	}

	return wr, nil
}

// FinalizeRequest is a decoded and verified finalize request.
type FinalizeRequest struct {
	TransactionResponse *TransactionResponse
	Amount              decimal.Decimal
	ReferenceID         string
	TimeStamp           time.Time
	Software            Software
	PublicKey           crypto.PublicKey

	root *json.Reader
}

// ParseFinalizeRequest decodes a finalize request and verifies the whole
// embedded chain. Captures above the transaction amount are refused and the
// signature key must be the payee key of the original payment request.
func ParseFinalizeRequest(rd *json.Reader) (*FinalizeRequest, error) {
	if err := ParseBaseMessage(MsgFinalizeRequest, rd); err != nil {
		return nil, err
	}

	request := &FinalizeRequest{root: rd}

	responseRd, err := rd.GetObject(MsgTransactionResponse.EmbeddedName())
	if err != nil {
		return nil, err
	}

	if request.TransactionResponse, err = ParseTransactionResponse(responseRd); err != nil {
		return nil, err
	}

	paymentRequest := request.TransactionResponse.PaymentRequest()

	if request.Amount, err = rd.GetMoney(amountProperty,
		paymentRequest.Currency.Decimals()); err != nil {
		return nil, err
	}

	transactionAmount := request.TransactionResponse.TransactionRequest.Amount
	if request.Amount.GreaterThan(transactionAmount) {
		return nil, businessErrorf(ErrNotAuthorized,
			"capture amount %s exceeds the transaction amount %s",
			request.Amount, transactionAmount)
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
		return nil, integrityErrorf("finalize request signed with a different key than the payment request")
	}

	if err := rd.CheckForUnread(); err != nil {
		return nil, err
	}

	return request, nil
}

// Root exposes the underlying document for verbatim re-embedding.
func (f *FinalizeRequest) Root() *json.Reader {
	return f.root
}

// PaymentRequest returns the payment request at the bottom of the chain.
func (f *FinalizeRequest) PaymentRequest() *PaymentRequest {
	return f.TransactionResponse.PaymentRequest()
}
