/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"time"

	"github.com/webpki/saturn-go/pkg/crypto/signatures"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// TransactionResponseData is the acquirer or provider input to
// EncodeTransactionResponse.
type TransactionResponseData struct {
	TransactionRequest *TransactionRequest
	LogData            string // optional
	ReferenceID        string
	TimeStamp          time.Time
	Software           Software
}

// EncodeTransactionResponse builds the signed receipt for an executed
// transaction, re-embedding the transaction request verbatim.
func EncodeTransactionResponse(data *TransactionResponseData,
	signer *signatures.X509Signer) (*json.Object, error) {
	wr := CreateBaseMessage(MsgTransactionResponse)

	wr.SetObject(MsgTransactionRequest.EmbeddedName(), data.TransactionRequest.Root().Object())

	if data.LogData != "" {
		wr.SetString(logDataProperty, data.LogData)
	}

	wr.SetString(referenceIDProperty, data.ReferenceID).
		SetDateTime(timeStampProperty, data.TimeStamp, false)

	writeSoftware(wr, data.Software)

	if err := signatures.Sign(wr, issuerSignatureProperty, signer); err != nil {
		return nil, err
	}

	return wr, nil
}

// TransactionResponse is a decoded and verified transaction response.
type TransactionResponse struct {
	TransactionRequest *TransactionRequest
	LogData            string
	ReferenceID        string
	TimeStamp          time.Time
	Software           Software
	Signature          *signatures.Decoded

	root *json.Reader
}

// ParseTransactionResponse decodes a transaction response and verifies the
// whole embedded chain.
func ParseTransactionResponse(rd *json.Reader) (*TransactionResponse, error) {
	if err := ParseBaseMessage(MsgTransactionResponse, rd); err != nil {
		return nil, err
	}

	response := &TransactionResponse{root: rd}

	requestRd, err := rd.GetObject(MsgTransactionRequest.EmbeddedName())
	if err != nil {
		return nil, err
	}

	if response.TransactionRequest, err = ParseTransactionRequest(requestRd, nil); err != nil {
		return nil, err
	}

	if response.LogData, err = rd.GetStringConditional(logDataProperty); err != nil {
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
func (t *TransactionResponse) Root() *json.Reader {
	return t.root
}

// PaymentRequest returns the payment request at the bottom of the chain.
func (t *TransactionResponse) PaymentRequest() *PaymentRequest {
	return t.TransactionRequest.PaymentRequest()
}
