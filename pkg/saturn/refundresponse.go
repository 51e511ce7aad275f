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

// RefundResponseData is the provider input to EncodeRefundResponse.
type RefundResponseData struct {
	RefundRequest *RefundRequest
	LogData       string // optional
	ReferenceID   string
	TimeStamp     time.Time
	Software      Software
}

// EncodeRefundResponse builds the provider's signed receipt for an executed
// refund, re-embedding the refund request verbatim.
func EncodeRefundResponse(data *RefundResponseData,
	signer *signatures.X509Signer) (*json.Object, error) {
	wr := CreateBaseMessage(MsgRefundResponse)

	wr.SetObject(MsgRefundRequest.EmbeddedName(), data.RefundRequest.Root().Object())

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

// RefundResponse is a decoded and verified refund response.
type RefundResponse struct {
	RefundRequest *RefundRequest
	LogData       string
	ReferenceID   string
	TimeStamp     time.Time
	Software      Software
	Signature     *signatures.Decoded

	root *json.Reader
}

// ParseRefundResponse decodes a refund response and verifies the whole
// embedded chain.
func ParseRefundResponse(rd *json.Reader) (*RefundResponse, error) {
	if err := ParseBaseMessage(MsgRefundResponse, rd); err != nil {
		return nil, err
	}

	response := &RefundResponse{root: rd}

	requestRd, err := rd.GetObject(MsgRefundRequest.EmbeddedName())
	if err != nil {
		return nil, err
	}

	if response.RefundRequest, err = ParseRefundRequest(requestRd); err != nil {
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

// Root exposes the underlying document.
func (r *RefundResponse) Root() *json.Reader {
	return r.root
}
