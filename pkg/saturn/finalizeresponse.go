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

// FinalizeResponseData is the acquirer input to EncodeFinalizeResponse.
type FinalizeResponseData struct {
	FinalizeRequest *FinalizeRequest
	LogData         string // optional
	ReferenceID     string
	TimeStamp       time.Time
	Software        Software
}

// EncodeFinalizeResponse builds the acquirer's signed capture receipt,
// re-embedding the finalize request verbatim.
func EncodeFinalizeResponse(data *FinalizeResponseData,
	signer *signatures.X509Signer) (*json.Object, error) {
	wr := CreateBaseMessage(MsgFinalizeResponse)

	wr.SetObject(MsgFinalizeRequest.EmbeddedName(), data.FinalizeRequest.Root().Object())

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

// FinalizeResponse is a decoded and verified finalize response.
type FinalizeResponse struct {
	FinalizeRequest *FinalizeRequest
	LogData         string
	ReferenceID     string
	TimeStamp       time.Time
	Software        Software
	Signature       *signatures.Decoded

	root *json.Reader
}

// ParseFinalizeResponse decodes a finalize response and verifies the whole
// embedded chain. The capture receipt must be signed by the same entity
// that signed the transaction receipt it finalizes.
func ParseFinalizeResponse(rd *json.Reader) (*FinalizeResponse, error) {
	if err := ParseBaseMessage(MsgFinalizeResponse, rd); err != nil {
		return nil, err
	}

	response := &FinalizeResponse{root: rd}

	requestRd, err := rd.GetObject(MsgFinalizeRequest.EmbeddedName())
	if err != nil {
		return nil, err
	}

	if response.FinalizeRequest, err = ParseFinalizeRequest(requestRd); err != nil {
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

	transactionSignature := response.FinalizeRequest.TransactionResponse.Signature
	if err := signatures.CompareCertificatePaths(response.Signature.CertificatePath,
		transactionSignature.CertificatePath); err != nil {
		return nil, integrityErrorf("capture receipt signer differs from transaction receipt signer: %v", err)
	}

	if err := rd.CheckForUnread(); err != nil {
		return nil, err
	}

	return response, nil
}

// Root exposes the underlying document.
func (f *FinalizeResponse) Root() *json.Reader {
	return f.root
}
