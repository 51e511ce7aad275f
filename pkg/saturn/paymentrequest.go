/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"crypto"
	"time"

	"github.com/shopspring/decimal"

	"github.com/webpki/saturn-go/pkg/crypto/signatures"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// PaymentRequestData is the payee input to EncodePaymentRequest.
type PaymentRequestData struct {
	Payee            Payee
	Amount           decimal.Decimal
	Currency         Currency
	NonDirectPayment *NonDirectPayment
	ReferenceID      string
	TimeStamp        time.Time
	Expires          time.Time
	Software         Software
}

// EncodePaymentRequest builds and signs the payee's payment request, the
// anchor object the rest of the authorization chain binds to by hash.
func EncodePaymentRequest(data *PaymentRequestData, signer *signatures.KeySigner) (*json.Object, error) {
	wr := json.NewObject()

	writePayee(wr, data.Payee)

	wr.SetMoney(amountProperty, data.Amount, data.Currency.Decimals()).
		SetString(currencyProperty, data.Currency.Code())

	if data.NonDirectPayment != nil {
		if err := writeNonDirectPayment(wr, data.NonDirectPayment); err != nil {
			return nil, err
		}
	}

	wr.SetString(referenceIDProperty, data.ReferenceID).
		SetDateTime(timeStampProperty, data.TimeStamp, false).
		SetDateTime(expiresProperty, data.Expires, true)

	writeSoftware(wr, data.Software)

	if err := signatures.Sign(wr, requestSignatureProperty, signer); err != nil {
		return nil, err
	}

	return wr, nil
}

// PaymentRequest is a decoded, signature-verified payment request.
type PaymentRequest struct {
	Payee            Payee
	Amount           decimal.Decimal
	Currency         Currency
	NonDirectPayment *NonDirectPayment
	ReferenceID      string
	TimeStamp        time.Time
	Expires          time.Time
	Software         Software

	// PublicKey is the verified payee signature key. Successor messages in
	// the chain must be signed with this very key.
	PublicKey crypto.PublicKey

	// Signature is the full decoded signature, for checking the key and
	// algorithm against the payee's enrolled signature parameters.
	Signature *signatures.Decoded

	root *json.Reader
}

// ParsePaymentRequest decodes and verifies a payment request from rd, which
// may be a top level document or an embedded sub-object.
func ParsePaymentRequest(rd *json.Reader) (*PaymentRequest, error) {
	request := &PaymentRequest{root: rd}

	var err error

	if request.Payee, err = parsePayee(rd); err != nil {
		return nil, err
	}

	// The currency decides how many decimals the amount must carry, so it
	// is read first even though it follows the amount on the wire.
	currencyCode, err := rd.GetString(currencyProperty)
	if err != nil {
		return nil, err
	}

	if request.Currency, err = CurrencyFromCode(currencyCode); err != nil {
		return nil, err
	}

	if request.Amount, err = rd.GetMoney(amountProperty, request.Currency.Decimals()); err != nil {
		return nil, err
	}

	if request.NonDirectPayment, err = parseNonDirectPayment(rd); err != nil {
		return nil, err
	}

	if request.ReferenceID, err = rd.GetString(referenceIDProperty); err != nil {
		return nil, err
	}

	if request.TimeStamp, err = rd.GetDateTime(timeStampProperty); err != nil {
		return nil, err
	}

	if request.Expires, err = rd.GetDateTime(expiresProperty); err != nil {
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
	request.Signature = decoded

	if err := rd.CheckForUnread(); err != nil {
		return nil, err
	}

	return request, nil
}

// Root exposes the underlying document so the request can be re-embedded
// verbatim or hashed.
func (p *PaymentRequest) Root() *json.Reader {
	return p.root
}

// RequestHash computes the digest that binds later chain objects to this
// request.
func (p *PaymentRequest) RequestHash() ([]byte, error) {
	return HashNormalized(p.root.Object())
}

// ConsistencyCheck verifies that another decoded copy of the request, found
// in a parallel message, is byte-equivalent to this one.
func (p *PaymentRequest) ConsistencyCheck(other *PaymentRequest) error {
	ours, err := p.RequestHash()
	if err != nil {
		return err
	}

	theirs, err := other.RequestHash()
	if err != nil {
		return err
	}

	if !hashEqual(ours, theirs) {
		return integrityErrorf("payment request mismatch for reference id: %s", p.ReferenceID)
	}

	return nil
}
