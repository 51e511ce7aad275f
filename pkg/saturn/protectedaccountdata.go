/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"strings"
	"time"

	"github.com/webpki/saturn-go/pkg/doc/json"
)

// ProtectedAccountData is the account information a provider discloses to an
// acquirer, always transported inside an encrypted envelope and never in
// clear.
type ProtectedAccountData struct {
	Account       AccountDescriptor
	AccountHolder string
	Expires       time.Time
	SecurityCode  string
}

// Encode serializes the protected account data. The caller encrypts the
// result before embedding it in a message.
func (p *ProtectedAccountData) Encode() (*json.Object, error) {
	wr := json.NewObject()

	if err := writeAccountDescriptor(wr, payerAccountProperty, p.Account); err != nil {
		return nil, err
	}

	wr.SetString(accountHolderProperty, p.AccountHolder).
		SetDateTime(expiresProperty, p.Expires, true).
		SetString(accountSecurityCodeProperty, p.SecurityCode)

	if err := wr.Err(); err != nil {
		return nil, err
	}

	return wr, nil
}

// ParseProtectedAccountData decodes a decrypted account data object.
func ParseProtectedAccountData(rd *json.Reader) (*ProtectedAccountData, error) {
	data := &ProtectedAccountData{}

	var err error

	if data.Account, err = parseAccountDescriptor(rd, payerAccountProperty); err != nil {
		return nil, err
	}

	if data.AccountHolder, err = rd.GetString(accountHolderProperty); err != nil {
		return nil, err
	}

	if data.Expires, err = rd.GetDateTime(expiresProperty); err != nil {
		return nil, err
	}

	if data.SecurityCode, err = rd.GetString(accountSecurityCodeProperty); err != nil {
		return nil, err
	}

	if err := rd.CheckForUnread(); err != nil {
		return nil, err
	}

	return data, nil
}

// FormatCardNumber renders a card number in groups of four digits for
// receipts and logs.
func FormatCardNumber(number string) string {
	var out strings.Builder

	for i, r := range number {
		if i > 0 && i%4 == 0 {
			out.WriteByte(' ')
		}

		out.WriteRune(r)
	}

	return out.String()
}
