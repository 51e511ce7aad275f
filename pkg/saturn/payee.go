/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import "github.com/webpki/saturn-go/pkg/doc/json"

// Payee identifies a merchant inside a payment request. The id is local to
// the payee's provider and resolved through the PayeeAuthority object.
type Payee struct {
	CommonName string
	ID         string
}

func writePayee(wr *json.Object, payee Payee) *json.Object {
	return wr.SetObject(payeeProperty, json.NewObject().
		SetString(commonNameProperty, payee.CommonName).
		SetString(idProperty, payee.ID))
}

func parsePayee(rd *json.Reader) (Payee, error) {
	var payee Payee

	sub, err := rd.GetObject(payeeProperty)
	if err != nil {
		return payee, err
	}

	if payee.CommonName, err = sub.GetString(commonNameProperty); err != nil {
		return payee, err
	}

	if payee.ID, err = sub.GetString(idProperty); err != nil {
		return payee, err
	}

	return payee, nil
}
