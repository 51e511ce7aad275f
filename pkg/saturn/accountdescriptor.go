/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import "github.com/webpki/saturn-go/pkg/doc/json"

// AccountDescriptor identifies a payer or payee account within a payment
// network. Up to three free-form fields carry network specific data such as
// card expiry components.
type AccountDescriptor struct {
	TypeURI string
	ID      string
	Fields  []string // at most three
}

const maxAccountFields = 3

var accountFieldProperties = []string{field1Property, field2Property, field3Property}

func accountDescriptorObject(account AccountDescriptor) (*json.Object, error) {
	if len(account.Fields) > maxAccountFields {
		return nil, json.NewSchemaError("too many account fields: %d", len(account.Fields))
	}

	sub := json.NewObject().
		SetString(typeProperty, account.TypeURI).
		SetString(idProperty, account.ID)

	for i, field := range account.Fields {
		sub.SetString(accountFieldProperties[i], field)
	}

	return sub, sub.Err()
}

func writeAccountDescriptor(wr *json.Object, name string, account AccountDescriptor) error {
	sub, err := accountDescriptorObject(account)
	if err != nil {
		return err
	}

	wr.SetObject(name, sub)

	return wr.Err()
}

func parseAccountDescriptor(rd *json.Reader, name string) (AccountDescriptor, error) {
	var account AccountDescriptor

	sub, err := rd.GetObject(name)
	if err != nil {
		return account, err
	}

	if account.TypeURI, err = sub.GetString(typeProperty); err != nil {
		return account, err
	}

	if account.ID, err = sub.GetString(idProperty); err != nil {
		return account, err
	}

	for _, fieldProperty := range accountFieldProperties {
		if !sub.HasProperty(fieldProperty) {
			break
		}

		field, err := sub.GetString(fieldProperty)
		if err != nil {
			return account, err
		}

		account.Fields = append(account.Fields, field)
	}

	return account, nil
}
