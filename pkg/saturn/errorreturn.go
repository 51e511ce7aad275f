/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import "github.com/webpki/saturn-go/pkg/doc/json"

// ErrorReturn is a structured business rejection carried back to the payee
// instead of a success message body.
type ErrorReturn struct {
	Code        ErrorCode
	Description string
}

// Encode serializes the rejection.
func (e *ErrorReturn) Encode() (*json.Object, error) {
	wr := json.NewObject().SetString(errorCodeProperty, e.Code.ID())

	if e.Description != "" {
		wr.SetString(descriptionProperty, e.Description)
	}

	if err := wr.Err(); err != nil {
		return nil, err
	}

	return wr, nil
}

// ParseErrorReturn decodes a structured rejection.
func ParseErrorReturn(rd *json.Reader) (*ErrorReturn, error) {
	codeID, err := rd.GetString(errorCodeProperty)
	if err != nil {
		return nil, err
	}

	code, err := ErrorCodeFromID(codeID)
	if err != nil {
		return nil, err
	}

	description, err := rd.GetStringConditional(descriptionProperty)
	if err != nil {
		return nil, err
	}

	if err := rd.CheckForUnread(); err != nil {
		return nil, err
	}

	return &ErrorReturn{Code: code, Description: description}, nil
}

// AsError converts the rejection to a BusinessError for classification.
func (e *ErrorReturn) AsError() error {
	return &BusinessError{Code: e.Code, Description: e.Description}
}
