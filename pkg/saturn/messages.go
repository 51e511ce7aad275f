/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// Message identifies a Saturn message type. The message qualifier is the
// second envelope property of every Saturn object on the wire.
type Message int

// The Saturn message set.
const (
	MsgAuthorizationRequest Message = iota
	MsgAuthorizationResponse
	MsgTransactionRequest
	MsgTransactionResponse
	MsgRefundRequest
	MsgRefundResponse
	MsgFinalizeRequest
	MsgFinalizeResponse
	MsgProviderAuthority
	MsgPayeeAuthority
)

var messageQualifiers = map[Message]string{
	MsgAuthorizationRequest:  "AuthorizationRequest",
	MsgAuthorizationResponse: "AuthorizationResponse",
	MsgTransactionRequest:    "TransactionRequest",
	MsgTransactionResponse:   "TransactionResponse",
	MsgRefundRequest:         "RefundRequest",
	MsgRefundResponse:        "RefundResponse",
	MsgFinalizeRequest:       "FinalizeRequest",
	MsgFinalizeResponse:      "FinalizeResponse",
	MsgProviderAuthority:     "ProviderAuthority",
	MsgPayeeAuthority:        "PayeeAuthority",
}

// Qualifier returns the wire qualifier tag of the message.
func (m Message) Qualifier() string {
	return messageQualifiers[m]
}

func (m Message) String() string {
	return m.Qualifier()
}

// EmbeddedName returns the property name under which a counter-signed copy of
// this message is embedded in a successor message. It is the qualifier with a
// lower-case initial.
func (m Message) EmbeddedName() string {
	q := m.Qualifier()

	return string(q[0]|0x20) + q[1:]
}

// CreateBaseMessage returns a fresh object holding the Saturn envelope
// properties for the given message type. Message body properties are appended
// by the caller.
func CreateBaseMessage(message Message) *json.Object {
	return json.NewObject().
		SetString(contextProperty, ContextURI).
		SetString(qualifierProperty, message.Qualifier())
}

// ParseBaseMessage consumes and validates the envelope properties of rd,
// requiring the qualifier to match the expected message type.
func ParseBaseMessage(expected Message, rd *json.Reader) error {
	context, err := rd.GetString(contextProperty)
	if err != nil {
		return err
	}

	if context != ContextURI {
		return json.NewSchemaError("unknown context: %s", context)
	}

	qualifier, err := rd.GetString(qualifierProperty)
	if err != nil {
		return err
	}

	if qualifier != expected.Qualifier() {
		return json.NewSchemaError("expected qualifier %s but got: %s", expected.Qualifier(), qualifier)
	}

	return nil
}

// ParseAnyBaseMessage consumes and validates the envelope properties of rd,
// accepting any of the given message types and returning the one that
// matched. Endpoints serving more than one message type dispatch on the
// result.
func ParseAnyBaseMessage(rd *json.Reader, accepted ...Message) (Message, error) {
	context, err := rd.GetString(contextProperty)
	if err != nil {
		return 0, err
	}

	if context != ContextURI {
		return 0, json.NewSchemaError("unknown context: %s", context)
	}

	qualifier, err := rd.GetString(qualifierProperty)
	if err != nil {
		return 0, err
	}

	for _, message := range accepted {
		if qualifier == message.Qualifier() {
			return message, nil
		}
	}

	return 0, json.NewSchemaError("unexpected qualifier: %s", qualifier)
}
