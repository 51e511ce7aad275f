/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"errors"
	"fmt"
	"net"

	"github.com/webpki/saturn-go/pkg/crypto/hybrid"
	"github.com/webpki/saturn-go/pkg/crypto/signatures"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// ErrorCode enumerates the closed set of business-level rejection codes a
// provider may return. The set is part of the wire contract.
type ErrorCode int

// The business rejection codes.
const (
	ErrInsufficientFunds ErrorCode = iota
	ErrExpiredCredential
	ErrExpiredReservation
	ErrBlockedAccount
	ErrNotAuthorized
	ErrOtherError
)

var errorCodeIDs = map[ErrorCode]string{
	ErrInsufficientFunds:  "INSUFFICIENT_FUNDS",
	ErrExpiredCredential:  "EXPIRED_CREDENTIAL",
	ErrExpiredReservation: "EXPIRED_RESERVATION",
	ErrBlockedAccount:     "BLOCKED_ACCOUNT",
	ErrNotAuthorized:      "NOT_AUTHORIZED",
	ErrOtherError:         "OTHER_ERROR",
}

// ID returns the wire identifier of the error code.
func (c ErrorCode) ID() string {
	return errorCodeIDs[c]
}

// ErrorCodeFromID maps a wire identifier back to an ErrorCode.
func ErrorCodeFromID(id string) (ErrorCode, error) {
	for code, codeID := range errorCodeIDs {
		if codeID == id {
			return code, nil
		}
	}

	return 0, json.NewSchemaError("unknown error code: %s", id)
}

// BusinessError is a payment-level rejection: the message itself was valid
// but a business rule refused the operation.
type BusinessError struct {
	Code        ErrorCode
	Description string
}

// Error implements the error interface.
func (e *BusinessError) Error() string {
	if e.Description == "" {
		return e.Code.ID()
	}

	return fmt.Sprintf("%s: %s", e.Code.ID(), e.Description)
}

func businessErrorf(code ErrorCode, format string, args ...interface{}) error {
	return &BusinessError{Code: code, Description: fmt.Sprintf(format, args...)}
}

// IntegrityError signals that a cryptographic cross-check between message
// layers failed: a request hash that does not match the object it claims to
// bind, or a signature key that differs from the key an earlier message in
// the chain was signed with.
type IntegrityError struct {
	msg string
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	return e.msg
}

func integrityErrorf(format string, args ...interface{}) error {
	return &IntegrityError{msg: fmt.Sprintf(format, args...)}
}

// TransientError wraps a network or I/O level failure. Callers fetching
// authority objects wrap their transport errors in this type so that
// Classify can separate retryable faults from protocol faults.
type TransientError struct {
	Err error
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the underlying transport error.
func (e *TransientError) Unwrap() error {
	return e.Err
}

// ErrorKind is the coarse classification of a decode or processing failure.
type ErrorKind int

// The failure classes.
const (
	// SchemaFault covers malformed or unexpected message content.
	SchemaFault ErrorKind = iota
	// CryptoFault covers signature, decryption and hash binding failures.
	CryptoFault
	// BusinessFault covers valid messages refused by a business rule.
	BusinessFault
	// IOFault covers network and I/O level failures.
	IOFault
	// UnknownFault is everything else.
	UnknownFault
)

// Classify maps an error returned by this package to its failure class.
// Handlers use it to decide between a protocol-level rejection, a signed
// business rejection, and a retry.
func Classify(err error) ErrorKind {
	var (
		schemaErr    *json.SchemaError
		verifyErr    *signatures.VerificationError
		authErr      *hybrid.AuthenticationError
		integrityErr *IntegrityError
		businessErr  *BusinessError
		transientErr *TransientError
		netErr       net.Error
	)

	switch {
	case errors.As(err, &schemaErr):
		return SchemaFault
	case errors.As(err, &verifyErr), errors.As(err, &authErr), errors.As(err, &integrityErr),
		errors.Is(err, hybrid.ErrNoMatchingKey), errors.Is(err, hybrid.ErrKeyAlgorithmMismatch):
		return CryptoFault
	case errors.As(err, &businessErr):
		return BusinessFault
	case errors.As(err, &transientErr), errors.As(err, &netErr):
		return IOFault
	default:
		return UnknownFault
	}
}
