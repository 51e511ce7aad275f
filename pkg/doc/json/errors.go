/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package json

import "fmt"

// SchemaError signals that a document violates the closed schema of the
// message being decoded: a missing or mistyped property, a malformed value,
// a duplicate, or a property left unread at the end of a decode.
type SchemaError struct {
	msg string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return e.msg
}

// NewSchemaError creates a SchemaError with a formatted message. It is used
// by decoders layered on this package to report schema-level faults of their
// own, such as a constant property carrying the wrong value.
func NewSchemaError(format string, args ...interface{}) error {
	return &SchemaError{msg: fmt.Sprintf(format, args...)}
}

func schemaErrorf(format string, args ...interface{}) error {
	return NewSchemaError(format, args...)
}
