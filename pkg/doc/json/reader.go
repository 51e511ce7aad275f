/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package json

import (
	"encoding/base64"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Reader provides strict, read-tracked access to a parsed Object. Getters
// fail on missing properties or type mismatches, and every successful read
// marks its property. CheckForUnread then rejects any property anywhere in
// the tree that was never consumed, which closes the schema of each message
// type against injected or misspelled properties.
//
// Readers obtained for sub-objects share state with their parent, so nested
// reads propagate.
type Reader struct {
	obj *Object
}

// Object exposes the underlying ordered object, primarily so that a decoded
// message can be re-embedded verbatim inside another message.
func (r *Reader) Object() *Object {
	return r.obj
}

// Normalized serializes the underlying object canonically.
func (r *Reader) Normalized() ([]byte, error) {
	return r.obj.Normalized()
}

// HasProperty reports whether the named property is present. It does not
// mark the property as read.
func (r *Reader) HasProperty(name string) bool {
	return r.obj.find(name) != nil
}

func (r *Reader) get(name string, k kind, what string) (*property, error) {
	prop := r.obj.find(name)
	if prop == nil {
		return nil, schemaErrorf("missing property %q", name)
	}

	if prop.val.kind != k {
		return nil, schemaErrorf("property %q is not a %s", name, what)
	}

	prop.read = true

	return prop, nil
}

// GetString reads a required string property.
func (r *Reader) GetString(name string) (string, error) {
	prop, err := r.get(name, kindString, "string")
	if err != nil {
		return "", err
	}

	return prop.val.str, nil
}

// GetStringConditional reads an optional string property, returning the
// empty string when absent.
func (r *Reader) GetStringConditional(name string) (string, error) {
	if !r.HasProperty(name) {
		return "", nil
	}

	return r.GetString(name)
}

// GetInt reads a required integral number property.
func (r *Reader) GetInt(name string) (int, error) {
	v, err := r.GetInt64(name)

	return int(v), err
}

// GetInt64 reads a required integral number property.
func (r *Reader) GetInt64(name string) (int64, error) {
	prop, err := r.get(name, kindNumber, "number")
	if err != nil {
		return 0, err
	}

	v, err := strconv.ParseInt(prop.val.str, 10, 64)
	if err != nil {
		return 0, schemaErrorf("property %q is not an integer: %s", name, prop.val.str)
	}

	return v, nil
}

// GetBoolean reads a required boolean property.
func (r *Reader) GetBoolean(name string) (bool, error) {
	prop, err := r.get(name, kindBool, "boolean")
	if err != nil {
		return false, err
	}

	return prop.val.b, nil
}

// GetBooleanConditional reads an optional boolean property, defaulting to
// false when absent.
func (r *Reader) GetBooleanConditional(name string) (bool, error) {
	if !r.HasProperty(name) {
		return false, nil
	}

	return r.GetBoolean(name)
}

// GetBinary reads a required base64url-encoded binary property.
func (r *Reader) GetBinary(name string) ([]byte, error) {
	s, err := r.GetString(name)
	if err != nil {
		return nil, err
	}

	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, schemaErrorf("property %q is not valid base64url: %v", name, err)
	}

	return data, nil
}

// GetDateTime reads a required ISO 8601 date-time property.
func (r *Reader) GetDateTime(name string) (time.Time, error) {
	s, err := r.GetString(name)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, schemaErrorf("property %q is not a valid date-time: %s", name, s)
	}

	return t, nil
}

// GetMoney reads a fixed-point decimal amount that must carry exactly
// decimals fraction digits.
func (r *Reader) GetMoney(name string, decimals int32) (decimal.Decimal, error) {
	s, err := r.GetString(name)
	if err != nil {
		return decimal.Decimal{}, err
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, schemaErrorf("property %q is not a valid amount: %s", name, s)
	}

	if amount.Exponent() != -decimals {
		return decimal.Decimal{}, schemaErrorf("property %q must have %d decimals: %s", name, decimals, s)
	}

	return amount, nil
}

// GetObject reads a required sub-object property and returns a Reader that
// shares read-tracking with this one.
func (r *Reader) GetObject(name string) (*Reader, error) {
	prop, err := r.get(name, kindObject, "object")
	if err != nil {
		return nil, err
	}

	return &Reader{obj: prop.val.obj}, nil
}

// GetArray reads a required array property.
func (r *Reader) GetArray(name string) (*ArrayReader, error) {
	prop, err := r.get(name, kindArray, "array")
	if err != nil {
		return nil, err
	}

	return &ArrayReader{name: name, elems: prop.val.arr}, nil
}

// GetStringArray reads a required array-of-strings property.
func (r *Reader) GetStringArray(name string) ([]string, error) {
	arr, err := r.GetArray(name)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(arr.elems))

	for arr.HasMore() {
		s, err := arr.GetString()
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}

// GetStringArrayConditional reads an optional array-of-strings property,
// returning nil when absent.
func (r *Reader) GetStringArrayConditional(name string) ([]string, error) {
	if !r.HasProperty(name) {
		return nil, nil
	}

	return r.GetStringArray(name)
}

// ScanAway marks a property and everything beneath it as read without
// interpreting it. Used for opaque extension data a decoder carries along.
func (r *Reader) ScanAway(name string) error {
	prop := r.obj.find(name)
	if prop == nil {
		return schemaErrorf("missing property %q", name)
	}

	prop.read = true
	markValueRead(prop.val)

	return nil
}

// ScanAwayAll marks every property of this object and below as read. Used
// once a sub-object has been consumed wholesale, such as a JWK handed to the
// key parser.
func (r *Reader) ScanAwayAll() {
	for i := range r.obj.properties {
		r.obj.properties[i].read = true
		markValueRead(r.obj.properties[i].val)
	}
}

// CheckForUnread fails if any property in this object or below was never
// consumed by the decoder. Every message decoder must call it last.
func (r *Reader) CheckForUnread() error {
	return checkObjectRead(r.obj, "")
}

func checkObjectRead(o *Object, path string) error {
	for i := range o.properties {
		prop := &o.properties[i]
		name := prop.name

		if path != "" {
			name = path + "." + name
		}

		if !prop.read {
			return schemaErrorf("unread property %q", name)
		}

		if err := checkValueRead(prop.val, name); err != nil {
			return err
		}
	}

	return nil
}

func checkValueRead(v value, path string) error {
	switch v.kind {
	case kindObject:
		return checkObjectRead(v.obj, path)
	case kindArray:
		for _, elem := range v.arr {
			if err := checkValueRead(elem, path); err != nil {
				return err
			}
		}
	}

	return nil
}

func markValueRead(v value) {
	switch v.kind {
	case kindObject:
		for i := range v.obj.properties {
			v.obj.properties[i].read = true
			markValueRead(v.obj.properties[i].val)
		}
	case kindArray:
		for _, elem := range v.arr {
			markValueRead(elem)
		}
	}
}

// ArrayReader iterates the elements of an array property in document order.
type ArrayReader struct {
	name  string
	elems []value
	next  int
}

// HasMore reports whether elements remain.
func (a *ArrayReader) HasMore() bool {
	return a.next < len(a.elems)
}

func (a *ArrayReader) take(k kind, what string) (value, error) {
	if !a.HasMore() {
		return value{}, schemaErrorf("array %q exhausted", a.name)
	}

	elem := a.elems[a.next]
	if elem.kind != k {
		return value{}, schemaErrorf("array %q element %d is not a %s", a.name, a.next, what)
	}

	a.next++

	return elem, nil
}

// GetString reads the next element as a string.
func (a *ArrayReader) GetString() (string, error) {
	elem, err := a.take(kindString, "string")
	if err != nil {
		return "", err
	}

	return elem.str, nil
}

// GetBinary reads the next element as base64url binary.
func (a *ArrayReader) GetBinary() ([]byte, error) {
	s, err := a.GetString()
	if err != nil {
		return nil, err
	}

	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, schemaErrorf("array %q element is not valid base64url: %v", a.name, err)
	}

	return data, nil
}

// GetObject reads the next element as an object.
func (a *ArrayReader) GetObject() (*Reader, error) {
	elem, err := a.take(kindObject, "object")
	if err != nil {
		return nil, err
	}

	return &Reader{obj: elem.obj}, nil
}
