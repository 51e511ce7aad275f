/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package json implements the ordered JSON object model the Saturn wire
// format is defined over: properties serialize in the exact order they were
// written (or parsed), normalized output is byte-deterministic so hashes and
// signatures can be computed over it, and every property read during decoding
// is tracked so that leftover properties can be rejected.
package json

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type kind int

const (
	kindString kind = iota
	kindNumber
	kindBool
	kindNull
	kindObject
	kindArray
)

type value struct {
	kind kind
	str  string // string payload, or the raw number literal
	b    bool
	obj  *Object
	arr  []value
}

type property struct {
	name string
	val  value
	read bool
}

// Object is an insertion-ordered JSON object. It serves both as the writer
// side (message encoders add properties one by one) and as the parse result
// (see Parse), in which case property order is the document order.
//
// Writer methods are chainable; the first failure (such as a duplicate
// property) is latched and surfaces when the object is serialized or signed.
type Object struct {
	properties []property
	firstErr   error
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{}
}

// Err returns the first error recorded by a writer method, if any.
func (o *Object) Err() error {
	return o.firstErr
}

func (o *Object) fail(err error) *Object {
	if o.firstErr == nil {
		o.firstErr = err
	}

	return o
}

func (o *Object) find(name string) *property {
	for i := range o.properties {
		if o.properties[i].name == name {
			return &o.properties[i]
		}
	}

	return nil
}

func (o *Object) add(name string, val value) *Object {
	if o.find(name) != nil {
		return o.fail(schemaErrorf("property %q already defined", name))
	}

	o.properties = append(o.properties, property{name: name, val: val})

	return o
}

// SetString adds a string property.
func (o *Object) SetString(name, v string) *Object {
	return o.add(name, value{kind: kindString, str: v})
}

// SetInt adds an integral number property.
func (o *Object) SetInt(name string, v int) *Object {
	return o.SetInt64(name, int64(v))
}

// SetInt64 adds an integral number property.
func (o *Object) SetInt64(name string, v int64) *Object {
	return o.add(name, value{kind: kindNumber, str: strconv.FormatInt(v, 10)})
}

// SetBoolean adds a boolean property.
func (o *Object) SetBoolean(name string, v bool) *Object {
	return o.add(name, value{kind: kindBool, b: v})
}

// SetBinary adds a binary property encoded as base64url without padding.
func (o *Object) SetBinary(name string, v []byte) *Object {
	return o.SetString(name, base64.RawURLEncoding.EncodeToString(v))
}

// SetDateTime adds an ISO 8601 date-time property with second granularity.
// When utc is true the value is forced to the Z zone designator.
func (o *Object) SetDateTime(name string, t time.Time, utc bool) *Object {
	if utc {
		t = t.UTC()
	}

	return o.SetString(name, t.Truncate(time.Second).Format(time.RFC3339))
}

// SetMoney adds a fixed-point decimal amount serialized as a JSON string
// with exactly decimals fraction digits.
func (o *Object) SetMoney(name string, amount decimal.Decimal, decimals int32) *Object {
	return o.SetString(name, amount.StringFixed(decimals))
}

// SetObject adds a sub-object property. The sub-object is embedded as-is,
// which keeps re-embedded (already decoded) messages byte-exact under
// normalized serialization.
func (o *Object) SetObject(name string, sub *Object) *Object {
	if sub == nil {
		return o.fail(schemaErrorf("nil sub-object for property %q", name))
	}

	if sub.firstErr != nil {
		return o.fail(sub.firstErr)
	}

	return o.add(name, value{kind: kindObject, obj: sub})
}

// SetStringArray adds an array-of-strings property.
func (o *Object) SetStringArray(name string, v []string) *Object {
	arr := make([]value, 0, len(v))
	for _, s := range v {
		arr = append(arr, value{kind: kindString, str: s})
	}

	return o.add(name, value{kind: kindArray, arr: arr})
}

// SetBinaryArray adds an array of base64url-encoded binary values.
func (o *Object) SetBinaryArray(name string, v [][]byte) *Object {
	arr := make([]value, 0, len(v))
	for _, b := range v {
		arr = append(arr, value{kind: kindString, str: base64.RawURLEncoding.EncodeToString(b)})
	}

	return o.add(name, value{kind: kindArray, arr: arr})
}

// SetObjectArray adds an array-of-objects property.
func (o *Object) SetObjectArray(name string, objs []*Object) *Object {
	arr := make([]value, 0, len(objs))

	for _, sub := range objs {
		if sub == nil {
			return o.fail(schemaErrorf("nil element in array property %q", name))
		}

		if sub.firstErr != nil {
			return o.fail(sub.firstErr)
		}

		arr = append(arr, value{kind: kindObject, obj: sub})
	}

	return o.add(name, value{kind: kindArray, arr: arr})
}

// Remove detaches a property and returns whether it was present. It exists
// for the signature scheme, which serializes a document with the signature
// value property removed.
func (o *Object) Remove(name string) bool {
	for i := range o.properties {
		if o.properties[i].name == name {
			o.properties = append(o.properties[:i], o.properties[i+1:]...)
			return true
		}
	}

	return false
}

func (v value) String() string {
	switch v.kind {
	case kindString:
		return v.str
	case kindNumber:
		return v.str
	case kindBool:
		return strconv.FormatBool(v.b)
	case kindNull:
		return "null"
	default:
		return fmt.Sprintf("<%d>", v.kind)
	}
}
