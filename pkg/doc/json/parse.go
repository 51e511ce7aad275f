/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package json

import (
	"bytes"
	stdjson "encoding/json"
	"io"
)

// Parse reads a JSON document into a Reader. The document must be a single
// JSON object; property order is preserved, duplicate properties are
// rejected, and number literals are kept verbatim so re-serialization is
// byte-deterministic.
func Parse(data []byte) (*Reader, error) {
	dec := stdjson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, schemaErrorf("malformed JSON: %v", err)
	}

	if delim, ok := tok.(stdjson.Delim); !ok || delim != '{' {
		return nil, schemaErrorf("top-level JSON item must be an object")
	}

	obj, err := parseObject(dec)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, schemaErrorf("trailing data after JSON object")
	}

	return &Reader{obj: obj}, nil
}

func parseObject(dec *stdjson.Decoder) (*Object, error) {
	obj := NewObject()

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, schemaErrorf("malformed JSON: %v", err)
		}

		name, ok := tok.(string)
		if !ok {
			return nil, schemaErrorf("malformed JSON property name")
		}

		val, err := parseValue(dec)
		if err != nil {
			return nil, err
		}

		if obj.find(name) != nil {
			return nil, schemaErrorf("duplicate property %q", name)
		}

		obj.properties = append(obj.properties, property{name: name, val: val})
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, schemaErrorf("malformed JSON: %v", err)
	}

	return obj, nil
}

func parseArray(dec *stdjson.Decoder) ([]value, error) {
	var arr []value

	for dec.More() {
		val, err := parseValue(dec)
		if err != nil {
			return nil, err
		}

		arr = append(arr, val)
	}

	if _, err := dec.Token(); err != nil {
		return nil, schemaErrorf("malformed JSON: %v", err)
	}

	return arr, nil
}

func parseValue(dec *stdjson.Decoder) (value, error) {
	tok, err := dec.Token()
	if err != nil {
		return value{}, schemaErrorf("malformed JSON: %v", err)
	}

	switch t := tok.(type) {
	case stdjson.Delim:
		switch t {
		case '{':
			obj, err := parseObject(dec)
			if err != nil {
				return value{}, err
			}

			return value{kind: kindObject, obj: obj}, nil
		case '[':
			arr, err := parseArray(dec)
			if err != nil {
				return value{}, err
			}

			return value{kind: kindArray, arr: arr}, nil
		default:
			return value{}, schemaErrorf("unexpected JSON delimiter %q", t.String())
		}
	case string:
		return value{kind: kindString, str: t}, nil
	case stdjson.Number:
		return value{kind: kindNumber, str: t.String()}, nil
	case bool:
		return value{kind: kindBool, b: t}, nil
	case nil:
		return value{kind: kindNull}, nil
	default:
		return value{}, schemaErrorf("unsupported JSON token %v", tok)
	}
}
