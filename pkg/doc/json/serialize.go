/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package json

import (
	"bytes"
	"fmt"
	"strings"
)

// Normalized serializes the object deterministically: properties in their
// declared order, no insignificant whitespace, minimal string escaping.
// Hashes and signatures over Saturn messages are always computed over
// normalized bytes.
func (o *Object) Normalized() ([]byte, error) {
	return o.serialize(false)
}

// Pretty serializes the object with two-space indentation for publication
// endpoints and logs. Property order is identical to Normalized.
func (o *Object) Pretty() ([]byte, error) {
	return o.serialize(true)
}

func (o *Object) serialize(pretty bool) ([]byte, error) {
	if o.firstErr != nil {
		return nil, o.firstErr
	}

	var buf bytes.Buffer

	writeObject(&buf, o, pretty, 0)

	if pretty {
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

func writeObject(buf *bytes.Buffer, o *Object, pretty bool, depth int) {
	if len(o.properties) == 0 {
		buf.WriteString("{}")
		return
	}

	buf.WriteByte('{')

	for i := range o.properties {
		if i > 0 {
			buf.WriteByte(',')
		}

		if pretty {
			buf.WriteByte('\n')
			buf.WriteString(strings.Repeat("  ", depth+1))
		}

		writeString(buf, o.properties[i].name)
		buf.WriteByte(':')

		if pretty {
			buf.WriteByte(' ')
		}

		writeValue(buf, o.properties[i].val, pretty, depth+1)
	}

	if pretty {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat("  ", depth))
	}

	buf.WriteByte('}')
}

func writeValue(buf *bytes.Buffer, v value, pretty bool, depth int) {
	switch v.kind {
	case kindString:
		writeString(buf, v.str)
	case kindNumber:
		buf.WriteString(v.str)
	case kindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case kindNull:
		buf.WriteString("null")
	case kindObject:
		writeObject(buf, v.obj, pretty, depth)
	case kindArray:
		buf.WriteByte('[')

		for i, elem := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}

			writeValue(buf, elem, pretty, depth)
		}

		buf.WriteByte(']')
	}
}

// writeString emits a JSON string with the minimal escape set so that the
// output is stable across implementations (notably no HTML-safe escaping).
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}

	buf.WriteByte('"')
}
