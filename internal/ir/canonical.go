package ir

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON.
// This is the serialization used for persisted records, logged messages
// and query responses. Strings are written byte-for-byte, so identities
// round-trip unchanged.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping and no U+2028/U+2029 escaping
//  3. Invalid UTF-8, floats and null are rejected
func MarshalCanonical(v any) ([]byte, error) {
	return marshalCanonical(v, false)
}

// marshalHashInput is MarshalCanonical with every string NFC normalized.
// It is only ever hashed, never stored.
func marshalHashInput(v any) ([]byte, error) {
	return marshalCanonical(v, true)
}

func marshalCanonical(v any, nfc bool) ([]byte, error) {
	enc := canonicalEncoder{nfc: nfc}
	if err := enc.write(v); err != nil {
		return nil, err
	}
	return enc.buf.Bytes(), nil
}

type canonicalEncoder struct {
	buf bytes.Buffer
	nfc bool
}

func (e *canonicalEncoder) write(v any) error {
	buf := &e.buf
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case IRString:
		return e.writeString(string(val))
	case string:
		return e.writeString(val)
	case Addr:
		return e.writeString(string(val))
	case IRInt:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case int:
		buf.WriteString(strconv.Itoa(val))
	case uint32:
		buf.WriteString(strconv.FormatUint(uint64(val), 10))
	case IRBool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case IRArray:
		return e.writeArray(len(val), func(i int) any { return val[i] })
	case []any:
		return e.writeArray(len(val), func(i int) any { return val[i] })
	case IRObject:
		return e.writeObject(val)
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			irElem, err := toIRValue(elem)
			if err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = irElem
		}
		return e.writeObject(obj)
	case map[string]string:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			obj[k] = IRString(elem)
		}
		return e.writeObject(obj)
	case float64, float32:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// toIRValue converts a decoded Go value (from YAML or encoding/json) to an IRValue.
// Integral float64 values are accepted because YAML and JSON decoders may
// produce them for whole numbers.
func toIRValue(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden")
	case IRValue:
		return val, nil
	case string:
		return IRString(val), nil
	case Addr:
		return IRString(val), nil
	case int:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case uint32:
		return IRInt(val), nil
	case uint64:
		return IRInt(val), nil
	case float64:
		if val != float64(int64(val)) {
			return nil, fmt.Errorf("floats are forbidden: %v", val)
		}
		return IRInt(int64(val)), nil
	case bool:
		return IRBool(val), nil
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			irElem, err := toIRValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			irElem, err := toIRValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = irElem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ToIRObject converts a decoded map into an IRObject.
func ToIRObject(m map[string]any) (IRObject, error) {
	v, err := toIRValue(m)
	if err != nil {
		return nil, err
	}
	return v.(IRObject), nil
}

// writeString escapes only the quote, the backslash and U+0000..U+001F,
// as RFC 8785 requires.
func (e *canonicalEncoder) writeString(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("invalid UTF-8 in string %q", s)
	}
	if e.nfc {
		s = norm.NFC.String(s)
	}
	buf := &e.buf
	buf.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '"':
			buf.WriteString(`\"`)
		case r == '\\':
			buf.WriteString(`\\`)
		case r == '\b':
			buf.WriteString(`\b`)
		case r == '\f':
			buf.WriteString(`\f`)
		case r == '\n':
			buf.WriteString(`\n`)
		case r == '\r':
			buf.WriteString(`\r`)
		case r == '\t':
			buf.WriteString(`\t`)
		case r < 0x20:
			fmt.Fprintf(buf, `\u%04x`, r)
		default:
			buf.WriteString(s[i : i+size])
		}
		i += size
	}
	buf.WriteByte('"')
	return nil
}

func (e *canonicalEncoder) writeArray(n int, at func(int) any) error {
	e.buf.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		if err := e.write(at(i)); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	e.buf.WriteByte(']')
	return nil
}

func (e *canonicalEncoder) writeObject(obj IRObject) error {
	e.buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		if err := e.writeString(k); err != nil {
			return fmt.Errorf("key: %w", err)
		}
		e.buf.WriteByte(':')
		if err := e.write(obj[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	e.buf.WriteByte('}')
	return nil
}
