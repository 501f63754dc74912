package value

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which variant of a Value is active.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindDecimal
	KindText
	KindDateOnly
	KindDateTime
	KindDateTimeTz
	KindUUID
	KindJSON
	KindRawText
)

var kindNames = [...]string{
	KindNull:       "null",
	KindBool:       "bool",
	KindInt64:      "int64",
	KindDecimal:    "decimal",
	KindText:       "text",
	KindDateOnly:   "date",
	KindDateTime:   "datetime",
	KindDateTimeTz: "datetimetz",
	KindUUID:       "uuid",
	KindJSON:       "json",
	KindRawText:    "rawtext",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is the engine-agnostic representation of one decoded cell.
// The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	s    string
	raw  json.RawMessage
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Int64(i int64) Value { return Value{kind: KindInt64, i: i} }

// Decimal holds an exact decimal literal such as "19.99". The caller is
// responsible for passing a well-formed literal.
func Decimal(s string) Value { return Value{kind: KindDecimal, s: s} }

func Text(s string) Value { return Value{kind: KindText, s: s} }

// DateOnly holds a date formatted as YYYY-MM-DD.
func DateOnly(s string) Value { return Value{kind: KindDateOnly, s: s} }

// DateTime holds a timestamp formatted as YYYY-MM-DDTHH:MM:SS.
func DateTime(s string) Value { return Value{kind: KindDateTime, s: s} }

// DateTimeTz holds an RFC 3339 timestamp carrying an offset.
func DateTimeTz(s string) Value { return Value{kind: KindDateTimeTz, s: s} }

// UUID holds the canonical hyphenated form.
func UUID(s string) Value { return Value{kind: KindUUID, s: s} }

// JSON wraps an already valid JSON document. Invalid documents become Null.
func JSON(raw []byte) Value {
	if !json.Valid(raw) {
		return Null()
	}
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return Value{kind: KindJSON, raw: cp}
}

func RawText(s string) Value { return Value{kind: KindRawText, s: s} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload; false for other kinds.
func (v Value) Bool() bool { return v.b }

// Int64 returns the integer payload; 0 for other kinds.
func (v Value) Int64() int64 { return v.i }

// Raw returns the JSON document of a KindJSON value.
func (v Value) Raw() json.RawMessage { return v.raw }

// String renders the value as plain text, the way it would appear in a
// CSV cell. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt64:
		return fmt.Sprint(v.i)
	case KindJSON:
		return string(v.raw)
	case KindDecimal, KindText, KindDateOnly, KindDateTime, KindDateTimeTz, KindUUID, KindRawText:
		return v.s
	default:
		return ""
	}
}

// MarshalJSON encodes the value as a plain JSON scalar or document.
// Decimals are emitted as strings so no precision is lost.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt64:
		return json.Marshal(v.i)
	case KindJSON:
		return v.raw, nil
	case KindDecimal, KindText, KindDateOnly, KindDateTime, KindDateTimeTz, KindUUID, KindRawText:
		return json.Marshal(v.s)
	default:
		return nil, fmt.Errorf("value: unhandled kind %s", v.kind)
	}
}

// Interface returns the value as a plain Go value for encoders other than
// encoding/json. Decimals and temporal kinds stay strings.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt64:
		return v.i
	case KindJSON:
		var doc any
		if err := json.Unmarshal(v.raw, &doc); err != nil {
			return string(v.raw)
		}
		return doc
	default:
		return v.s
	}
}
