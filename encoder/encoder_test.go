package encoder

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ridoystarlord/querycanvas/value"
)

type testCell struct {
	m      *pgtype.Map
	oid    uint32
	format int16
	raw    []byte
}

func (c testCell) Bytes() []byte { return c.raw }

func (c testCell) Scan(dst any) error { return c.m.Scan(c.oid, c.format, c.raw, dst) }

func textCell(oid uint32, s string) testCell {
	return testCell{m: pgtype.NewMap(), oid: oid, format: pgtype.TextFormatCode, raw: []byte(s)}
}

func binaryCell(t *testing.T, oid uint32, v any) testCell {
	t.Helper()
	m := pgtype.NewMap()
	raw, err := m.Encode(oid, pgtype.BinaryFormatCode, v, nil)
	if err != nil {
		t.Fatalf("encoding %T for oid %d: %v", v, oid, err)
	}
	return testCell{m: m, oid: oid, format: pgtype.BinaryFormatCode, raw: raw}
}

func marshal(t *testing.T, v value.Value) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestEncode_TextFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tag      string
		oid      uint32
		raw      string
		wantKind value.Kind
		wantJSON string
	}{
		{"uuid", "UUID", pgtype.UUIDOID, "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11", value.KindUUID, `"a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11"`},
		{"uuid uppercase input", "UUID", pgtype.UUIDOID, "A0EEBC99-9C0B-4EF8-BB6D-6BB9BD380A11", value.KindUUID, `"a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11"`},
		{"text", "TEXT", pgtype.TextOID, "héllo", value.KindText, `"héllo"`},
		{"varchar", "VARCHAR", pgtype.VarcharOID, "abc", value.KindText, `"abc"`},
		{"char", "CHAR", pgtype.BPCharOID, "x  ", value.KindText, `"x  "`},
		{"date", "DATE", pgtype.DateOID, "2024-02-29", value.KindDateOnly, `"2024-02-29"`},
		{"timestamp drops fraction", "TIMESTAMP", pgtype.TimestampOID, "2024-01-01 12:34:56.789", value.KindDateTime, `"2024-01-01T12:34:56"`},
		{"timestamptz utc", "TIMESTAMPTZ", pgtype.TimestamptzOID, "2024-01-01 00:00:00+00", value.KindDateTimeTz, `"2024-01-01T00:00:00+00:00"`},
		{"timestamptz offset normalised", "TIMESTAMPTZ", pgtype.TimestamptzOID, "2024-06-01 12:30:45.123+02", value.KindDateTimeTz, `"2024-06-01T10:30:45.123+00:00"`},
		{"int2", "INT2", pgtype.Int2OID, "-7", value.KindInt64, `-7`},
		{"int4", "INT4", pgtype.Int4OID, "2147483647", value.KindInt64, `2147483647`},
		{"int8", "INT8", pgtype.Int8OID, "-9223372036854775808", value.KindInt64, `-9223372036854775808`},
		{"float4", "FLOAT4", pgtype.Float4OID, "1.5", value.KindDecimal, `"1.5"`},
		{"float8", "FLOAT8", pgtype.Float8OID, "0.1", value.KindDecimal, `"0.1"`},
		{"numeric", "NUMERIC", pgtype.NumericOID, "19.99", value.KindDecimal, `"19.99"`},
		{"numeric keeps scale", "NUMERIC", pgtype.NumericOID, "19.990", value.KindDecimal, `"19.990"`},
		{"numeric small negative", "NUMERIC", pgtype.NumericOID, "-0.005", value.KindDecimal, `"-0.005"`},
		{"numeric beyond float precision", "NUMERIC", pgtype.NumericOID, "123456789012345678901234567890.123456789", value.KindDecimal, `"123456789012345678901234567890.123456789"`},
		{"json", "JSON", pgtype.JSONOID, `{"b":[1,2],"a":null}`, value.KindJSON, `{"b":[1,2],"a":null}`},
		{"jsonb", "JSONB", pgtype.JSONBOID, `{"a": 1}`, value.KindJSON, `{"a":1}`},
		{"bool true", "BOOL", pgtype.BoolOID, "t", value.KindBool, `true`},
		{"bool false", "BOOL", pgtype.BoolOID, "f", value.KindBool, `false`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Encode(textCell(tt.oid, tt.raw), tt.tag)
			if got.Kind() != tt.wantKind {
				t.Fatalf("kind: expected %s, got %s", tt.wantKind, got.Kind())
			}
			if j := marshal(t, got); j != tt.wantJSON {
				t.Fatalf("json: expected %s, got %s", tt.wantJSON, j)
			}
		})
	}
}

func TestEncode_BinaryFormat(t *testing.T) {
	t.Parallel()

	id := [16]byte{0xa0, 0xee, 0xbc, 0x99, 0x9c, 0x0b, 0x4e, 0xf8, 0xbb, 0x6d, 0x6b, 0xb9, 0xbd, 0x38, 0x0a, 0x11}
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.FixedZone("CET", 3600))

	tests := []struct {
		name     string
		tag      string
		cell     testCell
		wantJSON string
	}{
		{"uuid", "UUID", binaryCell(t, pgtype.UUIDOID, pgtype.UUID{Bytes: id, Valid: true}), `"a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11"`},
		{"int2", "INT2", binaryCell(t, pgtype.Int2OID, int16(-7)), `-7`},
		{"int4", "INT4", binaryCell(t, pgtype.Int4OID, int32(42)), `42`},
		{"int8", "INT8", binaryCell(t, pgtype.Int8OID, int64(1)<<40), `1099511627776`},
		{"bool", "BOOL", binaryCell(t, pgtype.BoolOID, true), `true`},
		{"float8", "FLOAT8", binaryCell(t, pgtype.Float8OID, 2.5), `"2.5"`},
		{"timestamptz", "TIMESTAMPTZ", binaryCell(t, pgtype.TimestamptzOID, ts), `"2023-12-31T23:00:00+00:00"`},
		{"date", "DATE", binaryCell(t, pgtype.DateOID, time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)), `"1999-12-31"`},
		{"timestamp drops fraction", "TIMESTAMP", binaryCell(t, pgtype.TimestampOID, time.Date(2024, 1, 1, 12, 34, 56, 789_000_000, time.UTC)), `"2024-01-01T12:34:56"`},
		{"float4 shortest", "FLOAT4", binaryCell(t, pgtype.Float4OID, float32(0.1)), `"0.1"`},
		{"numeric keeps scale", "NUMERIC", binaryCell(t, pgtype.NumericOID, pgtype.Numeric{Int: big.NewInt(19990), Exp: -3, Valid: true}), `"19.990"`},
		{"numeric large exponent", "NUMERIC", binaryCell(t, pgtype.NumericOID, pgtype.Numeric{Int: big.NewInt(12345), Exp: 20, Valid: true}), `"1234500000000000000000000"`},
		{"numeric negative scale", "NUMERIC", binaryCell(t, pgtype.NumericOID, pgtype.Numeric{Int: big.NewInt(-123456789), Exp: -4, Valid: true}), `"-12345.6789"`},
		{"jsonb strips version byte", "JSONB", binaryCell(t, pgtype.JSONBOID, []byte(`{"a":1}`)), `{"a":1}`},
		{"text", "TEXT", binaryCell(t, pgtype.TextOID, "héllo"), `"héllo"`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if j := marshal(t, Encode(tt.cell, tt.tag)); j != tt.wantJSON {
				t.Fatalf("expected %s, got %s", tt.wantJSON, j)
			}
		})
	}
}

func TestEncode_MalformedCellsBecomeNull(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tag  string
		oid  uint32
		raw  string
	}{
		{"uuid", "UUID", pgtype.UUIDOID, "not-a-uuid"},
		{"date", "DATE", pgtype.DateOID, "not a date"},
		{"date infinity", "DATE", pgtype.DateOID, "infinity"},
		{"timestamp", "TIMESTAMP", pgtype.TimestampOID, "yesterday-ish"},
		{"timestamptz infinity", "TIMESTAMPTZ", pgtype.TimestamptzOID, "-infinity"},
		{"int4", "INT4", pgtype.Int4OID, "abc"},
		{"float8 nan", "FLOAT8", pgtype.Float8OID, "NaN"},
		{"float8 infinity", "FLOAT8", pgtype.Float8OID, "Infinity"},
		{"numeric nan", "NUMERIC", pgtype.NumericOID, "NaN"},
		{"numeric garbage", "NUMERIC", pgtype.NumericOID, "12.3.4"},
		{"json", "JSON", pgtype.JSONOID, `{"a":`},
		{"text invalid utf8", "TEXT", pgtype.TextOID, "\xff\xfea"},
		{"varchar invalid utf8", "VARCHAR", pgtype.VarcharOID, "ok\xc3"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Encode(textCell(tt.oid, tt.raw), tt.tag)
			if !got.IsNull() {
				t.Fatalf("expected null, got %s %s", got.Kind(), marshal(t, got))
			}
		})
	}
}

func TestEncode_MalformedBinaryCellsBecomeNull(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tag  string
		oid  uint32
		raw  []byte
	}{
		{"bool", "BOOL", pgtype.BoolOID, []byte{1, 2}},
		{"int4", "INT4", pgtype.Int4OID, []byte{0, 0, 1}},
		{"uuid", "UUID", pgtype.UUIDOID, []byte{1, 2, 3}},
		{"text invalid utf8", "TEXT", pgtype.TextOID, []byte{0xff, 0xfe, 'a'}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cell := testCell{m: pgtype.NewMap(), oid: tt.oid, format: pgtype.BinaryFormatCode, raw: tt.raw}
			if got := Encode(cell, tt.tag); !got.IsNull() {
				t.Fatalf("expected null, got %s", got.Kind())
			}
		})
	}
}

func TestEncode_SQLNullIsNullForEveryTag(t *testing.T) {
	t.Parallel()

	for tag := range tags {
		cell := testCell{m: pgtype.NewMap(), oid: pgtype.TextOID}
		if got := Encode(cell, tag); !got.IsNull() {
			t.Errorf("%s: expected null, got %s", tag, got.Kind())
		}
	}

	cell := testCell{m: pgtype.NewMap(), oid: 0}
	if got := Encode(cell, "INTERVAL"); !got.IsNull() {
		t.Errorf("fallback: expected null, got %s", got.Kind())
	}
}

func TestEncode_Fallback(t *testing.T) {
	t.Parallel()

	t.Run("utf8 becomes raw text", func(t *testing.T) {
		t.Parallel()
		got := Encode(textCell(pgtype.IntervalOID, "1 day 02:00:00"), "INTERVAL")
		if got.Kind() != value.KindRawText || got.String() != "1 day 02:00:00" {
			t.Fatalf("expected raw text, got %s %q", got.Kind(), got.String())
		}
	})

	t.Run("invalid utf8 becomes null", func(t *testing.T) {
		t.Parallel()
		cell := testCell{m: pgtype.NewMap(), oid: pgtype.ByteaOID, raw: []byte{0xff, 0xfe, 0x00}}
		if got := Encode(cell, "BYTEA"); !got.IsNull() {
			t.Fatalf("expected null, got %s", got.Kind())
		}
	})

	t.Run("tags are case sensitive", func(t *testing.T) {
		t.Parallel()
		got := Encode(textCell(pgtype.Int4OID, "12"), "int4")
		if got.Kind() != value.KindRawText || got.String() != "12" {
			t.Fatalf("expected raw text fallback, got %s %q", got.Kind(), got.String())
		}
	})

	t.Run("empty bytes are empty text", func(t *testing.T) {
		t.Parallel()
		cell := testCell{m: pgtype.NewMap(), oid: 0, raw: []byte{}}
		got := Encode(cell, "OID:12345")
		if got.Kind() != value.KindRawText || got.String() != "" {
			t.Fatalf("expected empty raw text, got %s %q", got.Kind(), got.String())
		}
	})
}

func TestParseType(t *testing.T) {
	t.Parallel()

	for tag, want := range tags {
		if got := ParseType(tag); got != want {
			t.Errorf("ParseType(%q) = %s, expected %s", tag, got, want)
		}
	}

	for _, tag := range []string{"", "int4", "Uuid", "TIMESTAMP WITH TIME ZONE", "INTERVAL", "BPCHAR"} {
		if got := ParseType(tag); got != TypeUnknown {
			t.Errorf("ParseType(%q) = %s, expected UNKNOWN", tag, got)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		coef int64
		exp  int32
		want string
	}{
		{1999, -2, "19.99"},
		{1, 3, "1000"},
		{0, 2, "0"},
		{0, -2, "0.00"},
		{-5, -3, "-0.005"},
		{-12, 0, "-12"},
		{5, -1, "0.5"},
	}

	for _, tt := range tests {
		tt := tt
		if got := formatDecimal(big.NewInt(tt.coef), tt.exp); got != tt.want {
			t.Errorf("formatDecimal(%d, %d) = %q, expected %q", tt.coef, tt.exp, got, tt.want)
		}
	}
}

func TestFormatRFC3339(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ns   int
		want string
	}{
		{0, "2024-01-01T00:00:00+00:00"},
		{500_000_000, "2024-01-01T00:00:00.500+00:00"},
		{123_456_000, "2024-01-01T00:00:00.123456+00:00"},
		{123_456_789, "2024-01-01T00:00:00.123456789+00:00"},
	}

	for _, tt := range tests {
		tt := tt
		ts := time.Date(2024, 1, 1, 0, 0, 0, tt.ns, time.UTC)
		if got := formatRFC3339(ts); got != tt.want {
			t.Errorf("formatRFC3339(%d ns) = %q, expected %q", tt.ns, got, tt.want)
		}
	}
}
