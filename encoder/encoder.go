package encoder

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ridoystarlord/querycanvas/value"
)

// Cell gives the encoder access to a single result cell.
type Cell interface {
	// Bytes returns the cell's wire bytes, or nil for SQL NULL.
	Bytes() []byte
	// Scan decodes the wire bytes into dst with the column's codec.
	Scan(dst any) error
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// Encode converts one cell into a canonical value according to its type tag.
// It never fails: SQL NULL, malformed bytes, and values the target kind
// cannot represent all become value.Null().
func Encode(cell Cell, tag string) value.Value {
	if cell.Bytes() == nil {
		return value.Null()
	}

	switch ParseType(tag) {
	case TypeUUID:
		return encodeUUID(cell)
	case TypeText:
		var s string
		if err := cell.Scan(&s); err != nil || !utf8.ValidString(s) {
			return value.Null()
		}
		return value.Text(s)
	case TypeDate:
		return encodeDate(cell)
	case TypeTimestamp:
		return encodeTimestamp(cell)
	case TypeTimestamptz:
		return encodeTimestamptz(cell)
	case TypeInt2, TypeInt4, TypeInt8:
		var n int64
		if err := cell.Scan(&n); err != nil {
			return value.Null()
		}
		return value.Int64(n)
	case TypeFloat4:
		var f pgtype.Float4
		if err := cell.Scan(&f); err != nil || !f.Valid {
			return value.Null()
		}
		return encodeFloat(float64(f.Float32), 32)
	case TypeFloat8:
		var f pgtype.Float8
		if err := cell.Scan(&f); err != nil || !f.Valid {
			return value.Null()
		}
		return encodeFloat(f.Float64, 64)
	case TypeNumeric:
		return encodeNumeric(cell)
	case TypeJSON:
		var doc []byte
		if err := cell.Scan(&doc); err != nil {
			return value.Null()
		}
		return value.JSON(doc)
	case TypeBool:
		var b bool
		if err := cell.Scan(&b); err != nil {
			return value.Null()
		}
		return value.Bool(b)
	case TypeUnknown:
		return encodeRaw(cell)
	default:
		return encodeRaw(cell)
	}
}

func encodeUUID(cell Cell) value.Value {
	var u pgtype.UUID
	if err := cell.Scan(&u); err != nil || !u.Valid {
		return value.Null()
	}
	return value.UUID(uuid.UUID(u.Bytes).String())
}

func encodeDate(cell Cell) value.Value {
	var d pgtype.Date
	if err := cell.Scan(&d); err != nil || !d.Valid || d.InfinityModifier != pgtype.Finite {
		return value.Null()
	}
	return value.DateOnly(d.Time.Format(dateLayout))
}

func encodeTimestamp(cell Cell) value.Value {
	var ts pgtype.Timestamp
	if err := cell.Scan(&ts); err != nil || !ts.Valid || ts.InfinityModifier != pgtype.Finite {
		return value.Null()
	}
	return value.DateTime(ts.Time.Format(dateTimeLayout))
}

func encodeTimestamptz(cell Cell) value.Value {
	var ts pgtype.Timestamptz
	if err := cell.Scan(&ts); err != nil || !ts.Valid || ts.InfinityModifier != pgtype.Finite {
		return value.Null()
	}
	return value.DateTimeTz(formatRFC3339(ts.Time.UTC()))
}

// formatRFC3339 renders t with a numeric offset (never "Z") and groups
// fractional seconds into 0, 3, 6 or 9 digits.
func formatRFC3339(t time.Time) string {
	var b strings.Builder
	b.WriteString(t.Format(dateTimeLayout))

	ns := t.Nanosecond()
	switch {
	case ns == 0:
	case ns%1_000_000 == 0:
		b.WriteString(t.Format(".000"))
	case ns%1_000 == 0:
		b.WriteString(t.Format(".000000"))
	default:
		b.WriteString(t.Format(".000000000"))
	}

	b.WriteString(t.Format("-07:00"))
	return b.String()
}

func encodeFloat(f float64, bitSize int) value.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return value.Null()
	}
	return value.Decimal(strconv.FormatFloat(f, 'f', -1, bitSize))
}

func encodeNumeric(cell Cell) value.Value {
	var n pgtype.Numeric
	if err := cell.Scan(&n); err != nil || !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return value.Null()
	}
	return value.Decimal(formatDecimal(n.Int, n.Exp))
}

// formatDecimal renders coefficient * 10^exp without loss.
func formatDecimal(coef *big.Int, exp int32) string {
	digits := new(big.Int).Abs(coef).String()

	if exp >= 0 {
		if coef.Sign() != 0 {
			digits += strings.Repeat("0", int(exp))
		}
	} else {
		scale := int(-exp)
		if len(digits) <= scale {
			digits = strings.Repeat("0", scale-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-scale] + "." + digits[len(digits)-scale:]
	}

	if coef.Sign() < 0 {
		return "-" + digits
	}
	return digits
}

func encodeRaw(cell Cell) value.Value {
	raw := cell.Bytes()
	if raw == nil || !utf8.Valid(raw) {
		return value.Null()
	}
	return value.RawText(string(raw))
}
