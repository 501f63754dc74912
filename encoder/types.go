package encoder

// Type is the closed set of column types the encoder knows how to decode.
// Every tag outside this set maps to TypeUnknown and takes the raw text
// fallback.
type Type int

const (
	TypeUnknown Type = iota
	TypeUUID
	TypeText
	TypeDate
	TypeTimestamp
	TypeTimestamptz
	TypeInt2
	TypeInt4
	TypeInt8
	TypeFloat4
	TypeFloat8
	TypeNumeric
	TypeJSON
	TypeBool
)

// tags maps canonical engine type names to their Type. Matching is exact and
// case sensitive; only the synonyms listed here are recognised.
var tags = map[string]Type{
	"UUID":        TypeUUID,
	"TEXT":        TypeText,
	"VARCHAR":     TypeText,
	"CHAR":        TypeText,
	"DATE":        TypeDate,
	"TIMESTAMP":   TypeTimestamp,
	"TIMESTAMPTZ": TypeTimestamptz,
	"INT2":        TypeInt2,
	"INT4":        TypeInt4,
	"INT8":        TypeInt8,
	"FLOAT4":      TypeFloat4,
	"FLOAT8":      TypeFloat8,
	"NUMERIC":     TypeNumeric,
	"JSON":        TypeJSON,
	"JSONB":       TypeJSON,
	"BOOL":        TypeBool,
}

// ParseType resolves a type tag such as "INT4" or "TIMESTAMPTZ".
func ParseType(tag string) Type {
	if t, ok := tags[tag]; ok {
		return t
	}
	return TypeUnknown
}

func (t Type) String() string {
	switch t {
	case TypeUUID:
		return "UUID"
	case TypeText:
		return "TEXT"
	case TypeDate:
		return "DATE"
	case TypeTimestamp:
		return "TIMESTAMP"
	case TypeTimestamptz:
		return "TIMESTAMPTZ"
	case TypeInt2:
		return "INT2"
	case TypeInt4:
		return "INT4"
	case TypeInt8:
		return "INT8"
	case TypeFloat4:
		return "FLOAT4"
	case TypeFloat8:
		return "FLOAT8"
	case TypeNumeric:
		return "NUMERIC"
	case TypeJSON:
		return "JSON"
	case TypeBool:
		return "BOOL"
	default:
		return "UNKNOWN"
	}
}
