package pgtype

import (
	"strings"
	"unicode/utf8"

	"github.com/lib/pq/oid"
	"github.com/pkg/errors"
)

// Kind classifies a PostgreSQL type.
type Kind int8

const (
	ScalarKind Kind = iota
	ArrayKind
	CompositeKind
)

func (k Kind) String() string {
	switch k {
	case ScalarKind:
		return "scalar"
	case ArrayKind:
		return "array"
	case CompositeKind:
		return "composite"
	default:
		return "invalid"
	}
}

// Type describes a PostgreSQL type. Types are values and are compared by OID.
type Type struct {
	OID  oid.Oid
	Name string
	Kind Kind
}

func (t Type) String() string {
	return t.Name
}

// PostgreSQL format codes
type Format int16

const (
	TextFormatCode   Format = 0
	BinaryFormatCode Format = 1
)

func (f Format) String() string {
	if f == BinaryFormatCode {
		return "binary"
	}
	return "text"
}

var (
	UnspecifiedType = Type{OID: 0, Name: "unspecified", Kind: ScalarKind}

	BoolType        = Type{OID: oid.T_bool, Name: "bool", Kind: ScalarKind}
	ByteaType       = Type{OID: oid.T_bytea, Name: "bytea", Kind: ScalarKind}
	Int8Type        = Type{OID: oid.T_int8, Name: "int8", Kind: ScalarKind}
	Int2Type        = Type{OID: oid.T_int2, Name: "int2", Kind: ScalarKind}
	Int4Type        = Type{OID: oid.T_int4, Name: "int4", Kind: ScalarKind}
	TextType        = Type{OID: oid.T_text, Name: "text", Kind: ScalarKind}
	JSONType        = Type{OID: oid.T_json, Name: "json", Kind: ScalarKind}
	PointType       = Type{OID: oid.T_point, Name: "point", Kind: ScalarKind}
	PathType        = Type{OID: oid.T_path, Name: "path", Kind: ScalarKind}
	PolygonType     = Type{OID: oid.T_polygon, Name: "polygon", Kind: ScalarKind}
	Float4Type      = Type{OID: oid.T_float4, Name: "float4", Kind: ScalarKind}
	Float8Type      = Type{OID: oid.T_float8, Name: "float8", Kind: ScalarKind}
	VarcharType     = Type{OID: oid.T_varchar, Name: "varchar", Kind: ScalarKind}
	DateType        = Type{OID: oid.T_date, Name: "date", Kind: ScalarKind}
	TimestampType   = Type{OID: oid.T_timestamp, Name: "timestamp", Kind: ScalarKind}
	TimestamptzType = Type{OID: oid.T_timestamptz, Name: "timestamptz", Kind: ScalarKind}
	IntervalType    = Type{OID: oid.T_interval, Name: "interval", Kind: ScalarKind}
	NumericType     = Type{OID: oid.T_numeric, Name: "numeric", Kind: ScalarKind}
	UUIDType        = Type{OID: oid.T_uuid, Name: "uuid", Kind: ScalarKind}
	JSONBType       = Type{OID: oid.T_jsonb, Name: "jsonb", Kind: ScalarKind}
)

// elementToArray maps a scalar OID to the OID of its one-dimensional array type.
var elementToArray = map[oid.Oid]oid.Oid{
	oid.T_bool:        oid.T__bool,
	oid.T_bytea:       oid.T__bytea,
	oid.T_int8:        oid.T__int8,
	oid.T_int2:        oid.T__int2,
	oid.T_int4:        oid.T__int4,
	oid.T_text:        oid.T__text,
	oid.T_json:        oid.T__json,
	oid.T_point:       oid.T__point,
	oid.T_path:        oid.T__path,
	oid.T_polygon:     oid.T__polygon,
	oid.T_float4:      oid.T__float4,
	oid.T_float8:      oid.T__float8,
	oid.T_varchar:     oid.T__varchar,
	oid.T_date:        oid.T__date,
	oid.T_timestamp:   oid.T__timestamp,
	oid.T_timestamptz: oid.T__timestamptz,
	oid.T_interval:    oid.T__interval,
	oid.T_numeric:     oid.T__numeric,
	oid.T_uuid:        oid.T__uuid,
	oid.T_jsonb:       oid.T__jsonb,
}

var arrayToElement = func() map[oid.Oid]oid.Oid {
	m := make(map[oid.Oid]oid.Oid, len(elementToArray))
	for elem, arr := range elementToArray {
		m[arr] = elem
	}
	return m
}()

// TypeForOID returns the descriptor of a built-in type. OIDs that PostgreSQL does not define out of the box are
// reported as composite types named "custom".
func TypeForOID(o oid.Oid) Type {
	if o == 0 {
		return UnspecifiedType
	}
	name, ok := oid.TypeName[o]
	if !ok {
		return Type{OID: o, Name: "custom", Kind: CompositeKind}
	}

	name = strings.ToLower(name)
	if _, isArray := arrayToElement[o]; isArray || strings.HasPrefix(name, "_") {
		return Type{OID: o, Name: name, Kind: ArrayKind}
	}
	return Type{OID: o, Name: name, Kind: ScalarKind}
}

// ArrayTypeFor returns the array type whose elements are of type elem.
func ArrayTypeFor(elem Type) (Type, bool) {
	arr, ok := elementToArray[elem.OID]
	if !ok {
		return Type{}, false
	}
	return TypeForOID(arr), true
}

// ElementTypeFor returns the element type of the array type arr.
func ElementTypeFor(arr Type) (Type, bool) {
	elem, ok := arrayToElement[arr.OID]
	if !ok {
		return Type{}, false
	}
	return TypeForOID(elem), true
}

// Value is implemented by every Go type that can be sent to PostgreSQL.
//
// EncodeText and EncodeBinary append the encoded value to buf and return the new slice. A nil slice with a nil error
// means NULL. Callers must pass a non-nil buf so an empty value can be told apart from NULL.
type Value interface {
	// Type returns the PostgreSQL type the value is sent as.
	Type() Type

	// PreferredFormat returns the format used when the value is sent as a query parameter.
	PreferredFormat() Format

	EncodeText(buf []byte) (newBuf []byte, err error)
	EncodeBinary(buf []byte) (newBuf []byte, err error)
}

// Decoder is implemented by pointers to Go types that can be read from PostgreSQL. A nil src is NULL. t is the type
// the server reported for the column.
type Decoder interface {
	DecodeText(t Type, src []byte) error
	DecodeBinary(t Type, src []byte) error
}

// Nullable is implemented by values that can hold NULL.
type Nullable interface {
	IsNull() bool
}

// Encode encodes v in its preferred format. A nil result buffer means NULL.
func Encode(v Value) (oid.Oid, []byte, Format, error) {
	format := v.PreferredFormat()
	buf, err := EncodeFormat(v, format, make([]byte, 0, 32))
	if err != nil {
		return 0, nil, format, err
	}
	return v.Type().OID, buf, format, nil
}

// EncodeFormat appends v encoded in format to buf.
func EncodeFormat(v Value, format Format, buf []byte) ([]byte, error) {
	if buf == nil {
		buf = make([]byte, 0, 32)
	}
	switch format {
	case TextFormatCode:
		return v.EncodeText(buf)
	case BinaryFormatCode:
		return v.EncodeBinary(buf)
	default:
		return nil, errors.Errorf("unknown format code %d", format)
	}
}

// DecodeFormat decodes src in format into dst. Text input must be valid UTF-8.
func DecodeFormat(dst Decoder, t Type, format Format, src []byte) error {
	switch format {
	case TextFormatCode:
		if src != nil && !utf8.Valid(src) {
			return newDecodeError(t, dst, src, errors.New("invalid UTF-8"))
		}
		return dst.DecodeText(t, src)
	case BinaryFormatCode:
		return dst.DecodeBinary(t, src)
	default:
		return errors.Errorf("unknown format code %d", format)
	}
}
