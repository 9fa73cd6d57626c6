package pgtype

import (
	"github.com/lib/pq/oid"
)

// DecodeFunc decodes src into the default Go value for a type. src is never nil.
type DecodeFunc func(t Type, format Format, src []byte) (interface{}, error)

// Map is the registry of the types a connection knows how to decode without a caller supplied target. NewMap
// registers the built-in types. Register all custom types before sharing a Map between goroutines.
type Map struct {
	oidToType  map[oid.Oid]Type
	nameToType map[string]Type
	decoders   map[oid.Oid]DecodeFunc
}

// DecodeAs returns a DecodeFunc that decodes into T.
func DecodeAs[T any, PT interface {
	*T
	Decoder
}]() DecodeFunc {
	return func(t Type, format Format, src []byte) (interface{}, error) {
		var v T
		if err := DecodeFormat(PT(&v), t, format, src); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func NewMap() *Map {
	m := &Map{
		oidToType:  make(map[oid.Oid]Type),
		nameToType: make(map[string]Type),
		decoders:   make(map[oid.Oid]DecodeFunc),
	}

	m.RegisterType(BoolType, DecodeAs[Bool, *Bool]())
	m.RegisterType(ByteaType, DecodeAs[Bytea, *Bytea]())
	m.RegisterType(Int2Type, DecodeAs[Int2, *Int2]())
	m.RegisterType(Int4Type, DecodeAs[Int4, *Int4]())
	m.RegisterType(Int8Type, DecodeAs[Int8, *Int8]())
	m.RegisterType(TextType, DecodeAs[Text, *Text]())
	m.RegisterType(VarcharType, DecodeAs[Text, *Text]())
	m.RegisterType(TypeForOID(oid.T_bpchar), DecodeAs[Text, *Text]())
	m.RegisterType(TypeForOID(oid.T_name), DecodeAs[Text, *Text]())
	m.RegisterType(TypeForOID(oid.T_unknown), DecodeAs[Text, *Text]())
	m.RegisterType(JSONType, DecodeAs[JSON[interface{}], *JSON[interface{}]]())
	m.RegisterType(JSONBType, DecodeAs[JSONB[interface{}], *JSONB[interface{}]]())
	m.RegisterType(PointType, DecodeAs[Point, *Point]())
	m.RegisterType(PathType, DecodeAs[Path, *Path]())
	m.RegisterType(PolygonType, DecodeAs[Polygon, *Polygon]())
	m.RegisterType(Float4Type, DecodeAs[Float4, *Float4]())
	m.RegisterType(Float8Type, DecodeAs[Float8, *Float8]())
	m.RegisterType(DateType, DecodeAs[Date, *Date]())
	m.RegisterType(TimestampType, DecodeAs[Timestamp, *Timestamp]())
	m.RegisterType(TimestamptzType, DecodeAs[Timestamptz, *Timestamptz]())
	m.RegisterType(IntervalType, DecodeAs[Interval, *Interval]())
	m.RegisterType(NumericType, DecodeAs[Numeric, *Numeric]())
	m.RegisterType(UUIDType, DecodeAs[UUID, *UUID]())

	registerArray[Bool](m, BoolType)
	registerArray[Bytea](m, ByteaType)
	registerArray[Int2](m, Int2Type)
	registerArray[Int4](m, Int4Type)
	registerArray[Int8](m, Int8Type)
	registerArray[Text](m, TextType)
	registerArray[Text](m, VarcharType)
	registerArray[JSON[interface{}]](m, JSONType)
	registerArray[JSONB[interface{}]](m, JSONBType)
	registerArray[Point](m, PointType)
	registerArray[Path](m, PathType)
	registerArray[Polygon](m, PolygonType)
	registerArray[Float4](m, Float4Type)
	registerArray[Float8](m, Float8Type)
	registerArray[Date](m, DateType)
	registerArray[Timestamp](m, TimestampType)
	registerArray[Timestamptz](m, TimestamptzType)
	registerArray[Interval](m, IntervalType)
	registerArray[Numeric](m, NumericType)
	registerArray[UUID](m, UUIDType)

	return m
}

func registerArray[T Value](m *Map, elem Type) {
	t, ok := ArrayTypeFor(elem)
	if !ok {
		return
	}
	m.RegisterType(t, DecodeAs[Array[Option[T]], *Array[Option[T]]]())
}

// RegisterType registers t and the function used to decode its values.
func (m *Map) RegisterType(t Type, decode DecodeFunc) {
	m.oidToType[t.OID] = t
	m.nameToType[t.Name] = t
	m.decoders[t.OID] = decode
}

func (m *Map) TypeForOID(o oid.Oid) (Type, bool) {
	t, ok := m.oidToType[o]
	return t, ok
}

func (m *Map) TypeForName(name string) (Type, bool) {
	t, ok := m.nameToType[name]
	return t, ok
}

// DecodeValue decodes src into the default Go value of the type identified by o. NULL decodes to nil. Values of
// unregistered types are returned as a string in text format and as a []byte in binary format.
func (m *Map) DecodeValue(o oid.Oid, format Format, src []byte) (interface{}, error) {
	if src == nil {
		return nil, nil
	}

	t, ok := m.oidToType[o]
	if !ok {
		t = TypeForOID(o)
	}

	if decode, ok := m.decoders[o]; ok {
		return decode(t, format, src)
	}

	if format == TextFormatCode {
		return string(src), nil
	}
	buf := make([]byte, len(src))
	copy(buf, src)
	return buf, nil
}
