package pgtype

import (
	"bytes"
	"encoding/binary"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/jackc/pgio"
	"github.com/lib/pq/oid"
	"github.com/pkg/errors"
)

// Information on the internals of PostgreSQL arrays can be found in
// src/include/utils/array.h and src/backend/utils/adt/arrayfuncs.c. Of
// particular interest is the array_send function.

type ArrayHeader struct {
	ContainsNull bool
	ElementType  Type
	Dimensions   []ArrayDimension
}

type ArrayDimension struct {
	Length     int32
	LowerBound int32
}

// ElementCount returns the number of elements described by the dimensions.
func (ah ArrayHeader) ElementCount() int {
	if len(ah.Dimensions) == 0 {
		return 0
	}

	n := 1
	for _, d := range ah.Dimensions {
		n *= int(d.Length)
	}
	return n
}

// ParseArrayHeader parses the header of a binary array and returns it with the number of bytes read.
func ParseArrayHeader(src []byte) (ArrayHeader, int, error) {
	var ah ArrayHeader
	if len(src) < 12 {
		return ah, 0, errors.Errorf("array header too short: %d bytes", len(src))
	}

	rp := 0

	numDims := int32(binary.BigEndian.Uint32(src[rp:]))
	rp += 4
	if numDims < 0 {
		return ah, 0, errors.Errorf("invalid array header: %d dimensions", numDims)
	}

	ah.ContainsNull = binary.BigEndian.Uint32(src[rp:]) == 1
	rp += 4

	ah.ElementType = TypeForOID(oid.Oid(binary.BigEndian.Uint32(src[rp:])))
	rp += 4

	if len(src[rp:]) < int(numDims)*8 {
		return ah, 0, errors.Errorf("array header too short for %d dimensions", numDims)
	}

	if numDims > 0 {
		ah.Dimensions = make([]ArrayDimension, numDims)
	}
	for i := range ah.Dimensions {
		ah.Dimensions[i].Length = int32(binary.BigEndian.Uint32(src[rp:]))
		rp += 4

		ah.Dimensions[i].LowerBound = int32(binary.BigEndian.Uint32(src[rp:]))
		rp += 4
	}

	return ah, rp, nil
}

func (src ArrayHeader) EncodeBinary(buf []byte) []byte {
	buf = pgio.AppendInt32(buf, int32(len(src.Dimensions)))

	var containsNull int32
	if src.ContainsNull {
		containsNull = 1
	}
	buf = pgio.AppendInt32(buf, containsNull)

	buf = pgio.AppendUint32(buf, uint32(src.ElementType.OID))

	for i := range src.Dimensions {
		buf = pgio.AppendInt32(buf, src.Dimensions[i].Length)
		buf = pgio.AppendInt32(buf, src.Dimensions[i].LowerBound)
	}

	return buf
}

// Array is a one-dimensional PostgreSQL array of T. A NULL array is an Option[Array[T]]; NULL elements need T to be
// an Option.
type Array[T Value] []T

func (src Array[T]) elementType() Type {
	var zero T
	return zero.Type()
}

// Type returns the array type of T. Element types without a built-in array type are sent with an unspecified OID.
func (src Array[T]) Type() Type {
	elem := src.elementType()
	if t, ok := ArrayTypeFor(elem); ok {
		return t
	}
	return Type{OID: 0, Name: "_" + elem.Name, Kind: ArrayKind}
}

func (src Array[T]) PreferredFormat() Format {
	var zero T
	return zero.PreferredFormat()
}

func (dst *Array[T]) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	uta, err := ParseUntypedTextArray(string(src))
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}
	if len(uta.Dimensions) > 1 {
		return newDecodeError(t, dst, src, errors.Errorf("cannot flatten %d-dimensional array", len(uta.Dimensions)))
	}

	elemType, ok := ElementTypeFor(t)
	if !ok {
		elemType = dst.elementType()
	}

	elements := make(Array[T], len(uta.Elements))
	for i, s := range uta.Elements {
		var elemSrc []byte
		if !uta.Null(i) {
			elemSrc = []byte(s)
		}

		d, ok := any(&elements[i]).(Decoder)
		if !ok {
			return newDecodeError(t, dst, src, errors.Errorf("%s cannot be decoded", targetName(&elements[i])))
		}
		if err := d.DecodeText(elemType, elemSrc); err != nil {
			return err
		}
	}

	*dst = elements
	return nil
}

func (dst *Array[T]) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	ad, err := NewArrayDecoder[T](src)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}
	if len(ad.Header().Dimensions) > 1 {
		return newDecodeError(t, dst, src, errors.Errorf("cannot flatten %d-dimensional array", len(ad.Header().Dimensions)))
	}

	elements := make(Array[T], 0, ad.Header().ElementCount())
	for ad.Next() {
		elements = append(elements, ad.Value())
	}
	if err := ad.Err(); err != nil {
		return err
	}

	*dst = elements
	return nil
}

func (src Array[T]) EncodeText(buf []byte) ([]byte, error) {
	buf = append(buf, '{')
	elemBuf := make([]byte, 0, 32)
	for i, elem := range src {
		if i > 0 {
			buf = append(buf, ',')
		}

		b, err := elem.EncodeText(elemBuf[:0])
		if err != nil {
			return nil, err
		}
		if b == nil {
			buf = append(buf, "NULL"...)
		} else {
			buf = append(buf, quoteArrayElementIfNeeded(string(b))...)
		}
	}
	return append(buf, '}'), nil
}

func (src Array[T]) EncodeBinary(buf []byte) ([]byte, error) {
	elemType := src.elementType()
	if elemType.OID == 0 {
		return nil, newEncodeError(src.Type(), src, "element type %s has no OID", elemType.Name)
	}

	ah := ArrayHeader{ElementType: elemType}
	if len(src) > 0 {
		ah.Dimensions = []ArrayDimension{{Length: int32(len(src)), LowerBound: 1}}
	}
	for _, elem := range src {
		if n, ok := Value(elem).(Nullable); ok && n.IsNull() {
			ah.ContainsNull = true
			break
		}
	}

	buf = ah.EncodeBinary(buf)

	for _, elem := range src {
		sp := len(buf)
		buf = pgio.AppendInt32(buf, -1)

		elemBuf, err := elem.EncodeBinary(buf)
		if err != nil {
			return nil, err
		}
		if elemBuf != nil {
			buf = elemBuf
			pgio.SetInt32(buf[sp:], int32(len(buf[sp:])-4))
		}
	}

	return buf, nil
}

func quoteArrayElement(src string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(src) + `"`
}

func isSpace(ch byte) bool {
	// see https://github.com/postgres/postgres/blob/REL_12_STABLE/src/backend/parser/scansup.c#L224
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}

func quoteArrayElementIfNeeded(src string) string {
	if src == "" || (len(src) == 4 && strings.EqualFold(src, "null")) || isSpace(src[0]) || isSpace(src[len(src)-1]) || strings.ContainsAny(src, `{},"\`) {
		return quoteArrayElement(src)
	}
	return src
}

// UntypedTextArray is a text format array whose elements have not been decoded.
type UntypedTextArray struct {
	Elements   []string
	Quoted     []bool
	Dimensions []ArrayDimension
}

// Null reports whether element i is the unquoted NULL literal.
func (uta *UntypedTextArray) Null(i int) bool {
	return !uta.Quoted[i] && strings.EqualFold(uta.Elements[i], "NULL")
}

func ParseUntypedTextArray(src string) (*UntypedTextArray, error) {
	uta := &UntypedTextArray{
		Elements: []string{},
		Quoted:   []bool{},
	}

	buf := bytes.NewBufferString(src)

	skipWhitespace(buf)

	r, _, err := buf.ReadRune()
	if err != nil {
		return nil, errors.Errorf("invalid array: %v", err)
	}

	var explicitDimensions []ArrayDimension

	// Array has explicit dimensions
	if r == '[' {
		buf.UnreadRune()

		for {
			r, _, err = buf.ReadRune()
			if err != nil {
				return nil, errors.Errorf("invalid array: %v", err)
			}

			if r == '=' {
				break
			} else if r != '[' {
				return nil, errors.Errorf("invalid array, expected '[' or '=' got %v", r)
			}

			lower, err := arrayParseInteger(buf)
			if err != nil {
				return nil, errors.Errorf("invalid array: %v", err)
			}

			r, _, err = buf.ReadRune()
			if err != nil {
				return nil, errors.Errorf("invalid array: %v", err)
			}

			if r != ':' {
				return nil, errors.Errorf("invalid array, expected ':' got %v", r)
			}

			upper, err := arrayParseInteger(buf)
			if err != nil {
				return nil, errors.Errorf("invalid array: %v", err)
			}

			r, _, err = buf.ReadRune()
			if err != nil {
				return nil, errors.Errorf("invalid array: %v", err)
			}

			if r != ']' {
				return nil, errors.Errorf("invalid array, expected ']' got %v", r)
			}

			explicitDimensions = append(explicitDimensions, ArrayDimension{LowerBound: lower, Length: upper - lower + 1})
		}

		r, _, err = buf.ReadRune()
		if err != nil {
			return nil, errors.Errorf("invalid array: %v", err)
		}
	}

	if r != '{' {
		return nil, errors.Errorf("invalid array, expected '{' got %v", r)
	}

	implicitDimensions := []ArrayDimension{{LowerBound: 1, Length: 0}}

	// Consume all initial opening brackets. This provides number of dimensions.
	for {
		r, _, err = buf.ReadRune()
		if err != nil {
			return nil, errors.Errorf("invalid array: %v", err)
		}

		if r == '{' {
			implicitDimensions[len(implicitDimensions)-1].Length = 1
			implicitDimensions = append(implicitDimensions, ArrayDimension{LowerBound: 1})
		} else {
			buf.UnreadRune()
			break
		}
	}
	currentDim := len(implicitDimensions) - 1
	counterDim := currentDim

	for {
		r, _, err = buf.ReadRune()
		if err != nil {
			return nil, errors.Errorf("invalid array: %v", err)
		}

		switch r {
		case '{':
			if currentDim == counterDim {
				implicitDimensions[currentDim].Length++
			}
			currentDim++
		case ',':
		case '}':
			currentDim--
			if currentDim < counterDim {
				counterDim = currentDim
			}
		default:
			buf.UnreadRune()
			value, quoted, err := arrayParseValue(buf)
			if err != nil {
				return nil, errors.Errorf("invalid array value: %v", err)
			}
			if currentDim == counterDim {
				implicitDimensions[currentDim].Length++
			}
			uta.Elements = append(uta.Elements, value)
			uta.Quoted = append(uta.Quoted, quoted)
		}

		if currentDim < 0 {
			break
		}
	}

	skipWhitespace(buf)

	if buf.Len() > 0 {
		return nil, errors.Errorf("unexpected trailing data: %v", buf.String())
	}

	if len(explicitDimensions) > 0 {
		uta.Dimensions = explicitDimensions
	} else {
		uta.Dimensions = implicitDimensions
		if len(uta.Dimensions) == 1 && uta.Dimensions[0].Length == 0 {
			uta.Dimensions = []ArrayDimension{}
		}
	}

	return uta, nil
}

func skipWhitespace(buf *bytes.Buffer) {
	var r rune
	var err error
	for r, _, err = buf.ReadRune(); unicode.IsSpace(r); r, _, err = buf.ReadRune() {
	}

	if err != io.EOF {
		buf.UnreadRune()
	}
}

func arrayParseValue(buf *bytes.Buffer) (string, bool, error) {
	r, _, err := buf.ReadRune()
	if err != nil {
		return "", false, err
	}
	if r == '"' {
		s, err := arrayParseQuotedValue(buf)
		return s, true, err
	}
	buf.UnreadRune()

	s := &bytes.Buffer{}

	for {
		r, _, err := buf.ReadRune()
		if err != nil {
			return "", false, err
		}

		switch r {
		case ',', '}':
			buf.UnreadRune()
			return s.String(), false, nil
		}

		s.WriteRune(r)
	}
}

func arrayParseQuotedValue(buf *bytes.Buffer) (string, error) {
	s := &bytes.Buffer{}

	for {
		r, _, err := buf.ReadRune()
		if err != nil {
			return "", err
		}

		switch r {
		case '\\':
			r, _, err = buf.ReadRune()
			if err != nil {
				return "", err
			}
		case '"':
			r, _, err = buf.ReadRune()
			if err != nil {
				return "", err
			}
			buf.UnreadRune()
			return s.String(), nil
		}
		s.WriteRune(r)
	}
}

func arrayParseInteger(buf *bytes.Buffer) (int32, error) {
	s := &bytes.Buffer{}

	for {
		r, _, err := buf.ReadRune()
		if err != nil {
			return 0, err
		}

		if ('0' <= r && r <= '9') || r == '-' {
			s.WriteRune(r)
		} else {
			buf.UnreadRune()
			n, err := strconv.ParseInt(s.String(), 10, 32)
			if err != nil {
				return 0, err
			}
			return int32(n), nil
		}
	}
}
