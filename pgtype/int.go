package pgtype

import (
	"encoding/binary"
	"strconv"

	"github.com/jackc/pgio"
)

type Int2 int16

func (Int2) Type() Type              { return Int2Type }
func (Int2) PreferredFormat() Format { return BinaryFormatCode }

func (dst *Int2) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	n, err := strconv.ParseInt(string(src), 10, 16)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Int2(n)
	return nil
}

func (dst *Int2) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	if len(src) != 2 {
		return invalidLength(t, dst, src, 2)
	}

	*dst = Int2(binary.BigEndian.Uint16(src))
	return nil
}

func (src Int2) EncodeText(buf []byte) ([]byte, error) {
	return strconv.AppendInt(buf, int64(src), 10), nil
}

func (src Int2) EncodeBinary(buf []byte) ([]byte, error) {
	return pgio.AppendInt16(buf, int16(src)), nil
}

type Int4 int32

func (Int4) Type() Type              { return Int4Type }
func (Int4) PreferredFormat() Format { return BinaryFormatCode }

func (dst *Int4) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	n, err := strconv.ParseInt(string(src), 10, 32)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Int4(n)
	return nil
}

func (dst *Int4) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	if len(src) != 4 {
		return invalidLength(t, dst, src, 4)
	}

	*dst = Int4(binary.BigEndian.Uint32(src))
	return nil
}

func (src Int4) EncodeText(buf []byte) ([]byte, error) {
	return strconv.AppendInt(buf, int64(src), 10), nil
}

func (src Int4) EncodeBinary(buf []byte) ([]byte, error) {
	return pgio.AppendInt32(buf, int32(src)), nil
}

type Int8 int64

func (Int8) Type() Type              { return Int8Type }
func (Int8) PreferredFormat() Format { return BinaryFormatCode }

func (dst *Int8) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	n, err := strconv.ParseInt(string(src), 10, 64)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Int8(n)
	return nil
}

func (dst *Int8) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	if len(src) != 8 {
		return invalidLength(t, dst, src, 8)
	}

	*dst = Int8(binary.BigEndian.Uint64(src))
	return nil
}

func (src Int8) EncodeText(buf []byte) ([]byte, error) {
	return strconv.AppendInt(buf, int64(src), 10), nil
}

func (src Int8) EncodeBinary(buf []byte) ([]byte, error) {
	return pgio.AppendInt64(buf, int64(src)), nil
}
