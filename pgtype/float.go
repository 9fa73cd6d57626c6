package pgtype

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/jackc/pgio"
)

type Float4 float32

func (Float4) Type() Type              { return Float4Type }
func (Float4) PreferredFormat() Format { return BinaryFormatCode }

func (dst *Float4) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	n, err := strconv.ParseFloat(string(src), 32)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Float4(n)
	return nil
}

func (dst *Float4) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	if len(src) != 4 {
		return invalidLength(t, dst, src, 4)
	}

	*dst = Float4(math.Float32frombits(binary.BigEndian.Uint32(src)))
	return nil
}

func (src Float4) EncodeText(buf []byte) ([]byte, error) {
	return appendFloat(buf, float64(src), 32), nil
}

func (src Float4) EncodeBinary(buf []byte) ([]byte, error) {
	return pgio.AppendUint32(buf, math.Float32bits(float32(src))), nil
}

type Float8 float64

func (Float8) Type() Type              { return Float8Type }
func (Float8) PreferredFormat() Format { return BinaryFormatCode }

func (dst *Float8) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	n, err := strconv.ParseFloat(string(src), 64)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Float8(n)
	return nil
}

func (dst *Float8) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	if len(src) != 8 {
		return invalidLength(t, dst, src, 8)
	}

	*dst = Float8(math.Float64frombits(binary.BigEndian.Uint64(src)))
	return nil
}

func (src Float8) EncodeText(buf []byte) ([]byte, error) {
	return appendFloat(buf, float64(src), 64), nil
}

func (src Float8) EncodeBinary(buf []byte) ([]byte, error) {
	return pgio.AppendUint64(buf, math.Float64bits(float64(src))), nil
}

// appendFloat uses the PostgreSQL spelling of the special values.
func appendFloat(buf []byte, f float64, bitSize int) []byte {
	switch {
	case math.IsInf(f, 1):
		return append(buf, "Infinity"...)
	case math.IsInf(f, -1):
		return append(buf, "-Infinity"...)
	case math.IsNaN(f):
		return append(buf, "NaN"...)
	}
	return strconv.AppendFloat(buf, f, 'f', -1, bitSize)
}
