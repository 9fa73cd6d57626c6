package pgtype

import (
	"strconv"

	"github.com/pkg/errors"
)

type Bool bool

func (Bool) Type() Type              { return BoolType }
func (Bool) PreferredFormat() Format { return BinaryFormatCode }

func (dst *Bool) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	b, err := strconv.ParseBool(string(src))
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Bool(b)
	return nil
}

func (dst *Bool) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	if len(src) != 1 {
		return invalidLength(t, dst, src, 1)
	}
	if src[0] > 1 {
		return newDecodeError(t, dst, src, errors.New("invalid bool byte"))
	}

	*dst = src[0] == 1
	return nil
}

func (src Bool) EncodeText(buf []byte) ([]byte, error) {
	if src {
		return append(buf, 't'), nil
	}
	return append(buf, 'f'), nil
}

func (src Bool) EncodeBinary(buf []byte) ([]byte, error) {
	if src {
		return append(buf, 1), nil
	}
	return append(buf, 0), nil
}
