package pgtype

import (
	"github.com/gofrs/uuid"
)

type UUID uuid.UUID

func (UUID) Type() Type              { return UUIDType }
func (UUID) PreferredFormat() Format { return BinaryFormatCode }

func (src UUID) String() string {
	return uuid.UUID(src).String()
}

func (dst *UUID) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	u, err := uuid.FromString(string(src))
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = UUID(u)
	return nil
}

func (dst *UUID) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	u, err := uuid.FromBytes(src)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = UUID(u)
	return nil
}

func (src UUID) EncodeText(buf []byte) ([]byte, error) {
	return append(buf, uuid.UUID(src).String()...), nil
}

func (src UUID) EncodeBinary(buf []byte) ([]byte, error) {
	return append(buf, src[:]...), nil
}
