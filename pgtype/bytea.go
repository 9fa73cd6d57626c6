package pgtype

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// Bytea is binary data. The text format is the hex format introduced in PostgreSQL 9.0.
type Bytea []byte

func (Bytea) Type() Type              { return ByteaType }
func (Bytea) PreferredFormat() Format { return BinaryFormatCode }

func (dst *Bytea) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	if len(src) < 2 || src[0] != '\\' || src[1] != 'x' {
		return newDecodeError(t, dst, src, errors.New(`missing \x prefix`))
	}

	buf := make([]byte, hex.DecodedLen(len(src)-2))
	if _, err := hex.Decode(buf, src[2:]); err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = buf
	return nil
}

func (dst *Bytea) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	buf := make([]byte, len(src))
	copy(buf, src)
	*dst = buf
	return nil
}

func (src Bytea) EncodeText(buf []byte) ([]byte, error) {
	buf = append(buf, `\x`...)
	start := len(buf)
	buf = append(buf, make([]byte, hex.EncodedLen(len(src)))...)
	hex.Encode(buf[start:], src)
	return buf, nil
}

func (src Bytea) EncodeBinary(buf []byte) ([]byte, error) {
	return append(buf, src...), nil
}
