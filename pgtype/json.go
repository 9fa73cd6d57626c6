package pgtype

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// JSON holds a value marshaled with encoding/json. JSON[interface{}] decodes any document into maps, slices and
// scalars.
type JSON[T any] struct {
	V T
}

func (JSON[T]) Type() Type              { return JSONType }
func (JSON[T]) PreferredFormat() Format { return TextFormatCode }

func (dst *JSON[T]) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	var v T
	if err := json.Unmarshal(src, &v); err != nil {
		return newDecodeError(t, dst, src, err)
	}

	dst.V = v
	return nil
}

func (dst *JSON[T]) DecodeBinary(t Type, src []byte) error {
	if t.OID == JSONBType.OID {
		return (*JSONB[T])(dst).DecodeBinary(t, src)
	}
	return dst.DecodeText(t, src)
}

func (src JSON[T]) EncodeText(buf []byte) ([]byte, error) {
	b, err := json.Marshal(src.V)
	if err != nil {
		return nil, newEncodeError(JSONType, src, "%v", err)
	}
	return append(buf, b...), nil
}

func (src JSON[T]) EncodeBinary(buf []byte) ([]byte, error) {
	return src.EncodeText(buf)
}

// JSONB is JSON sent as jsonb. The binary format is a version byte followed by the text.
type JSONB[T any] struct {
	V T
}

func (JSONB[T]) Type() Type              { return JSONBType }
func (JSONB[T]) PreferredFormat() Format { return TextFormatCode }

func (dst *JSONB[T]) DecodeText(t Type, src []byte) error {
	return (*JSON[T])(dst).DecodeText(t, src)
}

func (dst *JSONB[T]) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}
	if t.OID != JSONBType.OID {
		return (*JSON[T])(dst).DecodeText(t, src)
	}

	if len(src) == 0 {
		return newDecodeError(t, dst, src, errors.New("jsonb too short"))
	}
	if src[0] != 1 {
		return newDecodeError(t, dst, src, errors.Errorf("unknown jsonb version number %d", src[0]))
	}

	return (*JSON[T])(dst).DecodeText(t, src[1:])
}

func (src JSONB[T]) EncodeText(buf []byte) ([]byte, error) {
	return JSON[T](src).EncodeText(buf)
}

func (src JSONB[T]) EncodeBinary(buf []byte) ([]byte, error) {
	buf = append(buf, 1)
	return JSON[T](src).EncodeText(buf)
}
