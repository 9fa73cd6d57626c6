package pgtype

import (
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Text is sent as text. It decodes any textual column such as varchar, char or name.
type Text string

func (Text) Type() Type              { return TextType }
func (Text) PreferredFormat() Format { return TextFormatCode }

func (dst *Text) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	*dst = Text(src)
	return nil
}

func (dst *Text) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	if !utf8.Valid(src) {
		return newDecodeError(t, dst, src, errors.New("invalid UTF-8"))
	}

	*dst = Text(src)
	return nil
}

func (src Text) EncodeText(buf []byte) ([]byte, error) {
	return append(buf, src...), nil
}

func (src Text) EncodeBinary(buf []byte) ([]byte, error) {
	return append(buf, src...), nil
}

// Varchar is a Text that is sent as varchar.
type Varchar string

func (Varchar) Type() Type              { return VarcharType }
func (Varchar) PreferredFormat() Format { return TextFormatCode }

func (dst *Varchar) DecodeText(t Type, src []byte) error {
	return (*Text)(dst).DecodeText(t, src)
}

func (dst *Varchar) DecodeBinary(t Type, src []byte) error {
	return (*Text)(dst).DecodeBinary(t, src)
}

func (src Varchar) EncodeText(buf []byte) ([]byte, error) {
	return append(buf, src...), nil
}

func (src Varchar) EncodeBinary(buf []byte) ([]byte, error) {
	return append(buf, src...), nil
}
