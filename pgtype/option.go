package pgtype

import (
	"github.com/pkg/errors"
)

// Option is a nullable T. The zero value is NULL.
type Option[T Value] struct {
	V     T
	Valid bool
}

// Some returns a valid Option holding v.
func Some[T Value](v T) Option[T] {
	return Option[T]{V: v, Valid: true}
}

// None returns a NULL Option.
func None[T Value]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is valid.
func (src Option[T]) Get() (T, bool) {
	return src.V, src.Valid
}

func (src Option[T]) IsNull() bool {
	return !src.Valid
}

// Type returns the type of T whether or not src is valid.
func (src Option[T]) Type() Type {
	var zero T
	return zero.Type()
}

func (src Option[T]) PreferredFormat() Format {
	var zero T
	return zero.PreferredFormat()
}

func (dst *Option[T]) DecodeText(t Type, src []byte) error {
	if src == nil {
		*dst = Option[T]{}
		return nil
	}

	var v T
	d, ok := any(&v).(Decoder)
	if !ok {
		return newDecodeError(t, dst, src, errors.Errorf("%s cannot be decoded", targetName(&v)))
	}
	if err := d.DecodeText(t, src); err != nil {
		return err
	}

	*dst = Option[T]{V: v, Valid: true}
	return nil
}

func (dst *Option[T]) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		*dst = Option[T]{}
		return nil
	}

	var v T
	d, ok := any(&v).(Decoder)
	if !ok {
		return newDecodeError(t, dst, src, errors.Errorf("%s cannot be decoded", targetName(&v)))
	}
	if err := d.DecodeBinary(t, src); err != nil {
		return err
	}

	*dst = Option[T]{V: v, Valid: true}
	return nil
}

func (src Option[T]) EncodeText(buf []byte) ([]byte, error) {
	if !src.Valid {
		return nil, nil
	}
	return src.V.EncodeText(buf)
}

func (src Option[T]) EncodeBinary(buf []byte) ([]byte, error) {
	if !src.Valid {
		return nil, nil
	}
	return src.V.EncodeBinary(buf)
}

// Null is an untyped NULL parameter. The server infers its type from the statement.
type Null struct{}

func (Null) Type() Type                              { return UnspecifiedType }
func (Null) PreferredFormat() Format                 { return TextFormatCode }
func (Null) IsNull() bool                            { return true }
func (Null) EncodeText(buf []byte) ([]byte, error)   { return nil, nil }
func (Null) EncodeBinary(buf []byte) ([]byte, error) { return nil, nil }
