package pgtype

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrNotNull is matched by errors returned when NULL is decoded into a type that cannot hold it.
var ErrNotNull = errors.New("unexpected NULL")

// NotNullError is returned when a NULL value is decoded into a non-nullable Go type.
type NotNullError struct {
	Type   Type
	Target string
}

func (e *NotNullError) Error() string {
	return fmt.Sprintf("cannot decode NULL %s into %s", e.Type.Name, e.Target)
}

func (e *NotNullError) Unwrap() error {
	return ErrNotNull
}

// DecodeError is returned when a raw value cannot be decoded into the target Go type.
type DecodeError struct {
	Type   Type
	Target string
	// Raw is a printable, possibly truncated, rendition of the source bytes.
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s %s into %s: %v", e.Type.Name, e.Raw, e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError is returned when a Go value cannot be encoded.
type EncodeError struct {
	Type    Type
	Target  string
	Message string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("cannot encode %s as %s: %s", e.Target, e.Type.Name, e.Message)
}

func targetName(v interface{}) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
}

func rawString(src []byte) string {
	const max = 64
	truncated := src
	if len(truncated) > max {
		truncated = truncated[:max]
	}

	var s string
	if utf8.Valid(truncated) {
		s = fmt.Sprintf("%q", truncated)
	} else {
		s = fmt.Sprintf("%x", truncated)
	}
	if len(src) > max {
		s = fmt.Sprintf("%s (truncated %d bytes)", s, len(src)-max)
	}
	return s
}

func newDecodeError(t Type, dst interface{}, src []byte, err error) error {
	return &DecodeError{Type: t, Target: targetName(dst), Raw: rawString(src), Err: err}
}

func newNotNullError(t Type, dst interface{}) error {
	return &NotNullError{Type: t, Target: targetName(dst)}
}

func newEncodeError(t Type, src interface{}, format string, args ...interface{}) error {
	return &EncodeError{Type: t, Target: targetName(src), Message: fmt.Sprintf(format, args...)}
}

func invalidLength(t Type, dst interface{}, src []byte, want int) error {
	return newDecodeError(t, dst, src, errors.Errorf("invalid length: want %d, got %d", want, len(src)))
}
