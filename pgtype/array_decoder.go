package pgtype

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ArrayDecoder iterates over the elements of a binary array. It reads the payload once, front to back, and cannot be
// restarted. It is not safe for concurrent use.
//
// By default decoding stops at the first element that fails and Err reports the failure. Lenient switches to
// reporting such elements to a callback and skipping them. A truncated payload always stops decoding.
type ArrayDecoder[T any] struct {
	header  ArrayHeader
	src     []byte
	rp      int
	value   T
	err     error
	onError func(error)
}

// NewArrayDecoder parses the array header in src and returns a decoder positioned at the first element.
func NewArrayDecoder[T any](src []byte) (*ArrayDecoder[T], error) {
	header, n, err := ParseArrayHeader(src)
	if err != nil {
		return nil, err
	}

	return &ArrayDecoder[T]{header: header, src: src, rp: n}, nil
}

func (ad *ArrayDecoder[T]) Header() ArrayHeader {
	return ad.header
}

// Lenient makes the decoder skip elements that fail to decode. Each failure is passed to onError.
func (ad *ArrayDecoder[T]) Lenient(onError func(error)) {
	ad.onError = onError
}

// Next decodes the next element. It returns false when the payload is exhausted or decoding failed.
func (ad *ArrayDecoder[T]) Next() bool {
	for ad.err == nil && ad.rp < len(ad.src) {
		if len(ad.src[ad.rp:]) < 4 {
			ad.err = errors.Errorf("array element length truncated at byte %d", ad.rp)
			return false
		}

		elemLen := int(int32(binary.BigEndian.Uint32(ad.src[ad.rp:])))
		ad.rp += 4
		if elemLen < -1 {
			ad.err = errors.Errorf("invalid array element length %d at byte %d", elemLen, ad.rp-4)
			return false
		}

		var elemSrc []byte
		if elemLen >= 0 {
			if len(ad.src[ad.rp:]) < elemLen {
				ad.err = errors.Errorf("array element of %d bytes truncated at byte %d", elemLen, ad.rp)
				return false
			}
			elemSrc = ad.src[ad.rp : ad.rp+elemLen]
			ad.rp += elemLen
		}

		var v T
		d, ok := any(&v).(Decoder)
		if !ok {
			ad.err = errors.Errorf("%s cannot be decoded", targetName(&v))
			return false
		}

		if err := d.DecodeBinary(ad.header.ElementType, elemSrc); err != nil {
			if ad.onError != nil {
				ad.onError(err)
				continue
			}
			ad.err = err
			return false
		}

		ad.value = v
		return true
	}

	return false
}

// Value returns the element decoded by the last successful call to Next.
func (ad *ArrayDecoder[T]) Value() T {
	return ad.value
}

func (ad *ArrayDecoder[T]) Err() error {
	return ad.err
}
