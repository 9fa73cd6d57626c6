// Package pgtype converts between Go and PostgreSQL values.
/*
Every supported PostgreSQL type has a Go type that implements Value for encoding and whose pointer implements Decoder
for decoding. Both the text and the binary wire formats are supported in both directions:

	var n pgtype.Int4
	err := n.DecodeBinary(pgtype.Int4Type, []byte{0, 0, 0, 42})

	buf, err := pgtype.Int4(42).EncodeText(make([]byte, 0, 8))

A nil source slice is SQL NULL. Decoding NULL into a type that cannot hold it returns an error matching ErrNotNull.
Option[T] holds NULL:

	var name pgtype.Option[pgtype.Text]
	err := name.DecodeText(pgtype.TextType, nil) // name.Valid == false

Encoders append to the buffer they are given and return nil to mean NULL, so callers must pass a non-nil buffer.

Array Support

Array[T] is a one-dimensional array of T in both formats. Multi-dimensional arrays fail to decode into it. Use
ArrayDecoder to walk the elements of a binary array without building a slice.

Numeric Support

Numeric is backed by github.com/shopspring/decimal and Decimal by github.com/cockroachdb/apd. Both decode the binary
format exactly.

Type Registry

Type describes a PostgreSQL type. Map maps OIDs to types and to the default Go type used by Map.DecodeValue when the
caller has no target value.
*/
package pgtype
