package pgtype_test

import (
	"testing"

	"github.com/jackc/pgmodel/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// '{1,2}'::int4[]
var int4ArrayBinary = []byte{
	0, 0, 0, 1, // dimensions
	0, 0, 0, 0, // contains null
	0, 0, 0, 23, // element oid
	0, 0, 0, 2, 0, 0, 0, 1, // length, lower bound
	0, 0, 0, 4, 0, 0, 0, 1,
	0, 0, 0, 4, 0, 0, 0, 2,
}

// '{null,str}'::text[]
var textArrayWithNullBinary = []byte{
	0, 0, 0, 1,
	0, 0, 0, 1,
	0, 0, 0, 25,
	0, 0, 0, 2, 0, 0, 0, 1,
	0xff, 0xff, 0xff, 0xff,
	0, 0, 0, 3, 's', 't', 'r',
}

func TestParseUntypedTextArray(t *testing.T) {
	tests := []struct {
		source string
		result pgtype.UntypedTextArray
	}{
		{
			source: "{}",
			result: pgtype.UntypedTextArray{
				Elements:   []string{},
				Quoted:     []bool{},
				Dimensions: []pgtype.ArrayDimension{},
			},
		},
		{
			source: "{a,b}",
			result: pgtype.UntypedTextArray{
				Elements:   []string{"a", "b"},
				Quoted:     []bool{false, false},
				Dimensions: []pgtype.ArrayDimension{{Length: 2, LowerBound: 1}},
			},
		},
		{
			source: `{"NULL",NULL}`,
			result: pgtype.UntypedTextArray{
				Elements:   []string{"NULL", "NULL"},
				Quoted:     []bool{true, false},
				Dimensions: []pgtype.ArrayDimension{{Length: 2, LowerBound: 1}},
			},
		},
		{
			source: `{"He said, \"Hello.\""}`,
			result: pgtype.UntypedTextArray{
				Elements:   []string{`He said, "Hello."`},
				Quoted:     []bool{true},
				Dimensions: []pgtype.ArrayDimension{{Length: 1, LowerBound: 1}},
			},
		},
		{
			source: "{{a,b},{c,d},{e,f}}",
			result: pgtype.UntypedTextArray{
				Elements:   []string{"a", "b", "c", "d", "e", "f"},
				Quoted:     []bool{false, false, false, false, false, false},
				Dimensions: []pgtype.ArrayDimension{{Length: 3, LowerBound: 1}, {Length: 2, LowerBound: 1}},
			},
		},
		{
			source: "[4:4]={1}",
			result: pgtype.UntypedTextArray{
				Elements:   []string{"1"},
				Quoted:     []bool{false},
				Dimensions: []pgtype.ArrayDimension{{Length: 1, LowerBound: 4}},
			},
		},
	}

	for i, tt := range tests {
		r, err := pgtype.ParseUntypedTextArray(tt.source)
		require.NoErrorf(t, err, "%d", i)
		assert.Equalf(t, tt.result, *r, "%d: %s", i, tt.source)
	}
}

func TestArrayDecodeBinary(t *testing.T) {
	var ints pgtype.Array[pgtype.Int4]
	require.NoError(t, ints.DecodeBinary(pgtype.TypeForOID(1007), int4ArrayBinary))
	assert.Equal(t, pgtype.Array[pgtype.Int4]{1, 2}, ints)

	var texts pgtype.Array[pgtype.Option[pgtype.Text]]
	require.NoError(t, texts.DecodeBinary(pgtype.TypeForOID(1009), textArrayWithNullBinary))
	assert.Equal(t, pgtype.Array[pgtype.Option[pgtype.Text]]{pgtype.None[pgtype.Text](), pgtype.Some(pgtype.Text("str"))}, texts)
}

func TestArrayDecodeBinaryNullIntoNonNullableElement(t *testing.T) {
	var texts pgtype.Array[pgtype.Text]
	err := texts.DecodeBinary(pgtype.TypeForOID(1009), textArrayWithNullBinary)
	require.ErrorIs(t, err, pgtype.ErrNotNull)
}

func TestArrayDecodeBinaryRejectsMultipleDimensions(t *testing.T) {
	src := []byte{
		0, 0, 0, 2,
		0, 0, 0, 0,
		0, 0, 0, 23,
		0, 0, 0, 1, 0, 0, 0, 1,
		0, 0, 0, 1, 0, 0, 0, 1,
		0, 0, 0, 4, 0, 0, 0, 7,
	}

	var ints pgtype.Array[pgtype.Int4]
	err := ints.DecodeBinary(pgtype.TypeForOID(1007), src)
	var de *pgtype.DecodeError
	require.ErrorAs(t, err, &de)
}

func TestArrayDecodeBinaryRejectsNegativeDimensions(t *testing.T) {
	src := []byte{0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0, 0, 0, 23}

	var ints pgtype.Array[pgtype.Int4]
	err := ints.DecodeBinary(pgtype.TypeForOID(1007), src)
	var de *pgtype.DecodeError
	require.ErrorAs(t, err, &de)
}

func TestArrayDecodeText(t *testing.T) {
	var ints pgtype.Array[pgtype.Int4]
	require.NoError(t, ints.DecodeText(pgtype.TypeForOID(1007), []byte("{1,2}")))
	assert.Equal(t, pgtype.Array[pgtype.Int4]{1, 2}, ints)

	var texts pgtype.Array[pgtype.Option[pgtype.Text]]
	require.NoError(t, texts.DecodeText(pgtype.TypeForOID(1009), []byte(`{null,str}`)))
	assert.Equal(t, pgtype.Array[pgtype.Option[pgtype.Text]]{pgtype.None[pgtype.Text](), pgtype.Some(pgtype.Text("str"))}, texts)

	err := ints.DecodeText(pgtype.TypeForOID(1007), []byte("{{1},{2}}"))
	var de *pgtype.DecodeError
	require.ErrorAs(t, err, &de)
}

func TestArrayEncodeText(t *testing.T) {
	buf, err := pgtype.Array[pgtype.Int4]{1, 2, 3}.EncodeText(nil)
	require.NoError(t, err)
	assert.Equal(t, "{1,2,3}", string(buf))

	buf, err = pgtype.Array[pgtype.Option[pgtype.Text]]{pgtype.None[pgtype.Text](), pgtype.Some(pgtype.Text("a b")), pgtype.Some(pgtype.Text(""))}.EncodeText(nil)
	require.NoError(t, err)
	assert.Equal(t, `{NULL,a b,""}`, string(buf))

	buf, err = pgtype.Array[pgtype.Int4]{}.EncodeText(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(buf))
}

func TestArrayEncodeBinary(t *testing.T) {
	buf, err := pgtype.Array[pgtype.Int4]{1, 2}.EncodeBinary(nil)
	require.NoError(t, err)
	assert.Equal(t, int4ArrayBinary, buf)

	buf, err = pgtype.Array[pgtype.Option[pgtype.Text]]{pgtype.None[pgtype.Text](), pgtype.Some(pgtype.Text("str"))}.EncodeBinary(nil)
	require.NoError(t, err)
	assert.Equal(t, textArrayWithNullBinary, buf)
}

func TestArrayType(t *testing.T) {
	assert.Equal(t, "_int4", pgtype.Array[pgtype.Int4]{}.Type().Name)
	assert.Equal(t, "_text", pgtype.Array[pgtype.Option[pgtype.Text]]{}.Type().Name)
}

func TestArrayDecoder(t *testing.T) {
	ad, err := pgtype.NewArrayDecoder[pgtype.Option[pgtype.Text]](textArrayWithNullBinary)
	require.NoError(t, err)
	assert.True(t, ad.Header().ContainsNull)
	assert.Equal(t, 2, ad.Header().ElementCount())

	require.True(t, ad.Next())
	assert.False(t, ad.Value().Valid)
	require.True(t, ad.Next())
	assert.Equal(t, pgtype.Some(pgtype.Text("str")), ad.Value())
	require.False(t, ad.Next())
	require.NoError(t, ad.Err())

	// Exhausted decoders stay exhausted.
	require.False(t, ad.Next())
}

func TestArrayDecoderStrict(t *testing.T) {
	src := append([]byte{}, int4ArrayBinary...)
	src[23] = 3 // the first element now claims 3 bytes
	src = append(src[:24], append([]byte{0, 0, 1}, src[28:]...)...)

	ad, err := pgtype.NewArrayDecoder[pgtype.Int4](src)
	require.NoError(t, err)
	require.False(t, ad.Next())

	var de *pgtype.DecodeError
	require.ErrorAs(t, ad.Err(), &de)
}

func TestArrayDecoderLenient(t *testing.T) {
	src := append([]byte{}, int4ArrayBinary...)
	src[23] = 3
	src = append(src[:24], append([]byte{0, 0, 1}, src[28:]...)...)

	ad, err := pgtype.NewArrayDecoder[pgtype.Int4](src)
	require.NoError(t, err)

	var skipped []error
	ad.Lenient(func(err error) { skipped = append(skipped, err) })

	var values []pgtype.Int4
	for ad.Next() {
		values = append(values, ad.Value())
	}
	require.NoError(t, ad.Err())
	assert.Equal(t, []pgtype.Int4{2}, values)
	assert.Len(t, skipped, 1)
}

func TestArrayDecoderTruncatedPayload(t *testing.T) {
	ad, err := pgtype.NewArrayDecoder[pgtype.Int4](int4ArrayBinary[:len(int4ArrayBinary)-2])
	require.NoError(t, err)

	ad.Lenient(func(error) {})
	require.True(t, ad.Next())
	require.False(t, ad.Next())
	require.Error(t, ad.Err())
}

func TestArrayDecoderInvalidElementLength(t *testing.T) {
	src := append([]byte{}, int4ArrayBinary...)
	copy(src[20:24], []byte{0xff, 0xff, 0xff, 0xfe})

	ad, err := pgtype.NewArrayDecoder[pgtype.Option[pgtype.Int4]](src)
	require.NoError(t, err)

	ad.Lenient(func(error) {})
	require.False(t, ad.Next())
	require.EqualError(t, ad.Err(), "invalid array element length -2 at byte 20")

	var arr pgtype.Array[pgtype.Option[pgtype.Int4]]
	require.Error(t, arr.DecodeBinary(pgtype.TypeForOID(1007), src))
}
