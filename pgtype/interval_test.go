package pgtype_test

import (
	"testing"

	"github.com/jackc/pgmodel/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalDecodeText(t *testing.T) {
	tests := []struct {
		src  string
		want pgtype.Interval
	}{
		{src: "00:00:00", want: pgtype.Interval{}},
		{src: "1 year", want: pgtype.Interval{Months: 12}},
		{src: "1 years", want: pgtype.Interval{Years: 1}},
		{src: "1 month", want: pgtype.Interval{Months: 1}},
		{src: "2 mons", want: pgtype.Interval{Months: 2}},
		{src: "1 year 10 days", want: pgtype.Interval{Years: 1, Days: 10}},
		{src: "1 year 2 months 3 days 04:05:06.000007", want: pgtype.Interval{Years: 1, Months: 2, Days: 3, Hours: 4, Mins: 5, Secs: 6, Usecs: 7}},
		{src: "04:05:06.5", want: pgtype.Interval{Hours: 4, Mins: 5, Secs: 6, Usecs: 500000}},
		{src: "-1 years +2 mons -3 days -04:05:06", want: pgtype.Interval{Years: -1, Months: 2, Days: -3, Hours: -4, Mins: -5, Secs: -6}},
		{src: "34223:00:00", want: pgtype.Interval{Hours: 34223}},
	}

	for _, tt := range tests {
		var got pgtype.Interval
		require.NoError(t, got.DecodeText(pgtype.IntervalType, []byte(tt.src)), tt.src)
		assert.Truef(t, tt.want.Equal(got), "%s: got %+v", tt.src, got)
	}
}

func TestIntervalDecodeTextExactFields(t *testing.T) {
	var got pgtype.Interval
	require.NoError(t, got.DecodeText(pgtype.IntervalType, []byte("1 year 2 months 3 days 04:05:06.000007")))
	assert.Equal(t, pgtype.Interval{Years: 1, Months: 2, Days: 3, Hours: 4, Mins: 5, Secs: 6, Usecs: 7}, got)
}

func TestIntervalDecodeTextInvalid(t *testing.T) {
	for _, src := range []string{"", "forever", "1 fortnight", "12:00"} {
		var got pgtype.Interval
		err := got.DecodeText(pgtype.IntervalType, []byte(src))
		var de *pgtype.DecodeError
		require.ErrorAsf(t, err, &de, "%q", src)
	}
}

func TestIntervalDecodeBinary(t *testing.T) {
	tests := []struct {
		src  []byte
		want pgtype.Interval
	}{
		{
			src:  []byte{0, 0, 0, 3, 48, 151, 149, 151, 0, 0, 0, 0, 0, 0, 0, 0},
			want: pgtype.Interval{Hours: 3, Mins: 48, Secs: 20, Usecs: 142487},
		},
		{
			src:  []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 4, 0, 0, 3, 50},
			want: pgtype.Interval{Years: 68, Months: 2, Days: 4},
		},
		{
			src:  []byte{0, 0, 0, 3, 108, 139, 192, 128, 0, 0, 0, 3, 0, 0, 0, 14},
			want: pgtype.Interval{Years: 1, Months: 2, Days: 3, Hours: 4, Mins: 5, Secs: 6},
		},
	}

	for i, tt := range tests {
		var got pgtype.Interval
		require.NoError(t, got.DecodeBinary(pgtype.IntervalType, tt.src), "%d", i)
		assert.Equal(t, tt.want, got, "%d", i)
	}
}

func TestIntervalDecodeBinaryHoursOverflow(t *testing.T) {
	var got pgtype.Interval
	err := got.DecodeBinary(pgtype.IntervalType, []byte{0x7f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0, 0, 0, 0})

	var de *pgtype.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, pgtype.Interval{}, got)
}

func TestIntervalEncodeText(t *testing.T) {
	buf, err := pgtype.Interval{Years: 1, Months: 2, Days: 3, Hours: 4, Mins: 5, Secs: 6, Usecs: 7}.EncodeText(nil)
	require.NoError(t, err)
	assert.Equal(t, "1 years 2 mons 3 days 04:05:06.000007", string(buf))
}

func TestIntervalCompare(t *testing.T) {
	year := pgtype.Interval{Years: 1}
	assert.True(t, year.Equal(pgtype.Interval{Months: 12}))
	assert.True(t, year.Equal(pgtype.Interval{Days: 360}))
	assert.True(t, pgtype.Interval{Days: 1}.Equal(pgtype.Interval{Hours: 24}))

	assert.Equal(t, -1, pgtype.Interval{Days: 29}.Compare(pgtype.Interval{Months: 1}))
	assert.Equal(t, 1, pgtype.Interval{Hours: 25}.Compare(pgtype.Interval{Days: 1}))
	assert.Equal(t, 0, pgtype.Interval{Mins: 60}.Compare(pgtype.Interval{Hours: 1}))

	assert.Equal(t, int64(86400000000), pgtype.Interval{Days: 1}.Microseconds())
}
