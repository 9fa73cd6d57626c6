package pgtype

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

const (
	pgTimestampFormat         = "2006-01-02 15:04:05.999999999"
	pgTimestamptzHourFormat   = "2006-01-02 15:04:05.999999999Z07"
	pgTimestamptzMinuteFormat = "2006-01-02 15:04:05.999999999Z07:00"
	pgTimestamptzSecondFormat = "2006-01-02 15:04:05.999999999Z07:00:00"

	microsecFromUnixEpochToY2K = 946684800 * 1000000
)

var errInfiniteTimestamp = errors.New("infinite timestamps are not supported")

func discardTimeZone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func microsecSinceY2K(t time.Time) int64 {
	microsecSinceUnixEpoch := t.Unix()*1000000 + int64(t.Nanosecond())/1000
	return microsecSinceUnixEpoch - microsecFromUnixEpochToY2K
}

func decodeMicrosecSinceY2K(src []byte) (time.Time, error) {
	if len(src) != 8 {
		return time.Time{}, errors.Errorf("invalid length: want 8, got %d", len(src))
	}

	microsec := int64(binary.BigEndian.Uint64(src))
	if microsec == math.MaxInt64 || microsec == math.MinInt64 {
		return time.Time{}, errInfiniteTimestamp
	}

	microsecSinceUnixEpoch := microsecFromUnixEpochToY2K + microsec
	return time.Unix(microsecSinceUnixEpoch/1000000, (microsecSinceUnixEpoch%1000000)*1000).UTC(), nil
}

// Timestamp is a timestamp without time zone. The location of Time is discarded when encoding and decoded values are
// in UTC.
type Timestamp struct {
	Time time.Time
}

func (Timestamp) Type() Type              { return TimestampType }
func (Timestamp) PreferredFormat() Format { return BinaryFormatCode }

func (dst *Timestamp) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	tm, err := time.ParseInLocation(pgTimestampFormat, string(src), time.UTC)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Timestamp{Time: tm}
	return nil
}

func (dst *Timestamp) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	tm, err := decodeMicrosecSinceY2K(src)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Timestamp{Time: tm}
	return nil
}

func (src Timestamp) EncodeText(buf []byte) ([]byte, error) {
	return discardTimeZone(src.Time).Truncate(time.Microsecond).AppendFormat(buf, pgTimestampFormat), nil
}

func (src Timestamp) EncodeBinary(buf []byte) ([]byte, error) {
	return pgio.AppendInt64(buf, microsecSinceY2K(discardTimeZone(src.Time))), nil
}

// Timestamptz is a timestamp with time zone. Decoded values are in UTC.
type Timestamptz struct {
	Time time.Time
}

func (Timestamptz) Type() Type              { return TimestamptzType }
func (Timestamptz) PreferredFormat() Format { return BinaryFormatCode }

func (dst *Timestamptz) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	sbuf := string(src)
	var format string
	if len(sbuf) >= 9 && (sbuf[len(sbuf)-9] == '-' || sbuf[len(sbuf)-9] == '+') {
		format = pgTimestamptzSecondFormat
	} else if len(sbuf) >= 6 && (sbuf[len(sbuf)-6] == '-' || sbuf[len(sbuf)-6] == '+') {
		format = pgTimestamptzMinuteFormat
	} else {
		format = pgTimestamptzHourFormat
	}

	tm, err := time.Parse(format, sbuf)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Timestamptz{Time: tm.UTC()}
	return nil
}

func (dst *Timestamptz) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	tm, err := decodeMicrosecSinceY2K(src)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Timestamptz{Time: tm}
	return nil
}

func (src Timestamptz) EncodeText(buf []byte) ([]byte, error) {
	return src.Time.UTC().Truncate(time.Microsecond).AppendFormat(buf, pgTimestamptzMinuteFormat), nil
}

func (src Timestamptz) EncodeBinary(buf []byte) ([]byte, error) {
	return pgio.AppendInt64(buf, microsecSinceY2K(src.Time)), nil
}
