package pgtype

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

const pgDateFormat = "2006-01-02"

// Date is a calendar day. The time of day and location of Time are ignored when encoding.
type Date struct {
	Time time.Time
}

func (Date) Type() Type              { return DateType }
func (Date) PreferredFormat() Format { return BinaryFormatCode }

func (dst *Date) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	tm, err := time.ParseInLocation(pgDateFormat, string(src), time.UTC)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Date{Time: tm}
	return nil
}

func (dst *Date) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	if len(src) != 4 {
		return invalidLength(t, dst, src, 4)
	}

	dayOffset := int32(binary.BigEndian.Uint32(src))
	if dayOffset == math.MaxInt32 || dayOffset == math.MinInt32 {
		return newDecodeError(t, dst, src, errors.New("infinite dates are not supported"))
	}

	*dst = Date{Time: time.Date(2000, 1, int(1+dayOffset), 0, 0, 0, 0, time.UTC)}
	return nil
}

func (src Date) EncodeText(buf []byte) ([]byte, error) {
	return src.Time.AppendFormat(buf, pgDateFormat), nil
}

func (src Date) EncodeBinary(buf []byte) ([]byte, error) {
	y, m, d := src.Time.Date()
	tUnix := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
	dateEpoch := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

	secSinceDateEpoch := tUnix - dateEpoch
	daysSinceDateEpoch := secSinceDateEpoch / 86400

	return pgio.AppendInt32(buf, int32(daysSinceDateEpoch)), nil
}
