package pgtype

import (
	"encoding/binary"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

const (
	microsecondsPerSecond = 1000000
	microsecondsPerMinute = 60 * microsecondsPerSecond
	microsecondsPerHour   = 60 * microsecondsPerMinute
	microsecondsPerDay    = 24 * microsecondsPerHour
	daysPerMonth          = 30
	monthsPerYear         = 12
)

// Interval is a PostgreSQL interval split into its calendar and clock parts. Binary values are normalized: months
// are split into years and months, microseconds into hours, minutes, seconds and microseconds.
//
// Equal and Compare treat a year as 12 months, a month as 30 days and a day as 24 hours. This matches how
// PostgreSQL compares intervals, but it is not calendar arithmetic: one month added to a date is not always 30 days.
type Interval struct {
	Years  int32
	Months int32
	Days   int32
	Hours  int32
	Mins   int32
	Secs   int32
	Usecs  int32
}

func (Interval) Type() Type              { return IntervalType }
func (Interval) PreferredFormat() Format { return BinaryFormatCode }

// Microseconds returns the length of src in microseconds using the approximations documented on Interval.
func (src Interval) Microseconds() int64 {
	months := int64(src.Years)*monthsPerYear + int64(src.Months)
	days := months*daysPerMonth + int64(src.Days)
	return days*microsecondsPerDay + src.clockMicroseconds()
}

func (src Interval) clockMicroseconds() int64 {
	return int64(src.Hours)*microsecondsPerHour +
		int64(src.Mins)*microsecondsPerMinute +
		int64(src.Secs)*microsecondsPerSecond +
		int64(src.Usecs)
}

func (src Interval) Equal(other Interval) bool {
	return src.Microseconds() == other.Microseconds()
}

// Compare returns -1, 0 or +1.
func (src Interval) Compare(other Interval) int {
	a, b := src.Microseconds(), other.Microseconds()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (src Interval) String() string {
	buf, _ := src.EncodeText(nil)
	return string(buf)
}

var intervalRegexp = regexp.MustCompile(
	`^(?:([+-]?\d+) years?)? ?(?:([+-]?\d+) (?:months?|mons?))? ?(?:([+-]?\d+) days?)? ?(?:([+-]?)(\d+):(\d+):(\d+)(?:\.(\d{1,6}))?)?$`,
)

func (dst *Interval) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	s := string(src)
	if s == "00:00:00" {
		*dst = Interval{}
		return nil
	}

	m := intervalRegexp.FindStringSubmatch(s)
	if s == "" || m == nil {
		return newDecodeError(t, dst, src, errors.New("bad interval format"))
	}

	var parts [7]int32
	for i, group := range []int{1, 2, 3, 5, 6, 7} {
		if m[group] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[group], 10, 32)
		if err != nil {
			return newDecodeError(t, dst, src, err)
		}
		parts[i] = int32(n)
	}

	if frac := m[8]; frac != "" {
		n, err := strconv.ParseInt(frac, 10, 32)
		if err != nil {
			return newDecodeError(t, dst, src, err)
		}
		for i := len(frac); i < 6; i++ {
			n *= 10
		}
		parts[6] = int32(n)
	}

	if m[4] == "-" {
		for i := 3; i < 7; i++ {
			parts[i] = -parts[i]
		}
	}

	*dst = Interval{
		Years:  parts[0],
		Months: parts[1],
		Days:   parts[2],
		Hours:  parts[3],
		Mins:   parts[4],
		Secs:   parts[5],
		Usecs:  parts[6],
	}
	return nil
}

func (dst *Interval) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	if len(src) != 16 {
		return invalidLength(t, dst, src, 16)
	}

	usecs := int64(binary.BigEndian.Uint64(src))
	days := int32(binary.BigEndian.Uint32(src[8:]))
	months := int32(binary.BigEndian.Uint32(src[12:]))

	hours := usecs / microsecondsPerHour
	if hours > math.MaxInt32 || hours < math.MinInt32 {
		return newDecodeError(t, dst, src, errors.Errorf("%d hours does not fit in Interval", hours))
	}

	*dst = Interval{
		Years:  months / monthsPerYear,
		Months: months % monthsPerYear,
		Days:   days,
		Hours:  int32(hours),
		Mins:   int32(usecs % microsecondsPerHour / microsecondsPerMinute),
		Secs:   int32(usecs % microsecondsPerMinute / microsecondsPerSecond),
		Usecs:  int32(usecs % microsecondsPerSecond),
	}
	return nil
}

// EncodeText writes the postgres style output, e.g. "1 years 2 mons 3 days 04:05:06.000007".
func (src Interval) EncodeText(buf []byte) ([]byte, error) {
	buf = append(buf, fmt.Sprintf("%d years %d mons %d days ", src.Years, src.Months, src.Days)...)

	usecs := src.clockMicroseconds()
	if usecs < 0 {
		usecs = -usecs
		buf = append(buf, '-')
	}

	hours := usecs / microsecondsPerHour
	mins := usecs % microsecondsPerHour / microsecondsPerMinute
	secs := usecs % microsecondsPerMinute / microsecondsPerSecond
	usecs = usecs % microsecondsPerSecond

	return append(buf, fmt.Sprintf("%02d:%02d:%02d.%06d", hours, mins, secs, usecs)...), nil
}

func (src Interval) EncodeBinary(buf []byte) ([]byte, error) {
	buf = pgio.AppendInt64(buf, src.clockMicroseconds())
	buf = pgio.AppendInt32(buf, src.Days)
	return pgio.AppendInt32(buf, src.Years*monthsPerYear+src.Months), nil
}
