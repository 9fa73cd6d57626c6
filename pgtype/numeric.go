package pgtype

import (
	"encoding/binary"
	"math/big"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// PostgreSQL internal numeric storage uses 16-bit "digits" with base of 10,000
const nbase = 10000

const (
	numericPositive = 0x0000
	numericNegative = 0x4000
	numericNaN      = 0xC000
	numericPosInf   = 0xD000
	numericNegInf   = 0xF000
)

var (
	big10    = big.NewInt(10)
	bigNBase = big.NewInt(nbase)
)

var errNumericNaN = errors.New("NaN is not supported")

// numericDigits is the decoded form of the binary numeric format. The value is Coeff * 10^Exp.
type numericDigits struct {
	Coeff *big.Int
	Exp   int32
	Sign  uint16
}

// decodeNumericDigits reconstructs the value exactly as the sum of digit(i) * 10000^(weight-i). Digits past the
// display scale are always zero and are trimmed.
func decodeNumericDigits(src []byte) (numericDigits, error) {
	if len(src) < 8 {
		return numericDigits{}, errors.Errorf("numeric too short: %d bytes", len(src))
	}

	ndigits := int16(binary.BigEndian.Uint16(src))
	weight := int16(binary.BigEndian.Uint16(src[2:]))
	sign := binary.BigEndian.Uint16(src[4:])
	dscale := int16(binary.BigEndian.Uint16(src[6:]))
	rp := 8

	switch sign {
	case numericPositive, numericNegative:
	case numericNaN:
		return numericDigits{}, errNumericNaN
	case numericPosInf, numericNegInf:
		return numericDigits{Coeff: new(big.Int), Sign: sign}, nil
	default:
		return numericDigits{}, errors.Errorf("invalid numeric sign 0x%04x", sign)
	}

	if ndigits < 0 || len(src[rp:]) != int(ndigits)*2 {
		return numericDigits{}, errors.Errorf("numeric has %d digits but %d bytes remain", ndigits, len(src[rp:]))
	}

	coeff := new(big.Int)
	digit := new(big.Int)
	for i := 0; i < int(ndigits); i++ {
		d := int16(binary.BigEndian.Uint16(src[rp:]))
		rp += 2
		if d < 0 || d >= nbase {
			return numericDigits{}, errors.Errorf("invalid numeric digit %d", d)
		}
		coeff.Mul(coeff, bigNBase)
		coeff.Add(coeff, digit.SetInt64(int64(d)))
	}

	if coeff.Sign() == 0 {
		return numericDigits{Coeff: coeff, Exp: -int32(dscale), Sign: sign}, nil
	}

	exp := (int32(weight) - int32(ndigits) + 1) * 4
	if exp < 0 && -exp > int32(dscale) {
		shift := -exp - int32(dscale)
		divisor := new(big.Int).Exp(big10, big.NewInt(int64(shift)), nil)
		quo, rem := new(big.Int), new(big.Int)
		quo.QuoRem(coeff, divisor, rem)
		if rem.Sign() == 0 {
			coeff = quo
			exp += shift
		}
	}

	if sign == numericNegative {
		coeff.Neg(coeff)
	}

	return numericDigits{Coeff: coeff, Exp: exp, Sign: sign}, nil
}

// appendNumericDigits encodes abs * 10^exp with the given sign in the binary numeric format.
func appendNumericDigits(buf []byte, abs *big.Int, exp int32, sign uint16) []byte {
	if sign == numericPosInf || sign == numericNegInf {
		buf = pgio.AppendInt16(buf, 0)
		buf = pgio.AppendInt16(buf, 0)
		buf = pgio.AppendUint16(buf, sign)
		return pgio.AppendInt16(buf, 0)
	}

	var dscale int16
	if exp < 0 {
		dscale = int16(-exp)
	}

	if abs.Sign() == 0 {
		buf = pgio.AppendInt16(buf, 0)
		buf = pgio.AppendInt16(buf, 0)
		buf = pgio.AppendUint16(buf, numericPositive)
		return pgio.AppendInt16(buf, dscale)
	}

	n := new(big.Int).Set(abs)
	for exp%4 != 0 {
		n.Mul(n, big10)
		exp--
	}

	// Least significant digit first.
	var digits []int16
	rem := new(big.Int)
	for n.Sign() > 0 {
		n.QuoRem(n, bigNBase, rem)
		digits = append(digits, int16(rem.Int64()))
	}

	trailingZeros := 0
	for len(digits) > 0 && digits[0] == 0 {
		digits = digits[1:]
		trailingZeros++
	}

	weight := int16(len(digits) - 1 + trailingZeros + int(exp/4))

	buf = pgio.AppendInt16(buf, int16(len(digits)))
	buf = pgio.AppendInt16(buf, weight)
	buf = pgio.AppendUint16(buf, sign)
	buf = pgio.AppendInt16(buf, dscale)
	for i := len(digits) - 1; i >= 0; i-- {
		buf = pgio.AppendInt16(buf, digits[i])
	}
	return buf
}

// Numeric is an arbitrary precision number backed by github.com/shopspring/decimal. NaN and infinity cannot be
// represented and fail to decode.
//
// Binary values are rebuilt with exact decimal arithmetic. Implementations that accumulate the fractional digits in
// floating point lose precision on values such as 0.1; this one does not, so results can differ in the last digits
// from such implementations.
type Numeric struct {
	decimal.Decimal
}

func (Numeric) Type() Type              { return NumericType }
func (Numeric) PreferredFormat() Format { return TextFormatCode }

func (dst *Numeric) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	d, err := decimal.NewFromString(string(src))
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Numeric{Decimal: d}
	return nil
}

func (dst *Numeric) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	nd, err := decodeNumericDigits(src)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}
	if nd.Sign == numericPosInf || nd.Sign == numericNegInf {
		return newDecodeError(t, dst, src, errors.New("infinity is not supported"))
	}

	*dst = Numeric{Decimal: decimal.NewFromBigInt(nd.Coeff, nd.Exp)}
	return nil
}

func (src Numeric) EncodeText(buf []byte) ([]byte, error) {
	return append(buf, src.Decimal.String()...), nil
}

func (src Numeric) EncodeBinary(buf []byte) ([]byte, error) {
	coeff := src.Decimal.Coefficient()
	sign := uint16(numericPositive)
	if coeff.Sign() < 0 {
		sign = numericNegative
		coeff.Neg(coeff)
	}
	return appendNumericDigits(buf, coeff, src.Decimal.Exponent(), sign), nil
}
