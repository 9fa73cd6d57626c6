package pgtype

import (
	"math/big"

	"github.com/cockroachdb/apd"
)

// Decimal is a numeric backed by github.com/cockroachdb/apd. Unlike Numeric it can hold positive and negative
// infinity.
type Decimal struct {
	apd.Decimal
}

func (Decimal) Type() Type              { return NumericType }
func (Decimal) PreferredFormat() Format { return TextFormatCode }

func (dst *Decimal) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	d, _, err := apd.NewFromString(string(src))
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}
	if d.Form == apd.NaN || d.Form == apd.NaNSignaling {
		return newDecodeError(t, dst, src, errNumericNaN)
	}

	dst.Decimal.Set(d)
	return nil
}

func (dst *Decimal) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	nd, err := decodeNumericDigits(src)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	switch nd.Sign {
	case numericPosInf, numericNegInf:
		dst.Decimal = apd.Decimal{Form: apd.Infinite, Negative: nd.Sign == numericNegInf}
	default:
		// apd keeps the sign apart from the coefficient.
		dst.Decimal = apd.Decimal{Exponent: nd.Exp, Negative: nd.Coeff.Sign() < 0}
		dst.Decimal.Coeff.Abs(nd.Coeff)
	}
	return nil
}

func (src Decimal) EncodeText(buf []byte) ([]byte, error) {
	if src.Form == apd.NaN || src.Form == apd.NaNSignaling {
		return nil, newEncodeError(NumericType, src, "%v", errNumericNaN)
	}
	return append(buf, src.Decimal.Text('f')...), nil
}

func (src Decimal) EncodeBinary(buf []byte) ([]byte, error) {
	switch src.Form {
	case apd.NaN, apd.NaNSignaling:
		return nil, newEncodeError(NumericType, src, "%v", errNumericNaN)
	case apd.Infinite:
		if src.Negative {
			return appendNumericDigits(buf, nil, 0, numericNegInf), nil
		}
		return appendNumericDigits(buf, nil, 0, numericPosInf), nil
	}

	abs := new(big.Int).Abs(&src.Coeff)
	sign := uint16(numericPositive)
	if src.Negative && abs.Sign() != 0 {
		sign = numericNegative
	}
	return appendNumericDigits(buf, abs, src.Exponent, sign), nil
}
