package pgtype

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

type Point struct {
	X, Y float64
}

func (Point) Type() Type              { return PointType }
func (Point) PreferredFormat() Format { return BinaryFormatCode }

func (dst *Point) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	p, rest, err := parsePoint(strings.TrimSpace(string(src)))
	if err == nil && strings.TrimSpace(rest) != "" {
		err = errors.Errorf("unexpected %q after point", rest)
	}
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = p
	return nil
}

func (dst *Point) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	if len(src) != 16 {
		return invalidLength(t, dst, src, 16)
	}

	*dst = Point{
		X: math.Float64frombits(binary.BigEndian.Uint64(src)),
		Y: math.Float64frombits(binary.BigEndian.Uint64(src[8:])),
	}
	return nil
}

func (src Point) EncodeText(buf []byte) ([]byte, error) {
	buf = append(buf, '(')
	buf = strconv.AppendFloat(buf, src.X, 'f', -1, 64)
	buf = append(buf, ',')
	buf = strconv.AppendFloat(buf, src.Y, 'f', -1, 64)
	return append(buf, ')'), nil
}

func (src Point) EncodeBinary(buf []byte) ([]byte, error) {
	buf = pgio.AppendUint64(buf, math.Float64bits(src.X))
	return pgio.AppendUint64(buf, math.Float64bits(src.Y)), nil
}

// Path is an open or closed sequence of points. Text form is [(x,y),...] when open and ((x,y),...) when closed.
type Path struct {
	Points []Point
	Closed bool
}

func (Path) Type() Type              { return PathType }
func (Path) PreferredFormat() Format { return BinaryFormatCode }

func (dst *Path) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	s := strings.TrimSpace(string(src))
	closed := strings.HasPrefix(s, "(")
	points, err := parsePointList(s)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Path{Points: points, Closed: closed}
	return nil
}

func (dst *Path) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	if len(src) < 5 {
		return newDecodeError(t, dst, src, errors.New("path too short"))
	}

	closed := src[0] == 1
	points, err := decodePoints(src[1:])
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Path{Points: points, Closed: closed}
	return nil
}

func (src Path) EncodeText(buf []byte) ([]byte, error) {
	opening, closing := byte('['), byte(']')
	if src.Closed {
		opening, closing = '(', ')'
	}
	return appendPointList(buf, src.Points, opening, closing), nil
}

func (src Path) EncodeBinary(buf []byte) ([]byte, error) {
	if src.Closed {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return appendPoints(buf, src.Points), nil
}

// Polygon is the exterior ring of a polygon. Holes are not supported.
type Polygon struct {
	Points []Point
}

func (Polygon) Type() Type              { return PolygonType }
func (Polygon) PreferredFormat() Format { return BinaryFormatCode }

func (dst *Polygon) DecodeText(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	points, err := parsePointList(strings.TrimSpace(string(src)))
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Polygon{Points: points}
	return nil
}

func (dst *Polygon) DecodeBinary(t Type, src []byte) error {
	if src == nil {
		return newNotNullError(t, dst)
	}

	points, err := decodePoints(src)
	if err != nil {
		return newDecodeError(t, dst, src, err)
	}

	*dst = Polygon{Points: points}
	return nil
}

func (src Polygon) EncodeText(buf []byte) ([]byte, error) {
	return appendPointList(buf, src.Points, '(', ')'), nil
}

func (src Polygon) EncodeBinary(buf []byte) ([]byte, error) {
	return appendPoints(buf, src.Points), nil
}

func decodePoints(src []byte) ([]Point, error) {
	if len(src) < 4 {
		return nil, errors.Errorf("invalid length: %d", len(src))
	}

	pointCount := int(int32(binary.BigEndian.Uint32(src)))
	if pointCount < 0 || 4+pointCount*16 != len(src) {
		return nil, errors.Errorf("invalid length for %d points: %d", pointCount, len(src))
	}

	rp := 4
	points := make([]Point, pointCount)
	for i := range points {
		x := binary.BigEndian.Uint64(src[rp:])
		rp += 8
		y := binary.BigEndian.Uint64(src[rp:])
		rp += 8
		points[i] = Point{X: math.Float64frombits(x), Y: math.Float64frombits(y)}
	}
	return points, nil
}

func appendPoints(buf []byte, points []Point) []byte {
	buf = pgio.AppendInt32(buf, int32(len(points)))
	for _, p := range points {
		buf, _ = p.EncodeBinary(buf)
	}
	return buf
}

func appendPointList(buf []byte, points []Point, opening, closing byte) []byte {
	buf = append(buf, opening)
	for i, p := range points {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf, _ = p.EncodeText(buf)
	}
	return append(buf, closing)
}

// parsePointList parses "((x,y),...)" or "[(x,y),...]". Whitespace between tokens is ignored.
func parsePointList(s string) ([]Point, error) {
	if len(s) < 2 {
		return nil, errors.New("point list too short")
	}

	var closing byte
	switch s[0] {
	case '(':
		closing = ')'
	case '[':
		closing = ']'
	default:
		return nil, errors.Errorf("unexpected %q at start of point list", s[0])
	}
	if s[len(s)-1] != closing {
		return nil, errors.Errorf("point list not terminated by %q", closing)
	}

	rest := strings.TrimSpace(s[1 : len(s)-1])
	var points []Point
	for rest != "" {
		p, r, err := parsePoint(rest)
		if err != nil {
			return nil, err
		}
		points = append(points, p)

		rest = strings.TrimSpace(r)
		if rest == "" {
			break
		}
		if rest[0] != ',' {
			return nil, errors.Errorf("expected ',' between points, got %q", rest)
		}
		rest = strings.TrimSpace(rest[1:])
	}
	return points, nil
}

// parsePoint parses a leading "(x,y)" and returns the remaining string.
func parsePoint(s string) (Point, string, error) {
	if s == "" || s[0] != '(' {
		return Point{}, "", errors.Errorf("expected '(' at %q", s)
	}

	end := strings.IndexByte(s, ')')
	if end < 0 {
		return Point{}, "", errors.Errorf("unterminated point %q", s)
	}

	coords := strings.Split(s[1:end], ",")
	if len(coords) != 2 {
		return Point{}, "", errors.Errorf("invalid point %q", s[:end+1])
	}

	x, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
	if err != nil {
		return Point{}, "", err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
	if err != nil {
		return Point{}, "", err
	}

	return Point{X: x, Y: y}, s[end+1:], nil
}
