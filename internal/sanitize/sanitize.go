// Package sanitize numbers the "$*" placeholder markers of SQL text.
package sanitize

import (
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

// Part is either a string or an int. A string is raw SQL. An int is a
// positional placeholder.
type Part any

type Query struct {
	Parts []Part

	// Markers is the number of "$*" markers that were numbered.
	Markers int
}

// utf.DecodeRune returns the utf8.RuneError for errors. But that is actually rune U+FFFD -- the unicode replacement
// character. utf8.RuneError is not an error if it is also width 3.
const replacementcharacterwidth = 3

// marker is the ordinal of a "$*" marker while sql is being lexed.
type marker int

// NewQuery splits sql into raw SQL and placeholders. Each "$*" outside of
// quoted strings, quoted identifiers and comments becomes the next number in
// sequence after the highest explicit "$n", which is kept as it is.
func NewQuery(sql string) *Query {
	l := sqlLexerPool.get()
	defer sqlLexerPool.put(l)

	l.src = sql
	l.stateFn = rawState

	for l.stateFn != nil {
		l.stateFn = l.stateFn(l)
	}

	if l.pos-l.start > 0 {
		l.parts = append(l.parts, l.src[l.start:l.pos])
	}

	explicit := 0
	for _, part := range l.parts {
		if n, ok := part.(int); ok && n > explicit {
			explicit = n
		}
	}
	for i, part := range l.parts {
		if m, ok := part.(marker); ok {
			l.parts[i] = explicit + int(m)
		}
	}

	return &Query{Parts: l.parts, Markers: l.markers}
}

func (q *Query) String() string {
	var sb strings.Builder
	for _, part := range q.Parts {
		switch part := part.(type) {
		case string:
			sb.WriteString(part)
		case int:
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(part))
		}
	}
	return sb.String()
}

// MaxPlaceholder returns the highest placeholder number in q.
func (q *Query) MaxPlaceholder() int {
	max := 0
	for _, part := range q.Parts {
		if n, ok := part.(int); ok && n > max {
			max = n
		}
	}
	return max
}

// RewritePlaceholders replaces every "$*" marker in sql with "$1", "$2", ...
// from left to right. When sql also holds explicit placeholders the markers
// are numbered after the highest of them.
func RewritePlaceholders(sql string) string {
	if !strings.Contains(sql, "$*") {
		return sql
	}
	return NewQuery(sql).String()
}

var sqlLexerPool = &pool[*sqlLexer]{
	new: func() *sqlLexer {
		return &sqlLexer{}
	},
	reset: func(sl *sqlLexer) bool {
		*sl = sqlLexer{}
		return true
	},
}

type sqlLexer struct {
	src     string
	start   int
	pos     int
	nested  int // multiline comment nesting level.
	markers int
	stateFn stateFn
	parts   []Part
}

type stateFn func(*sqlLexer) stateFn

func rawState(l *sqlLexer) stateFn {
	for {
		r, width := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += width

		switch r {
		case 'e', 'E':
			if l.pos < len(l.src) && l.src[l.pos] == '\'' {
				l.pos++
				return escapeStringState
			}
		case '\'':
			return singleQuoteState
		case '"':
			return doubleQuoteState
		case '$':
			if l.pos < len(l.src) {
				next := l.src[l.pos]
				if next >= '0' && next <= '9' {
					if l.pos-l.start > 1 {
						l.parts = append(l.parts, l.src[l.start:l.pos-1])
					}
					l.start = l.pos
					return placeholderState
				}
				if next == '*' {
					if l.pos-l.start > 1 {
						l.parts = append(l.parts, l.src[l.start:l.pos-1])
					}
					l.pos++
					l.markers++
					l.parts = append(l.parts, marker(l.markers))
					l.start = l.pos
				}
			}
		case '-':
			if l.pos < len(l.src) && l.src[l.pos] == '-' {
				l.pos++
				return oneLineCommentState
			}
		case '/':
			if l.pos < len(l.src) && l.src[l.pos] == '*' {
				l.pos++
				return multilineCommentState
			}
		case utf8.RuneError:
			if width != replacementcharacterwidth {
				return nil
			}
		}
	}
}

func singleQuoteState(l *sqlLexer) stateFn {
	for {
		r, width := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += width

		switch r {
		case '\'':
			if l.pos < len(l.src) && l.src[l.pos] == '\'' {
				l.pos++
			} else {
				return rawState
			}
		case utf8.RuneError:
			if width != replacementcharacterwidth {
				return nil
			}
		}
	}
}

func doubleQuoteState(l *sqlLexer) stateFn {
	for {
		r, width := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += width

		switch r {
		case '"':
			if l.pos < len(l.src) && l.src[l.pos] == '"' {
				l.pos++
			} else {
				return rawState
			}
		case utf8.RuneError:
			if width != replacementcharacterwidth {
				return nil
			}
		}
	}
}

// placeholderState consumes a placeholder value. The $ must have already has
// already been consumed. The first rune must be a digit.
func placeholderState(l *sqlLexer) stateFn {
	num := 0

	for {
		if l.pos < len(l.src) {
			c := l.src[l.pos]
			if c >= '0' && c <= '9' {
				l.pos++
				num *= 10
				num += int(c - '0')
				continue
			}
		}

		l.parts = append(l.parts, num)
		l.start = l.pos
		return rawState
	}
}

func escapeStringState(l *sqlLexer) stateFn {
	for {
		r, width := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += width

		switch r {
		case '\\':
			_, width = utf8.DecodeRuneInString(l.src[l.pos:])
			l.pos += width
		case '\'':
			if l.pos < len(l.src) && l.src[l.pos] == '\'' {
				l.pos++
			} else {
				return rawState
			}
		case utf8.RuneError:
			if width != replacementcharacterwidth {
				return nil
			}
		}
	}
}

func oneLineCommentState(l *sqlLexer) stateFn {
	for {
		r, width := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += width

		switch r {
		case '\\':
			_, width = utf8.DecodeRuneInString(l.src[l.pos:])
			l.pos += width
		case '\n', '\r':
			return rawState
		case utf8.RuneError:
			if width != replacementcharacterwidth {
				return nil
			}
		}
	}
}

func multilineCommentState(l *sqlLexer) stateFn {
	for {
		r, width := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += width

		switch r {
		case '/':
			if l.pos < len(l.src) && l.src[l.pos] == '*' {
				l.pos++
				l.nested++
			}
		case '*':
			if l.pos < len(l.src) && l.src[l.pos] == '/' {
				l.pos++
				if l.nested == 0 {
					return rawState
				}
				l.nested--
			}
		case utf8.RuneError:
			if width != replacementcharacterwidth {
				return nil
			}
		}
	}
}

type pool[E any] struct {
	p     sync.Pool
	new   func() E
	reset func(E) bool
}

func (pool *pool[E]) get() E {
	v, ok := pool.p.Get().(E)
	if !ok {
		v = pool.new()
	}

	return v
}

func (p *pool[E]) put(v E) {
	if p.reset(v) {
		p.p.Put(v)
	}
}
