package sqlsession

import (
	"strconv"
	"strings"

	"github.com/sllt/sqlsession/pkg/sqlsession/dsn"
)

// rebind counts the ? placeholders of query that sit outside string literals, quoted identifiers,
// comments, postgres dollar-quoted bodies and escape strings, and sqlite bracketed identifiers. For dialects with numbered placeholders the
// returned query has them rewritten to $1..$n; otherwise it is query unchanged.
func rebind(query string, dialect dsn.Dialect) (string, int) {
	var (
		b         strings.Builder
		n         int
		numbered  = dialect.NumberedPlaceholders()
		backslash = dialect == dsn.MySQL
	)

	if numbered {
		b.Grow(len(query) + 8)
	}

	for i := 0; i < len(query); {
		end := i + 1

		switch c := query[i]; {
		case c == '?':
			n++

			if numbered {
				b.WriteByte('$')
				b.WriteString(strconv.Itoa(n))
			}

			i++

			continue
		case c == '\'' && dialect == dsn.Postgres && escapeStringPrefix(query, i):
			end = skipQuoted(query, i, c, true)
		case c == '\'' || c == '"' || c == '`':
			end = skipQuoted(query, i, c, backslash)
		case c == '[' && dialect == dsn.SQLite:
			end = skipPast(query, i+1, "]")
		case strings.HasPrefix(query[i:], "--"):
			end = skipPast(query, i+2, "\n")
		case c == '#' && dialect == dsn.MySQL:
			end = skipPast(query, i+1, "\n")
		case strings.HasPrefix(query[i:], "/*"):
			end = skipPast(query, i+2, "*/")
		case c == '$' && dialect == dsn.Postgres:
			end = skipDollarQuoted(query, i)
		}

		if numbered {
			b.WriteString(query[i:end])
		}

		i = end
	}

	if !numbered {
		return query, n
	}

	return b.String(), n
}

// skipQuoted returns the index just past the quote closing the literal opened at start.
// A doubled quote is an escaped quote; a backslash escapes the next byte when enabled.
func skipQuoted(s string, start int, quote byte, backslash bool) int {
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if backslash {
				i++
			}
		case quote:
			if i+1 < len(s) && s[i+1] == quote {
				i++

				continue
			}

			return i + 1
		}
	}

	return len(s)
}

// escapeStringPrefix reports whether the quote at i opens a postgres E'...' string, in which a
// backslash escapes the next byte.
func escapeStringPrefix(s string, i int) bool {
	if i == 0 || (s[i-1] != 'E' && s[i-1] != 'e') {
		return false
	}

	return i == 1 || !isIdentByte(s[i-2])
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c >= 0x80
}

func skipPast(s string, from int, terminator string) int {
	idx := strings.Index(s[from:], terminator)
	if idx < 0 {
		return len(s)
	}

	return from + idx + len(terminator)
}

// skipDollarQuoted skips $tag$...$tag$. A $ not opening a valid tag, like $1, is consumed alone.
func skipDollarQuoted(s string, start int) int {
	closing := strings.IndexByte(s[start+1:], '$')
	if closing < 0 {
		return start + 1
	}

	tag := s[start : start+closing+2]

	for i := 1; i < len(tag)-1; i++ {
		c := tag[i]

		isLetter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
		isDigit := c >= '0' && c <= '9'

		if !isLetter && (!isDigit || i == 1) {
			return start + 1
		}
	}

	return skipPast(s, start+len(tag), tag)
}
