package libinjection

import (
	"bytes"
	"strings"
)

// Normalize rewrites input into a canonical SQL spelling: everything up to
// and including the first single quote (or the first double quote when
// there is no single quote) is kept, the rest is re-emitted token by token
// with comments removed and whitespace collapsed. Two inputs that differ
// only in comment or whitespace evasion normalize to the same bytes.
//
// The re-spelling is lossy: dollar-quoted strings lose their tag
// ($tag$x$tag$ becomes $$x$$) and the E and N string prefixes are dropped.
func Normalize(input []byte, opts Options) []byte {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.Grow(len(input))

	rest := input
	q := bytes.IndexByte(input, CHAR_SINGLE)
	if q == -1 {
		q = bytes.IndexByte(input, CHAR_DOUBLE)
	}
	if q != -1 {
		buf.Write(input[:q+1])
		rest = input[q+1:]
	}

	flags := FLAG_QUOTE_NONE | FLAG_SQL_ANSI
	if opts.Dialect == DialectMySQL {
		flags = FLAG_QUOTE_NONE | FLAG_SQL_MYSQL
	}

	t := NewTokenizer(string(rest), flags, opts)
	var prev Token
	for {
		tok, ok := t.Next()
		if !ok {
			break
		}
		if tok.Type == TYPE_COMMENT {
			continue
		}
		if buf.Len() > 0 && needsSpace(prev, tok) {
			buf.WriteByte(' ')
		}
		writeToken(&buf, tok)
		prev = tok
	}
	return buf.Bytes()
}

// symbolic reports whether tok is an operator spelled with punctuation,
// such as '=' or '||', as opposed to AND or LIKE.
func symbolic(tok Token) bool {
	if tok.Type != TYPE_OPERATOR && tok.Type != TYPE_LOGIC_OPERATOR {
		return false
	}
	if tok.Val == "" {
		return false
	}
	ch := tok.Val[0]
	return !(ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z')
}

func needsSpace(prev Token, cur Token) bool {
	switch {
	case symbolic(prev) || symbolic(cur):
		return false
	case prev.Type == TYPE_NONE:
		return true
	case prev.Type == TYPE_COMMA || cur.Type == TYPE_COMMA:
		return false
	}
	return true
}

func writeToken(buf *bytes.Buffer, tok Token) {
	switch tok.Type {
	case TYPE_STRING:
		writeQuoted(buf, tok)
	case TYPE_VARIABLE:
		buf.WriteString(strings.Repeat("@", tok.Count))
		writeQuoted(buf, tok)
	case TYPE_BAREWORD, TYPE_FUNCTION:
		if tok.StrOpen == CHAR_TICK {
			writeQuoted(buf, tok)
			return
		}
		buf.WriteString(tok.Val)
	default:
		buf.WriteString(tok.Val)
	}
}

func writeQuoted(buf *bytes.Buffer, tok Token) {
	switch tok.StrOpen {
	case CHAR_NULL:
	case '$':
		buf.WriteString("$$")
	case 'u':
		buf.WriteString("U&'")
	case 'q':
		buf.WriteString("q'")
	default:
		buf.WriteByte(tok.StrOpen)
	}
	buf.WriteString(tok.Val)
	switch tok.StrClose {
	case CHAR_NULL:
	case '$':
		buf.WriteString("$$")
	case 'u', 'q':
		buf.WriteByte('\'')
	default:
		buf.WriteByte(tok.StrClose)
	}
}
