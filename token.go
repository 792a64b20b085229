package libinjection

import "strings"

// Token is one scanned unit of the input. Val points into the input
// string, except for merged phrases where it holds the canonical phrase.
type Token struct {
	Type     byte
	Pos      int
	Len      int
	Val      string
	StrOpen  byte
	StrClose byte
	Count    int
}

func (t *Token) assign(stype byte, pos int, l int, s string) {
	last := l
	if last > len(s) {
		last = len(s)
	}
	*t = Token{
		Type: stype,
		Pos:  pos,
		Len:  last,
		Val:  s[:last],
	}
}

func (t *Token) isArithmeticOp() bool {
	if t.Type == TYPE_OPERATOR && len(t.Val) == 1 {
		ch := t.Val[0]
		return ch == '*' || ch == '/' || ch == '-' || ch == '+' || ch == '%'
	}
	return false
}

func (t *Token) isUnaryOp() bool {
	if t.Type != TYPE_OPERATOR {
		return false
	}

	str := t.Val
	switch len(str) {
	case 1:
		return str[0] == '+' || str[0] == '-' || str[0] == '!' || str[0] == '~'
	case 2:
		return str[0] == '!' && str[1] == '!'
	case 3:
		return strings.EqualFold(str, "NOT")
	default:
		return false
	}
}

// valIs compares the token value against an upper-case word.
func (t *Token) valIs(word string) bool {
	return strings.EqualFold(t.Val, word)
}

/*
 * See if two tokens can be merged since they are compound SQL phrases.
 *
 * "UNION" + "ALL" ==> "UNION ALL", "IS" + "NOT" + "DISTINCT" + "FROM"
 * merges pairwise through the intermediate "IS NOT" and "IS NOT DISTINCT".
 *
 * The lookup key is assembled in a fixed buffer so no allocation happens;
 * the merged value is the canonical phrase from the table.
 */
func mergeWords(a *Token, b *Token) (Token, bool) {
	switch a.Type {
	case TYPE_KEYWORD, TYPE_BAREWORD, TYPE_OPERATOR, TYPE_UNION,
		TYPE_FUNCTION, TYPE_EXPRESSION, TYPE_SQLTYPE:
	default:
		return Token{}, false
	}

	switch b.Type {
	case TYPE_KEYWORD, TYPE_BAREWORD, TYPE_OPERATOR, TYPE_SQLTYPE,
		TYPE_LOGIC_OPERATOR, TYPE_FUNCTION, TYPE_UNION, TYPE_EXPRESSION:
	default:
		return Token{}, false
	}

	sz := len(a.Val) + len(b.Val) + 1
	if sz >= LIBINJECTION_SQLI_TOKEN_SIZE {
		return Token{}, false
	}

	var buf [LIBINJECTION_SQLI_TOKEN_SIZE]byte
	n := copy(buf[:], a.Val)
	buf[n] = ' '
	copy(buf[n+1:], b.Val)
	upper(buf[:sz])

	p, ok := lookupPhrase(buf[:sz])
	if !ok {
		return Token{}, false
	}
	return Token{
		Type: p.Type,
		Pos:  a.Pos,
		Len:  b.Pos + b.Len - a.Pos,
		Val:  p.Word,
	}, true
}
