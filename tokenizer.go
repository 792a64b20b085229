package libinjection

// character classes of the lead byte of a token
const (
	charWhite byte = iota
	charOther
	charWord
	charNumber
	charString
	charTick
	charHash
	charDash
	charSlash
	charBackslash
	charMoney
	charVar
	charBword
	charChar
	charOp1
	charOp2
	charBstring
	charEstring
	charNqstring
	charQstring
	charUstring
	charXstring
)

var charClass = buildCharClass()

func buildCharClass() [256]byte {
	var m [256]byte
	for i := range m {
		switch {
		case i <= 32 || i == 127 || i == 0xa0:
			m[i] = charWhite
		case i >= 0x80:
			m[i] = charWord
		case i >= 'a' && i <= 'z', i >= 'A' && i <= 'Z', i == '_':
			m[i] = charWord
		case i >= '0' && i <= '9', i == '.':
			m[i] = charNumber
		default:
			m[i] = charOther
		}
	}

	for _, ch := range "!&*:<=>|" {
		m[ch] = charOp2
	}
	for _, ch := range "%+^~" {
		m[ch] = charOp1
	}
	for _, ch := range "(),;{}" {
		m[ch] = charChar
	}
	m['"'] = charString
	m['\''] = charString
	m['`'] = charTick
	m['#'] = charHash
	m['-'] = charDash
	m['/'] = charSlash
	m['\\'] = charBackslash
	m['$'] = charMoney
	m['@'] = charVar
	m['['] = charBword
	m['B'], m['b'] = charBstring, charBstring
	m['E'], m['e'] = charEstring, charEstring
	m['N'], m['n'] = charNqstring, charNqstring
	m['Q'], m['q'] = charQstring, charQstring
	m['U'], m['u'] = charUstring, charUstring
	m['X'], m['x'] = charXstring, charXstring
	return m
}

// Tokenizer scans SQL tokens out of an input string. It is a restartable,
// finite sequence: Next returns tokens until the input or the token budget
// runs out and Reset starts over.
type Tokenizer struct {
	s             string
	flags         Flag
	caseSensitive bool
	maxTokens     int
	pos           int
	count         int /* tokens produced */
	charged       int /* tokens counted against maxTokens, comments are free */
	current       Token

	statsCommentDDW  int /* "-- " comments */
	statsCommentDDX  int /* "--x" comments, ANSI only */
	statsCommentC    int /* c-style comments found  /x .. x/ */
	statsCommentHash int /* '#' operators or MySQL EOL comments found */
}

// NewTokenizer returns a Tokenizer over input in the flags context. A zero
// flags value means no quote context and ANSI SQL.
func NewTokenizer(input string, flags Flag, opts Options) *Tokenizer {
	t := &Tokenizer{}
	t.reset(input, flags, opts.withDefaults())
	return t
}

func (t *Tokenizer) reset(s string, flags Flag, opts Options) {
	if flags == FLAG_NONE {
		flags = FLAG_QUOTE_NONE | FLAG_SQL_ANSI
	}
	*t = Tokenizer{
		s:             s,
		flags:         flags,
		caseSensitive: opts.CaseSensitive,
		maxTokens:     opts.MaxTokens,
	}
}

// Reset rewinds the tokenizer to the start of its input.
func (t *Tokenizer) Reset() {
	t.reset(t.s, t.flags, Options{CaseSensitive: t.caseSensitive, MaxTokens: t.maxTokens})
}

// Count returns the number of tokens produced so far.
func (t *Tokenizer) Count() int {
	return t.count
}

// Next returns the next token, or false once the input is exhausted or
// the token budget is spent. Comments do not count against the budget.
func (t *Tokenizer) Next() (Token, bool) {
	if len(t.s) == 0 || (t.maxTokens > 0 && t.charged >= t.maxTokens) {
		return Token{}, false
	}

	/*
	 * if we are at beginning of string and in single-quote or double quote
	 * mode then pretend the input starts with a quote
	 */
	if t.pos == 0 && t.count == 0 && t.flags&(FLAG_QUOTE_SINGLE|FLAG_QUOTE_DOUBLE) != 0 {
		t.current = Token{}
		t.pos = t.parseStringCore(0, flag2delim(t.flags), 0)
		t.count++
		t.charged++
		return t.current, true
	}

	for t.pos < len(t.s) {
		/* clear token in current position */
		t.current = Token{}
		t.pos = t.dispatch(t.s[t.pos])
		if t.current.Type != CHAR_NULL {
			t.count++
			if t.current.Type != TYPE_COMMENT {
				t.charged++
			}
			return t.current, true
		}
	}
	return Token{}, false
}

func (t *Tokenizer) dispatch(ch byte) int {
	switch charClass[ch] {
	case charWhite:
		return t.parseWhite()
	case charWord:
		return t.parseWord()
	case charNumber:
		return t.parseNumber()
	case charString:
		return t.parseString()
	case charTick:
		return t.parseTick(t.pos)
	case charHash:
		return t.parseHash()
	case charDash:
		return t.parseDash()
	case charSlash:
		return t.parseSlash()
	case charBackslash:
		return t.parseBackslash()
	case charMoney:
		return t.parseMoney()
	case charVar:
		return t.parseVar()
	case charBword:
		return t.parseBword()
	case charChar:
		return t.parseChar()
	case charOp1:
		return t.parseOperator1()
	case charOp2:
		return t.parseOperator2()
	case charBstring:
		return t.parseBstring()
	case charEstring:
		return t.parseEstring()
	case charNqstring:
		return t.parseNqstring()
	case charQstring:
		return t.parseQstring()
	case charUstring:
		return t.parseUstring()
	case charXstring:
		return t.parseXstring()
	default:
		return t.parseOther()
	}
}

// Tokenize scans at most maxTokens tokens of input read as-is in ANSI SQL.
// A maxTokens of zero or less means DefaultMaxTokens.
func Tokenize(input []byte, maxTokens int) []Token {
	t := NewTokenizer(string(input), FLAG_QUOTE_NONE|FLAG_SQL_ANSI, Options{MaxTokens: maxTokens})
	var out []Token
	for {
		tok, ok := t.Next()
		if !ok {
			return out
		}
		out = append(out, tok)
	}
}
