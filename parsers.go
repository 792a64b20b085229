package libinjection

import "strings"

func (t *Tokenizer) parseWhite() int {
	return t.pos + 1
}

func (t *Tokenizer) parseOperator1() int {
	pos := t.pos
	t.current.assign(TYPE_OPERATOR, pos, 1, t.s[pos:])
	return pos + 1
}

func (t *Tokenizer) parseOther() int {
	pos := t.pos
	t.current.assign(TYPE_UNKNOWN, pos, 1, t.s[pos:])
	return pos + 1
}

func (t *Tokenizer) parseChar() int {
	pos := t.pos
	t.current.assign(t.s[pos], pos, 1, t.s[pos:])
	return pos + 1
}

func (t *Tokenizer) parseEOLComment() int {
	s := t.s
	pos := t.pos

	nl := strings.IndexByte(s[pos:], '\n')
	if nl == -1 {
		t.current.assign(TYPE_COMMENT, pos, len(s)-pos, s[pos:])
		return len(s)
	}
	t.current.assign(TYPE_COMMENT, pos, nl, s[pos:])
	return pos + nl + 1
}

/*
 * In ANSI mode, hash is an operator
 * In MYSQL mode, it's a EOL comment like '--'
 */
func (t *Tokenizer) parseHash() int {
	t.statsCommentHash++
	if t.flags&FLAG_SQL_MYSQL != 0 {
		t.statsCommentHash++
		return t.parseEOLComment()
	}
	t.current.assign(TYPE_OPERATOR, t.pos, 1, "#")
	return t.pos + 1
}

func (t *Tokenizer) parseDash() int {
	s := t.s
	slen := len(s)
	pos := t.pos

	/*
	 * five cases
	 * 1) --[white]  this is always a SQL comment
	 * 2) --[EOF]    this is a comment
	 * 3) --[notwhite] in MySQL this is NOT a comment but two unary operators
	 * 4) --[notwhite] everyone else thinks this is a comment
	 * 5) -[not dash]  '-' is a unary operator
	 */
	switch {
	case pos+2 < slen && s[pos+1] == '-' && charIsWhite(s[pos+2]):
		t.statsCommentDDW++
		return t.parseEOLComment()
	case pos+2 == slen && s[pos+1] == '-':
		return t.parseEOLComment()
	case pos+1 < slen && s[pos+1] == '-' && t.flags&FLAG_SQL_ANSI != 0:
		t.statsCommentDDX++
		return t.parseEOLComment()
	default:
		return t.parseOperator1()
	}
}

func (t *Tokenizer) parseSlash() int {
	s := t.s
	slen := len(s)
	pos := t.pos

	if pos+1 == slen || s[pos+1] != '*' {
		return t.parseOperator1()
	}

	/*
	 * skip over initial '/x'
	 */
	ctype := byte(TYPE_COMMENT)
	var clen int
	end := strings.Index(s[pos+2:], "*/")
	if end == -1 {
		/* till end of line */
		clen = slen - pos
	} else {
		end += pos + 2
		clen = end + 2 - pos
	}

	/*
	 * postgresql allows nested comments which makes
	 * this is incompatible with parsing so
	 * if we find a '/x' inside the coment, then
	 * make a new token.
	 *
	 * Also, Mysql's "conditional" comments for version
	 *  are an automatic black ban!
	 */
	if end != -1 && strings.Contains(s[pos+2:end+1], "/*") {
		ctype = TYPE_EVIL
	} else if isMySQLComment(s, pos) {
		ctype = TYPE_EVIL
	}

	t.statsCommentC++
	t.current.assign(ctype, pos, clen, s[pos:])
	return pos + clen
}

func (t *Tokenizer) parseBackslash() int {
	s := t.s
	pos := t.pos

	/*
	 * Weird MySQL alias for NULL, "\N" (capital N only)
	 */
	if pos+1 < len(s) && s[pos+1] == 'N' {
		t.current.assign(TYPE_NUMBER, pos, 2, s[pos:])
		return pos + 2
	}
	t.current.assign(TYPE_BACKSLASH, pos, 1, s[pos:])
	return pos + 1
}

func (t *Tokenizer) parseOperator2() int {
	s := t.s
	slen := len(s)
	pos := t.pos

	if pos+1 >= slen {
		return t.parseOperator1()
	}

	if pos+2 < slen && s[pos] == '<' && s[pos+1] == '=' && s[pos+2] == '>' {
		/*
		 * special 3-char operator
		 */
		t.current.assign(TYPE_OPERATOR, pos, 3, s[pos:])
		return pos + 3
	}

	if ch := lookupOperator2(s[pos : pos+2]); ch != CHAR_NULL {
		t.current.assign(ch, pos, 2, s[pos:])
		return pos + 2
	}

	/*
	 * not an operator.. what to do with the two characters we got?
	 */
	if s[pos] == ':' {
		/* ':' is not an operator */
		t.current.assign(TYPE_COLON, pos, 1, s[pos:])
		return pos + 1
	}
	/*
	 * must be a single char operator
	 */
	return t.parseOperator1()
}

/*
 * Look forward for doubling of delimiter
 *
 * case 'foo''bar' --> foo''bar
 *
 * ending quote isn't duplicated (i.e. escaped) since it's the last char of
 * the string or the next char is not the delimiter
 *
 * offset is the number of bytes before the string body, e.g. 1 for the
 * opening quote. When it is 0 the opening quote is simulated.
 */
func (t *Tokenizer) parseStringCore(pos int, delim byte, offset int) int {
	s := t.s
	slen := len(s)
	start := pos + offset

	var open byte = CHAR_NULL
	if offset > 0 {
		open = delim
	}

	from := start
	for {
		q := -1
		if from <= slen {
			if i := strings.IndexByte(s[from:], delim); i != -1 {
				q = from + i
			}
		}
		switch {
		case q == -1:
			/* string ended with no trailing quote */
			t.current.assign(TYPE_STRING, start, slen-start, s[start:])
			t.current.StrOpen = open
			t.current.StrClose = CHAR_NULL
			return slen
		case isBackslashEscaped(s, q-1, start):
			/* keep going, move ahead one character */
			from = q + 1
		case isDoubleDelimEscaped(s, q):
			/* keep going, move ahead two characters */
			from = q + 2
		default:
			/* hey it's a normal string */
			t.current.assign(TYPE_STRING, start, q-start, s[start:])
			t.current.StrOpen = open
			t.current.StrClose = delim
			return q + 1
		}
	}
}

/*
 * Used when first char is a ' or "
 */
func (t *Tokenizer) parseString() int {
	return t.parseStringCore(t.pos, t.s[t.pos], 1)
}

/*
 * Used when first char is: N or n: mysql "National Character set" E :
 * psql "Escaped String"
 */
func (t *Tokenizer) parseEstring() int {
	s := t.s
	pos := t.pos

	if pos+2 >= len(s) || s[pos+1] != CHAR_SINGLE {
		return t.parseWord()
	}
	return t.parseStringCore(pos, CHAR_SINGLE, 2)
}

/*
 * postgresql unicode strings: U&'..'
 */
func (t *Tokenizer) parseUstring() int {
	s := t.s
	pos := t.pos

	if pos+2 < len(s) && s[pos+1] == '&' && s[pos+2] == '\'' {
		next := t.parseStringCore(pos+2, CHAR_SINGLE, 1)
		t.current.StrOpen = 'u'
		if t.current.StrClose == '\'' {
			t.current.StrClose = 'u'
		}
		return next
	}
	return t.parseWord()
}

/*
 * Oracle's q-quoted strings: q'[...]', q'(...)', q'<...>', q'{...}'
 * or q'X...X' for any other printable X.
 */
func (t *Tokenizer) parseQstringCore(offset int) int {
	s := t.s
	slen := len(s)
	pos := t.pos

	/*
	 * if we are already at end of string.. if current char is not q or Q
	 * if we don't have 2 more chars if char2 != a single quote then, just
	 * treat as word
	 */
	if pos >= slen-(offset+3) ||
		(s[pos+offset] != 'q' && s[pos+offset] != 'Q') ||
		s[pos+offset+1] != '\'' {
		return t.parseWord()
	}

	ch := s[pos+offset+2]
	/* the ending char is not printable */
	if ch <= ' ' || ch >= 0x7f {
		return t.parseWord()
	}
	switch ch {
	case '(':
		ch = ')'
	case '[':
		ch = ']'
	case '{':
		ch = '}'
	case '<':
		ch = '>'
	}

	body := pos + offset + 3
	strend := indexPair(s[body:], ch, '\'')
	if strend == -1 {
		t.current.assign(TYPE_STRING, body, slen-body, s[body:])
		t.current.StrOpen = 'q'
		t.current.StrClose = CHAR_NULL
		return slen
	}
	t.current.assign(TYPE_STRING, body, strend, s[body:])
	t.current.StrOpen = 'q'
	t.current.StrClose = 'q'
	return body + strend + 2
}

/*
 * Oracle's q-quoted strings
 */
func (t *Tokenizer) parseQstring() int {
	return t.parseQstringCore(0)
}

/*
 * mysql's N'STRING' or ... Oracle's nq string
 */
func (t *Tokenizer) parseNqstring() int {
	s := t.s
	pos := t.pos
	if pos+2 < len(s) && s[pos+1] == CHAR_SINGLE {
		return t.parseEstring()
	}
	return t.parseQstringCore(1)
}

/*
 * binary literal string re: [bB]'[01]*'
 */
func (t *Tokenizer) parseBstring() int {
	s := t.s
	slen := len(s)
	pos := t.pos

	/* need at least 2 more characters if next char isn't a single quote,
	 * then continue as normal word
	 */
	if pos+2 >= slen || s[pos+1] != '\'' {
		return t.parseWord()
	}

	wlen := strlenspn(s[pos+2:], "01")
	if pos+2+wlen >= slen || s[pos+2+wlen] != '\'' {
		return t.parseWord()
	}
	t.current.assign(TYPE_NUMBER, pos, wlen+3, s[pos:])
	return pos + 2 + wlen + 1
}

/*
 * hex literal string re: [xX]'[0123456789abcdefABCDEF]*'
 * mysql has requirement of having EVEN number of chars, but pgsql does
 * not
 */
func (t *Tokenizer) parseXstring() int {
	s := t.s
	slen := len(s)
	pos := t.pos

	if pos+2 >= slen || s[pos+1] != '\'' {
		return t.parseWord()
	}

	wlen := strlenspn(s[pos+2:], "0123456789ABCDEFabcdef")
	if pos+2+wlen >= slen || s[pos+2+wlen] != '\'' {
		return t.parseWord()
	}
	t.current.assign(TYPE_NUMBER, pos, wlen+3, s[pos:])
	return pos + 2 + wlen + 1
}

/**
 * This handles MS SQLSERVER bracket words
 * http://stackoverflow.com/questions/3551284/sql-serverwhat-do-brackets-mean-around-column-name
 *
 */
func (t *Tokenizer) parseBword() int {
	s := t.s
	pos := t.pos

	end := strings.IndexByte(s[pos:], ']')
	if end == -1 {
		t.current.assign(TYPE_BAREWORD, pos, len(s)-pos, s[pos:])
		return len(s)
	}
	t.current.assign(TYPE_BAREWORD, pos, end+1, s[pos:])
	return pos + end + 1
}

const wordDelims = " []{}<>:\\?=@!#~+-*/&|^%(),';\t\n\v\f\r\"\xa0\x00"

func (t *Tokenizer) parseWord() int {
	s := t.s
	pos := t.pos

	wlen := strlencspn(s[pos:], wordDelims)
	t.current.assign(TYPE_BAREWORD, pos, wlen, s[pos:])

	/* now we need to look inside what we good for "." and "`" and see if
	 * what is before is a keyword or not
	 */
	for i := 0; i < wlen; i++ {
		delim := s[pos+i]
		if delim == '.' || delim == '`' {
			ch := lookupWord(s[pos:pos+i], t.caseSensitive)
			if ch != TYPE_NONE && ch != TYPE_BAREWORD {
				/* needed for swig */
				t.current.assign(ch, pos, i, s[pos:])
				return pos + i
			}
		}
	}

	/*
	 * do normal lookup with word including '.'
	 */
	if wlen < LIBINJECTION_SQLI_TOKEN_SIZE {
		ch := lookupWord(t.current.Val, t.caseSensitive)
		if ch == CHAR_NULL {
			ch = TYPE_BAREWORD
		}
		t.current.Type = ch
	}
	return pos + wlen
}

/* MySQL backticks are a cross between string and bareword. Note that
 * whitespace and a delimiter inside are not a problem.
 */
func (t *Tokenizer) parseTick(pos int) int {
	next := t.parseStringCore(pos, CHAR_TICK, 1)

	/* we could check to see if start and end of of string are both "`",
	 * i.e. make sure we have matching set. `foo` vs. `foo but I don't
	 * think it matters much
	 */

	/* check value of string to see if it's a keyword, function, operator,
	 * etc
	 */
	if lookupWord(t.current.Val, t.caseSensitive) == TYPE_FUNCTION {
		/* if it's a function, then convert to function */
		t.current.Type = TYPE_FUNCTION
	} else {
		t.current.Type = TYPE_BAREWORD
	}
	return next
}

func (t *Tokenizer) parseVar() int {
	s := t.s
	slen := len(s)
	pos := t.pos
	pos1 := pos + 1

	/*
	 * var_count is only used to reconstruct the input. It counts the
	 * number of '@' seen 0 in the case of NULL, 1 or 2
	 */

	/*
	 * move past optional other '@'
	 */
	count := 1
	if pos1 < slen && s[pos1] == '@' {
		pos1++
		count = 2
	}

	/*
	 * MySQL allows @@`version`
	 */
	if pos1 < slen {
		switch s[pos1] {
		case '`':
			next := t.parseTick(pos1)
			t.current.Type = TYPE_VARIABLE
			t.current.Count = count
			return next
		case CHAR_SINGLE, CHAR_DOUBLE:
			next := t.parseStringCore(pos1, s[pos1], 1)
			t.current.Type = TYPE_VARIABLE
			t.current.Count = count
			return next
		}
	}

	xlen := strlencspn(s[pos1:], " <>:\\?=@!#~+-*/&|^%(),';\t\n\v\f\r'`\"")
	if xlen == 0 {
		t.current.assign(TYPE_VARIABLE, pos, 0, s[pos:])
		t.current.Count = count
		return pos1
	}
	t.current.assign(TYPE_VARIABLE, pos1, xlen, s[pos1:])
	t.current.Count = count
	return pos1 + xlen
}

func (t *Tokenizer) parseMoney() int {
	s := t.s
	slen := len(s)
	pos := t.pos

	if pos+1 == slen {
		/* end of line */
		t.current.assign(TYPE_BAREWORD, pos, 1, "$")
		return slen
	}

	/*
	 * $1,000.00 or $1.000,00 ok! This also parses $....,,,111 but that's ok
	 */
	xlen := strlenspn(s[pos+1:], "0123456789.,")
	switch {
	case xlen == 0 && s[pos+1] == '$':
		/* we have $$ .. find ending $$ and make string */
		body := pos + 2
		strend := strings.Index(s[body:], "$$")
		if strend == -1 {
			/* fell off edge */
			t.current.assign(TYPE_STRING, body, slen-body, s[body:])
			t.current.StrOpen = '$'
			t.current.StrClose = CHAR_NULL
			return slen
		}
		t.current.assign(TYPE_STRING, body, strend, s[body:])
		t.current.StrOpen = '$'
		t.current.StrClose = '$'
		return body + strend + 2

	case xlen == 0:
		/* it's not '$$', but maybe it's pgsql "$ quoted strings" */
		xlen = strlenspn(s[pos+1:], "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		if xlen == 0 || pos+xlen+1 == slen || s[pos+xlen+1] != '$' {
			/* hmm it's "$" _something_ .. just add $ and keep going */
			t.current.assign(TYPE_BAREWORD, pos, 1, "$")
			return pos + 1
		}

		/* we have $foobar$... find it again */
		body := pos + xlen + 2
		tag := s[pos:body]
		strend := strings.Index(s[body:], tag)
		if strend == -1 {
			/* fell off edge */
			t.current.assign(TYPE_STRING, body, slen-body, s[body:])
			t.current.StrOpen = '$'
			t.current.StrClose = CHAR_NULL
			return slen
		}
		/*
		 * got one. we're looking in between
		 * $foobar$__________$foobar$
		 */
		t.current.assign(TYPE_STRING, body, strend, s[body:])
		t.current.StrOpen = '$'
		t.current.StrClose = '$'
		return body + strend + len(tag)

	case xlen == 1 && s[pos+1] == '.':
		/* $. should be parsed as a word */
		return t.parseWord()

	default:
		t.current.assign(TYPE_NUMBER, pos, 1+xlen, s[pos:])
		return pos + 1 + xlen
	}
}

func (t *Tokenizer) parseNumber() int {
	s := t.s
	slen := len(s)
	pos := t.pos
	haveE := false
	haveExp := false

	/*
	 * s[pos] == '0' has 1/10 chance of being true, while pos+1< slen
	 * is almost always true
	 */
	if s[pos] == '0' && pos+1 < slen {
		digits := ""
		switch s[pos+1] {
		case 'X', 'x':
			digits = "0123456789ABCDEFabcdef"
		case 'B', 'b':
			digits = "01"
		}

		if digits != "" {
			xlen := strlenspn(s[pos+2:], digits)
			if xlen == 0 {
				t.current.assign(TYPE_BAREWORD, pos, 2, s[pos:])
				return pos + 2
			}
			t.current.assign(TYPE_NUMBER, pos, 2+xlen, s[pos:])
			return pos + 2 + xlen
		}
	}

	start := pos
	for pos < slen && isDigit(s[pos]) {
		pos++
	}

	/* number sequence reached a '.' */
	if pos < slen && s[pos] == '.' {
		pos++
		/* keep going since it might be decimal */
		for pos < slen && isDigit(s[pos]) {
			pos++
		}
		if pos-start == 1 {
			/* only one character '.' read so far */
			t.current.assign(TYPE_DOT, start, 1, ".")
			return pos
		}
	}

	if pos < slen && (s[pos] == 'E' || s[pos] == 'e') {
		haveE = true
		pos++
		if pos < slen && (s[pos] == '+' || s[pos] == '-') {
			pos++
		}
		for pos < slen && isDigit(s[pos]) {
			haveExp = true
			pos++
		}
	}

	/*
	 * oracle's ending float or double suffix
	 * http://docs.oracle.com/cd/B19306_01/server.102/b14200/sql_elements003.htm#i139891
	 */
	if pos < slen && (s[pos] == 'd' || s[pos] == 'D' || s[pos] == 'f' || s[pos] == 'F') {
		if pos+1 == slen {
			/* line ends evaluate "... 1.2f$" as '1.2f' */
			pos++
		} else if charIsWhite(s[pos+1]) || s[pos+1] == ';' {
			/*
			 * easy case, evaluate "... 1.2f ... as '1.2f'
			 */
			pos++
		} else if s[pos+1] == 'u' || s[pos+1] == 'U' {
			/*
			 * a bit of a hack but makes '1fUNION' parse as '1f UNION'
			 */
			pos++
		}
		/* it's like "123FROM", parse as "123" only */
	}

	if haveE && !haveExp {
		/*
		 * very special form of "1234.e" "10.10E" ".E" this is a WORD not a
		 * number!!
		 */
		t.current.assign(TYPE_BAREWORD, start, pos-start, s[start:])
	} else {
		t.current.assign(TYPE_NUMBER, start, pos-start, s[start:])
	}
	return pos
}
