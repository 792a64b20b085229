package libinjection

import "strings"

/*
 * fold reads tokens from st.next and reduces them onto st.tokenvec, which is
 * used as a stack. Each incoming token is compared with the top one or two
 * folded tokens; a rule either drops it, rewrites it, or pops the stack and
 * feeds the rewritten token through the rules again.
 *
 * Folding stops once the stack holds one token more than limit, that token
 * is only there to let the ones before it fold. The result is the number of
 * folded tokens kept, at most limit.
 */
func (st *State) fold(limit int) int {
	var (
		cur         Token
		more        bool
		lastComment Token
		haveComment bool
	)

	/* skip all initial comments, right-parens ( and unary operators */
	for {
		cur, more = st.next()
		if !more {
			break
		}
		if cur.Type == TYPE_COMMENT {
			lastComment = cur
			haveComment = true
			continue
		}
		if cur.Type == TYPE_LEFTPARENS || cur.Type == TYPE_SQLTYPE || cur.isUnaryOp() {
			continue
		}
		break
	}

	if !more {
		/* input was only comments, unary or ( */
		if haveComment && limit > 0 {
			st.tokenvec[0] = lastComment
			return 1
		}
		return 0
	}

	depth := 0
	haveComment = false
	for more {
		if cur.Type == TYPE_COMMENT {
			lastComment = cur
			haveComment = true
		} else {
			haveComment = false
			var stop bool
			depth, stop = st.reduce(depth, cur)
			if stop || depth > limit {
				break
			}
		}
		cur, more = st.next()
	}

	if depth > limit {
		return limit
	}

	/* a comment closing the input is part of the fingerprint */
	if haveComment && depth < limit {
		st.tokenvec[depth] = lastComment
		depth++
	}
	return depth
}

// reduce folds cur onto the n tokens of the stack and returns the new stack
// depth. stop is set once an evil token was pushed.
func (st *State) reduce(n int, cur Token) (int, bool) {
	tv := &st.tokenvec

	for {
		if cur.Type == TYPE_EVIL {
			tv[n] = cur
			return n + 1, true
		}

		if n >= 1 {
			prev := &tv[n-1]

			switch {
			case cur.Type == TYPE_RIGHTBRACE:
				return n, false

			case prev.Type == TYPE_STRING && cur.Type == TYPE_STRING:
				/* "FOO" "BAR" == "FOO" (skip second string) */
				return n, false

			case prev.Type == TYPE_SEMICOLON && cur.Type == TYPE_SEMICOLON:
				/* fold away repeated semicolons. i.e. ;; to ; */
				return n, false

			case prev.Type == TYPE_SEMICOLON && cur.Type == TYPE_FUNCTION && cur.valIs("IF"):
				/* IF is normally a function, except in Transact-SQL where it
				 * can be used as a standalone control flow operator, e.g. ; IF
				 * 1=1 ... if found after a semicolon, convert from 'f' type to
				 * 'T' type
				 */
				cur.Type = TYPE_TSQL
				continue

			case (prev.Type == TYPE_OPERATOR || prev.Type == TYPE_LOGIC_OPERATOR) &&
				(cur.isUnaryOp() || cur.Type == TYPE_SQLTYPE):
				/* if an operator is followed by a unary operator, skip it.
				 * 1, + ==> "+" is not unary, it's arithmetic
				 * AND, + ==> "+" is unary
				 */
				return n, false

			case prev.Type == TYPE_LEFTPARENS && cur.isUnaryOp():
				return n, false
			}

			if merged, ok := mergeWords(prev, &cur); ok {
				n--
				cur = merged
				continue
			}

			switch {
			case (prev.Type == TYPE_BAREWORD || prev.Type == TYPE_VARIABLE) &&
				cur.Type == TYPE_LEFTPARENS && isFakeFunction(prev.Val):
				/* other conversions need to go here... for instance
				 * password CAN be a function, coalesce CAN be a function
				 */
				prev.Type = TYPE_FUNCTION
				continue

			case prev.Type == TYPE_KEYWORD && (prev.valIs("IN") || prev.valIs("NOT IN")):
				if cur.Type == TYPE_LEFTPARENS {
					/* got .... IN ( ... (or 'NOT IN') it's an operator */
					prev.Type = TYPE_OPERATOR
				} else {
					/* it's a nothing */
					prev.Type = TYPE_BAREWORD
				}
				continue

			case prev.Type == TYPE_OPERATOR && (prev.valIs("LIKE") || prev.valIs("NOT LIKE")) &&
				cur.Type == TYPE_LEFTPARENS:
				/* SELECT LIKE(... it's a function */
				prev.Type = TYPE_FUNCTION
				continue

			case prev.Type == TYPE_SQLTYPE && foldsAfterType(cur.Type):
				/* drop the type, keep what it qualifies */
				n--
				continue

			case prev.Type == TYPE_COLLATE && cur.Type == TYPE_BAREWORD &&
				strings.IndexByte(cur.Val, '_') != -1:
				/* there are too many collation types.. so if the bareword
				 * has a "_" then it's TYPE_SQLTYPE
				 */
				cur.Type = TYPE_SQLTYPE
				continue

			case prev.Type == TYPE_BACKSLASH:
				if cur.isArithmeticOp() {
					/* very weird case in TSQL where '\%1' is parsed as '0 %
					 * 1', etc
					 */
					prev.Type = TYPE_NUMBER
				} else {
					/* just ignore it.. Again T-SQL seems to parse \1 as "1" */
					n--
				}
				continue

			case prev.Type == TYPE_LEFTPARENS && cur.Type == TYPE_LEFTPARENS,
				prev.Type == TYPE_RIGHTPARENS && cur.Type == TYPE_RIGHTPARENS:
				return n, false

			case prev.Type == TYPE_LEFTBRACE && cur.Type == TYPE_BAREWORD:
				/*
				 * MS SQL Server "ODBC" escape of the form {fn ... }
				 */
				if cur.Len == 0 {
					cur.Type = TYPE_EVIL
					continue
				}
				/* remove the "{fn" */
				return n - 1, false
			}
		}

		if n >= 3 && cur.Type == TYPE_RIGHTPARENS {
			z, lp, x := &tv[n-3], &tv[n-2], &tv[n-1]
			if (z.Type == TYPE_OPERATOR || z.Type == TYPE_COMMA) &&
				lp.Type == TYPE_LEFTPARENS &&
				(x.Type == TYPE_NUMBER || x.Type == TYPE_BAREWORD) {
				/* +(1) ==> +1 */
				cur = *x
				n -= 2
				continue
			}
		}

		if n >= 2 {
			a, b := &tv[n-2], &tv[n-1]

			switch {
			case a.Type == TYPE_NUMBER && b.Type == TYPE_OPERATOR && cur.Type == TYPE_NUMBER:
				/* 1 + 1 ==> 1 */
				return n - 1, false

			case a.Type == TYPE_OPERATOR && b.Type != TYPE_LEFTPARENS && cur.Type == TYPE_OPERATOR:
				return n - 1, false

			case a.Type == TYPE_LOGIC_OPERATOR && cur.Type == TYPE_LOGIC_OPERATOR:
				return n - 1, false

			case a.Type == TYPE_VARIABLE && b.Type == TYPE_OPERATOR &&
				(cur.Type == TYPE_VARIABLE || cur.Type == TYPE_NUMBER || cur.Type == TYPE_BAREWORD):
				return n - 1, false

			case (a.Type == TYPE_BAREWORD || a.Type == TYPE_NUMBER) && b.Type == TYPE_OPERATOR &&
				(cur.Type == TYPE_NUMBER || cur.Type == TYPE_BAREWORD):
				return n - 1, false

			case isValue(a.Type) && b.Type == TYPE_OPERATOR && b.Val == "::" &&
				cur.Type == TYPE_SQLTYPE:
				/* postgres cast, x :: int */
				return n - 1, false

			case isValue(a.Type) && b.Type == TYPE_COMMA && isValue(cur.Type):
				/* 1,2 ==> 1 */
				return n - 1, false

			case (a.Type == TYPE_EXPRESSION || a.Type == TYPE_GROUP || a.Type == TYPE_COMMA) &&
				b.isUnaryOp() && cur.Type == TYPE_LEFTPARENS:
				/* got something like SELECT + (, LIMIT + (
				 * remove unary operator
				 */
				n--
				continue

			case (a.Type == TYPE_KEYWORD || a.Type == TYPE_EXPRESSION || a.Type == TYPE_GROUP ||
				a.Type == TYPE_COMMA) && b.isUnaryOp() &&
				(isValue(cur.Type) || cur.Type == TYPE_FUNCTION):
				/* remove unary operators
				 * select - 1
				 */
				n--
				continue

			case a.Type == TYPE_BAREWORD && b.Type == TYPE_DOT && cur.Type == TYPE_BAREWORD:
				/* ignore the '.n'
				 * typically is this databasename.table
				 */
				return n - 1, false

			case a.Type == TYPE_EXPRESSION && b.Type == TYPE_DOT && cur.Type == TYPE_BAREWORD:
				/* select . `foo` --> exists in MYSQL */
				n--
				continue

			case a.Type == TYPE_FUNCTION && a.valIs("USER") && b.Type == TYPE_LEFTPARENS &&
				cur.Type != TYPE_RIGHTPARENS:
				/*
				 * Some SQL functions like USER() have 0 args if we get
				 * User(foo), then User is not a function
				 */
				a.Type = TYPE_BAREWORD
				continue
			}
		}

		tv[n] = cur
		return n + 1, false
	}
}

// isValue reports whether typ is a literal or a name.
func isValue(typ byte) bool {
	switch typ {
	case TYPE_NUMBER, TYPE_BAREWORD, TYPE_STRING, TYPE_VARIABLE:
		return true
	}
	return false
}

func foldsAfterType(typ byte) bool {
	switch typ {
	case TYPE_BAREWORD, TYPE_NUMBER, TYPE_SQLTYPE, TYPE_LEFTPARENS,
		TYPE_FUNCTION, TYPE_VARIABLE, TYPE_STRING:
		return true
	}
	return false
}

/*
 * TSQL functions but common enough to be column names, MySQL functions and
 * words that act as a variable and are a function
 * http://msdn.microsoft.com/en-us/library/ms176050.aspx
 */
var fakeFunctions = []string{
	"USER_ID",
	"USER_NAME",
	"DATABASE",
	"PASSWORD",
	"USER",
	"CURRENT_USER",
	"CURRENT_DATE",
	"CURRENT_TIME",
	"CURRENT_TIMESTAMP",
	"LOCALTIME",
	"LOCALTIMESTAMP",
}

func isFakeFunction(word string) bool {
	for _, f := range fakeFunctions {
		if strings.EqualFold(word, f) {
			return true
		}
	}
	return false
}
