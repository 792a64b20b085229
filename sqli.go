// Package libinjection detects SQL injection by tokenizing the input, folding
// the tokens into a short fingerprint and looking it up in a table of
// fingerprints seen in real attacks.
package libinjection

import (
	"bytes"
	"strings"
)

// Flag selects the quoting context and SQL dialect of one tokenizer pass.
type Flag int

const (
	//flags
	FLAG_NONE         Flag = 0
	FLAG_QUOTE_NONE   Flag = 1  /* 1 << 0 */
	FLAG_QUOTE_SINGLE Flag = 2  /* 1 << 1 */
	FLAG_QUOTE_DOUBLE Flag = 4  /* 1 << 2 */
	FLAG_SQL_ANSI     Flag = 8  /* 1 << 3 */
	FLAG_SQL_MYSQL    Flag = 16 /* 1 << 4 */
)

const (
	//types
	TYPE_NONE           = 0x00
	TYPE_KEYWORD        = 'k'
	TYPE_UNION          = 'U'
	TYPE_GROUP          = 'B'
	TYPE_EXPRESSION     = 'E'
	TYPE_SQLTYPE        = 't'
	TYPE_FUNCTION       = 'f'
	TYPE_BAREWORD       = 'n'
	TYPE_NUMBER         = '1'
	TYPE_VARIABLE       = 'v'
	TYPE_STRING         = 's'
	TYPE_OPERATOR       = 'o'
	TYPE_LOGIC_OPERATOR = '&'
	TYPE_COMMENT        = 'c'
	TYPE_COLLATE        = 'A'
	TYPE_LEFTPARENS     = '('
	TYPE_RIGHTPARENS    = ')'
	TYPE_LEFTBRACE      = '{'
	TYPE_RIGHTBRACE     = '}'
	TYPE_DOT            = '.'
	TYPE_COMMA          = ','
	TYPE_COLON          = ':'
	TYPE_SEMICOLON      = ';'
	TYPE_TSQL           = 'T' /* TSQL start */
	TYPE_UNKNOWN        = '?'
	TYPE_EVIL           = 'X' /* unparsable, abort  */
	TYPE_BACKSLASH      = '\\'

	//chars
	CHAR_NULL   = 0x00 // \0
	CHAR_SINGLE = '\''
	CHAR_DOUBLE = '"'
	CHAR_TICK   = '`'

	// longest word that is looked up as a keyword or phrase
	LIBINJECTION_SQLI_TOKEN_SIZE = 32

	LIBINJECTION_VERSION = "3.9.2"
)

const (
	// DefaultFingerprintLen is the number of folded tokens matched against
	// the table when Options.FingerprintLen is zero.
	DefaultFingerprintLen = 5
	// MaxFingerprintLen bounds Options.FingerprintLen and the length of
	// every table entry.
	MaxFingerprintLen = 20
	// DefaultMaxTokens bounds the raw tokens scanned per context when
	// Options.MaxTokens is zero.
	DefaultMaxTokens = 256
)

// Dialect restricts which SQL flavours Classify reads the input as.
type Dialect int

const (
	// DialectAuto reads the input as ANSI SQL and falls back to MySQL
	// when MySQL-only comment syntax was seen.
	DialectAuto Dialect = iota
	DialectANSI
	DialectMySQL
)

func (d Dialect) String() string {
	switch d {
	case DialectANSI:
		return "ansi"
	case DialectMySQL:
		return "mysql"
	default:
		return "auto"
	}
}

// ParseDialect maps "auto", "ansi" and "mysql" (any case) to a Dialect.
func ParseDialect(s string) (Dialect, bool) {
	switch strings.ToLower(s) {
	case "", "auto":
		return DialectAuto, true
	case "ansi":
		return DialectANSI, true
	case "mysql":
		return DialectMySQL, true
	}
	return DialectAuto, false
}

// Options tunes one classification. The zero value is ready to use.
type Options struct {
	Dialect Dialect
	// MaxTokens bounds the raw tokens scanned per context. Comments are
	// not counted. Input past the budget is ignored, so a payload placed
	// after MaxTokens harmless tokens is not seen.
	MaxTokens int
	// CaseSensitive disables case folding in keyword lookup.
	CaseSensitive bool
	// FingerprintLen is the number of folded tokens kept, at most
	// MaxFingerprintLen.
	FingerprintLen int
}

func (o Options) withDefaults() Options {
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.FingerprintLen <= 0 {
		o.FingerprintLen = DefaultFingerprintLen
	}
	if o.FingerprintLen > MaxFingerprintLen {
		o.FingerprintLen = MaxFingerprintLen
	}
	return o
}

// Result is the verdict of Classify.
type Result struct {
	IsInjection bool
	// Fingerprint of the context that matched, or of the input read as-is
	// when nothing matched.
	Fingerprint string
	// Reason is the label of the matched table entry.
	Reason string
	// Suppressed names the false positive rule that vetoed a table hit.
	Suppressed string
	// Flags is the context the fingerprint was computed in.
	Flags Flag
}

// Detector classifies inputs against one fingerprint table. It holds no
// per-call state and is safe for concurrent use.
type Detector struct {
	table *Table
	opts  Options
}

// NewDetector returns a Detector over table, or over the embedded default
// table when table is nil.
func NewDetector(table *Table, opts Options) *Detector {
	if table == nil {
		table = DefaultTable()
	}
	return &Detector{table: table, opts: opts.withDefaults()}
}

func (d *Detector) Table() *Table {
	return d.table
}

func (d *Detector) Options() Options {
	return d.opts
}

// Classify decides whether input is SQL injection.
func Classify(input []byte, opts Options) Result {
	d := Detector{table: DefaultTable(), opts: opts.withDefaults()}
	return d.Classify(input)
}

// IsSQLi classifies input with default options and returns the verdict and
// the fingerprint.
func IsSQLi(input []byte) (bool, string) {
	r := Classify(input, Options{})
	return r.IsInjection, r.Fingerprint
}

// Classify decides whether input is SQL injection. The input is tried as-is
// and then as if it was injected into a single or double quoted string.
func (d *Detector) Classify(input []byte) Result {
	var res Result
	if len(input) == 0 {
		return res
	}

	var st State
	s := bytesView(input)

	ansi := d.opts.Dialect != DialectMySQL
	mysql := d.opts.Dialect != DialectANSI

	/* test input as-is */
	if ansi {
		if st.check(d, s, FLAG_QUOTE_NONE|FLAG_SQL_ANSI, &res) {
			return res
		}
		if mysql && st.reparseAsMySQL() &&
			st.check(d, s, FLAG_QUOTE_NONE|FLAG_SQL_MYSQL, &res) {
			return res
		}
	} else if st.check(d, s, FLAG_QUOTE_NONE|FLAG_SQL_MYSQL, &res) {
		return res
	}

	/*
	 * if input contains single quote, pretend it starts with single quote
	 * example: admin' OR 1=1--  is tested as  'admin' OR 1=1--
	 */
	if bytes.IndexByte(input, CHAR_SINGLE) != -1 {
		if ansi {
			if st.check(d, s, FLAG_QUOTE_SINGLE|FLAG_SQL_ANSI, &res) {
				return res
			}
			if mysql && st.reparseAsMySQL() &&
				st.check(d, s, FLAG_QUOTE_SINGLE|FLAG_SQL_MYSQL, &res) {
				return res
			}
		} else if st.check(d, s, FLAG_QUOTE_SINGLE|FLAG_SQL_MYSQL, &res) {
			return res
		}
	}

	/*
	 * same as above but with a double-quote "
	 */
	if bytes.IndexByte(input, CHAR_DOUBLE) != -1 {
		flags := FLAG_QUOTE_DOUBLE | FLAG_SQL_MYSQL
		if !mysql {
			flags = FLAG_QUOTE_DOUBLE | FLAG_SQL_ANSI
		}
		if st.check(d, s, flags, &res) {
			return res
		}
	}

	/* Not SQLi! */
	return res
}

// check fingerprints s in one context and records the outcome in res.
// The first fingerprint computed and the first suppressed hit are kept
// when nothing matches.
func (st *State) check(d *Detector, s string, flags Flag, res *Result) bool {
	st.fingerprint(s, flags, d.opts)
	fp := st.fp[:st.fplen]

	if res.Flags == FLAG_NONE {
		res.Fingerprint = string(fp)
		res.Flags = flags
	}

	entry, ok := d.table.lookup(fp)
	if !ok {
		return false
	}
	if rule := st.whitelisted(); rule != "" {
		if res.Suppressed == "" {
			res.Fingerprint = entry.Fingerprint
			res.Reason = entry.Reason
			res.Suppressed = rule
			res.Flags = flags
		}
		return false
	}
	*res = Result{
		IsInjection: true,
		Fingerprint: entry.Fingerprint,
		Reason:      entry.Reason,
		Flags:       flags,
	}
	return true
}

func (st *State) reparseAsMySQL() bool {
	return st.tok.statsCommentDDX+st.tok.statsCommentHash > 0
}

// Fingerprint folds input in one context and returns the fingerprint.
func Fingerprint(input []byte, flags Flag, opts Options) string {
	var st State
	st.fingerprint(bytesView(input), flags, opts.withDefaults())
	return string(st.fp[:st.fplen])
}

/*
 * Names of the rules that veto a table hit. A short fingerprint is
 * checked again against the raw tokens since it is easy to produce by
 * accident.
 */
const (
	SuppressUnionNumber  = "number-union"
	SuppressHashComment  = "hash-comment"
	SuppressWordComment  = "bareword-comment"
	SuppressNumberText   = "number-text-comment"
	SuppressDashText     = "dash-text-comment"
	SuppressStringGlue   = "string-concat"
	SuppressSearchPhrase = "search-phrase"
	SuppressKeywordOnly  = "keyword-only"
	SuppressPassword     = "password"
)

// whitelisted returns the name of the rule that marks the current
// fingerprint as a false positive, or "" when it stands.
func (st *State) whitelisted() string {
	tlen := st.fplen
	tv := &st.tokenvec

	/*
	 * sp_password tells MSSQL to not log the query, a trailing comment
	 * holding it is never safe.
	 */
	if tlen > 1 && st.fp[tlen-1] == TYPE_COMMENT {
		if strings.Contains(tv[tlen-1].Val, "sp_password") {
			return ""
		}
	}

	switch tlen {
	case 2:
		/*
		 * case 2 are "very small SQLi" which make them
		 * hard to tell from normal input...
		 */
		if st.fp[1] == TYPE_UNION {
			/*
			 * lots of reasons why "1 union" might be normal input, so
			 * beep only when there was folding or comments
			 */
			if st.tok.count == 2 {
				return SuppressUnionNumber
			}
			return ""
		}

		/*
		 * if 'comment' is '#' ignore.. too many FP
		 */
		if strings.HasPrefix(tv[1].Val, "#") {
			return SuppressHashComment
		}

		/*
		 * for fingerprint like 'nc', only comments of /x are treated
		 * as SQL... ending comments of "--" and "#" are not SQLi
		 */
		if tv[0].Type == TYPE_BAREWORD && tv[1].Type == TYPE_COMMENT &&
			!strings.HasPrefix(tv[1].Val, "/") {
			return SuppressWordComment
		}

		/*
		 * if '1c' ends with '/x' then it's SQLi
		 */
		if tv[0].Type == TYPE_NUMBER && tv[1].Type == TYPE_COMMENT &&
			strings.HasPrefix(tv[1].Val, "/") {
			return ""
		}

		/*
		 * there are some odd base64-looking query string values
		 * 1234-ABCDEFEhfhihwuefi-- which evaluate to "1c"... these are
		 * not SQLi but 1234-- probably is. The raw input is checked
		 * since folding may have merged tokens, e.g. "1+FOO" is "1".
		 */
		if tv[0].Type == TYPE_NUMBER && tv[1].Type == TYPE_COMMENT {
			if st.tok.count > 2 {
				/* we have some folding going on, highly likely SQLi */
				return ""
			}
			s := st.tok.s
			next := tv[0].Len
			if next >= len(s) || s[next] <= 32 {
				return ""
			}
			if next+1 < len(s) {
				if s[next] == '/' && s[next+1] == '*' {
					return ""
				}
				if s[next] == '-' && s[next+1] == '-' {
					return ""
				}
			}
			return SuppressNumberText
		}

		/*
		 * detect obvious SQLi scans.. many people put '--' in plain text
		 * so only detect if input ends with '--', e.g. 1-- but not 1-- foo
		 */
		if tv[1].Len > 2 && strings.HasPrefix(tv[1].Val, "-") {
			return SuppressDashText
		}

	case 3:
		fp := string(st.fp[:3])
		switch {
		case fp == "sos" || fp == "s&s":
			/*
			 * ...foo' + 'bar... no opening quote, no closing quote and
			 * the strings meet at the same quote
			 */
			if tv[0].StrOpen == CHAR_NULL && tv[2].StrClose == CHAR_NULL &&
				tv[0].StrClose == tv[2].StrOpen {
				return ""
			}
			return SuppressStringGlue

		case fp == "s&n" || fp == "n&1" || fp == "1&1" || fp == "1&v" || fp == "1&s":
			/* 'sexy and 17' not sqli, 'sexy and 17<18' sqli */
			if st.tok.count == 3 {
				return SuppressSearchPhrase
			}

		case tv[1].Type == TYPE_KEYWORD:
			/*
			 * if it's not "INTO OUTFILE", or "INTO DUMPFILE" (MySQL)
			 * then treat as safe
			 */
			if len(tv[1].Val) < 5 || !strings.EqualFold(tv[1].Val[:4], "INTO") {
				return SuppressKeywordOnly
			}
		}

	case 4:
		/*
		 * passwords like "foo!@#" read as bareword, '!', empty variable
		 * and a MySQL '#' comment
		 */
		fp := string(st.fp[:4])
		if (fp == "novc" || fp == "1ovc") && tv[1].Val == "!" &&
			tv[2].Len == 0 && strings.HasPrefix(tv[3].Val, "#") {
			return SuppressPassword
		}
	}

	return ""
}
