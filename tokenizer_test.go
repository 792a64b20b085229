package libinjection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []Token
	}{
		{"SELECT 1", []Token{
			{Type: TYPE_EXPRESSION, Pos: 0, Len: 6, Val: "SELECT"},
			{Type: TYPE_NUMBER, Pos: 7, Len: 1, Val: "1"},
		}},
		{"'a''b'", []Token{
			{Type: TYPE_STRING, Pos: 1, Len: 4, Val: "a''b", StrOpen: '\'', StrClose: '\''},
		}},
		{`'a\'b'`, []Token{
			{Type: TYPE_STRING, Pos: 1, Len: 4, Val: `a\'b`, StrOpen: '\'', StrClose: '\''},
		}},
		{"'abc", []Token{
			{Type: TYPE_STRING, Pos: 1, Len: 3, Val: "abc", StrOpen: '\''},
		}},
		{"/* x", []Token{
			{Type: TYPE_COMMENT, Pos: 0, Len: 4, Val: "/* x"},
		}},
		{"a<=>b", []Token{
			{Type: TYPE_BAREWORD, Pos: 0, Len: 1, Val: "a"},
			{Type: TYPE_OPERATOR, Pos: 1, Len: 3, Val: "<=>"},
			{Type: TYPE_BAREWORD, Pos: 4, Len: 1, Val: "b"},
		}},
		{"a||b", []Token{
			{Type: TYPE_BAREWORD, Pos: 0, Len: 1, Val: "a"},
			{Type: TYPE_LOGIC_OPERATOR, Pos: 1, Len: 2, Val: "||"},
			{Type: TYPE_BAREWORD, Pos: 3, Len: 1, Val: "b"},
		}},
		{"@@version", []Token{
			{Type: TYPE_VARIABLE, Pos: 2, Len: 7, Val: "version", Count: 2},
		}},
		{"$$abc$$", []Token{
			{Type: TYPE_STRING, Pos: 2, Len: 3, Val: "abc", StrOpen: '$', StrClose: '$'},
		}},
		{"[foo bar]", []Token{
			{Type: TYPE_BAREWORD, Pos: 0, Len: 9, Val: "[foo bar]"},
		}},
		{"N'abc'", []Token{
			{Type: TYPE_STRING, Pos: 2, Len: 3, Val: "abc", StrOpen: '\'', StrClose: '\''},
		}},
		{"q'[abc]'", []Token{
			{Type: TYPE_STRING, Pos: 3, Len: 3, Val: "abc", StrOpen: 'q', StrClose: 'q'},
		}},
		{"U&'x'", []Token{
			{Type: TYPE_STRING, Pos: 3, Len: 1, Val: "x", StrOpen: 'u', StrClose: 'u'},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize([]byte(tt.input), 0))
		})
	}
}

func TestTokenTypes(t *testing.T) {
	tests := []struct {
		input string
		types string
	}{
		{"0x1F", "1"},
		{"0x", "n"},
		{"1e", "n"},
		{"1.5e3", "1"},
		{"x'4F'", "1"},
		{"b'01'", "1"},
		{`\N`, "1"},
		{`\x`, `\n`},
		{".", "."},
		{"-- x", "c"},
		{"--x", "c"},
		{"#x", "on"},
		{"/*! x */", "X"},
		{"/* /* */", "X"},
		{"`sleep`", "f"},
		{"`select`", "n"},
		{"a::int", "not"},
		{"a:b", "n:n"},
		{"SELECT COUNT(*) FROM t", "Ef(o)kn"},
		{"1 UNION ALL SELECT", "1UkE"},
		{"a = ?", "no?"},
		{"{fn x}", "{nn}"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got []byte
			for _, tok := range Tokenize([]byte(tt.input), 0) {
				got = append(got, tok.Type)
			}
			assert.Equal(t, tt.types, string(got))
		})
	}
}

func TestTokenizerMySQL(t *testing.T) {
	types := func(input string) string {
		tz := NewTokenizer(input, FLAG_QUOTE_NONE|FLAG_SQL_MYSQL, Options{})
		var out []byte
		for {
			tok, ok := tz.Next()
			if !ok {
				return string(out)
			}
			out = append(out, tok.Type)
		}
	}

	assert.Equal(t, "c", types("#x"))
	assert.Equal(t, "oon", types("--x"))
	assert.Equal(t, "1c", types("1 -- x"))
}

func TestTokenizerQuoteContext(t *testing.T) {
	tz := NewTokenizer("abc' OR 1", FLAG_QUOTE_SINGLE|FLAG_SQL_ANSI, Options{})

	tok, ok := tz.Next()
	require.True(t, ok)
	assert.Equal(t, Token{Type: TYPE_STRING, Pos: 0, Len: 3, Val: "abc", StrClose: '\''}, tok)

	tok, ok = tz.Next()
	require.True(t, ok)
	assert.Equal(t, byte(TYPE_LOGIC_OPERATOR), tok.Type)
	assert.Equal(t, "OR", tok.Val)
}

func TestTokenizerBudget(t *testing.T) {
	tz := NewTokenizer("1 2 3 4", FLAG_NONE, Options{MaxTokens: 2})

	var vals []string
	for {
		tok, ok := tz.Next()
		if !ok {
			break
		}
		vals = append(vals, tok.Val)
	}
	assert.Equal(t, []string{"1", "2"}, vals)
	assert.Equal(t, 2, tz.Count())

	_, ok := tz.Next()
	assert.False(t, ok, "an exhausted tokenizer stays exhausted")

	tz.Reset()
	assert.Equal(t, 0, tz.Count())
	tok, ok := tz.Next()
	require.True(t, ok)
	assert.Equal(t, "1", tok.Val)

	assert.Len(t, Tokenize([]byte("1 2 3 4 5"), 3), 3)
}

func TestTokenizerBudgetSkipsComments(t *testing.T) {
	tz := NewTokenizer("/* a */ 1 /* b */ 2 3", FLAG_NONE, Options{MaxTokens: 2})

	var types []byte
	for {
		tok, ok := tz.Next()
		if !ok {
			break
		}
		types = append(types, tok.Type)
	}
	assert.Equal(t, "c1c1", string(types))
	assert.Equal(t, 4, tz.Count())
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, Tokenize(nil, 0))
	assert.Empty(t, Tokenize([]byte("  \t\n"), 0))

	tz := NewTokenizer("", FLAG_QUOTE_SINGLE|FLAG_SQL_ANSI, Options{})
	_, ok := tz.Next()
	assert.False(t, ok)
}

func TestTokenizerCaseSensitive(t *testing.T) {
	tz := NewTokenizer("select", FLAG_NONE, Options{CaseSensitive: true})
	tok, ok := tz.Next()
	require.True(t, ok)
	assert.Equal(t, byte(TYPE_BAREWORD), tok.Type)

	tz = NewTokenizer("SELECT", FLAG_NONE, Options{CaseSensitive: true})
	tok, ok = tz.Next()
	require.True(t, ok)
	assert.Equal(t, byte(TYPE_EXPRESSION), tok.Type)
}
