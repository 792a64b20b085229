package libinjection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintFolding(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 UNION SELECT username, password FROM users", "1UEnk"},
		{"dog apple cat banana bar", "nnnnn"},
		{"1+1", "1"},
		{"-1", "1"},
		{"x IN (1)", "n"},
		{"1; IF", "1;T"},
		{"a .b", "n"},
		{"'a' 'b'", "s"},
		{"1 /* c */ UNION", "1U"},
		{"SELECT 1 --", "E1c"},
		{"SELECT - 1", "E1"},
		{"{fn x}", "n"},
		{"((1))", "1)"},
		{"foo COLLATE latin1_bin", "nAt"},
		{"1 union select 1,2,3", "1UE1"},
		{"user(1)", "n(1)"},
		{"user()", "f()"},
		{"a b `", "nnc"},
		{"1 UNION SELECT /*! x */", "X"},
		{"/* a */ /* b */", "c"},
		{"(((", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Fingerprint([]byte(tt.input), FLAG_QUOTE_NONE|FLAG_SQL_ANSI, Options{}))
		})
	}
}

func TestFingerprintQuoteContexts(t *testing.T) {
	input := []byte("1' OR '1'='1")
	assert.Equal(t, "1s1s1", Fingerprint(input, FLAG_QUOTE_NONE|FLAG_SQL_ANSI, Options{}))
	assert.Equal(t, "s&sos", Fingerprint(input, FLAG_QUOTE_SINGLE|FLAG_SQL_ANSI, Options{}))
}

func TestFold(t *testing.T) {
	toks := Tokenize([]byte("1 UNION SELECT username, password FROM users"), 0)
	require.Len(t, toks, 8)

	folded := Fold(toks, 0)
	require.Len(t, folded, DefaultFingerprintLen)

	var fp []byte
	for _, tok := range folded {
		fp = append(fp, tok.Type)
	}
	assert.Equal(t, "1UEnk", string(fp))
	assert.Equal(t, "SELECT", folded[2].Val)

	assert.Len(t, Fold(toks, 2), 2)
	assert.Nil(t, Fold(nil, 0))
}

func TestFoldMergesPhrases(t *testing.T) {
	folded := Fold(Tokenize([]byte("1 union all select 2"), 0), 0)
	require.Len(t, folded, 4)
	assert.Equal(t, byte(TYPE_UNION), folded[1].Type)
	assert.Equal(t, "UNION ALL", folded[1].Val)
	assert.Equal(t, 2, folded[1].Pos)
	assert.Equal(t, len("union all"), folded[1].Len)
}
