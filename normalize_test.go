package libinjection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1   UNION/**/SELECT  1", "1 UNION SELECT 1"},
		{"name' OR 1=1 --", "name' OR 1=1"},
		{"a , b", "a,b"},
		{"@@version", "@@version"},
		{`x" and "y`, `x" and "y`},
		{"SELECT  `a b`", "SELECT `a b`"},
		{"SELECT $$x$$", "SELECT $$x$$"},
		{"a\"b' OR  1 = 1", "a\"b' OR 1=1"},
		{"a\"b'/**/UNION/**/SELECT 1", "a\"b' UNION SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, string(Normalize([]byte(tt.input), Options{})))
		})
	}
}

func TestNormalizeEvasions(t *testing.T) {
	want := Normalize([]byte("1 UNION SELECT 1"), Options{})
	for _, in := range []string{
		"1/**/UNION/**/SELECT/**/1",
		"1\tUNION\n\nSELECT   1",
		"1 UNION -- x\nSELECT 1",
	} {
		assert.Equal(t, string(want), string(Normalize([]byte(in), Options{})), in)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize(nil, Options{}))
	assert.Empty(t, Normalize([]byte("/* only a comment */"), Options{}))
}

func TestNormalizeMySQLComments(t *testing.T) {
	assert.Equal(t, "1#x", string(Normalize([]byte("1 #x"), Options{})))
	assert.Equal(t, "1", string(Normalize([]byte("1 #x"), Options{Dialect: DialectMySQL})))
}
