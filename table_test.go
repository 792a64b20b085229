package libinjection

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	entries := table.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, len(entries), table.Len())
	assert.True(t, sort.SliceIsSorted(entries, func(i, j int) bool {
		return entries[i].Fingerprint < entries[j].Fingerprint
	}))

	for _, e := range entries {
		reason, ok := table.Lookup(e.Fingerprint)
		assert.True(t, ok, e.Fingerprint)
		assert.Equal(t, e.Reason, reason)
		assert.NotEmpty(t, reason, e.Fingerprint)
	}

	for _, fp := range []string{"", "nnnnn", "1s1s1", "c", "n", "1", "s", "nn", "zz"} {
		_, ok := table.Lookup(fp)
		assert.False(t, ok, fp)
	}
}

func TestDefaultTableReachable(t *testing.T) {
	reached := map[string]string{
		"1UE":   "1 UNION SELECT",
		"1UE1":  "1 union all select 1",
		"1UEnk": "1 UNION SELECT username, password FROM users",
		"sUE1":  "x' UNION SELECT 1",
		"s&sos": "1' OR '1'='1",
		"1&1":   "1 and 1=1",
		"sc":    "admin' --",
		"nc":    "foo /* x */",
		"1;Ekn": "1; DROP TABLE users",
		"1;T":   "1; IF",
		"1ks":   "1 into outfile '/tmp/x'",
		"X":     "1 /*! UNION */",
		"s&1o(": "x' AND 1=(SELECT COUNT(*) FROM tabname); --",
		"1&(E1": "1 AND (SELECT 1 FROM (SELECT SLEEP(5))a)",
		"s&1of": "' AND 1=CONVERT(int,@@version)--",
		"1Es":   "1 WAITFOR DELAY '0:0:5'",
	}

	table := DefaultTable()
	for fp, input := range reached {
		t.Run(fp, func(t *testing.T) {
			reason, ok := table.Lookup(fp)
			require.True(t, ok)

			r := Classify([]byte(input), Options{})
			assert.True(t, r.IsInjection, input)
			assert.Equal(t, fp, r.Fingerprint)
			assert.Equal(t, reason, r.Reason)
		})
	}
}

func TestParseTable(t *testing.T) {
	input := `
# union based
1UE union
s&sos   tautology  check

1UE duplicate
`
	table, err := ParseTable(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	reason, ok := table.Lookup("s&sos")
	assert.True(t, ok)
	assert.Equal(t, "tautology check", reason)

	reason, ok = table.Lookup("1UE")
	assert.True(t, ok)
	assert.Equal(t, "union", reason)
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown type code", "1UE\nqq bad\n"},
		{"too long", strings.Repeat("1", MaxFingerprintLen+1)},
		{"lower case keyword", "1ue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFingerprint))
		})
	}

	_, err := ParseTable(strings.NewReader("1UE\nqq bad\n"))
	assert.Contains(t, err.Error(), "line 2")
}

func TestNewTable(t *testing.T) {
	table, err := NewTable([]Entry{
		{Fingerprint: "s&sos", Reason: "b"},
		{Fingerprint: "1UE", Reason: "a"},
		{Fingerprint: "1UE", Reason: "c"},
	})
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Fingerprint: "1UE", Reason: "a"},
		{Fingerprint: "s&sos", Reason: "b"},
	}, table.Entries())

	_, err = NewTable([]Entry{{Fingerprint: ""}})
	assert.ErrorIs(t, err, ErrInvalidFingerprint)
}

func writeTable(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTableFile(t *testing.T) {
	table, err := LoadTableFile(writeTable(t, "words.txt", "nnnnn words\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	_, err = LoadTableFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	_, err = LoadTableFile(writeTable(t, "bad.txt", "1UE\nwat\n"))
	assert.ErrorIs(t, err, ErrInvalidFingerprint)
}

func TestRegistry(t *testing.T) {
	path := writeTable(t, "custom.txt", "nnnnn words\n")

	reg, err := NewRegistry(map[string]string{"Custom": path})
	require.NoError(t, err)
	assert.Equal(t, []string{"custom", DefaultSet}, reg.Names())

	table, err := reg.Get("CUSTOM")
	require.NoError(t, err)
	reason, ok := table.Lookup("nnnnn")
	assert.True(t, ok)
	assert.Equal(t, "words", reason)

	table, err = reg.Get("")
	require.NoError(t, err)
	assert.Same(t, DefaultTable(), table)

	_, err = reg.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownSet)

	_, err = NewRegistry(map[string]string{DefaultSet: path})
	assert.Error(t, err)

	_, err = NewRegistry(map[string]string{"broken": writeTable(t, "broken.txt", "???x\n")})
	assert.ErrorIs(t, err, ErrInvalidFingerprint)
}
