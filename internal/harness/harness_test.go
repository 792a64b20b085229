package harness

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libinjection "github.com/jptosso/libinjection-sqli"
)

const corpus = `# comment
1+UNION+SELECT+username,+password+FROM+users

dog apple cat banana bar   
1'+OR+'1'='1
`

func newTestRunner(opts Options, out *bytes.Buffer) *Runner {
	return NewRunner(libinjection.NewDetector(nil, libinjection.Options{}), opts, out, nil)
}

func TestTallyAdd(t *testing.T) {
	var tally Tally
	tally = tally.Add(true).Add(false).Add(true)
	assert.Equal(t, Tally{SQLi: 2, Safe: 1}, tally)
	assert.Equal(t, 3, tally.Total())
	assert.Equal(t, Tally{SQLi: 3, Safe: 3}, tally.Merge(Tally{SQLi: 1, Safe: 2}))
}

func TestRunText(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(Options{}, &out)

	tally, err := r.Run("stdin", strings.NewReader(corpus), Tally{})
	require.NoError(t, err)
	assert.Equal(t, Tally{SQLi: 2, Safe: 1}, tally)

	assert.Equal(t,
		"stdin\t2\tTrue\t1UEnk\tunion\t1 UNION SELECT username, password FROM users\n"+
			"stdin\t4\tFalse\tnnnnn\t\tdog apple cat banana bar\n"+
			"stdin\t5\tTrue\ts&sos\ttautology\t1' OR '1'='1\n",
		out.String())
}

func TestRunOnlyPositives(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(Options{OnlyPositives: true}, &out)
	_, err := r.Run("stdin", strings.NewReader(corpus), Tally{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "stdin\t2\tTrue"))
	assert.True(t, strings.HasPrefix(lines[1], "stdin\t5\tTrue"))

	out.Reset()
	r = newTestRunner(Options{OnlyPositives: true, Invert: true}, &out)
	_, err = r.Run("stdin", strings.NewReader(corpus), Tally{})
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 3)
}

func TestRunQuiet(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(Options{Quiet: true, XML: true}, &out)

	require.NoError(t, r.Begin())
	tally, err := r.Run("stdin", strings.NewReader(corpus), Tally{})
	require.NoError(t, err)
	require.NoError(t, r.End())

	assert.Equal(t, 3, tally.Total())
	assert.Empty(t, out.String())
}

func TestRunXML(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(Options{XML: true}, &out)

	require.NoError(t, r.Begin())
	_, err := r.Run("attacks.txt", strings.NewReader(corpus), Tally{})
	require.NoError(t, err)
	require.NoError(t, r.End())

	got := out.String()
	assert.True(t, strings.HasPrefix(got, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, got, "<results>\n")
	assert.Contains(t, got, `<error file="attacks.txt" line="4" id="nnnnn" severity="error" msg="dog apple cat banana bar">`)
	assert.NotContains(t, got, `line="2"`)
	assert.True(t, strings.HasSuffix(got, "</results>\n"))
}

func TestRunXMLInverted(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(Options{XML: true, Invert: true}, &out)
	_, err := r.Run("benign.txt", strings.NewReader(corpus), Tally{})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, `line="2"`)
	assert.Contains(t, got, `msg="1&#39; OR &#39;1&#39;=&#39;1"`)
	assert.NotContains(t, got, `line="4"`)
}

func TestRunLineTooLong(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(Options{MaxLineBytes: 8}, &out)
	_, err := r.Run("stdin", strings.NewReader("1 UNION SELECT 1\n"), Tally{})
	assert.ErrorContains(t, err, "stdin line 1")
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inputs.txt")
	require.NoError(t, os.WriteFile(path, []byte(corpus), 0o600))

	var out bytes.Buffer
	r := newTestRunner(Options{Quiet: true}, &out)
	tally, err := r.RunFiles([]string{path, filepath.Join(dir, "missing.txt")}, 3, Tally{})
	require.NoError(t, err)
	assert.Equal(t, Tally{SQLi: 6, Safe: 3}, tally)
}

func TestRunDetectorOptions(t *testing.T) {
	var out bytes.Buffer
	d := libinjection.NewDetector(nil, libinjection.Options{Dialect: libinjection.DialectMySQL})
	r := NewRunner(d, Options{}, &out, nil)

	tally, err := r.Run("stdin", strings.NewReader("1%23foo\n"), Tally{})
	require.NoError(t, err)
	assert.Equal(t, Tally{Safe: 1}, tally)
	assert.Equal(t, "stdin\t1\tFalse\t1c\tcomment\t1#foo\n", out.String())
}
