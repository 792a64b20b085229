package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteSummary(t *testing.T) {
	tally := Tally{SQLi: 7, Safe: 3}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSummary(&buf, tally, FormatText))
		assert.Equal(t, "SQLI  : 7\nSAFE  : 3\nTOTAL : 10\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSummary(&buf, tally, FormatJSON))
		var s Summary
		require.NoError(t, json.Unmarshal(buf.Bytes(), &s))
		assert.Equal(t, Summary{SQLi: 7, Safe: 3, Total: 10}, s)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSummary(&buf, tally, FormatYAML))
		var s Summary
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &s))
		assert.Equal(t, Summary{SQLi: 7, Safe: 3, Total: 10}, s)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, WriteSummary(&bytes.Buffer{}, tally, "csv"))
	})
}
