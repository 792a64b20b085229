package harness

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Summary formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WriteSummary writes the totals of t to w in format.
func WriteSummary(w io.Writer, t Tally, format string) error {
	s := Summarize(t)
	switch format {
	case FormatText, "":
		_, err := fmt.Fprintf(w, "SQLI  : %d\nSAFE  : %d\nTOTAL : %d\n", s.SQLi, s.Safe, s.Total)
		return err
	case FormatJSON:
		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	case FormatYAML:
		b, err := yaml.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unknown summary format %q", format)
	}
}
