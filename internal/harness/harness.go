// Package harness runs newline-delimited test inputs through the detector
// and reports per-line verdicts and totals.
package harness

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	libinjection "github.com/jptosso/libinjection-sqli"
)

// DefaultMaxLineBytes bounds the length of one input line.
const DefaultMaxLineBytes = 1 << 20

// Options mirror the harness command line flags.
type Options struct {
	Invert        bool // inputs are expected to be safe
	XML           bool // report failures as XML
	Quiet         bool // only count
	OnlyPositives bool // print positives only, or negatives too when inverted
	MaxLineBytes  int
}

// Tally accumulates verdicts. It is a value: every step returns the
// updated copy.
type Tally struct {
	SQLi int `json:"sqli" yaml:"sqli"`
	Safe int `json:"safe" yaml:"safe"`
}

// Add records one verdict.
func (t Tally) Add(isSQLi bool) Tally {
	if isSQLi {
		t.SQLi++
	} else {
		t.Safe++
	}
	return t
}

// Merge adds the counts of o.
func (t Tally) Merge(o Tally) Tally {
	return Tally{SQLi: t.SQLi + o.SQLi, Safe: t.Safe + o.Safe}
}

func (t Tally) Total() int {
	return t.SQLi + t.Safe
}

// Runner classifies input streams and writes per-line results to out.
type Runner struct {
	detector *libinjection.Detector
	opts     Options
	out      io.Writer
	logger   *logrus.Logger
}

// NewRunner creates a runner. A nil logger discards log output.
func NewRunner(d *libinjection.Detector, opts Options, out io.Writer, logger *logrus.Logger) *Runner {
	if opts.MaxLineBytes <= 0 {
		opts.MaxLineBytes = DefaultMaxLineBytes
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Runner{detector: d, opts: opts, out: out, logger: logger}
}

// Begin writes the report header.
func (r *Runner) Begin() error {
	if !r.opts.XML || r.opts.Quiet {
		return nil
	}
	_, err := io.WriteString(r.out, xml.Header+"<results>\n")
	return err
}

// End closes the report.
func (r *Runner) End() error {
	if !r.opts.XML || r.opts.Quiet {
		return nil
	}
	_, err := io.WriteString(r.out, "</results>\n")
	return err
}

// Run classifies every line of in. name is the file name reported with
// each line.
func (r *Runner) Run(name string, in io.Reader, tally Tally) (Tally, error) {
	size := 64 * 1024
	if size > r.opts.MaxLineBytes {
		size = r.opts.MaxLineBytes
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, size), r.opts.MaxLineBytes)

	lineno := 0
	for scanner.Scan() {
		lineno++
		line := RTrim(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		input := URLDecode(line)
		res := r.detector.Classify(input)
		tally = tally.Add(res.IsInjection)

		if err := r.report(name, lineno, input, res); err != nil {
			return tally, fmt.Errorf("failed to write result: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return tally, fmt.Errorf("%s line %d: %w", name, lineno+1, err)
	}
	return tally, nil
}

// RunFiles runs every file repeat times. Files that cannot be opened are
// logged and skipped.
func (r *Runner) RunFiles(paths []string, repeat int, tally Tally) (Tally, error) {
	if repeat < 1 {
		repeat = 1
	}
	for i := 0; i < repeat; i++ {
		for _, path := range paths {
			f, err := os.Open(path)
			if err != nil {
				r.logger.WithError(err).WithField("file", path).Warn("Skipping unreadable input file")
				continue
			}
			tally, err = r.Run(path, f, tally)
			f.Close()
			if err != nil {
				return tally, err
			}
		}
	}
	r.logger.WithFields(logrus.Fields{
		"files":  len(paths),
		"repeat": repeat,
		"total":  tally.Total(),
	}).Debug("Finished input files")
	return tally, nil
}

func (r *Runner) report(name string, lineno int, input []byte, res libinjection.Result) error {
	if r.opts.Quiet {
		return nil
	}

	if r.opts.XML {
		/* false negatives, or false positives when inverted */
		if res.IsInjection == r.opts.Invert {
			return writeXMLError(r.out, name, lineno, res.Fingerprint, ToPrint(input))
		}
		return nil
	}

	if r.opts.OnlyPositives && !res.IsInjection && !r.opts.Invert {
		return nil
	}
	verdict := "False"
	if res.IsInjection {
		verdict = "True"
	}
	_, err := fmt.Fprintf(r.out, "%s\t%d\t%s\t%s\t%s\t%s\n",
		name, lineno, verdict, res.Fingerprint, res.Reason, ToPrint(input))
	return err
}

type xmlError struct {
	XMLName  xml.Name `xml:"error"`
	File     string   `xml:"file,attr"`
	Line     int      `xml:"line,attr"`
	ID       string   `xml:"id,attr"`
	Severity string   `xml:"severity,attr"`
	Msg      string   `xml:"msg,attr"`
}

func writeXMLError(w io.Writer, name string, lineno int, fp string, msg string) error {
	b, err := xml.Marshal(xmlError{
		File:     name,
		Line:     lineno,
		ID:       fp,
		Severity: "error",
		Msg:      msg,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// Summary is the totals block printed after a run.
type Summary struct {
	SQLi  int `json:"sqli" yaml:"sqli"`
	Safe  int `json:"safe" yaml:"safe"`
	Total int `json:"total" yaml:"total"`
}

// Summarize converts a tally into its report form.
func Summarize(t Tally) Summary {
	return Summary{SQLi: t.SQLi, Safe: t.Safe, Total: t.Total()}
}
