package libinjection

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrInvalidFingerprint is returned for table entries that are empty,
	// too long or hold an unknown type code.
	ErrInvalidFingerprint = errors.New("libinjection: invalid fingerprint")
	// ErrUnknownSet is returned when a pattern set name is not registered.
	ErrUnknownSet = errors.New("libinjection: unknown pattern set")
)

// DefaultSet is the name of the embedded fingerprint table.
const DefaultSet = "default"

//go:embed fingerprints.txt
var defaultFingerprints string

// Entry is one known-bad fingerprint and the label reported for it.
type Entry struct {
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	Reason      string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Table is a sorted, immutable set of fingerprints. A Table is never
// modified once built, so it is safe for concurrent use.
type Table struct {
	entries []Entry
}

// NewTable validates entries and returns them as a sorted table. When a
// fingerprint is listed twice the first reason wins.
func NewTable(entries []Entry) (*Table, error) {
	sorted := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if err := validFingerprint(e.Fingerprint); err != nil {
			return nil, err
		}
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fingerprint < sorted[j].Fingerprint
	})

	out := sorted[:0]
	for _, e := range sorted {
		if len(out) > 0 && out[len(out)-1].Fingerprint == e.Fingerprint {
			continue
		}
		out = append(out, e)
	}
	return &Table{entries: out}, nil
}

// ParseTable reads the text table format: one "fingerprint [reason]"
// entry per line, '#' starts a comment line, blank lines are ignored.
func ParseTable(r io.Reader) (*Table, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		e := Entry{Fingerprint: fields[0]}
		if len(fields) > 1 {
			e.Reason = strings.Join(fields[1:], " ")
		}
		if err := validFingerprint(e.Fingerprint); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fingerprint table: %w", err)
	}
	return NewTable(entries)
}

// LoadTableFile parses the fingerprint table stored at path.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fingerprint table: %w", err)
	}
	defer f.Close()

	t, err := ParseTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func validFingerprint(fp string) error {
	if fp == "" || len(fp) > MaxFingerprintLen {
		return fmt.Errorf("%w: %q has length %d", ErrInvalidFingerprint, fp, len(fp))
	}
	for i := 0; i < len(fp); i++ {
		if !isTypeCode(fp[i]) {
			return fmt.Errorf("%w: %q has unknown type code %q", ErrInvalidFingerprint, fp, fp[i])
		}
	}
	return nil
}

func isTypeCode(ch byte) bool {
	switch ch {
	case TYPE_KEYWORD, TYPE_UNION, TYPE_GROUP, TYPE_EXPRESSION, TYPE_SQLTYPE,
		TYPE_FUNCTION, TYPE_BAREWORD, TYPE_NUMBER, TYPE_VARIABLE, TYPE_STRING,
		TYPE_OPERATOR, TYPE_LOGIC_OPERATOR, TYPE_COMMENT, TYPE_COLLATE,
		TYPE_LEFTPARENS, TYPE_RIGHTPARENS, TYPE_LEFTBRACE, TYPE_RIGHTBRACE,
		TYPE_DOT, TYPE_COMMA, TYPE_COLON, TYPE_SEMICOLON, TYPE_TSQL,
		TYPE_UNKNOWN, TYPE_EVIL, TYPE_BACKSLASH:
		return true
	}
	return false
}

// Lookup returns the reason of fp when it is in the table.
func (t *Table) Lookup(fp string) (string, bool) {
	e, ok := t.lookup([]byte(fp))
	return e.Reason, ok
}

func (t *Table) lookup(fp []byte) (Entry, bool) {
	if len(fp) == 0 {
		return Entry{}, false
	}
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Fingerprint >= string(fp)
	})
	if i < len(t.entries) && t.entries[i].Fingerprint == string(fp) {
		return t.entries[i], true
	}
	return Entry{}, false
}

// Len returns the number of fingerprints in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the table in sorted order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// DefaultTable returns the embedded fingerprint table. It panics if the
// embedded table does not parse, a detector must not run half-armed.
func DefaultTable() *Table {
	defaultTableOnce.Do(func() {
		t, err := ParseTable(strings.NewReader(defaultFingerprints))
		if err != nil {
			panic(fmt.Sprintf("libinjection: embedded fingerprint table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Registry maps pattern set names to tables. It is built once and only
// read afterwards; "default" always names the embedded table.
type Registry struct {
	sets map[string]*Table
}

// NewRegistry loads every named table file. Names are case-insensitive.
func NewRegistry(files map[string]string) (*Registry, error) {
	r := &Registry{sets: map[string]*Table{DefaultSet: DefaultTable()}}
	for name, path := range files {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return nil, fmt.Errorf("pattern set name is required for %s", path)
		}
		if key == DefaultSet {
			return nil, fmt.Errorf("pattern set %q is reserved", DefaultSet)
		}
		t, err := LoadTableFile(path)
		if err != nil {
			return nil, fmt.Errorf("pattern set %s: %w", key, err)
		}
		r.sets[key] = t
	}
	return r, nil
}

// Get returns the table registered as name; "" means the default set.
func (r *Registry) Get(name string) (*Table, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultSet
	}
	t, ok := r.sets[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSet, name)
	}
	return t, nil
}

// Names returns the registered set names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
