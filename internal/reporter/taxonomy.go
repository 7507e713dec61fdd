package reporter

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomies.yaml
var defaultTaxonomies []byte

// Taxonomy names the numeric codes of one subject. The position in each list is
// the code.
type Taxonomy struct {
	Subject string   `yaml:"-"`
	Errors  []string `yaml:"errors"`
	Info    []string `yaml:"info"`
}

func name(list []string, code uint64) string {
	if code < uint64(len(list)) {
		return list[code]
	}
	return fmt.Sprintf("UNKNOWN(%d)", code)
}

// Decode maps code to a domain error. A revert carrying only a reason decodes to
// the REVERT error.
func (t *Taxonomy) Decode(code RejectionCode) DomainError {
	if code.Reason != "" && code.Error == 0 && code.Info == 0 && code.Detail == 0 {
		return DomainError{Subject: t.Subject, Error: "REVERT", Reason: code.Reason}
	}
	return DomainError{
		Subject: t.Subject,
		Error:   name(t.Errors, code.Error),
		Info:    name(t.Info, code.Info),
		Detail:  code.Detail,
		Reason:  code.Reason,
	}
}

// ErrorCode returns the numeric code of an error name.
func (t *Taxonomy) ErrorCode(errName string) (uint64, bool) {
	for i, n := range t.Errors {
		if n == errName {
			return uint64(i), true
		}
	}
	return 0, false
}

// InfoCode returns the numeric code of an info name.
func (t *Taxonomy) InfoCode(infoName string) (uint64, bool) {
	for i, n := range t.Info {
		if n == infoName {
			return uint64(i), true
		}
	}
	return 0, false
}

// Taxonomies is a set of taxonomies keyed by subject.
type Taxonomies map[string]*Taxonomy

// Reporter returns a Reporter for subject.
func (ts Taxonomies) Reporter(subject string) (Reporter, error) {
	t, ok := ts[subject]
	if !ok {
		return nil, fmt.Errorf("no error taxonomy for %s", subject)
	}
	return Func{Name: subject, Fn: t.Decode}, nil
}

// Subjects returns the known subjects sorted.
func (ts Taxonomies) Subjects() []string {
	out := make([]string, 0, len(ts))
	for s := range ts {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Merge returns a set holding ts overlaid by other.
func (ts Taxonomies) Merge(other Taxonomies) Taxonomies {
	out := make(Taxonomies, len(ts)+len(other))
	for k, v := range ts {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// ParseTaxonomies decodes a YAML document mapping subjects to taxonomies.
func ParseTaxonomies(r io.Reader) (Taxonomies, error) {
	var ts Taxonomies
	if err := yaml.NewDecoder(r).Decode(&ts); err != nil {
		return nil, fmt.Errorf("failed to decode taxonomies: %w", err)
	}
	for subject, t := range ts {
		if t == nil {
			t = &Taxonomy{}
			ts[subject] = t
		}
		t.Subject = subject
	}
	return ts, nil
}

// LoadTaxonomies reads a taxonomy file.
func LoadTaxonomies(path string) (Taxonomies, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open taxonomies %s: %w", path, err)
	}
	defer f.Close()

	ts, err := ParseTaxonomies(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}

// Defaults returns the built-in taxonomies.
func Defaults() Taxonomies {
	ts, err := ParseTaxonomies(bytes.NewReader(defaultTaxonomies))
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomies: %v", err))
	}
	return ts
}
