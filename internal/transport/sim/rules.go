package sim

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/suderio/scenario-engine/internal/reporter"
)

// Rule makes the chain reject or fail matching calls. Empty match fields match
// everything.
type Rule struct {
	Method   string `yaml:"method"`
	Contract string `yaml:"contract"`
	From     string `yaml:"from"`

	// Error and Info are taxonomy names of Contract, or plain numbers.
	Error  string `yaml:"error"`
	Info   string `yaml:"info"`
	Detail uint64 `yaml:"detail"`
	Reason string `yaml:"reason"`

	// Fail, when set, turns the call into a transport failure with this message.
	Fail string `yaml:"fail"`
	// Times limits how often the rule fires. Zero means always.
	Times int `yaml:"times"`
}

// RuleSet is the document layout of a rules file.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a rules file.
func LoadRules(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules %s: %w", path, err)
	}
	defer f.Close()

	var rs RuleSet
	if err := yaml.NewDecoder(f).Decode(&rs); err != nil {
		return nil, fmt.Errorf("failed to decode rules %s: %w", path, err)
	}
	return rs.Rules, nil
}

type compiledRule struct {
	Rule
	code  reporter.RejectionCode
	fired int
}

func compileRule(r Rule, ts reporter.Taxonomies) (*compiledRule, error) {
	cr := &compiledRule{Rule: r, code: reporter.RejectionCode{Detail: r.Detail, Reason: r.Reason}}
	if r.Fail != "" {
		return cr, nil
	}
	tax := ts[r.Contract]

	var err error
	if cr.code.Error, err = resolveCode(r.Error, tax, (*reporter.Taxonomy).ErrorCode); err != nil {
		return nil, fmt.Errorf("rule %s: error: %w", r.Method, err)
	}
	if cr.code.Info, err = resolveCode(r.Info, tax, (*reporter.Taxonomy).InfoCode); err != nil {
		return nil, fmt.Errorf("rule %s: info: %w", r.Method, err)
	}
	return cr, nil
}

func resolveCode(name string, tax *reporter.Taxonomy, lookup func(*reporter.Taxonomy, string) (uint64, bool)) (uint64, error) {
	if name == "" {
		return 0, nil
	}
	if n, err := strconv.ParseUint(name, 10, 64); err == nil {
		return n, nil
	}
	if tax == nil {
		return 0, fmt.Errorf("%s needs a contract with a known taxonomy", name)
	}
	code, ok := lookup(tax, name)
	if !ok {
		return 0, fmt.Errorf("%s is not in the %s taxonomy", name, tax.Subject)
	}
	return code, nil
}

func (r *compiledRule) matches(method, contract, from string) bool {
	if r.Times > 0 && r.fired >= r.Times {
		return false
	}
	return (r.Method == "" || r.Method == method) &&
		(r.Contract == "" || r.Contract == contract) &&
		(r.From == "" || r.From == from)
}
