// Package reporter decodes rejection codes reported by the external system into
// domain errors. Each subject brings its own taxonomy.
package reporter

import (
	"fmt"
	"strings"
)

// RejectionCode is the raw failure reported by a contract: the numeric
// error/info/detail triple of a Failure event, or a revert reason.
type RejectionCode struct {
	Error  uint64 `json:"error" yaml:"error"`
	Info   uint64 `json:"info" yaml:"info"`
	Detail uint64 `json:"detail" yaml:"detail"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// DomainError is a decoded, expected rejection. It is recorded on the action
// rather than raised.
type DomainError struct {
	Subject string `json:"subject"`
	Error   string `json:"error"`
	Info    string `json:"info,omitempty"`
	Detail  uint64 `json:"detail,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// String renders the error for logs and action descriptions.
func (e *DomainError) String() string {
	var sb strings.Builder
	if e.Subject != "" {
		sb.WriteString(e.Subject)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Error)
	if e.Info != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Info)
	}
	if e.Detail != 0 {
		fmt.Fprintf(&sb, " (detail %d)", e.Detail)
	}
	if e.Reason != "" {
		fmt.Fprintf(&sb, " %q", e.Reason)
	}
	return sb.String()
}

// Reporter maps a rejection code to a domain error.
type Reporter interface {
	Subject() string
	Decode(code RejectionCode) DomainError
}

// Func adapts a function into a Reporter for a subject.
type Func struct {
	Name string
	Fn   func(code RejectionCode) DomainError
}

// Subject returns f.Name.
func (f Func) Subject() string { return f.Name }

// Decode calls f.Fn.
func (f Func) Decode(code RejectionCode) DomainError { return f.Fn(code) }
