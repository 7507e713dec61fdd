// Package sim is an in-memory stand-in for the external system. It deploys
// contracts at deterministic addresses and rejects calls according to rules.
package sim

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/suderio/scenario-engine/internal/invoke"
	"github.com/suderio/scenario-engine/internal/reporter"
)

// ErrUnknownContract is a transport failure for calls to an address nothing
// was deployed at.
var ErrUnknownContract = errors.New("no contract at address")

// Config configures a Chain.
type Config struct {
	Rules      []Rule
	Taxonomies reporter.Taxonomies
	// Latency delays every call. A context deadline shorter than this turns
	// the call into a transport failure.
	Latency time.Duration
}

// Record is one call seen by the chain.
type Record struct {
	Call    invoke.Call
	From    string
	Outcome invoke.Outcome
}

// Chain implements invoke.Transport.
type Chain struct {
	mu        sync.Mutex
	rules     []*compiledRule
	latency   time.Duration
	contracts map[string]string
	nonce     uint64
	history   []Record
}

// New creates a chain. Rule names are resolved against cfg.Taxonomies, or the
// built-in taxonomies when nil.
func New(cfg Config) (*Chain, error) {
	ts := cfg.Taxonomies
	if ts == nil {
		ts = reporter.Defaults()
	}
	c := &Chain{latency: cfg.Latency, contracts: make(map[string]string)}
	for _, r := range cfg.Rules {
		cr, err := compileRule(r, ts)
		if err != nil {
			return nil, err
		}
		c.rules = append(c.rules, cr)
	}
	return c, nil
}

// Send implements invoke.Transport.
func (c *Chain) Send(ctx context.Context, call invoke.Call, from string) (invoke.Outcome, error) {
	if c.latency > 0 {
		t := time.NewTimer(c.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return invoke.Outcome{}, ctx.Err()
		case <-t.C:
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	contract := call.Contract
	if !call.Deploy {
		kind, ok := c.contracts[strings.ToLower(call.Target)]
		if !ok {
			return invoke.Outcome{}, fmt.Errorf("%w %s", ErrUnknownContract, call.Target)
		}
		contract = kind
	}

	for _, r := range c.rules {
		if !r.matches(call.Method, contract, from) {
			continue
		}
		r.fired++
		if r.Fail != "" {
			return invoke.Outcome{}, errors.New(r.Fail)
		}
		code := r.code
		return c.record(call, from, invoke.Outcome{Rejection: &code}), nil
	}

	if call.Deploy {
		addr := c.nextAddress(from, call.Contract)
		c.contracts[addr] = call.Contract
		return c.record(call, from, invoke.Outcome{Success: true, Address: addr}), nil
	}
	return c.record(call, from, invoke.Outcome{Success: true, Return: "0"}), nil
}

func (c *Chain) nextAddress(from, kind string) string {
	c.nonce++
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s/%s/%d", strings.ToLower(from), kind, c.nonce)))
	return "0x" + hex.EncodeToString(sum[:20])
}

func (c *Chain) record(call invoke.Call, from string, out invoke.Outcome) invoke.Outcome {
	c.history = append(c.history, Record{Call: call, From: from, Outcome: out})
	return out
}

// History returns the completed calls in order.
func (c *Chain) History() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Record(nil), c.history...)
}

// ContractKind returns the kind deployed at addr.
func (c *Chain) ContractKind(addr string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kind, ok := c.contracts[strings.ToLower(addr)]
	return kind, ok
}
