package world

import (
	"encoding/json"
	"errors"

	"github.com/suderio/scenario-engine/internal/reporter"
	"github.com/suderio/scenario-engine/internal/value"
)

// Invocation is the normalised outcome of one external call.
type Invocation struct {
	Success bool
	Return  value.Value
	// Error is set when the external system rejected the call.
	Error *reporter.DomainError
	// TransportErr is set when the call never completed.
	TransportErr error
}

// Failed reports whether the invocation did not succeed.
func (i Invocation) Failed() bool { return !i.Success }

type invocationJSON struct {
	Success      bool                  `json:"success"`
	Return       json.RawMessage       `json:"return,omitempty"`
	Error        *reporter.DomainError `json:"error,omitempty"`
	TransportErr string                `json:"transport_error,omitempty"`
}

// MarshalJSON encodes the invocation with its return value kind-tagged.
func (i Invocation) MarshalJSON() ([]byte, error) {
	out := invocationJSON{Success: i.Success, Error: i.Error}
	if i.Return != nil {
		raw, err := value.MarshalValue(i.Return)
		if err != nil {
			return nil, err
		}
		out.Return = raw
	}
	if i.TransportErr != nil {
		out.TransportErr = i.TransportErr.Error()
	}
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON.
func (i *Invocation) UnmarshalJSON(data []byte) error {
	var in invocationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*i = Invocation{Success: in.Success, Error: in.Error}
	if len(in.Return) > 0 {
		v, err := value.UnmarshalValue(in.Return)
		if err != nil {
			return err
		}
		i.Return = v
	}
	if in.TransportErr != "" {
		i.TransportErr = errors.New(in.TransportErr)
	}
	return nil
}
