// Package wsrpc carries invoke calls as JSON-RPC 2.0 over a WebSocket.
package wsrpc

import (
	"encoding/json"
	"fmt"

	"github.com/suderio/scenario-engine/internal/invoke"
	"github.com/suderio/scenario-engine/internal/reporter"
)

// Method names.
const (
	MethodCall   = "scenario_call"
	MethodDeploy = "scenario_deploy"
)

// Error codes. CodeRejected means the call executed and was reverted; its data
// is a reporter.RejectionCode.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInternal       = -32603
	CodeRejected       = 3
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  *invoke.Outcome `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// callParams is the single positional parameter of both methods.
type callParams struct {
	Call invoke.Call `json:"call"`
	From string      `json:"from"`
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int                     `json:"code"`
	Message string                  `json:"message"`
	Data    *reporter.RejectionCode `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
