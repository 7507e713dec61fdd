package wsrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/suderio/scenario-engine/internal/invoke"
	"github.com/suderio/scenario-engine/internal/reporter"
)

// ErrClosed is returned by calls on a closed client.
var ErrClosed = errors.New("wsrpc: client closed")

// Client implements invoke.Transport. Calls are serialised: one request is in
// flight at a time.
type Client struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	nextID uint64
}

// Dial connects to a node.
func Dial(ctx context.Context, url string, header http.Header) (*Client, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Send implements invoke.Transport.
func (c *Client) Send(ctx context.Context, call invoke.Call, from string) (invoke.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return invoke.Outcome{}, ErrClosed
	}

	params, err := json.Marshal([]callParams{{Call: call, From: from}})
	if err != nil {
		return invoke.Outcome{}, fmt.Errorf("encode params: %w", err)
	}
	c.nextID++
	req := request{JSONRPC: "2.0", ID: c.nextID, Method: MethodCall, Params: params}
	if call.Deploy {
		req.Method = MethodDeploy
	}

	conn := c.conn
	dl, _ := ctx.Deadline()
	_ = conn.SetWriteDeadline(dl)
	_ = conn.SetReadDeadline(time.Time{})
	// Unblock the read when ctx ends before the node answers.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := conn.WriteJSON(req); err != nil {
		return invoke.Outcome{}, c.ioError(ctx, "send", err)
	}

	for {
		var resp response
		if err := conn.ReadJSON(&resp); err != nil {
			return invoke.Outcome{}, c.ioError(ctx, "receive", err)
		}
		if resp.ID != req.ID {
			continue
		}
		return decodeResponse(resp)
	}
}

// ioError prefers the context error so deadlines surface as such. The
// connection is unusable after a failed read or write and is closed.
func (c *Client) ioError(ctx context.Context, op string, err error) error {
	_ = c.conn.Close()
	c.conn = nil
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func decodeResponse(resp response) (invoke.Outcome, error) {
	if resp.Error != nil {
		if resp.Error.Code != CodeRejected {
			return invoke.Outcome{}, resp.Error
		}
		code := reporter.RejectionCode{Reason: resp.Error.Message}
		if resp.Error.Data != nil {
			code = *resp.Error.Data
		}
		return invoke.Outcome{Rejection: &code}, nil
	}
	if resp.Result == nil {
		return invoke.Outcome{}, errors.New("response has neither result nor error")
	}
	return *resp.Result, nil
}
