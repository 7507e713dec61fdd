package wsrpc

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/scenario-engine/internal/invoke"
	"github.com/suderio/scenario-engine/internal/reporter"
)

const geoff = "0x1111111111111111111111111111111111111111"

func startNode(t *testing.T, tr invoke.Transport) *Client {
	t.Helper()
	srv := httptest.NewServer(Handler(tr, nil))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, err := Dial(context.Background(), url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRoundTripSuccess(t *testing.T) {
	var seen invoke.Call
	var seenFrom string
	c := startNode(t, invoke.TransportFunc(func(ctx context.Context, call invoke.Call, from string) (invoke.Outcome, error) {
		seen, seenFrom = call, from
		if call.Deploy {
			return invoke.Outcome{Success: true, Address: "0x00000000000000000000000000000000000000aa"}, nil
		}
		return invoke.Outcome{Success: true, Return: "7"}, nil
	}))

	out, err := c.Send(context.Background(), invoke.Call{Target: "0xabc", Method: "mintVAI", Args: []string{"10"}}, geoff)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "7", out.Return)
	assert.Equal(t, "mintVAI", seen.Method)
	assert.Equal(t, []string{"10"}, seen.Args)
	assert.Equal(t, geoff, seenFrom)

	out, err = c.Send(context.Background(), invoke.Call{Deploy: true, Contract: "VToken", Method: "Standard"}, geoff)
	require.NoError(t, err)
	assert.Equal(t, "0x00000000000000000000000000000000000000aa", out.Address)
	assert.True(t, seen.Deploy)
}

func TestRejectionComesBackAsOutcome(t *testing.T) {
	c := startNode(t, invoke.TransportFunc(func(ctx context.Context, call invoke.Call, from string) (invoke.Outcome, error) {
		return invoke.Outcome{Rejection: &reporter.RejectionCode{Error: 1, Info: 3, Detail: 2}}, nil
	}))

	out, err := c.Send(context.Background(), invoke.Call{Target: "0xabc", Method: "_acceptAdmin"}, geoff)
	require.NoError(t, err)
	require.NotNil(t, out.Rejection)
	assert.Equal(t, reporter.RejectionCode{Error: 1, Info: 3, Detail: 2}, *out.Rejection)
}

func TestNodeFailureIsError(t *testing.T) {
	c := startNode(t, invoke.TransportFunc(func(ctx context.Context, call invoke.Call, from string) (invoke.Outcome, error) {
		return invoke.Outcome{}, errors.New("out of gas")
	}))

	_, err := c.Send(context.Background(), invoke.Call{Target: "0xabc", Method: "mintVAI"}, geoff)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, CodeInternal, rpcErr.Code)
	assert.Contains(t, rpcErr.Message, "out of gas")
}

func TestDeadlineWhileWaiting(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c := startNode(t, invoke.TransportFunc(func(ctx context.Context, call invoke.Call, from string) (invoke.Outcome, error) {
		<-release
		return invoke.Outcome{Success: true}, nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Send(ctx, invoke.Call{Target: "0xabc", Method: "slow"}, geoff)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = c.Send(context.Background(), invoke.Call{Target: "0xabc", Method: "again"}, geoff)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDecodeResponseRevertWithoutData(t *testing.T) {
	out, err := decodeResponse(response{Error: &RPCError{Code: CodeRejected, Message: "only admin"}})
	require.NoError(t, err)
	require.NotNil(t, out.Rejection)
	assert.Equal(t, "only admin", out.Rejection.Reason)

	_, err = decodeResponse(response{})
	assert.Error(t, err)
}
