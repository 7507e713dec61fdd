package invoke

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/scenario-engine/internal/reporter"
	"github.com/suderio/scenario-engine/internal/value"
	"github.com/suderio/scenario-engine/internal/world"
)

const admin = "0x1111111111111111111111111111111111111111"

func testWorld() world.World {
	return world.New(world.Config{Accounts: map[string]string{"Admin": admin}})
}

func vaiReporter(t *testing.T) reporter.Reporter {
	t.Helper()
	rep, err := reporter.Defaults().Reporter("VAIController")
	require.NoError(t, err)
	return rep
}

func TestInvokeSuccess(t *testing.T) {
	var got Call
	var gotFrom string
	tr := TransportFunc(func(ctx context.Context, call Call, from string) (Outcome, error) {
		got, gotFrom = call, from
		return Outcome{Success: true, Return: "1000"}, nil
	})

	var buf bytes.Buffer
	exec := NewExecutor(tr, Options{Logger: log.New(&buf, "", 0), Verbose: true})
	call := Call{Target: "0xabc", Method: "mintVAI", Args: []string{"1000"}}
	inv, err := exec.Invoke(context.Background(), testWorld(), call, admin, vaiReporter(t))
	require.NoError(t, err)

	assert.True(t, inv.Success)
	assert.Equal(t, "1000", inv.Return.Show())
	assert.Equal(t, call, got)
	assert.Equal(t, admin, gotFrom)
	assert.Contains(t, buf.String(), "mintVAI(1000) from Admin")
}

func TestInvokeDeployReturnsAddress(t *testing.T) {
	tr := TransportFunc(func(ctx context.Context, call Call, from string) (Outcome, error) {
		return Outcome{Success: true, Address: "0xABCDEFabcdef0000000000000000000000000001"}, nil
	})
	inv, err := NewExecutor(tr, Options{}).Invoke(context.Background(), testWorld(), Call{Deploy: true, Contract: "VToken", Method: "constructor"}, admin, nil)
	require.NoError(t, err)
	require.NotNil(t, inv.Return)
	assert.Equal(t, value.KindAddress, inv.Return.Kind())
	assert.Equal(t, "0xabcdefabcdef0000000000000000000000000001", inv.Return.Show())
}

func TestInvokeRejectionIsDecoded(t *testing.T) {
	tr := TransportFunc(func(ctx context.Context, call Call, from string) (Outcome, error) {
		return Outcome{Rejection: &reporter.RejectionCode{Error: 1, Info: 0}}, nil
	})
	inv, err := NewExecutor(tr, Options{}).Invoke(context.Background(), testWorld(), Call{Method: "_setPendingAdmin"}, admin, vaiReporter(t))
	require.NoError(t, err)

	assert.False(t, inv.Success)
	require.NotNil(t, inv.Error)
	assert.Equal(t, "UNAUTHORIZED", inv.Error.Error)
	assert.Equal(t, "SET_PENDING_ADMIN_OWNER_CHECK", inv.Error.Info)
	assert.Nil(t, inv.TransportErr)
}

func TestInvokeRejectionWithoutReporter(t *testing.T) {
	tr := TransportFunc(func(ctx context.Context, call Call, from string) (Outcome, error) {
		return Outcome{Rejection: &reporter.RejectionCode{Error: 3, Info: 4}}, nil
	})
	inv, err := NewExecutor(tr, Options{}).Invoke(context.Background(), testWorld(), Call{Method: "x"}, admin, nil)
	require.NoError(t, err)
	require.NotNil(t, inv.Error)
	assert.Equal(t, "UNKNOWN(3)", inv.Error.Error)
}

func TestInvokeTransportFailure(t *testing.T) {
	boom := errors.New("connection refused")
	tr := TransportFunc(func(ctx context.Context, call Call, from string) (Outcome, error) {
		return Outcome{}, boom
	})
	inv, err := NewExecutor(tr, Options{}).Invoke(context.Background(), testWorld(), Call{Method: "mintVAI"}, admin, nil)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, boom)
	assert.False(t, inv.Success)
	assert.Nil(t, inv.Error)
}

func TestInvokeDeadlineIsTransportFailure(t *testing.T) {
	tr := TransportFunc(func(ctx context.Context, call Call, from string) (Outcome, error) {
		<-ctx.Done()
		return Outcome{}, ctx.Err()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewExecutor(tr, Options{}).Invoke(ctx, testWorld(), Call{Method: "slow"}, admin, nil)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInvokeCancelledBeforeSend(t *testing.T) {
	called := false
	tr := TransportFunc(func(ctx context.Context, call Call, from string) (Outcome, error) {
		called = true
		return Outcome{Success: true}, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor(tr, Options{}).Invoke(ctx, testWorld(), Call{Method: "x"}, admin, nil)
	assert.True(t, IsTransportError(err))
	assert.False(t, called)
}

func TestCallString(t *testing.T) {
	assert.Equal(t, "mintVAI(1, 2)", Call{Method: "mintVAI", Args: []string{"1", "2"}}.String())
	assert.Equal(t, "deploy VToken()", Call{Deploy: true, Contract: "VToken"}.String())
}
