package audithook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/meridex/settle/hooks"
	"github.com/meridex/settle/id"
	"github.com/meridex/settle/pool"
	"github.com/meridex/settle/types"
)

func testContext() hooks.PoolContext {
	key := pool.Key{Asset0: "tokena", Asset1: "tokenb", Fee: pool.Fee030}
	return hooks.PoolContext{Caller: id.NewAccountID(), Key: key, ID: key.ID()}
}

func TestPermissionsMatchImplementation(t *testing.T) {
	e := New(RecorderFunc(func(context.Context, *AuditEvent) error { return nil }))

	if got := hooks.DeriveCapabilities(e); got != e.Permissions() {
		t.Errorf("derived capabilities %s do not match declared %s", got, e.Permissions())
	}
}

func TestEventsCarryPoolMetadata(t *testing.T) {
	var events []*AuditEvent
	e := New(RecorderFunc(func(_ context.Context, evt *AuditEvent) error {
		events = append(events, evt)
		return nil
	}))

	pc := testContext()
	if err := e.AfterSwap(context.Background(), pc, pool.SwapParams{
		ZeroForOne:      true,
		AmountSpecified: big.NewInt(100),
	}, types.NewBalanceDelta(big.NewInt(-100), big.NewInt(90))); err != nil {
		t.Fatalf("AfterSwap() error = %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(events))
	}
	evt := events[0]
	if evt.Action != ActionSwap {
		t.Errorf("Action = %q, want %q", evt.Action, ActionSwap)
	}
	if evt.ResourceID != pc.ID.String() {
		t.Errorf("ResourceID = %q, want the pool ID", evt.ResourceID)
	}
	if evt.Metadata["caller"] != pc.Caller.String() {
		t.Errorf("metadata caller = %v, want %s", evt.Metadata["caller"], pc.Caller)
	}
	if evt.Metadata["amount0"] != "-100" || evt.Metadata["amount1"] != "90" {
		t.Errorf("metadata amounts = %v, %v, want -100, 90", evt.Metadata["amount0"], evt.Metadata["amount1"])
	}
}

func TestDisabledActionsAreSkipped(t *testing.T) {
	var count int
	e := New(RecorderFunc(func(context.Context, *AuditEvent) error {
		count++
		return nil
	}), WithEnabledActions(ActionSwap))

	pc := testContext()
	if err := e.AfterDonate(context.Background(), pc, big.NewInt(1), big.NewInt(2)); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("disabled action recorded %d events, want 0", count)
	}

	if err := e.AfterSwap(context.Background(), pc, pool.SwapParams{
		AmountSpecified: big.NewInt(1),
	}, types.ZeroBalanceDelta()); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("enabled action recorded %d events, want 1", count)
	}
}

func TestRecorderFailureDoesNotSurface(t *testing.T) {
	e := New(
		RecorderFunc(func(context.Context, *AuditEvent) error { return errors.New("backend down") }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	if err := e.AfterInitialize(context.Background(), testContext(), big.NewInt(1)); err != nil {
		t.Errorf("AfterInitialize() error = %v, recorder failures must not surface", err)
	}
}
