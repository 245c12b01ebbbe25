package reserves

import (
	"errors"
	"math/big"
	"testing"

	"github.com/meridex/settle/types"
)

type stubSource struct {
	balances map[types.Asset]*big.Int
}

func (s *stubSource) BalanceOf(asset types.Asset) *big.Int {
	if v, ok := s.balances[asset]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

func (s *stubSource) deposit(asset types.Asset, amount int64) {
	if s.balances == nil {
		s.balances = make(map[types.Asset]*big.Int)
	}
	current, ok := s.balances[asset]
	if !ok {
		current = new(big.Int)
		s.balances[asset] = current
	}
	current.Add(current, big.NewInt(amount))
}

func TestSettleWithoutSync(t *testing.T) {
	tr := NewTracker(&stubSource{})

	_, err := tr.Settle("usdc")
	if !errors.Is(err, ErrNotSynced) {
		t.Fatalf("Settle() error = %v, want ErrNotSynced", err)
	}
}

func TestSyncThenDepositThenSettle(t *testing.T) {
	src := &stubSource{}
	src.deposit("usdc", 1000)
	tr := NewTracker(src)

	tr.Sync("usdc")
	src.deposit("usdc", 250)

	received, err := tr.Settle("usdc")
	if err != nil {
		t.Fatalf("Settle() error = %v", err)
	}
	if received.Int64() != 250 {
		t.Errorf("Settle() = %s, want 250", received)
	}

	// The baseline is consumed: settling again requires a fresh sync.
	if _, err := tr.Settle("usdc"); !errors.Is(err, ErrNotSynced) {
		t.Errorf("second Settle() error = %v, want ErrNotSynced", err)
	}
}

func TestSyncedZeroIsDistinctFromUnsynced(t *testing.T) {
	tr := NewTracker(&stubSource{})

	if _, ok := tr.ReserveOf("usdc"); ok {
		t.Fatal("unsynced asset reported a baseline")
	}

	tr.Sync("usdc")
	baseline, ok := tr.ReserveOf("usdc")
	if !ok {
		t.Fatal("synced asset reported no baseline")
	}
	if baseline.Sign() != 0 {
		t.Errorf("baseline = %s, want 0", baseline)
	}

	// Zero deposit settles cleanly.
	received, err := tr.Settle("usdc")
	if err != nil {
		t.Fatalf("Settle() error = %v", err)
	}
	if received.Sign() != 0 {
		t.Errorf("Settle() = %s, want 0", received)
	}
}

func TestRepeatedSyncOverwrites(t *testing.T) {
	src := &stubSource{}
	tr := NewTracker(src)

	tr.Sync("usdc")
	src.deposit("usdc", 100)
	tr.Sync("usdc")
	src.deposit("usdc", 40)

	received, err := tr.Settle("usdc")
	if err != nil {
		t.Fatal(err)
	}
	if received.Int64() != 40 {
		t.Errorf("Settle() = %s, want 40 from the latest baseline", received)
	}
}

func TestNativeAssetExempt(t *testing.T) {
	tr := NewTracker(&stubSource{})

	tr.Sync(types.Native)
	if _, ok := tr.ReserveOf(types.Native); ok {
		t.Error("native asset should never carry a baseline")
	}
	if _, err := tr.Settle(types.Native); !errors.Is(err, ErrNotSynced) {
		t.Errorf("Settle(native) error = %v, want ErrNotSynced", err)
	}
}

func TestCloneSharesSourceNotBaselines(t *testing.T) {
	src := &stubSource{}
	tr := NewTracker(src)
	tr.Sync("usdc")

	clone := tr.Clone()
	if _, err := tr.Settle("usdc"); err != nil {
		t.Fatal(err)
	}

	if _, ok := clone.ReserveOf("usdc"); !ok {
		t.Error("clone lost its baseline when the original settled")
	}
}
