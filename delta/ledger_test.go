package delta

import (
	"errors"
	"math/big"
	"testing"

	"github.com/meridex/settle/id"
	"github.com/meridex/settle/types"
)

func TestApplyNetZeroSequence(t *testing.T) {
	l := NewLedger()
	var nonzero Counter
	caller := id.NewAccountID()
	asset := types.Asset("usdc")

	steps := []int64{-100, 60, 40}
	for _, amount := range steps {
		if _, err := l.Apply(caller, asset, big.NewInt(amount), &nonzero); err != nil {
			t.Fatalf("Apply(%d) error = %v", amount, err)
		}
	}

	if got := nonzero.Count(); got != 0 {
		t.Errorf("nonzero count = %d, want 0 after net-zero sequence", got)
	}
	if got := l.Len(); got != 0 {
		t.Errorf("Len() = %d, zeroed entry should be removed", got)
	}
	if got := l.Get(caller, asset); got.Sign() != 0 {
		t.Errorf("Get() = %s, want 0", got)
	}
}

func TestApplyCounterTransitions(t *testing.T) {
	l := NewLedger()
	var nonzero Counter
	caller := id.NewAccountID()
	asset := types.Asset("weth")

	// zero -> nonzero
	if _, err := l.Apply(caller, asset, big.NewInt(10), &nonzero); err != nil {
		t.Fatal(err)
	}
	if nonzero.Count() != 1 {
		t.Fatalf("count = %d after first write, want 1", nonzero.Count())
	}

	// nonzero -> nonzero does not change the counter
	if _, err := l.Apply(caller, asset, big.NewInt(5), &nonzero); err != nil {
		t.Fatal(err)
	}
	if nonzero.Count() != 1 {
		t.Fatalf("count = %d after second write, want 1", nonzero.Count())
	}

	// nonzero -> zero
	if _, err := l.Apply(caller, asset, big.NewInt(-15), &nonzero); err != nil {
		t.Fatal(err)
	}
	if nonzero.Count() != 0 {
		t.Fatalf("count = %d after zeroing, want 0", nonzero.Count())
	}
}

func TestApplyZeroAmountCreatesNothing(t *testing.T) {
	l := NewLedger()
	var nonzero Counter
	caller := id.NewAccountID()

	got, err := l.Apply(caller, "usdc", big.NewInt(0), &nonzero)
	if err != nil {
		t.Fatal(err)
	}
	if got.Sign() != 0 {
		t.Errorf("Apply(0) = %s, want 0", got)
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d, zero apply should create no entry", l.Len())
	}
	if nonzero.Count() != 0 {
		t.Errorf("count = %d, want 0", nonzero.Count())
	}
}

func TestApplyOverflow(t *testing.T) {
	l := NewLedger()
	var nonzero Counter
	caller := id.NewAccountID()
	asset := types.Asset("usdc")

	if _, err := l.Apply(caller, asset, types.MaxAmount, &nonzero); err != nil {
		t.Fatal(err)
	}

	_, err := l.Apply(caller, asset, big.NewInt(1), &nonzero)
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("Apply() error = %v, want ErrOverflow", err)
	}

	// A failed apply must leave the entry and counter untouched.
	if got := l.Get(caller, asset); got.Cmp(types.MaxAmount) != 0 {
		t.Errorf("entry after failed apply = %s, want MaxAmount", got)
	}
	if nonzero.Count() != 1 {
		t.Errorf("count = %d after failed apply, want 1", nonzero.Count())
	}
}

func TestEntriesAreIndependentPerCallerAndAsset(t *testing.T) {
	l := NewLedger()
	var nonzero Counter
	alice := id.NewAccountID()
	bob := id.NewAccountID()

	mustApply := func(caller id.AccountID, asset types.Asset, v int64) {
		t.Helper()
		if _, err := l.Apply(caller, asset, big.NewInt(v), &nonzero); err != nil {
			t.Fatal(err)
		}
	}

	mustApply(alice, "usdc", 100)
	mustApply(alice, "weth", -3)
	mustApply(bob, "usdc", -100)

	if nonzero.Count() != 3 {
		t.Fatalf("count = %d, want 3", nonzero.Count())
	}
	if got := l.Get(alice, "usdc"); got.Int64() != 100 {
		t.Errorf("alice usdc = %s, want 100", got)
	}
	if got := l.Get(bob, "usdc"); got.Int64() != -100 {
		t.Errorf("bob usdc = %s, want -100", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	l := NewLedger()
	var nonzero Counter
	caller := id.NewAccountID()

	if _, err := l.Apply(caller, "usdc", big.NewInt(50), &nonzero); err != nil {
		t.Fatal(err)
	}

	clone := l.Clone()
	if _, err := l.Apply(caller, "usdc", big.NewInt(25), &nonzero); err != nil {
		t.Fatal(err)
	}

	if got := clone.Get(caller, "usdc"); got.Int64() != 50 {
		t.Errorf("clone entry = %s, want 50 despite later writes to the original", got)
	}
}
