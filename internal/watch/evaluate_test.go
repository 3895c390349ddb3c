package watch

import (
	"math/big"
	"testing"
)

func TestEvaluateProfitable(t *testing.T) {
	primary := PairState{ReserveToken: big.NewInt(1_000_000), ReserveBase: big.NewInt(10_000)}
	secondary := PairState{ReserveToken: big.NewInt(100_000), ReserveBase: big.NewInt(10_000)}

	eval, err := Evaluate(big.NewInt(1000), primary, secondary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if eval.Received.Cmp(big.NewInt(98)) != 0 {
		t.Fatalf("received mismatch: %s", eval.Received)
	}
	if eval.Required.Cmp(big.NewInt(11)) != 0 {
		t.Fatalf("required mismatch: %s", eval.Required)
	}
	if eval.Surplus.Cmp(big.NewInt(87)) != 0 || !eval.Profitable() {
		t.Fatalf("surplus mismatch: %s", eval.Surplus)
	}
}

func TestEvaluateUnprofitable(t *testing.T) {
	// Identical venues: the fee on both legs guarantees a loss.
	state := PairState{ReserveToken: big.NewInt(100_000), ReserveBase: big.NewInt(10_000)}

	eval, err := Evaluate(big.NewInt(1000), state, state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.Profitable() {
		t.Fatalf("expected unprofitable evaluation, surplus %s", eval.Surplus)
	}
}

func TestEvaluateRejectsBadProbe(t *testing.T) {
	state := PairState{ReserveToken: big.NewInt(100_000), ReserveBase: big.NewInt(10_000)}

	if _, err := Evaluate(nil, state, state); err == nil {
		t.Fatalf("expected error for nil probe")
	}
	if _, err := Evaluate(big.NewInt(0), state, state); err == nil {
		t.Fatalf("expected error for zero probe")
	}
}
