package arb

import (
	"errors"
	"math/big"
	"testing"
)

func TestSlippageFloorRoundTrip(t *testing.T) {
	floor := big.NewInt(4_000_000)

	payload, err := EncodeSlippageFloor(floor)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if len(payload) != 32 {
		t.Fatalf("payload length %d, want 32", len(payload))
	}

	decoded, err := DecodeSlippageFloor(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Cmp(floor) != 0 {
		t.Fatalf("round-trip mismatch: %s != %s", decoded, floor)
	}
}

func TestDecodeSlippageFloorRejectsBadLength(t *testing.T) {
	for _, payload := range [][]byte{nil, {}, make([]byte, 31), make([]byte, 33)} {
		if _, err := DecodeSlippageFloor(payload); !errors.Is(err, ErrStructuralPrecondition) {
			t.Fatalf("expected ErrStructuralPrecondition for %d bytes, got %v", len(payload), err)
		}
	}
}

func TestEncodeSlippageFloorRejectsNegative(t *testing.T) {
	if _, err := EncodeSlippageFloor(big.NewInt(-1)); err == nil {
		t.Fatalf("expected error for negative floor")
	}
	if _, err := EncodeSlippageFloor(nil); err == nil {
		t.Fatalf("expected error for nil floor")
	}
}
