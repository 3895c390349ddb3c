package memvenue

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"flashArb/internal/arb"
)

var (
	executor = common.HexToAddress("0x3000000000000000000000000000000000000001")
	routerA  = common.HexToAddress("0x3000000000000000000000000000000000000002")
	base     = common.HexToAddress("0x3000000000000000000000000000000000000003")
	token    = common.HexToAddress("0x3000000000000000000000000000000000000004")
	pairAddr = common.HexToAddress("0x3000000000000000000000000000000000000005")
	other    = common.HexToAddress("0x3000000000000000000000000000000000000006")
)

func newVenue() *Venue {
	v := New(executor, routerA, base)
	v.AddPool(pairAddr, token, big.NewInt(100_000), big.NewInt(10_000))
	return v
}

func TestSwapTokensForBaseUpdatesReserves(t *testing.T) {
	v := newVenue()
	v.MintToken(token, executor, big.NewInt(1000))

	ctx := context.Background()
	if err := v.Assets().Approve(ctx, token, routerA, big.NewInt(1000)); err != nil {
		t.Fatalf("approve: %v", err)
	}

	out, err := v.Router(pairAddr).SwapExactTokensForBase(ctx, big.NewInt(1000), big.NewInt(90), token, arb.UnboundedDeadline)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if out.Cmp(big.NewInt(98)) != 0 {
		t.Fatalf("output mismatch: %s", out)
	}

	if got := v.BaseBalance(executor); got.Cmp(big.NewInt(98)) != 0 {
		t.Fatalf("native payout mismatch: %s", got)
	}
	if got := v.TokenBalance(token, executor); got.Sign() != 0 {
		t.Fatalf("executor kept tokens: %s", got)
	}

	reserve0, reserve1, err := v.GetReserves(ctx, pairAddr)
	if err != nil {
		t.Fatalf("get reserves: %v", err)
	}
	total := new(big.Int).Add(reserve0, reserve1)
	if total.Cmp(big.NewInt(100_000+1000+10_000-98)) != 0 {
		t.Fatalf("reserves mismatch: %s + %s", reserve0, reserve1)
	}
}

func TestSwapWithoutAllowanceFails(t *testing.T) {
	v := newVenue()
	v.MintToken(token, executor, big.NewInt(1000))

	_, err := v.Router(pairAddr).SwapExactTokensForBase(context.Background(), big.NewInt(1000), big.NewInt(0), token, arb.UnboundedDeadline)
	if err == nil {
		t.Fatalf("expected allowance error")
	}
}

func TestSwapBelowFloorFails(t *testing.T) {
	v := newVenue()
	v.MintToken(token, executor, big.NewInt(1000))

	ctx := context.Background()
	if err := v.Assets().Approve(ctx, token, routerA, big.NewInt(1000)); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err := v.Router(pairAddr).SwapExactTokensForBase(ctx, big.NewInt(1000), big.NewInt(99), token, arb.UnboundedDeadline)
	if !errors.Is(err, arb.ErrInsufficientOutput) {
		t.Fatalf("expected ErrInsufficientOutput, got %v", err)
	}
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	v := newVenue()
	v.MintBase(executor, big.NewInt(500))

	ctx := context.Background()
	w := v.Wrapper()
	if err := w.Wrap(ctx, big.NewInt(200)); err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if got := v.TokenBalance(base, executor); got.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("wrapped balance mismatch: %s", got)
	}
	if got := v.BaseBalance(executor); got.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("native balance mismatch: %s", got)
	}

	if err := w.Unwrap(ctx, big.NewInt(200)); err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if got := v.BaseBalance(executor); got.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("native balance after unwrap: %s", got)
	}

	if err := w.Unwrap(ctx, big.NewInt(1)); err == nil {
		t.Fatalf("expected error unwrapping without wrapped balance")
	}
}

func TestTransferInsufficientBalanceFails(t *testing.T) {
	v := newVenue()

	if err := v.Assets().Transfer(context.Background(), token, other, big.NewInt(1)); err == nil {
		t.Fatalf("expected insufficient balance error")
	}
	if err := v.Assets().TransferBase(context.Background(), other, big.NewInt(1)); err == nil {
		t.Fatalf("expected insufficient native balance error")
	}
}

func TestAtomicallyRollsBackOnFailure(t *testing.T) {
	v := newVenue()
	v.MintToken(token, executor, big.NewInt(1000))

	ctx := context.Background()
	err := v.Atomically(func() error {
		if err := v.Assets().Approve(ctx, token, routerA, big.NewInt(1000)); err != nil {
			return err
		}
		if _, err := v.Router(pairAddr).SwapExactTokensForBase(ctx, big.NewInt(1000), big.NewInt(0), token, arb.UnboundedDeadline); err != nil {
			return err
		}
		return errors.New("late failure")
	})
	if err == nil {
		t.Fatalf("expected error from atomic block")
	}

	if got := v.TokenBalance(token, executor); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("token balance not restored: %s", got)
	}
	if got := v.BaseBalance(executor); got.Sign() != 0 {
		t.Fatalf("native balance not restored: %s", got)
	}

	reserve0, reserve1, err := v.GetReserves(ctx, pairAddr)
	if err != nil {
		t.Fatalf("get reserves: %v", err)
	}
	total := new(big.Int).Add(reserve0, reserve1)
	if total.Cmp(big.NewInt(110_000)) != 0 {
		t.Fatalf("reserves not restored: %s + %s", reserve0, reserve1)
	}
}
