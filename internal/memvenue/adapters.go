package memvenue

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"flashArb/internal/arb"
	"flashArb/internal/univ2"
)

// Assets returns an arb.Assets acting for the executor account.
func (v *Venue) Assets() arb.Assets { return assets{v} }

// Wrapper returns an arb.Wrapper over the venue's wrapped base token.
func (v *Venue) Wrapper() arb.Wrapper { return wrapper{v} }

// Router returns an arb.Router trading against the pool registered under
// pair. Swaps route through the venue's router address and consume the
// executor's allowance.
func (v *Venue) Router(pair common.Address) arb.Router { return router{v: v, pair: pair} }

type assets struct{ v *Venue }

func (a assets) Approve(_ context.Context, token, spender common.Address, amount *big.Int) error {
	a.v.mu.Lock()
	defer a.v.mu.Unlock()
	a.v.allowances[allowanceKey{token, a.v.executor, spender}] = new(big.Int).Set(amount)
	return nil
}

func (a assets) Transfer(_ context.Context, token, to common.Address, amount *big.Int) error {
	a.v.mu.Lock()
	defer a.v.mu.Unlock()
	if err := a.v.debit(token, a.v.executor, amount); err != nil {
		return err
	}
	a.v.credit(token, to, amount)
	return nil
}

func (a assets) TransferBase(_ context.Context, to common.Address, amount *big.Int) error {
	a.v.mu.Lock()
	defer a.v.mu.Unlock()
	if err := a.v.debitNative(a.v.executor, amount); err != nil {
		return err
	}
	a.v.creditNative(to, amount)
	return nil
}

type wrapper struct{ v *Venue }

func (w wrapper) Wrap(_ context.Context, amount *big.Int) error {
	w.v.mu.Lock()
	defer w.v.mu.Unlock()
	if err := w.v.debitNative(w.v.executor, amount); err != nil {
		return err
	}
	w.v.credit(w.v.base, w.v.executor, amount)
	return nil
}

func (w wrapper) Unwrap(_ context.Context, amount *big.Int) error {
	w.v.mu.Lock()
	defer w.v.mu.Unlock()
	if err := w.v.debit(w.v.base, w.v.executor, amount); err != nil {
		return err
	}
	w.v.creditNative(w.v.executor, amount)
	return nil
}

func (w wrapper) Transfer(_ context.Context, to common.Address, amount *big.Int) error {
	w.v.mu.Lock()
	defer w.v.mu.Unlock()
	if err := w.v.debit(w.v.base, w.v.executor, amount); err != nil {
		return err
	}
	w.v.credit(w.v.base, to, amount)
	return nil
}

type router struct {
	v    *Venue
	pair common.Address
}

// SwapExactTokensForBase sells token into the pool and pays the executor in
// native base, the way an on-chain router unwraps before paying out.
func (r router) SwapExactTokensForBase(_ context.Context, amountIn, minOut *big.Int, token common.Address, _ *big.Int) (*big.Int, error) {
	r.v.mu.Lock()
	defer r.v.mu.Unlock()

	p, err := r.pool(token)
	if err != nil {
		return nil, err
	}
	if err := r.consumeAllowance(token, amountIn); err != nil {
		return nil, err
	}

	out, err := univ2.GetAmountOut(amountIn, p.reserveToken, p.reserveBase)
	if err != nil {
		return nil, err
	}
	if out.Cmp(minOut) < 0 {
		return nil, fmt.Errorf("%w: got %s, floor %s", arb.ErrInsufficientOutput, out, minOut)
	}

	if err := r.v.debit(token, r.v.executor, amountIn); err != nil {
		return nil, err
	}
	p.reserveToken.Add(p.reserveToken, amountIn)
	p.reserveBase.Sub(p.reserveBase, out)
	r.v.creditNative(r.v.executor, out)

	return out, nil
}

// SwapExactBaseForTokens sells native base into the pool for token.
func (r router) SwapExactBaseForTokens(_ context.Context, amountIn, minOut *big.Int, token common.Address, _ *big.Int) (*big.Int, error) {
	r.v.mu.Lock()
	defer r.v.mu.Unlock()

	p, err := r.pool(token)
	if err != nil {
		return nil, err
	}

	out, err := univ2.GetAmountOut(amountIn, p.reserveBase, p.reserveToken)
	if err != nil {
		return nil, err
	}
	if out.Cmp(minOut) < 0 {
		return nil, fmt.Errorf("%w: got %s, floor %s", arb.ErrInsufficientOutput, out, minOut)
	}

	if err := r.v.debitNative(r.v.executor, amountIn); err != nil {
		return nil, err
	}
	p.reserveBase.Add(p.reserveBase, amountIn)
	p.reserveToken.Sub(p.reserveToken, out)
	r.v.credit(token, r.v.executor, out)

	return out, nil
}

func (r router) pool(token common.Address) (*pool, error) {
	p, ok := r.v.pools[r.pair]
	if !ok {
		return nil, fmt.Errorf("unknown pool %s", r.pair)
	}
	if p.token != token {
		return nil, fmt.Errorf("pool %s does not trade %s", r.pair, token)
	}
	return p, nil
}

func (r router) consumeAllowance(token common.Address, amount *big.Int) error {
	key := allowanceKey{token, r.v.executor, r.v.router}
	granted, ok := r.v.allowances[key]
	if !ok || granted.Cmp(amount) < 0 {
		return fmt.Errorf("allowance for %s too low", token)
	}
	r.v.allowances[key] = new(big.Int).Sub(granted, amount)
	return nil
}
