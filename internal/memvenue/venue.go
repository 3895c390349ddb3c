// Package memvenue provides in-memory constant-product markets and a balance
// ledger implementing the settlement engine's venue contracts. It backs
// simulate mode and the engine's end-to-end tests; per-attempt atomicity is
// supplied by Atomically, standing in for the host chain's transaction
// unwind.
package memvenue

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"flashArb/internal/univ2"
)

type allowanceKey struct {
	token   common.Address
	owner   common.Address
	spender common.Address
}

// pool is a token/base constant-product market. Reserves are the priced
// reserves the oracle sees; pool balances held in the ledger are separate,
// mirroring a pair whose reserve storage is not yet synced mid-callback.
type pool struct {
	token        common.Address
	reserveToken *big.Int
	reserveBase  *big.Int
}

// Venue is an in-memory exchange: a set of token/base pools plus token,
// wrapped-base, and native balances per holder.
type Venue struct {
	mu sync.Mutex

	executor common.Address
	router   common.Address
	base     common.Address

	tokens     map[common.Address]map[common.Address]*big.Int
	native     map[common.Address]*big.Int
	allowances map[allowanceKey]*big.Int
	pools      map[common.Address]*pool
}

func New(executor, router, base common.Address) *Venue {
	return &Venue{
		executor:   executor,
		router:     router,
		base:       base,
		tokens:     make(map[common.Address]map[common.Address]*big.Int),
		native:     make(map[common.Address]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
		pools:      make(map[common.Address]*pool),
	}
}

// AddPool registers a token/base market under the given pair address.
func (v *Venue) AddPool(pair, token common.Address, reserveToken, reserveBase *big.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pools[pair] = &pool{
		token:        token,
		reserveToken: new(big.Int).Set(reserveToken),
		reserveBase:  new(big.Int).Set(reserveBase),
	}
}

// Borrow credits the executor with the borrowed asset of a flash loan. The
// pool's priced reserves are left untouched: during the callback the pair's
// reserve storage still reflects the pre-borrow state.
func (v *Venue) Borrow(pair, asset common.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.pools[pair]; !ok {
		return fmt.Errorf("unknown pool %s", pair)
	}
	v.credit(asset, v.executor, amount)
	return nil
}

// MintToken credits a holder with token balance out of thin air.
func (v *Venue) MintToken(token, holder common.Address, amount *big.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.credit(token, holder, amount)
}

// MintBase credits a holder with native base balance out of thin air.
func (v *Venue) MintBase(holder common.Address, amount *big.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.creditNative(holder, amount)
}

// TokenBalance returns a copy of a holder's token balance.
func (v *Venue) TokenBalance(token, holder common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.balance(token, holder))
}

// BaseBalance returns a copy of a holder's native base balance.
func (v *Venue) BaseBalance(holder common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if b, ok := v.native[holder]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Atomically runs fn and restores the venue to its prior state when fn
// fails, mirroring the all-or-nothing guarantee of the host chain.
func (v *Venue) Atomically(fn func() error) error {
	snap := v.snapshot()
	if err := fn(); err != nil {
		v.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	tokens     map[common.Address]map[common.Address]*big.Int
	native     map[common.Address]*big.Int
	allowances map[allowanceKey]*big.Int
	pools      map[common.Address]*pool
}

func (v *Venue) snapshot() snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := snapshot{
		tokens:     make(map[common.Address]map[common.Address]*big.Int, len(v.tokens)),
		native:     make(map[common.Address]*big.Int, len(v.native)),
		allowances: make(map[allowanceKey]*big.Int, len(v.allowances)),
		pools:      make(map[common.Address]*pool, len(v.pools)),
	}
	for token, holders := range v.tokens {
		copied := make(map[common.Address]*big.Int, len(holders))
		for holder, bal := range holders {
			copied[holder] = new(big.Int).Set(bal)
		}
		snap.tokens[token] = copied
	}
	for holder, bal := range v.native {
		snap.native[holder] = new(big.Int).Set(bal)
	}
	for key, bal := range v.allowances {
		snap.allowances[key] = new(big.Int).Set(bal)
	}
	for pair, p := range v.pools {
		snap.pools[pair] = &pool{
			token:        p.token,
			reserveToken: new(big.Int).Set(p.reserveToken),
			reserveBase:  new(big.Int).Set(p.reserveBase),
		}
	}
	return snap
}

func (v *Venue) restore(snap snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens = snap.tokens
	v.native = snap.native
	v.allowances = snap.allowances
	v.pools = snap.pools
}

// GetReserves implements univ2.ReserveSource, returning reserves ordered by
// the pair's sorted token order.
func (v *Venue) GetReserves(_ context.Context, pair common.Address) (*big.Int, *big.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.pools[pair]
	if !ok {
		return nil, nil, fmt.Errorf("unknown pool %s", pair)
	}
	token0, _, err := univ2.SortTokens(p.token, v.base)
	if err != nil {
		return nil, nil, err
	}
	if token0 == p.token {
		return new(big.Int).Set(p.reserveToken), new(big.Int).Set(p.reserveBase), nil
	}
	return new(big.Int).Set(p.reserveBase), new(big.Int).Set(p.reserveToken), nil
}

// --- unexported ledger primitives; callers hold v.mu ---

func (v *Venue) balance(token, holder common.Address) *big.Int {
	holders, ok := v.tokens[token]
	if !ok {
		return new(big.Int)
	}
	if b, ok := holders[holder]; ok {
		return b
	}
	return new(big.Int)
}

func (v *Venue) credit(token, holder common.Address, amount *big.Int) {
	holders, ok := v.tokens[token]
	if !ok {
		holders = make(map[common.Address]*big.Int)
		v.tokens[token] = holders
	}
	cur, ok := holders[holder]
	if !ok {
		cur = new(big.Int)
		holders[holder] = cur
	}
	cur.Add(cur, amount)
}

func (v *Venue) debit(token, holder common.Address, amount *big.Int) error {
	cur := v.balance(token, holder)
	if cur.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient %s balance of %s: have %s, need %s", token, holder, cur, amount)
	}
	v.tokens[token][holder] = new(big.Int).Sub(cur, amount)
	return nil
}

func (v *Venue) creditNative(holder common.Address, amount *big.Int) {
	cur, ok := v.native[holder]
	if !ok {
		cur = new(big.Int)
		v.native[holder] = cur
	}
	cur.Add(cur, amount)
}

func (v *Venue) debitNative(holder common.Address, amount *big.Int) error {
	cur, ok := v.native[holder]
	if !ok || cur.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient native balance of %s", holder)
	}
	v.native[holder] = new(big.Int).Sub(cur, amount)
	return nil
}
