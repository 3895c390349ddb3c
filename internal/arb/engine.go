package arb

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Config is the construction-time configuration of the engine. It is the
// only state that outlives a single settlement attempt and is never mutated
// after construction.
type Config struct {
	// PrimaryFactory is the registry of the market issuing borrow callbacks.
	PrimaryFactory common.Address
	// SecondaryRouter is the independent market the borrowed asset is
	// traded against.
	SecondaryRouter common.Address
	// BaseToken is the wrapped base asset both markets quote against.
	BaseToken common.Address
}

// Engine settles flash-loan borrow events: it authenticates the callback,
// resolves the borrow direction, trades the borrowed asset on the secondary
// market, repays the primary pool exactly what it is owed, and forwards the
// surplus to the initiator. Each attempt is a single forward-only pass; the
// first failed precondition aborts the whole attempt and the hosting
// transaction unwinds every effect performed so far.
type Engine struct {
	cfg     Config
	oracle  PriceOracle
	router  Router
	wrapper Wrapper
	assets  Assets
	logger  *zap.Logger
}

// NewEngine builds an engine over its collaborators.
func NewEngine(cfg Config, oracle PriceOracle, router Router, wrapper Wrapper, assets Assets, logger *zap.Logger) (*Engine, error) {
	if oracle == nil {
		return nil, fmt.Errorf("price oracle is required")
	}
	if router == nil {
		return nil, fmt.Errorf("secondary router is required")
	}
	if wrapper == nil {
		return nil, fmt.Errorf("base wrapper is required")
	}
	if assets == nil {
		return nil, fmt.Errorf("asset transferer is required")
	}
	if cfg.PrimaryFactory == (common.Address{}) {
		return nil, fmt.Errorf("primary factory is required")
	}
	if cfg.BaseToken == (common.Address{}) {
		return nil, fmt.Errorf("base token is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:     cfg,
		oracle:  oracle,
		router:  router,
		wrapper: wrapper,
		assets:  assets,
		logger:  logger,
	}, nil
}

// OnBorrowCallback runs one settlement attempt for a borrow event. Any
// returned error means the attempt aborted; the caller's transaction context
// is responsible for unwinding effects already performed.
func (e *Engine) OnBorrowCallback(ctx context.Context, ev BorrowEvent) (SettlementResult, error) {
	if err := e.authenticate(ev); err != nil {
		return SettlementResult{}, err
	}

	res, err := e.resolve(ev)
	if err != nil {
		return SettlementResult{}, err
	}

	floor, err := DecodeSlippageFloor(ev.Payload)
	if err != nil {
		return SettlementResult{}, err
	}

	e.logger.Debug("direction resolved",
		zap.Stringer("direction", res.Direction),
		zap.Stringer("borrowed", res.Borrowed),
		zap.String("amount", res.Amount.String()),
	)

	received, err := e.swapSecondary(ctx, res, floor)
	if err != nil {
		return SettlementResult{}, err
	}

	result, err := e.settle(ctx, ev, res, received)
	if err != nil {
		return SettlementResult{}, err
	}

	e.logger.Info("attempt settled",
		zap.Stringer("pair", ev.Caller),
		zap.Stringer("initiator", ev.Initiator),
		zap.Stringer("direction", result.Direction),
		zap.String("received", result.Received.String()),
		zap.String("required", result.Required.String()),
		zap.String("surplus", result.Surplus.String()),
	)

	return result, nil
}

// authenticate recomputes the canonical pair address for the asset pair the
// caller reported and requires it to match the caller. This is the sole
// defense against a fabricated borrow event.
func (e *Engine) authenticate(ev BorrowEvent) error {
	canonical, err := e.oracle.PairFor(e.cfg.PrimaryFactory, ev.Token0, ev.Token1)
	if err != nil {
		return fmt.Errorf("derive canonical pair: %w", err)
	}
	if canonical != ev.Caller {
		return fmt.Errorf("%w: caller %s, canonical %s", ErrNotCanonicalPair, ev.Caller, canonical)
	}
	return nil
}

// resolve classifies the borrow. Exactly one amount must be nonzero and
// exactly one pool leg must be the wrapped base asset; the strategy is
// unidirectional and only applies to token/base pools.
func (e *Engine) resolve(ev BorrowEvent) (resolution, error) {
	borrowed0 := ev.Amount0 != nil && ev.Amount0.Sign() > 0
	borrowed1 := ev.Amount1 != nil && ev.Amount1.Sign() > 0
	if borrowed0 == borrowed1 {
		return resolution{}, fmt.Errorf("%w: exactly one of amount0/amount1 must be nonzero", ErrStructuralPrecondition)
	}

	base0 := ev.Token0 == e.cfg.BaseToken
	base1 := ev.Token1 == e.cfg.BaseToken
	if base0 == base1 {
		return resolution{}, fmt.Errorf("%w: exactly one pool leg must be the base asset %s", ErrStructuralPrecondition, e.cfg.BaseToken)
	}

	res := resolution{
		Borrowed: ev.Token0,
		Repay:    ev.Token1,
		Amount:   ev.Amount0,
	}
	if borrowed1 {
		res.Borrowed, res.Repay = ev.Token1, ev.Token0
		res.Amount = ev.Amount1
	}

	res.Direction = TokenBorrowed
	if res.Borrowed == e.cfg.BaseToken {
		res.Direction = BaseBorrowed
	}
	res.Path = [2]common.Address{res.Repay, res.Borrowed}

	return res, nil
}

// swapSecondary converts the borrowed asset into the repayment asset on the
// secondary market. The venue's own below-floor failure propagates up and
// aborts the attempt.
func (e *Engine) swapSecondary(ctx context.Context, res resolution, floor *big.Int) (*big.Int, error) {
	switch res.Direction {
	case TokenBorrowed:
		if err := e.assets.Approve(ctx, res.Borrowed, e.cfg.SecondaryRouter, res.Amount); err != nil {
			return nil, fmt.Errorf("%w: approve secondary router: %v", ErrTransferFailed, err)
		}
		out, err := e.router.SwapExactTokensForBase(ctx, res.Amount, floor, res.Borrowed, UnboundedDeadline)
		if err != nil {
			return nil, fmt.Errorf("secondary swap token->base: %w", err)
		}
		return out, nil

	case BaseBorrowed:
		if err := e.wrapper.Unwrap(ctx, res.Amount); err != nil {
			return nil, fmt.Errorf("%w: unwrap borrowed base: %v", ErrTransferFailed, err)
		}
		out, err := e.router.SwapExactBaseForTokens(ctx, res.Amount, floor, res.Repay, UnboundedDeadline)
		if err != nil {
			return nil, fmt.Errorf("secondary swap base->token: %w", err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unknown trade direction %d", ErrStructuralPrecondition, res.Direction)
	}
}

// settle computes the exact repayment owed to the primary pool, enforces the
// strict-surplus gate, repays the pool, and forwards the surplus to the
// initiator. Break-even is not settled: received must strictly exceed
// required.
func (e *Engine) settle(ctx context.Context, ev BorrowEvent, res resolution, received *big.Int) (SettlementResult, error) {
	required, err := e.oracle.RequiredInput(ctx, e.cfg.PrimaryFactory, res.Amount, res.Path)
	if err != nil {
		return SettlementResult{}, fmt.Errorf("compute required repayment: %w", err)
	}

	if received.Cmp(required) <= 0 {
		return SettlementResult{}, fmt.Errorf("%w: received %s, required %s", ErrUnprofitable, received, required)
	}
	surplus := new(big.Int).Sub(received, required)

	switch res.Direction {
	case TokenBorrowed:
		// Proceeds are native base: wrap exactly the repayment, send it to
		// the pool, forward the rest as native base.
		if err := e.wrapper.Wrap(ctx, required); err != nil {
			return SettlementResult{}, fmt.Errorf("%w: wrap repayment: %v", ErrTransferFailed, err)
		}
		if err := e.wrapper.Transfer(ctx, ev.Caller, required); err != nil {
			return SettlementResult{}, fmt.Errorf("%w: repay pair: %v", ErrTransferFailed, err)
		}
		if err := e.assets.TransferBase(ctx, ev.Initiator, surplus); err != nil {
			return SettlementResult{}, fmt.Errorf("%w: forward surplus: %v", ErrTransferFailed, err)
		}

	case BaseBorrowed:
		if err := e.assets.Transfer(ctx, res.Repay, ev.Caller, required); err != nil {
			return SettlementResult{}, fmt.Errorf("%w: repay pair: %v", ErrTransferFailed, err)
		}
		if err := e.assets.Transfer(ctx, res.Repay, ev.Initiator, surplus); err != nil {
			return SettlementResult{}, fmt.Errorf("%w: forward surplus: %v", ErrTransferFailed, err)
		}
	}

	return SettlementResult{
		Direction: res.Direction,
		Received:  received,
		Required:  required,
		Surplus:   surplus,
	}, nil
}
