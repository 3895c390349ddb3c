package arb

import "errors"

// Every failure class is fatal: the attempt aborts as a whole and the host
// transaction unwinds all effects. None are retried or partially tolerated.
var (
	// ErrNotCanonicalPair: the caller is not the pair the registry derives
	// for the asset pair it reported.
	ErrNotCanonicalPair = errors.New("caller is not the canonical pair")

	// ErrStructuralPrecondition: the borrow event is malformed. Both or
	// neither amounts nonzero, no base-asset leg, or an undecodable payload.
	ErrStructuralPrecondition = errors.New("structural precondition violated")

	// ErrInsufficientOutput: the secondary market produced less than the
	// caller's slippage floor.
	ErrInsufficientOutput = errors.New("secondary market output below floor")

	// ErrUnprofitable: the secondary-market proceeds do not strictly exceed
	// the repayment owed to the primary pool.
	ErrUnprofitable = errors.New("settlement not profitable")

	// ErrTransferFailed: an asset transfer, approval, or wrap/unwrap step
	// failed during settlement.
	ErrTransferFailed = errors.New("asset transfer failed")
)
