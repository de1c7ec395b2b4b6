package engine

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"curvemm/internal/fixedpoint"
	"curvemm/internal/model"
)

// driftThresholdPPM trips the inventory lock when the implied target Y falls
// more than this fraction (on the 1e6 scale) below its historical high.
// Hardcoded upstream; kept as one constant because it is a likely tunable.
const driftThresholdPPM = 50_000

// impliedTargetY derives the target inventory of Y implied by current
// reserves and targetX, clamped at zero:
//
//	reverse(effective(reserveX) + effective(reserveY) - effective(targetX))
func impliedTargetY(pair *model.TradingPair, params model.PairParameters) (*uint256.Int, error) {
	effX, err := fixedpoint.Effective(pair.ReserveX, params.MultX)
	if err != nil {
		return nil, err
	}
	effY, err := fixedpoint.Effective(pair.ReserveY, params.MultY)
	if err != nil {
		return nil, err
	}
	effTarget, err := fixedpoint.Effective(pair.TargetX, params.MultX)
	if err != nil {
		return nil, err
	}

	sum, overflow := new(uint256.Int).AddOverflow(effX, effY)
	if overflow {
		return nil, fixedpoint.ErrOverflow
	}
	diff, underflow := new(uint256.Int).SubOverflow(sum, effTarget)
	if underflow {
		return new(uint256.Int), nil
	}
	return fixedpoint.Reverse(diff, params.MultY)
}

// exceedsDriftThreshold reports whether gap/reference > threshold. The
// comparison cross-multiplies in big integers so it is exact, not floored.
func exceedsDriftThreshold(gap, reference *uint256.Int) bool {
	lhs := new(big.Int).Mul(gap.ToBig(), big.NewInt(fixedpoint.RateScale))
	rhs := new(big.Int).Mul(reference.ToBig(), big.NewInt(driftThresholdPPM))
	return lhs.Cmp(rhs) > 0
}

// updateDriftLock recomputes the implied target Y, ratchets the persisted
// high-water reference, and trips the pair lock on abnormal drift. Runs on
// every swap attempt; its mutations survive a rejected swap.
func (e *Engine) updateDriftLock(ctx context.Context, caller string, pairID common.Hash, pair *model.TradingPair, params model.PairParameters) error {
	implied, err := impliedTargetY(pair, params)
	if err != nil {
		return err
	}
	if implied.Gt(pair.TargetYReference) {
		pair.TargetYReference.Set(implied)
	}
	if pair.TargetYReference.IsZero() {
		return nil
	}

	gap := new(uint256.Int).Sub(pair.TargetYReference, implied)
	if !exceedsDriftThreshold(gap, pair.TargetYReference) {
		return nil
	}
	if pair.TargetYBasedLock {
		return nil
	}

	pair.TargetYBasedLock = true
	e.logger.Warn("inventory drift lock tripped",
		zap.String("pair_id", pairID.Hex()),
		zap.String("implied_target_y", implied.Dec()),
		zap.String("reference", pair.TargetYReference.Dec()),
	)
	return e.emit(ctx, model.EventPairLocked, pairID, caller, model.LockData{
		ImpliedTargetY: implied.Dec(),
		Reference:      pair.TargetYReference.Dec(),
	})
}
