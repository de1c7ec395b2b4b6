package engine

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"curvemm/internal/fixedpoint"
	"curvemm/internal/model"
	"curvemm/internal/oracle"
)

// maxConcentration caps the concentration knob at 100x (1e8 on the 1e6 scale).
const maxConcentration = 100 * fixedpoint.RateScale

func clone(v *uint256.Int) *uint256.Int {
	return new(uint256.Int).Set(v)
}

func validConcentration(c *uint256.Int) bool {
	return !c.LtUint64(fixedpoint.RateScale) && !c.GtUint64(maxConcentration)
}

// CreatePair registers a new trading pair and seeds its oracle parameters
// with defaults (unit multipliers, derived invariant, zero fees). The
// decimal-normalization invariant is checked here once and never revisited.
// Market maker only.
func (e *Engine) CreatePair(ctx context.Context, caller, tokenX, tokenY string, concentration *uint256.Int, xRetainDecimals, yRetainDecimals uint8) (common.Hash, error) {
	if err := e.enter(); err != nil {
		return common.Hash{}, err
	}
	defer e.exit()
	if err := e.requireMarketMaker(caller); err != nil {
		return common.Hash{}, err
	}
	if tokenX == "" || tokenY == "" || tokenX == tokenY {
		return common.Hash{}, ErrInvalidTokenPair
	}
	if !validConcentration(concentration) {
		return common.Hash{}, ErrInvalidConcentration
	}

	pairID := oracle.DerivePairID(tokenX, tokenY)
	if existing, ok := e.pairs[pairID]; ok && existing.Exists {
		return common.Hash{}, ErrPairExists
	}

	decimalsX, err := e.tokens.Decimals(tokenX)
	if err != nil {
		return common.Hash{}, fmt.Errorf("token %s: %w", tokenX, err)
	}
	decimalsY, err := e.tokens.Decimals(tokenY)
	if err != nil {
		return common.Hash{}, fmt.Errorf("token %s: %w", tokenY, err)
	}
	if uint16(decimalsX)+uint16(xRetainDecimals) != uint16(decimalsY)+uint16(yRetainDecimals) {
		return common.Hash{}, ErrDecimalConfig
	}

	defer e.endUnit()

	pair := &model.TradingPair{
		TokenX:           tokenX,
		TokenY:           tokenY,
		ReserveX:         new(uint256.Int),
		ReserveY:         new(uint256.Int),
		TargetX:          new(uint256.Int),
		XRetainDecimals:  xRetainDecimals,
		YRetainDecimals:  yRetainDecimals,
		TargetYReference: new(uint256.Int),
		Exists:           true,
	}
	e.pairs[pairID] = pair
	e.order = append(e.order, pairID)

	defaults := model.PairParameters{
		Concentration: clone(concentration),
		MultX:         uint256.NewInt(fixedpoint.PriceScale),
		MultY:         uint256.NewInt(fixedpoint.PriceScale),
		BaseInvariant: new(uint256.Int),
		FeeRate:       new(uint256.Int),
		Spread:        new(uint256.Int),
	}
	if err := e.params.WriteAll(pairID, defaults); err != nil {
		return common.Hash{}, err
	}

	e.logger.Info("pair created",
		zap.String("pair_id", pairID.Hex()),
		zap.String("token_x", tokenX),
		zap.String("token_y", tokenY),
		zap.String("concentration", concentration.Dec()),
	)
	return pairID, e.emit(ctx, model.EventPairCreated, pairID, caller, model.PairCreatedData{
		TokenX:          tokenX,
		TokenY:          tokenY,
		Concentration:   concentration.Dec(),
		XRetainDecimals: xRetainDecimals,
		YRetainDecimals: yRetainDecimals,
	})
}

// Deposit moves funds from the market maker into the pair's reserve. State
// mutates only after the inbound transfer confirms. Deposits of token X grow
// targetX in lockstep so the lock baseline tracks intended inventory growth.
// Market maker only.
func (e *Engine) Deposit(ctx context.Context, caller string, pairID common.Hash, asset string, amount *uint256.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	if err := e.requireMarketMaker(caller); err != nil {
		return err
	}
	pair, err := e.pair(pairID)
	if err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	if asset != pair.TokenX && asset != pair.TokenY {
		return ErrInvalidTokenPair
	}

	defer e.endUnit()

	if err := e.tokens.Transfer(asset, caller, e.cfg.Account, amount); err != nil {
		return fmt.Errorf("deposit transfer: %w", err)
	}
	if asset == pair.TokenX {
		pair.ReserveX.Add(pair.ReserveX, amount)
		pair.TargetX.Add(pair.TargetX, amount)
	} else {
		pair.ReserveY.Add(pair.ReserveY, amount)
	}

	e.logger.Info("deposit",
		zap.String("pair_id", pairID.Hex()),
		zap.String("token", asset),
		zap.String("amount", amount.Dec()),
	)
	return e.emit(ctx, model.EventDeposit, pairID, caller, model.TransferData{Token: asset, Amount: amount.Dec()})
}

// Withdraw moves funds from the pair's reserve back to the market maker.
// State mutates before the outbound transfer. Withdrawals of token X shrink
// targetX symmetrically, clamped at zero. Market maker only.
func (e *Engine) Withdraw(ctx context.Context, caller string, pairID common.Hash, asset string, amount *uint256.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	if err := e.requireMarketMaker(caller); err != nil {
		return err
	}
	pair, err := e.pair(pairID)
	if err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	if asset != pair.TokenX && asset != pair.TokenY {
		return ErrInvalidTokenPair
	}

	reserve := pair.ReserveY
	if asset == pair.TokenX {
		reserve = pair.ReserveX
	}
	if reserve.Lt(amount) {
		return ErrInsufficientReserve
	}

	defer e.endUnit()

	reserve.Sub(reserve, amount)
	if asset == pair.TokenX {
		if pair.TargetX.Lt(amount) {
			pair.TargetX.Clear()
		} else {
			pair.TargetX.Sub(pair.TargetX, amount)
		}
	}
	if err := e.tokens.Transfer(asset, e.cfg.Account, caller, amount); err != nil {
		return fmt.Errorf("withdraw transfer: %w", err)
	}

	e.logger.Info("withdraw",
		zap.String("pair_id", pairID.Hex()),
		zap.String("token", asset),
		zap.String("amount", amount.Dec()),
	)
	return e.emit(ctx, model.EventWithdraw, pairID, caller, model.TransferData{Token: asset, Amount: amount.Dec()})
}

// RebalanceLiquidity sets explicit target values, re-baselining the drift
// tracker and clearing any lock. Both targets are bounded by the current
// reserves. Market maker only.
func (e *Engine) RebalanceLiquidity(ctx context.Context, caller string, pairID common.Hash, targetX, targetYReference *uint256.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	if err := e.requireMarketMaker(caller); err != nil {
		return err
	}
	pair, err := e.pair(pairID)
	if err != nil {
		return err
	}
	if targetX == nil || targetYReference == nil {
		return ErrInvalidAmount
	}
	if pair.ReserveX.Lt(targetX) || pair.ReserveY.Lt(targetYReference) {
		return ErrTargetExceedsReserve
	}

	defer e.endUnit()

	pair.TargetX.Set(targetX)
	pair.TargetYReference.Set(targetYReference)
	pair.TargetYBasedLock = false

	e.logger.Info("rebalanced",
		zap.String("pair_id", pairID.Hex()),
		zap.String("target_x", targetX.Dec()),
		zap.String("target_y_reference", targetYReference.Dec()),
	)
	return e.emit(ctx, model.EventRebalanced, pairID, caller, model.RebalancedData{
		TargetX:          targetX.Dec(),
		TargetYReference: targetYReference.Dec(),
	})
}

// Unlock clears the drift lock and resets the high-water reference to zero.
// Market maker only.
func (e *Engine) Unlock(ctx context.Context, caller string, pairID common.Hash) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	if err := e.requireMarketMaker(caller); err != nil {
		return err
	}
	pair, err := e.pair(pairID)
	if err != nil {
		return err
	}

	defer e.endUnit()

	pair.TargetYBasedLock = false
	pair.TargetYReference.Clear()

	e.logger.Info("unlocked", zap.String("pair_id", pairID.Hex()))
	return e.emit(ctx, model.EventUnlocked, pairID, caller, nil)
}
