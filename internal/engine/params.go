package engine

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"curvemm/internal/fixedpoint"
	"curvemm/internal/model"
)

func validateCurve(concentration, multX, multY *uint256.Int) error {
	if concentration == nil || !validConcentration(concentration) {
		return ErrInvalidConcentration
	}
	if multX == nil || multX.IsZero() || multY == nil || multY.IsZero() {
		return ErrZeroMultiplier
	}
	return nil
}

func validateRates(feeRate, spread *uint256.Int) error {
	if feeRate == nil || spread == nil {
		return ErrInvalidRates
	}
	total, overflow := new(uint256.Int).AddOverflow(feeRate, spread)
	if overflow || total.GtUint64(fixedpoint.RateScale) {
		return ErrInvalidRates
	}
	return nil
}

// UpdateParameters replaces the full six-field parameter set in one atomic
// oracle batch. The new values become visible from the next serialized unit.
// Market maker only.
func (e *Engine) UpdateParameters(ctx context.Context, caller string, pairID common.Hash, params model.PairParameters) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	if err := e.requireMarketMaker(caller); err != nil {
		return err
	}
	if _, err := e.pair(pairID); err != nil {
		return err
	}
	if err := validateCurve(params.Concentration, params.MultX, params.MultY); err != nil {
		return err
	}
	if err := validateRates(params.FeeRate, params.Spread); err != nil {
		return err
	}
	if params.BaseInvariant == nil {
		params.BaseInvariant = new(uint256.Int)
	}

	defer e.endUnit()
	if err := e.params.WriteAll(pairID, params); err != nil {
		return err
	}

	e.logger.Info("parameters updated",
		zap.String("pair_id", pairID.Hex()),
		zap.String("concentration", params.Concentration.Dec()),
		zap.String("fee_rate", params.FeeRate.Dec()),
		zap.String("spread", params.Spread.Dec()),
	)
	return e.emit(ctx, model.EventParamsUpdated, pairID, caller, model.ParamsUpdatedData{
		Concentration: params.Concentration.Dec(),
		MultX:         params.MultX.Dec(),
		MultY:         params.MultY.Dec(),
		BaseInvariant: params.BaseInvariant.Dec(),
		FeeRate:       params.FeeRate.Dec(),
		Spread:        params.Spread.Dec(),
	})
}

// UpdateCurveParams replaces only the curve fields (multipliers and
// concentration), leaving invariant and fees untouched. Market maker only.
func (e *Engine) UpdateCurveParams(ctx context.Context, caller string, pairID common.Hash, multX, multY, concentration *uint256.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	if err := e.requireMarketMaker(caller); err != nil {
		return err
	}
	if _, err := e.pair(pairID); err != nil {
		return err
	}
	if err := validateCurve(concentration, multX, multY); err != nil {
		return err
	}

	defer e.endUnit()
	if err := e.params.WriteCurve(pairID, concentration, multX, multY); err != nil {
		return err
	}

	e.logger.Info("curve updated",
		zap.String("pair_id", pairID.Hex()),
		zap.String("concentration", concentration.Dec()),
	)
	return e.emit(ctx, model.EventCurveUpdated, pairID, caller, model.ParamsUpdatedData{
		Concentration: concentration.Dec(),
		MultX:         multX.Dec(),
		MultY:         multY.Dec(),
	})
}

// SetSpread replaces only the spread field, validated against the currently
// visible fee rate. Market maker only.
func (e *Engine) SetSpread(ctx context.Context, caller string, pairID common.Hash, spread *uint256.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	if err := e.requireMarketMaker(caller); err != nil {
		return err
	}
	if _, err := e.pair(pairID); err != nil {
		return err
	}
	current := e.params.Read(pairID)
	if err := validateRates(current.FeeRate, spread); err != nil {
		return err
	}

	defer e.endUnit()
	if err := e.params.WriteSpread(pairID, spread); err != nil {
		return err
	}

	e.logger.Info("spread updated",
		zap.String("pair_id", pairID.Hex()),
		zap.String("spread", spread.Dec()),
	)
	return e.emit(ctx, model.EventSpreadUpdated, pairID, caller, model.ParamsUpdatedData{
		Spread: spread.Dec(),
	})
}
