package replay

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"curvemm/internal/model"
)

func parseAmount(name, value string) (*uint256.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	amount, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return amount, nil
}

func parseOptional(name, value string) (*uint256.Int, error) {
	if value == "" {
		return nil, nil
	}
	return parseAmount(name, value)
}

func parsePairID(op model.Op) (common.Hash, error) {
	if op.PairID == "" {
		return common.Hash{}, fmt.Errorf("pair_id is required")
	}
	return common.HexToHash(op.PairID), nil
}

// apply dispatches one operation to the engine.
func (r *Runner) apply(ctx context.Context, op model.Op) error {
	switch op.Op {
	case model.OpCreatePair:
		concentration, err := parseAmount("concentration", op.Concentration)
		if err != nil {
			return err
		}
		_, err = r.engine.CreatePair(ctx, op.Caller, op.TokenX, op.TokenY, concentration, op.XRetainDecimals, op.YRetainDecimals)
		return err

	case model.OpUpdateParams:
		pairID, err := parsePairID(op)
		if err != nil {
			return err
		}
		params := model.PairParameters{}
		if params.Concentration, err = parseAmount("concentration", op.Concentration); err != nil {
			return err
		}
		if params.MultX, err = parseAmount("mult_x", op.MultX); err != nil {
			return err
		}
		if params.MultY, err = parseAmount("mult_y", op.MultY); err != nil {
			return err
		}
		if params.BaseInvariant, err = parseOptional("base_invariant", op.BaseInvariant); err != nil {
			return err
		}
		if params.FeeRate, err = parseAmount("fee_rate", op.FeeRate); err != nil {
			return err
		}
		if params.Spread, err = parseAmount("spread", op.Spread); err != nil {
			return err
		}
		return r.engine.UpdateParameters(ctx, op.Caller, pairID, params)

	case model.OpUpdateCurve:
		pairID, err := parsePairID(op)
		if err != nil {
			return err
		}
		multX, err := parseAmount("mult_x", op.MultX)
		if err != nil {
			return err
		}
		multY, err := parseAmount("mult_y", op.MultY)
		if err != nil {
			return err
		}
		concentration, err := parseAmount("concentration", op.Concentration)
		if err != nil {
			return err
		}
		return r.engine.UpdateCurveParams(ctx, op.Caller, pairID, multX, multY, concentration)

	case model.OpSetSpread:
		pairID, err := parsePairID(op)
		if err != nil {
			return err
		}
		spread, err := parseAmount("spread", op.Spread)
		if err != nil {
			return err
		}
		return r.engine.SetSpread(ctx, op.Caller, pairID, spread)

	case model.OpRebalance:
		pairID, err := parsePairID(op)
		if err != nil {
			return err
		}
		targetX, err := parseAmount("target_x", op.TargetX)
		if err != nil {
			return err
		}
		targetYReference, err := parseAmount("target_y_reference", op.TargetYReference)
		if err != nil {
			return err
		}
		return r.engine.RebalanceLiquidity(ctx, op.Caller, pairID, targetX, targetYReference)

	case model.OpDeposit:
		pairID, err := parsePairID(op)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", op.Amount)
		if err != nil {
			return err
		}
		return r.engine.Deposit(ctx, op.Caller, pairID, op.Token, amount)

	case model.OpWithdraw:
		pairID, err := parsePairID(op)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", op.Amount)
		if err != nil {
			return err
		}
		return r.engine.Withdraw(ctx, op.Caller, pairID, op.Token, amount)

	case model.OpUnlock:
		pairID, err := parsePairID(op)
		if err != nil {
			return err
		}
		return r.engine.Unlock(ctx, op.Caller, pairID)

	case model.OpSwapXForY, model.OpSwapYForX:
		pairID, err := parsePairID(op)
		if err != nil {
			return err
		}
		amount, err := parseAmount("amount", op.Amount)
		if err != nil {
			return err
		}
		minOut, err := parseOptional("min_out", op.MinOut)
		if err != nil {
			return err
		}
		if op.Op == model.OpSwapXForY {
			_, err = r.engine.SwapXForY(ctx, op.Caller, pairID, amount, minOut)
		} else {
			_, err = r.engine.SwapYForX(ctx, op.Caller, pairID, amount, minOut)
		}
		return err

	case model.OpPause:
		return r.engine.Pause(ctx, op.Caller)

	case model.OpResume:
		return r.engine.Resume(ctx, op.Caller)

	case model.OpReassignMarketMaker:
		return r.engine.ReassignMarketMaker(ctx, op.Caller, op.NewMarketMaker)

	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
}
