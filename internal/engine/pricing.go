package engine

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"curvemm/internal/fixedpoint"
	"curvemm/internal/model"
)

// staleParams reports whether the visible parameter set is unable to price
// trades: an unset or sub-unit concentration, or a zero multiplier.
func staleParams(params model.PairParameters) bool {
	return params.Concentration.LtUint64(fixedpoint.RateScale) ||
		params.MultX.IsZero() ||
		params.MultY.IsZero()
}

// computeQuote applies the concentration-adjusted constant-product curve to
// one trade. Every division floors, so rounding always favors the market
// maker. The function is pure: it reads reserves and parameters, mutates
// nothing.
func computeQuote(pair *model.TradingPair, params model.PairParameters, amountIn *uint256.Int, xToY bool) (*uint256.Int, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrInvalidAmount
	}
	if staleParams(params) {
		return nil, ErrStaleParameters
	}

	effX, err := fixedpoint.Effective(pair.ReserveX, params.MultX)
	if err != nil {
		return nil, err
	}
	effY, err := fixedpoint.Effective(pair.ReserveY, params.MultY)
	if err != nil {
		return nil, err
	}

	effSelf, effOther := effX, effY
	multIn, multOut := params.MultX, params.MultY
	reserveOut := pair.ReserveY
	if !xToY {
		effSelf, effOther = effY, effX
		multIn, multOut = params.MultY, params.MultX
		reserveOut = pair.ReserveX
	}
	if effOther.IsZero() {
		return nil, ErrInsufficientLiquidity
	}

	invariant := params.BaseInvariant
	if invariant.IsZero() {
		invariant, err = fixedpoint.Product(effX, effY)
		if err != nil {
			return nil, err
		}
	}

	effIn, err := fixedpoint.Effective(amountIn, multIn)
	if err != nil {
		return nil, err
	}
	adjustedIn, err := fixedpoint.AdjustIn(effIn, params.Concentration)
	if err != nil {
		return nil, err
	}

	denom := new(uint256.Int).Add(effSelf, adjustedIn)
	if denom.IsZero() {
		return nil, ErrInvalidAmount
	}
	newEffOther := new(uint256.Int).Div(invariant, denom)
	if !newEffOther.Lt(effOther) {
		return nil, ErrInsufficientLiquidity
	}

	rawOut := new(uint256.Int).Sub(effOther, newEffOther)
	adjustedOut, err := fixedpoint.AdjustOut(rawOut, params.Concentration)
	if err != nil {
		return nil, err
	}
	nativeOut, err := fixedpoint.Reverse(adjustedOut, multOut)
	if err != nil {
		return nil, err
	}

	totalRate := new(uint256.Int).Add(params.FeeRate, params.Spread)
	if totalRate.GtUint64(fixedpoint.RateScale) {
		return nil, ErrStaleParameters
	}
	amountOut, err := fixedpoint.ApplyRate(nativeOut, totalRate.Uint64())
	if err != nil {
		return nil, err
	}
	if amountOut.IsZero() || !amountOut.Lt(reserveOut) {
		return nil, ErrInsufficientLiquidity
	}
	return amountOut, nil
}

// QuoteXToY prices a hypothetical X-for-Y trade against current state.
// Read-only: no reserve, reference or unit mutation.
func (e *Engine) QuoteXToY(pairID common.Hash, amountIn *uint256.Int) (*uint256.Int, error) {
	return e.quote(pairID, amountIn, true)
}

// QuoteYToX prices a hypothetical Y-for-X trade against current state.
func (e *Engine) QuoteYToX(pairID common.Hash, amountIn *uint256.Int) (*uint256.Int, error) {
	return e.quote(pairID, amountIn, false)
}

func (e *Engine) quote(pairID common.Hash, amountIn *uint256.Int, xToY bool) (*uint256.Int, error) {
	pair, err := e.pair(pairID)
	if err != nil {
		return nil, err
	}
	if pair.TargetYBasedLock {
		return nil, ErrPairLocked
	}
	return computeQuote(pair, e.params.Read(pairID), amountIn, xToY)
}

// SwapXForY trades amountIn of token X for token Y. Public.
func (e *Engine) SwapXForY(ctx context.Context, caller string, pairID common.Hash, amountIn, minOut *uint256.Int) (*uint256.Int, error) {
	return e.swap(ctx, caller, pairID, amountIn, minOut, true)
}

// SwapYForX trades amountIn of token Y for token X. Public.
func (e *Engine) SwapYForX(ctx context.Context, caller string, pairID common.Hash, amountIn, minOut *uint256.Int) (*uint256.Int, error) {
	return e.swap(ctx, caller, pairID, amountIn, minOut, false)
}

// swap runs the full trade path: pause gate, pair lookup, fresh parameter
// read, drift-lock update, curve quote, transfer and reserve mutation.
//
// The drift tracker's reference/lock update is the one mutation kept when the
// swap itself is rejected: it is the protection state, and the engine fails
// closed. Every other failure leaves no side effects.
func (e *Engine) swap(ctx context.Context, caller string, pairID common.Hash, amountIn, minOut *uint256.Int, xToY bool) (*uint256.Int, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.exit()
	if e.paused {
		return nil, ErrTradingHalted
	}
	pair, err := e.pair(pairID)
	if err != nil {
		return nil, err
	}
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrInvalidAmount
	}

	defer e.endUnit()

	params := e.params.Read(pairID)
	if staleParams(params) {
		return nil, ErrStaleParameters
	}
	if err := e.updateDriftLock(ctx, caller, pairID, pair, params); err != nil {
		return nil, err
	}
	if pair.TargetYBasedLock {
		return nil, ErrPairLocked
	}

	amountOut, err := computeQuote(pair, params, amountIn, xToY)
	if err != nil {
		return nil, err
	}
	if minOut != nil && amountOut.Lt(minOut) {
		return nil, ErrSlippageExceeded
	}

	tokenIn, tokenOut := pair.TokenX, pair.TokenY
	reserveIn, reserveOut := pair.ReserveX, pair.ReserveY
	if !xToY {
		tokenIn, tokenOut = pair.TokenY, pair.TokenX
		reserveIn, reserveOut = pair.ReserveY, pair.ReserveX
	}

	if err := e.tokens.Transfer(tokenIn, caller, e.cfg.Account, amountIn); err != nil {
		return nil, err
	}
	reserveIn.Add(reserveIn, amountIn)
	reserveOut.Sub(reserveOut, amountOut)
	if err := e.tokens.Transfer(tokenOut, e.cfg.Account, caller, amountOut); err != nil {
		return nil, err
	}

	e.logger.Info("swap",
		zap.String("pair_id", pairID.Hex()),
		zap.String("token_in", tokenIn),
		zap.String("amount_in", amountIn.Dec()),
		zap.String("amount_out", amountOut.Dec()),
	)
	if err := e.emit(ctx, model.EventSwap, pairID, caller, model.SwapData{
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  amountIn.Dec(),
		AmountOut: amountOut.Dec(),
	}); err != nil {
		return nil, err
	}
	return amountOut, nil
}
