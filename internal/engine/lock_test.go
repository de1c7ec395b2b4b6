package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"curvemm/internal/fixedpoint"
	"curvemm/internal/model"
)

// tripDriftLock establishes a drift baseline with one swap, then drains
// enough Y that the implied target falls more than 5% below it. The lock
// trips on the next swap attempt.
func tripDriftLock(t *testing.T, eng *Engine, pairID common.Hash) {
	t.Helper()
	ctx := context.Background()

	if _, err := eng.SwapXForY(ctx, testTrader, pairID, uint256.NewInt(10_000), nil); err != nil {
		t.Fatalf("baseline swap: %v", err)
	}
	if err := eng.Withdraw(ctx, testMarketMaker, pairID, "TKY", uint256.NewInt(100_000)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := eng.SwapXForY(ctx, testTrader, pairID, uint256.NewInt(1_000), nil); !errors.Is(err, ErrPairLocked) {
		t.Fatalf("expected ErrPairLocked, got %v", err)
	}
}

func TestDriftLockTripsOnAbnormalDrift(t *testing.T) {
	eng, _, sink, _ := newTestEngine(t)
	pairID := createFundedPair(t, eng)
	tripDriftLock(t, eng, pairID)
	ctx := context.Background()

	pair, err := eng.GetPair(pairID)
	if err != nil {
		t.Fatalf("get pair: %v", err)
	}
	if !pair.TargetYBasedLock {
		t.Fatalf("lock flag not set")
	}
	// The reference holds the pre-drift high-water mark.
	if !pair.TargetYReference.Eq(uint256.NewInt(1_000_000)) {
		t.Fatalf("reference = %s, want 1000000", pair.TargetYReference.Dec())
	}

	// Everything that prices stays blocked, in both directions.
	if _, err := eng.SwapYForX(ctx, testTrader, pairID, uint256.NewInt(1_000), nil); !errors.Is(err, ErrPairLocked) {
		t.Fatalf("expected ErrPairLocked, got %v", err)
	}
	if _, err := eng.QuoteXToY(pairID, uint256.NewInt(1_000)); !errors.Is(err, ErrPairLocked) {
		t.Fatalf("expected ErrPairLocked from quote, got %v", err)
	}

	if countEvents(sink, model.EventPairLocked) != 1 {
		t.Fatalf("expected exactly one pair_locked event")
	}
}

func TestUnlockClearsDriftLock(t *testing.T) {
	eng, _, sink, _ := newTestEngine(t)
	pairID := createFundedPair(t, eng)
	tripDriftLock(t, eng, pairID)
	ctx := context.Background()

	if err := eng.Unlock(ctx, testTrader, pairID); !errors.Is(err, ErrNotMarketMaker) {
		t.Fatalf("expected ErrNotMarketMaker, got %v", err)
	}
	if err := eng.Unlock(ctx, testMarketMaker, pairID); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	pair, _ := eng.GetPair(pairID)
	if pair.TargetYBasedLock {
		t.Fatalf("lock flag still set")
	}
	if !pair.TargetYReference.IsZero() {
		t.Fatalf("reference = %s, want 0 after unlock", pair.TargetYReference.Dec())
	}

	// The next swap re-baselines from current inventory and clears.
	if _, err := eng.SwapXForY(ctx, testTrader, pairID, uint256.NewInt(1_000), nil); err != nil {
		t.Fatalf("swap after unlock: %v", err)
	}
	if countEvents(sink, model.EventUnlocked) != 1 {
		t.Fatalf("expected one unlocked event")
	}
}

func TestRebalanceClearsDriftLock(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	pairID := createFundedPair(t, eng)
	tripDriftLock(t, eng, pairID)
	ctx := context.Background()

	pair, _ := eng.GetPair(pairID)
	if err := eng.RebalanceLiquidity(ctx, testMarketMaker, pairID, pair.TargetX, pair.ReserveY); err != nil {
		t.Fatalf("rebalance: %v", err)
	}

	pair, _ = eng.GetPair(pairID)
	if pair.TargetYBasedLock {
		t.Fatalf("lock flag still set after rebalance")
	}
	if _, err := eng.SwapXForY(ctx, testTrader, pairID, uint256.NewInt(1_000), nil); err != nil {
		t.Fatalf("swap after rebalance: %v", err)
	}
}

func TestDriftWithinThresholdDoesNotLock(t *testing.T) {
	eng, _, _, _ := newTestEngine(t)
	pairID := createFundedPair(t, eng)
	ctx := context.Background()

	if _, err := eng.SwapXForY(ctx, testTrader, pairID, uint256.NewInt(10_000), nil); err != nil {
		t.Fatalf("baseline swap: %v", err)
	}
	// ~4% drift stays under the 5% threshold.
	if err := eng.Withdraw(ctx, testMarketMaker, pairID, "TKY", uint256.NewInt(40_000)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := eng.SwapXForY(ctx, testTrader, pairID, uint256.NewInt(1_000), nil); err != nil {
		t.Fatalf("swap within threshold: %v", err)
	}
}

func TestImpliedTargetYClampsAtZero(t *testing.T) {
	pair := &model.TradingPair{
		ReserveX: uint256.NewInt(10),
		ReserveY: uint256.NewInt(5),
		TargetX:  uint256.NewInt(100),
	}
	params := model.PairParameters{
		MultX: uint256.NewInt(fixedpoint.PriceScale),
		MultY: uint256.NewInt(fixedpoint.PriceScale),
	}
	implied, err := impliedTargetY(pair, params)
	if err != nil {
		t.Fatalf("implied target: %v", err)
	}
	if !implied.IsZero() {
		t.Fatalf("implied target = %s, want 0", implied.Dec())
	}
}

func TestDriftThresholdIsStrict(t *testing.T) {
	reference := uint256.NewInt(1_000_000)
	if exceedsDriftThreshold(uint256.NewInt(50_000), reference) {
		t.Fatalf("exactly 5%% must not exceed the threshold")
	}
	if !exceedsDriftThreshold(uint256.NewInt(50_001), reference) {
		t.Fatalf("one past 5%% must exceed the threshold")
	}
}
