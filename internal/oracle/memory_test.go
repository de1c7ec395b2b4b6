package oracle

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"curvemm/internal/model"
)

var testPairID = DerivePairID("TKX", "TKY")

func TestWritesVisibleOneUnitLater(t *testing.T) {
	store := NewMemoryStore("engine")
	key := ParamKey(PrefixFeeRate, testPairID)

	if err := store.Set(key, uint256.NewInt(3_000)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := store.Get("engine", key); !got.IsZero() {
		t.Fatalf("fresh write already visible: %s", got.Dec())
	}

	store.Advance(1_700_000_000)
	got, ts, height := store.GetWithTimestamp("engine", key)
	if !got.Eq(uint256.NewInt(3_000)) {
		t.Fatalf("value after advance = %s, want 3000", got.Dec())
	}
	if ts != 0 {
		t.Fatalf("timestamp = %d, want 0 (write happened in the first unit)", ts)
	}
	if height != 1 {
		t.Fatalf("height = %d, want 1", height)
	}
}

func TestNewestVisibleVersionWins(t *testing.T) {
	store := NewMemoryStore("engine")
	key := ParamKey(PrefixSpread, testPairID)

	if err := store.Set(key, uint256.NewInt(100)); err != nil {
		t.Fatalf("set: %v", err)
	}
	store.Advance(10)
	if err := store.Set(key, uint256.NewInt(200)); err != nil {
		t.Fatalf("set: %v", err)
	}

	// The second write stays invisible until its unit closes.
	if got := store.Get("engine", key); !got.Eq(uint256.NewInt(100)) {
		t.Fatalf("value = %s, want 100", got.Dec())
	}
	store.Advance(20)
	if got := store.Get("engine", key); !got.Eq(uint256.NewInt(200)) {
		t.Fatalf("value = %s, want 200", got.Dec())
	}
}

func TestAbsentKeyReadsZero(t *testing.T) {
	store := NewMemoryStore("engine")
	value, ts, height := store.GetWithTimestamp("engine", common.HexToHash("0x01"))
	if !value.IsZero() || ts != 0 || height != 0 {
		t.Fatalf("absent key = (%s, %d, %d), want zeros", value.Dec(), ts, height)
	}
}

func TestOwnerNamespacesAreIsolated(t *testing.T) {
	store := NewMemoryStore("engine")
	key := ParamKey(PrefixMultX, testPairID)
	if err := store.Set(key, uint256.NewInt(42)); err != nil {
		t.Fatalf("set: %v", err)
	}
	store.Advance(0)
	if got := store.Get("someone-else", key); !got.IsZero() {
		t.Fatalf("foreign namespace read %s, want zero", got.Dec())
	}
}

func TestSetBatchValidation(t *testing.T) {
	store := NewMemoryStore("engine")
	keys := []common.Hash{ParamKey(PrefixMultX, testPairID), ParamKey(PrefixMultY, testPairID)}
	if err := store.SetBatch(keys, []*uint256.Int{uint256.NewInt(1)}); err == nil {
		t.Fatalf("expected error for size mismatch")
	}
	if err := store.SetBatch(keys, []*uint256.Int{uint256.NewInt(1), nil}); err == nil {
		t.Fatalf("expected error for nil value")
	}
	// A rejected batch must write nothing.
	store.Advance(0)
	if got := store.Get("engine", keys[0]); !got.IsZero() {
		t.Fatalf("rejected batch leaked a write: %s", got.Dec())
	}
}

func TestStoredValuesAreCopied(t *testing.T) {
	store := NewMemoryStore("engine")
	key := ParamKey(PrefixBaseInvariant, testPairID)
	value := uint256.NewInt(7)
	if err := store.Set(key, value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value.SetUint64(99)
	store.Advance(0)
	if got := store.Get("engine", key); !got.Eq(uint256.NewInt(7)) {
		t.Fatalf("stored value aliased caller memory: %s", got.Dec())
	}
}

func TestParamStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore("engine")
	params := NewParamStore(store, store.Writer())

	want := model.PairParameters{
		Concentration: uint256.NewInt(2_000_000),
		MultX:         uint256.NewInt(1_000_000_000_000_000_000),
		MultY:         uint256.NewInt(2_000_000_000_000_000_000),
		BaseInvariant: uint256.NewInt(1_000_000_000_000),
		FeeRate:       uint256.NewInt(3_000),
		Spread:        uint256.NewInt(500),
	}
	if err := params.WriteAll(testPairID, want); err != nil {
		t.Fatalf("write all: %v", err)
	}
	store.Advance(100)

	got, ts, height := params.ReadWithTimestamp(testPairID)
	if !got.Concentration.Eq(want.Concentration) ||
		!got.MultX.Eq(want.MultX) ||
		!got.MultY.Eq(want.MultY) ||
		!got.BaseInvariant.Eq(want.BaseInvariant) ||
		!got.FeeRate.Eq(want.FeeRate) ||
		!got.Spread.Eq(want.Spread) {
		t.Fatalf("round trip mismatch: %+v != %+v", got, want)
	}
	if height != 1 {
		t.Fatalf("newest height = %d, want 1", height)
	}
	if ts != 0 {
		t.Fatalf("newest timestamp = %d, want 0 (first unit opened at 0)", ts)
	}

	// A partial write bumps the newest height without touching other fields.
	if err := params.WriteSpread(testPairID, uint256.NewInt(900)); err != nil {
		t.Fatalf("write spread: %v", err)
	}
	store.Advance(200)
	got, ts, height = params.ReadWithTimestamp(testPairID)
	if !got.Spread.Eq(uint256.NewInt(900)) {
		t.Fatalf("spread = %s, want 900", got.Spread.Dec())
	}
	if !got.FeeRate.Eq(want.FeeRate) {
		t.Fatalf("fee rate changed by spread write: %s", got.FeeRate.Dec())
	}
	if height != 2 {
		t.Fatalf("newest height = %d, want 2", height)
	}
	if ts != 100 {
		t.Fatalf("newest timestamp = %d, want 100", ts)
	}
}

func TestDerivePairIDIsDirectional(t *testing.T) {
	if DerivePairID("TKX", "TKY") == DerivePairID("TKY", "TKX") {
		t.Fatalf("pair id must depend on token order")
	}
}
