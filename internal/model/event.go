package model

import "encoding/json"

// Event kinds emitted by the engine, one per state mutation.
const (
	EventPairCreated        = "pair_created"
	EventParamsUpdated      = "params_updated"
	EventCurveUpdated       = "curve_updated"
	EventSpreadUpdated      = "spread_updated"
	EventRebalanced         = "rebalanced"
	EventDeposit            = "deposit"
	EventWithdraw           = "withdraw"
	EventSwap               = "swap"
	EventPairLocked         = "pair_locked"
	EventUnlocked           = "unlocked"
	EventPaused             = "paused"
	EventResumed            = "resumed"
	EventMarketMakerChanged = "market_maker_changed"
)

// Event is the durable, ordered record emitted for every state mutation.
type Event struct {
	Seq       uint64          `json:"seq"`
	Height    uint64          `json:"height"`
	Timestamp uint64          `json:"timestamp"`
	Kind      string          `json:"kind"`
	PairID    string          `json:"pair_id,omitempty"`
	Caller    string          `json:"caller,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// PairCreatedData is the pair_created event payload.
type PairCreatedData struct {
	TokenX          string `json:"token_x"`
	TokenY          string `json:"token_y"`
	Concentration   string `json:"concentration"`
	XRetainDecimals uint8  `json:"x_retain_decimals"`
	YRetainDecimals uint8  `json:"y_retain_decimals"`
}

// ParamsUpdatedData is the payload for the full and curve-only update events.
type ParamsUpdatedData struct {
	Concentration string `json:"concentration,omitempty"`
	MultX         string `json:"mult_x,omitempty"`
	MultY         string `json:"mult_y,omitempty"`
	BaseInvariant string `json:"base_invariant,omitempty"`
	FeeRate       string `json:"fee_rate,omitempty"`
	Spread        string `json:"spread,omitempty"`
}

// RebalancedData is the rebalanced event payload.
type RebalancedData struct {
	TargetX          string `json:"target_x"`
	TargetYReference string `json:"target_y_reference"`
}

// TransferData is the deposit and withdraw event payload.
type TransferData struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

// SwapData is the swap event payload.
type SwapData struct {
	TokenIn   string `json:"token_in"`
	TokenOut  string `json:"token_out"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
}

// LockData is the pair_locked event payload.
type LockData struct {
	ImpliedTargetY string `json:"implied_target_y"`
	Reference      string `json:"reference"`
}
