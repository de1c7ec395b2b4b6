package model

// Operation names accepted by the replayer.
const (
	OpCreatePair          = "create_pair"
	OpUpdateParams        = "update_params"
	OpUpdateCurve         = "update_curve"
	OpSetSpread           = "set_spread"
	OpRebalance           = "rebalance"
	OpDeposit             = "deposit"
	OpWithdraw            = "withdraw"
	OpUnlock              = "unlock"
	OpSwapXForY           = "swap_x_for_y"
	OpSwapYForX           = "swap_y_for_x"
	OpPause               = "pause"
	OpResume              = "resume"
	OpReassignMarketMaker = "reassign_market_maker"
)

// Op is one replayed operation. Each line of the input file is one op and
// runs as its own serialized unit of execution. Numeric fields are decimal
// strings; unused fields stay empty.
type Op struct {
	Op     string `json:"op"`
	Caller string `json:"caller"`
	PairID string `json:"pair_id,omitempty"`

	TokenX          string `json:"token_x,omitempty"`
	TokenY          string `json:"token_y,omitempty"`
	XRetainDecimals uint8  `json:"x_retain_decimals,omitempty"`
	YRetainDecimals uint8  `json:"y_retain_decimals,omitempty"`

	Token  string `json:"token,omitempty"`
	Amount string `json:"amount,omitempty"`
	MinOut string `json:"min_out,omitempty"`

	Concentration    string `json:"concentration,omitempty"`
	MultX            string `json:"mult_x,omitempty"`
	MultY            string `json:"mult_y,omitempty"`
	BaseInvariant    string `json:"base_invariant,omitempty"`
	FeeRate          string `json:"fee_rate,omitempty"`
	Spread           string `json:"spread,omitempty"`
	TargetX          string `json:"target_x,omitempty"`
	TargetYReference string `json:"target_y_reference,omitempty"`

	NewMarketMaker string `json:"new_market_maker,omitempty"`
}
