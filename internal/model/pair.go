package model

import "github.com/holiman/uint256"

// TradingPair holds the live inventory state for one market-made pair.
type TradingPair struct {
	TokenX           string
	TokenY           string
	ReserveX         *uint256.Int
	ReserveY         *uint256.Int
	TargetX          *uint256.Int
	XRetainDecimals  uint8
	YRetainDecimals  uint8
	TargetYBasedLock bool
	TargetYReference *uint256.Int
	Exists           bool
}

// PairParameters is one consistent read of the six curve parameters from the
// oracle. The engine never caches it across calls.
type PairParameters struct {
	Concentration *uint256.Int
	MultX         *uint256.Int
	MultY         *uint256.Int
	BaseInvariant *uint256.Int
	FeeRate       *uint256.Int
	Spread        *uint256.Int
}

// PairSnapshot is the JSON representation of a pair used for storage.
type PairSnapshot struct {
	PairID           string `json:"pair_id"`
	TokenX           string `json:"token_x"`
	TokenY           string `json:"token_y"`
	ReserveX         string `json:"reserve_x"`
	ReserveY         string `json:"reserve_y"`
	TargetX          string `json:"target_x"`
	XRetainDecimals  uint8  `json:"x_retain_decimals"`
	YRetainDecimals  uint8  `json:"y_retain_decimals"`
	TargetYBasedLock bool   `json:"target_y_based_lock"`
	TargetYReference string `json:"target_y_reference"`
}

// Snapshot converts live pair state into its storage form.
func (p *TradingPair) Snapshot(pairID string) PairSnapshot {
	return PairSnapshot{
		PairID:           pairID,
		TokenX:           p.TokenX,
		TokenY:           p.TokenY,
		ReserveX:         p.ReserveX.Dec(),
		ReserveY:         p.ReserveY.Dec(),
		TargetX:          p.TargetX.Dec(),
		XRetainDecimals:  p.XRetainDecimals,
		YRetainDecimals:  p.YRetainDecimals,
		TargetYBasedLock: p.TargetYBasedLock,
		TargetYReference: p.TargetYReference.Dec(),
	}
}
