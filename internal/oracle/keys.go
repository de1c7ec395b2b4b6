package oracle

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Fixed key prefixes for the six curve-parameter fields.
const (
	PrefixConcentration = "CONCENTRATION"
	PrefixMultX         = "MULT_X"
	PrefixMultY         = "MULT_Y"
	PrefixBaseInvariant = "BASE_INVARIANT"
	PrefixFeeRate       = "FEE_RATE"
	PrefixSpread        = "SPREAD"
)

// ParamPrefixes lists all field prefixes in their canonical batch order.
var ParamPrefixes = []string{
	PrefixConcentration,
	PrefixMultX,
	PrefixMultY,
	PrefixBaseInvariant,
	PrefixFeeRate,
	PrefixSpread,
}

// ParamKey derives the oracle key for one parameter field of one pair.
func ParamKey(prefix string, pairID common.Hash) common.Hash {
	return crypto.Keccak256Hash([]byte(prefix), pairID.Bytes())
}

// DerivePairID returns the deterministic pair identifier for a token pair.
// The separator keeps (ab, c) and (a, bc) distinct.
func DerivePairID(tokenX, tokenY string) common.Hash {
	return crypto.Keccak256Hash([]byte(tokenX), []byte{'/'}, []byte(tokenY))
}
