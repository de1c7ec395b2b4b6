package token

import "github.com/holiman/uint256"

// Ledger is the external fungible-transfer interface the engine consumes.
// The engine only ever moves funds between the caller and its own account.
type Ledger interface {
	// Decimals returns the decimal count of an asset.
	Decimals(asset string) (uint8, error)
	// Transfer moves amount of asset between accounts.
	Transfer(asset, from, to string, amount *uint256.Int) error
	// BalanceOf returns the on-hand balance; unknown accounts read as zero.
	BalanceOf(asset, account string) *uint256.Int
}
