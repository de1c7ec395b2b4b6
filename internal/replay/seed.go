package replay

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"curvemm/internal/token"
)

// SeedLedger registers assets ("SYM:decimals") and mints opening balances
// ("account:SYM:amount") into a fresh ledger.
func SeedLedger(ledger *token.MemoryLedger, assets, mints []string) error {
	for _, spec := range assets {
		parts := strings.Split(spec, ":")
		if len(parts) != 2 {
			return fmt.Errorf("invalid asset spec %q (want SYM:decimals)", spec)
		}
		decimals, err := strconv.ParseUint(parts[1], 10, 8)
		if err != nil {
			return fmt.Errorf("invalid asset decimals in %q: %w", spec, err)
		}
		ledger.RegisterAsset(parts[0], uint8(decimals))
	}

	for _, spec := range mints {
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return fmt.Errorf("invalid mint spec %q (want account:SYM:amount)", spec)
		}
		amount, err := uint256.FromDecimal(parts[2])
		if err != nil {
			return fmt.Errorf("invalid mint amount in %q: %w", spec, err)
		}
		if err := ledger.Mint(parts[1], parts[0], amount); err != nil {
			return err
		}
	}
	return nil
}
