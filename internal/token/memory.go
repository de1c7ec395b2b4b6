package token

import (
	"fmt"

	"github.com/holiman/uint256"
)

// TransferHook runs after a transfer credits the hooked account. Hooks model
// asset-transfer callbacks from the hosting ledger and are what the engine's
// reentrancy guard defends against.
type TransferHook func(asset, from, to string, amount *uint256.Int)

type assetState struct {
	decimals uint8
	balances map[string]*uint256.Int
}

// MemoryLedger is an in-process Ledger used by tests and the replayer.
type MemoryLedger struct {
	assets map[string]*assetState
	hooks  map[string]TransferHook
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		assets: map[string]*assetState{},
		hooks:  map[string]TransferHook{},
	}
}

// RegisterAsset declares an asset with its decimal count.
func (l *MemoryLedger) RegisterAsset(asset string, decimals uint8) {
	if _, ok := l.assets[asset]; ok {
		return
	}
	l.assets[asset] = &assetState{decimals: decimals, balances: map[string]*uint256.Int{}}
}

// Mint credits an account out of thin air.
func (l *MemoryLedger) Mint(asset, account string, amount *uint256.Int) error {
	state, ok := l.assets[asset]
	if !ok {
		return fmt.Errorf("token: unknown asset %q", asset)
	}
	balance, ok := state.balances[account]
	if !ok {
		balance = new(uint256.Int)
		state.balances[account] = balance
	}
	balance.Add(balance, amount)
	return nil
}

// SetTransferHook installs a callback fired when account receives funds.
func (l *MemoryLedger) SetTransferHook(account string, hook TransferHook) {
	l.hooks[account] = hook
}

// Decimals returns the registered decimal count.
func (l *MemoryLedger) Decimals(asset string) (uint8, error) {
	state, ok := l.assets[asset]
	if !ok {
		return 0, fmt.Errorf("token: unknown asset %q", asset)
	}
	return state.decimals, nil
}

// Transfer moves amount of asset from one account to another, then fires the
// recipient's hook.
func (l *MemoryLedger) Transfer(asset, from, to string, amount *uint256.Int) error {
	state, ok := l.assets[asset]
	if !ok {
		return fmt.Errorf("token: unknown asset %q", asset)
	}
	balance := state.balances[from]
	if balance == nil || balance.Lt(amount) {
		return fmt.Errorf("token: insufficient %s balance for %q", asset, from)
	}
	balance.Sub(balance, amount)
	dest, ok := state.balances[to]
	if !ok {
		dest = new(uint256.Int)
		state.balances[to] = dest
	}
	dest.Add(dest, amount)

	if hook, ok := l.hooks[to]; ok {
		hook(asset, from, to, new(uint256.Int).Set(amount))
	}
	return nil
}

// BalanceOf returns a copy of the current balance.
func (l *MemoryLedger) BalanceOf(asset, account string) *uint256.Int {
	state, ok := l.assets[asset]
	if !ok {
		return new(uint256.Int)
	}
	balance, ok := state.balances[account]
	if !ok {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(balance)
}
