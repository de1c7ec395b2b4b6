package engine

import "errors"

// Authorization failures. Market maker and administrator are independent
// capabilities guarding disjoint operation sets.
var (
	ErrNotMarketMaker = errors.New("caller is not the market maker")
	ErrNotAdmin       = errors.New("caller is not the administrator")
)

// Existence failures.
var (
	ErrPairExists   = errors.New("pair already exists")
	ErrPairNotFound = errors.New("pair does not exist")
)

// Validation failures.
var (
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidConcentration = errors.New("concentration out of range")
	ErrInvalidTokenPair     = errors.New("token pair is invalid")
	ErrDecimalConfig        = errors.New("decimal normalization mismatch")
	ErrZeroMultiplier       = errors.New("price multiplier is zero")
	ErrInvalidRates         = errors.New("fee rate plus spread exceeds scale")
	ErrTargetExceedsReserve = errors.New("target exceeds reserve")
)

// Liquidity failures.
var (
	ErrInsufficientReserve   = errors.New("insufficient reserve")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
)

// Protection failures.
var (
	ErrPairLocked    = errors.New("pair is locked")
	ErrTradingHalted = errors.New("trading is halted")
	ErrReentrantCall = errors.New("reentrant call")
)

// Quote failures.
var (
	ErrSlippageExceeded = errors.New("output below caller minimum")
	ErrStaleParameters  = errors.New("curve parameters are stale or unset")
)

// State failures.
var (
	ErrAlreadyPaused = errors.New("trading is already paused")
	ErrNotPaused     = errors.New("trading is not paused")
)
