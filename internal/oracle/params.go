package oracle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"curvemm/internal/model"
)

// ParamStore persists the six PairParameters fields of a pair as independent
// oracle entries and reassembles them on read. All writes go through a single
// atomic batch.
type ParamStore struct {
	store Store
	owner string
}

// NewParamStore binds a param store to the oracle namespace of owner. The
// owner must match the identity the underlying store writes as.
func NewParamStore(store Store, owner string) *ParamStore {
	return &ParamStore{store: store, owner: owner}
}

// WriteAll persists a full parameter set in one batch.
func (p *ParamStore) WriteAll(pairID common.Hash, params model.PairParameters) error {
	keys := make([]common.Hash, 0, len(ParamPrefixes))
	for _, prefix := range ParamPrefixes {
		keys = append(keys, ParamKey(prefix, pairID))
	}
	values := []*uint256.Int{
		params.Concentration,
		params.MultX,
		params.MultY,
		params.BaseInvariant,
		params.FeeRate,
		params.Spread,
	}
	if err := p.store.SetBatch(keys, values); err != nil {
		return fmt.Errorf("write parameters: %w", err)
	}
	return nil
}

// WriteCurve persists only the curve fields (concentration and multipliers).
func (p *ParamStore) WriteCurve(pairID common.Hash, concentration, multX, multY *uint256.Int) error {
	keys := []common.Hash{
		ParamKey(PrefixConcentration, pairID),
		ParamKey(PrefixMultX, pairID),
		ParamKey(PrefixMultY, pairID),
	}
	values := []*uint256.Int{concentration, multX, multY}
	if err := p.store.SetBatch(keys, values); err != nil {
		return fmt.Errorf("write curve parameters: %w", err)
	}
	return nil
}

// WriteSpread persists only the spread field.
func (p *ParamStore) WriteSpread(pairID common.Hash, spread *uint256.Int) error {
	if err := p.store.Set(ParamKey(PrefixSpread, pairID), spread); err != nil {
		return fmt.Errorf("write spread: %w", err)
	}
	return nil
}

// Read assembles the currently visible parameter set for a pair.
func (p *ParamStore) Read(pairID common.Hash) model.PairParameters {
	params, _, _ := p.ReadWithTimestamp(pairID)
	return params
}

// ReadWithTimestamp assembles the visible parameter set together with the
// timestamp and height of the newest write among the six fields, for
// staleness monitoring.
func (p *ParamStore) ReadWithTimestamp(pairID common.Hash) (model.PairParameters, uint64, uint64) {
	var newestTS, newestHeight uint64
	read := func(prefix string) *uint256.Int {
		value, ts, height := p.store.GetWithTimestamp(p.owner, ParamKey(prefix, pairID))
		if height > newestHeight {
			newestHeight = height
			newestTS = ts
		}
		return value
	}
	params := model.PairParameters{
		Concentration: read(PrefixConcentration),
		MultX:         read(PrefixMultX),
		MultY:         read(PrefixMultY),
		BaseInvariant: read(PrefixBaseInvariant),
		FeeRate:       read(PrefixFeeRate),
		Spread:        read(PrefixSpread),
	}
	return params, newestTS, newestHeight
}
