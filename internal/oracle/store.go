package oracle

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Store is the external delayed-visibility key-value oracle. Writes go to the
// namespace of the identity the store was opened with and become visible only
// from the serialized unit after the one that wrote them; reads are public.
// Absent keys read as zero.
type Store interface {
	// Set writes a single entry under the writer's namespace.
	Set(key common.Hash, value *uint256.Int) error
	// SetBatch writes several entries atomically: readers never observe a
	// partial mix of old and new values.
	SetBatch(keys []common.Hash, values []*uint256.Int) error
	// Get returns the currently visible value for owner/key.
	Get(owner string, key common.Hash) *uint256.Int
	// GetWithTimestamp additionally reports when the visible value was
	// written (wall-clock timestamp and unit height).
	GetWithTimestamp(owner string, key common.Hash) (value *uint256.Int, timestamp uint64, height uint64)
	// Writer is the identity this store handle writes as.
	Writer() string
	// Height is the current serialized unit.
	Height() uint64
	// Advance closes the current unit and opens the next one at the given
	// timestamp, returning the new height.
	Advance(timestamp uint64) uint64
}
