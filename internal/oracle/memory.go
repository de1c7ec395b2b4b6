package oracle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type version struct {
	value       uint256.Int
	timestamp   uint64
	height      uint64
	visibleFrom uint64
}

// MemoryStore is the in-process host implementation of Store. Every write is
// kept as a version stamped with the unit that wrote it and becomes visible
// one unit later, so a writer can never trade against its own fresh prices
// within the unit that set them.
type MemoryStore struct {
	writer  string
	height  uint64
	now     uint64
	entries map[string]map[common.Hash][]version
}

// NewMemoryStore opens a store whose writes land in the namespace of writer.
func NewMemoryStore(writer string) *MemoryStore {
	return &MemoryStore{
		writer:  writer,
		height:  1,
		entries: map[string]map[common.Hash][]version{},
	}
}

// Set writes one entry, visible from the next unit.
func (s *MemoryStore) Set(key common.Hash, value *uint256.Int) error {
	if value == nil {
		return fmt.Errorf("oracle: nil value for key %s", key.Hex())
	}
	s.put(key, value)
	return nil
}

// SetBatch writes all entries or none.
func (s *MemoryStore) SetBatch(keys []common.Hash, values []*uint256.Int) error {
	if len(keys) != len(values) {
		return fmt.Errorf("oracle: batch size mismatch: %d keys, %d values", len(keys), len(values))
	}
	for i, v := range values {
		if v == nil {
			return fmt.Errorf("oracle: nil value for key %s", keys[i].Hex())
		}
	}
	for i, k := range keys {
		s.put(k, values[i])
	}
	return nil
}

func (s *MemoryStore) put(key common.Hash, value *uint256.Int) {
	ns, ok := s.entries[s.writer]
	if !ok {
		ns = map[common.Hash][]version{}
		s.entries[s.writer] = ns
	}
	v := version{
		timestamp:   s.now,
		height:      s.height,
		visibleFrom: s.height + 1,
	}
	v.value.Set(value)
	ns[key] = append(ns[key], v)
}

// Get returns the visible value, or zero when no visible version exists.
func (s *MemoryStore) Get(owner string, key common.Hash) *uint256.Int {
	value, _, _ := s.GetWithTimestamp(owner, key)
	return value
}

// GetWithTimestamp returns the visible value and the timestamp/height of the
// write that produced it. Absent keys read as zero at timestamp and height 0.
func (s *MemoryStore) GetWithTimestamp(owner string, key common.Hash) (*uint256.Int, uint64, uint64) {
	versions := s.entries[owner][key]
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].visibleFrom <= s.height {
			return new(uint256.Int).Set(&versions[i].value), versions[i].timestamp, versions[i].height
		}
	}
	return new(uint256.Int), 0, 0
}

// Writer returns the namespace this handle writes into.
func (s *MemoryStore) Writer() string {
	return s.writer
}

// Height returns the current serialized unit.
func (s *MemoryStore) Height() uint64 {
	return s.height
}

// Advance closes the current unit: writes staged in it become visible.
func (s *MemoryStore) Advance(timestamp uint64) uint64 {
	s.height++
	s.now = timestamp
	return s.height
}
