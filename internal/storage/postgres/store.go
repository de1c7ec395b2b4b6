package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"curvemm/internal/model"
)

// Store provides Postgres persistence for events and pair snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertEvents appends engine events, skipping sequence numbers already seen.
func (s *Store) InsertEvents(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(`
			INSERT INTO amm_events (
				seq, height, event_ts, kind, pair_id, caller, data, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			ON CONFLICT (seq) DO NOTHING
		`,
			int64(event.Seq),
			int64(event.Height),
			int64(event.Timestamp),
			event.Kind,
			event.PairID,
			event.Caller,
			[]byte(event.Data),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutEventBatch satisfies the storage.EventSink interface.
func (s *Store) PutEventBatch(ctx context.Context, events []model.Event) error {
	return s.InsertEvents(ctx, events)
}

// UpsertPairs inserts or updates pair snapshots.
func (s *Store) UpsertPairs(ctx context.Context, pairs []model.PairSnapshot) error {
	if len(pairs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pair := range pairs {
		batch.Queue(`
			INSERT INTO amm_pairs (
				pair_id, token_x, token_y, reserve_x, reserve_y, target_x,
				x_retain_decimals, y_retain_decimals, locked, target_y_reference,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
			ON CONFLICT (pair_id)
			DO UPDATE SET
				reserve_x = EXCLUDED.reserve_x,
				reserve_y = EXCLUDED.reserve_y,
				target_x = EXCLUDED.target_x,
				locked = EXCLUDED.locked,
				target_y_reference = EXCLUDED.target_y_reference,
				updated_at = now()
		`,
			pair.PairID,
			pair.TokenX,
			pair.TokenY,
			pair.ReserveX,
			pair.ReserveY,
			pair.TargetX,
			int16(pair.XRetainDecimals),
			int16(pair.YRetainDecimals),
			pair.TargetYBasedLock,
			pair.TargetYReference,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pairs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the last stored event sequence for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var seq uint64
	row := s.pool.QueryRow(ctx, `SELECT last_event_seq FROM replay_state WHERE name=$1`, name)
	if err := row.Scan(&seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return seq, true, nil
}

// SaveState upserts the last stored event sequence for a name.
func (s *Store) SaveState(ctx context.Context, name string, seq uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO replay_state (name, last_event_seq, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_event_seq = EXCLUDED.last_event_seq, updated_at = now()
	`, name, seq)
	return err
}
