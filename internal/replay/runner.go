package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"curvemm/internal/engine"
	"curvemm/internal/model"
)

// SnapshotStore persists final pair state and replay progress.
type SnapshotStore interface {
	UpsertPairs(ctx context.Context, pairs []model.PairSnapshot) error
	SaveState(ctx context.Context, name string, seq uint64) error
}

// RunConfig holds runtime settings for the replayer.
type RunConfig struct {
	InputPath string
	// StateName keys the progress row in the snapshot store.
	StateName string
	// StopOnError aborts the replay on the first rejected operation instead
	// of recording it and continuing.
	StopOnError bool
}

// Summary reports what a replay did.
type Summary struct {
	Ops      uint64
	Applied  uint64
	Rejected uint64
}

// Runner feeds a JSONL operation stream through the engine, one serialized
// unit per line, in file order.
type Runner struct {
	cfg       RunConfig
	engine    *engine.Engine
	snapshots SnapshotStore
	logger    *zap.Logger
}

// NewRunner builds a Runner with its dependencies. The snapshot store may be
// nil, in which case final state is not persisted.
func NewRunner(cfg RunConfig, eng *engine.Engine, snapshots SnapshotStore, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StateName == "" {
		cfg.StateName = "replay"
	}
	return &Runner{cfg: cfg, engine: eng, snapshots: snapshots, logger: logger}
}

// Run executes the replay loop.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	if r.engine == nil {
		return summary, fmt.Errorf("engine is nil")
	}
	if r.cfg.InputPath == "" {
		return summary, fmt.Errorf("input path is required")
	}

	file, err := os.Open(r.cfg.InputPath)
	if err != nil {
		return summary, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var op model.Op
		if err := json.Unmarshal(raw, &op); err != nil {
			return summary, fmt.Errorf("line %d: decode op: %w", line, err)
		}

		summary.Ops++
		if err := r.apply(ctx, op); err != nil {
			summary.Rejected++
			r.logger.Warn("op rejected",
				zap.Int("line", line),
				zap.String("op", op.Op),
				zap.String("caller", op.Caller),
				zap.Error(err),
			)
			if r.cfg.StopOnError {
				return summary, fmt.Errorf("line %d: %s: %w", line, op.Op, err)
			}
			continue
		}
		summary.Applied++
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("read input: %w", err)
	}

	if r.snapshots != nil {
		if err := r.snapshots.UpsertPairs(ctx, r.engine.Snapshots()); err != nil {
			return summary, fmt.Errorf("store snapshots: %w", err)
		}
		if err := r.snapshots.SaveState(ctx, r.cfg.StateName, summary.Ops); err != nil {
			return summary, fmt.Errorf("store state: %w", err)
		}
	}

	r.logger.Info("replay complete",
		zap.Uint64("ops", summary.Ops),
		zap.Uint64("applied", summary.Applied),
		zap.Uint64("rejected", summary.Rejected),
	)
	return summary, nil
}
