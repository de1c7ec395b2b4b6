package storage

import (
	"context"

	"curvemm/internal/model"
)

// EventSink is a durable, ordered sink for engine events.
type EventSink interface {
	PutEventBatch(ctx context.Context, events []model.Event) error
}

// MultiSink fans event batches out to several sinks in order.
type MultiSink []EventSink

func (m MultiSink) PutEventBatch(ctx context.Context, events []model.Event) error {
	for _, sink := range m {
		if err := sink.PutEventBatch(ctx, events); err != nil {
			return err
		}
	}
	return nil
}
