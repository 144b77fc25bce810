package events

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, e StatusChanged) error {
	p.log.Info("order status changed",
		zap.Uint("order_id", e.OrderID),
		zap.String("order_no", e.OrderNo),
		zap.String("from", string(e.FromStatus)),
		zap.String("to", string(e.ToStatus)),
		zap.Uint("changed_by", e.ChangedBy),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
