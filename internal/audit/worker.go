package audit

import (
	"context"
	"log/slog"
)

// worker drains queued events into the store until the inbox is closed.
type worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func (w *worker) run(ctx context.Context) {
	for event := range w.inbox {
		if err := w.store.Append(ctx, event); err != nil {
			w.logger.WarnContext(ctx, "audit event dropped",
				"action", event.Action,
				"user_id", event.UserID,
				"error", err,
			)
		}
	}
}
