package bridge

import (
	"context"
	"log/slog"
)

// Attach routes the satellite topics to router: filter-input re-runs the
// search with the published text, filter-input-enter launches the first
// match.
func Attach(ctx context.Context, h *Hub, router Router, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	h.Subscribe(TopicFilterInput, func(msg Message) {
		matches := router.Search(msg.Text())
		logger.Debug("Satellite filter applied", "sender", msg.Sender, "matches", len(matches))
	})
	h.Subscribe(TopicFilterInputEnter, func(msg Message) {
		entry, err := router.Submit(ctx)
		if err != nil {
			logger.Warn("Satellite submit failed", "sender", msg.Sender, "error", err)
			return
		}
		logger.Info("Satellite submit", "sender", msg.Sender, "entry", entry.ID)
	})
}
