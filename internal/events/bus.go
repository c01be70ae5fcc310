// Package events delivers domain events from the drive service to the
// workflow engine in-process.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"campusdrive/internal/domain/models/events"
)

// Bus fans an event out to every subscribed handler, synchronously and in
// subscription order. A failing handler does not stop the others.
type Bus struct {
	mu       sync.RWMutex
	handlers []events.Handler
	logger   *slog.Logger
}

// NewBus creates a bus with no subscribers
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe registers h for every future event
func (b *Bus) Subscribe(h events.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish implements events.Publisher
func (b *Bus) Publish(ctx context.Context, ev events.Event) error {
	b.mu.RLock()
	handlers := make([]events.Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h.HandleEvent(ctx, ev); err != nil {
			b.logger.Warn("event handler failed",
				"type", ev.Type,
				"folder_id", ev.FolderID,
				"file_id", ev.FileID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("publish %s: %w", ev.Type, errors.Join(errs...))
	}
	return nil
}
