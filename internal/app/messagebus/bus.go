package messagebus

import (
	"github.com/burenotti/hoops_backend/internal/domain"
	"log/slog"
	"sync"
)

type EventHandler func(event domain.Event) error

// MessageBus fans events out to registered handlers, each on its own
// goroutine. Close waits for handlers still running.
type MessageBus struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	wg       sync.WaitGroup
}

func New(logger *slog.Logger) *MessageBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageBus{
		logger:   logger,
		handlers: make(map[string][]EventHandler),
	}
}

func (b *MessageBus) Register(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func (b *MessageBus) PublishEvents(events ...domain.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, event := range events {
		for _, handler := range b.handlers[event.Type()] {
			b.wg.Add(1)
			go func(handler EventHandler, event domain.Event) {
				defer b.wg.Done()
				if err := handler(event); err != nil {
					b.logger.Error("failed to handle event", "type", event.Type(), "err", err)
				}
			}(handler, event)
		}
	}
	return nil
}

func (b *MessageBus) Close() {
	b.wg.Wait()
}
