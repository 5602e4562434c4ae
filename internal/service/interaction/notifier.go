package interaction

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
)

// Sink delivers a single interaction event to the external surface.
type Sink interface {
	Send(ctx context.Context, event models.InteractionEvent) error
}

const (
	queueSize   = 64
	sendTimeout = 10 * time.Second
)

// Notifier decouples commerce operations from the interaction sink. Events
// are queued and delivered by a background worker; a full queue drops the
// event and a failed delivery is logged and discarded. Publish never
// blocks and never returns an error.
type Notifier struct {
	sink   Sink
	events chan models.InteractionEvent
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewNotifier starts the delivery worker. A nil sink yields a notifier
// that silently drops everything, which keeps call sites unconditional.
func NewNotifier(sink Sink, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &Notifier{
		sink:   sink,
		events: make(chan models.InteractionEvent, queueSize),
		logger: logger,
	}

	n.wg.Add(1)
	go n.run()

	return n
}

// Publish enqueues an event for best-effort delivery.
func (n *Notifier) Publish(event models.InteractionEvent) {
	select {
	case n.events <- event:
	default:
		n.logger.Debug("interaction event dropped, queue full",
			zap.String("user_id", event.UserID),
			zap.String("product_id", event.ProductID),
			zap.String("type", event.Kind))
	}
}

// Close stops accepting events and waits for the worker to drain the queue.
func (n *Notifier) Close() {
	close(n.events)
	n.wg.Wait()
}

func (n *Notifier) run() {
	defer n.wg.Done()

	for event := range n.events {
		if n.sink == nil {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := n.sink.Send(ctx, event); err != nil {
			n.logger.Warn("interaction sink delivery failed",
				zap.String("user_id", event.UserID),
				zap.String("product_id", event.ProductID),
				zap.String("type", event.Kind),
				zap.Error(err))
		}
		cancel()
	}
}
