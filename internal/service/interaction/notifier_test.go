package interaction

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
)

type recordingSink struct {
	mu     sync.Mutex
	events []models.InteractionEvent
	err    error
}

func (s *recordingSink) Send(_ context.Context, event models.InteractionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingSink) all() []models.InteractionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.InteractionEvent{}, s.events...)
}

func TestPublishDeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	n := NewNotifier(sink, nil)

	n.Publish(models.InteractionEvent{UserID: "u1", ProductID: "p1", Kind: models.InteractionCart})
	n.Publish(models.InteractionEvent{UserID: "u1", ProductID: "p2", Kind: models.InteractionView})
	n.Close()

	events := sink.all()
	require.Len(t, events, 2)
	assert.Equal(t, "p1", events[0].ProductID)
	assert.Equal(t, models.InteractionCart, events[0].Kind)
	assert.Equal(t, "p2", events[1].ProductID)
	assert.Equal(t, models.InteractionView, events[1].Kind)
}

func TestNilSinkDropsSilently(t *testing.T) {
	n := NewNotifier(nil, nil)

	n.Publish(models.InteractionEvent{UserID: "u1", ProductID: "p1", Kind: models.InteractionCart})
	n.Close()
}

func TestSinkFailureIsSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("boom")}
	n := NewNotifier(sink, nil)

	n.Publish(models.InteractionEvent{UserID: "u1", ProductID: "p1", Kind: models.InteractionCart})
	n.Publish(models.InteractionEvent{UserID: "u1", ProductID: "p2", Kind: models.InteractionCart})
	n.Close()

	// Both deliveries are attempted despite the first one failing.
	assert.Len(t, sink.all(), 2)
}

func TestPublishNeverBlocksOnFullQueue(t *testing.T) {
	// No worker consumes because the sink blocks until we let it go.
	release := make(chan struct{})
	blocking := &blockingSink{release: release}
	n := NewNotifier(blocking, nil)

	// Overfill the queue well past its capacity. Publish must return every
	// time instead of blocking the caller.
	for i := 0; i < queueSize*3; i++ {
		n.Publish(models.InteractionEvent{UserID: "u1", ProductID: "p1", Kind: models.InteractionCart})
	}

	close(release)
	n.Close()
}

type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Send(_ context.Context, _ models.InteractionEvent) error {
	<-s.release
	return nil
}
