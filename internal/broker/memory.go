package broker

import (
	"context"
	"sync"

	"rng/pkg/models"
)

// MemoryBroker delivers messages synchronously to subscribers in the same
// process. It backs tests and single-binary deployments.
type MemoryBroker struct {
	mu          sync.RWMutex
	handlers    map[string][]HandlerFunc
	published   []PublishedMessage
	serviceName string
}

type PublishedMessage struct {
	Topic   string
	Message models.MessageEnvelope
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{handlers: make(map[string][]HandlerFunc)}
}

func (b *MemoryBroker) Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error {
	b.mu.Lock()
	b.published = append(b.published, PublishedMessage{Topic: topic, Message: msg})
	handlers := append([]HandlerFunc(nil), b.handlers[topic]...)
	b.mu.Unlock()

	for _, handler := range handlers {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Consume registers handler for topic and blocks until ctx is done.
func (b *MemoryBroker) Consume(ctx context.Context, topic string, handler HandlerFunc) error {
	b.Subscribe(topic, handler)
	<-ctx.Done()
	return ctx.Err()
}

func (b *MemoryBroker) Subscribe(topic string, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

func (b *MemoryBroker) Published() []PublishedMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]PublishedMessage, len(b.published))
	copy(out, b.published)
	return out
}

func (b *MemoryBroker) SetServiceName(name string) {
	b.serviceName = name
}

func (b *MemoryBroker) Close() error {
	return nil
}
