// Package pubsub provides in-process topic-based publish/subscribe used to
// decouple the lobby, game sessions and websocket endpoint.
package pubsub

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Callback receives every message published to a subscribed topic.
type Callback func(message any)

// Subscription identifies one registered callback so it can be removed.
type Subscription struct {
	topic string
	fn    Callback
}

// Topic returns the topic this subscription listens on.
func (s *Subscription) Topic() string { return s.topic }

// Broker routes published messages to topic subscribers. Callbacks run
// synchronously on the publisher's goroutine, outside the broker lock, in
// subscription order. A panicking callback is recovered and logged so one
// bad subscriber cannot take down a publisher.
type Broker struct {
	mu     sync.RWMutex
	topics map[string][]*Subscription
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{topics: make(map[string][]*Subscription)}
}

// Subscribe registers the callback on the topic and returns a handle for
// Unsubscribe.
func (b *Broker) Subscribe(topic string, fn Callback) *Subscription {
	sub := &Subscription{topic: topic, fn: fn}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics[topic] = append(b.topics[topic], sub)
	return sub
}

// Unsubscribe removes the subscription. Unknown or already removed
// subscriptions are ignored.
func (b *Broker) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.topics[sub.topic]
	for i, s := range subs {
		if s == sub {
			b.topics[sub.topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.topics[sub.topic]) == 0 {
		delete(b.topics, sub.topic)
	}
}

// Publish delivers the message to every subscriber of the topic. The
// subscriber list is snapshotted under the lock; callbacks run after it is
// released, so a callback may subscribe or unsubscribe without deadlocking.
func (b *Broker) Publish(topic string, message any) {
	b.mu.RLock()
	subs := make([]*Subscription, len(b.topics[topic]))
	copy(subs, b.topics[topic])
	b.mu.RUnlock()

	for _, sub := range subs {
		deliver(sub, topic, message)
	}
}

func deliver(sub *Subscription, topic string, message any) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("topic", topic).Any("panic", r).Msg("Subscriber panicked")
		}
	}()
	sub.fn(message)
}

// CloseTopic drops every subscription on the topic.
func (b *Broker) CloseTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.topics, topic)
}

// CloseAll drops every subscription on every topic. Used at shutdown.
func (b *Broker) CloseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = make(map[string][]*Subscription)
}

// SubscriberCount returns the number of subscriptions on the topic.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
