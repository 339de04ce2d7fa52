// Package events publishes application lifecycle events to a message
// broker so downstream consumers (reminder jobs, analytics) can react to
// changes without polling the database. Publishing is best-effort: a
// broker failure never fails the originating request.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jobtrackr/apiserver/types"
)

// Event types emitted for application records.
const (
	TypeApplicationCreated = "application.created"
	TypeApplicationUpdated = "application.updated"
	TypeApplicationDeleted = "application.deleted"
	TypeResumeUploaded     = "application.resume_uploaded"
)

const attrEventType = "event_type"

// ApplicationEvent describes a change to a single application record.
type ApplicationEvent struct {
	Type          string       `json:"type"`
	ApplicationID int          `json:"applicationId"`
	OwnerID       int          `json:"ownerId"`
	Status        types.Status `json:"status,omitempty"`
	OccurredAt    time.Time    `json:"occurredAt"`
}

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the publisher.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// Publisher emits application events on a fixed channel.
type Publisher struct {
	backend Backend
	channel string
}

// NewPublisher constructs a Publisher over the provided backend.
func NewPublisher(backend Backend, channel string) *Publisher {
	return &Publisher{backend: backend, channel: channel}
}

// Emit publishes a single application event. The event timestamp is
// filled in when the caller leaves it zero.
func (p *Publisher) Emit(ctx context.Context, event ApplicationEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.backend.Publish(ctx, p.channel, data, map[string]string{
		attrEventType: event.Type,
	})
	return err
}

// Subscribe consumes application events from the channel.
func (p *Publisher) Subscribe(ctx context.Context, handler func(ctx context.Context, event ApplicationEvent) error) error {
	return p.backend.Subscribe(ctx, p.channel, func(ctx context.Context, msg Message) error {
		var event ApplicationEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			// Drop undecodable messages instead of redelivering forever.
			return nil
		}
		return handler(ctx, event)
	})
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	return p.backend.Close()
}
