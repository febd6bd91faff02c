package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

var ErrAsyncPublishDisabled = errors.New("async publish is disabled")

// EventPublisher pushes progress writes onto JetStream so the API can
// acknowledge before the row lands. Disabled it degrades to the
// synchronous write path.
type EventPublisher struct {
	js          nats.JetStreamContext
	asyncWrites bool
}

func NewEventPublisher(js nats.JetStreamContext, asyncWrites bool) *EventPublisher {
	return &EventPublisher{js: js, asyncWrites: asyncWrites}
}

func (p *EventPublisher) Enabled() bool {
	return p != nil && p.js != nil && p.asyncWrites
}

func (p *EventPublisher) PublishJSON(subject string, payload map[string]any) (string, error) {
	if !p.Enabled() {
		return "", ErrAsyncPublishDisabled
	}

	eventID := uuid.NewString()
	payload["event_id"] = eventID
	if _, ok := payload["created_at"]; !ok {
		payload["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	if _, err := p.js.Publish(subject, body); err != nil {
		return "", err
	}
	return eventID, nil
}
