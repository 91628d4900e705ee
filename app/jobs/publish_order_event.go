// Package jobs holds the background jobs run by the queue workers.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/pkg/queue"
	"github.com/shashiranjanraj/ayoo/pkg/stream"
)

var errNoPublisher = errors.New("jobs: order event log is not configured")

// PublishOrderEvent appends one order event to the Kafka order log.
type PublishOrderEvent struct {
	Event stream.Event `json:"event"`

	publisher *stream.Publisher
}

// NewPublishOrderEvent builds the job for an order after the named event.
// data is the event-specific payload; nil sends the order itself.
func NewPublishOrderEvent(name string, o models.Order, data any) (*PublishOrderEvent, error) {
	if data == nil {
		data = o
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &PublishOrderEvent{Event: stream.Event{
		Name:     name,
		OrderID:  o.ID,
		Status:   string(o.Status),
		Occurred: time.Now().UTC(),
		Data:     raw,
	}}, nil
}

func (j *PublishOrderEvent) Handle(ctx context.Context) error {
	if j.publisher == nil {
		return errNoPublisher
	}
	return j.publisher.Publish(ctx, j.Event)
}

// Register makes the job types decodable by q's workers, wiring in their
// dependencies. pub may be nil when Kafka is disabled.
func Register(q *queue.Manager, pub *stream.Publisher) {
	q.Register(func() queue.Job { return &PublishOrderEvent{publisher: pub} })
}
