package events

import (
	"time"

	"github.com/google/uuid"
)

// Event carries the fields common to every published payload.
type Event struct {
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewEvent stamps a new event with a fresh correlation ID.
func NewEvent() Event {
	return Event{
		CorrelationID: uuid.New().String(),
		Timestamp:     time.Now(),
	}
}
