// Package journal provides append-only event records for ledger and
// reaction activity, with an in-memory store and a SQLite store.
// Events are the system's observability surface: every successful
// mutation produces one descriptive record.
package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is one immutable journal record. Seq is assigned by the store
// on append, monotonically per stream.
type Event struct {
	ID          string          `json:"id"`
	Seq         uint64          `json:"seq"`
	Stream      string          `json:"stream"`
	Type        string          `json:"type"`
	Actor       string          `json:"actor,omitempty"`
	Description string          `json:"description,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	Time        time.Time       `json:"time"`
}

// NewEvent creates an event with a fresh ID and the current time.
// payload may be nil; otherwise it is JSON-encoded into Data.
func NewEvent(eventType, actor, description string, payload any) (*Event, error) {
	e := &Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		Actor:       actor,
		Description: description,
		Time:        time.Now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode event payload: %w", err)
		}
		e.Data = data
	}
	return e, nil
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s has no payload", e.ID)
	}
	return json.Unmarshal(e.Data, v)
}
