package broker

import (
	"errors"

	"ebridge-portal/internal/domain/entity/activity"
)

// Message is the wire envelope on the activity exchange.
type Message struct {
	Event *activity.Event `json:"event,omitempty"`
}

func (m Message) validate() error {
	if m.Event == nil {
		return errors.New("event payload is nil")
	}
	if m.Event.Kind == "" {
		return errors.New("event kind is empty")
	}
	return nil
}
