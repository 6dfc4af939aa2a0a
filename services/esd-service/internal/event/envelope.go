package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sas-esd/esdmail/services/esd-service/internal/model"
	"github.com/sas-esd/esdmail/services/esd-service/internal/platform"
)

// Envelope is the wire form of an event on the outbox and the message bus.
type Envelope struct {
	EventName    string           `json:"event_name"`
	Context      platform.Context `json:"context"`
	Order        model.Order      `json:"order"`
	TemplateData map[string]any   `json:"template_data"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

func Encode(e *SerialPaymentStatusPaid, occurredAt time.Time) ([]byte, error) {
	return json.Marshal(Envelope{
		EventName:    e.Name(),
		Context:      e.ctx,
		Order:        e.order,
		TemplateData: e.templateData,
		OccurredAt:   occurredAt.UTC(),
	})
}

// Decode rebuilds an event from its envelope. Unknown event names are rejected.
func Decode(raw []byte) (*SerialPaymentStatusPaid, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	if env.EventName != SerialPaymentStatusPaidName {
		return nil, fmt.Errorf("unsupported event %q", env.EventName)
	}
	return NewSerialPaymentStatusPaid(env.Context, env.Order, env.TemplateData), nil
}
