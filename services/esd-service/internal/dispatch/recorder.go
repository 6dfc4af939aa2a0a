// Package dispatch records domain events for asynchronous delivery.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sas-esd/esdmail/services/esd-service/internal/event"
	"github.com/sas-esd/esdmail/services/esd-service/internal/outbox"
)

const aggregateOrder = "order"

// Outbox stores an event inside tx.
type Outbox interface {
	Insert(ctx context.Context, tx pgx.Tx, evt outbox.Event) error
}

type Recorder struct {
	outbox Outbox
	now    func() time.Time
}

func NewRecorder(o Outbox) *Recorder {
	return &Recorder{outbox: o, now: time.Now}
}

// Record writes evt to the outbox in tx. It is published once tx commits.
func (r *Recorder) Record(ctx context.Context, tx pgx.Tx, evt *event.SerialPaymentStatusPaid) error {
	payload, err := event.Encode(evt, r.now())
	if err != nil {
		return err
	}
	err = r.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: aggregateOrder,
		AggregateID:   evt.Order().ID,
		EventType:     evt.Name(),
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("record %s: %w", evt.Name(), err)
	}
	return nil
}
