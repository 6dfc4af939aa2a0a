// Package event defines the business events the ESD plugin raises.
package event

import (
	"sort"
	"strings"

	"github.com/sas-esd/esdmail/services/esd-service/internal/eventdata"
	"github.com/sas-esd/esdmail/services/esd-service/internal/model"
	"github.com/sas-esd/esdmail/services/esd-service/internal/platform"
)

// SerialPaymentStatusPaidName is also stored as event_name on the serial mail event action.
const SerialPaymentStatusPaidName = "esd.serial.payment.status.paid"

const esdSerialsKey = "esdSerials"

// SerialPaymentStatusPaid is raised when an order with serial-keyed ESD products is paid.
type SerialPaymentStatusPaid struct {
	ctx          platform.Context
	order        model.Order
	templateData map[string]any

	mailStruct *eventdata.MailRecipientStruct
}

var (
	_ eventdata.MailAction        = (*SerialPaymentStatusPaid)(nil)
	_ eventdata.SalesChannelAware = (*SerialPaymentStatusPaid)(nil)
)

func NewSerialPaymentStatusPaid(ctx platform.Context, order model.Order, templateData map[string]any) *SerialPaymentStatusPaid {
	if templateData == nil {
		templateData = map[string]any{}
	}
	return &SerialPaymentStatusPaid{
		ctx:          ctx,
		order:        order,
		templateData: templateData,
	}
}

// SerialPaymentStatusPaidData declares the template variables of the event.
func SerialPaymentStatusPaidData() *eventdata.Collection {
	return eventdata.NewCollection().
		Add("order", eventdata.EntityType{Entity: "order"}).
		Add(esdSerialsKey, eventdata.ArrayType{Of: eventdata.ScalarValueType{Type: eventdata.TypeString}})
}

// AvailableData is SerialPaymentStatusPaidData; it does not read the receiver.
func (*SerialPaymentStatusPaid) AvailableData() *eventdata.Collection {
	return SerialPaymentStatusPaidData()
}

func (e *SerialPaymentStatusPaid) Name() string {
	return SerialPaymentStatusPaidName
}

func (e *SerialPaymentStatusPaid) Order() model.Order {
	return e.order
}

func (e *SerialPaymentStatusPaid) Context() platform.Context {
	return e.ctx
}

func (e *SerialPaymentStatusPaid) SalesChannelID() string {
	return e.order.SalesChannelID
}

// TemplateData returns the raw template data the event was raised with.
func (e *SerialPaymentStatusPaid) TemplateData() map[string]any {
	return e.templateData
}

// EsdSerials returns the serial entries ordered by product name. The held data is
// not reordered; each call sorts a fresh copy.
func (e *SerialPaymentStatusPaid) EsdSerials() []map[string]any {
	serials := serialEntries(e.templateData[esdSerialsKey])
	if len(serials) == 0 {
		return []map[string]any{}
	}
	sort.SliceStable(serials, func(i, j int) bool {
		return strings.Compare(productName(serials[i]), productName(serials[j])) < 0
	})
	return serials
}

// MailStruct addresses the order customer. It is built on first use and reused after.
func (e *SerialPaymentStatusPaid) MailStruct() *eventdata.MailRecipientStruct {
	if e.mailStruct == nil {
		recipients := map[string]string{}
		if c := e.order.OrderCustomer; c != nil && c.Email != "" {
			recipients[c.Email] = c.FirstName + " " + c.LastName
		}
		e.mailStruct = eventdata.NewMailRecipientStruct(recipients)
	}
	return e.mailStruct
}

// TemplateVars are the variables the serial mail template renders with.
func (e *SerialPaymentStatusPaid) TemplateVars() map[string]any {
	return map[string]any{
		"order":        e.order.TemplateVars(),
		esdSerialsKey:  e.EsdSerials(),
		"salesChannel": map[string]any{"id": e.order.SalesChannelID},
	}
}

// serialEntries copies the entries out of either native or JSON-decoded data.
// Entries that are not objects are dropped.
func serialEntries(raw any) []map[string]any {
	switch v := raw.(type) {
	case []map[string]any:
		out := make([]map[string]any, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func productName(entry map[string]any) string {
	name, _ := entry["productName"].(string)
	return name
}
