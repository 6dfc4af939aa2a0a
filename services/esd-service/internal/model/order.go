package model

import "time"

type OrderCustomer struct {
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Salutation string `json:"salutation,omitempty"`
}

type Order struct {
	ID             string         `json:"id"`
	OrderNumber    string         `json:"orderNumber"`
	SalesChannelID string         `json:"salesChannelId"`
	AmountTotal    float64        `json:"amountTotal"`
	OrderDate      time.Time      `json:"orderDateTime"`
	OrderCustomer  *OrderCustomer `json:"orderCustomer,omitempty"`
}

// TemplateVars exposes the order to mail templates under the storefront's field names.
func (o Order) TemplateVars() map[string]any {
	vars := map[string]any{
		"id":             o.ID,
		"orderNumber":    o.OrderNumber,
		"salesChannelId": o.SalesChannelID,
		"amountTotal":    o.AmountTotal,
		"orderDateTime":  o.OrderDate,
	}
	if o.OrderCustomer != nil {
		vars["orderCustomer"] = map[string]any{
			"email":      o.OrderCustomer.Email,
			"firstName":  o.OrderCustomer.FirstName,
			"lastName":   o.OrderCustomer.LastName,
			"salutation": o.OrderCustomer.Salutation,
		}
	}
	return vars
}
