package event

import "github.com/sas-esd/esdmail/services/esd-service/internal/eventdata"

// Definition describes a declared event for template editors.
type Definition struct {
	Name              string                `json:"name"`
	MailAware         bool                  `json:"mailAware"`
	SalesChannelAware bool                  `json:"salesChannelAware"`
	Data              *eventdata.Collection `json:"data"`
}

// Definitions lists every event this plugin raises.
func Definitions() []Definition {
	return []Definition{
		{
			Name:              SerialPaymentStatusPaidName,
			MailAware:         true,
			SalesChannelAware: true,
			Data:              SerialPaymentStatusPaidData(),
		},
	}
}
