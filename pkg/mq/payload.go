package mq

type Payload uint32

const (
	PayloadUnknown Payload = iota
	PayloadEmailOpened
)

var Payloads = map[Payload]string{
	PayloadEmailOpened: "email_opened",
}

type EmailOpened struct {
	CampaignID  *uint64 `json:"campaign_id"`
	RecipientID *uint64 `json:"recipient_id"`
	OpenTime    *uint64 `json:"open_time"`
}

func (m *EmailOpened) GetCampaignID() uint64 {
	if m != nil && m.CampaignID != nil {
		return *m.CampaignID
	}
	return 0
}

func (m *EmailOpened) GetRecipientID() uint64 {
	if m != nil && m.RecipientID != nil {
		return *m.RecipientID
	}
	return 0
}

func (m *EmailOpened) GetOpenTime() uint64 {
	if m != nil && m.OpenTime != nil {
		return *m.OpenTime
	}
	return 0
}
