package entity

type SentStatus uint32

const (
	SentStatusUnknown SentStatus = iota
	SentStatusPending
	SentStatusSent
	SentStatusFailed
)

// Recipient is one destination address of one campaign. Once its status is
// Sent or Failed it is never moved again.
type Recipient struct {
	ID            *uint64    `json:"id,omitempty"`
	CampaignID    *uint64    `json:"campaign_id,omitempty"`
	Email         *string    `json:"email,omitempty"`
	UserID        *uint64    `json:"user_id,omitempty"`
	TrackingToken *string    `json:"tracking_token,omitempty"`
	SentStatus    SentStatus `json:"sent_status,omitempty"`
	SentAt        *uint64    `json:"sent_at,omitempty"`
	ErrorMessage  *string    `json:"error_message,omitempty"`
	OpenTime      *uint64    `json:"open_time,omitempty"`
	CreateTime    *uint64    `json:"create_time,omitempty"`
}

func (e *Recipient) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *Recipient) GetCampaignID() uint64 {
	if e != nil && e.CampaignID != nil {
		return *e.CampaignID
	}
	return 0
}

func (e *Recipient) GetEmail() string {
	if e != nil && e.Email != nil {
		return *e.Email
	}
	return ""
}

func (e *Recipient) GetTrackingToken() string {
	if e != nil && e.TrackingToken != nil {
		return *e.TrackingToken
	}
	return ""
}

func (e *Recipient) GetSentStatus() SentStatus {
	if e != nil {
		return e.SentStatus
	}
	return SentStatusUnknown
}

func (e *Recipient) GetOpenTime() uint64 {
	if e != nil && e.OpenTime != nil {
		return *e.OpenTime
	}
	return 0
}

func (e *Recipient) IsTerminal() bool {
	status := e.GetSentStatus()
	return status == SentStatusSent || status == SentStatusFailed
}
