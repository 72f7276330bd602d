package entity

import (
	"time"

	"aif/pkg/goutil"
)

type CampaignStatus uint32

const (
	CampaignStatusUnknown CampaignStatus = iota
	CampaignStatusScheduled
	CampaignStatusSending
	CampaignStatusSent
	CampaignStatusFailed
)

type RecipientType uint32

const (
	RecipientTypeUnknown RecipientType = iota
	RecipientTypeWaitlist
	RecipientTypeAllUsers
	RecipientTypeSubscribers
	RecipientTypeAdhoc
)

var SupportedRecipientTypes = map[string]RecipientType{
	"waitlist":    RecipientTypeWaitlist,
	"all_users":   RecipientTypeAllUsers,
	"subscribers": RecipientTypeSubscribers,
	"adhoc":       RecipientTypeAdhoc,
}

type Campaign struct {
	ID              *uint64        `json:"id,omitempty"`
	Subject         *string        `json:"subject,omitempty"`
	HtmlContent     *string        `json:"html_content,omitempty"`
	TextContent     *string        `json:"text_content,omitempty"`
	RecipientType   RecipientType  `json:"recipient_type,omitempty"`
	AdhocEmails     []string       `json:"adhoc_emails,omitempty"`
	ReplyTo         *string        `json:"reply_to,omitempty"`
	SentBy          *uint64        `json:"sent_by,omitempty"`
	TotalRecipients *uint64        `json:"total_recipients,omitempty"`
	TotalSent       *uint64        `json:"total_sent,omitempty"`
	TotalFailed     *uint64        `json:"total_failed,omitempty"`
	TotalOpened     *uint64        `json:"total_opened,omitempty"`
	Status          CampaignStatus `json:"status,omitempty"`
	SentAt          *uint64        `json:"sent_at,omitempty"`
	ScheduledFor    *uint64        `json:"scheduled_for,omitempty"`
	CreateTime      *uint64        `json:"create_time,omitempty"`
	UpdateTime      *uint64        `json:"update_time,omitempty"`
}

func (e *Campaign) Update(t *Campaign) bool {
	var hasChange bool

	if t.Status != CampaignStatusUnknown && e.Status != t.Status {
		hasChange = true
		e.Status = t.Status
	}

	if t.TotalSent != nil && e.GetTotalSent() != t.GetTotalSent() {
		hasChange = true
		e.TotalSent = t.TotalSent
	}

	if t.TotalFailed != nil && e.GetTotalFailed() != t.GetTotalFailed() {
		hasChange = true
		e.TotalFailed = t.TotalFailed
	}

	if t.TotalOpened != nil && e.GetTotalOpened() != t.GetTotalOpened() {
		hasChange = true
		e.TotalOpened = t.TotalOpened
	}

	if t.SentAt != nil {
		hasChange = true
		e.SentAt = t.SentAt
	}

	if hasChange {
		e.UpdateTime = goutil.Uint64(uint64(time.Now().Unix()))
	}

	return hasChange
}

func (e *Campaign) IsTerminal() bool {
	status := e.GetStatus()
	return status == CampaignStatusSent || status == CampaignStatusFailed
}

func (e *Campaign) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *Campaign) GetSubject() string {
	if e != nil && e.Subject != nil {
		return *e.Subject
	}
	return ""
}

func (e *Campaign) GetHtmlContent() string {
	if e != nil && e.HtmlContent != nil {
		return *e.HtmlContent
	}
	return ""
}

func (e *Campaign) GetTextContent() string {
	if e != nil && e.TextContent != nil {
		return *e.TextContent
	}
	return ""
}

func (e *Campaign) GetReplyTo() string {
	if e != nil && e.ReplyTo != nil {
		return *e.ReplyTo
	}
	return ""
}

func (e *Campaign) GetStatus() CampaignStatus {
	if e != nil {
		return e.Status
	}
	return CampaignStatusUnknown
}

func (e *Campaign) GetTotalRecipients() uint64 {
	if e != nil && e.TotalRecipients != nil {
		return *e.TotalRecipients
	}
	return 0
}

func (e *Campaign) GetTotalSent() uint64 {
	if e != nil && e.TotalSent != nil {
		return *e.TotalSent
	}
	return 0
}

func (e *Campaign) GetTotalFailed() uint64 {
	if e != nil && e.TotalFailed != nil {
		return *e.TotalFailed
	}
	return 0
}

func (e *Campaign) GetTotalOpened() uint64 {
	if e != nil && e.TotalOpened != nil {
		return *e.TotalOpened
	}
	return 0
}

func (e *Campaign) GetScheduledFor() uint64 {
	if e != nil && e.ScheduledFor != nil {
		return *e.ScheduledFor
	}
	return 0
}

func (e *Campaign) GetRecipientType() RecipientType {
	if e != nil {
		return e.RecipientType
	}
	return RecipientTypeUnknown
}

func (e *Campaign) GetSentAt() uint64 {
	if e != nil && e.SentAt != nil {
		return *e.SentAt
	}
	return 0
}
