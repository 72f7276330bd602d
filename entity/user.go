package entity

type UserStatus uint32

const (
	UserStatusUnknown UserStatus = iota
	UserStatusNormal
	UserStatusDeleted
)

// Subscription statuses that count as an active subscriber audience.
var SubscriberStatuses = []string{"trial", "active", "free_unlimited"}

type User struct {
	ID                 *uint64    `json:"id,omitempty"`
	Email              *string    `json:"email,omitempty"`
	DisplayName        *string    `json:"display_name,omitempty"`
	SubscriptionStatus *string    `json:"subscription_status,omitempty"`
	Status             UserStatus `json:"status,omitempty"`
	CreateTime         *uint64    `json:"create_time,omitempty"`
	UpdateTime         *uint64    `json:"update_time,omitempty"`
}

func (e *User) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *User) GetEmail() string {
	if e != nil && e.Email != nil {
		return *e.Email
	}
	return ""
}

func (e *User) GetSubscriptionStatus() string {
	if e != nil && e.SubscriptionStatus != nil {
		return *e.SubscriptionStatus
	}
	return ""
}

func (e *User) GetStatus() UserStatus {
	if e != nil {
		return e.Status
	}
	return UserStatusUnknown
}
