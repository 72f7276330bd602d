package entity

type Unsubscribe struct {
	ID         *uint64 `json:"id,omitempty"`
	Email      *string `json:"email,omitempty"`
	CreateTime *uint64 `json:"create_time,omitempty"`
}

func (e *Unsubscribe) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *Unsubscribe) GetEmail() string {
	if e != nil && e.Email != nil {
		return *e.Email
	}
	return ""
}
