package entity

// Setting names used by the dispatch path.
const (
	SettingDefaultReplyTo = "default_reply_to"
)

type Setting struct {
	ID         *uint64 `json:"id,omitempty"`
	Name       *string `json:"name,omitempty"`
	Value      *string `json:"value,omitempty"`
	UpdateTime *uint64 `json:"update_time,omitempty"`
}

func (e *Setting) GetName() string {
	if e != nil && e.Name != nil {
		return *e.Name
	}
	return ""
}

func (e *Setting) GetValue() string {
	if e != nil && e.Value != nil {
		return *e.Value
	}
	return ""
}
