package handler

import (
	"errors"

	"aif/entity"
	"aif/pkg/validator"
)

type ContextInfo struct {
	User *entity.User
}

func (c *ContextInfo) SetUser(u *entity.User) {
	c.User = u
}

func (c *ContextInfo) GetUserID() uint64 {
	return c.User.GetID()
}

type contextInfoValidator struct {
	optional bool
}

func (v *contextInfoValidator) Validate(value interface{}) error {
	ci, ok := value.(ContextInfo)
	if !ok {
		return errors.New("expect ContextInfo")
	}

	if ci.User == nil && !v.optional {
		return errors.New("missing user")
	}

	return nil
}

func ContextInfoValidator(optional bool) validator.Validator {
	return &contextInfoValidator{optional: optional}
}
