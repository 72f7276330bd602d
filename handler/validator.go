package handler

import (
	"errors"

	"aif/entity"
	"aif/pkg/goutil"
	"aif/pkg/validator"
)

var errInvalidEmail = errors.New("invalid email")

func emailShape(s string) error {
	if !goutil.IsEmail(s) {
		return errInvalidEmail
	}
	return nil
}

func EmailValidator(optional bool) validator.Validator {
	return &validator.String{
		Optional:   optional,
		UnsetZero:  true,
		MaxLen:     254,
		Validators: []validator.StringFunc{emailShape},
	}
}

func RecipientTypeValidator() validator.Validator {
	return &validator.String{
		Validators: []validator.StringFunc{
			func(s string) error {
				if _, ok := entity.SupportedRecipientTypes[s]; !ok {
					return errors.New("unsupported recipient type")
				}
				return nil
			},
		},
	}
}
