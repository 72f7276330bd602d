package errutil

import (
	"errors"
	"net/http"
)

type HttpError struct {
	code int
	err  error
}

func (e *HttpError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *HttpError) Code() int {
	return e.code
}

func (e *HttpError) Unwrap() error {
	return e.err
}

func BadRequestError(err error) error {
	return &HttpError{code: http.StatusBadRequest, err: err}
}

// ValidationError is a bad request, kept separate so call sites read better.
func ValidationError(err error) error {
	return &HttpError{code: http.StatusBadRequest, err: err}
}

func UnauthorizedError(err error) error {
	return &HttpError{code: http.StatusUnauthorized, err: err}
}

func ForbiddenError(err error) error {
	return &HttpError{code: http.StatusForbidden, err: err}
}

func NotFoundError(err error) error {
	return &HttpError{code: http.StatusNotFound, err: err}
}

func InternalServerError(err error) error {
	return &HttpError{code: http.StatusInternalServerError, err: err}
}

func ParseHttpError(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	httpErr := new(HttpError)
	if errors.As(err, &httpErr) {
		return httpErr.Code(), httpErr.Error()
	}

	return http.StatusInternalServerError, err.Error()
}
