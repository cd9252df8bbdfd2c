package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is what a handler hands to the response envelope after mapping.
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

// ToHTTP maps any error to an HTTPError. Unknown errors collapse into a
// generic 500 so internal details never leak into an envelope.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}
	return HTTPError{
		Status:  ErrInternal.HTTPStatus,
		Code:    ErrInternal.Code,
		Message: ErrInternal.Message,
	}
}

func RequiredField(field string) *AppError {
	return New(
		CodeInvalidInput,
		fmt.Sprintf("%s is required", field),
		http.StatusBadRequest,
	)
}

func InvalidField(field string) *AppError {
	return New(
		CodeInvalidInput,
		fmt.Sprintf("%s is invalid", field),
		http.StatusBadRequest,
	)
}
