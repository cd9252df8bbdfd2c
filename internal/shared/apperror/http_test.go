package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-research/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
)

func TestToHTTP_AppError(t *testing.T) {
	httpErr := apperror.ToHTTP(apperror.ErrUnauthorized)

	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	assert.Equal(t, apperror.CodeUnauthorized, httpErr.Code)
	assert.Equal(t, "Authentication is required", httpErr.Message)
}

func TestToHTTP_WrappedAppError(t *testing.T) {
	err := fmt.Errorf("handler: %w", apperror.ErrInvalidInput)

	httpErr := apperror.ToHTTP(err)

	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, apperror.CodeInvalidInput, httpErr.Code)
}

func TestToHTTP_UnknownErrorCollapsesToInternal(t *testing.T) {
	httpErr := apperror.ToHTTP(errors.New("pq: connection reset"))

	assert.Equal(t, apperror.ErrInternal.HTTPStatus, httpErr.Status)
	assert.Equal(t, apperror.ErrInternal.Code, httpErr.Code)
	assert.Equal(t, apperror.ErrInternal.Message, httpErr.Message)
}
