package apperror

import "net/http"

// Sentinels shared across domains. Domain packages define their own
// resource-specific errors under <domain>/errors.
var (
	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)
)
