package commenterrors

import (
	"net/http"

	"go-research/internal/shared/apperror"
)

var (
	ErrCommentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Comment not found",
		http.StatusNotFound,
	)
	ErrInvalidCommentID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid comment ID",
		http.StatusBadRequest,
	)
)
