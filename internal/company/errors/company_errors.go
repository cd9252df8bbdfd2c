package companyerrors

import (
	"net/http"

	"go-research/internal/shared/apperror"
)

var (
	ErrCompanyNotFound = apperror.New(
		apperror.CodeNotFound,
		"Company not found",
		http.StatusNotFound,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid company ID",
		http.StatusBadRequest,
	)
	ErrInvalidCompanyType = apperror.New(
		apperror.CodeInvalidInput,
		"Company type must be one of a_share, hk, us, industry",
		http.StatusBadRequest,
	)
	ErrCompanyCodeExists = apperror.New(
		apperror.CodeConflict,
		"A company with the same code already exists",
		http.StatusConflict,
	)
	ErrIconTooLarge = apperror.New(
		apperror.CodePayloadTooLarge,
		"Icon must not exceed 2MB",
		http.StatusRequestEntityTooLarge,
	)
	ErrIconNotImage = apperror.New(
		apperror.CodeInvalidInput,
		"Icon must be an image file",
		http.StatusBadRequest,
	)
)
