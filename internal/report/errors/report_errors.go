package reporterrors

import (
	"net/http"

	"go-research/internal/shared/apperror"
)

var (
	ErrReportNotFound = apperror.New(
		apperror.CodeNotFound,
		"Report not found",
		http.StatusNotFound,
	)
	ErrInvalidReportID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid report ID",
		http.StatusBadRequest,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid company ID",
		http.StatusBadRequest,
	)
	ErrInvalidCategory = apperror.New(
		apperror.CodeInvalidInput,
		"Category must be one of meeting_notes, initiation, follow_up",
		http.StatusBadRequest,
	)
	ErrInvalidCreatedAt = apperror.New(
		apperror.CodeInvalidInput,
		"createdAt must be an RFC3339 timestamp",
		http.StatusBadRequest,
	)
	ErrFileTooLarge = apperror.New(
		apperror.CodePayloadTooLarge,
		"Report file must not exceed 50MB",
		http.StatusRequestEntityTooLarge,
	)
	ErrFileNotPDF = apperror.New(
		apperror.CodeInvalidInput,
		"Report file must be a PDF",
		http.StatusBadRequest,
	)
)
