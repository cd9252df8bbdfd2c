package report

import (
	"errors"

	reporterrors "go-research/internal/report/errors"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return reporterrors.ErrReportNotFound
	}

	return err
}
