package app

import (
	"go-research/internal/comment"
	"go-research/internal/company"
	"go-research/internal/report"

	"gorm.io/gorm"
)

// The outbox table is written with raw SQL, so it is created the same way.
const createOutboxTable = `
CREATE TABLE IF NOT EXISTS outbox_events (
	id UUID PRIMARY KEY,
	request_id TEXT,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	topic TEXT NOT NULL,
	payload JSONB NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	retry_count INT NOT NULL DEFAULT 0,
	error_message TEXT,
	next_retry_at TIMESTAMPTZ,
	processed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)
`

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&company.Company{},
		&report.Report{},
		&comment.Comment{},
	); err != nil {
		return err
	}
	return db.Exec(createOutboxTable).Error
}
