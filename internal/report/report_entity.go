package report

import (
	"time"

	"go-research/internal/comment"

	"github.com/google/uuid"
)

// Category tags a report by the stage of research it documents.
type Category string

const (
	CategoryMeetingNotes Category = "meeting_notes"
	CategoryInitiation   Category = "initiation"
	CategoryFollowUp     Category = "follow_up"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMeetingNotes, CategoryInitiation, CategoryFollowUp:
		return true
	}
	return false
}

type Report struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// CompanyID never changes after create; moving a report between
	// companies is not supported.
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"type:varchar(200);not null"`
	Analyst   string    `gorm:"type:varchar(100);not null"`
	Category  Category  `gorm:"type:varchar(20);not null"`
	FileName  string    `gorm:"type:varchar(255);not null"`
	FileSize  int64     `gorm:"not null"`
	// FilePath is the opaque blob key; the file itself is immutable,
	// replacing it means deleting the report and uploading a new one.
	FilePath     string `gorm:"type:varchar(255);not null"`
	DisplayOrder *int   `gorm:"column:display_order"`
	Comments     []comment.Comment `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time         `gorm:"not null;default:now()"`
	UpdatedAt    time.Time         `gorm:"not null;default:now()"`
}

func (Report) TableName() string {
	return "reports"
}

func (r Report) OrderValue() (int, bool) {
	if r.DisplayOrder == nil {
		return 0, false
	}
	return *r.DisplayOrder, true
}

func (r Report) OrderCreatedAt() time.Time { return r.CreatedAt }

func (r Report) OrderKey() string { return r.ID.String() }
