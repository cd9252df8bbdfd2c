package company

import (
	"time"

	"github.com/google/uuid"
)

// CompanyType classifies a research target by listing venue or as a
// whole industry sector.
type CompanyType string

const (
	TypeAShare   CompanyType = "a_share"
	TypeHK       CompanyType = "hk"
	TypeUS       CompanyType = "us"
	TypeIndustry CompanyType = "industry"
)

func (t CompanyType) Valid() bool {
	switch t {
	case TypeAShare, TypeHK, TypeUS, TypeIndustry:
		return true
	}
	return false
}

type Company struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Name        string      `gorm:"type:varchar(150);not null"`
	Code        string      `gorm:"type:varchar(32);not null;uniqueIndex:uq_company_code"`
	Type        CompanyType `gorm:"type:varchar(16);not null"`
	Description string      `gorm:"type:text"`
	IconPath    string      `gorm:"type:varchar(255)"`
	// DisplayOrder is nil for rows created before manual ordering existed;
	// they sort after every ordered row.
	DisplayOrder *int      `gorm:"column:display_order"`
	CreatedAt    time.Time `gorm:"not null;default:now()"`
	UpdatedAt    time.Time `gorm:"not null;default:now()"`
}

func (Company) TableName() string {
	return "companies"
}

func (c Company) OrderValue() (int, bool) {
	if c.DisplayOrder == nil {
		return 0, false
	}
	return *c.DisplayOrder, true
}

func (c Company) OrderCreatedAt() time.Time { return c.CreatedAt }

func (c Company) OrderKey() string { return c.ID.String() }
