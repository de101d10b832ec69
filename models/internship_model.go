package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Internship struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string          `gorm:"size:255;not null;uniqueIndex" json:"title"`
	Description      string          `gorm:"type:text" json:"description"`
	DurationDays     int             `gorm:"not null" json:"duration_days"`
	CertificatePrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"certificate_price"`
	PassPercentage   float64         `gorm:"not null" json:"pass_percentage"`
	IsActive         bool            `gorm:"not null" json:"is_active"`

	Tasks []Task `gorm:"foreignKey:InternshipID" json:"tasks,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Internship) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}
