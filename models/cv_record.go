package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CVRecord points at the uploaded CV. Only one is expected to exist at a time.
type CVRecord struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Filename     string    `json:"filename" gorm:"type:varchar(200);not null"`
	OriginalName string    `json:"original_name" gorm:"type:varchar(200);not null"`
	UploadDate   time.Time `json:"upload_date" gorm:"not null;autoCreateTime;index"`
}

func (CVRecord) TableName() string { return "cv_records" }

func (c *CVRecord) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
