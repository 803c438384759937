package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tool is something listed on the tools page, optionally with a logo in the tools upload dir.
type Tool struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Name          string    `json:"name" gorm:"type:varchar(100);not null"`
	Description   *string   `json:"description,omitempty" gorm:"type:text"`
	ImageFilename *string   `json:"image_filename,omitempty" gorm:"type:varchar(200)"`
}

func (t *Tool) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
