package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogPost is never updated after creation.
type BlogPost struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Title   string    `json:"title" gorm:"type:varchar(200);not null"`
	Content string    `json:"content" gorm:"type:text;not null"`
	Date    time.Time `json:"date" gorm:"not null;autoCreateTime;index"`
}

func (b *BlogPost) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
