package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a portfolio entry. The image column holds the stored filename in the images upload dir.
type Project struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Title       string    `json:"title" gorm:"type:varchar(200);not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Image       string    `json:"image" gorm:"type:varchar(200);not null"`
	Date        time.Time `json:"date" gorm:"type:date;not null"`
	Featured    bool      `json:"featured" gorm:"not null;default:false;index"`
	GithubLink  *string   `json:"github_link,omitempty" gorm:"type:varchar(500)"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
