package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Job struct {
	gorm.Model
	Title       string `gorm:"column:title;size:255;not null" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`

	Skills pq.StringArray `gorm:"column:skills;type:text" json:"skills,omitempty"`

	// Username of the user who posted the job.
	CreatedBy string `gorm:"column:created_by;size:255;not null;index" json:"created_by"`
}
