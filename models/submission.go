package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is one respondent's answers for a form
type Submission struct {
	ID        string                      `gorm:"primaryKey;size:24" json:"id"`
	FormID    string                      `gorm:"not null;index;size:24" json:"formId"`
	Data      datatypes.JSONMap           `gorm:"not null" json:"data"`
	Files     datatypes.JSONSlice[string] `json:"files"`
	CreatedAt time.Time                   `gorm:"not null;index" json:"createdAt"`
}
