package models

import (
	"time"

	"gorm.io/datatypes"
)

// Form is a generated form definition owned by one user
type Form struct {
	ID        string                         `gorm:"primaryKey;size:24" json:"id"`
	OwnerID   string                         `gorm:"not null;index;size:36" json:"ownerId"`
	Title     string                         `gorm:"not null;size:200" json:"title"`
	Schema    datatypes.JSONType[FormSchema] `gorm:"column:form_schema;not null" json:"formSchema"`
	CreatedAt time.Time                      `gorm:"not null;index" json:"createdAt"`
}

// FormSummary is the list view of a form
type FormSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f Form) Summary() FormSummary {
	return FormSummary{ID: f.ID, Title: f.Title, CreatedAt: f.CreatedAt}
}
