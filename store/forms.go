package store

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/andrewpaige1/formcraft-api/models"
)

type FormStore struct {
	db  *gorm.DB
	now clock
}

func NewFormStore(db *gorm.DB) *FormStore {
	return &FormStore{db: db, now: utcNow}
}

// Create normalizes schema and persists a new form for ownerID.
// An empty title falls back to the schema's own title.
func (s *FormStore) Create(ctx context.Context, ownerID, title string, schema models.FormSchema) (*models.Form, error) {
	if err := schema.Normalize(); err != nil {
		return nil, err
	}
	if title == "" {
		title = schema.FormTitle()
	}

	id, err := models.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate form id: %w", err)
	}

	form := models.Form{
		ID:        id,
		OwnerID:   ownerID,
		Title:     title,
		Schema:    datatypes.NewJSONType(schema),
		CreatedAt: s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&form).Error; err != nil {
		return nil, unavailable("create form", err)
	}
	return &form, nil
}

// GetByID does not check ownership: anyone holding the id can read the form.
func (s *FormStore) GetByID(ctx context.Context, id string) (*models.Form, error) {
	var form models.Form
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&form).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, unavailable("get form", err)
	}
	return &form, nil
}

// GetOwned returns the form only if ownerID owns it. A form owned by someone
// else reports ErrNotFound so its existence is not revealed.
func (s *FormStore) GetOwned(ctx context.Context, id, ownerID string) (*models.Form, error) {
	var form models.Form
	if err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&form).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, unavailable("get owned form", err)
	}
	return &form, nil
}

func (s *FormStore) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Form{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, unavailable("count forms", err)
	}
	return count > 0, nil
}

// ListByOwner returns ownerID's forms, newest first.
func (s *FormStore) ListByOwner(ctx context.Context, ownerID string) ([]models.FormSummary, error) {
	var forms []models.Form
	err := s.db.WithContext(ctx).
		Select("id", "title", "created_at").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&forms).Error
	if err != nil {
		return nil, unavailable("list forms", err)
	}

	summaries := make([]models.FormSummary, 0, len(forms))
	for _, f := range forms {
		summaries = append(summaries, f.Summary())
	}
	return summaries, nil
}
