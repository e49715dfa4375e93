package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/andrewpaige1/formcraft-api/models"
)

type SubmissionStore struct {
	db    *gorm.DB
	forms *FormStore
	now   clock
}

func NewSubmissionStore(db *gorm.DB, forms *FormStore) *SubmissionStore {
	return &SubmissionStore{db: db, forms: forms, now: utcNow}
}

// ValidateResponses checks that data is non-empty and holds only scalar answers.
func ValidateResponses(data map[string]any) error {
	if len(data) == 0 {
		return ErrEmptyResponses
	}
	for key, v := range data {
		switch v.(type) {
		case nil, string, bool, float64, float32, int, int32, int64, json.Number:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidResponses, key)
		}
	}
	return nil
}

// Create stores one respondent's answers. The form check and the insert
// share a transaction.
func (s *SubmissionStore) Create(ctx context.Context, formID string, data map[string]any, fileURLs []string) (*models.Submission, error) {
	if err := ValidateResponses(data); err != nil {
		return nil, err
	}

	id, err := models.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate submission id: %w", err)
	}
	if fileURLs == nil {
		fileURLs = []string{}
	}
	sub := models.Submission{
		ID:        id,
		FormID:    formID,
		Data:      datatypes.JSONMap(data),
		Files:     datatypes.JSONSlice[string](fileURLs),
		CreatedAt: s.now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Form{}).Where("id = ?", formID).Count(&count).Error; err != nil {
			return unavailable("count forms", err)
		}
		if count == 0 {
			return ErrFormNotFound
		}
		if err := tx.Create(&sub).Error; err != nil {
			return unavailable("create submission", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrFormNotFound) || errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, unavailable("create submission", err)
	}
	return &sub, nil
}

// ListByForm returns the form's submissions, newest first, when
// requestingUserID owns the form. Otherwise it reports ErrNotFound.
func (s *SubmissionStore) ListByForm(ctx context.Context, formID, requestingUserID string) ([]models.Submission, error) {
	if _, err := s.forms.GetOwned(ctx, formID, requestingUserID); err != nil {
		return nil, err
	}

	subs := []models.Submission{}
	err := s.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&subs).Error
	if err != nil {
		return nil, unavailable("list submissions", err)
	}
	return subs, nil
}
