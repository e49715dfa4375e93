// Package store persists forms and submissions through gorm.
package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrFormNotFound     = errors.New("form not found")
	ErrEmptyResponses   = errors.New("form responses are required")
	ErrInvalidResponses = errors.New("form responses must be scalar values")
	ErrStoreUnavailable = errors.New("document store unavailable")
)

type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
