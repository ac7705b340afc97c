package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amantheshaikh/untainted/pkg/untainted/internalerr"
	"github.com/amantheshaikh/untainted/pkg/untainted/prefs"
)

// ProfileStore persists named preference records so a caller can classify
// against a saved profile.
type ProfileStore interface {
	Close() error

	Get(ctx context.Context, id string) (Profile, error)
	Put(ctx context.Context, p Profile) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Profile, error)
}

// Profile is one saved preference record
type Profile struct {
	ID          string            `json:"id"`
	Name        string            `json:"name,omitempty"`
	Preferences prefs.Preferences `json:"preferences"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NormalizeID trims and lower-cases a profile id. Empty ids are rejected
// with internalerr.ErrInvalidInput.
func NormalizeID(id string) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return "", fmt.Errorf("%w: empty profile id", internalerr.ErrInvalidInput)
	}
	return id, nil
}

// NotFound builds the error returned for a missing profile.
func NotFound(id string) error {
	return fmt.Errorf("profile %q: %w", id, internalerr.ErrNotFound)
}
