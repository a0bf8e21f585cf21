package domain

import (
	"context"
	"errors"
	"time"
)

// Common domain errors
var ErrNotFound = errors.New("resource not found")

// Profile is the application user record keyed to a Supabase auth identity.
// Exactly one Profile exists per auth user; the row is created after email
// confirmation, which is why a valid token without a matching Profile means
// "needs verification" rather than "no access".
type Profile struct {
	ID          int64          `json:"id"`
	AuthID      string         `json:"auth_id"` // Supabase UUID
	Email       string         `json:"email"`
	Role        Role           `json:"role"`
	FullName    *string        `json:"full_name,omitempty"`
	Phone       *string        `json:"phone,omitempty"`
	Verified    bool           `json:"verified"`
	Preferences map[string]any `json:"preferences,omitempty"` // onboarding answers, JSONB
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id int64) (*Profile, error)
	GetByAuthID(ctx context.Context, authID string) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	UpdatePreferences(ctx context.Context, authID string, prefs map[string]any) error
	List(ctx context.Context, role Role, limit, offset int) ([]Profile, int64, error)
	SetVerified(ctx context.Context, id int64, verified bool) error
	SetRole(ctx context.Context, id int64, role Role) error
	CountByRole(ctx context.Context) (map[Role]int64, error)
}

type AuthUsecase interface {
	// EnsureProfile creates the Profile row for a confirmed auth user if it
	// does not exist yet. Idempotent.
	EnsureProfile(ctx context.Context, authID, email string, role Role) (*Profile, error)
	GetCurrentProfile(ctx context.Context, authID string) (*Profile, error)
	ResendVerification(ctx context.Context, email string) error
	UpdateContactDetails(ctx context.Context, authID string, fullName, phone *string) error
}
