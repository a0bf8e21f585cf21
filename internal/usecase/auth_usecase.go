package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/pkg/apperror"
	"keyskeeper-backend/pkg/email"
	"keyskeeper-backend/pkg/logger"
)

type authUsecase struct {
	profileRepo domain.ProfileRepository
	mailer      *email.EmailService
}

func NewAuthUsecase(profileRepo domain.ProfileRepository, mailer *email.EmailService) domain.AuthUsecase {
	return &authUsecase{profileRepo: profileRepo, mailer: mailer}
}

// EnsureProfile creates the profile row for a confirmed Supabase user.
// Called by the frontend right after email confirmation; idempotent so a
// double-submit or a retry after a network blip is harmless.
func (u *authUsecase) EnsureProfile(ctx context.Context, authID, email string, role domain.Role) (*domain.Profile, error) {
	existing, err := u.profileRepo.GetByAuthID(ctx, authID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Persistence(err)
	}

	if !role.IsValid() {
		role = domain.RoleTenant
	}
	// Admin and maintenance roles are assigned by an admin, never self-selected.
	if role == domain.RoleAdmin || role == domain.RoleMaintenance {
		role = domain.RoleTenant
	}

	now := time.Now()
	p := &domain.Profile{
		AuthID:    authID,
		Email:     email,
		Role:      role,
		Verified:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.profileRepo.Create(ctx, p); err != nil {
		return nil, apperror.Persistence(err)
	}
	return p, nil
}

// GetCurrentProfile resolves the caller's profile. A valid token with no
// profile row means the email-confirmation step has not completed, which is
// a recoverable state and must not look like a failed login.
func (u *authUsecase) GetCurrentProfile(ctx context.Context, authID string) (*domain.Profile, error) {
	p, err := u.profileRepo.GetByAuthID(ctx, authID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NeedsVerification("Your account is awaiting email verification")
	}
	if err != nil {
		// Fail closed: a flaky lookup must not grant access.
		logger.Log.Error("profile lookup failed", "auth_id", authID, "error", err)
		return nil, apperror.Unauthorized("Could not resolve your account")
	}
	return p, nil
}

func (u *authUsecase) ResendVerification(ctx context.Context, toEmail string) error {
	if toEmail == "" {
		return apperror.BadRequest("email is required")
	}
	if u.mailer == nil || !u.mailer.IsConfigured() {
		return apperror.New(http.StatusServiceUnavailable, apperror.KindInternal, "Email service unavailable", nil)
	}
	// Fire-and-forget: the HTTP response never waits on SMTP.
	go func() {
		err := u.mailer.SendNotification(toEmail, "Verify your Keyskeeper account", email.NotificationData{
			Heading: "Verify your email",
			Intro:   "Follow the link in your original sign-up email to finish creating your account. If it has expired, sign in again to receive a fresh one.",
		})
		if err != nil {
			logger.Log.Warn("verification email failed", "to", toEmail, "error", err)
		}
	}()
	return nil
}

func (u *authUsecase) UpdateContactDetails(ctx context.Context, authID string, fullName, phone *string) error {
	ctxAuthID, _, err := principalFromCtx(ctx)
	if err != nil {
		return err
	}
	if ctxAuthID != authID {
		return apperror.Forbidden("You can only update your own profile")
	}

	p, err := u.profileRepo.GetByAuthID(ctx, authID)
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NeedsVerification("Your account is awaiting email verification")
	}
	if err != nil {
		return apperror.Persistence(err)
	}

	if fullName != nil {
		p.FullName = fullName
	}
	if phone != nil {
		p.Phone = phone
	}
	if err := u.profileRepo.Update(ctx, p); err != nil {
		return apperror.Persistence(err)
	}
	return nil
}
