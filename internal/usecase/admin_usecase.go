package usecase

import (
	"context"

	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/pkg/apperror"
)

type adminUsecase struct {
	profileRepo domain.ProfileRepository
	listingRepo domain.ListingRepository
}

func NewAdminUsecase(profileRepo domain.ProfileRepository, listingRepo domain.ListingRepository) domain.AdminUsecase {
	return &adminUsecase{profileRepo: profileRepo, listingRepo: listingRepo}
}

func (u *adminUsecase) ListProfiles(ctx context.Context, role domain.Role, page, pageSize int) ([]domain.Profile, int64, error) {
	if _, _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return nil, 0, err
	}
	if role != "" && !role.IsValid() {
		return nil, 0, apperror.BadRequest("unknown role filter")
	}
	page, pageSize = clampPage(page, pageSize)
	profiles, total, err := u.profileRepo.List(ctx, role, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	return profiles, total, nil
}

func (u *adminUsecase) VerifyProfile(ctx context.Context, profileID int64, verified bool) error {
	if _, _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if err := u.profileRepo.SetVerified(ctx, profileID, verified); err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

// AssignRole is the only path that mutates a profile's role.
func (u *adminUsecase) AssignRole(ctx context.Context, profileID int64, role domain.Role) error {
	if _, _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if !role.IsValid() {
		return apperror.BadRequest("unknown role")
	}
	if err := u.profileRepo.SetRole(ctx, profileID, role); err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

func (u *adminUsecase) OverrideCompliance(ctx context.Context, listingID int64, status domain.ComplianceStatus) error {
	if _, _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if !status.IsValid() {
		return apperror.BadRequest("unknown compliance status")
	}
	if err := u.listingRepo.SetCompliance(ctx, listingID, status); err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

func (u *adminUsecase) Stats(ctx context.Context) (*domain.PlatformStats, error) {
	if _, _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	byRole, err := u.profileRepo.CountByRole(ctx)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	byCompliance, err := u.listingRepo.CountByCompliance(ctx)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	return &domain.PlatformStats{
		ProfilesByRole:       byRole,
		ListingsByCompliance: byCompliance,
	}, nil
}
