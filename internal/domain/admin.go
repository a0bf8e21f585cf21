package domain

import "context"

// PlatformStats backs the admin dashboard cards.
type PlatformStats struct {
	ProfilesByRole       map[Role]int64             `json:"profiles_by_role"`
	ListingsByCompliance map[ComplianceStatus]int64 `json:"listings_by_compliance"`
}

type AdminUsecase interface {
	ListProfiles(ctx context.Context, role Role, page, pageSize int) ([]Profile, int64, error)
	VerifyProfile(ctx context.Context, profileID int64, verified bool) error
	AssignRole(ctx context.Context, profileID int64, role Role) error
	OverrideCompliance(ctx context.Context, listingID int64, status ComplianceStatus) error
	Stats(ctx context.Context) (*PlatformStats, error)
}
