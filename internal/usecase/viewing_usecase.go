package usecase

import (
	"context"
	"fmt"
	"time"

	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/pkg/apperror"
	"keyskeeper-backend/pkg/email"
	"keyskeeper-backend/pkg/logger"
)

type viewingUsecase struct {
	viewingRepo domain.ViewingRepository
	listingRepo domain.ListingRepository
	profileRepo domain.ProfileRepository
	mailer      *email.EmailService
}

func NewViewingUsecase(
	viewingRepo domain.ViewingRepository,
	listingRepo domain.ListingRepository,
	profileRepo domain.ProfileRepository,
	mailer *email.EmailService,
) domain.ViewingUsecase {
	return &viewingUsecase{
		viewingRepo: viewingRepo,
		listingRepo: listingRepo,
		profileRepo: profileRepo,
		mailer:      mailer,
	}
}

func (u *viewingUsecase) RequestViewing(ctx context.Context, listingID int64, slotAt time.Time, message *string) (*domain.ViewingRequest, error) {
	authID, _, err := requireRole(ctx, domain.RoleTenant)
	if err != nil {
		return nil, err
	}

	if slotAt.Before(time.Now()) {
		return nil, apperror.Validation([]string{"viewing slot must be in the future"})
	}

	listing, err := u.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, apperror.NotFound("Listing not found")
	}

	tenant, err := u.profileRepo.GetByAuthID(ctx, authID)
	if err != nil {
		return nil, apperror.Persistence(err)
	}

	now := time.Now()
	v := &domain.ViewingRequest{
		ListingID: listingID,
		TenantID:  tenant.ID,
		SlotAt:    slotAt,
		Message:   message,
		Status:    domain.ViewingRequested,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.viewingRepo.Create(ctx, v); err != nil {
		return nil, apperror.Persistence(err)
	}

	u.notifyLandlord(listing, v)

	return v, nil
}

func (u *viewingUsecase) notifyLandlord(listing *domain.Listing, v *domain.ViewingRequest) {
	if u.mailer == nil || !u.mailer.IsConfigured() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		landlord, err := u.profileRepo.GetByID(ctx, listing.LandlordID)
		if err != nil {
			logger.Log.Warn("viewing notification skipped", "listing_id", listing.ID, "error", err)
			return
		}
		err = u.mailer.SendNotification(landlord.Email,
			fmt.Sprintf("Viewing request for %s", listing.Title),
			email.NotificationData{
				Heading: "New viewing request",
				Intro:   fmt.Sprintf("Someone wants to view %s.", listing.Address),
				Rows: map[string]string{
					"Property":       listing.Title,
					"Requested slot": v.SlotAt.Format(time.RFC1123),
				},
				ActionTo: domain.RoleLandlord.LandingRoute(),
			})
		if err != nil {
			logger.Log.Warn("viewing notification failed", "listing_id", listing.ID, "error", err)
		}
	}()
}

func (u *viewingUsecase) ListForListing(ctx context.Context, listingID int64, page, pageSize int) ([]domain.ViewingRequest, int64, error) {
	authID, role, err := requireRole(ctx, domain.RoleLandlord, domain.RoleAdmin)
	if err != nil {
		return nil, 0, err
	}

	listing, err := u.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, 0, apperror.NotFound("Listing not found")
	}
	if role != domain.RoleAdmin {
		caller, err := u.profileRepo.GetByAuthID(ctx, authID)
		if err != nil {
			return nil, 0, apperror.Persistence(err)
		}
		if listing.LandlordID != caller.ID {
			return nil, 0, apperror.Forbidden("You can only see viewings for your own listings")
		}
	}

	page, pageSize = clampPage(page, pageSize)
	viewings, total, err := u.viewingRepo.FetchByListing(ctx, listingID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	return viewings, total, nil
}

func (u *viewingUsecase) ListMine(ctx context.Context, page, pageSize int) ([]domain.ViewingRequest, int64, error) {
	authID, _, err := principalFromCtx(ctx)
	if err != nil {
		return nil, 0, err
	}
	tenant, err := u.profileRepo.GetByAuthID(ctx, authID)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	page, pageSize = clampPage(page, pageSize)
	viewings, total, err := u.viewingRepo.FetchByTenant(ctx, tenant.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	return viewings, total, nil
}

// Respond approves or declines a requested viewing. Approving a slot that
// already has an approved viewing on the same listing is rejected to avoid
// double booking.
func (u *viewingUsecase) Respond(ctx context.Context, id int64, approve bool) error {
	authID, role, err := requireRole(ctx, domain.RoleLandlord, domain.RoleAdmin)
	if err != nil {
		return err
	}

	v, err := u.viewingRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.NotFound("Viewing request not found")
	}
	if v.Status != domain.ViewingRequested {
		return apperror.BadRequest("viewing request has already been responded to")
	}

	listing, err := u.listingRepo.GetByID(ctx, v.ListingID)
	if err != nil {
		return apperror.NotFound("Listing not found")
	}
	if role != domain.RoleAdmin {
		caller, err := u.profileRepo.GetByAuthID(ctx, authID)
		if err != nil {
			return apperror.Persistence(err)
		}
		if listing.LandlordID != caller.ID {
			return apperror.Forbidden("You can only respond to viewings on your own listings")
		}
	}

	status := domain.ViewingDeclined
	if approve {
		taken, err := u.viewingRepo.HasApprovedSlot(ctx, v.ListingID, v.SlotAt)
		if err != nil {
			return apperror.Persistence(err)
		}
		if taken {
			return apperror.BadRequest("another viewing is already approved for that slot")
		}
		status = domain.ViewingApproved
	}

	if err := u.viewingRepo.UpdateStatus(ctx, id, status); err != nil {
		return apperror.Persistence(err)
	}
	return nil
}
