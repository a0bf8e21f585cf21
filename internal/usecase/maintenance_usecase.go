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

type maintenanceUsecase struct {
	maintenanceRepo domain.MaintenanceRepository
	listingRepo     domain.ListingRepository
	profileRepo     domain.ProfileRepository
	mailer          *email.EmailService
}

func NewMaintenanceUsecase(
	maintenanceRepo domain.MaintenanceRepository,
	listingRepo domain.ListingRepository,
	profileRepo domain.ProfileRepository,
	mailer *email.EmailService,
) domain.MaintenanceUsecase {
	return &maintenanceUsecase{
		maintenanceRepo: maintenanceRepo,
		listingRepo:     listingRepo,
		profileRepo:     profileRepo,
		mailer:          mailer,
	}
}

func (u *maintenanceUsecase) FileRequest(ctx context.Context, listingID int64, title, description string, priority domain.MaintenancePriority) (*domain.MaintenanceRequest, error) {
	authID, _, err := requireRole(ctx, domain.RoleTenant, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	var errs []string
	if title == "" {
		errs = append(errs, "title is required")
	}
	if description == "" {
		errs = append(errs, "description is required")
	}
	if priority == "" {
		priority = domain.PriorityMedium
	} else if !priority.IsValid() {
		errs = append(errs, "unknown priority")
	}
	if len(errs) > 0 {
		return nil, apperror.Validation(errs)
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
	req := &domain.MaintenanceRequest{
		ListingID:   listingID,
		TenantID:    tenant.ID,
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      domain.MaintenanceOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.maintenanceRepo.Create(ctx, req); err != nil {
		return nil, apperror.Persistence(err)
	}

	u.notifyLandlord(listing, req)

	return req, nil
}

// notifyLandlord emails the property owner about a new request. Fire and
// forget: a failed notification never blocks the record creation.
func (u *maintenanceUsecase) notifyLandlord(listing *domain.Listing, req *domain.MaintenanceRequest) {
	if u.mailer == nil || !u.mailer.IsConfigured() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		landlord, err := u.profileRepo.GetByID(ctx, listing.LandlordID)
		if err != nil {
			logger.Log.Warn("maintenance notification skipped", "listing_id", listing.ID, "error", err)
			return
		}
		err = u.mailer.SendNotification(landlord.Email,
			fmt.Sprintf("New maintenance request: %s", req.Title),
			email.NotificationData{
				Heading: "New maintenance request",
				Intro:   fmt.Sprintf("A tenant reported an issue at %s.", listing.Address),
				Rows: map[string]string{
					"Property": listing.Title,
					"Issue":    req.Title,
					"Priority": string(req.Priority),
				},
				ActionTo: domain.RoleLandlord.LandingRoute(),
			})
		if err != nil {
			logger.Log.Warn("maintenance notification failed", "listing_id", listing.ID, "error", err)
		}
	}()
}

func (u *maintenanceUsecase) ListByStatus(ctx context.Context, status domain.MaintenanceStatus, page, pageSize int) ([]domain.MaintenanceRequest, int64, error) {
	if _, _, err := requireRole(ctx, domain.RoleMaintenance, domain.RoleAdmin); err != nil {
		return nil, 0, err
	}
	if status != "" && !status.IsValid() {
		return nil, 0, apperror.BadRequest("unknown status")
	}
	page, pageSize = clampPage(page, pageSize)
	reqs, total, err := u.maintenanceRepo.FetchByStatus(ctx, status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	return reqs, total, nil
}

func (u *maintenanceUsecase) ListMine(ctx context.Context, page, pageSize int) ([]domain.MaintenanceRequest, int64, error) {
	authID, _, err := principalFromCtx(ctx)
	if err != nil {
		return nil, 0, err
	}
	tenant, err := u.profileRepo.GetByAuthID(ctx, authID)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	page, pageSize = clampPage(page, pageSize)
	reqs, total, err := u.maintenanceRepo.FetchByTenant(ctx, tenant.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	return reqs, total, nil
}

// Transition moves a request along open -> in_progress -> resolved. Only
// forward transitions are allowed; resolved is terminal.
func (u *maintenanceUsecase) Transition(ctx context.Context, id int64, status domain.MaintenanceStatus) error {
	if _, _, err := requireRole(ctx, domain.RoleMaintenance, domain.RoleAdmin); err != nil {
		return err
	}
	if !status.IsValid() {
		return apperror.BadRequest("unknown status")
	}

	req, err := u.maintenanceRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.NotFound("Maintenance request not found")
	}

	if !transitionAllowed(req.Status, status) {
		return apperror.BadRequest(fmt.Sprintf("cannot move a %s request to %s", req.Status, status))
	}

	var resolvedAt *time.Time
	if status == domain.MaintenanceResolved {
		now := time.Now()
		resolvedAt = &now
	}
	if err := u.maintenanceRepo.UpdateStatus(ctx, id, status, resolvedAt); err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

func transitionAllowed(from, to domain.MaintenanceStatus) bool {
	switch from {
	case domain.MaintenanceOpen:
		return to == domain.MaintenanceInProgress || to == domain.MaintenanceResolved
	case domain.MaintenanceInProgress:
		return to == domain.MaintenanceResolved
	}
	return false
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 20
	}
	return page, pageSize
}
