package usecase

import (
	"context"
	"errors"

	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/internal/wizard"
	"keyskeeper-backend/pkg/apperror"
)

type wizardUsecase struct {
	store       *wizard.Store
	profileRepo domain.ProfileRepository
	listingUC   domain.ListingUsecase
}

func NewWizardUsecase(store *wizard.Store, profileRepo domain.ProfileRepository, listingUC domain.ListingUsecase) domain.WizardUsecase {
	return &wizardUsecase{
		store:       store,
		profileRepo: profileRepo,
		listingUC:   listingUC,
	}
}

// flowAllowed gates flows per role: the listing wizard belongs to landlords
// and admins, onboarding flows to their respective roles.
func flowAllowed(flowName string, role domain.Role) bool {
	switch flowName {
	case wizard.FlowListing:
		return role == domain.RoleLandlord || role == domain.RoleAdmin
	case wizard.FlowLandlordOnboarding:
		return role == domain.RoleLandlord
	case wizard.FlowTenantOnboarding:
		return role == domain.RoleTenant
	}
	return false
}

func (u *wizardUsecase) session(ctx context.Context, flowName string) (string, *wizard.Session, error) {
	authID, role, err := principalFromCtx(ctx)
	if err != nil {
		return "", nil, err
	}
	if _, ok := u.store.Flow(flowName); !ok {
		return "", nil, apperror.NotFound("Unknown wizard flow")
	}
	if !flowAllowed(flowName, role) {
		return "", nil, apperror.Forbidden("Your role cannot run this wizard")
	}
	s := u.store.Get(authID, flowName)
	if s == nil {
		return "", nil, apperror.NotFound("No wizard in progress; start one first")
	}
	return authID, s, nil
}

func (u *wizardUsecase) Start(ctx context.Context, flowName string) (*wizard.Session, error) {
	authID, role, err := principalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := u.store.Flow(flowName); !ok {
		return nil, apperror.NotFound("Unknown wizard flow")
	}
	if !flowAllowed(flowName, role) {
		return nil, apperror.Forbidden("Your role cannot run this wizard")
	}
	s, _ := u.store.Start(authID, flowName)
	return s.Snapshot(), nil
}

func (u *wizardUsecase) Get(ctx context.Context, flowName string) (*wizard.Session, error) {
	_, s, err := u.session(ctx, flowName)
	if err != nil {
		return nil, err
	}
	return s.Snapshot(), nil
}

func (u *wizardUsecase) SetFields(ctx context.Context, flowName string, fields map[string]any) (*wizard.Session, error) {
	_, s, err := u.session(ctx, flowName)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		s.Set(k, v)
	}
	return s.Snapshot(), nil
}

func (u *wizardUsecase) Toggle(ctx context.Context, flowName, collection, value string) (*wizard.Session, error) {
	_, s, err := u.session(ctx, flowName)
	if err != nil {
		return nil, err
	}
	if collection == "" || value == "" {
		return nil, apperror.BadRequest("collection and value are required")
	}
	s.Toggle(collection, value)
	return s.Snapshot(), nil
}

func (u *wizardUsecase) Next(ctx context.Context, flowName string) (*wizard.Session, error) {
	_, s, err := u.session(ctx, flowName)
	if err != nil {
		return nil, err
	}
	// Validation failure is state, not an error: the session comes back with
	// the step unchanged and Errors populated.
	s.Next()
	return s.Snapshot(), nil
}

func (u *wizardUsecase) Prev(ctx context.Context, flowName string) (*wizard.Session, error) {
	_, s, err := u.session(ctx, flowName)
	if err != nil {
		return nil, err
	}
	s.Prev()
	return s.Snapshot(), nil
}

// Submit aggregates validation across all steps, then delegates to the
// flow-specific pipeline. On failure the session stays put for retry; on
// success it is dropped.
func (u *wizardUsecase) Submit(ctx context.Context, flowName string, images []domain.ImageUpload) (*domain.WizardSubmitResult, error) {
	authID, s, err := u.session(ctx, flowName)
	if err != nil {
		return nil, err
	}

	ok, errs := s.BeginSubmit()
	if !ok {
		return nil, apperror.Validation(errs)
	}

	// The pipeline reads from a detached copy so a concurrent tab editing
	// fields cannot change the draft mid-submit.
	snap := s.Snapshot()

	var result *domain.WizardSubmitResult
	switch flowName {
	case wizard.FlowListing:
		result, err = u.submitListing(ctx, snap, images)
	case wizard.FlowLandlordOnboarding, wizard.FlowTenantOnboarding:
		result, err = u.submitOnboarding(ctx, authID, snap)
	default:
		err = apperror.NotFound("Unknown wizard flow")
	}

	if err != nil {
		s.Fail(err.Error())
		return nil, err
	}

	s.Succeed()
	u.store.Drop(authID, flowName)
	return result, nil
}

func (u *wizardUsecase) submitListing(ctx context.Context, s *wizard.Session, images []domain.ImageUpload) (*domain.WizardSubmitResult, error) {
	_, role, err := principalFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	draft := &domain.ListingDraft{
		Title:            s.Values.String("title"),
		Description:      s.Values.String("description"),
		Address:          s.Values.String("address"),
		Suburb:           s.Values.String("suburb"),
		City:             s.Values.String("city"),
		RentPerWeek:      s.Values.Number("rent_per_week"),
		Bedrooms:         s.Values.Int("bedrooms"),
		Bathrooms:        s.Values.Int("bathrooms"),
		Furnished:        s.Values.Bool("furnished"),
		PetsAllowed:      s.Values.Bool("pets_allowed"),
		SmokersAllowed:   s.Values.Bool("smokers_allowed"),
		Amenities:        s.Values.Strings("amenities"),
		AvailableFrom:    s.Values.String("available_from"),
		ComplianceStatus: domain.ComplianceStatus(s.Values.String("compliance_status")),
	}

	listing, err := u.listingUC.SubmitListing(ctx, draft, images)
	if err != nil {
		return nil, err
	}

	return &domain.WizardSubmitResult{
		ListingID:  &listing.ID,
		RedirectTo: role.LandingRoute(),
	}, nil
}

func (u *wizardUsecase) submitOnboarding(ctx context.Context, authID string, s *wizard.Session) (*domain.WizardSubmitResult, error) {
	p, err := u.profileRepo.GetByAuthID(ctx, authID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NeedsVerification("Your account is awaiting email verification")
	}
	if err != nil {
		return nil, apperror.Persistence(err)
	}

	if name := s.Values.String("full_name"); name != "" {
		p.FullName = &name
	}
	if phone := s.Values.String("phone"); phone != "" {
		p.Phone = &phone
	}
	if err := u.profileRepo.Update(ctx, p); err != nil {
		return nil, apperror.Persistence(err)
	}

	// The whole answer bag lands in preferences; last write wins.
	if err := u.profileRepo.UpdatePreferences(ctx, authID, s.Values); err != nil {
		return nil, apperror.Persistence(err)
	}

	return &domain.WizardSubmitResult{RedirectTo: p.Role.LandingRoute()}, nil
}
