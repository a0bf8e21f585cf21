package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"testing"
	"time"

	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/internal/usecase"
	"keyskeeper-backend/internal/wizard"
	"keyskeeper-backend/pkg/apperror"
	"keyskeeper-backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

// Mock Repositories

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockProfileRepo) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
func (m *MockProfileRepo) GetByAuthID(ctx context.Context, authID string) (*domain.Profile, error) {
	args := m.Called(ctx, authID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
func (m *MockProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
func (m *MockProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockProfileRepo) UpdatePreferences(ctx context.Context, authID string, prefs map[string]any) error {
	return m.Called(ctx, authID, prefs).Error(0)
}
func (m *MockProfileRepo) List(ctx context.Context, role domain.Role, limit, offset int) ([]domain.Profile, int64, error) {
	args := m.Called(ctx, role, limit, offset)
	var profiles []domain.Profile
	if args.Get(0) != nil {
		profiles = args.Get(0).([]domain.Profile)
	}
	return profiles, args.Get(1).(int64), args.Error(2)
}
func (m *MockProfileRepo) SetVerified(ctx context.Context, id int64, verified bool) error {
	return m.Called(ctx, id, verified).Error(0)
}
func (m *MockProfileRepo) SetRole(ctx context.Context, id int64, role domain.Role) error {
	return m.Called(ctx, id, role).Error(0)
}
func (m *MockProfileRepo) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Role]int64), args.Error(1)
}

type MockListingRepo struct {
	mock.Mock
}

func (m *MockListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}
func (m *MockListingRepo) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepo) FetchAvailable(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, int64, error) {
	args := m.Called(ctx, f)
	var listings []domain.Listing
	if args.Get(0) != nil {
		listings = args.Get(0).([]domain.Listing)
	}
	return listings, args.Get(1).(int64), args.Error(2)
}
func (m *MockListingRepo) FetchByLandlord(ctx context.Context, landlordID int64, limit, offset int) ([]domain.Listing, int64, error) {
	args := m.Called(ctx, landlordID, limit, offset)
	var listings []domain.Listing
	if args.Get(0) != nil {
		listings = args.Get(0).([]domain.Listing)
	}
	return listings, args.Get(1).(int64), args.Error(2)
}
func (m *MockListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}
func (m *MockListingRepo) SetCompliance(ctx context.Context, id int64, status domain.ComplianceStatus) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *MockListingRepo) RefreshAvailability(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockListingRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockListingRepo) CountByCompliance(ctx context.Context) (map[domain.ComplianceStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.ComplianceStatus]int64), args.Error(1)
}

type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) UploadFile(ctx context.Context, path string, contentType string, data io.Reader) (string, error) {
	args := m.Called(ctx, path, contentType, data)
	return args.String(0), args.Error(1)
}
func (m *MockFileStore) DeleteFile(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

type MockViewingRepo struct {
	mock.Mock
}

func (m *MockViewingRepo) Create(ctx context.Context, v *domain.ViewingRequest) error {
	return m.Called(ctx, v).Error(0)
}
func (m *MockViewingRepo) GetByID(ctx context.Context, id int64) (*domain.ViewingRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ViewingRequest), args.Error(1)
}
func (m *MockViewingRepo) FetchByListing(ctx context.Context, listingID int64, limit, offset int) ([]domain.ViewingRequest, int64, error) {
	args := m.Called(ctx, listingID, limit, offset)
	var viewings []domain.ViewingRequest
	if args.Get(0) != nil {
		viewings = args.Get(0).([]domain.ViewingRequest)
	}
	return viewings, args.Get(1).(int64), args.Error(2)
}
func (m *MockViewingRepo) FetchByTenant(ctx context.Context, tenantID int64, limit, offset int) ([]domain.ViewingRequest, int64, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	var viewings []domain.ViewingRequest
	if args.Get(0) != nil {
		viewings = args.Get(0).([]domain.ViewingRequest)
	}
	return viewings, args.Get(1).(int64), args.Error(2)
}
func (m *MockViewingRepo) HasApprovedSlot(ctx context.Context, listingID int64, slotAt time.Time) (bool, error) {
	args := m.Called(ctx, listingID, slotAt)
	return args.Bool(0), args.Error(1)
}
func (m *MockViewingRepo) UpdateStatus(ctx context.Context, id int64, status domain.ViewingStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type MockMaintenanceRepo struct {
	mock.Mock
}

func (m *MockMaintenanceRepo) Create(ctx context.Context, r *domain.MaintenanceRequest) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockMaintenanceRepo) GetByID(ctx context.Context, id int64) (*domain.MaintenanceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenanceRequest), args.Error(1)
}
func (m *MockMaintenanceRepo) FetchByStatus(ctx context.Context, status domain.MaintenanceStatus, limit, offset int) ([]domain.MaintenanceRequest, int64, error) {
	args := m.Called(ctx, status, limit, offset)
	var reqs []domain.MaintenanceRequest
	if args.Get(0) != nil {
		reqs = args.Get(0).([]domain.MaintenanceRequest)
	}
	return reqs, args.Get(1).(int64), args.Error(2)
}
func (m *MockMaintenanceRepo) FetchByTenant(ctx context.Context, tenantID int64, limit, offset int) ([]domain.MaintenanceRequest, int64, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	var reqs []domain.MaintenanceRequest
	if args.Get(0) != nil {
		reqs = args.Get(0).([]domain.MaintenanceRequest)
	}
	return reqs, args.Get(1).(int64), args.Error(2)
}
func (m *MockMaintenanceRepo) UpdateStatus(ctx context.Context, id int64, status domain.MaintenanceStatus, resolvedAt *time.Time) error {
	return m.Called(ctx, id, status, resolvedAt).Error(0)
}

// Test helpers

func ctxAs(authID string, role domain.Role) context.Context {
	ctx := context.WithValue(context.Background(), domain.KeyUserID, authID)
	return context.WithValue(ctx, domain.KeyUserRole, string(role))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func validDraft() *domain.ListingDraft {
	return &domain.ListingDraft{
		Title:         "Sunny two-bedroom unit",
		Address:       "12 Katipo Lane",
		Suburb:        "Newtown",
		City:          "Wellington",
		RentPerWeek:   650,
		Bedrooms:      2,
		Bathrooms:     1,
		AvailableFrom: "2026-10-01",
	}
}

func landlordProfile() *domain.Profile {
	return &domain.Profile{ID: 7, AuthID: "landlord-1", Email: "owner@example.com", Role: domain.RoleLandlord}
}

// Listing submission pipeline

func TestSubmitListingAuthorization(t *testing.T) {
	listingRepo := new(MockListingRepo)
	profileRepo := new(MockProfileRepo)
	fileStore := new(MockFileStore)
	uc := usecase.NewListingUsecase(listingRepo, profileRepo, fileStore, nil)

	t.Run("Tenant cannot submit", func(t *testing.T) {
		_, err := uc.SubmitListing(ctxAs("tenant-1", domain.RoleTenant), validDraft(), nil)
		assert.Error(t, err)
		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.KindAccessDenied, appErr.Kind)
	})

	t.Run("Missing principal fails closed", func(t *testing.T) {
		_, err := uc.SubmitListing(context.Background(), validDraft(), nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "User not authenticated")
	})

	t.Run("Validation runs before the role gate", func(t *testing.T) {
		_, err := uc.SubmitListing(ctxAs("tenant-1", domain.RoleTenant), &domain.ListingDraft{}, nil)
		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.KindValidation, appErr.Kind)
	})

	listingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitListingValidationAggregates(t *testing.T) {
	uc := usecase.NewListingUsecase(new(MockListingRepo), new(MockProfileRepo), new(MockFileStore), nil)

	draft := &domain.ListingDraft{AvailableFrom: "01/10/2026"}
	_, err := uc.SubmitListing(ctxAs("landlord-1", domain.RoleLandlord), draft, nil)

	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Details, "title is required")
	assert.Contains(t, appErr.Details, "rent per week must be greater than zero")
	assert.Contains(t, appErr.Details, "available from must be a YYYY-MM-DD date")
}

func TestSubmitListingPlaceholderOnZeroImages(t *testing.T) {
	listingRepo := new(MockListingRepo)
	profileRepo := new(MockProfileRepo)
	fileStore := new(MockFileStore)
	uc := usecase.NewListingUsecase(listingRepo, profileRepo, fileStore, nil)

	profileRepo.On("GetByAuthID", mock.Anything, "landlord-1").Return(landlordProfile(), nil)
	var persisted *domain.Listing
	listingRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		persisted = args.Get(1).(*domain.Listing)
		persisted.ID = 42
	}).Return(nil)

	listing, err := uc.SubmitListing(ctxAs("landlord-1", domain.RoleLandlord), validDraft(), nil)

	assert.NoError(t, err)
	assert.Equal(t, []string{domain.PlaceholderImageURL}, persisted.Images)
	assert.True(t, persisted.Available)
	assert.Equal(t, domain.CompliancePending, persisted.ComplianceStatus)
	assert.Equal(t, int64(7), persisted.LandlordID)
	assert.Equal(t, int64(42), listing.ID)
	fileStore.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitListingUploadFailureNeverPersists(t *testing.T) {
	listingRepo := new(MockListingRepo)
	profileRepo := new(MockProfileRepo)
	fileStore := new(MockFileStore)
	uc := usecase.NewListingUsecase(listingRepo, profileRepo, fileStore, nil)

	profileRepo.On("GetByAuthID", mock.Anything, "landlord-1").Return(landlordProfile(), nil)
	fileStore.On("UploadFile", mock.Anything, mock.Anything, "image/jpeg", mock.Anything).
		Return("https://cdn.example.com/1.jpg", nil).Once()
	fileStore.On("UploadFile", mock.Anything, mock.Anything, "image/jpeg", mock.Anything).
		Return("", errors.New("bucket unavailable")).Once()

	img := pngBytes(t)
	images := []domain.ImageUpload{
		{Filename: "front.png", ContentType: "image/png", Data: bytes.NewReader(img)},
		{Filename: "kitchen.png", ContentType: "image/png", Data: bytes.NewReader(img)},
		{Filename: "garden.png", ContentType: "image/png", Data: bytes.NewReader(img)},
	}

	_, err := uc.SubmitListing(ctxAs("landlord-1", domain.RoleLandlord), validDraft(), images)

	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindUpload, appErr.Kind)
	assert.Contains(t, appErr.Message, "kitchen.png")

	// The batch aborts at the failure: the third file is never attempted and
	// the row is never written.
	fileStore.AssertNumberOfCalls(t, "UploadFile", 2)
	listingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitListingComplianceOverride(t *testing.T) {
	t.Run("Landlord-sent compliance is discarded", func(t *testing.T) {
		listingRepo := new(MockListingRepo)
		profileRepo := new(MockProfileRepo)
		uc := usecase.NewListingUsecase(listingRepo, profileRepo, new(MockFileStore), nil)

		profileRepo.On("GetByAuthID", mock.Anything, "landlord-1").Return(landlordProfile(), nil)
		var persisted *domain.Listing
		listingRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*domain.Listing)
		}).Return(nil)

		draft := validDraft()
		draft.ComplianceStatus = domain.ComplianceCompliant
		_, err := uc.SubmitListing(ctxAs("landlord-1", domain.RoleLandlord), draft, nil)

		assert.NoError(t, err)
		assert.Equal(t, domain.CompliancePending, persisted.ComplianceStatus)
	})

	t.Run("Admin-sent compliance is honored", func(t *testing.T) {
		listingRepo := new(MockListingRepo)
		profileRepo := new(MockProfileRepo)
		uc := usecase.NewListingUsecase(listingRepo, profileRepo, new(MockFileStore), nil)

		admin := &domain.Profile{ID: 1, AuthID: "admin-1", Role: domain.RoleAdmin}
		profileRepo.On("GetByAuthID", mock.Anything, "admin-1").Return(admin, nil)
		var persisted *domain.Listing
		listingRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*domain.Listing)
		}).Return(nil)

		draft := validDraft()
		draft.ComplianceStatus = domain.ComplianceCompliant
		_, err := uc.SubmitListing(ctxAs("admin-1", domain.RoleAdmin), draft, nil)

		assert.NoError(t, err)
		assert.Equal(t, domain.ComplianceCompliant, persisted.ComplianceStatus)
	})
}

func TestSubmitListingPersistenceErrorVerbatim(t *testing.T) {
	listingRepo := new(MockListingRepo)
	profileRepo := new(MockProfileRepo)
	uc := usecase.NewListingUsecase(listingRepo, profileRepo, new(MockFileStore), nil)

	profileRepo.On("GetByAuthID", mock.Anything, "landlord-1").Return(landlordProfile(), nil)
	listingRepo.On("Create", mock.Anything, mock.Anything).
		Return(errors.New(`duplicate key value violates unique constraint "listings_pkey"`))

	_, err := uc.SubmitListing(ctxAs("landlord-1", domain.RoleLandlord), validDraft(), nil)

	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindPersistence, appErr.Kind)
	assert.Contains(t, appErr.Message, "listings_pkey")
}

// Session resolution

func TestGetCurrentProfile(t *testing.T) {
	t.Run("Missing row is needs-verification, not access denied", func(t *testing.T) {
		profileRepo := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(profileRepo, nil)
		profileRepo.On("GetByAuthID", mock.Anything, "auth-1").Return(nil, domain.ErrNotFound)

		_, err := uc.GetCurrentProfile(context.Background(), "auth-1")

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.KindNeedsVerification, appErr.Kind)
	})

	t.Run("Lookup failure fails closed", func(t *testing.T) {
		profileRepo := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(profileRepo, nil)
		profileRepo.On("GetByAuthID", mock.Anything, "auth-1").Return(nil, errors.New("connection refused"))

		_, err := uc.GetCurrentProfile(context.Background(), "auth-1")

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.KindAccessDenied, appErr.Kind)
	})
}

func TestEnsureProfile(t *testing.T) {
	t.Run("Existing profile is returned untouched", func(t *testing.T) {
		profileRepo := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(profileRepo, nil)
		existing := landlordProfile()
		profileRepo.On("GetByAuthID", mock.Anything, "landlord-1").Return(existing, nil)

		p, err := uc.EnsureProfile(context.Background(), "landlord-1", "owner@example.com", domain.RoleTenant)

		assert.NoError(t, err)
		assert.Same(t, existing, p)
		profileRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Self-selected admin is downgraded to tenant", func(t *testing.T) {
		profileRepo := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(profileRepo, nil)
		profileRepo.On("GetByAuthID", mock.Anything, "new-user").Return(nil, domain.ErrNotFound)
		profileRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		p, err := uc.EnsureProfile(context.Background(), "new-user", "x@example.com", domain.RoleAdmin)

		assert.NoError(t, err)
		assert.Equal(t, domain.RoleTenant, p.Role)
	})
}

func TestUpdateContactDetailsOwnership(t *testing.T) {
	uc := usecase.NewAuthUsecase(new(MockProfileRepo), nil)

	err := uc.UpdateContactDetails(ctxAs("user-a", domain.RoleTenant), "user-b", nil, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "only update your own profile")
}

// Wizard-driven submission

func newWizardFixture(t *testing.T) (domain.WizardUsecase, *wizard.Store, *MockListingRepo, *MockProfileRepo) {
	t.Helper()
	listingRepo := new(MockListingRepo)
	profileRepo := new(MockProfileRepo)
	listingUC := usecase.NewListingUsecase(listingRepo, profileRepo, new(MockFileStore), nil)
	store := wizard.NewStore(wizard.Flows())
	return usecase.NewWizardUsecase(store, profileRepo, listingUC), store, listingRepo, profileRepo
}

func TestWizardListingFlowEndToEnd(t *testing.T) {
	uc, store, listingRepo, profileRepo := newWizardFixture(t)
	ctx := ctxAs("landlord-1", domain.RoleLandlord)

	profileRepo.On("GetByAuthID", mock.Anything, "landlord-1").Return(landlordProfile(), nil)
	listingRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Listing).ID = 42
	}).Return(nil)

	s, err := uc.Start(ctx, wizard.FlowListing)
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Current)

	_, err = uc.SetFields(ctx, wizard.FlowListing, map[string]any{
		"title":   "Sunny two-bedroom unit",
		"address": "12 Katipo Lane",
		"suburb":  "Newtown",
		"city":    "Wellington",
	})
	assert.NoError(t, err)

	s, err = uc.Next(ctx, wizard.FlowListing)
	assert.NoError(t, err)
	assert.Equal(t, 2, s.Current)

	// Invalid pricing step: no advance, step-1 answers survive
	s, err = uc.Next(ctx, wizard.FlowListing)
	assert.NoError(t, err)
	assert.Equal(t, 2, s.Current)
	assert.NotEmpty(t, s.Errors)
	assert.Equal(t, "Sunny two-bedroom unit", s.Values.String("title"))

	_, err = uc.SetFields(ctx, wizard.FlowListing, map[string]any{
		"rent_per_week":  650.0,
		"available_from": "2026-10-01",
	})
	assert.NoError(t, err)

	s, err = uc.Next(ctx, wizard.FlowListing)
	assert.NoError(t, err)
	assert.Equal(t, 3, s.Current)

	_, err = uc.Toggle(ctx, wizard.FlowListing, "amenities", "heat-pump")
	assert.NoError(t, err)

	result, err := uc.Submit(ctx, wizard.FlowListing, nil)
	assert.NoError(t, err)
	assert.NotNil(t, result.ListingID)
	assert.Equal(t, int64(42), *result.ListingID)
	assert.Equal(t, "/landlord/dashboard", result.RedirectTo)

	// Session is dropped on success
	assert.Nil(t, store.Get("landlord-1", wizard.FlowListing))
}

func TestWizardSubmitBeforeFinalStep(t *testing.T) {
	uc, _, _, _ := newWizardFixture(t)
	ctx := ctxAs("landlord-1", domain.RoleLandlord)

	_, err := uc.Start(ctx, wizard.FlowListing)
	assert.NoError(t, err)

	_, err = uc.Submit(ctx, wizard.FlowListing, nil)
	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
}

func TestWizardFailedSubmitKeepsSession(t *testing.T) {
	uc, store, listingRepo, profileRepo := newWizardFixture(t)
	ctx := ctxAs("landlord-1", domain.RoleLandlord)

	profileRepo.On("GetByAuthID", mock.Anything, "landlord-1").Return(landlordProfile(), nil)
	listingRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("deadlock detected"))

	_, err := uc.Start(ctx, wizard.FlowListing)
	assert.NoError(t, err)
	_, err = uc.SetFields(ctx, wizard.FlowListing, map[string]any{
		"title": "Villa", "address": "8 Marine Parade", "suburb": "Seatoun", "city": "Wellington",
		"rent_per_week": 900.0, "available_from": "2026-11-01",
	})
	assert.NoError(t, err)
	_, _ = uc.Next(ctx, wizard.FlowListing)
	_, _ = uc.Next(ctx, wizard.FlowListing)

	_, err = uc.Submit(ctx, wizard.FlowListing, nil)
	assert.Error(t, err)

	s := store.Get("landlord-1", wizard.FlowListing)
	assert.NotNil(t, s)
	assert.Equal(t, wizard.StatusFailed, s.Status)
	assert.Equal(t, "Villa", s.Values.String("title"))
}

func TestWizardFlowRoleGate(t *testing.T) {
	uc, _, _, _ := newWizardFixture(t)

	_, err := uc.Start(ctxAs("tenant-1", domain.RoleTenant), wizard.FlowListing)
	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindAccessDenied, appErr.Kind)

	_, err = uc.Start(ctxAs("tenant-1", domain.RoleTenant), "no-such-flow")
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindNotFound, appErr.Kind)
}

func TestWizardGetWithoutStart(t *testing.T) {
	uc, _, _, _ := newWizardFixture(t)

	_, err := uc.Get(ctxAs("landlord-1", domain.RoleLandlord), wizard.FlowListing)
	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindNotFound, appErr.Kind)
}

// Maintenance lifecycle

func TestMaintenanceTransition(t *testing.T) {
	maintenanceRepo := new(MockMaintenanceRepo)
	uc := usecase.NewMaintenanceUsecase(maintenanceRepo, new(MockListingRepo), new(MockProfileRepo), nil)
	ctx := ctxAs("worker-1", domain.RoleMaintenance)

	t.Run("Forward transition succeeds", func(t *testing.T) {
		maintenanceRepo.On("GetByID", mock.Anything, int64(5)).
			Return(&domain.MaintenanceRequest{ID: 5, Status: domain.MaintenanceOpen}, nil).Once()
		maintenanceRepo.On("UpdateStatus", mock.Anything, int64(5), domain.MaintenanceResolved, mock.Anything).Return(nil).Once()

		assert.NoError(t, uc.Transition(ctx, 5, domain.MaintenanceResolved))
	})

	t.Run("Backward transition is rejected", func(t *testing.T) {
		maintenanceRepo.On("GetByID", mock.Anything, int64(6)).
			Return(&domain.MaintenanceRequest{ID: 6, Status: domain.MaintenanceResolved}, nil).Once()

		err := uc.Transition(ctx, 6, domain.MaintenanceOpen)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot move")
	})

	t.Run("Tenant cannot transition", func(t *testing.T) {
		err := uc.Transition(ctxAs("tenant-1", domain.RoleTenant), 5, domain.MaintenanceResolved)
		assert.Error(t, err)
	})
}

// Viewings

func TestViewingDoubleBookingRejected(t *testing.T) {
	viewingRepo := new(MockViewingRepo)
	listingRepo := new(MockListingRepo)
	profileRepo := new(MockProfileRepo)
	uc := usecase.NewViewingUsecase(viewingRepo, listingRepo, profileRepo, nil)

	slot := time.Now().Add(48 * time.Hour)
	viewingRepo.On("GetByID", mock.Anything, int64(9)).
		Return(&domain.ViewingRequest{ID: 9, ListingID: 3, SlotAt: slot, Status: domain.ViewingRequested}, nil)
	listingRepo.On("GetByID", mock.Anything, int64(3)).
		Return(&domain.Listing{ID: 3, LandlordID: 7}, nil)
	profileRepo.On("GetByAuthID", mock.Anything, "landlord-1").Return(landlordProfile(), nil)
	viewingRepo.On("HasApprovedSlot", mock.Anything, int64(3), slot).Return(true, nil)

	err := uc.Respond(ctxAs("landlord-1", domain.RoleLandlord), 9, true)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already approved")
	viewingRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestViewingRespondOwnership(t *testing.T) {
	viewingRepo := new(MockViewingRepo)
	listingRepo := new(MockListingRepo)
	profileRepo := new(MockProfileRepo)
	uc := usecase.NewViewingUsecase(viewingRepo, listingRepo, profileRepo, nil)

	viewingRepo.On("GetByID", mock.Anything, int64(9)).
		Return(&domain.ViewingRequest{ID: 9, ListingID: 3, Status: domain.ViewingRequested}, nil)
	listingRepo.On("GetByID", mock.Anything, int64(3)).
		Return(&domain.Listing{ID: 3, LandlordID: 99}, nil)
	profileRepo.On("GetByAuthID", mock.Anything, "landlord-1").Return(landlordProfile(), nil)

	err := uc.Respond(ctxAs("landlord-1", domain.RoleLandlord), 9, false)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "your own listings")
}

// Admin surface

func TestAdminOnlyOperations(t *testing.T) {
	profileRepo := new(MockProfileRepo)
	listingRepo := new(MockListingRepo)
	uc := usecase.NewAdminUsecase(profileRepo, listingRepo)

	t.Run("Landlord cannot read stats", func(t *testing.T) {
		_, err := uc.Stats(ctxAs("landlord-1", domain.RoleLandlord))
		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.KindAccessDenied, appErr.Kind)
	})

	t.Run("Unknown role cannot be assigned", func(t *testing.T) {
		err := uc.AssignRole(ctxAs("admin-1", domain.RoleAdmin), 4, domain.Role("superuser"))
		assert.Error(t, err)
		profileRepo.AssertNotCalled(t, "SetRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Stats aggregates both counters", func(t *testing.T) {
		profileRepo.On("CountByRole", mock.Anything).
			Return(map[domain.Role]int64{domain.RoleTenant: 12}, nil)
		listingRepo.On("CountByCompliance", mock.Anything).
			Return(map[domain.ComplianceStatus]int64{domain.CompliancePending: 4}, nil)

		stats, err := uc.Stats(ctxAs("admin-1", domain.RoleAdmin))
		assert.NoError(t, err)
		assert.Equal(t, int64(12), stats.ProfilesByRole[domain.RoleTenant])
		assert.Equal(t, int64(4), stats.ListingsByCompliance[domain.CompliancePending])
	})
}
