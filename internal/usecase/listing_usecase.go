package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/pkg/apperror"
	"keyskeeper-backend/pkg/geo"
	"keyskeeper-backend/pkg/logger"
	"keyskeeper-backend/pkg/storage"

	"github.com/google/uuid"
)

const (
	imageMaxDimension = 1600
	imageJPEGQuality  = 80
)

type listingUsecase struct {
	listingRepo domain.ListingRepository
	profileRepo domain.ProfileRepository
	fileStore   domain.FileStore
	geocoder    domain.Geocoder
}

func NewListingUsecase(
	listingRepo domain.ListingRepository,
	profileRepo domain.ProfileRepository,
	fileStore domain.FileStore,
	geocoder domain.Geocoder,
) domain.ListingUsecase {
	return &listingUsecase{
		listingRepo: listingRepo,
		profileRepo: profileRepo,
		fileStore:   fileStore,
		geocoder:    geocoder,
	}
}

// validateDraft re-checks everything the wizard already gated, because the
// pipeline must not trust its caller. Violations come back as one aggregated
// list, not first-failure-only.
func validateDraft(draft *domain.ListingDraft, imageCount int) []string {
	var errs []string
	if draft.Title == "" {
		errs = append(errs, "title is required")
	}
	if draft.Address == "" {
		errs = append(errs, "address is required")
	}
	if draft.Suburb == "" {
		errs = append(errs, "suburb is required")
	}
	if draft.City == "" {
		errs = append(errs, "city is required")
	}
	if draft.RentPerWeek <= 0 {
		errs = append(errs, "rent per week must be greater than zero")
	}
	if draft.AvailableFrom == "" {
		errs = append(errs, "available from date is required")
	} else if _, err := time.Parse("2006-01-02", draft.AvailableFrom); err != nil {
		errs = append(errs, "available from must be a YYYY-MM-DD date")
	}
	if imageCount > domain.MaxListingImages {
		errs = append(errs, fmt.Sprintf("at most %d images are allowed", domain.MaxListingImages))
	}
	if draft.ComplianceStatus != "" && !draft.ComplianceStatus.IsValid() {
		errs = append(errs, "unknown compliance status")
	}
	return errs
}

// uploadImages pushes each pending file to storage strictly in order: upload
// i+1 does not start until upload i resolved, so the stored URL list keeps
// the user's ordering. On the first failure the rest of the batch is
// abandoned and the failing filename is reported. Files already uploaded in
// this attempt stay in the bucket; a retry re-uploads under fresh names.
func (u *listingUsecase) uploadImages(ctx context.Context, images []domain.ImageUpload) ([]string, error) {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		data, err := io.ReadAll(img.Data)
		if err != nil {
			return urls, apperror.Upload(img.Filename, err)
		}
		compressed, err := storage.CompressImage(data, imageMaxDimension, imageJPEGQuality)
		if err != nil {
			return urls, apperror.Upload(img.Filename, err)
		}
		// Filenames are unique per attempt, so a retried submission never
		// collides with its own failed predecessor.
		path := fmt.Sprintf("listings/%s.jpg", uuid.NewString())
		url, err := u.fileStore.UploadFile(ctx, path, "image/jpeg", bytes.NewReader(compressed))
		if err != nil {
			return urls, apperror.Upload(img.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// SubmitListing is the create pipeline: validate, authorize, upload, persist.
// The persist step starts only after every upload has resolved.
func (u *listingUsecase) SubmitListing(ctx context.Context, draft *domain.ListingDraft, images []domain.ImageUpload) (*domain.Listing, error) {
	if errs := validateDraft(draft, len(images)); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	authID, role, err := requireRole(ctx, domain.RoleLandlord, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	owner, err := u.profileRepo.GetByAuthID(ctx, authID)
	if err != nil {
		return nil, apperror.Persistence(err)
	}

	urls, err := u.uploadImages(ctx, images)
	if err != nil {
		return nil, err
	}
	// A listing never persists with an empty image list.
	if len(urls) == 0 {
		urls = []string{domain.PlaceholderImageURL}
	}

	// Compliance is admin-only at creation time; anything a landlord sends
	// is discarded, not rejected.
	compliance := domain.CompliancePending
	if role == domain.RoleAdmin && draft.ComplianceStatus != "" {
		compliance = draft.ComplianceStatus
	}

	now := time.Now()
	listing := &domain.Listing{
		LandlordID:       owner.ID,
		Title:            draft.Title,
		Description:      draft.Description,
		Address:          draft.Address,
		Suburb:           draft.Suburb,
		City:             draft.City,
		RentPerWeek:      draft.RentPerWeek,
		Bedrooms:         draft.Bedrooms,
		Bathrooms:        draft.Bathrooms,
		Furnished:        draft.Furnished,
		PetsAllowed:      draft.PetsAllowed,
		SmokersAllowed:   draft.SmokersAllowed,
		Amenities:        draft.Amenities,
		Images:           urls,
		AvailableFrom:    draft.AvailableFrom,
		Available:        true,
		ComplianceStatus: compliance,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	u.geocodeInto(ctx, listing)

	if err := u.listingRepo.Create(ctx, listing); err != nil {
		// Uploaded images stay in the bucket; a retry re-uploads under
		// fresh names, so nothing collides.
		return nil, apperror.Persistence(err)
	}

	return listing, nil
}

// geocodeInto resolves the listing address to coordinates, best effort. A
// geocoding failure never blocks the listing.
func (u *listingUsecase) geocodeInto(ctx context.Context, l *domain.Listing) {
	if u.geocoder == nil {
		return
	}
	full := fmt.Sprintf("%s, %s, %s", l.Address, l.Suburb, l.City)
	coords, err := u.geocoder.Geocode(ctx, full)
	if err != nil {
		logger.Log.Warn("geocoding failed", "address", full, "error", err)
		return
	}
	if coords != nil {
		l.Latitude = &coords.Lat
		l.Longitude = &coords.Lng
	}
}

// UpdateListing follows the same upload-then-merge discipline as create.
// Storage deletes for removed images run best effort after the row update
// succeeds and never fail the update.
func (u *listingUsecase) UpdateListing(ctx context.Context, id int64, draft *domain.ListingDraft, images []domain.ImageUpload, removeImages []string) (*domain.Listing, error) {
	if errs := validateDraft(draft, len(images)); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	authID, role, err := requireRole(ctx, domain.RoleLandlord, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	listing, err := u.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Listing not found")
	}

	caller, err := u.profileRepo.GetByAuthID(ctx, authID)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	if role != domain.RoleAdmin && listing.LandlordID != caller.ID {
		return nil, apperror.Forbidden("You can only edit your own listings")
	}

	newURLs, err := u.uploadImages(ctx, images)
	if err != nil {
		return nil, err
	}

	remove := make(map[string]bool, len(removeImages))
	for _, url := range removeImages {
		remove[url] = true
	}
	kept := make([]string, 0, len(listing.Images))
	for _, url := range listing.Images {
		if !remove[url] && url != domain.PlaceholderImageURL {
			kept = append(kept, url)
		}
	}
	merged := append(kept, newURLs...)
	if len(merged) == 0 {
		merged = []string{domain.PlaceholderImageURL}
	}

	addressChanged := listing.Address != draft.Address ||
		listing.Suburb != draft.Suburb || listing.City != draft.City

	listing.Title = draft.Title
	listing.Description = draft.Description
	listing.Address = draft.Address
	listing.Suburb = draft.Suburb
	listing.City = draft.City
	listing.RentPerWeek = draft.RentPerWeek
	listing.Bedrooms = draft.Bedrooms
	listing.Bathrooms = draft.Bathrooms
	listing.Furnished = draft.Furnished
	listing.PetsAllowed = draft.PetsAllowed
	listing.SmokersAllowed = draft.SmokersAllowed
	listing.Amenities = draft.Amenities
	listing.Images = merged
	listing.AvailableFrom = draft.AvailableFrom
	listing.UpdatedAt = time.Now()

	if addressChanged {
		u.geocodeInto(ctx, listing)
	}

	if err := u.listingRepo.Update(ctx, listing); err != nil {
		return nil, apperror.Persistence(err)
	}

	// Best-effort cleanup of the removed objects, after the row is safe.
	for url := range remove {
		if url == domain.PlaceholderImageURL {
			continue
		}
		if err := u.fileStore.DeleteFile(ctx, url); err != nil {
			logger.Log.Warn("failed to delete removed image", "url", url, "error", err)
		}
	}

	return listing, nil
}

func (u *listingUsecase) GetListing(ctx context.Context, id int64) (*domain.Listing, error) {
	listing, err := u.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Listing not found")
	}
	return listing, nil
}

// Search is public. When NearAddress is set and geocodable, results are
// re-ordered by great-circle distance; listings without coordinates sort
// last. Geocoding failure degrades to the unordered result, never an error.
func (u *listingUsecase) Search(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 50 {
		f.PageSize = 20
	}

	listings, total, err := u.listingRepo.FetchAvailable(ctx, f)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}

	if f.NearAddress != "" && u.geocoder != nil {
		origin, err := u.geocoder.Geocode(ctx, f.NearAddress)
		if err != nil {
			logger.Log.Warn("search geocoding failed", "address", f.NearAddress, "error", err)
		} else if origin != nil {
			sortByDistance(listings, *origin)
		}
	}

	return listings, total, nil
}

func sortByDistance(listings []domain.Listing, origin domain.LatLng) {
	sort.SliceStable(listings, func(i, j int) bool {
		di, oki := listingDistance(listings[i], origin)
		dj, okj := listingDistance(listings[j], origin)
		if oki != okj {
			return oki
		}
		return di < dj
	})
}

func listingDistance(l domain.Listing, origin domain.LatLng) (float64, bool) {
	if l.Latitude == nil || l.Longitude == nil {
		return 0, false
	}
	return geo.DistanceMeters(origin, domain.LatLng{Lat: *l.Latitude, Lng: *l.Longitude}), true
}

func (u *listingUsecase) ListByLandlord(ctx context.Context, page, pageSize int) ([]domain.Listing, int64, error) {
	authID, _, err := requireRole(ctx, domain.RoleLandlord, domain.RoleAdmin)
	if err != nil {
		return nil, 0, err
	}
	owner, err := u.profileRepo.GetByAuthID(ctx, authID)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 20
	}
	listings, total, err := u.listingRepo.FetchByLandlord(ctx, owner.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	return listings, total, nil
}

func (u *listingUsecase) DeleteListing(ctx context.Context, id int64) error {
	authID, role, err := requireRole(ctx, domain.RoleLandlord, domain.RoleAdmin)
	if err != nil {
		return err
	}
	listing, err := u.listingRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.NotFound("Listing not found")
	}
	if role != domain.RoleAdmin {
		caller, err := u.profileRepo.GetByAuthID(ctx, authID)
		if err != nil {
			return apperror.Persistence(err)
		}
		if listing.LandlordID != caller.ID {
			return apperror.Forbidden("You can only delete your own listings")
		}
	}
	if err := u.listingRepo.Delete(ctx, id); err != nil {
		return apperror.Persistence(err)
	}
	// Photos are cleaned up best effort after the row is gone.
	for _, url := range listing.Images {
		if url == domain.PlaceholderImageURL {
			continue
		}
		if err := u.fileStore.DeleteFile(ctx, url); err != nil {
			logger.Log.Warn("failed to delete listing image", "url", url, "error", err)
		}
	}
	return nil
}

func (u *listingUsecase) SetCompliance(ctx context.Context, id int64, status domain.ComplianceStatus) error {
	if _, _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if !status.IsValid() {
		return apperror.BadRequest("unknown compliance status")
	}
	if err := u.listingRepo.SetCompliance(ctx, id, status); err != nil {
		return apperror.Persistence(err)
	}
	return nil
}
