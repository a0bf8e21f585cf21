package domain

import (
	"context"
	"io"
	"time"
)

// ComplianceStatus gates the Healthy-Homes badge on a listing. Only admins may
// set it at creation time; everyone else gets "pending".
type ComplianceStatus string

const (
	CompliancePending      ComplianceStatus = "pending"
	ComplianceCompliant    ComplianceStatus = "compliant"
	ComplianceNonCompliant ComplianceStatus = "non_compliant"
)

func (s ComplianceStatus) IsValid() bool {
	switch s {
	case CompliancePending, ComplianceCompliant, ComplianceNonCompliant:
		return true
	}
	return false
}

// PlaceholderImageURL is persisted when a listing is submitted without photos.
// A listing row never carries an empty image list.
const PlaceholderImageURL = "https://static.keyskeeper.co.nz/images/listing-placeholder.jpg"

// MaxListingImages bounds a single submission's photo batch.
const MaxListingImages = 10

type Listing struct {
	ID               int64            `json:"id"`
	LandlordID       int64            `json:"landlord_id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Address          string           `json:"address"`
	Suburb           string           `json:"suburb"`
	City             string           `json:"city"`
	RentPerWeek      float64          `json:"rent_per_week"`
	Bedrooms         int              `json:"bedrooms"`
	Bathrooms        int              `json:"bathrooms"`
	Furnished        bool             `json:"furnished"`
	PetsAllowed      bool             `json:"pets_allowed"`
	SmokersAllowed   bool             `json:"smokers_allowed"`
	Amenities        []string         `json:"amenities"`
	Images           []string         `json:"images"`
	AvailableFrom    string           `json:"available_from"` // YYYY-MM-DD
	Available        bool             `json:"is_available"`
	ComplianceStatus ComplianceStatus `json:"compliance_status"`
	Latitude         *float64         `json:"latitude,omitempty"`
	Longitude        *float64         `json:"longitude,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ListingDraft is the wizard's output: the listing fields as assembled across
// steps, before images are uploaded and the row persisted.
type ListingDraft struct {
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Address          string           `json:"address"`
	Suburb           string           `json:"suburb"`
	City             string           `json:"city"`
	RentPerWeek      float64          `json:"rent_per_week"`
	Bedrooms         int              `json:"bedrooms"`
	Bathrooms        int              `json:"bathrooms"`
	Furnished        bool             `json:"furnished"`
	PetsAllowed      bool             `json:"pets_allowed"`
	SmokersAllowed   bool             `json:"smokers_allowed"`
	Amenities        []string         `json:"amenities"`
	AvailableFrom    string           `json:"available_from"`
	ComplianceStatus ComplianceStatus `json:"compliance_status,omitempty"` // honored only for admins
}

// ImageUpload is one pending photo from the wizard's final step.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// ListingFilter narrows the public search.
type ListingFilter struct {
	Suburb      string
	City        string
	MinRent     float64
	MaxRent     float64
	MinBedrooms int
	PetsAllowed *bool
	// NearAddress, when set, is geocoded and results are ordered by distance.
	NearAddress string
	Page        int
	PageSize    int
}

type ListingRepository interface {
	Create(ctx context.Context, l *Listing) error
	GetByID(ctx context.Context, id int64) (*Listing, error)
	FetchAvailable(ctx context.Context, f ListingFilter) ([]Listing, int64, error)
	FetchByLandlord(ctx context.Context, landlordID int64, limit, offset int) ([]Listing, int64, error)
	Update(ctx context.Context, l *Listing) error
	SetCompliance(ctx context.Context, id int64, status ComplianceStatus) error
	RefreshAvailability(ctx context.Context, asOf time.Time) (int64, error)
	Delete(ctx context.Context, id int64) error
	CountByCompliance(ctx context.Context) (map[ComplianceStatus]int64, error)
}

// ListingUsecase is the submission pipeline plus read paths. Submit and Update
// follow the strict upload-then-persist ordering documented on the
// implementation.
type ListingUsecase interface {
	SubmitListing(ctx context.Context, draft *ListingDraft, images []ImageUpload) (*Listing, error)
	UpdateListing(ctx context.Context, id int64, draft *ListingDraft, images []ImageUpload, removeImages []string) (*Listing, error)
	GetListing(ctx context.Context, id int64) (*Listing, error)
	Search(ctx context.Context, f ListingFilter) ([]Listing, int64, error)
	ListByLandlord(ctx context.Context, page, pageSize int) ([]Listing, int64, error)
	DeleteListing(ctx context.Context, id int64) error
	SetCompliance(ctx context.Context, id int64, status ComplianceStatus) error
}

// FileStore is the storage collaborator contract: Supabase Storage in
// production. No transactional guarantee across calls.
type FileStore interface {
	UploadFile(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
	DeleteFile(ctx context.Context, url string) error
}

// Geocoder is the geocoding collaborator contract. A nil result with nil
// error means the address could not be resolved.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*LatLng, error)
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
