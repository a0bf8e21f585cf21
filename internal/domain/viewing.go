package domain

import (
	"context"
	"time"
)

type ViewingStatus string

const (
	ViewingRequested ViewingStatus = "requested"
	ViewingApproved  ViewingStatus = "approved"
	ViewingDeclined  ViewingStatus = "declined"
)

// ViewingRequest is a prospective tenant's request for a viewing slot on a
// listing. A slot that already has an approved viewing cannot be approved
// again for the same listing.
type ViewingRequest struct {
	ID        int64         `json:"id"`
	ListingID int64         `json:"listing_id"`
	TenantID  int64         `json:"tenant_id"`
	SlotAt    time.Time     `json:"slot_at"`
	Message   *string       `json:"message,omitempty"`
	Status    ViewingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type ViewingRepository interface {
	Create(ctx context.Context, v *ViewingRequest) error
	GetByID(ctx context.Context, id int64) (*ViewingRequest, error)
	FetchByListing(ctx context.Context, listingID int64, limit, offset int) ([]ViewingRequest, int64, error)
	FetchByTenant(ctx context.Context, tenantID int64, limit, offset int) ([]ViewingRequest, int64, error)
	HasApprovedSlot(ctx context.Context, listingID int64, slotAt time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status ViewingStatus) error
}

type ViewingUsecase interface {
	RequestViewing(ctx context.Context, listingID int64, slotAt time.Time, message *string) (*ViewingRequest, error)
	ListForListing(ctx context.Context, listingID int64, page, pageSize int) ([]ViewingRequest, int64, error)
	ListMine(ctx context.Context, page, pageSize int) ([]ViewingRequest, int64, error)
	Respond(ctx context.Context, id int64, approve bool) error
}
