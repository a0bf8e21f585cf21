package domain

import (
	"context"
	"time"
)

type MaintenanceStatus string

const (
	MaintenanceOpen       MaintenanceStatus = "open"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceResolved   MaintenanceStatus = "resolved"
)

func (s MaintenanceStatus) IsValid() bool {
	switch s {
	case MaintenanceOpen, MaintenanceInProgress, MaintenanceResolved:
		return true
	}
	return false
}

type MaintenancePriority string

const (
	PriorityLow    MaintenancePriority = "low"
	PriorityMedium MaintenancePriority = "medium"
	PriorityUrgent MaintenancePriority = "urgent"
)

func (p MaintenancePriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityUrgent:
		return true
	}
	return false
}

// MaintenanceRequest is a tenant-filed issue against a listing.
type MaintenanceRequest struct {
	ID          int64               `json:"id"`
	ListingID   int64               `json:"listing_id"`
	TenantID    int64               `json:"tenant_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    MaintenancePriority `json:"priority"`
	Status      MaintenanceStatus   `json:"status"`
	ResolvedAt  *time.Time          `json:"resolved_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type MaintenanceRepository interface {
	Create(ctx context.Context, r *MaintenanceRequest) error
	GetByID(ctx context.Context, id int64) (*MaintenanceRequest, error)
	FetchByStatus(ctx context.Context, status MaintenanceStatus, limit, offset int) ([]MaintenanceRequest, int64, error)
	FetchByTenant(ctx context.Context, tenantID int64, limit, offset int) ([]MaintenanceRequest, int64, error)
	UpdateStatus(ctx context.Context, id int64, status MaintenanceStatus, resolvedAt *time.Time) error
}

type MaintenanceUsecase interface {
	FileRequest(ctx context.Context, listingID int64, title, description string, priority MaintenancePriority) (*MaintenanceRequest, error)
	ListByStatus(ctx context.Context, status MaintenanceStatus, page, pageSize int) ([]MaintenanceRequest, int64, error)
	ListMine(ctx context.Context, page, pageSize int) ([]MaintenanceRequest, int64, error)
	Transition(ctx context.Context, id int64, status MaintenanceStatus) error
}
