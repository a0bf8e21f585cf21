package domain

import (
	"context"

	"keyskeeper-backend/internal/wizard"
)

// WizardSubmitResult tells the client where to go after a successful
// submission. ListingID is set for the listing flow only.
type WizardSubmitResult struct {
	ListingID  *int64 `json:"listing_id,omitempty"`
	RedirectTo string `json:"redirect_to"`
}

// WizardUsecase drives server-held wizard sessions for the registered flows.
// Step navigation never errors on validation failure; the returned session
// carries the step index and error list instead.
type WizardUsecase interface {
	Start(ctx context.Context, flowName string) (*wizard.Session, error)
	Get(ctx context.Context, flowName string) (*wizard.Session, error)
	SetFields(ctx context.Context, flowName string, fields map[string]any) (*wizard.Session, error)
	Toggle(ctx context.Context, flowName, collection, value string) (*wizard.Session, error)
	Next(ctx context.Context, flowName string) (*wizard.Session, error)
	Prev(ctx context.Context, flowName string) (*wizard.Session, error)
	Submit(ctx context.Context, flowName string, images []ImageUpload) (*WizardSubmitResult, error)
}
