package wizard

import (
	"fmt"
	"time"
)

// Flow names routable from the API.
const (
	FlowListing            = "listing"
	FlowLandlordOnboarding = "landlord-onboarding"
	FlowTenantOnboarding   = "tenant-onboarding"
)

// Flows returns every registered flow keyed by name. Validation rules are
// declared here as data; the engine itself knows nothing about listings or
// onboarding.
func Flows() map[string]*Flow {
	return map[string]*Flow{
		FlowListing:            ListingFlow(),
		FlowLandlordOnboarding: LandlordOnboardingFlow(),
		FlowTenantOnboarding:   TenantOnboardingFlow(),
	}
}

// ListingFlow is the 3-step property-listing wizard: basics, pricing and
// availability, then features and photos.
func ListingFlow() *Flow {
	return &Flow{
		Name: FlowListing,
		Initial: func() Values {
			return Values{
				"amenities": []string{},
				"bedrooms":  1,
				"bathrooms": 1,
			}
		},
		Steps: []Step{
			{
				Name: "basics",
				Validate: func(v Values) []string {
					var errs []string
					if v.String("title") == "" {
						errs = append(errs, "title is required")
					}
					if v.String("address") == "" {
						errs = append(errs, "address is required")
					}
					if v.String("suburb") == "" {
						errs = append(errs, "suburb is required")
					}
					if v.String("city") == "" {
						errs = append(errs, "city is required")
					}
					return errs
				},
			},
			{
				Name: "pricing",
				Validate: func(v Values) []string {
					var errs []string
					if v.Number("rent_per_week") <= 0 {
						errs = append(errs, "rent per week must be greater than zero")
					}
					from := v.String("available_from")
					if from == "" {
						errs = append(errs, "available from date is required")
					} else if _, err := time.Parse("2006-01-02", from); err != nil {
						errs = append(errs, fmt.Sprintf("available from must be a YYYY-MM-DD date, got %q", from))
					}
					if v.Int("bedrooms") < 1 {
						errs = append(errs, "at least one bedroom is required")
					}
					if v.Int("bathrooms") < 1 {
						errs = append(errs, "at least one bathroom is required")
					}
					return errs
				},
			},
			{
				// Features, amenities and photos are all optional; a listing
				// without photos gets the placeholder image at submission.
				Name: "features",
			},
		},
	}
}

// LandlordOnboardingFlow collects contact details, portfolio goals and how
// the landlord heard about the platform.
func LandlordOnboardingFlow() *Flow {
	return &Flow{
		Name: FlowLandlordOnboarding,
		Initial: func() Values {
			return Values{
				"goals":    []string{},
				"channels": []string{},
			}
		},
		Steps: []Step{
			{
				Name: "details",
				Validate: func(v Values) []string {
					var errs []string
					if v.String("full_name") == "" {
						errs = append(errs, "full name is required")
					}
					if v.String("phone") == "" {
						errs = append(errs, "phone number is required")
					}
					return errs
				},
			},
			{
				Name: "goals",
				Validate: func(v Values) []string {
					if len(v.Strings("goals")) == 0 {
						return []string{"select at least one goal"}
					}
					return nil
				},
			},
			{
				Name: "channels",
			},
		},
	}
}

// TenantOnboardingFlow collects contact details and search preferences.
func TenantOnboardingFlow() *Flow {
	return &Flow{
		Name: FlowTenantOnboarding,
		Initial: func() Values {
			return Values{
				"preferred_suburbs": []string{},
				"must_haves":        []string{},
			}
		},
		Steps: []Step{
			{
				Name: "details",
				Validate: func(v Values) []string {
					var errs []string
					if v.String("full_name") == "" {
						errs = append(errs, "full name is required")
					}
					return errs
				},
			},
			{
				Name: "preferences",
				Validate: func(v Values) []string {
					if v.Number("budget_per_week") <= 0 {
						return []string{"weekly budget must be greater than zero"}
					}
					return nil
				},
			},
			{
				Name: "must-haves",
			},
		},
	}
}
