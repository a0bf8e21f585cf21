package domain_test

import (
	"testing"

	"keyskeeper-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestLandingRouteTotality(t *testing.T) {
	t.Run("Every known role has its own dashboard", func(t *testing.T) {
		seen := map[string]domain.Role{}
		for _, role := range domain.ValidRoles() {
			route := role.LandingRoute()
			assert.NotEmpty(t, route)
			if prev, dup := seen[route]; dup {
				t.Fatalf("roles %s and %s share landing route %s", prev, role, route)
			}
			seen[route] = role
		}
	})

	t.Run("Unknown roles fall back to the generic dashboard", func(t *testing.T) {
		assert.Equal(t, "/dashboard", domain.Role("").LandingRoute())
		assert.Equal(t, "/dashboard", domain.Role("authenticated").LandingRoute())
		assert.Equal(t, "/dashboard", domain.Role("superuser").LandingRoute())
	})

	t.Run("Routing is pure", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			assert.Equal(t, "/landlord/dashboard", domain.RoleLandlord.LandingRoute())
		}
	})
}

func TestNavEntries(t *testing.T) {
	t.Run("Every role gets a non-empty nav set", func(t *testing.T) {
		for _, role := range domain.ValidRoles() {
			assert.NotEmpty(t, role.NavEntries(), "role %s", role)
		}
	})

	t.Run("Each role's nav includes its landing route", func(t *testing.T) {
		for _, role := range domain.ValidRoles() {
			found := false
			for _, entry := range role.NavEntries() {
				if entry.Route == role.LandingRoute() {
					found = true
				}
			}
			assert.True(t, found, "role %s nav is missing its landing route", role)
		}
	})

	t.Run("Unknown roles get the public default set", func(t *testing.T) {
		entries := domain.Role("mystery").NavEntries()
		assert.NotEmpty(t, entries)
		assert.Equal(t, "/dashboard", entries[0].Route)
	})
}

func TestRoleValidity(t *testing.T) {
	assert.True(t, domain.RoleAdmin.IsValid())
	assert.True(t, domain.RoleMaintenance.IsValid())
	assert.False(t, domain.Role("employer").IsValid())
	assert.False(t, domain.Role("").IsValid())
}
