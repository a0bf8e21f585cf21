package postgres

import (
	"testing"

	"keyskeeper-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestAvailableWhere(t *testing.T) {
	t.Run("No filters pins availability only", func(t *testing.T) {
		where, args := availableWhere(domain.ListingFilter{})
		assert.Equal(t, "WHERE is_available = TRUE", where)
		assert.Empty(t, args)
	})

	t.Run("Suburb and city match as substrings", func(t *testing.T) {
		where, args := availableWhere(domain.ListingFilter{Suburb: "Newt", City: "Wellington"})
		assert.Contains(t, where, "suburb ILIKE $1")
		assert.Contains(t, where, "city ILIKE $2")
		assert.Equal(t, []any{"%Newt%", "%Wellington%"}, args)
	})

	t.Run("Numeric and boolean filters keep placeholder order", func(t *testing.T) {
		pets := true
		where, args := availableWhere(domain.ListingFilter{
			City:        "Wellington",
			MinRent:     400,
			MaxRent:     800,
			MinBedrooms: 2,
			PetsAllowed: &pets,
		})
		assert.Contains(t, where, "city ILIKE $1")
		assert.Contains(t, where, "rent_per_week >= $2")
		assert.Contains(t, where, "rent_per_week <= $3")
		assert.Contains(t, where, "bedrooms >= $4")
		assert.Contains(t, where, "pets_allowed = $5")
		assert.Equal(t, []any{"%Wellington%", float64(400), float64(800), 2, true}, args)
	})
}
