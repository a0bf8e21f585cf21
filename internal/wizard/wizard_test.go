package wizard_test

import (
	"fmt"
	"sync"
	"testing"

	"keyskeeper-backend/internal/wizard"

	"github.com/stretchr/testify/assert"
)

func TestNextGatesOnValidation(t *testing.T) {
	s := wizard.NewSession(wizard.ListingFlow())

	t.Run("Invalid step blocks advance and reports all violations", func(t *testing.T) {
		ok := s.Next()
		assert.False(t, ok)
		assert.Equal(t, 1, s.Current)
		assert.Len(t, s.Errors, 4) // title, address, suburb, city
	})

	t.Run("Valid step advances and clears errors", func(t *testing.T) {
		s.Set("title", "Sunny two-bedroom unit")
		s.Set("address", "12 Katipo Lane")
		s.Set("suburb", "Newtown")
		s.Set("city", "Wellington")

		ok := s.Next()
		assert.True(t, ok)
		assert.Equal(t, 2, s.Current)
		assert.Empty(t, s.Errors)
	})
}

func TestPrevPreservesValues(t *testing.T) {
	s := wizard.NewSession(wizard.ListingFlow())
	s.Set("title", "Cosy studio")
	s.Set("address", "3 Aro Street")
	s.Set("suburb", "Aro Valley")
	s.Set("city", "Wellington")
	assert.True(t, s.Next())

	// Step 2 fails validation; step 1 data must survive
	s.Set("rent_per_week", "not-a-number")
	assert.False(t, s.Next())
	assert.Equal(t, 2, s.Current)

	assert.True(t, s.Prev())
	assert.Equal(t, 1, s.Current)
	assert.Equal(t, "Cosy studio", s.Values.String("title"))
	assert.Equal(t, "3 Aro Street", s.Values.String("address"))

	t.Run("Prev on first step is a no-op", func(t *testing.T) {
		assert.False(t, s.Prev())
		assert.Equal(t, 1, s.Current)
	})
}

func TestToggleInvolution(t *testing.T) {
	s := wizard.NewSession(wizard.ListingFlow())

	s.Toggle("amenities", "heat-pump")
	s.Toggle("amenities", "garage")
	assert.Equal(t, []string{"heat-pump", "garage"}, s.Values.Strings("amenities"))

	// Toggling the same value twice restores the collection
	s.Toggle("amenities", "dishwasher")
	s.Toggle("amenities", "dishwasher")
	assert.Equal(t, []string{"heat-pump", "garage"}, s.Values.Strings("amenities"))

	s.Toggle("amenities", "heat-pump")
	assert.Equal(t, []string{"garage"}, s.Values.Strings("amenities"))
}

func TestNumericParseToZero(t *testing.T) {
	v := wizard.Values{
		"rent":     "450.50",
		"garbage":  "abc",
		"empty":    "",
		"floatval": 320.0,
		"intval":   3,
	}

	assert.Equal(t, 450.50, v.Number("rent"))
	assert.Equal(t, 0.0, v.Number("garbage"))
	assert.Equal(t, 0.0, v.Number("empty"))
	assert.Equal(t, 0.0, v.Number("missing"))
	assert.Equal(t, 320.0, v.Number("floatval"))
	assert.Equal(t, 3, v.Int("intval"))
}

func TestStringsAcceptsJSONShapes(t *testing.T) {
	v := wizard.Values{
		"native": []string{"a", "b"},
		"json":   []any{"x", "y"},
		"mixed":  []any{"x", 1, "y"},
	}
	assert.Equal(t, []string{"a", "b"}, v.Strings("native"))
	assert.Equal(t, []string{"x", "y"}, v.Strings("json"))
	assert.Equal(t, []string{"x", "y"}, v.Strings("mixed"))
	assert.Nil(t, v.Strings("missing"))
}

// Two tabs can hit the same session through the store at once; writes must
// serialize rather than corrupt the value map.
func TestConcurrentSessionWrites(t *testing.T) {
	st := wizard.NewStore(wizard.Flows())
	s, ok := st.Start("user-tabs", wizard.FlowListing)
	assert.True(t, ok)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Set(fmt.Sprintf("field-%d", g), i)
				s.Toggle("amenities", fmt.Sprintf("amenity-%d", g))
			}
		}(g)
	}
	wg.Wait()

	for g := 0; g < 8; g++ {
		assert.Equal(t, 99, s.Values.Int(fmt.Sprintf("field-%d", g)))
	}
	// Each goroutine toggled its amenity an even number of times
	assert.Empty(t, s.Values.Strings("amenities"))
}

func TestSnapshotDetachesFromLiveSession(t *testing.T) {
	s := wizard.NewSession(wizard.ListingFlow())
	s.Set("title", "Original title")

	snap := s.Snapshot()
	s.Set("title", "Edited after snapshot")

	assert.Equal(t, "Original title", snap.Values.String("title"))
	assert.Equal(t, "Edited after snapshot", s.Values.String("title"))
}

func fillListingSession() *wizard.Session {
	s := wizard.NewSession(wizard.ListingFlow())
	s.Set("title", "Renovated villa")
	s.Set("address", "8 Marine Parade")
	s.Set("suburb", "Mount Victoria")
	s.Set("city", "Wellington")
	s.Set("rent_per_week", 780.0)
	s.Set("available_from", "2026-10-01")
	return s
}

func TestBeginSubmit(t *testing.T) {
	t.Run("Not reachable before the final step", func(t *testing.T) {
		s := fillListingSession()
		ok, errs := s.BeginSubmit()
		assert.False(t, ok)
		assert.NotEmpty(t, errs)
	})

	t.Run("Aggregates violations across every step", func(t *testing.T) {
		s := fillListingSession()
		assert.True(t, s.Next())
		assert.True(t, s.Next())
		assert.True(t, s.OnFinalStep())

		// Corrupt an earlier step after passing it
		s.Set("title", "")
		s.Set("rent_per_week", 0)

		ok, errs := s.BeginSubmit()
		assert.False(t, ok)
		assert.Contains(t, errs, "title is required")
		assert.Contains(t, errs, "rent per week must be greater than zero")
		assert.Equal(t, wizard.StatusIdle, s.Status)
	})

	t.Run("Valid session moves to submitting", func(t *testing.T) {
		s := fillListingSession()
		assert.True(t, s.Next())
		assert.True(t, s.Next())

		ok, errs := s.BeginSubmit()
		assert.True(t, ok)
		assert.Empty(t, errs)
		assert.Equal(t, wizard.StatusSubmitting, s.Status)
	})
}

func TestFailKeepsValues(t *testing.T) {
	s := fillListingSession()
	assert.True(t, s.Next())
	assert.True(t, s.Next())
	ok, _ := s.BeginSubmit()
	assert.True(t, ok)

	s.Fail("duplicate key value violates unique constraint")

	assert.Equal(t, wizard.StatusFailed, s.Status)
	assert.Equal(t, []string{"duplicate key value violates unique constraint"}, s.Errors)
	assert.Equal(t, "Renovated villa", s.Values.String("title"))
	assert.Equal(t, 780.0, s.Values.Number("rent_per_week"))
}
