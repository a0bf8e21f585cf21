package wizard_test

import (
	"testing"
	"time"

	"keyskeeper-backend/internal/wizard"

	"github.com/stretchr/testify/assert"
)

func TestStoreLifecycle(t *testing.T) {
	st := wizard.NewStore(wizard.Flows())

	t.Run("Start replaces an existing session", func(t *testing.T) {
		first, ok := st.Start("user-1", wizard.FlowListing)
		assert.True(t, ok)
		first.Set("title", "stale draft")

		second, ok := st.Start("user-1", wizard.FlowListing)
		assert.True(t, ok)
		assert.Empty(t, second.Values.String("title"))
		assert.Same(t, second, st.Get("user-1", wizard.FlowListing))
	})

	t.Run("Sessions are keyed per user and flow", func(t *testing.T) {
		st.Start("user-2", wizard.FlowTenantOnboarding)
		assert.Nil(t, st.Get("user-2", wizard.FlowListing))
		assert.NotNil(t, st.Get("user-2", wizard.FlowTenantOnboarding))
	})

	t.Run("Unknown flow cannot start", func(t *testing.T) {
		s, ok := st.Start("user-3", "no-such-flow")
		assert.False(t, ok)
		assert.Nil(t, s)
	})

	t.Run("Drop discards the session", func(t *testing.T) {
		st.Start("user-4", wizard.FlowListing)
		st.Drop("user-4", wizard.FlowListing)
		assert.Nil(t, st.Get("user-4", wizard.FlowListing))
	})
}

func TestStoreSweep(t *testing.T) {
	st := wizard.NewStore(wizard.Flows())
	st.MaxAge = time.Hour

	fresh, _ := st.Start("fresh", wizard.FlowListing)
	stale, _ := st.Start("stale", wizard.FlowListing)
	stale.UpdatedAt = time.Now().Add(-2 * time.Hour)

	dropped := st.Sweep(time.Now())

	assert.Equal(t, 1, dropped)
	assert.Nil(t, st.Get("stale", wizard.FlowListing))
	assert.Same(t, fresh, st.Get("fresh", wizard.FlowListing))
}
