package mentor_models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectService(t *testing.T) {
	mentorID := uuid.New()
	// Sorted cheapest first, as ListEnabledServices returns them.
	services := []MentorService{
		{ID: uuid.New(), MentorID: mentorID, ServiceType: "chat", ServiceName: "Quick chat", Price: 200, IsEnabled: true},
		{ID: uuid.New(), MentorID: mentorID, ServiceType: "video", ServiceName: "1:1 video call", Price: 500, IsEnabled: true},
		{ID: uuid.New(), MentorID: mentorID, ServiceType: "video", ServiceName: "Deep dive", Price: 900, IsEnabled: true},
	}

	t.Run("MatchingTypeWins", func(t *testing.T) {
		svc, err := SelectService(services, "video")
		require.NoError(t, err)
		assert.Equal(t, "1:1 video call", svc.ServiceName)
		assert.Equal(t, float64(500), svc.Price)
	})

	t.Run("UnknownTypeFallsBackToCheapest", func(t *testing.T) {
		svc, err := SelectService(services, "workshop")
		require.NoError(t, err)
		assert.Equal(t, "Quick chat", svc.ServiceName)
	})

	t.Run("EmptyTypeFallsBackToCheapest", func(t *testing.T) {
		svc, err := SelectService(services, "")
		require.NoError(t, err)
		assert.Equal(t, float64(200), svc.Price)
	})

	t.Run("NoServices", func(t *testing.T) {
		_, err := SelectService(nil, "video")
		assert.ErrorIs(t, err, ErrNoBookableServices)
	})
}
