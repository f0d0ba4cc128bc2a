package events_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luna-live/backend/internal/events"
)

func TestNewJoinCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := events.NewJoinCode()
		require.NoError(t, err)
		require.Len(t, code, events.JoinCodeLength)

		for _, r := range code {
			require.True(t, strings.ContainsRune("ABCDEFGHJKMNPQRSTUVWXYZ23456789", r),
				"unexpected character %q in %q", r, code)
		}
		seen[code] = true
	}
	// Collisions in 200 draws over a 31^8 space would point at a broken generator.
	require.Len(t, seen, 200)
}
