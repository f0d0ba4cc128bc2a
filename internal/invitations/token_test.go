package invitations_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luna-live/backend/internal/invitations"
)

func TestNewTokenIsURLSafe(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := invitations.NewToken()
		require.NoError(t, err)
		require.NotEmpty(t, tok)

		// Must survive a URL path segment unescaped.
		decoded, err := base64.RawURLEncoding.DecodeString(tok)
		require.NoError(t, err)
		require.Len(t, decoded, 24)

		seen[tok] = true
	}
	require.Len(t, seen, 100)
}
