package email_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luna-live/backend/config"
	"github.com/luna-live/backend/internal/email"
)

func TestNewMailerWithoutHostIsNoop(t *testing.T) {
	m := email.NewMailer(config.SMTPConfig{}, zap.NewNop())
	require.NoError(t, m.Send("bob@acme.io", "subject", "body"))
}

func TestInviteTemplates(t *testing.T) {
	subject := email.InviteSubject("Product Launch")
	require.Contains(t, subject, "Product Launch")

	body := email.InviteBody("Product Launch", "https://luna.live/join/invite/tok123")
	require.Contains(t, body, "Product Launch")
	require.Contains(t, body, "https://luna.live/join/invite/tok123")
	require.Contains(t, body, "single-use")
}
