package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/luna-live/backend/internal/models"
)

// The public preview must carry id, title, and start time only; tenant and
// organizer details stay internal.
func TestEventPreviewExposesMinimalFields(t *testing.T) {
	e := models.Event{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		Title:       "Product Launch",
		Description: "internal notes",
		Status:      models.EventPublished,
		StartsAt:    time.Now().Add(24 * time.Hour),
		CreatedBy:   uuid.New(),
		JoinCode:    "ABCD2345",
	}

	raw, err := json.Marshal(e.ToPreview())
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	require.Contains(t, fields, "id")
	require.Contains(t, fields, "title")
	require.Contains(t, fields, "starts_at")
	require.NotContains(t, fields, "tenant_id")
	require.NotContains(t, fields, "created_by")
	require.NotContains(t, fields, "join_code")
	require.NotContains(t, fields, "description")
}
