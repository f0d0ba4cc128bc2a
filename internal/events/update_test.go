package events_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luna-live/backend/internal/events"
)

// A PATCH body must distinguish an omitted field (keep the current value) from
// a present empty one (clear it). Description is the field clients blank.
func TestUpdateRequestAbsentVersusEmpty(t *testing.T) {
	var req events.UpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"New title"}`), &req))
	require.NotNil(t, req.Title)
	require.Equal(t, "New title", *req.Title)
	require.Nil(t, req.Description, "omitted field must stay nil")
	require.Nil(t, req.Status)

	req = events.UpdateRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"description":""}`), &req))
	require.NotNil(t, req.Description, "explicit empty string must survive decoding")
	require.Empty(t, *req.Description)
	require.Nil(t, req.Title)
}
