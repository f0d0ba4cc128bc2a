package gate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/luna-live/backend/config"
	"github.com/luna-live/backend/internal/auth"
	"github.com/luna-live/backend/internal/gate"
	"github.com/luna-live/backend/internal/models"
	"github.com/luna-live/backend/internal/profile"
)

var testSession = config.SessionConfig{
	Secret:      "test-secret",
	ExpireHours: 1,
	CookieName:  "session",
}

// mapVerifier resolves known raw credentials to claims; everything else fails.
type mapVerifier struct {
	known map[string]*auth.Claims
}

func (m *mapVerifier) Verify(_ context.Context, raw string) (*auth.Claims, error) {
	if c, ok := m.known[raw]; ok {
		return c, nil
	}
	return nil, auth.ErrInvalidSession
}

type mapProfiles struct {
	known map[uuid.UUID]profile.Profile
}

func (m *mapProfiles) Resolve(_ context.Context, userID uuid.UUID) (profile.Profile, error) {
	if p, ok := m.known[userID]; ok {
		return p, nil
	}
	return profile.Profile{}, profile.ErrProfileNotFound
}

// testGate wires a gate with one onboarded user ("complete") and one user
// without a member record ("incomplete").
func testGate(t *testing.T) (*gate.Gate, uuid.UUID, uuid.UUID) {
	t.Helper()
	completeID := uuid.New()
	incompleteID := uuid.New()
	verifier := &mapVerifier{known: map[string]*auth.Claims{
		"complete":   {UserID: completeID, Email: "alice@acme.io"},
		"incomplete": {UserID: incompleteID, Email: "bob@acme.io"},
	}}
	profiles := &mapProfiles{known: map[uuid.UUID]profile.Profile{
		completeID: {TenantID: uuid.New(), Role: models.RoleOwner, OnboardingComplete: true},
	}}
	return gate.New(verifier, profiles), completeID, incompleteID
}

func pagesRouter(g *gate.Gate) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("", g.Pages(testSession))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	grp.GET(gate.PathSignIn, ok)
	grp.GET(gate.PathOnboarding, ok)
	grp.GET(gate.PathWorkspace, ok)
	return r
}

func get(r *gin.Engine, path, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: testSession.CookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPagesAnonymous(t *testing.T) {
	g, _, _ := testGate(t)
	r := pagesRouter(g)

	w := get(r, gate.PathSignIn, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = get(r, gate.PathWorkspace, "")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, gate.PathSignIn, w.Header().Get("Location"))
}

func TestPagesExpiredSessionRedirectsEverywhere(t *testing.T) {
	g, _, _ := testGate(t)
	r := pagesRouter(g)

	for _, path := range []string{gate.PathSignIn, gate.PathWorkspace, gate.PathOnboarding} {
		w := get(r, path, "garbage")
		require.Equal(t, http.StatusFound, w.Code, path)
		require.Equal(t, gate.PathSignIn+"?reason=session_expired", w.Header().Get("Location"), path)
		require.Contains(t, w.Header().Get("Set-Cookie"), testSession.CookieName+"=", path)
	}
}

func TestPagesIncompletePinnedToOnboarding(t *testing.T) {
	g, _, _ := testGate(t)
	r := pagesRouter(g)

	w := get(r, gate.PathWorkspace, "incomplete")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, gate.PathOnboarding, w.Header().Get("Location"))

	w = get(r, gate.PathOnboarding, "incomplete")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestPagesCompleteBouncedToWorkspace(t *testing.T) {
	g, _, _ := testGate(t)
	r := pagesRouter(g)

	for _, path := range []string{gate.PathSignIn, gate.PathOnboarding} {
		w := get(r, path, "complete")
		require.Equal(t, http.StatusFound, w.Code, path)
		require.Equal(t, gate.PathWorkspace, w.Header().Get("Location"), path)
	}

	w := get(r, gate.PathWorkspace, "complete")
	require.Equal(t, http.StatusOK, w.Code)
}

func apiRouter(g *gate.Gate) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", g.API(testSession))
	api.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.MustGet(gate.ContextUserID).(uuid.UUID)})
	})
	api.GET("/tenant-data", gate.RequireOnboarded(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tenant_id": c.MustGet(gate.ContextTenantID).(uuid.UUID)})
	})
	return r
}

func TestAPIUnauthenticated(t *testing.T) {
	g, _, _ := testGate(t)
	r := apiRouter(g)

	w := get(r, "/api/me", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/api/me", "garbage")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Header().Get("Set-Cookie"), testSession.CookieName+"=")
}

func TestAPIIncompleteBlockedFromTenantData(t *testing.T) {
	g, _, incompleteID := testGate(t)
	r := apiRouter(g)

	// Identity endpoints work before onboarding.
	w := get(r, "/api/me", "incomplete")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), incompleteID.String())

	// Tenant-scoped endpoints do not.
	w = get(r, "/api/tenant-data", "incomplete")
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAPICompleteGetsTenantContext(t *testing.T) {
	g, _, _ := testGate(t)
	r := apiRouter(g)

	w := get(r, "/api/tenant-data", "complete")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "tenant_id")
}

// fakeAuthz serves one event with a fixed admin set.
type fakeAuthz struct {
	event  *models.Event
	admins map[uuid.UUID]bool
}

func (f *fakeAuthz) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	if f.event != nil && f.event.ID == id {
		return f.event, nil
	}
	return nil, nil
}

func (f *fakeAuthz) IsOwnerOrAdmin(_ context.Context, eventID, userID uuid.UUID) (bool, error) {
	return f.event != nil && f.event.ID == eventID && f.admins[userID], nil
}

func TestRequireEventAdmin(t *testing.T) {
	g, completeID, _ := testGate(t)
	ev := &models.Event{ID: uuid.New(), Title: "launch", CreatedBy: completeID}
	authz := &fakeAuthz{event: ev, admins: map[uuid.UUID]bool{completeID: true}}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", g.API(testSession))
	api.PATCH("/events/:id", gate.RequireEventAdmin(authz), func(c *gin.Context) {
		got := c.MustGet(gate.ContextEvent).(*models.Event)
		c.JSON(http.StatusOK, gin.H{"title": got.Title})
	})

	patch := func(path, cookie string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader("{}"))
		req.AddCookie(&http.Cookie{Name: testSession.CookieName, Value: cookie})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// Unknown event: 404 before authorization is revealed.
	w := patch("/api/events/"+uuid.New().String(), "complete")
	require.Equal(t, http.StatusNotFound, w.Code)

	// Malformed id.
	w = patch("/api/events/not-a-uuid", "complete")
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Signed in but not an admin of this event.
	w = patch("/api/events/"+ev.ID.String(), "incomplete")
	require.Equal(t, http.StatusForbidden, w.Code)

	// Owner passes and sees the loaded event in context.
	w = patch("/api/events/"+ev.ID.String(), "complete")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "launch")
}

func TestStatusHandler(t *testing.T) {
	g, _, _ := testGate(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/auth/status", g.StatusHandler(testSession))

	cases := []struct {
		cookie        string
		authenticated bool
		complete      bool
	}{
		{"", false, false},
		{"garbage", false, false},
		{"incomplete", true, false},
		{"complete", true, true},
	}
	for _, tc := range cases {
		w := get(r, "/auth/status", tc.cookie)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data gate.StatusResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, tc.authenticated, body.Data.IsAuthenticated, tc.cookie)
		require.Equal(t, tc.complete, body.Data.IsProfileComplete, tc.cookie)
	}
}
