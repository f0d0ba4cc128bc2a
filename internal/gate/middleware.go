package gate

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/luna-live/backend/config"
	"github.com/luna-live/backend/internal/auth"
	"github.com/luna-live/backend/internal/models"
	"github.com/luna-live/backend/pkg/response"
)

// Context keys set by the gate middlewares.
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextClaims    = "session_claims"
	ContextTenantID  = "tenant_id"
	ContextRole      = "tenant_role"
	ContextEvent     = "event"
)

// Page route paths the gate routes between.
const (
	PathSignIn     = "/signin"
	PathSignUp     = "/signup"
	PathOnboarding = "/onboarding"
	PathWorkspace  = "/workspace"
)

// publicPagePrefixes are page routes served to anonymous visitors unchanged.
var publicPagePrefixes = []string{PathSignIn, PathSignUp, "/join"}

func isPublicPage(path string) bool {
	for _, p := range publicPagePrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Pages returns the gate middleware for page routes. Actions per state:
// NoSession serves public pages and redirects tenant pages to sign-in;
// Unauthenticated clears the cookie and redirects to sign-in with a
// session_expired indicator regardless of the requested path; an incomplete
// profile is pinned to the onboarding page; a complete profile is bounced off
// sign-in/onboarding to the workspace.
func (g *Gate) Pages(cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.SessionFromRequest(c, cfg)
		d, err := g.Evaluate(c.Request.Context(), raw)
		if err != nil {
			response.ServiceUnavailable(c, "temporarily unavailable, please retry")
			c.Abort()
			return
		}
		path := c.Request.URL.Path

		switch d.State {
		case NoSession:
			if isPublicPage(path) {
				c.Next()
				return
			}
			c.Redirect(http.StatusFound, PathSignIn)
			c.Abort()

		case Unauthenticated:
			auth.ClearSessionCookie(c, cfg)
			c.Redirect(http.StatusFound, PathSignIn+"?reason=session_expired")
			c.Abort()

		case AuthenticatedIncomplete:
			if path != PathOnboarding {
				c.Redirect(http.StatusFound, PathOnboarding)
				c.Abort()
				return
			}
			setIdentity(c, d)
			c.Next()

		case AuthenticatedComplete:
			if path == PathSignIn || path == PathSignUp || path == PathOnboarding {
				c.Redirect(http.StatusFound, PathWorkspace)
				c.Abort()
				return
			}
			setIdentity(c, d)
			c.Set(ContextTenantID, d.Profile.TenantID)
			c.Set(ContextRole, d.Profile.Role)
			c.Next()
		}
	}
}

// API returns the gate middleware for API routes: 401 for missing or invalid
// credentials (clearing the cookie when one was presented), identity context
// otherwise. Profile completeness is enforced separately by RequireOnboarded
// so the onboarding-completion endpoint stays reachable.
func (g *Gate) API(cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.SessionFromRequest(c, cfg)
		d, err := g.Evaluate(c.Request.Context(), raw)
		if err != nil {
			response.ServiceUnavailable(c, "temporarily unavailable, please retry")
			c.Abort()
			return
		}

		switch d.State {
		case NoSession:
			response.Unauthorized(c, "sign in required")
			c.Abort()
		case Unauthenticated:
			auth.ClearSessionCookie(c, cfg)
			response.Unauthorized(c, "session expired")
			c.Abort()
		default:
			setIdentity(c, d)
			if d.State == AuthenticatedComplete {
				c.Set(ContextTenantID, d.Profile.TenantID)
				c.Set(ContextRole, d.Profile.Role)
			}
			c.Next()
		}
	}
}

// RequireOnboarded aborts with 403 unless the request's profile is complete.
// Mount after API on every tenant-scoped endpoint except onboarding itself.
func RequireOnboarded() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextTenantID); !ok {
			response.Forbidden(c, "complete onboarding first")
			c.Abort()
			return
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, d Decision) {
	c.Set(ContextUserID, d.Claims.UserID)
	c.Set(ContextUserEmail, d.Claims.Email)
	c.Set(ContextClaims, d.Claims)
}

// EventAuthorizer exposes the per-event write-authorization rule: the event's
// owner and its admin set may mutate it and its announcements.
type EventAuthorizer interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	IsOwnerOrAdmin(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
}

// RequireEventAdmin loads the event from the :id param and aborts unless the
// current user is its owner or a listed admin. Unknown events are 404 before
// any authorization is revealed.
func RequireEventAdmin(authz EventAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid event id")
			c.Abort()
			return
		}
		ev, err := authz.GetByID(c.Request.Context(), eventID)
		if err != nil || ev == nil {
			response.NotFound(c, "event not found")
			c.Abort()
			return
		}
		userID := c.MustGet(ContextUserID).(uuid.UUID)
		ok, err := authz.IsOwnerOrAdmin(c.Request.Context(), eventID, userID)
		if err != nil || !ok {
			response.Forbidden(c, "not an admin of this event")
			c.Abort()
			return
		}
		c.Set(ContextEvent, ev)
		c.Next()
	}
}
