package tenants

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luna-live/backend/config"
	"github.com/luna-live/backend/internal/auth"
	"github.com/luna-live/backend/internal/gate"
	"github.com/luna-live/backend/internal/models"
	"github.com/luna-live/backend/pkg/response"
)

// OnboardRequest is the body for POST /api/onboarding.
type OnboardRequest struct {
	OrganizationName string `json:"organization_name"`
}

// Handler handles tenant HTTP endpoints.
type Handler struct {
	repo     *Repository
	resolver *DomainResolver
	tokens   *auth.TokenService
	cfg      config.SessionConfig
	logger   *zap.Logger
}

// NewHandler creates a tenants handler.
func NewHandler(repo *Repository, resolver *DomainResolver, tokens *auth.TokenService, cfg config.SessionConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, resolver: resolver, tokens: tokens, cfg: cfg, logger: logger}
}

// Onboard handles POST /api/onboarding. Creates the tenant and owner member
// for a first-time identity. When the identity's corporate domain is already
// claimed, onboarding is rejected, the session is revoked, and the identity
// ends the flow signed out: they must be invited by the claiming tenant's
// admins instead of self-provisioning.
func (h *Handler) Onboard(c *gin.Context) {
	if _, onboarded := c.Get(gate.ContextTenantID); onboarded {
		response.Conflict(c, "onboarding already completed")
		return
	}
	userID := c.MustGet(gate.ContextUserID).(uuid.UUID)
	email := c.MustGet(gate.ContextUserEmail).(string)

	var req OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	plan := h.resolver.Plan(email, req.OrganizationName)
	tenant := &models.Tenant{
		Name:          plan.Name,
		OwnerID:       userID,
		ClaimedDomain: plan.ClaimedDomain,
	}

	member, err := h.repo.CreateWithOwner(c.Request.Context(), tenant)
	switch {
	case errors.Is(err, ErrDomainAlreadyClaimed):
		h.revokeSession(c)
		auth.ClearSessionCookie(c, h.cfg)
		response.Conflict(c, "this email domain is already claimed by another organization; ask one of its admins to invite you")
		return
	case errors.Is(err, ErrAlreadyOnboarded):
		response.Conflict(c, "onboarding already completed")
		return
	case err != nil:
		h.logger.Error("create tenant failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.ServiceUnavailable(c, "could not complete onboarding, please retry")
		return
	}

	response.Created(c, gin.H{"tenant": tenant, "member": member})
}

func (h *Handler) revokeSession(c *gin.Context) {
	claimsVal, ok := c.Get(gate.ContextClaims)
	if !ok {
		return
	}
	claims, ok := claimsVal.(*auth.Claims)
	if !ok {
		return
	}
	if err := h.tokens.RevokeClaims(c.Request.Context(), claims); err != nil {
		h.logger.Warn("session revoke failed", zap.Error(err))
	}
}

// Get handles GET /api/tenant. Returns the caller's tenant.
func (h *Handler) Get(c *gin.Context) {
	tenantID := c.MustGet(gate.ContextTenantID).(uuid.UUID)
	tenant, err := h.repo.GetByID(c.Request.Context(), tenantID)
	if err != nil || tenant == nil {
		response.Internal(c, "failed to load tenant")
		return
	}
	response.OK(c, tenant)
}

// ListMembers handles GET /api/tenant/members. Tenant-scoped: only the
// caller's own tenant is ever listed.
func (h *Handler) ListMembers(c *gin.Context) {
	tenantID := c.MustGet(gate.ContextTenantID).(uuid.UUID)
	members, err := h.repo.ListMembers(c.Request.Context(), tenantID)
	if err != nil {
		response.Internal(c, "failed to load members")
		return
	}
	response.OK(c, members)
}
