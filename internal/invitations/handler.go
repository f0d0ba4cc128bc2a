package invitations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luna-live/backend/internal/events"
	"github.com/luna-live/backend/internal/gate"
	"github.com/luna-live/backend/internal/models"
	"github.com/luna-live/backend/pkg/queue"
	"github.com/luna-live/backend/pkg/response"
)

// CreateRequest is the body for POST /api/events/:id/invitations.
type CreateRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
}

// Handler handles invitation HTTP endpoints.
type Handler struct {
	repo      *Repository
	eventRepo *events.Repository
	jobs      *queue.Queue
	baseURL   string
	logger    *zap.Logger
}

// NewHandler creates an invitations handler. jobs may be nil to skip invite emails.
func NewHandler(repo *Repository, eventRepo *events.Repository, jobs *queue.Queue, baseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, eventRepo: eventRepo, jobs: jobs, baseURL: baseURL, logger: logger}
}

// Create handles POST /api/events/:id/invitations. Mounted behind
// RequireEventAdmin, which enforces the issuer precondition.
func (h *Handler) Create(c *gin.Context) {
	ev := c.MustGet(gate.ContextEvent).(*models.Event)
	userID := c.MustGet(gate.ContextUserID).(uuid.UUID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	inv := &models.Invitation{EventID: ev.ID, InvitedBy: userID}
	if req.Email != "" {
		inv.Email = &req.Email
	}
	if err := h.repo.Create(c.Request.Context(), inv); err != nil {
		h.logger.Error("create invitation failed", zap.Error(err), zap.String("event_id", ev.ID.String()))
		response.Internal(c, "failed to create invitation")
		return
	}

	inviteURL := h.baseURL + "/join/invite/" + inv.Token
	if h.jobs != nil && inv.Email != nil {
		err := h.jobs.EnqueueInviteEmail(c.Request.Context(), queue.InviteEmailPayload{
			InvitationID:   inv.ID,
			EventID:        ev.ID,
			EventTitle:     ev.Title,
			RecipientEmail: *inv.Email,
			InviteURL:      inviteURL,
		})
		if err != nil {
			h.logger.Warn("enqueue invite email failed", zap.Error(err), zap.String("invitation_id", inv.ID.String()))
		}
	}

	response.Created(c, gin.H{"invitation": inv, "invite_url": inviteURL})
}

// Accept handles POST /api/invitations/:token/accept. Signed-in identities
// only; the accepter need not belong to the event's tenant.
func (h *Handler) Accept(c *gin.Context) {
	userID := c.MustGet(gate.ContextUserID).(uuid.UUID)
	inv, err := h.accept(c, userID)
	if err != nil {
		return // accept already responded
	}
	response.OK(c, gin.H{"event_id": inv.EventID})
}

// Redeem handles GET /join/invite/:token as a page route: on success redirect
// to the event workspace, otherwise fall through to the not-found state.
// Anonymous visitors are sent to sign-in first; the invite link survives the
// round trip because it is the browser's current URL.
func (h *Handler) Redeem(c *gin.Context) {
	v, ok := c.Get(gate.ContextUserID)
	if !ok {
		c.Redirect(http.StatusFound, gate.PathSignIn)
		return
	}
	userID := v.(uuid.UUID)
	inv, err := h.accept(c, userID)
	if err != nil {
		return
	}
	c.Redirect(http.StatusFound, gate.PathWorkspace+"/events/"+inv.EventID.String())
}

func (h *Handler) accept(c *gin.Context, userID uuid.UUID) (*models.Invitation, error) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "token required")
		return nil, ErrNotFound
	}
	inv, err := h.repo.Accept(c.Request.Context(), token, userID)
	switch {
	case errors.Is(err, ErrAlreadyConsumed):
		// Distinct from not-found so the invitee knows to request a new invite.
		response.NotFound(c, "this invitation was already used by someone else; ask for a new one")
		return nil, err
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "invitation not found or no longer valid")
		return nil, err
	case err != nil:
		h.logger.Error("accept invitation failed", zap.Error(err))
		response.ServiceUnavailable(c, "could not redeem invitation, please retry")
		return nil, err
	}
	return inv, nil
}

// Preview handles GET /invitations/:token. Public: shows the target event's
// preview so an invitee can see what they were invited to before signing in.
func (h *Handler) Preview(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "token required")
		return
	}
	inv, err := h.repo.GetByToken(c.Request.Context(), token)
	if err != nil || inv == nil {
		response.NotFound(c, "invitation not found or no longer valid")
		return
	}
	ev, err := h.eventRepo.GetByID(c.Request.Context(), inv.EventID)
	if err != nil || ev == nil {
		response.NotFound(c, "invitation not found or no longer valid")
		return
	}
	response.OK(c, gin.H{"event": ev.ToPreview(), "status": inv.Status, "expires_at": inv.ExpiresAt})
}

// List handles GET /api/events/:id/invitations. Mounted behind RequireEventAdmin.
func (h *Handler) List(c *gin.Context) {
	ev := c.MustGet(gate.ContextEvent).(*models.Event)
	list, err := h.repo.ListByEvent(c.Request.Context(), ev.ID)
	if err != nil {
		response.Internal(c, "failed to list invitations")
		return
	}
	response.OK(c, list)
}

// Revoke handles DELETE /api/events/:id/invitations/:invitationID. Mounted
// behind RequireEventAdmin.
func (h *Handler) Revoke(c *gin.Context) {
	invitationID, err := uuid.Parse(c.Param("invitationID"))
	if err != nil {
		response.BadRequest(c, "invalid invitation id")
		return
	}
	if err := h.repo.Revoke(c.Request.Context(), invitationID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "invitation not found or no longer pending")
			return
		}
		response.Internal(c, "failed to revoke invitation")
		return
	}
	response.NoContent(c)
}
