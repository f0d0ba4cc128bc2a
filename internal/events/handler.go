package events

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/luna-live/backend/internal/gate"
	"github.com/luna-live/backend/internal/models"
	"github.com/luna-live/backend/pkg/response"
)

// CreateRequest is the body for POST /api/events.
type CreateRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	EndsAt      *time.Time `json:"ends_at"`
}

// UpdateRequest is the body for PATCH /api/events/:id. Pointer fields
// distinguish "absent, keep current" from "present, set to this", so a client
// can blank the description without touching anything else.
type UpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /api/events. Any member of the tenant may create.
func (h *Handler) Create(c *gin.Context) {
	tenantID := c.MustGet(gate.ContextTenantID).(uuid.UUID)
	userID := c.MustGet(gate.ContextUserID).(uuid.UUID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.EndsAt != nil && !req.EndsAt.After(req.StartsAt) {
		response.BadRequest(c, "ends_at must be after starts_at")
		return
	}

	e := &models.Event{
		TenantID:    tenantID,
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedBy:   userID,
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, e)
}

// List handles GET /api/events. Tenant-scoped.
func (h *Handler) List(c *gin.Context) {
	tenantID := c.MustGet(gate.ContextTenantID).(uuid.UUID)
	list, err := h.repo.ListByTenant(c.Request.Context(), tenantID)
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// Get handles GET /api/events/:id. Members of the owning tenant only.
func (h *Handler) Get(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	tenantID := c.MustGet(gate.ContextTenantID).(uuid.UUID)
	e, err := h.repo.GetByID(c.Request.Context(), eventID)
	if err != nil || e == nil || e.TenantID != tenantID {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// Update handles PATCH /api/events/:id. Mounted behind RequireEventAdmin.
func (h *Handler) Update(c *gin.Context) {
	ev := c.MustGet(gate.ContextEvent).(*models.Event)

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Title != nil && *req.Title == "" {
		response.BadRequest(c, "title cannot be empty")
		return
	}
	if req.Status != nil && *req.Status != models.EventDraft && *req.Status != models.EventPublished && *req.Status != models.EventArchived {
		response.BadRequest(c, "invalid status")
		return
	}

	if err := h.repo.Update(c.Request.Context(), ev.ID, req.Title, req.Description, req.Status, req.StartsAt, req.EndsAt); err != nil {
		response.Internal(c, "failed to update event")
		return
	}
	updated, err := h.repo.GetByID(c.Request.Context(), ev.ID)
	if err != nil || updated == nil {
		response.Internal(c, "failed to load event")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /api/events/:id. Mounted behind RequireEventAdmin.
func (h *Handler) Delete(c *gin.Context) {
	ev := c.MustGet(gate.ContextEvent).(*models.Event)
	if err := h.repo.Delete(c.Request.Context(), ev.ID); err != nil {
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}

// ListAdmins handles GET /api/events/:id/admins. Mounted behind RequireEventAdmin.
func (h *Handler) ListAdmins(c *gin.Context) {
	ev := c.MustGet(gate.ContextEvent).(*models.Event)
	admins, err := h.repo.ListAdmins(c.Request.Context(), ev.ID)
	if err != nil {
		response.Internal(c, "failed to list admins")
		return
	}
	response.OK(c, gin.H{"owner_id": ev.CreatedBy, "admins": admins})
}

// Preview handles GET /events/:code. Public, unauthenticated: resolves a join
// code to minimal metadata for preview before sign-in. Only title, id, and
// start time leak; tenant-internal fields never do.
func (h *Handler) Preview(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, "code required")
		return
	}
	e, err := h.repo.GetByJoinCode(c.Request.Context(), code)
	if err != nil || e == nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e.ToPreview())
}
