package push

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luna-live/backend/internal/events"
	"github.com/luna-live/backend/internal/models"
	"github.com/luna-live/backend/pkg/response"
)

// SubscribeRequest is the body for POST /events/:id/subscriptions.
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	Auth     string `json:"auth" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
}

// UnsubscribeRequest is the body for DELETE /events/:id/subscriptions.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
}

// Handler handles push subscription HTTP endpoints. Subscribing is public:
// attendees opt in from the event page without an account.
type Handler struct {
	repo      *Repository
	eventRepo *events.Repository
	logger    *zap.Logger
}

// NewHandler creates a push subscriptions handler.
func NewHandler(repo *Repository, eventRepo *events.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, eventRepo: eventRepo, logger: logger}
}

// Subscribe handles POST /events/:id/subscriptions.
func (h *Handler) Subscribe(c *gin.Context) {
	ev, ok := h.publishedEvent(c)
	if !ok {
		return
	}
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	sub := &models.PushSubscription{
		EventID:  ev.ID,
		Endpoint: req.Endpoint,
		Auth:     req.Auth,
		P256DH:   req.P256DH,
	}
	if err := h.repo.Upsert(c.Request.Context(), sub); err != nil {
		h.logger.Error("subscribe failed", zap.Error(err), zap.String("event_id", ev.ID.String()))
		response.ServiceUnavailable(c, "could not save subscription, please retry")
		return
	}
	response.Created(c, sub)
}

// Unsubscribe handles DELETE /events/:id/subscriptions.
func (h *Handler) Unsubscribe(c *gin.Context) {
	ev, ok := h.publishedEvent(c)
	if !ok {
		return
	}
	var req UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.DeleteByEndpoint(c.Request.Context(), ev.ID, req.Endpoint); err != nil {
		response.ServiceUnavailable(c, "could not remove subscription, please retry")
		return
	}
	response.NoContent(c)
}

// publishedEvent resolves :id to a published event, responding on failure.
func (h *Handler) publishedEvent(c *gin.Context) (*models.Event, bool) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return nil, false
	}
	ev, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil {
		response.ServiceUnavailable(c, "could not load event, please retry")
		return nil, false
	}
	if ev == nil || ev.Status != models.EventPublished {
		response.NotFound(c, "event not found")
		return nil, false
	}
	return ev, true
}
