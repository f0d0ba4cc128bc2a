package announcements

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luna-live/backend/internal/events"
	"github.com/luna-live/backend/internal/gate"
	"github.com/luna-live/backend/internal/models"
	"github.com/luna-live/backend/internal/realtime"
	"github.com/luna-live/backend/pkg/queue"
	"github.com/luna-live/backend/pkg/response"
	"github.com/luna-live/backend/pkg/storage"
)

// SubscriptionLister lists the push subscriptions registered for an event.
type SubscriptionLister interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.PushSubscription, error)
}

// CreateRequest is the body for POST /api/events/:id/announcements.
type CreateRequest struct {
	Title string `json:"title" binding:"required,max=200"`
	Body  string `json:"body" binding:"required,max=10000"`
}

// UpdateRequest is the body for PUT /api/events/:id/announcements/:announcementID.
type UpdateRequest struct {
	Title string `json:"title" binding:"omitempty,max=200"`
	Body  string `json:"body" binding:"omitempty,max=10000"`
}

// AttachmentRequest is the body for the attachment presign endpoint.
type AttachmentRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
}

// AnnouncementView is an announcement plus a short-lived attachment URL.
type AnnouncementView struct {
	models.Announcement
	AttachmentURL string `json:"attachment_url,omitempty"`
}

// Handler handles announcement HTTP endpoints.
type Handler struct {
	repo      *Repository
	eventRepo *events.Repository
	hub       *realtime.Hub
	jobs      *queue.Queue
	subs      SubscriptionLister
	s3        *storage.S3
	logger    *zap.Logger
}

// NewHandler creates an announcements handler. hub, jobs, subs and s3 may each
// be nil to disable live broadcast, push fan-out or attachments.
func NewHandler(repo *Repository, eventRepo *events.Repository, hub *realtime.Hub, jobs *queue.Queue, subs SubscriptionLister, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, eventRepo: eventRepo, hub: hub, jobs: jobs, subs: subs, s3: s3, logger: logger}
}

// Create handles POST /api/events/:id/announcements. Mounted behind
// RequireEventAdmin. On success the announcement is broadcast to live feed
// subscribers and one push delivery job is enqueued per subscription.
func (h *Handler) Create(c *gin.Context) {
	ev := c.MustGet(gate.ContextEvent).(*models.Event)
	userID := c.MustGet(gate.ContextUserID).(uuid.UUID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	a := &models.Announcement{
		EventID:  ev.ID,
		AuthorID: userID,
		Title:    req.Title,
		Body:     req.Body,
	}
	if err := h.repo.Create(c.Request.Context(), a); err != nil {
		h.logger.Error("create announcement failed", zap.Error(err), zap.String("event_id", ev.ID.String()))
		response.Internal(c, "failed to create announcement")
		return
	}

	if h.hub != nil {
		h.hub.Publish(ev.ID, "announcement_created", h.view(c.Request.Context(), *a))
	}
	h.fanOutPush(c.Request.Context(), ev, a)

	response.Created(c, h.view(c.Request.Context(), *a))
}

// fanOutPush enqueues one delivery job per subscription. Enqueue failures are
// logged and skipped so one bad subscription does not block the rest.
func (h *Handler) fanOutPush(ctx context.Context, ev *models.Event, a *models.Announcement) {
	if h.jobs == nil || h.subs == nil {
		return
	}
	subs, err := h.subs.ListByEvent(ctx, ev.ID)
	if err != nil {
		h.logger.Warn("list push subscriptions failed", zap.Error(err), zap.String("event_id", ev.ID.String()))
		return
	}
	for _, s := range subs {
		err := h.jobs.EnqueuePushDelivery(ctx, queue.PushDeliveryPayload{
			SubscriptionID: s.ID,
			EventID:        ev.ID,
			Endpoint:       s.Endpoint,
			Title:          ev.Title,
			Body:           a.Title,
		})
		if err != nil {
			h.logger.Warn("enqueue push delivery failed", zap.Error(err), zap.String("subscription_id", s.ID.String()))
		}
	}
}

// Feed handles GET /events/:id/announcements. Public: only published events
// expose their feed, newest first.
func (h *Handler) Feed(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	ev, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil {
		response.ServiceUnavailable(c, "could not load feed, please retry")
		return
	}
	if ev == nil || ev.Status != models.EventPublished {
		response.NotFound(c, "event not found")
		return
	}
	list, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.ServiceUnavailable(c, "could not load feed, please retry")
		return
	}
	views := make([]AnnouncementView, 0, len(list))
	for _, a := range list {
		views = append(views, h.view(c.Request.Context(), a))
	}
	response.OK(c, views)
}

// List handles GET /api/events/:id/announcements. Mounted behind
// RequireEventAdmin; unlike the public feed it works for draft events too.
func (h *Handler) List(c *gin.Context) {
	ev := c.MustGet(gate.ContextEvent).(*models.Event)
	list, err := h.repo.ListByEvent(c.Request.Context(), ev.ID)
	if err != nil {
		response.Internal(c, "failed to list announcements")
		return
	}
	views := make([]AnnouncementView, 0, len(list))
	for _, a := range list {
		views = append(views, h.view(c.Request.Context(), a))
	}
	response.OK(c, views)
}

// Update handles PUT /api/events/:id/announcements/:announcementID. Mounted
// behind RequireEventAdmin.
func (h *Handler) Update(c *gin.Context) {
	ev := c.MustGet(gate.ContextEvent).(*models.Event)
	a, ok := h.lookup(c, ev)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.Update(c.Request.Context(), a.ID, req.Title, req.Body); err != nil {
		response.Internal(c, "failed to update announcement")
		return
	}
	updated, err := h.repo.GetByID(c.Request.Context(), a.ID)
	if err != nil || updated == nil {
		response.Internal(c, "failed to update announcement")
		return
	}
	if h.hub != nil {
		h.hub.Publish(ev.ID, "announcement_updated", h.view(c.Request.Context(), *updated))
	}
	response.OK(c, h.view(c.Request.Context(), *updated))
}

// Delete handles DELETE /api/events/:id/announcements/:announcementID. Mounted
// behind RequireEventAdmin. The attachment object, if any, is removed too.
func (h *Handler) Delete(c *gin.Context) {
	ev := c.MustGet(gate.ContextEvent).(*models.Event)
	a, ok := h.lookup(c, ev)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), a.ID); err != nil {
		response.Internal(c, "failed to delete announcement")
		return
	}
	if h.s3 != nil && a.AttachmentKey != nil {
		if err := h.s3.DeleteObject(c.Request.Context(), *a.AttachmentKey); err != nil {
			h.logger.Warn("delete attachment failed", zap.Error(err), zap.String("key", *a.AttachmentKey))
		}
	}
	if h.hub != nil {
		h.hub.Publish(ev.ID, "announcement_deleted", gin.H{"id": a.ID})
	}
	response.NoContent(c)
}

// AttachmentUploadURL handles POST /api/events/:id/announcements/:announcementID/attachment.
// Returns a pre-signed PUT URL; the client uploads directly and the key is
// recorded against the announcement.
func (h *Handler) AttachmentUploadURL(c *gin.Context) {
	if h.s3 == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"success": false, "error": "attachments are not configured"})
		return
	}
	ev := c.MustGet(gate.ContextEvent).(*models.Event)
	a, ok := h.lookup(c, ev)
	if !ok {
		return
	}
	var req AttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !storage.ValidateAttachmentType(req.ContentType, req.Filename) {
		response.BadRequest(c, "unsupported attachment type")
		return
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(req.Filename)
	}
	key := storage.AttachmentKey(ev.ID.String(), a.ID.String(), req.Filename)
	url, err := h.s3.GeneratePresignedUploadURL(c.Request.Context(), key, contentType, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign upload failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to create upload URL")
		return
	}
	if err := h.repo.SetAttachmentKey(c.Request.Context(), a.ID, key); err != nil {
		response.Internal(c, "failed to record attachment")
		return
	}
	response.OK(c, gin.H{
		"upload_url":   url,
		"key":          key,
		"content_type": contentType,
		"expires_in":   int(h.s3.PresignExpire() / time.Second),
	})
}

// AttachmentUpload handles POST /api/events/:id/announcements/:announcementID/attachment/upload.
// Server-side multipart upload for clients that cannot use the presigned flow
// (e.g. buckets without CORS configured).
func (h *Handler) AttachmentUpload(c *gin.Context) {
	if h.s3 == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"success": false, "error": "attachments are not configured"})
		return
	}
	ev := c.MustGet(gate.ContextEvent).(*models.Event)
	a, ok := h.lookup(c, ev)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file (form field: file)")
		return
	}
	if file.Size > storage.MaxAttachmentSize {
		response.BadRequest(c, "file size exceeds 10MB limit")
		return
	}
	if !storage.ValidateAttachmentType(file.Header.Get("Content-Type"), file.Filename) {
		response.BadRequest(c, "unsupported attachment type")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(file.Filename)
	}

	rc, err := file.Open()
	if err != nil {
		h.logger.Error("open uploaded file failed", zap.Error(err))
		response.Internal(c, "failed to read file")
		return
	}
	defer rc.Close()

	key := storage.AttachmentKey(ev.ID.String(), a.ID.String(), file.Filename)
	if _, err := h.s3.Upload(c.Request.Context(), key, contentType, rc, file.Size); err != nil {
		h.logger.Error("attachment upload failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to upload attachment")
		return
	}
	if err := h.repo.SetAttachmentKey(c.Request.Context(), a.ID, key); err != nil {
		response.Internal(c, "failed to record attachment")
		return
	}

	updated, err := h.repo.GetByID(c.Request.Context(), a.ID)
	if err != nil || updated == nil {
		response.Internal(c, "failed to record attachment")
		return
	}
	response.OK(c, h.view(c.Request.Context(), *updated))
}

// lookup resolves :announcementID, checking it belongs to the routed event.
func (h *Handler) lookup(c *gin.Context, ev *models.Event) (*models.Announcement, bool) {
	id, err := uuid.Parse(c.Param("announcementID"))
	if err != nil {
		response.BadRequest(c, "invalid announcement id")
		return nil, false
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.ServiceUnavailable(c, "could not load announcement, please retry")
		return nil, false
	}
	if a == nil || a.EventID != ev.ID {
		response.NotFound(c, "announcement not found")
		return nil, false
	}
	return a, true
}

// view attaches a short-lived download URL when the announcement has an
// attachment and S3 is configured.
func (h *Handler) view(ctx context.Context, a models.Announcement) AnnouncementView {
	v := AnnouncementView{Announcement: a}
	if h.s3 != nil && a.AttachmentKey != nil {
		url, err := h.s3.GeneratePresignedDownloadURL(ctx, *a.AttachmentKey, h.s3.PresignExpire())
		if err == nil {
			v.AttachmentURL = url
		}
	}
	return v
}
