package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/luna-live/backend/config"
	"github.com/luna-live/backend/internal/models"
	"github.com/luna-live/backend/pkg/response"
	"github.com/luna-live/backend/pkg/utils"
)

// SignUpRequest is the body for POST /auth/signup.
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

// SignInRequest is the body for POST /auth/signin.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse is the auth response after sign-in/sign-up. The credential
// itself rides in the session cookie, not the body.
type SessionResponse struct {
	User models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	tokens *TokenService
	cfg    config.SessionConfig
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, tokens *TokenService, cfg config.SessionConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, tokens: tokens, cfg: cfg, logger: logger}
}

// SignUp handles POST /auth/signup. Creates the identity and starts a session;
// tenant membership comes later, at onboarding.
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	existing, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Internal(c, "failed to create account")
		return
	}
	if existing != nil {
		response.BadRequest(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to create account")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.FullName)
	if err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create account")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		response.Internal(c, "failed to start session")
		return
	}
	SetSessionCookie(c, h.cfg, token)
	response.Created(c, SessionResponse{User: user.ToPublic()})
}

// SignIn handles POST /auth/signin.
func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || user == nil || !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		response.Internal(c, "failed to start session")
		return
	}
	SetSessionCookie(c, h.cfg, token)
	response.OK(c, SessionResponse{User: user.ToPublic()})
}

// SignOut handles POST /auth/signout. Revokes the session server-side and
// clears the cookie; succeeds even when the presented credential is invalid.
func (h *Handler) SignOut(c *gin.Context) {
	if raw := SessionFromRequest(c, h.cfg); raw != "" {
		if claims, err := h.tokens.Verify(c.Request.Context(), raw); err == nil {
			if err := h.tokens.RevokeClaims(c.Request.Context(), claims); err != nil {
				h.logger.Warn("session revoke failed", zap.Error(err))
			}
		}
	}
	ClearSessionCookie(c, h.cfg)
	response.NoContent(c)
}
