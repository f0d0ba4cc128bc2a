package gate

import (
	"github.com/gin-gonic/gin"

	"github.com/luna-live/backend/config"
	"github.com/luna-live/backend/internal/auth"
	"github.com/luna-live/backend/pkg/response"
)

// StatusResponse is the body of GET /auth/status, the boundary between the
// edge-routing layer and the verifier/resolver pair.
type StatusResponse struct {
	IsAuthenticated   bool `json:"isAuthenticated"`
	IsProfileComplete bool `json:"isProfileComplete"`
}

// StatusHandler handles GET /auth/status for the forwarded credential.
// Always 200; the booleans carry the decision.
func (g *Gate) StatusHandler(cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.SessionFromRequest(c, cfg)
		d, err := g.Evaluate(c.Request.Context(), raw)
		if err != nil {
			response.ServiceUnavailable(c, "temporarily unavailable, please retry")
			return
		}
		response.OK(c, StatusResponse{
			IsAuthenticated:   d.State == AuthenticatedIncomplete || d.State == AuthenticatedComplete,
			IsProfileComplete: d.State == AuthenticatedComplete,
		})
	}
}
