package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medverify/verification-services/internal/teletan"
	"github.com/medverify/verification-services/pkg/logger"
	"github.com/medverify/verification-services/pkg/metrics"
	"github.com/medverify/verification-services/pkg/middleware"
)

// TeleTanResponse carries a freshly minted code. The raw value is returned
// exactly once; only its hash is stored.
type TeleTanResponse struct {
	Value string `json:"value"`
}

// TeleTanHandler exposes the operator-facing TeleTAN mint endpoint.
type TeleTanHandler struct {
	svc      *teletan.Service
	verifier middleware.Verifier
	role     string
}

func NewTeleTanHandler(svc *teletan.Service, verifier middleware.Verifier, role string) *TeleTanHandler {
	return &TeleTanHandler{svc: svc, verifier: verifier, role: role}
}

// Register routes under /version/v1
func (h *TeleTanHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/tan/teletan", middleware.AuthMiddleware(h.verifier), middleware.RequireRole(h.role), h.Mint)
}

// Mint generates a TeleTAN for a hotline operator.
func (h *TeleTanHandler) Mint(c *gin.Context) {
	code, err := h.svc.GenerateTeleTan(c.Request.Context())
	if err != nil {
		logger.Errorf("teletan generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "teletan generation failed"})
		return
	}
	metrics.TeleTansGenerated.Inc()
	c.JSON(http.StatusCreated, TeleTanResponse{Value: code})
}
