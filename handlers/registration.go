package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medverify/verification-services/internal/appsession"
	"github.com/medverify/verification-services/pkg/logger"
	"github.com/medverify/verification-services/pkg/metrics"
)

// RegistrationTokenRequest carries the proof of trust presented by the app.
// Key is either a SHA-256 GUID digest (hex) or a raw TeleTAN code, selected
// by KeyType.
type RegistrationTokenRequest struct {
	Key     string `json:"key" binding:"required"`
	KeyType string `json:"keyType" binding:"required"` // "GUID" | "TELETAN"
}

// RegistrationTokenResponse returns the newly minted token. Clients must
// store it; only its hash is persisted server-side.
type RegistrationTokenResponse struct {
	RegistrationToken string `json:"registrationToken"`
}

// RegistrationHandler exposes the registration-token issuance endpoint.
type RegistrationHandler struct {
	svc *appsession.Service
}

func NewRegistrationHandler(svc *appsession.Service) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// Register routes under /version/v1
func (h *RegistrationHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/registrationToken", h.IssueToken)
}

// IssueToken mints a registration token for a valid, previously unused proof.
// 400 for malformed or unknown proofs, 409 when the proof already registered.
func (h *RegistrationHandler) IssueToken(c *gin.Context) {
	var req RegistrationTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var keyType appsession.KeyType
	switch req.KeyType {
	case "GUID":
		keyType = appsession.KeyTypeGuid
	case "TELETAN":
		keyType = appsession.KeyTypeTeleTan
	default:
		metrics.RegistrationTokenRejected.WithLabelValues(req.KeyType).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported keyType"})
		return
	}

	token, err := h.svc.IssueToken(c.Request.Context(), req.Key, keyType)
	switch {
	case err == nil:
		metrics.RegistrationTokensIssued.WithLabelValues(string(keyType)).Inc()
		c.JSON(http.StatusCreated, RegistrationTokenResponse{RegistrationToken: token})
	case errors.Is(err, appsession.ErrInvalidKey):
		metrics.RegistrationTokenRejected.WithLabelValues(string(keyType)).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is not a valid proof"})
	case errors.Is(err, appsession.ErrAlreadyRegistered):
		metrics.RegistrationTokenConflicts.WithLabelValues(string(keyType)).Inc()
		c.JSON(http.StatusConflict, gin.H{"error": "proof already used to register"})
	default:
		logger.Errorf("registration token issuance failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
	}
}
