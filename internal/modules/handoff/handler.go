package handoff

import (
	"errors"
	"net/http"

	"roflexi/internal/modules/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/createCustomToken", h.CreateCustomToken)
}

func (h *Handler) CreateCustomToken(c *gin.Context) {
	var req CustomTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidUID.Error()})
		return
	}
	uid, ok := req.UID.(string)
	if !ok || uid == "" {
		h.log.Warn("missing or invalid uid in request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidUID.Error()})
		return
	}

	token, err := h.service.MintForUID(c.Request.Context(), uid, req.ExchangeCode)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUID):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrExchangeCodeInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "handoff/invalid-exchange-code"})
		default:
			h.log.Error("create custom token failed", zap.String("uid", uid), zap.Error(err))
			var code any
			if ec := identity.Code(err); ec != "" {
				code = ec
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": code})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
