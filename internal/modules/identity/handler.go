package identity

import (
	"errors"
	"net/http"

	"roflexi/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/session", h.SignIn)
}

// SignIn exchanges a bootstrap token for a session token.
func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing token")
		return
	}

	session, err := h.service.SignInWithCustomToken(c.Request.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken),
			errors.Is(err, ErrTokenAlreadyUsed),
			errors.Is(err, ErrUserNotFound),
			errors.Is(err, ErrUserDisabled):
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": err.Error(), "code": Code(err)})
		default:
			_ = c.Error(err)
			response.ErrorWithDetails(c, http.StatusInternalServerError, "Server error", err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"uid":          session.UID,
		"role":         session.Role,
		"sessionToken": session.SessionToken,
		"expiresAt":    session.ExpiresAt,
	})
}
