package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes mounts authentication endpoints under /auth.
func RegisterRoutes(router *gin.RouterGroup, service *Service, log *zap.Logger) {
	handler := &httpHandler{service: service, log: log.Named("auth")}
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", handler.login)
	}
}

type httpHandler struct {
	service *Service
	log     *zap.Logger
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"`
}

type loginResponse struct {
	Email             string `json:"email"`
	AccessToken       string `json:"access_token"`
	AccessTokenExpiry int64  `json:"expires_at"`
}

func (h *httpHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.Login(c.Request.Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.log.Info("admin login rejected", zap.String("email", req.Email))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.log.Error("admin login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to authenticate"})
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Email:             session.Email,
		AccessToken:       session.AccessToken,
		AccessTokenExpiry: session.AccessTokenExpiry.Unix(),
	})
}
