package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog-api/internal/auth"
	"blog-api/internal/config"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login handles POST /login for the configured editors
func Login(signer *auth.Signer, users []config.UserEntry, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request. Username and password are required.",
			})
			return
		}

		if err := auth.Authenticate(users, req.Username, req.Password); err != nil {
			log.Info("login rejected", zap.String("username", req.Username))
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid username or password",
			})
			return
		}

		token, expires, err := signer.GenerateToken(req.Username)
		if err != nil {
			log.Error("sign token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to generate token",
			})
			return
		}

		c.JSON(http.StatusOK, LoginResponse{
			Token:     token,
			Username:  req.Username,
			ExpiresAt: expires,
		})
	}
}
