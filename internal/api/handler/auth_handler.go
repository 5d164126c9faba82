package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/cuongbtq/socialtrend-automation/internal/api/dto"
	"github.com/cuongbtq/socialtrend-automation/internal/auth"
	"github.com/gin-gonic/gin"
)

// ContextUsername is the gin context key holding the authenticated username
const ContextUsername = "username"

// Token handles POST /automation/token
// OAuth2 password grant: form fields username and password
func (h *Handler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		h.unauthorized(c, "Incorrect username or password")
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		h.logger.Warn("Failed login attempt",
			slog.String("username", req.Username),
		)
		h.unauthorized(c, "Incorrect username or password")
		return
	}

	h.logger.Info("User authenticated",
		slog.String("username", req.Username),
	)

	c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: auth.TokenType})
}

// Me handles GET /automation/me
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, dto.UserResponse{Username: c.GetString(ContextUsername)})
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token subject under ContextUsername
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
			h.unauthorized(c, "Not authenticated")
			return
		}

		username, err := h.auth.ValidateToken(header[len(prefix):])
		if err != nil {
			h.unauthorized(c, "Could not validate credentials")
			return
		}

		c.Set(ContextUsername, username)
		c.Next()
	}
}

func (h *Handler) unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Detail: detail})
}
