package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/12344321abc/romantic-flowers-app/internal/middleware"
	"github.com/12344321abc/romantic-flowers-app/internal/store"
	"github.com/12344321abc/romantic-flowers-app/pkg/jwtutil"
	"github.com/12344321abc/romantic-flowers-app/pkg/logger"
	"github.com/12344321abc/romantic-flowers-app/prometheus"
)

// AuthHandler issues tokens for verified credentials.
type AuthHandler struct {
	users   store.UserStore
	jwtUtil *jwtutil.JWTUtil
}

func NewAuthHandler(users store.UserStore, jwtUtil *jwtutil.JWTUtil) *AuthHandler {
	return &AuthHandler{users: users, jwtUtil: jwtUtil}
}

// Login verifies username/password and returns a bearer token with the
// account's role in the claims.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginAttemptsTotal.Inc()

	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	user, err := h.users.GetUserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		log.Warn("Login for unknown user", zap.String("username", req.Username))
		prometheus.LoginFailuresTotal.Inc()
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("username", req.Username))
		prometheus.LoginFailuresTotal.Inc()
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := h.jwtUtil.GenerateToken(user.Username, user.ID, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("role", user.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFromEcho(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing identity"})
	}
	user, err := h.users.GetUser(c.Request().Context(), id.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
