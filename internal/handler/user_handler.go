package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/12344321abc/romantic-flowers-app/internal/model"
	"github.com/12344321abc/romantic-flowers-app/internal/store"
	"github.com/12344321abc/romantic-flowers-app/pkg/logger"
)

// UserHandler binds account management to HTTP. Every route here is
// admin-gated except Me (see auth_handler).
type UserHandler struct {
	users store.UserStore
}

func NewUserHandler(users store.UserStore) *UserHandler {
	return &UserHandler{users: users}
}

// UserRequest is the create/update payload. Password is optional on update.
type UserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	ContactName string `json:"contact_name"`
	Address     string `json:"address"`
	PhotoURL    string `json:"photo_url"`
	AdminNotes  string `json:"admin_notes"`
}

// Create registers a new account.
func (h *UserHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Username == "" || req.Password == "" {
		return writeError(c, &model.ValidationError{Field: "username", Message: "username and password are required"})
	}
	role := req.Role
	if role == "" {
		role = model.RoleCustomer
	}
	if role != model.RoleAdmin && role != model.RoleCustomer {
		return writeError(c, &model.ValidationError{Field: "role", Message: "must be admin or customer"})
	}

	if _, err := h.users.GetUserByUsername(c.Request().Context(), req.Username); err == nil {
		log.Warn("Username already registered", zap.String("username", req.Username))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Username already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create user"})
	}

	user := &model.User{
		Username:    req.Username,
		Password:    string(hashed),
		Role:        role,
		ContactName: req.ContactName,
		Address:     req.Address,
		PhotoURL:    req.PhotoURL,
		AdminNotes:  req.AdminNotes,
	}
	if err := h.users.CreateUser(c.Request().Context(), user); err != nil {
		log.Error("Failed to create user", zap.String("username", req.Username), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create user"})
	}

	log.Info("User created", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return c.JSON(http.StatusCreated, user)
}

// List returns accounts with pagination.
func (h *UserHandler) List(c echo.Context) error {
	offset, _ := strconv.Atoi(c.QueryParam("skip"))
	if offset < 0 {
		return writeError(c, &model.ValidationError{Field: "skip", Message: "must not be negative"})
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	users, err := h.users.ListUsers(c.Request().Context(), offset, limit)
	if err != nil {
		logger.FromEcho(c).Error("Failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve users"})
	}
	return c.JSON(http.StatusOK, users)
}

// Get returns one account by id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}
	user, err := h.users.GetUser(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Update mutates profile fields; a non-empty password is re-hashed.
func (h *UserHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	user, err := h.users.GetUser(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update user"})
		}
		user.Password = string(hashed)
	}
	if req.ContactName != "" {
		user.ContactName = req.ContactName
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.PhotoURL != "" {
		user.PhotoURL = req.PhotoURL
	}
	if req.AdminNotes != "" {
		user.AdminNotes = req.AdminNotes
	}

	if err := h.users.UpdateUser(c.Request().Context(), user); err != nil {
		log.Error("Failed to update user", zap.Uint("user_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update user"})
	}

	log.Info("User updated", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, user)
}

// Delete removes an account.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}
	user, err := h.users.DeleteUser(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	logger.FromEcho(c).Info("User deleted", zap.Uint("user_id", id), zap.String("username", user.Username))
	return c.JSON(http.StatusOK, user)
}
