package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string          `json:"token"`
	Profile *domain.Profile `json:"profile"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} domain.Profile "User created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.authService.Register(c.Request.Context(), service.RegisterRequest{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, err, "Failed to register user")
		return
	}
	respond(c, http.StatusCreated, profile)
}

// Login godoc
// @Summary Log in and get a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} gin.H "Authentication failed"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, profile, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err, "Login failed")
		return
	}
	respond(c, http.StatusOK, LoginResponse{Token: token, Profile: profile})
}

// Logout godoc
// @Summary Revoke the current token
// @Tags Auth
// @Security BearerAuth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(ContextTokenKey)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		handleError(c, err, "Logout failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary Get the caller's profile
// @Tags Auth
// @Security BearerAuth
// @Success 200 {object} domain.Profile
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	profile, err := h.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err, "Failed to load profile")
		return
	}
	respond(c, http.StatusOK, profile)
}

// UpdateMe godoc
// @Summary Update the caller's profile
// @Tags Auth
// @Security BearerAuth
// @Param patch body domain.ProfilePatch true "Fields to change"
// @Success 200 {object} domain.Profile
// @Router /me [patch]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var patch domain.ProfilePatch
	if !bindJSON(c, &patch) {
		return
	}
	profile, err := h.authService.UpdateProfile(c.Request.Context(), userID, patch)
	if err != nil {
		handleError(c, err, "Failed to update profile")
		return
	}
	respond(c, http.StatusOK, profile)
}
