package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/penpal-app/penpal-api/internal/constants"
	"github.com/penpal-app/penpal-api/internal/dto"
	apierrors "github.com/penpal-app/penpal-api/internal/errors"
	"github.com/penpal-app/penpal-api/internal/middleware"
	"github.com/penpal-app/penpal-api/internal/models"
	"github.com/penpal-app/penpal-api/internal/services"
)

// AuthHandler coordinates authentication and profile HTTP handlers.
type AuthHandler struct {
	authService  *services.AuthService
	auditService *services.AuditService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, auditService *services.AuditService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		auditService: auditService,
	}
}

// Register creates a new user account with its profile.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username  string `json:"username" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required"`
		Password2 string `json:"password2" binding:"required"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Password2: req.Password2,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.auditService.Record(&user.ID, models.VerbCreate, services.TargetUser,
		strconv.FormatUint(user.ID, 10), nil, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusCreated, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// Login verifies credentials and issues an access/refresh token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, tokens, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.auditService.Record(&user.ID, models.VerbLogin, services.TargetUser,
		strconv.FormatUint(user.ID, 10), nil, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{
		"user":    dto.ToUserDTO(*user),
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
	})
}

// Refresh exchanges a refresh token for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	type RefreshRequest struct {
		Refresh string `json:"refresh" binding:"required"`
	}

	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	access, err := h.authService.Refresh(req.Refresh)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}

// Logout records the logout. Stateless tokens expire on their own; the
// endpoint exists so clients have an explicit boundary and the audit trail
// shows it.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	h.auditService.Record(&userID, models.VerbLogout, services.TargetUser,
		strconv.FormatUint(userID, 10), nil, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetProfile returns the authenticated user with their profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateProfile applies a partial update to the user and their profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateProfileRequest struct {
		FirstName   *string          `json:"first_name"`
		LastName    *string          `json:"last_name"`
		Avatar      *string          `json:"avatar"`
		Bio         *string          `json:"bio"`
		Preferences *json.RawMessage `json:"preferences"`
		Timezone    *string          `json:"timezone"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
		Bio:       req.Bio,
		Timezone:  req.Timezone,
	}
	if req.Preferences != nil {
		prefs := datatypes.JSON(*req.Preferences)
		input.Preferences = &prefs
	}

	user, err := h.authService.UpdateProfile(userID, input)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.auditService.Record(&userID, models.VerbUpdate, services.TargetUser,
		strconv.FormatUint(userID, 10), nil, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.ValidationFailed(c, map[string]string{
			"password": fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength),
		})
	case errors.Is(err, services.ErrPasswordMismatch):
		apierrors.ValidationFailed(c, map[string]string{
			"password2": err.Error(),
		})
	case errors.Is(err, services.ErrUsernameRequired):
		apierrors.ValidationFailed(c, map[string]string{
			"username": err.Error(),
		})
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.ValidationFailed(c, map[string]string{
			"username": err.Error(),
		})
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.ValidationFailed(c, map[string]string{
			"email": err.Error(),
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrInvalidRefreshToken):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFailedToHashPassword):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
