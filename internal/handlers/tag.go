package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/penpal-app/penpal-api/internal/dto"
	apierrors "github.com/penpal-app/penpal-api/internal/errors"
	"github.com/penpal-app/penpal-api/internal/middleware"
	"github.com/penpal-app/penpal-api/internal/models"
	"github.com/penpal-app/penpal-api/internal/services"
)

// TagHandler coordinates tag HTTP handlers.
type TagHandler struct {
	tagService   *services.TagService
	auditService *services.AuditService
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService *services.TagService, auditService *services.AuditService) *TagHandler {
	return &TagHandler{
		tagService:   tagService,
		auditService: auditService,
	}
}

// ListTags returns every live tag.
func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tagService.List()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tags")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": dto.ToTagDTOs(tags)})
}

// CreateTag creates a tag with a generated unique slug.
func (h *TagHandler) CreateTag(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTagRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tag, err := h.tagService.Create(req.Name)
	if err != nil {
		respondTagError(c, err)
		return
	}

	h.auditService.Record(&userID, models.VerbCreate, services.TargetTag,
		strconv.FormatUint(tag.ID, 10), nil, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusCreated, dto.ToTagDTO(*tag))
}

// GetTag returns one live tag.
func (h *TagHandler) GetTag(c *gin.Context) {
	id, ok := tagID(c)
	if !ok {
		return
	}

	tag, err := h.tagService.Get(id)
	if err != nil {
		respondTagError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDTO(*tag))
}

// UpdateTag renames a tag, regenerating its slug.
func (h *TagHandler) UpdateTag(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := tagID(c)
	if !ok {
		return
	}

	type UpdateTagRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tag, err := h.tagService.Rename(id, req.Name)
	if err != nil {
		respondTagError(c, err)
		return
	}

	h.auditService.Record(&userID, models.VerbUpdate, services.TargetTag,
		strconv.FormatUint(tag.ID, 10), nil, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, dto.ToTagDTO(*tag))
}

// DeleteTag soft-deletes a tag. The slug stays reserved.
func (h *TagHandler) DeleteTag(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := tagID(c)
	if !ok {
		return
	}

	if err := h.tagService.SoftDelete(id); err != nil {
		respondTagError(c, err)
		return
	}

	h.auditService.Record(&userID, models.VerbDelete, services.TargetTag,
		strconv.FormatUint(id, 10), nil, c.ClientIP(), c.Request.UserAgent())

	c.Status(http.StatusNoContent)
}

func tagID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.NotFound(c, "Tag not found")
		return 0, false
	}
	return id, true
}

func respondTagError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTagNameRequired):
		apierrors.ValidationFailed(c, map[string]string{
			"name": "Tag name is required",
		})
	case errors.Is(err, services.ErrTagNameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrTagNotFound):
		apierrors.NotFound(c, "Tag not found")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
