package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/penpal-app/penpal-api/internal/dto"
	apierrors "github.com/penpal-app/penpal-api/internal/errors"
	"github.com/penpal-app/penpal-api/internal/middleware"
	"github.com/penpal-app/penpal-api/internal/models"
	"github.com/penpal-app/penpal-api/internal/services"
)

// CommentHandler coordinates comment HTTP handlers.
type CommentHandler struct {
	commentService *services.CommentService
	auditService   *services.AuditService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentService *services.CommentService, auditService *services.AuditService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		auditService:   auditService,
	}
}

// ListComments returns the live comments of a document the caller can read,
// oldest first.
func (h *CommentHandler) ListComments(c *gin.Context) {
	docID, ok := documentID(c)
	if !ok {
		return
	}

	comments, err := h.commentService.ListForDocument(viewerID(c), docID)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	items := make([]dto.CommentDTO, len(comments))
	for i, comment := range comments {
		items[i] = dto.ToCommentDTO(comment)
	}

	c.JSON(http.StatusOK, gin.H{"comments": items})
}

// CreateComment adds a comment to a document the caller can read.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	docID, ok := documentID(c)
	if !ok {
		return
	}

	type CreateCommentRequest struct {
		Body string `json:"body" binding:"required"`
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.commentService.Create(userID, docID, req.Body)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	h.auditService.Record(&userID, models.VerbCreate, services.TargetComment,
		comment.ID.String(), nil, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusCreated, dto.ToCommentDTO(*comment))
}

// GetComment returns one comment, subject to its document's read rule.
func (h *CommentHandler) GetComment(c *gin.Context) {
	id, ok := commentID(c)
	if !ok {
		return
	}

	comment, err := h.commentService.Get(viewerID(c), id)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCommentDTO(*comment))
}

// UpdateComment rewrites a comment's body. Allowed for the comment author
// and the document author.
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := commentID(c)
	if !ok {
		return
	}

	type UpdateCommentRequest struct {
		Body string `json:"body" binding:"required"`
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.commentService.Update(userID, id, req.Body)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	h.auditService.Record(&userID, models.VerbUpdate, services.TargetComment,
		comment.ID.String(), nil, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, dto.ToCommentDTO(*comment))
}

// DeleteComment soft-deletes a comment.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := commentID(c)
	if !ok {
		return
	}

	comment, err := h.commentService.SoftDelete(userID, id)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	h.auditService.Record(&userID, models.VerbDelete, services.TargetComment,
		comment.ID.String(), nil, c.ClientIP(), c.Request.UserAgent())

	c.Status(http.StatusNoContent)
}

func commentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.NotFound(c, "Comment not found")
		return uuid.Nil, false
	}
	return id, true
}

func respondCommentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCommentBodyEmpty):
		apierrors.ValidationFailed(c, map[string]string{
			"body": "Comment body cannot be empty",
		})
	case errors.Is(err, services.ErrCommentNotFound):
		apierrors.NotFound(c, "Comment not found")
	case errors.Is(err, services.ErrDocumentNotFound):
		apierrors.NotFound(c, "Document not found")
	case errors.Is(err, services.ErrCommentForbidden), errors.Is(err, services.ErrDocumentForbidden):
		apierrors.Forbidden(c, "")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
