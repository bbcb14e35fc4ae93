package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/penpal-app/penpal-api/internal/constants"
	"github.com/penpal-app/penpal-api/internal/dto"
	apierrors "github.com/penpal-app/penpal-api/internal/errors"
	"github.com/penpal-app/penpal-api/internal/middleware"
	"github.com/penpal-app/penpal-api/internal/models"
	"github.com/penpal-app/penpal-api/internal/permissions"
	"github.com/penpal-app/penpal-api/internal/repository"
	"github.com/penpal-app/penpal-api/internal/services"
	"github.com/penpal-app/penpal-api/internal/utils"
)

// DocumentHandler coordinates document HTTP handlers.
type DocumentHandler struct {
	docService   *services.DocumentService
	auditService *services.AuditService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(docService *services.DocumentService, auditService *services.AuditService) *DocumentHandler {
	return &DocumentHandler{
		docService:   docService,
		auditService: auditService,
	}
}

// ListDocuments returns documents visible to the caller: public documents
// plus, when authenticated, their own. Supports filtering, search, ordering
// and pagination.
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	viewerID := viewerID(c)
	params := utils.GetPaginationParams(c)

	filter := repository.DocumentFilter{
		ViewerID: viewerID,
		Search:   c.Query("search"),
		OrderBy:  c.Query("ordering"),
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if v := c.Query("document_type"); v != "" {
		t := models.DocumentType(v)
		filter.DocumentType = &t
	}
	if v := c.Query("status"); v != "" {
		s := models.DocumentStatus(v)
		filter.Status = &s
	}
	if v := c.Query("editor_type"); v != "" {
		e := models.EditorType(v)
		filter.EditorType = &e
	}
	if v := c.Query("is_public"); v != "" {
		isPublic, err := strconv.ParseBool(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid is_public")
			return
		}
		filter.IsPublic = &isPublic
	}
	if v := c.Query("author"); v != "" {
		authorID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid author")
			return
		}
		filter.AuthorID = &authorID
	}

	docs, total, err := h.docService.List(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch documents")
		return
	}

	items := make([]dto.DocumentListItemDTO, len(docs))
	for i, doc := range docs {
		items[i] = dto.ToDocumentListItemDTO(doc)
	}

	c.JSON(http.StatusOK, gin.H{
		"documents":  items,
		"pagination": params.Response(total),
	})
}

// CreateDocument creates a new document owned by the caller.
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateDocumentRequest struct {
		Title            string                `json:"title" binding:"required"`
		Description      string                `json:"description"`
		Content          string                `json:"content" binding:"required"`
		ContentJSON      datatypes.JSON        `json:"content_json"`
		BlockNoteContent datatypes.JSON        `json:"block_note_content"`
		DocumentType     models.DocumentType   `json:"document_type"`
		EditorType       models.EditorType     `json:"editor_type"`
		Status           models.DocumentStatus `json:"status"`
		IsPublic         bool                  `json:"is_public"`
		AllowComments    *bool                 `json:"allow_comments"`
		AllowSharing     bool                  `json:"allow_sharing"`
		AllowEditing     bool                  `json:"allow_editing"`
		TagIDs           []uint64              `json:"tag_ids"`
	}

	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	allowComments := true
	if req.AllowComments != nil {
		allowComments = *req.AllowComments
	}

	doc, err := h.docService.Create(userID, services.CreateDocumentInput{
		Title:            req.Title,
		Description:      req.Description,
		Content:          req.Content,
		ContentJSON:      req.ContentJSON,
		BlockNoteContent: req.BlockNoteContent,
		DocumentType:     req.DocumentType,
		EditorType:       req.EditorType,
		Status:           req.Status,
		IsPublic:         req.IsPublic,
		AllowComments:    allowComments,
		AllowSharing:     req.AllowSharing,
		AllowEditing:     req.AllowEditing,
		TagIDs:           req.TagIDs,
	})
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	h.auditService.Record(&userID, models.VerbCreate, services.TargetDocument,
		doc.ID.String(), nil, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusCreated, dto.ToDocumentDTO(*doc))
}

// GetDocument returns a single document visible to the caller.
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}

	doc, err := h.docService.Get(viewerID(c), id)
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentDTO(*doc))
}

// UpdateDocument applies a partial update to a document the caller owns.
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := documentID(c)
	if !ok {
		return
	}

	type UpdateDocumentRequest struct {
		Title            *string                `json:"title"`
		Description      *string                `json:"description"`
		Content          *string                `json:"content"`
		ContentJSON      *datatypes.JSON        `json:"content_json"`
		BlockNoteContent *datatypes.JSON        `json:"block_note_content"`
		DocumentType     *models.DocumentType   `json:"document_type"`
		EditorType       *models.EditorType     `json:"editor_type"`
		Status           *models.DocumentStatus `json:"status"`
		IsPublic         *bool                  `json:"is_public"`
		AllowComments    *bool                  `json:"allow_comments"`
		AllowSharing     *bool                  `json:"allow_sharing"`
		AllowEditing     *bool                  `json:"allow_editing"`
		TagIDs           *[]uint64              `json:"tag_ids"`
	}

	var req UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	doc, diff, err := h.docService.Update(userID, id, services.UpdateDocumentInput{
		Title:            req.Title,
		Description:      req.Description,
		Content:          req.Content,
		ContentJSON:      req.ContentJSON,
		BlockNoteContent: req.BlockNoteContent,
		DocumentType:     req.DocumentType,
		EditorType:       req.EditorType,
		Status:           req.Status,
		IsPublic:         req.IsPublic,
		AllowComments:    req.AllowComments,
		AllowSharing:     req.AllowSharing,
		AllowEditing:     req.AllowEditing,
		TagIDs:           req.TagIDs,
	})
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	verb := models.VerbUpdate
	if req.Status != nil && *req.Status == models.DocumentStatusPublished {
		if _, changed := diff["status"]; changed {
			verb = models.VerbPublish
		}
	}
	h.auditService.Record(&userID, verb, services.TargetDocument,
		doc.ID.String(), diff, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, dto.ToDocumentDTO(*doc))
}

// DeleteDocument soft-deletes a document the caller owns.
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := documentID(c)
	if !ok {
		return
	}

	doc, err := h.docService.SoftDelete(userID, id)
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	h.auditService.Record(&userID, models.VerbDelete, services.TargetDocument,
		doc.ID.String(), nil, c.ClientIP(), c.Request.UserAgent())

	c.Status(http.StatusNoContent)
}

// DocumentStats returns aggregate counts of the caller's own live documents,
// zero-filled for every known status, type and editor.
func (h *DocumentHandler) DocumentStats(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	stats, err := h.docService.Stats(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to compute document stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// viewerID returns the authenticated user ID or the anonymous sentinel.
func viewerID(c *gin.Context) uint64 {
	if userID, exists := middleware.GetUserID(c); exists {
		return userID
	}
	return permissions.AnonymousID
}

// documentID parses the :id path parameter, responding 404 on garbage so
// malformed IDs look the same as absent documents.
func documentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.NotFound(c, "Document not found")
		return uuid.Nil, false
	}
	return id, true
}

func respondDocumentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleTooShort):
		apierrors.ValidationFailed(c, map[string]string{
			"title": "Title must be at least " + strconv.Itoa(constants.MinTitleLength) + " characters long",
		})
	case errors.Is(err, services.ErrContentEmpty):
		apierrors.ValidationFailed(c, map[string]string{
			"content": "Content cannot be empty",
		})
	case errors.Is(err, services.ErrInvalidDocType):
		apierrors.ValidationFailed(c, map[string]string{
			"document_type": err.Error(),
		})
	case errors.Is(err, services.ErrInvalidEditorType):
		apierrors.ValidationFailed(c, map[string]string{
			"editor_type": err.Error(),
		})
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.ValidationFailed(c, map[string]string{
			"status": err.Error(),
		})
	case errors.Is(err, services.ErrUnknownTag):
		apierrors.ValidationFailed(c, map[string]string{
			"tag_ids": err.Error(),
		})
	case errors.Is(err, services.ErrDuplicateTitle):
		apierrors.Conflict(c, "You already have a document with this title.")
	case errors.Is(err, services.ErrDocumentNotFound):
		apierrors.NotFound(c, "Document not found")
	case errors.Is(err, services.ErrDocumentForbidden):
		apierrors.Forbidden(c, "")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
