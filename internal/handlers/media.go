package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/penpal-app/penpal-api/internal/dto"
	apierrors "github.com/penpal-app/penpal-api/internal/errors"
	"github.com/penpal-app/penpal-api/internal/middleware"
	"github.com/penpal-app/penpal-api/internal/models"
	"github.com/penpal-app/penpal-api/internal/services"
	"github.com/penpal-app/penpal-api/internal/storage"
)

// MediaHandler coordinates media-asset HTTP handlers. Uploads go through the
// blob store when one is configured; external-URL attachments work without
// one.
type MediaHandler struct {
	mediaService *services.MediaService
	auditService *services.AuditService
	blobStore    storage.BlobStore
}

// NewMediaHandler creates a new MediaHandler. blobStore may be nil when
// object storage is disabled.
func NewMediaHandler(mediaService *services.MediaService, auditService *services.AuditService, blobStore storage.BlobStore) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		auditService: auditService,
		blobStore:    blobStore,
	}
}

// ListMedia returns a document's live media assets. The document author sees
// all of them; other viewers only their own uploads.
func (h *MediaHandler) ListMedia(c *gin.Context) {
	docID, ok := documentID(c)
	if !ok {
		return
	}

	assets, err := h.mediaService.ListForDocument(viewerID(c), docID)
	if err != nil {
		respondMediaError(c, err)
		return
	}

	items := make([]dto.MediaAssetDTO, len(assets))
	for i, asset := range assets {
		items[i] = dto.ToMediaAssetDTO(asset)
	}

	c.JSON(http.StatusOK, gin.H{"media": items})
}

// CreateMedia attaches a media asset to a document. Multipart requests
// upload the file to the blob store; JSON requests attach an external URL.
func (h *MediaHandler) CreateMedia(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	docID, ok := documentID(c)
	if !ok {
		return
	}

	var input services.CreateMediaInput
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		input, ok = h.uploadInput(c)
		if !ok {
			return
		}
	} else {
		type CreateMediaRequest struct {
			FileType models.FileType `json:"file_type"`
			URL      string          `json:"url"`
			MetaData datatypes.JSON  `json:"meta_data"`
		}

		var req CreateMediaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
		input = services.CreateMediaInput{
			FileType: req.FileType,
			URL:      req.URL,
			MetaData: req.MetaData,
		}
	}

	asset, err := h.mediaService.Create(userID, docID, input)
	if err != nil {
		respondMediaError(c, err)
		return
	}

	h.auditService.Record(&userID, models.VerbCreate, services.TargetMedia,
		asset.ID.String(), nil, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusCreated, dto.ToMediaAssetDTO(*asset))
}

// GetMedia returns one media asset the caller may access.
func (h *MediaHandler) GetMedia(c *gin.Context) {
	id, ok := mediaID(c)
	if !ok {
		return
	}

	asset, err := h.mediaService.Get(viewerID(c), id)
	if err != nil {
		respondMediaError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMediaAssetDTO(*asset))
}

// DeleteMedia soft-deletes a media asset. The stored object is kept; only
// the record disappears.
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := mediaID(c)
	if !ok {
		return
	}

	asset, err := h.mediaService.SoftDelete(userID, id)
	if err != nil {
		respondMediaError(c, err)
		return
	}

	h.auditService.Record(&userID, models.VerbDelete, services.TargetMedia,
		asset.ID.String(), nil, c.ClientIP(), c.Request.UserAgent())

	c.Status(http.StatusNoContent)
}

// uploadInput reads the multipart file, stores it in the blob store and
// builds the asset input from the result.
func (h *MediaHandler) uploadInput(c *gin.Context) (services.CreateMediaInput, bool) {
	if h.blobStore == nil {
		apierrors.ServiceUnavailable(c, "File uploads are not enabled")
		return services.CreateMediaInput{}, false
	}

	header, err := c.FormFile("file")
	if err != nil {
		apierrors.ValidationFailed(c, map[string]string{"file": "A file is required"})
		return services.CreateMediaInput{}, false
	}

	file, err := header.Open()
	if err != nil {
		apierrors.InternalError(c, "Failed to read uploaded file")
		return services.CreateMediaInput{}, false
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	key := "media/" + uuid.NewString() + filepath.Ext(header.Filename)

	url, err := h.blobStore.Upload(c.Request.Context(), key, header.Size, file, contentType)
	if err != nil {
		apierrors.InternalError(c, "Failed to store uploaded file")
		return services.CreateMediaInput{}, false
	}

	meta, _ := json.Marshal(map[string]any{
		"original_name": header.Filename,
		"size":          header.Size,
		"content_type":  contentType,
	})

	return services.CreateMediaInput{
		FileType: fileTypeFor(contentType, c.PostForm("file_type")),
		FileKey:  key,
		URL:      url,
		MetaData: datatypes.JSON(meta),
	}, true
}

// fileTypeFor picks the asset type from an explicit form value, falling back
// to the content type.
func fileTypeFor(contentType, explicit string) models.FileType {
	if explicit != "" {
		return models.FileType(explicit)
	}
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.FileTypeImage
	case strings.HasPrefix(contentType, "video/"):
		return models.FileTypeVideo
	default:
		return models.FileTypeFile
	}
}

func mediaID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.NotFound(c, "Media asset not found")
		return uuid.Nil, false
	}
	return id, true
}

func respondMediaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMediaSourceRequired):
		apierrors.ValidationFailed(c, map[string]string{
			"url": "Either a file or a url is required",
		})
	case errors.Is(err, services.ErrMediaNotFound):
		apierrors.NotFound(c, "Media asset not found")
	case errors.Is(err, services.ErrDocumentNotFound):
		apierrors.NotFound(c, "Document not found")
	case errors.Is(err, services.ErrMediaForbidden), errors.Is(err, services.ErrDocumentForbidden):
		apierrors.Forbidden(c, "")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
