package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/penpal-app/penpal-api/internal/models"
	"github.com/penpal-app/penpal-api/internal/permissions"
	"github.com/penpal-app/penpal-api/internal/repository"
)

var (
	ErrMediaNotFound       = errors.New("media asset not found")
	ErrMediaForbidden      = errors.New("you do not have permission on this media asset")
	ErrMediaSourceRequired = errors.New("a media asset requires a file or a url")
)

// MediaService owns media-asset business logic. The uploader becomes the
// asset owner; reads and writes are allowed to the owner or the document
// author.
type MediaService struct {
	mediaRepo repository.MediaRepository
	docRepo   repository.DocumentRepository
}

// NewMediaService creates a new MediaService.
func NewMediaService(mediaRepo repository.MediaRepository, docRepo repository.DocumentRepository) *MediaService {
	return &MediaService{
		mediaRepo: mediaRepo,
		docRepo:   docRepo,
	}
}

// CreateMediaInput represents a new attachment. FileKey is the object-store
// key of an uploaded file; URL points at an external location. At least one
// must be present.
type CreateMediaInput struct {
	FileType models.FileType
	FileKey  string
	URL      string
	MetaData datatypes.JSON
}

// Create attaches a media asset to a readable, live document.
func (s *MediaService) Create(ownerID uint64, documentID uuid.UUID, input CreateMediaInput) (*models.MediaAsset, error) {
	doc, err := s.docRepo.FindByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	if !permissions.CanReadDocument(ownerID, doc) {
		return nil, ErrDocumentForbidden
	}

	if input.FileKey == "" && input.URL == "" {
		return nil, ErrMediaSourceRequired
	}

	fileType := input.FileType
	if fileType == "" {
		fileType = models.FileTypeFile
	}

	asset := &models.MediaAsset{
		DocumentID: documentID,
		OwnerID:    ownerID,
		FileType:   fileType,
		File:       input.FileKey,
		URL:        input.URL,
		MetaData:   input.MetaData,
	}
	if err := s.mediaRepo.Create(asset); err != nil {
		return nil, fmt.Errorf("failed to create media asset: %w", err)
	}
	return asset, nil
}

// ListForDocument returns the document's live assets visible to the viewer:
// all of them for the document author, only the viewer's own otherwise.
func (s *MediaService) ListForDocument(viewerID uint64, documentID uuid.UUID) ([]models.MediaAsset, error) {
	doc, err := s.docRepo.FindByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	if !permissions.CanReadDocument(viewerID, doc) {
		return nil, ErrDocumentForbidden
	}

	assets, err := s.mediaRepo.ListByDocument(documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list media assets: %w", err)
	}
	if viewerID == doc.AuthorID {
		return assets, nil
	}
	visible := make([]models.MediaAsset, 0, len(assets))
	for _, a := range assets {
		if permissions.CanAccessMediaAsset(viewerID, &a, doc) {
			visible = append(visible, a)
		}
	}
	return visible, nil
}

// Get retrieves one live asset.
func (s *MediaService) Get(viewerID uint64, id uuid.UUID) (*models.MediaAsset, error) {
	asset, err := s.findAsset(id)
	if err != nil {
		return nil, err
	}
	if !permissions.CanAccessMediaAsset(viewerID, asset, &asset.Document) {
		return nil, ErrMediaForbidden
	}
	return asset, nil
}

// SoftDelete marks an asset deleted. The stored object, if any, is kept.
func (s *MediaService) SoftDelete(actorID uint64, id uuid.UUID) (*models.MediaAsset, error) {
	asset, err := s.findAsset(id)
	if err != nil {
		return nil, err
	}
	if !permissions.CanAccessMediaAsset(actorID, asset, &asset.Document) {
		return nil, ErrMediaForbidden
	}
	if err := s.mediaRepo.SoftDelete(asset); err != nil {
		return nil, fmt.Errorf("failed to delete media asset: %w", err)
	}
	return asset, nil
}

func (s *MediaService) findAsset(id uuid.UUID) (*models.MediaAsset, error) {
	asset, err := s.mediaRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("failed to find media asset: %w", err)
	}
	return asset, nil
}
