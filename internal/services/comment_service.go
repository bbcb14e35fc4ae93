package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/penpal-app/penpal-api/internal/models"
	"github.com/penpal-app/penpal-api/internal/permissions"
	"github.com/penpal-app/penpal-api/internal/repository"
)

var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrCommentForbidden = errors.New("you do not have permission on this comment")
	ErrCommentBodyEmpty = errors.New("comment body cannot be empty")
)

// CommentService owns comment business logic. Creation is open to any
// authenticated user who can read the parent document; updates and deletes
// are restricted to the comment author or the document author.
type CommentService struct {
	commentRepo repository.CommentRepository
	docRepo     repository.DocumentRepository
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, docRepo repository.DocumentRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		docRepo:     docRepo,
	}
}

// ListForDocument returns the live comments of a readable, live document.
// A soft-deleted parent hides its comments from listings.
func (s *CommentService) ListForDocument(viewerID uint64, documentID uuid.UUID) ([]models.Comment, error) {
	doc, err := s.findLiveDocument(documentID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanReadDocument(viewerID, doc) {
		return nil, ErrDocumentForbidden
	}
	return s.commentRepo.ListByDocument(documentID)
}

// Create stores a new comment. The body must be non-empty after trimming.
func (s *CommentService) Create(authorID uint64, documentID uuid.UUID, body string) (*models.Comment, error) {
	doc, err := s.findLiveDocument(documentID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanReadDocument(authorID, doc) {
		return nil, ErrDocumentForbidden
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrCommentBodyEmpty
	}

	comment := &models.Comment{
		DocumentID: documentID,
		AuthorID:   authorID,
		Body:       body,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return s.commentRepo.FindByID(comment.ID)
}

// Get retrieves one live comment, applying the parent document's read rule.
// Direct retrieval by ID only filters on the comment's own soft-delete flag.
func (s *CommentService) Get(viewerID uint64, id uuid.UUID) (*models.Comment, error) {
	comment, err := s.findComment(id)
	if err != nil {
		return nil, err
	}
	if !permissions.CanReadComment(viewerID, comment, &comment.Document) {
		return nil, ErrCommentForbidden
	}
	return comment, nil
}

// Update replaces the comment body.
func (s *CommentService) Update(actorID uint64, id uuid.UUID, body string) (*models.Comment, error) {
	comment, err := s.findComment(id)
	if err != nil {
		return nil, err
	}
	if !permissions.CanModifyComment(actorID, comment, &comment.Document) {
		return nil, ErrCommentForbidden
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrCommentBodyEmpty
	}

	comment.Body = body
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

// SoftDelete marks a comment deleted.
func (s *CommentService) SoftDelete(actorID uint64, id uuid.UUID) (*models.Comment, error) {
	comment, err := s.findComment(id)
	if err != nil {
		return nil, err
	}
	if !permissions.CanModifyComment(actorID, comment, &comment.Document) {
		return nil, ErrCommentForbidden
	}
	if err := s.commentRepo.SoftDelete(comment); err != nil {
		return nil, fmt.Errorf("failed to delete comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) findComment(id uuid.UUID) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) findLiveDocument(id uuid.UUID) (*models.Document, error) {
	doc, err := s.docRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return doc, nil
}
