package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/penpal-app/penpal-api/internal/models"
	"github.com/penpal-app/penpal-api/internal/repository"
)

var (
	ErrTagNotFound     = errors.New("tag not found")
	ErrTagNameRequired = errors.New("tag name is required")
	ErrTagNameTaken    = errors.New("a tag with this name already exists")
)

// TagService owns tag naming and slug derivation. Slugs are lowercase and
// URL-safe; a collision gets a numeric suffix (-1, -2, ...) until unique.
type TagService struct {
	tagRepo repository.TagRepository
}

// NewTagService creates a new TagService.
func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// Create stores a new tag with a freshly derived slug.
func (s *TagService) Create(name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTagNameRequired
	}

	if _, err := s.tagRepo.FindByName(name); err == nil {
		return nil, ErrTagNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check tag name: %w", err)
	}

	tagSlug, err := s.uniqueSlug(name, 0)
	if err != nil {
		return nil, err
	}

	tag := &models.Tag{Name: name, Slug: tagSlug}
	if err := s.tagRepo.Create(tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTagNameTaken
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

// GetOrCreateByName returns the existing tag with this exact name or creates
// a new one.
func (s *TagService) GetOrCreateByName(name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTagNameRequired
	}
	tag, err := s.tagRepo.FindByName(name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up tag: %w", err)
	}
	return s.Create(name)
}

// Get retrieves one live tag.
func (s *TagService) Get(id uint64) (*models.Tag, error) {
	tag, err := s.tagRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to find tag: %w", err)
	}
	return tag, nil
}

// List returns all live tags.
func (s *TagService) List() ([]models.Tag, error) {
	return s.tagRepo.List()
}

// Rename changes a tag's name and re-derives its slug. Only the explicit tag
// endpoints mutate names; document operations never rename tags.
func (s *TagService) Rename(id uint64, name string) (*models.Tag, error) {
	tag, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTagNameRequired
	}
	if name == tag.Name {
		return tag, nil
	}

	if _, err := s.tagRepo.FindByName(name); err == nil {
		return nil, ErrTagNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check tag name: %w", err)
	}

	tagSlug, err := s.uniqueSlug(name, tag.ID)
	if err != nil {
		return nil, err
	}

	tag.Name = name
	tag.Slug = tagSlug
	if err := s.tagRepo.Update(tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTagNameTaken
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	return tag, nil
}

// SoftDelete marks a tag deleted. Its slug stays reserved.
func (s *TagService) SoftDelete(id uint64) error {
	tag, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.tagRepo.SoftDelete(tag); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

// uniqueSlug slugifies the name and appends -1, -2, ... until no other tag
// holds the candidate.
func (s *TagService) uniqueSlug(name string, excludeID uint64) (string, error) {
	base := slug.Make(name)
	candidate := base
	for i := 1; ; i++ {
		exists, err := s.tagRepo.SlugExists(candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
