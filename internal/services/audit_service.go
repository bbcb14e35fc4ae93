package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"gorm.io/datatypes"

	"github.com/penpal-app/penpal-api/internal/logger"
	"github.com/penpal-app/penpal-api/internal/models"
	"github.com/penpal-app/penpal-api/internal/repository"
)

// Audit target type tags. The target of an entry is a weak (type, id)
// reference; resolving it goes through the registry, never a raw pointer.
const (
	TargetUser     = "user"
	TargetDocument = "document"
	TargetComment  = "comment"
	TargetTag      = "tag"
	TargetMedia    = "media_asset"
)

// TargetResolver looks up the entity an audit entry points at. A resolver
// returning an error just means the target is gone; audit rows outlive their
// targets.
type TargetResolver func(id string) (any, error)

// AuditService appends immutable audit rows and resolves their weak target
// references through a type-tag registry.
type AuditService struct {
	repo repository.AuditRepository

	mu        sync.RWMutex
	resolvers map[string]TargetResolver
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{
		repo:      repo,
		resolvers: make(map[string]TargetResolver),
	}
}

// RegisterTarget maps a type tag to a lookup function.
func (s *AuditService) RegisterTarget(targetType string, resolver TargetResolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolvers[targetType] = resolver
}

// ResolveTarget returns the entity an entry points at, if it still exists
// and the type tag is registered.
func (s *AuditService) ResolveTarget(targetType, targetID string) (any, error) {
	s.mu.RLock()
	resolver, ok := s.resolvers[targetType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown audit target type %q", targetType)
	}
	return resolver(targetID)
}

// Record appends one audit row synchronously. A failure here is logged but
// never propagated: the audited operation has already happened and must not
// be rolled back or error out because bookkeeping failed.
func (s *AuditService) Record(actorID *uint64, verb models.AuditVerb, targetType, targetID string, diff map[string]any, ip, userAgent string) {
	var diffJSON datatypes.JSON
	if len(diff) > 0 {
		raw, err := json.Marshal(diff)
		if err != nil {
			logger.Logger().Warn().Err(err).Str("target_type", targetType).Msg("failed to marshal audit diff")
		} else {
			diffJSON = datatypes.JSON(raw)
		}
	}

	entry := &models.AuditLog{
		ActorID:    actorID,
		Verb:       verb,
		TargetType: targetType,
		TargetID:   targetID,
		Diff:       diffJSON,
		IP:         ip,
		UserAgent:  userAgent,
	}
	if err := s.repo.Create(entry); err != nil {
		logger.Logger().Error().Err(err).
			Str("verb", string(verb)).
			Str("target_type", targetType).
			Str("target_id", targetID).
			Msg("failed to write audit log entry")
	}
}

// ListByTarget returns the audit trail of one entity, newest first.
func (s *AuditService) ListByTarget(targetType, targetID string) ([]models.AuditLog, error) {
	return s.repo.ListByTarget(targetType, targetID)
}
