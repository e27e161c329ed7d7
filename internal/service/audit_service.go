package service

import (
	"context"
	"time"

	"vendorledger/internal/model"
	"vendorledger/internal/repository"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	ActorID    uint   `json:"actor_id"`
	ActorRole  string `json:"actor_role"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, actor Actor, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// GetAuditLogs lists the caller's vendor trail, newest first
func (s *auditService) GetAuditLogs(ctx context.Context, actor Actor, page, limit int) ([]AuditLogResponse, int64, error) {
	if actor.Role != model.RoleVendor {
		return nil, 0, ErrForbidden
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	logs, total, err := s.repo.List(ctx, actor.VendorID, page, limit)
	if err != nil {
		return nil, 0, storageFault("list audit logs", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			ActorID:    l.ActorID,
			ActorRole:  l.ActorRole,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		})
	}
	return res, total, nil
}
