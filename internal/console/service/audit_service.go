package service

import (
	"context"
	"fmt"

	"github.com/xela07ax/hr-console/internal/audit"
	"github.com/xela07ax/hr-console/internal/policy"
)

// AuditLogProvider описывает контракт для чтения журнала.
type AuditLogProvider interface {
	ListAudit(ctx context.Context, f audit.Filter) ([]audit.AuditEvent, error)
}

type AuditService struct {
	repo  AuditLogProvider
	guard *Guard
}

func NewAuditService(repo AuditLogProvider, guard *Guard) *AuditService {
	return &AuditService{
		repo:  repo,
		guard: guard,
	}
}

// FetchLogs - журнал с фильтрацией; пустые поля фильтра означают "все".
func (s *AuditService) FetchLogs(ctx context.Context, f audit.Filter) ([]audit.AuditEvent, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Capability(ctx, caller, policy.ObjAudit, policy.VerbRead); err != nil {
		return nil, err
	}
	logs, err := s.repo.ListAudit(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("audit_service: failed to fetch logs: %w", err)
	}
	return logs, nil
}
