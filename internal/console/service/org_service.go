package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/hr-console/internal/domain"
	"github.com/xela07ax/hr-console/internal/infra"
	"github.com/xela07ax/hr-console/internal/policy"
	"go.uber.org/zap"
)

type UnitRepository interface {
	GetUnit(ctx context.Context, id int64) (*domain.OrgUnit, error)
	CreateUnit(ctx context.Context, u *domain.OrgUnit) error
	UpdateUnit(ctx context.Context, u *domain.OrgUnit) error
	DeleteUnit(ctx context.Context, id int64) error
	ListPositions(ctx context.Context) ([]domain.Position, error)
}

// HierarchyCache - кэш оргструктуры, который нужно перечитать после изменения.
type HierarchyCache interface {
	HierarchySource
	Refresh(ctx context.Context) error
}

// Broadcaster публикует сигнал остальным экземплярам консоли.
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type OrgService struct {
	repo   UnitRepository
	cache  HierarchyCache
	guard  *Guard
	bus    Broadcaster
	logger *zap.Logger
}

func NewOrgService(repo UnitRepository, cache HierarchyCache, guard *Guard, bus Broadcaster, logger *zap.Logger) *OrgService {
	return &OrgService{
		repo:   repo,
		cache:  cache,
		guard:  guard,
		bus:    bus,
		logger: logger.Named("org-service"),
	}
}

func (s *OrgService) ListUnits(ctx context.Context) ([]domain.OrgUnit, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Capability(ctx, caller, policy.ObjUnits, policy.VerbRead); err != nil {
		return nil, err
	}
	return s.cache.Snapshot().Units(), nil
}

func (s *OrgService) ListPositions(ctx context.Context) ([]domain.Position, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Capability(ctx, caller, policy.ObjPositions, policy.VerbRead); err != nil {
		return nil, err
	}
	return s.repo.ListPositions(ctx)
}

func (s *OrgService) CreateUnit(ctx context.Context, u *domain.OrgUnit) error {
	caller, err := s.authorizeWrite(ctx)
	if err != nil {
		return err
	}
	u.ID = 0
	if err := s.validate(u); err != nil {
		return err
	}
	if err := s.repo.CreateUnit(ctx, u); err != nil {
		return fmt.Errorf("org_service: create unit: %w", err)
	}
	s.changed(ctx, caller, "unit.create", u.ID)
	return nil
}

func (s *OrgService) UpdateUnit(ctx context.Context, u *domain.OrgUnit) error {
	caller, err := s.authorizeWrite(ctx)
	if err != nil {
		return err
	}
	if _, err := s.repo.GetUnit(ctx, u.ID); err != nil {
		return err
	}
	if u.ParentID != nil && *u.ParentID == u.ID {
		return fmt.Errorf("unit cannot be its own parent: %w", domain.ErrInvalidInput)
	}
	if err := s.validate(u); err != nil {
		return err
	}
	if err := s.repo.UpdateUnit(ctx, u); err != nil {
		return fmt.Errorf("org_service: update unit: %w", err)
	}
	s.changed(ctx, caller, "unit.update", u.ID)
	return nil
}

func (s *OrgService) DeleteUnit(ctx context.Context, id int64) error {
	caller, err := s.authorizeWrite(ctx)
	if err != nil {
		return err
	}
	children, err := s.cache.Snapshot().ChildGroups(id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("department %d still has %d groups: %w", id, len(children), domain.ErrInvalidInput)
	}
	if err := s.repo.DeleteUnit(ctx, id); err != nil {
		return fmt.Errorf("org_service: delete unit: %w", err)
	}
	s.changed(ctx, caller, "unit.delete", id)
	return nil
}

func (s *OrgService) authorizeWrite(ctx context.Context) (policy.Caller, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return policy.Caller{}, err
	}
	return caller, s.guard.Capability(ctx, caller, policy.ObjUnits, policy.VerbWrite)
}

func (s *OrgService) validate(u *domain.OrgUnit) error {
	u.Name = strings.TrimSpace(u.Name)
	if u.Name == "" {
		return fmt.Errorf("unit name is required: %w", domain.ErrInvalidInput)
	}
	return s.cache.Snapshot().ValidateUnit(*u)
}

// changed перечитывает локальный снимок и оповещает остальные экземпляры.
func (s *OrgService) changed(ctx context.Context, caller policy.Caller, action string, unitID int64) {
	s.guard.Record(ctx, caller, action, string(policy.ObjUnits), idStr(unitID))

	if err := s.cache.Refresh(ctx); err != nil {
		s.logger.Error("local hierarchy refresh failed", zap.Error(err))
	}
	if err := s.bus.Publish(ctx, infra.RedisChanOrgUpdate, []byte(idStr(unitID))); err != nil {
		s.logger.Warn("org update signal delivery failed",
			zap.String("channel", infra.RedisChanOrgUpdate),
			zap.Error(err))
	}
}
