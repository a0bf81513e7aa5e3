package policy

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/hr-console/internal/domain"
	"github.com/xela07ax/hr-console/internal/infra"
	"go.uber.org/zap"
)

type UnitRepository interface {
	ListUnits(ctx context.Context) ([]domain.OrgUnit, error)
}

// MemoHierarchy - in-memory кэш оргструктуры. На горячем пути проверки доступа
// читается только снимок в памяти, Postgres трогает только Refresh().
type MemoHierarchy struct {
	mu       sync.RWMutex
	snapshot *Hierarchy

	repo   UnitRepository
	rdb    *redis.Client
	logger *zap.Logger
}

func NewMemoHierarchy(repo UnitRepository, rdb *redis.Client, logger *zap.Logger) *MemoHierarchy {
	return &MemoHierarchy{
		snapshot: NewHierarchy(nil),
		repo:     repo,
		rdb:      rdb,
		logger:   logger.Named("hierarchy"),
	}
}

// Snapshot возвращает текущий неизменяемый снимок. Одна проверка доступа должна работать
// с одним снимком, чтобы результат не зависел от параллельного Refresh.
func (m *MemoHierarchy) Snapshot() *Hierarchy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

func (m *MemoHierarchy) ChildGroups(departmentID int64) (map[int64]struct{}, error) {
	return m.Snapshot().ChildGroups(departmentID)
}

func (m *MemoHierarchy) ParentDepartment(groupID int64) (int64, bool, error) {
	return m.Snapshot().ParentDepartment(groupID)
}

// Refresh перечитывает все подразделения из БД и атомарно подменяет снимок.
func (m *MemoHierarchy) Refresh(ctx context.Context) error {
	units, err := m.repo.ListUnits(ctx)
	if err != nil {
		return err
	}

	next := NewHierarchy(units)

	m.mu.Lock()
	m.snapshot = next
	m.mu.Unlock()

	m.logger.Info("org hierarchy refreshed", zap.Int("units", next.Len()))
	return nil
}

// StartListener слушает сигнал об изменении оргструктуры и перечитывает снимок.
// Блокируется до отмены ctx.
func (m *MemoHierarchy) StartListener(ctx context.Context) {
	infra.ListenResilient(ctx, m.rdb, m.logger, infra.RedisChanOrgUpdate,
		func() error { return m.Refresh(ctx) },
		func(string) {
			if err := m.Refresh(ctx); err != nil {
				m.logger.Error("hierarchy refresh failed", zap.Error(err))
			}
		},
	)
}
