package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xela07ax/hr-console/internal/domain"
	"github.com/xela07ax/hr-console/internal/policy"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type EmployeeRepository interface {
	ListEmployees(ctx context.Context, f domain.EmployeeFilter) ([]domain.Employee, error)
	ListEmployeeRefs(ctx context.Context) ([]domain.EmployeeRef, error)
	GetEmployee(ctx context.Context, id int64) (*domain.Employee, error)
	CreateEmployee(ctx context.Context, e *domain.Employee, initial *domain.Salary) error
	UpdateEmployee(ctx context.Context, e *domain.Employee) error
	DeleteEmployee(ctx context.Context, id int64) error
	SetEmployeeAvatar(ctx context.Context, id int64, path string) error
}

// ImageStore - файловое хранилище картинок.
type ImageStore interface {
	StoreImage(ctx context.Context, data []byte) (string, error)
	Remove(path string) error
}

type EmployeeService struct {
	repo   EmployeeRepository
	guard  *Guard
	images ImageStore
	logger *zap.Logger
}

func NewEmployeeService(repo EmployeeRepository, guard *Guard, images ImageStore, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{
		repo:   repo,
		guard:  guard,
		images: images,
		logger: logger.Named("employee-service"),
	}
}

// List - все сотрудники для владельцев права employees:read,
// для остальных только те, кого разрешает правило видимости (команда и сам).
// Видимость считается по всему штату до постраничной выборки.
func (s *EmployeeService) List(ctx context.Context, f domain.EmployeeFilter) ([]domain.Employee, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return nil, err
	}
	if !s.guard.Allowed(caller, policy.ObjEmployees, policy.VerbRead) {
		refs, err := s.repo.ListEmployeeRefs(ctx)
		if err != nil {
			return nil, fmt.Errorf("employee_service: list refs: %w", err)
		}
		visible := policy.FilterVisible(s.guard.Hierarchy(), caller, refs, func(r domain.EmployeeRef) policy.Owner {
			return policy.OwnerOf(r)
		})
		if len(visible) == 0 {
			return []domain.Employee{}, nil
		}
		f.IDs = make([]int64, 0, len(visible))
		for _, r := range visible {
			f.IDs = append(f.IDs, r.ID)
		}
	}

	list, err := s.repo.ListEmployees(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("employee_service: list: %w", err)
	}
	return list, nil
}

func (s *EmployeeService) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.EmployeeRead(ctx, caller, e.Ref()); err != nil {
		return nil, err
	}
	return e, nil
}

// Create создает карточку; стартовый оклад, если передан, пишется в той же транзакции.
func (s *EmployeeService) Create(ctx context.Context, e *domain.Employee, initial *domain.Salary) error {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	if err := s.guard.Capability(ctx, caller, policy.ObjEmployees, policy.VerbWrite); err != nil {
		return err
	}
	if err := s.validate(e); err != nil {
		return err
	}
	if initial != nil {
		if err := validateSalary(initial); err != nil {
			return err
		}
	}

	if err := s.repo.CreateEmployee(ctx, e, initial); err != nil {
		return fmt.Errorf("employee_service: create: %w", err)
	}
	s.guard.Record(ctx, caller, "employee.create", string(policy.ObjEmployees), idStr(e.ID))
	s.logger.Info("employee created", zap.Int64("employee_id", e.ID), zap.Int64("unit_id", e.UnitID))
	return nil
}

func (s *EmployeeService) Update(ctx context.Context, e *domain.Employee) error {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	if err := s.guard.Capability(ctx, caller, policy.ObjEmployees, policy.VerbWrite); err != nil {
		return err
	}
	if err := s.validate(e); err != nil {
		return err
	}
	if err := s.repo.UpdateEmployee(ctx, e); err != nil {
		return fmt.Errorf("employee_service: update: %w", err)
	}
	s.guard.Record(ctx, caller, "employee.update", string(policy.ObjEmployees), idStr(e.ID))
	return nil
}

// Delete удаляет сотрудника каскадом вместе с договорами, окладами, страховками, родственниками и задачами.
func (s *EmployeeService) Delete(ctx context.Context, id int64) error {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	if err := s.guard.Capability(ctx, caller, policy.ObjEmployees, policy.VerbWrite); err != nil {
		return err
	}
	if caller.EmployeeID == id {
		return fmt.Errorf("cannot delete own employee record: %w", domain.ErrInvalidInput)
	}
	e, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteEmployee(ctx, id); err != nil {
		return fmt.Errorf("employee_service: delete: %w", err)
	}
	if err := s.images.Remove(e.AvatarPath); err != nil {
		s.logger.Warn("avatar cleanup failed", zap.Int64("employee_id", id), zap.Error(err))
	}
	s.guard.Record(ctx, caller, "employee.delete", string(policy.ObjEmployees), idStr(id))
	s.logger.Info("employee deleted", zap.Int64("employee_id", id))
	return nil
}

// UploadAvatar - менять фото может кадровик или сам сотрудник.
func (s *EmployeeService) UploadAvatar(ctx context.Context, id int64, data []byte) (string, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return "", err
	}
	if !(caller.HasEmployee() && caller.EmployeeID == id) {
		if err := s.guard.Capability(ctx, caller, policy.ObjEmployees, policy.VerbWrite); err != nil {
			return "", err
		}
	}
	e, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		return "", err
	}

	path, err := s.images.StoreImage(ctx, data)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetEmployeeAvatar(ctx, id, path); err != nil {
		_ = s.images.Remove(path)
		return "", fmt.Errorf("employee_service: set avatar: %w", err)
	}
	if err := s.images.Remove(e.AvatarPath); err != nil {
		s.logger.Warn("old avatar cleanup failed", zap.Int64("employee_id", id), zap.Error(err))
	}
	s.guard.Record(ctx, caller, "employee.avatar", string(policy.ObjEmployees), idStr(id))
	return path, nil
}

var exportHeader = []string{"ID", "Họ và tên", "Giới tính", "Ngày sinh", "Điện thoại", "Email", "Chức vụ", "Đơn vị", "Ngày vào làm"}

// Export пишет в w XLSX со списком, который вызывающий видит через List. Выгрузка всегда полная.
func (s *EmployeeService) Export(ctx context.Context, f domain.EmployeeFilter, w io.Writer) error {
	f.Limit, f.Offset = 0, 0
	list, err := s.List(ctx, f)
	if err != nil {
		return err
	}
	h := s.guard.Hierarchy()

	x := excelize.NewFile()
	defer x.Close()

	const sheet = "Nhân viên"
	if err := x.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := x.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	for i, e := range list {
		unitName := ""
		if u, err := h.Unit(e.UnitID); err == nil {
			unitName = u.Name
		}
		row := []any{e.ID, e.FullName, e.Gender, dateCell(e.BirthDate), e.Phone, e.Email, e.Position.Label(), unitName, dateCell(e.HiredAt)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		if err := x.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
	}

	if _, err := x.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func (s *EmployeeService) validate(e *domain.Employee) error {
	e.FullName = strings.TrimSpace(e.FullName)
	if e.FullName == "" {
		return fmt.Errorf("full name is required: %w", domain.ErrInvalidInput)
	}
	if e.PositionID == 0 || e.UnitID == 0 {
		return fmt.Errorf("position and unit are required: %w", domain.ErrInvalidInput)
	}
	if _, err := s.guard.Hierarchy().Unit(e.UnitID); err != nil {
		return fmt.Errorf("unit %d does not exist: %w", e.UnitID, domain.ErrInvalidInput)
	}
	return nil
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}
