package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/hr-console/internal/domain"
	"github.com/xela07ax/hr-console/internal/policy"
	"go.uber.org/zap"
)

// RecordRepository - записи, привязанные к сотруднику.
type RecordRepository interface {
	GetEmployee(ctx context.Context, id int64) (*domain.Employee, error)

	ListContracts(ctx context.Context, employeeID int64) ([]domain.Contract, error)
	GetContract(ctx context.Context, id int64) (*domain.Contract, error)
	CreateContract(ctx context.Context, c *domain.Contract) error
	UpdateContract(ctx context.Context, c *domain.Contract) error
	DeleteContract(ctx context.Context, id int64) error

	ListSalaries(ctx context.Context, employeeID int64) ([]domain.Salary, error)
	GetSalary(ctx context.Context, id int64) (*domain.Salary, error)
	CreateSalary(ctx context.Context, s *domain.Salary) error
	UpdateSalary(ctx context.Context, s *domain.Salary) error
	DeleteSalary(ctx context.Context, id int64) error

	ListInsurances(ctx context.Context, employeeID int64) ([]domain.Insurance, error)
	GetInsurance(ctx context.Context, id int64) (*domain.Insurance, error)
	CreateInsurance(ctx context.Context, in *domain.Insurance) error
	UpdateInsurance(ctx context.Context, in *domain.Insurance) error
	DeleteInsurance(ctx context.Context, id int64) error

	ListRelatives(ctx context.Context, employeeID int64) ([]domain.Relative, error)
	GetRelative(ctx context.Context, id int64) (*domain.Relative, error)
	CreateRelative(ctx context.Context, r *domain.Relative) error
	UpdateRelative(ctx context.Context, r *domain.Relative) error
	DeleteRelative(ctx context.Context, id int64) error
}

// RecordService - договоры, оклады, страховки и родственники.
// Доступ: право на раздел, либо чтение собственных записей.
type RecordService struct {
	repo   RecordRepository
	guard  *Guard
	images ImageStore
	logger *zap.Logger
}

func NewRecordService(repo RecordRepository, guard *Guard, images ImageStore, logger *zap.Logger) *RecordService {
	return &RecordService{
		repo:   repo,
		guard:  guard,
		images: images,
		logger: logger.Named("record-service"),
	}
}

// authorize проверяет доступ к записям сотрудника. Для записи проверяет и существование сотрудника.
func (s *RecordService) authorize(ctx context.Context, employeeID int64, obj policy.Object, verb policy.Verb) (policy.Caller, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return policy.Caller{}, err
	}
	if err := s.guard.OwnRecordOr(ctx, caller, employeeID, obj, verb); err != nil {
		return policy.Caller{}, err
	}
	if _, err := s.repo.GetEmployee(ctx, employeeID); err != nil {
		return policy.Caller{}, err
	}
	return caller, nil
}

// authorizeWrite - право на запись не зависит от владельца и проверяется до чтения записи по id.
func (s *RecordService) authorizeWrite(ctx context.Context, obj policy.Object) (policy.Caller, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return policy.Caller{}, err
	}
	if err := s.guard.Capability(ctx, caller, obj, policy.VerbWrite); err != nil {
		return policy.Caller{}, err
	}
	return caller, nil
}

// --- contracts ---

func (s *RecordService) ListContracts(ctx context.Context, employeeID int64) ([]domain.Contract, error) {
	if _, err := s.authorize(ctx, employeeID, policy.ObjContracts, policy.VerbRead); err != nil {
		return nil, err
	}
	return s.repo.ListContracts(ctx, employeeID)
}

func (s *RecordService) CreateContract(ctx context.Context, c *domain.Contract) error {
	caller, err := s.authorize(ctx, c.EmployeeID, policy.ObjContracts, policy.VerbWrite)
	if err != nil {
		return err
	}
	if err := validateContract(c); err != nil {
		return err
	}
	if err := s.repo.CreateContract(ctx, c); err != nil {
		return fmt.Errorf("record_service: create contract: %w", err)
	}
	s.guard.Record(ctx, caller, "contract.create", string(policy.ObjContracts), idStr(c.ID))
	return nil
}

func (s *RecordService) UpdateContract(ctx context.Context, c *domain.Contract) error {
	caller, err := s.authorizeWrite(ctx, policy.ObjContracts)
	if err != nil {
		return err
	}
	existing, err := s.repo.GetContract(ctx, c.ID)
	if err != nil {
		return err
	}
	c.EmployeeID = existing.EmployeeID
	if c.ImagePath == "" {
		c.ImagePath = existing.ImagePath
	}
	if err := validateContract(c); err != nil {
		return err
	}
	if err := s.repo.UpdateContract(ctx, c); err != nil {
		return fmt.Errorf("record_service: update contract: %w", err)
	}
	s.guard.Record(ctx, caller, "contract.update", string(policy.ObjContracts), idStr(c.ID))
	return nil
}

func (s *RecordService) DeleteContract(ctx context.Context, id int64) error {
	caller, err := s.authorizeWrite(ctx, policy.ObjContracts)
	if err != nil {
		return err
	}
	existing, err := s.repo.GetContract(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteContract(ctx, id); err != nil {
		return fmt.Errorf("record_service: delete contract: %w", err)
	}
	if err := s.images.Remove(existing.ImagePath); err != nil {
		s.logger.Warn("contract image cleanup failed", zap.Int64("contract_id", id), zap.Error(err))
	}
	s.guard.Record(ctx, caller, "contract.delete", string(policy.ObjContracts), idStr(id))
	return nil
}

// UploadContractImage прикладывает скан договора.
func (s *RecordService) UploadContractImage(ctx context.Context, id int64, data []byte) (string, error) {
	caller, err := s.authorizeWrite(ctx, policy.ObjContracts)
	if err != nil {
		return "", err
	}
	existing, err := s.repo.GetContract(ctx, id)
	if err != nil {
		return "", err
	}
	path, err := s.images.StoreImage(ctx, data)
	if err != nil {
		return "", err
	}
	old := existing.ImagePath
	existing.ImagePath = path
	if err := s.repo.UpdateContract(ctx, existing); err != nil {
		_ = s.images.Remove(path)
		return "", fmt.Errorf("record_service: attach contract image: %w", err)
	}
	if err := s.images.Remove(old); err != nil {
		s.logger.Warn("old contract image cleanup failed", zap.Int64("contract_id", id), zap.Error(err))
	}
	s.guard.Record(ctx, caller, "contract.image", string(policy.ObjContracts), idStr(id))
	return path, nil
}

func validateContract(c *domain.Contract) error {
	c.Number = strings.TrimSpace(c.Number)
	if c.Number == "" || strings.TrimSpace(c.Kind) == "" {
		return fmt.Errorf("contract number and kind are required: %w", domain.ErrInvalidInput)
	}
	if c.StartDate.IsZero() {
		return fmt.Errorf("contract start date is required: %w", domain.ErrInvalidInput)
	}
	if c.EndDate != nil && c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("contract ends before it starts: %w", domain.ErrInvalidInput)
	}
	return nil
}

// --- salaries ---

func (s *RecordService) ListSalaries(ctx context.Context, employeeID int64) ([]domain.Salary, error) {
	if _, err := s.authorize(ctx, employeeID, policy.ObjSalaries, policy.VerbRead); err != nil {
		return nil, err
	}
	return s.repo.ListSalaries(ctx, employeeID)
}

func (s *RecordService) CreateSalary(ctx context.Context, sal *domain.Salary) error {
	caller, err := s.authorize(ctx, sal.EmployeeID, policy.ObjSalaries, policy.VerbWrite)
	if err != nil {
		return err
	}
	if err := validateSalary(sal); err != nil {
		return err
	}
	if err := s.repo.CreateSalary(ctx, sal); err != nil {
		return fmt.Errorf("record_service: create salary: %w", err)
	}
	s.guard.Record(ctx, caller, "salary.create", string(policy.ObjSalaries), idStr(sal.ID))
	return nil
}

func (s *RecordService) UpdateSalary(ctx context.Context, sal *domain.Salary) error {
	caller, err := s.authorizeWrite(ctx, policy.ObjSalaries)
	if err != nil {
		return err
	}
	existing, err := s.repo.GetSalary(ctx, sal.ID)
	if err != nil {
		return err
	}
	sal.EmployeeID = existing.EmployeeID
	if err := validateSalary(sal); err != nil {
		return err
	}
	if err := s.repo.UpdateSalary(ctx, sal); err != nil {
		return fmt.Errorf("record_service: update salary: %w", err)
	}
	s.guard.Record(ctx, caller, "salary.update", string(policy.ObjSalaries), idStr(sal.ID))
	return nil
}

func (s *RecordService) DeleteSalary(ctx context.Context, id int64) error {
	caller, err := s.authorizeWrite(ctx, policy.ObjSalaries)
	if err != nil {
		return err
	}
	_, err = s.repo.GetSalary(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSalary(ctx, id); err != nil {
		return fmt.Errorf("record_service: delete salary: %w", err)
	}
	s.guard.Record(ctx, caller, "salary.delete", string(policy.ObjSalaries), idStr(id))
	return nil
}

func validateSalary(s *domain.Salary) error {
	if s.BaseAmount.IsNegative() || s.Allowance.IsNegative() {
		return fmt.Errorf("salary amounts must not be negative: %w", domain.ErrInvalidInput)
	}
	if !s.Coefficient.IsPositive() {
		return fmt.Errorf("salary coefficient must be positive: %w", domain.ErrInvalidInput)
	}
	if s.EffectiveFrom.IsZero() {
		return fmt.Errorf("salary effective date is required: %w", domain.ErrInvalidInput)
	}
	return nil
}

// --- insurances ---

func (s *RecordService) ListInsurances(ctx context.Context, employeeID int64) ([]domain.Insurance, error) {
	if _, err := s.authorize(ctx, employeeID, policy.ObjInsurances, policy.VerbRead); err != nil {
		return nil, err
	}
	return s.repo.ListInsurances(ctx, employeeID)
}

func (s *RecordService) CreateInsurance(ctx context.Context, in *domain.Insurance) error {
	caller, err := s.authorize(ctx, in.EmployeeID, policy.ObjInsurances, policy.VerbWrite)
	if err != nil {
		return err
	}
	if err := validateInsurance(in); err != nil {
		return err
	}
	if err := s.repo.CreateInsurance(ctx, in); err != nil {
		return fmt.Errorf("record_service: create insurance: %w", err)
	}
	s.guard.Record(ctx, caller, "insurance.create", string(policy.ObjInsurances), idStr(in.ID))
	return nil
}

func (s *RecordService) UpdateInsurance(ctx context.Context, in *domain.Insurance) error {
	caller, err := s.authorizeWrite(ctx, policy.ObjInsurances)
	if err != nil {
		return err
	}
	existing, err := s.repo.GetInsurance(ctx, in.ID)
	if err != nil {
		return err
	}
	in.EmployeeID = existing.EmployeeID
	if err := validateInsurance(in); err != nil {
		return err
	}
	if err := s.repo.UpdateInsurance(ctx, in); err != nil {
		return fmt.Errorf("record_service: update insurance: %w", err)
	}
	s.guard.Record(ctx, caller, "insurance.update", string(policy.ObjInsurances), idStr(in.ID))
	return nil
}

func (s *RecordService) DeleteInsurance(ctx context.Context, id int64) error {
	caller, err := s.authorizeWrite(ctx, policy.ObjInsurances)
	if err != nil {
		return err
	}
	_, err = s.repo.GetInsurance(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteInsurance(ctx, id); err != nil {
		return fmt.Errorf("record_service: delete insurance: %w", err)
	}
	s.guard.Record(ctx, caller, "insurance.delete", string(policy.ObjInsurances), idStr(id))
	return nil
}

func validateInsurance(in *domain.Insurance) error {
	in.Number = strings.TrimSpace(in.Number)
	if in.Number == "" {
		return fmt.Errorf("insurance number is required: %w", domain.ErrInvalidInput)
	}
	if !in.Kind.Valid() {
		return fmt.Errorf("unknown insurance kind %q: %w", in.Kind, domain.ErrInvalidInput)
	}
	if in.IssuedAt.IsZero() {
		return fmt.Errorf("insurance issue date is required: %w", domain.ErrInvalidInput)
	}
	if in.ExpiresAt != nil && in.ExpiresAt.Before(in.IssuedAt) {
		return fmt.Errorf("insurance expires before it is issued: %w", domain.ErrInvalidInput)
	}
	return nil
}

// --- relatives ---

func (s *RecordService) ListRelatives(ctx context.Context, employeeID int64) ([]domain.Relative, error) {
	if _, err := s.authorize(ctx, employeeID, policy.ObjRelatives, policy.VerbRead); err != nil {
		return nil, err
	}
	return s.repo.ListRelatives(ctx, employeeID)
}

func (s *RecordService) CreateRelative(ctx context.Context, r *domain.Relative) error {
	caller, err := s.authorize(ctx, r.EmployeeID, policy.ObjRelatives, policy.VerbWrite)
	if err != nil {
		return err
	}
	if err := validateRelative(r); err != nil {
		return err
	}
	if err := s.repo.CreateRelative(ctx, r); err != nil {
		return fmt.Errorf("record_service: create relative: %w", err)
	}
	s.guard.Record(ctx, caller, "relative.create", string(policy.ObjRelatives), idStr(r.ID))
	return nil
}

func (s *RecordService) UpdateRelative(ctx context.Context, r *domain.Relative) error {
	caller, err := s.authorizeWrite(ctx, policy.ObjRelatives)
	if err != nil {
		return err
	}
	existing, err := s.repo.GetRelative(ctx, r.ID)
	if err != nil {
		return err
	}
	r.EmployeeID = existing.EmployeeID
	if err := validateRelative(r); err != nil {
		return err
	}
	if err := s.repo.UpdateRelative(ctx, r); err != nil {
		return fmt.Errorf("record_service: update relative: %w", err)
	}
	s.guard.Record(ctx, caller, "relative.update", string(policy.ObjRelatives), idStr(r.ID))
	return nil
}

func (s *RecordService) DeleteRelative(ctx context.Context, id int64) error {
	caller, err := s.authorizeWrite(ctx, policy.ObjRelatives)
	if err != nil {
		return err
	}
	_, err = s.repo.GetRelative(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRelative(ctx, id); err != nil {
		return fmt.Errorf("record_service: delete relative: %w", err)
	}
	s.guard.Record(ctx, caller, "relative.delete", string(policy.ObjRelatives), idStr(id))
	return nil
}

func validateRelative(r *domain.Relative) error {
	r.FullName = strings.TrimSpace(r.FullName)
	if r.FullName == "" || strings.TrimSpace(r.Relationship) == "" {
		return fmt.Errorf("relative name and relationship are required: %w", domain.ErrInvalidInput)
	}
	return nil
}
