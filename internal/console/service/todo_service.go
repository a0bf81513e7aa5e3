package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xela07ax/hr-console/internal/domain"
	"github.com/xela07ax/hr-console/internal/policy"
	"go.uber.org/zap"
)

// ReasonDeleteIssuerOnly - удалить задачу может только тот, кто ее выдал.
const ReasonDeleteIssuerOnly = "chỉ người giao việc mới có thể xóa công việc"

// ReasonAssigneeStatusOnly - исполнитель чужой задачи меняет только статус.
const ReasonAssigneeStatusOnly = "người được giao chỉ có thể cập nhật trạng thái công việc"

type TodoRepository interface {
	GetEmployee(ctx context.Context, id int64) (*domain.Employee, error)
	ListEmployees(ctx context.Context, f domain.EmployeeFilter) ([]domain.Employee, error)
	ListEmployeeRefs(ctx context.Context) ([]domain.EmployeeRef, error)

	ListTodosByOwners(ctx context.Context, ownerIDs []int64) ([]domain.TodoItem, error)
	GetTodo(ctx context.Context, id int64) (*domain.TodoItem, error)
	CreateTodo(ctx context.Context, t *domain.TodoItem) error
	UpdateTodo(ctx context.Context, t *domain.TodoItem) error
	DeleteTodo(ctx context.Context, id int64) error
}

// TodoInput - новая задача для сотрудника OwnerID.
type TodoInput struct {
	OwnerID  int64
	Title    string
	Content  string
	Deadline *time.Time
}

// TodoPatch - частичное обновление; nil-поля не меняются.
type TodoPatch struct {
	Title    *string
	Content  *string
	Deadline *time.Time
	Status   *domain.TodoStatus
}

type TodoService struct {
	repo   TodoRepository
	guard  *Guard
	logger *zap.Logger
}

func NewTodoService(repo TodoRepository, guard *Guard, logger *zap.Logger) *TodoService {
	return &TodoService{
		repo:   repo,
		guard:  guard,
		logger: logger.Named("todo-service"),
	}
}

// ListVisible - задачи всех сотрудников, которых вызывающий видит по правилу view.
func (s *TodoService) ListVisible(ctx context.Context) ([]domain.TodoItem, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return nil, err
	}
	refs, err := s.repo.ListEmployeeRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("todo_service: list owners: %w", err)
	}

	visible := policy.FilterVisible(s.guard.Hierarchy(), caller, refs, func(r domain.EmployeeRef) policy.Owner {
		return policy.OwnerOf(r)
	})
	ids := make([]int64, 0, len(visible))
	for _, r := range visible {
		ids = append(ids, r.ID)
	}
	return s.repo.ListTodosByOwners(ctx, ids)
}

// ListOwn - задачи самого вызывающего. У учетной записи без сотрудника их нет.
func (s *TodoService) ListOwn(ctx context.Context) ([]domain.TodoItem, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return nil, err
	}
	if !caller.HasEmployee() {
		return []domain.TodoItem{}, nil
	}
	return s.repo.ListTodosByOwners(ctx, []int64{caller.EmployeeID})
}

// Assignees - сотрудники, которым вызывающий может выдать задачу.
func (s *TodoService) Assignees(ctx context.Context) ([]domain.Employee, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return nil, err
	}
	// без Limit: кандидаты нужны все
	list, err := s.repo.ListEmployees(ctx, domain.EmployeeFilter{})
	if err != nil {
		return nil, fmt.Errorf("todo_service: list employees: %w", err)
	}
	h := s.guard.Hierarchy()
	out := make([]domain.Employee, 0)
	for _, e := range list {
		if policy.CanAccessTodo(h, caller, policy.OwnerOf(e.Ref()), policy.ActionCreate) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *TodoService) Get(ctx context.Context, id int64) (*domain.TodoItem, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return nil, err
	}
	t, owner, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Todo(ctx, caller, owner, policy.ActionView, id); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TodoService) Create(ctx context.Context, in TodoInput) (*domain.TodoItem, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return nil, err
	}
	target, err := s.repo.GetEmployee(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Todo(ctx, caller, policy.OwnerOf(target.Ref()), policy.ActionCreate, 0); err != nil {
		return nil, err
	}

	t := &domain.TodoItem{
		OwnerID:  target.ID,
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		Deadline: in.Deadline,
		Status:   domain.TodoPending,
	}
	if caller.HasEmployee() {
		issuer := caller.EmployeeID
		t.IssuerID = &issuer
	}
	if t.Title == "" {
		return nil, fmt.Errorf("todo title is required: %w", domain.ErrInvalidInput)
	}

	if err := s.repo.CreateTodo(ctx, t); err != nil {
		return nil, fmt.Errorf("todo_service: create: %w", err)
	}
	s.guard.Record(ctx, caller, "todo.create", "todos", idStr(t.ID))
	s.logger.Info("todo assigned",
		zap.Int64("todo_id", t.ID),
		zap.Int64("owner_id", t.OwnerID),
		zap.String("user_id", caller.UserID))
	return t, nil
}

func (s *TodoService) Update(ctx context.Context, id int64, p TodoPatch) (*domain.TodoItem, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return nil, err
	}
	t, owner, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Todo(ctx, caller, owner, policy.ActionUpdate, id); err != nil {
		return nil, err
	}
	if assignedBySomeoneElse(caller, t) && (p.Title != nil || p.Content != nil || p.Deadline != nil) {
		denied := domain.Deny(ReasonAssigneeStatusOnly)
		s.guard.observe(ctx, caller, "todos", "todo.update", idStr(id), denied)
		return nil, denied
	}

	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
		if t.Title == "" {
			return nil, fmt.Errorf("todo title is required: %w", domain.ErrInvalidInput)
		}
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.Deadline != nil {
		t.Deadline = p.Deadline
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, fmt.Errorf("unknown todo status %q: %w", *p.Status, domain.ErrInvalidInput)
		}
		t.Status = *p.Status
	}

	if err := s.repo.UpdateTodo(ctx, t); err != nil {
		return nil, fmt.Errorf("todo_service: update: %w", err)
	}
	s.guard.Record(ctx, caller, "todo.update", "todos", idStr(id))
	return t, nil
}

// Delete - только выдавший задачу или администратор.
func (s *TodoService) Delete(ctx context.Context, id int64) error {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	t, err := s.repo.GetTodo(ctx, id)
	if err != nil {
		return err
	}
	isIssuer := t.IssuerID != nil && caller.HasEmployee() && *t.IssuerID == caller.EmployeeID
	if !isIssuer && !caller.IsSuperAdmin() {
		denied := domain.Deny(ReasonDeleteIssuerOnly)
		s.guard.observe(ctx, caller, "todos", "todo.delete", idStr(id), denied)
		return denied
	}
	if err := s.repo.DeleteTodo(ctx, id); err != nil {
		return fmt.Errorf("todo_service: delete: %w", err)
	}
	s.guard.Record(ctx, caller, "todo.delete", "todos", idStr(id))
	return nil
}

// assignedBySomeoneElse - вызывающий исполнитель задачи, но выдал ее не он.
func assignedBySomeoneElse(caller policy.Caller, t *domain.TodoItem) bool {
	if !caller.HasEmployee() || caller.EmployeeID != t.OwnerID {
		return false
	}
	return t.IssuerID == nil || *t.IssuerID != caller.EmployeeID
}

func (s *TodoService) load(ctx context.Context, id int64) (*domain.TodoItem, policy.Owner, error) {
	t, err := s.repo.GetTodo(ctx, id)
	if err != nil {
		return nil, policy.Owner{}, err
	}
	owner, err := s.repo.GetEmployee(ctx, t.OwnerID)
	if err != nil {
		return nil, policy.Owner{}, fmt.Errorf("todo %d owner: %w", id, err)
	}
	return t, policy.OwnerOf(owner.Ref()), nil
}
