package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xela07ax/hr-console/internal/audit"
	"github.com/xela07ax/hr-console/internal/domain"
	"github.com/xela07ax/hr-console/internal/policy"
	"go.uber.org/zap"
)

func ptr(v int64) *int64 { return &v }

// Отдел 2 с группами 3 и 4, отдел 5 с группой 9.
func testUnits() []domain.OrgUnit {
	return []domain.OrgUnit{
		{ID: 2, Name: "Kỹ thuật", Kind: domain.UnitDepartment},
		{ID: 3, Name: "Backend", Kind: domain.UnitGroup, ParentID: ptr(2)},
		{ID: 4, Name: "Frontend", Kind: domain.UnitGroup, ParentID: ptr(2)},
		{ID: 5, Name: "Kinh doanh", Kind: domain.UnitDepartment},
		{ID: 9, Name: "Bán hàng", Kind: domain.UnitGroup, ParentID: ptr(5)},
	}
}

func testEmployees() []domain.Employee {
	return []domain.Employee{
		{ID: 1, FullName: "Giám đốc", Position: domain.PositionDirector, PositionID: 1, UnitID: 2},
		{ID: 20, FullName: "Trưởng phòng KT", Position: domain.PositionDepartmentHead, PositionID: 2, UnitID: 2},
		{ID: 50, FullName: "Trưởng phòng KD", Position: domain.PositionDepartmentHead, PositionID: 2, UnitID: 5},
		{ID: 30, FullName: "Trưởng nhóm BE", Position: domain.PositionTeamLead, PositionID: 3, UnitID: 3},
		{ID: 90, FullName: "Trưởng nhóm BH", Position: domain.PositionTeamLead, PositionID: 3, UnitID: 9},
		{ID: 31, FullName: "Nhân viên BE", Position: domain.PositionStaff, PositionID: 4, UnitID: 3},
		{ID: 41, FullName: "Nhân viên FE", Position: domain.PositionStaff, PositionID: 4, UnitID: 4},
		{ID: 40, FullName: "Nhân sự", Position: domain.PositionHR, PositionID: 5, UnitID: 2},
		{ID: 60, FullName: "Kế toán", Position: domain.PositionPayrollOfficer, PositionID: 6, UnitID: 2},
	}
}

func callerOf(e domain.Employee, role domain.Role) policy.Caller {
	return policy.Caller{UserID: "u-" + e.FullName, Role: role, EmployeeID: e.ID, Position: e.Position, UnitID: e.UnitID}
}

func employeeByID(id int64) domain.Employee {
	for _, e := range testEmployees() {
		if e.ID == id {
			return e
		}
	}
	panic("no test employee")
}

var (
	director   = callerOf(employeeByID(1), domain.RoleUser)
	deptHead2  = callerOf(employeeByID(20), domain.RoleUser)
	teamLead3  = callerOf(employeeByID(30), domain.RoleUser)
	staff3     = callerOf(employeeByID(31), domain.RoleUser)
	hrCaller   = callerOf(employeeByID(40), domain.RoleHR)
	payroll    = callerOf(employeeByID(60), domain.RoleUser)
	superAdmin = policy.Caller{UserID: "u-admin", Role: domain.RoleAdmin}
)

func as(c policy.Caller) context.Context {
	return policy.WithCaller(context.Background(), c)
}

type staticHierarchy struct {
	h         *policy.Hierarchy
	refreshed int
}

func (s *staticHierarchy) Snapshot() *policy.Hierarchy { return s.h }

func (s *staticHierarchy) Refresh(context.Context) error {
	s.refreshed++
	return nil
}

type memAuditor struct {
	mu     sync.Mutex
	events []audit.AuditEvent
}

func (m *memAuditor) Log(e audit.AuditEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *memAuditor) byOutcome(outcome string) []audit.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []audit.AuditEvent
	for _, e := range m.events {
		if e.Outcome == outcome {
			out = append(out, e)
		}
	}
	return out
}

type fakeBus struct {
	err  error
	sent map[string][][]byte
}

func (b *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	if b.sent == nil {
		b.sent = make(map[string][][]byte)
	}
	b.sent[channel] = append(b.sent[channel], payload)
	return b.err
}

type fakeImages struct {
	stored  [][]byte
	removed []string
}

func (f *fakeImages) StoreImage(_ context.Context, data []byte) (string, error) {
	f.stored = append(f.stored, data)
	return "2024/01/img.png", nil
}

func (f *fakeImages) Remove(path string) error {
	if path != "" {
		f.removed = append(f.removed, path)
	}
	return nil
}

// memRepo - хранилище в памяти, реализующее интерфейсы репозиториев сервисов.
type memRepo struct {
	mu         sync.Mutex
	nextID     int64
	employees  map[int64]domain.Employee
	todos      map[int64]domain.TodoItem
	contracts  map[int64]domain.Contract
	salaries   map[int64]domain.Salary
	insurances map[int64]domain.Insurance
	relatives  map[int64]domain.Relative
	units      map[int64]domain.OrgUnit
	notes      []domain.Notification
}

func newMemRepo() *memRepo {
	r := &memRepo{
		nextID:     1000,
		employees:  make(map[int64]domain.Employee),
		todos:      make(map[int64]domain.TodoItem),
		contracts:  make(map[int64]domain.Contract),
		salaries:   make(map[int64]domain.Salary),
		insurances: make(map[int64]domain.Insurance),
		relatives:  make(map[int64]domain.Relative),
		units:      make(map[int64]domain.OrgUnit),
	}
	for _, e := range testEmployees() {
		r.employees[e.ID] = e
	}
	for _, u := range testUnits() {
		r.units[u.ID] = u
	}
	return r
}

func (r *memRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *memRepo) ListEmployees(_ context.Context, f domain.EmployeeFilter) ([]domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var only map[int64]bool
	if f.IDs != nil {
		only = make(map[int64]bool, len(f.IDs))
		for _, id := range f.IDs {
			only[id] = true
		}
	}
	out := make([]domain.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		if f.UnitID != 0 && e.UnitID != f.UnitID {
			continue
		}
		if only != nil && !only[e.ID] {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if f.Offset >= len(out) {
		return []domain.Employee{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memRepo) ListEmployeeRefs(ctx context.Context) ([]domain.EmployeeRef, error) {
	list, _ := r.ListEmployees(ctx, domain.EmployeeFilter{})
	out := make([]domain.EmployeeRef, 0, len(list))
	for _, e := range list {
		out = append(out, e.Ref())
	}
	return out, nil
}

func (r *memRepo) GetEmployee(_ context.Context, id int64) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (r *memRepo) CreateEmployee(_ context.Context, e *domain.Employee, initial *domain.Salary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.id()
	r.employees[e.ID] = *e
	if initial != nil {
		initial.ID = r.id()
		initial.EmployeeID = e.ID
		r.salaries[initial.ID] = *initial
	}
	return nil
}

func (r *memRepo) UpdateEmployee(_ context.Context, e *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.employees[e.ID]; !ok {
		return domain.ErrNotFound
	}
	r.employees[e.ID] = *e
	return nil
}

func (r *memRepo) DeleteEmployee(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.employees[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.employees, id)
	for k, t := range r.todos {
		if t.OwnerID == id {
			delete(r.todos, k)
		}
	}
	for k, s := range r.salaries {
		if s.EmployeeID == id {
			delete(r.salaries, k)
		}
	}
	return nil
}

func (r *memRepo) SetEmployeeAvatar(_ context.Context, id int64, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.AvatarPath = path
	r.employees[id] = e
	return nil
}

func (r *memRepo) ListTodosByOwners(_ context.Context, ownerIDs []int64) ([]domain.TodoItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[int64]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		want[id] = true
	}
	out := make([]domain.TodoItem, 0)
	for _, t := range r.todos {
		if want[t.OwnerID] {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) GetTodo(_ context.Context, id int64) (*domain.TodoItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *memRepo) CreateTodo(_ context.Context, t *domain.TodoItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.id()
	r.todos[t.ID] = *t
	return nil
}

func (r *memRepo) UpdateTodo(_ context.Context, t *domain.TodoItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.todos[t.ID]; !ok {
		return domain.ErrNotFound
	}
	r.todos[t.ID] = *t
	return nil
}

func (r *memRepo) DeleteTodo(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.todos[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.todos, id)
	return nil
}

// generic helpers for per-employee record maps

func listFor[T any](mu *sync.Mutex, m map[int64]T, employeeID int64, owner func(T) int64) []T {
	mu.Lock()
	defer mu.Unlock()
	keys := make([]int64, 0, len(m))
	for k, v := range m {
		if owner(v) == employeeID {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func getFrom[T any](mu *sync.Mutex, m map[int64]T, id int64) (*T, error) {
	mu.Lock()
	defer mu.Unlock()
	v, ok := m[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func putTo[T any](mu *sync.Mutex, m map[int64]T, id int64, v T, mustExist bool) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := m[id]; mustExist && !ok {
		return domain.ErrNotFound
	}
	m[id] = v
	return nil
}

func deleteFrom[T any](mu *sync.Mutex, m map[int64]T, id int64) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := m[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m, id)
	return nil
}

func (r *memRepo) ListContracts(_ context.Context, employeeID int64) ([]domain.Contract, error) {
	return listFor(&r.mu, r.contracts, employeeID, func(c domain.Contract) int64 { return c.EmployeeID }), nil
}
func (r *memRepo) GetContract(_ context.Context, id int64) (*domain.Contract, error) {
	return getFrom(&r.mu, r.contracts, id)
}
func (r *memRepo) CreateContract(_ context.Context, c *domain.Contract) error {
	c.ID = r.id()
	return putTo(&r.mu, r.contracts, c.ID, *c, false)
}
func (r *memRepo) UpdateContract(_ context.Context, c *domain.Contract) error {
	return putTo(&r.mu, r.contracts, c.ID, *c, true)
}
func (r *memRepo) DeleteContract(_ context.Context, id int64) error {
	return deleteFrom(&r.mu, r.contracts, id)
}

func (r *memRepo) ListSalaries(_ context.Context, employeeID int64) ([]domain.Salary, error) {
	return listFor(&r.mu, r.salaries, employeeID, func(s domain.Salary) int64 { return s.EmployeeID }), nil
}
func (r *memRepo) GetSalary(_ context.Context, id int64) (*domain.Salary, error) {
	return getFrom(&r.mu, r.salaries, id)
}
func (r *memRepo) CreateSalary(_ context.Context, s *domain.Salary) error {
	s.ID = r.id()
	return putTo(&r.mu, r.salaries, s.ID, *s, false)
}
func (r *memRepo) UpdateSalary(_ context.Context, s *domain.Salary) error {
	return putTo(&r.mu, r.salaries, s.ID, *s, true)
}
func (r *memRepo) DeleteSalary(_ context.Context, id int64) error {
	return deleteFrom(&r.mu, r.salaries, id)
}

func (r *memRepo) ListInsurances(_ context.Context, employeeID int64) ([]domain.Insurance, error) {
	return listFor(&r.mu, r.insurances, employeeID, func(in domain.Insurance) int64 { return in.EmployeeID }), nil
}
func (r *memRepo) GetInsurance(_ context.Context, id int64) (*domain.Insurance, error) {
	return getFrom(&r.mu, r.insurances, id)
}
func (r *memRepo) CreateInsurance(_ context.Context, in *domain.Insurance) error {
	in.ID = r.id()
	return putTo(&r.mu, r.insurances, in.ID, *in, false)
}
func (r *memRepo) UpdateInsurance(_ context.Context, in *domain.Insurance) error {
	return putTo(&r.mu, r.insurances, in.ID, *in, true)
}
func (r *memRepo) DeleteInsurance(_ context.Context, id int64) error {
	return deleteFrom(&r.mu, r.insurances, id)
}

func (r *memRepo) ListRelatives(_ context.Context, employeeID int64) ([]domain.Relative, error) {
	return listFor(&r.mu, r.relatives, employeeID, func(rel domain.Relative) int64 { return rel.EmployeeID }), nil
}
func (r *memRepo) GetRelative(_ context.Context, id int64) (*domain.Relative, error) {
	return getFrom(&r.mu, r.relatives, id)
}
func (r *memRepo) CreateRelative(_ context.Context, rel *domain.Relative) error {
	rel.ID = r.id()
	return putTo(&r.mu, r.relatives, rel.ID, *rel, false)
}
func (r *memRepo) UpdateRelative(_ context.Context, rel *domain.Relative) error {
	return putTo(&r.mu, r.relatives, rel.ID, *rel, true)
}
func (r *memRepo) DeleteRelative(_ context.Context, id int64) error {
	return deleteFrom(&r.mu, r.relatives, id)
}

func (r *memRepo) GetUnit(_ context.Context, id int64) (*domain.OrgUnit, error) {
	return getFrom(&r.mu, r.units, id)
}
func (r *memRepo) CreateUnit(_ context.Context, u *domain.OrgUnit) error {
	u.ID = r.id()
	return putTo(&r.mu, r.units, u.ID, *u, false)
}
func (r *memRepo) UpdateUnit(_ context.Context, u *domain.OrgUnit) error {
	return putTo(&r.mu, r.units, u.ID, *u, true)
}
func (r *memRepo) DeleteUnit(_ context.Context, id int64) error {
	return deleteFrom(&r.mu, r.units, id)
}
func (r *memRepo) ListPositions(context.Context) ([]domain.Position, error) {
	out := make([]domain.Position, 0)
	for i, p := range domain.AllPositions() {
		out = append(out, domain.Position{ID: int64(i + 1), Code: p, Name: p.Label()})
	}
	return out, nil
}

func (r *memRepo) CreateNotification(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, *n)
	return nil
}

func (r *memRepo) ListNotifications(_ context.Context, limit int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]domain.Notification(nil), r.notes...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// env собирает сервисы поверх общих фейков.
type env struct {
	repo    *memRepo
	hier    *staticHierarchy
	auditor *memAuditor
	bus     *fakeBus
	images  *fakeImages
	guard   *Guard
}

func newEnv(t *testing.T) *env {
	t.Helper()
	enf, err := policy.NewEnforcer("", zap.NewNop())
	require.NoError(t, err)

	e := &env{
		repo:    newMemRepo(),
		hier:    &staticHierarchy{h: policy.NewHierarchy(testUnits())},
		auditor: &memAuditor{},
		bus:     &fakeBus{},
		images:  &fakeImages{},
	}
	e.guard = NewGuard(enf, e.hier, e.auditor, nil, zap.NewNop())
	return e
}

func (e *env) seedTodo(owner, issuer int64, title string) domain.TodoItem {
	t := domain.TodoItem{OwnerID: owner, IssuerID: ptr(issuer), Title: title, Status: domain.TodoPending}
	_ = e.repo.CreateTodo(context.Background(), &t)
	return t
}
