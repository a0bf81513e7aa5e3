package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/hr-console/internal/domain"
	"github.com/xela07ax/hr-console/internal/policy"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func employeeIDs(list []domain.Employee) []int64 {
	out := make([]int64, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func TestEmployeeList_Scoped(t *testing.T) {
	e := newEnv(t)
	svc := NewEmployeeService(e.repo, e.guard, e.images, zap.NewNop())

	tests := []struct {
		name   string
		caller policy.Caller
		want   []int64
	}{
		{"hr sees everyone", hrCaller, []int64{1, 20, 30, 31, 40, 41, 50, 60, 90}},
		{"director has employees:read", director, []int64{1, 20, 30, 31, 40, 41, 50, 60, 90}},
		{"team lead sees own group", teamLead3, []int64{30, 31}},
		{"department head sees own team leads", deptHead2, []int64{20, 30}},
		{"staff sees self", staff3, []int64{31}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := svc.List(as(tt.caller), domain.EmployeeFilter{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, employeeIDs(list))
		})
	}
}

func TestEmployeeList_PagesAfterVisibility(t *testing.T) {
	e := newEnv(t)
	svc := NewEmployeeService(e.repo, e.guard, e.images, zap.NewNop())

	tests := []struct {
		name   string
		caller policy.Caller
		filter domain.EmployeeFilter
		want   []int64
	}{
		{"staff first page holds self", staff3, domain.EmployeeFilter{Limit: 1}, []int64{31}},
		{"team lead second page", teamLead3, domain.EmployeeFilter{Limit: 1, Offset: 1}, []int64{31}},
		{"team lead past the end", teamLead3, domain.EmployeeFilter{Limit: 5, Offset: 2}, []int64{}},
		{"hr pages the whole staff", hrCaller, domain.EmployeeFilter{Limit: 2, Offset: 1}, []int64{20, 30}},
		{"unit filter keeps visibility", deptHead2, domain.EmployeeFilter{UnitID: 3}, []int64{30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := svc.List(as(tt.caller), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, employeeIDs(list))
		})
	}
}

func TestEmployeeGet(t *testing.T) {
	e := newEnv(t)
	svc := NewEmployeeService(e.repo, e.guard, e.images, zap.NewNop())

	got, err := svc.Get(as(staff3), 31)
	require.NoError(t, err)
	assert.Equal(t, "Nhân viên BE", got.FullName)

	_, err = svc.Get(as(staff3), 41)
	requireReason(t, err, "không có quyền xem nhân viên")

	_, err = svc.Get(as(teamLead3), 31)
	require.NoError(t, err)

	_, err = svc.Get(as(hrCaller), 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEmployeeCreate(t *testing.T) {
	e := newEnv(t)
	svc := NewEmployeeService(e.repo, e.guard, e.images, zap.NewNop())

	err := svc.Create(as(staff3), &domain.Employee{FullName: "X", PositionID: 4, UnitID: 3}, nil)
	requireReason(t, err, "không có quyền chỉnh sửa nhân viên")

	err = svc.Create(as(hrCaller), &domain.Employee{FullName: "X", PositionID: 4, UnitID: 404}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.Create(as(hrCaller), &domain.Employee{FullName: "   ", PositionID: 4, UnitID: 3}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	emp := &domain.Employee{FullName: "Lê Văn C", PositionID: 4, UnitID: 3}
	initial := &domain.Salary{
		BaseAmount:    decimal.NewFromInt(8_000_000),
		Coefficient:   decimal.NewFromInt(1),
		Allowance:     decimal.Zero,
		EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, svc.Create(as(hrCaller), emp, initial))
	assert.NotZero(t, emp.ID)
	assert.Equal(t, emp.ID, initial.EmployeeID)

	salaries, err := e.repo.ListSalaries(as(hrCaller), emp.ID)
	require.NoError(t, err)
	assert.Len(t, salaries, 1)
}

func TestEmployeeDelete(t *testing.T) {
	e := newEnv(t)
	svc := NewEmployeeService(e.repo, e.guard, e.images, zap.NewNop())
	e.seedTodo(41, 20, "x")
	require.NoError(t, e.repo.SetEmployeeAvatar(as(hrCaller), 41, "2023/12/old.png"))

	assert.ErrorIs(t, svc.Delete(as(hrCaller), 40), domain.ErrInvalidInput, "нельзя удалить себя")
	assert.ErrorIs(t, svc.Delete(as(staff3), 41), domain.ErrForbidden)

	require.NoError(t, svc.Delete(as(hrCaller), 41))
	_, err := e.repo.GetEmployee(as(hrCaller), 41)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	todos, _ := e.repo.ListTodosByOwners(as(hrCaller), []int64{41})
	assert.Empty(t, todos)
	assert.Equal(t, []string{"2023/12/old.png"}, e.images.removed)
}

func TestEmployeeUploadAvatar(t *testing.T) {
	e := newEnv(t)
	svc := NewEmployeeService(e.repo, e.guard, e.images, zap.NewNop())

	path, err := svc.UploadAvatar(as(staff3), 31, []byte("img"))
	require.NoError(t, err)
	got, _ := e.repo.GetEmployee(as(staff3), 31)
	assert.Equal(t, path, got.AvatarPath)

	_, err = svc.UploadAvatar(as(staff3), 41, []byte("img"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Len(t, e.images.stored, 1)
}

func TestEmployeeExport(t *testing.T) {
	e := newEnv(t)
	svc := NewEmployeeService(e.repo, e.guard, e.images, zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, svc.Export(as(teamLead3), domain.EmployeeFilter{}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Nhân viên")
	require.NoError(t, err)
	require.Len(t, rows, 3) // заголовок + сам тимлид + его сотрудник
	assert.Equal(t, "Họ và tên", rows[0][1])
	assert.Equal(t, "Trưởng nhóm BE", rows[1][1])
	assert.Equal(t, "Trưởng nhóm", rows[1][6])
	assert.Equal(t, "Backend", rows[1][7])
}

func TestEmployeeExport_IgnoresPaging(t *testing.T) {
	e := newEnv(t)
	svc := NewEmployeeService(e.repo, e.guard, e.images, zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, svc.Export(as(hrCaller), domain.EmployeeFilter{Limit: 1, Offset: 3}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Nhân viên")
	require.NoError(t, err)
	assert.Len(t, rows, 1+len(testEmployees()))
}
