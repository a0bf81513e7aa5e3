package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/hr-console/internal/audit"
	"github.com/xela07ax/hr-console/internal/domain"
)

func newMockRepo(t *testing.T) (*HRRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewHRRepo(mock), mock
}

func i64(v int64) *int64 { return &v }

func TestListUnits(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM org_units ORDER BY id`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "kind", "parent_id", "created_at", "updated_at"}).
			AddRow(int64(2), "Phòng Kỹ thuật", "department", nil, now, now).
			AddRow(int64(3), "Nhóm Backend", "group", i64(2), now, now))

	units, err := repo.ListUnits(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, domain.UnitDepartment, units[0].Kind)
	assert.Nil(t, units[0].ParentID)
	assert.Equal(t, domain.UnitGroup, units[1].Kind)
	require.NotNil(t, units[1].ParentID)
	assert.Equal(t, int64(2), *units[1].ParentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEmployee_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM employees e`).
		WithArgs(int64(42)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetEmployee(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEmployee_ParsesPosition(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`FROM employees e`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "full_name", "gender", "birth_date", "phone", "email", "address", "avatar_path",
			"position_id", "code", "unit_id", "hired_at", "created_at", "updated_at",
		}).AddRow(int64(7), "Nguyễn Văn A", "male", nil, "", "a@example.com", "", "",
			int64(3), "TEAM_LEAD", int64(3), nil, now, now))

	e, err := repo.GetEmployee(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.PositionTeamLead, e.Position)
	assert.Equal(t, domain.EmployeeRef{ID: 7, Position: domain.PositionTeamLead, UnitID: 3}, e.Ref())
}

func TestListEmployees_RestrictsToIDsWithoutLimit(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`e.id = ANY\(\$5\)`).
		WithArgs(int64(0), "", pgxmock.AnyArg(), 0, []int64{30, 31}).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "full_name", "gender", "birth_date", "phone", "email", "address", "avatar_path",
			"position_id", "code", "unit_id", "hired_at", "created_at", "updated_at",
		}).
			AddRow(int64(30), "Trưởng nhóm", "male", nil, "", "", "", "", int64(3), "TEAM_LEAD", int64(3), nil, now, now).
			AddRow(int64(31), "Nhân viên", "female", nil, "", "", "", "", int64(4), "STAFF", int64(3), nil, now, now))

	list, err := repo.ListEmployees(context.Background(), domain.EmployeeFilter{IDs: []int64{30, 31}})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.PositionStaff, list[1].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEmployee_WithInitialSalary(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO employees`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))
	mock.ExpectQuery(`INSERT INTO salaries`).
		WithArgs(int64(11), "10000000", "1.5", "500000", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), now))
	mock.ExpectCommit()

	e := &domain.Employee{FullName: "Trần Thị B", PositionID: 4, UnitID: 3}
	s := &domain.Salary{
		BaseAmount:    decimal.NewFromInt(10_000_000),
		Coefficient:   decimal.RequireFromString("1.5"),
		Allowance:     decimal.NewFromInt(500_000),
		EffectiveFrom: now,
	}
	require.NoError(t, repo.CreateEmployee(context.Background(), e, s))
	assert.Equal(t, int64(11), e.ID)
	assert.Equal(t, int64(11), s.EmployeeID)
	assert.Equal(t, int64(5), s.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEmployee_DuplicateEmailRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO employees`).WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})
	mock.ExpectRollback()

	err := repo.CreateEmployee(context.Background(), &domain.Employee{FullName: "X"}, nil)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEmployee_Cascades(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	for range employeeCascade {
		mock.ExpectExec(`.+`).WithArgs(int64(9)).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	}
	mock.ExpectExec(`DELETE FROM employees WHERE id`).WithArgs(int64(9)).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteEmployee(context.Background(), 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEmployee_Missing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	for range employeeCascade {
		mock.ExpectExec(`.+`).WithArgs(int64(9)).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	}
	mock.ExpectExec(`DELETE FROM employees WHERE id`).WithArgs(int64(9)).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.DeleteEmployee(context.Background(), 9), domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTodosByOwners(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	t.Run("empty owners skip the query", func(t *testing.T) {
		todos, err := repo.ListTodosByOwners(context.Background(), nil)
		require.NoError(t, err)
		assert.NotNil(t, todos)
		assert.Empty(t, todos)
	})

	mock.ExpectQuery(`FROM todos WHERE owner_id = ANY\(\$1\) ORDER BY array_position\(\$1, owner_id\), id`).
		WithArgs([]int64{3, 4}).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "owner_id", "issuer_id", "title", "content", "deadline", "status", "created_at", "updated_at",
		}).
			AddRow(int64(1), int64(3), i64(2), "Báo cáo", "", nil, "PENDING", now, now).
			AddRow(int64(2), int64(4), nil, "Họp", "", nil, "DONE", now, now))

	todos, err := repo.ListTodosByOwners(context.Background(), []int64{3, 4})
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, domain.TodoPending, todos[0].Status)
	require.NotNil(t, todos[0].IssuerID)
	assert.Equal(t, int64(2), *todos[0].IssuerID)
	assert.Nil(t, todos[1].IssuerID)
	assert.Equal(t, domain.TodoDone, todos[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTodo_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE todos`).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateTodo(context.Background(), &domain.TodoItem{ID: 100, Title: "x", Status: domain.TodoDone})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListSalaries_ParsesNumeric(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`FROM salaries WHERE employee_id`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "employee_id", "base_amount", "coefficient", "allowance", "effective_from", "created_at"}).
			AddRow(int64(1), int64(5), "12000000.00", "1.2500", "300000.00", now, now))

	list, err := repo.ListSalaries(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "15300000", list[0].Net().String())
}

func TestGetUserByUsername(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`FROM users WHERE username`).
		WithArgs("hr1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "role", "employee_id", "created_at", "updated_at"}).
			AddRow("u-1", "hr1", "$2a$hash", "hr", i64(12), now, now))

	u, err := repo.GetUserByUsername(context.Background(), "hr1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleHR, u.Role)
	require.NotNil(t, u.EmployeeID)
	assert.Equal(t, int64(12), *u.EmployeeID)

	mock.ExpectQuery(`FROM users WHERE username`).WithArgs("ghost").WillReturnError(pgx.ErrNoRows)
	_, err = repo.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWriteBatch_BuildsPlaceholders(t *testing.T) {
	repo, mock := newMockRepo(t)
	ts := time.Now()

	events := []audit.AuditEvent{
		{ID: "a", UserID: "u1", Action: "todo.create", Outcome: audit.OutcomeDenied, Reason: "r", Timestamp: ts},
		{ID: "b", UserID: "u2", Action: "salary.write", Outcome: audit.OutcomeSuccess, Timestamp: ts},
	}
	mock.ExpectExec(`INSERT INTO audit_logs .+ VALUES \(\$1, .+\$10\),\(\$11, .+\$20\)`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	require.NoError(t, repo.WriteBatch(context.Background(), events))
	require.NoError(t, repo.WriteBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
