package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/hr-console/internal/domain"
)

const employeeSelect = `
	SELECT e.id, e.full_name, e.gender, e.birth_date, e.phone, e.email, e.address, e.avatar_path,
	       e.position_id, p.code, e.unit_id, e.hired_at, e.created_at, e.updated_at
	FROM employees e
	JOIN positions p ON p.id = e.position_id`

func scanEmployee(row pgx.Row) (domain.Employee, error) {
	var (
		e    domain.Employee
		code string
	)
	err := row.Scan(&e.ID, &e.FullName, &e.Gender, &e.BirthDate, &e.Phone, &e.Email, &e.Address,
		&e.AvatarPath, &e.PositionID, &code, &e.UnitID, &e.HiredAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.Employee{}, err
	}
	e.Position = domain.ParsePosition(code)
	return e, nil
}

func (r *HRRepo) ListEmployees(ctx context.Context, f domain.EmployeeFilter) ([]domain.Employee, error) {
	// LIMIT NULL в Postgres - без ограничения
	var limit *int
	if f.Limit > 0 {
		limit = &f.Limit
	}
	rows, err := r.pool.Query(ctx, employeeSelect+`
		WHERE ($1 = 0 OR e.unit_id = $1)
		  AND ($2 = '' OR e.full_name ILIKE '%' || $2 || '%' OR e.email ILIKE '%' || $2 || '%')
		  AND ($5::bigint[] IS NULL OR e.id = ANY($5))
		ORDER BY e.id
		LIMIT $3 OFFSET $4`,
		f.UnitID, f.Query, limit, f.Offset, f.IDs)
	if err != nil {
		return nil, mapErr("list employees", err)
	}
	defer rows.Close()

	out := make([]domain.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, mapErr("scan employee", err)
		}
		out = append(out, e)
	}
	return out, mapErr("list employees", rows.Err())
}

// ListEmployeeRefs - легкая выборка владельцев (id, должность, подразделение) для фильтра видимости.
func (r *HRRepo) ListEmployeeRefs(ctx context.Context) ([]domain.EmployeeRef, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id, p.code, e.unit_id
		FROM employees e
		JOIN positions p ON p.id = e.position_id
		ORDER BY e.id`)
	if err != nil {
		return nil, mapErr("list employee refs", err)
	}
	defer rows.Close()

	out := make([]domain.EmployeeRef, 0)
	for rows.Next() {
		var (
			ref  domain.EmployeeRef
			code string
		)
		if err := rows.Scan(&ref.ID, &code, &ref.UnitID); err != nil {
			return nil, mapErr("scan employee ref", err)
		}
		ref.Position = domain.ParsePosition(code)
		out = append(out, ref)
	}
	return out, mapErr("list employee refs", rows.Err())
}

func (r *HRRepo) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	e, err := scanEmployee(r.pool.QueryRow(ctx, employeeSelect+` WHERE e.id = $1`, id))
	if err != nil {
		return nil, mapErr("get employee", err)
	}
	return &e, nil
}

// CreateEmployee создает карточку и, если передан, стартовый оклад в одной транзакции.
func (r *HRRepo) CreateEmployee(ctx context.Context, e *domain.Employee, initial *domain.Salary) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO employees (full_name, gender, birth_date, phone, email, address, avatar_path, position_id, unit_id, hired_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at, updated_at`,
			e.FullName, e.Gender, e.BirthDate, e.Phone, e.Email, e.Address, e.AvatarPath,
			e.PositionID, e.UnitID, e.HiredAt,
		).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return mapErr("create employee", err)
		}
		if initial == nil {
			return nil
		}
		initial.EmployeeID = e.ID
		return insertSalary(ctx, tx, initial)
	})
}

func (r *HRRepo) UpdateEmployee(ctx context.Context, e *domain.Employee) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE employees
		SET full_name = $1, gender = $2, birth_date = $3, phone = $4, email = $5, address = $6,
		    position_id = $7, unit_id = $8, hired_at = $9, updated_at = NOW()
		WHERE id = $10`,
		e.FullName, e.Gender, e.BirthDate, e.Phone, e.Email, e.Address,
		e.PositionID, e.UnitID, e.HiredAt, e.ID)
	return mustAffect("update employee", tag, err)
}

func (r *HRRepo) SetEmployeeAvatar(ctx context.Context, id int64, path string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE employees SET avatar_path = $1, updated_at = NOW() WHERE id = $2`, path, id)
	return mustAffect("set avatar", tag, err)
}

// Порядок важен: сначала зависимые записи, потом сама карточка.
var employeeCascade = []string{
	`DELETE FROM todos WHERE owner_id = $1`,
	`UPDATE todos SET issuer_id = NULL WHERE issuer_id = $1`,
	`DELETE FROM contracts WHERE employee_id = $1`,
	`DELETE FROM salaries WHERE employee_id = $1`,
	`DELETE FROM insurances WHERE employee_id = $1`,
	`DELETE FROM relatives WHERE employee_id = $1`,
	`UPDATE users SET employee_id = NULL WHERE employee_id = $1`,
}

// DeleteEmployee удаляет сотрудника вместе со всеми зависимыми записями.
func (r *HRRepo) DeleteEmployee(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		for _, q := range employeeCascade {
			if _, err := tx.Exec(ctx, q, id); err != nil {
				return mapErr(fmt.Sprintf("delete employee %d cascade", id), err)
			}
		}
		tag, err := tx.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
		return mustAffect("delete employee", tag, err)
	})
}
