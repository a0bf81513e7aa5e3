package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/xela07ax/hr-console/internal/domain"
)

// Записи сотрудника: договоры, оклады, страховки, родственники.

// --- contracts ---

const contractColumns = `id, employee_id, number, kind, start_date, end_date, image_path, created_at`

func scanContract(row pgx.Row) (domain.Contract, error) {
	var c domain.Contract
	err := row.Scan(&c.ID, &c.EmployeeID, &c.Number, &c.Kind, &c.StartDate, &c.EndDate, &c.ImagePath, &c.CreatedAt)
	return c, err
}

func (r *HRRepo) ListContracts(ctx context.Context, employeeID int64) ([]domain.Contract, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+contractColumns+` FROM contracts WHERE employee_id = $1 ORDER BY start_date DESC, id DESC`, employeeID)
	if err != nil {
		return nil, mapErr("list contracts", err)
	}
	defer rows.Close()

	out := make([]domain.Contract, 0)
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, mapErr("scan contract", err)
		}
		out = append(out, c)
	}
	return out, mapErr("list contracts", rows.Err())
}

func (r *HRRepo) GetContract(ctx context.Context, id int64) (*domain.Contract, error) {
	c, err := scanContract(r.pool.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get contract", err)
	}
	return &c, nil
}

func (r *HRRepo) CreateContract(ctx context.Context, c *domain.Contract) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO contracts (employee_id, number, kind, start_date, end_date, image_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		c.EmployeeID, c.Number, c.Kind, c.StartDate, c.EndDate, c.ImagePath,
	).Scan(&c.ID, &c.CreatedAt)
	return mapErr("create contract", err)
}

func (r *HRRepo) UpdateContract(ctx context.Context, c *domain.Contract) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contracts SET number = $1, kind = $2, start_date = $3, end_date = $4, image_path = $5
		WHERE id = $6`,
		c.Number, c.Kind, c.StartDate, c.EndDate, c.ImagePath, c.ID)
	return mustAffect("update contract", tag, err)
}

func (r *HRRepo) DeleteContract(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	return mustAffect("delete contract", tag, err)
}

// --- salaries ---

// numeric читаем текстом: так decimal не теряет точность ни на одном драйвере.
const salaryColumns = `id, employee_id, base_amount::text, coefficient::text, allowance::text, effective_from, created_at`

func scanSalary(row pgx.Row) (domain.Salary, error) {
	var (
		s                  domain.Salary
		base, coef, allow string
	)
	if err := row.Scan(&s.ID, &s.EmployeeID, &base, &coef, &allow, &s.EffectiveFrom, &s.CreatedAt); err != nil {
		return domain.Salary{}, err
	}
	var err error
	if s.BaseAmount, err = decimal.NewFromString(base); err != nil {
		return domain.Salary{}, fmt.Errorf("base_amount %q: %w", base, err)
	}
	if s.Coefficient, err = decimal.NewFromString(coef); err != nil {
		return domain.Salary{}, fmt.Errorf("coefficient %q: %w", coef, err)
	}
	if s.Allowance, err = decimal.NewFromString(allow); err != nil {
		return domain.Salary{}, fmt.Errorf("allowance %q: %w", allow, err)
	}
	return s, nil
}

func insertSalary(ctx context.Context, q querier, s *domain.Salary) error {
	err := q.QueryRow(ctx, `
		INSERT INTO salaries (employee_id, base_amount, coefficient, allowance, effective_from)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		s.EmployeeID, s.BaseAmount.String(), s.Coefficient.String(), s.Allowance.String(), s.EffectiveFrom,
	).Scan(&s.ID, &s.CreatedAt)
	return mapErr("create salary", err)
}

func (r *HRRepo) ListSalaries(ctx context.Context, employeeID int64) ([]domain.Salary, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+salaryColumns+` FROM salaries WHERE employee_id = $1 ORDER BY effective_from DESC, id DESC`, employeeID)
	if err != nil {
		return nil, mapErr("list salaries", err)
	}
	defer rows.Close()

	out := make([]domain.Salary, 0)
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, mapErr("scan salary", err)
		}
		out = append(out, s)
	}
	return out, mapErr("list salaries", rows.Err())
}

func (r *HRRepo) GetSalary(ctx context.Context, id int64) (*domain.Salary, error) {
	s, err := scanSalary(r.pool.QueryRow(ctx, `SELECT `+salaryColumns+` FROM salaries WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get salary", err)
	}
	return &s, nil
}

func (r *HRRepo) CreateSalary(ctx context.Context, s *domain.Salary) error {
	return insertSalary(ctx, r.pool, s)
}

func (r *HRRepo) UpdateSalary(ctx context.Context, s *domain.Salary) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE salaries SET base_amount = $1, coefficient = $2, allowance = $3, effective_from = $4
		WHERE id = $5`,
		s.BaseAmount.String(), s.Coefficient.String(), s.Allowance.String(), s.EffectiveFrom, s.ID)
	return mustAffect("update salary", tag, err)
}

func (r *HRRepo) DeleteSalary(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM salaries WHERE id = $1`, id)
	return mustAffect("delete salary", tag, err)
}

// --- insurances ---

const insuranceColumns = `id, employee_id, number, kind, issued_at, expires_at, issue_place, created_at`

func scanInsurance(row pgx.Row) (domain.Insurance, error) {
	var (
		in   domain.Insurance
		kind string
	)
	if err := row.Scan(&in.ID, &in.EmployeeID, &in.Number, &kind, &in.IssuedAt, &in.ExpiresAt, &in.IssuePlace, &in.CreatedAt); err != nil {
		return domain.Insurance{}, err
	}
	in.Kind = domain.InsuranceKind(kind)
	return in, nil
}

func (r *HRRepo) ListInsurances(ctx context.Context, employeeID int64) ([]domain.Insurance, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+insuranceColumns+` FROM insurances WHERE employee_id = $1 ORDER BY issued_at DESC, id DESC`, employeeID)
	if err != nil {
		return nil, mapErr("list insurances", err)
	}
	defer rows.Close()

	out := make([]domain.Insurance, 0)
	for rows.Next() {
		in, err := scanInsurance(rows)
		if err != nil {
			return nil, mapErr("scan insurance", err)
		}
		out = append(out, in)
	}
	return out, mapErr("list insurances", rows.Err())
}

func (r *HRRepo) GetInsurance(ctx context.Context, id int64) (*domain.Insurance, error) {
	in, err := scanInsurance(r.pool.QueryRow(ctx, `SELECT `+insuranceColumns+` FROM insurances WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get insurance", err)
	}
	return &in, nil
}

func (r *HRRepo) CreateInsurance(ctx context.Context, in *domain.Insurance) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO insurances (employee_id, number, kind, issued_at, expires_at, issue_place)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		in.EmployeeID, in.Number, string(in.Kind), in.IssuedAt, in.ExpiresAt, in.IssuePlace,
	).Scan(&in.ID, &in.CreatedAt)
	return mapErr("create insurance", err)
}

func (r *HRRepo) UpdateInsurance(ctx context.Context, in *domain.Insurance) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE insurances SET number = $1, kind = $2, issued_at = $3, expires_at = $4, issue_place = $5
		WHERE id = $6`,
		in.Number, string(in.Kind), in.IssuedAt, in.ExpiresAt, in.IssuePlace, in.ID)
	return mustAffect("update insurance", tag, err)
}

func (r *HRRepo) DeleteInsurance(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM insurances WHERE id = $1`, id)
	return mustAffect("delete insurance", tag, err)
}

// --- relatives ---

const relativeColumns = `id, employee_id, full_name, relationship, birth_date, phone, created_at`

func scanRelative(row pgx.Row) (domain.Relative, error) {
	var rel domain.Relative
	err := row.Scan(&rel.ID, &rel.EmployeeID, &rel.FullName, &rel.Relationship, &rel.BirthDate, &rel.Phone, &rel.CreatedAt)
	return rel, err
}

func (r *HRRepo) ListRelatives(ctx context.Context, employeeID int64) ([]domain.Relative, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+relativeColumns+` FROM relatives WHERE employee_id = $1 ORDER BY id`, employeeID)
	if err != nil {
		return nil, mapErr("list relatives", err)
	}
	defer rows.Close()

	out := make([]domain.Relative, 0)
	for rows.Next() {
		rel, err := scanRelative(rows)
		if err != nil {
			return nil, mapErr("scan relative", err)
		}
		out = append(out, rel)
	}
	return out, mapErr("list relatives", rows.Err())
}

func (r *HRRepo) GetRelative(ctx context.Context, id int64) (*domain.Relative, error) {
	rel, err := scanRelative(r.pool.QueryRow(ctx, `SELECT `+relativeColumns+` FROM relatives WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get relative", err)
	}
	return &rel, nil
}

func (r *HRRepo) CreateRelative(ctx context.Context, rel *domain.Relative) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO relatives (employee_id, full_name, relationship, birth_date, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		rel.EmployeeID, rel.FullName, rel.Relationship, rel.BirthDate, rel.Phone,
	).Scan(&rel.ID, &rel.CreatedAt)
	return mapErr("create relative", err)
}

func (r *HRRepo) UpdateRelative(ctx context.Context, rel *domain.Relative) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE relatives SET full_name = $1, relationship = $2, birth_date = $3, phone = $4
		WHERE id = $5`,
		rel.FullName, rel.Relationship, rel.BirthDate, rel.Phone, rel.ID)
	return mustAffect("update relative", tag, err)
}

func (r *HRRepo) DeleteRelative(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM relatives WHERE id = $1`, id)
	return mustAffect("delete relative", tag, err)
}
