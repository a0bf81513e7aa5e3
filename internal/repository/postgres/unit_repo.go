package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/hr-console/internal/domain"
)

const unitColumns = `id, name, kind, parent_id, created_at, updated_at`

func scanUnit(row pgx.Row) (domain.OrgUnit, error) {
	var (
		u    domain.OrgUnit
		kind string
	)
	if err := row.Scan(&u.ID, &u.Name, &kind, &u.ParentID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.OrgUnit{}, err
	}
	u.Kind = domain.UnitKind(kind)
	return u, nil
}

// ListUnits выполняет "холодную загрузку" всей оргструктуры для кэша иерархии.
func (r *HRRepo) ListUnits(ctx context.Context) ([]domain.OrgUnit, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+unitColumns+` FROM org_units ORDER BY id`)
	if err != nil {
		return nil, mapErr("list units", err)
	}
	defer rows.Close()

	units := make([]domain.OrgUnit, 0)
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, mapErr("scan unit", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list units", err)
	}
	return units, nil
}

func (r *HRRepo) GetUnit(ctx context.Context, id int64) (*domain.OrgUnit, error) {
	u, err := scanUnit(r.pool.QueryRow(ctx, `SELECT `+unitColumns+` FROM org_units WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get unit", err)
	}
	return &u, nil
}

func (r *HRRepo) CreateUnit(ctx context.Context, u *domain.OrgUnit) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO org_units (name, kind, parent_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		u.Name, string(u.Kind), u.ParentID,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapErr("create unit", err)
}

func (r *HRRepo) UpdateUnit(ctx context.Context, u *domain.OrgUnit) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE org_units SET name = $1, kind = $2, parent_id = $3, updated_at = NOW()
		WHERE id = $4`,
		u.Name, string(u.Kind), u.ParentID, u.ID)
	return mustAffect("update unit", tag, err)
}

// DeleteUnit удаляет подразделение. Если в нем числятся сотрудники или группы,
// база вернет нарушение внешнего ключа.
func (r *HRRepo) DeleteUnit(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM org_units WHERE id = $1`, id)
	return mustAffect("delete unit", tag, err)
}

func (r *HRRepo) ListPositions(ctx context.Context) ([]domain.Position, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, name FROM positions ORDER BY id`)
	if err != nil {
		return nil, mapErr("list positions", err)
	}
	defer rows.Close()

	out := make([]domain.Position, 0)
	for rows.Next() {
		var (
			p    domain.Position
			code string
		)
		if err := rows.Scan(&p.ID, &code, &p.Name); err != nil {
			return nil, mapErr("scan position", err)
		}
		p.Code = domain.ParsePosition(code)
		out = append(out, p)
	}
	return out, mapErr("list positions", rows.Err())
}
