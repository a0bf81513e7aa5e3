package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/hr-console/internal/domain"
)

const todoColumns = `id, owner_id, issuer_id, title, content, deadline, status, created_at, updated_at`

func scanTodo(row pgx.Row) (domain.TodoItem, error) {
	var (
		t      domain.TodoItem
		status string
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.IssuerID, &t.Title, &t.Content, &t.Deadline,
		&status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.TodoItem{}, err
	}
	t.Status = domain.TodoStatus(status)
	return t, nil
}

// ListTodosByOwners возвращает задачи указанных исполнителей в порядке списка владельцев.
// Пустой список владельцев дает пустой результат.
func (r *HRRepo) ListTodosByOwners(ctx context.Context, ownerIDs []int64) ([]domain.TodoItem, error) {
	out := make([]domain.TodoItem, 0)
	if len(ownerIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+todoColumns+` FROM todos WHERE owner_id = ANY($1) ORDER BY array_position($1, owner_id), id`, ownerIDs)
	if err != nil {
		return nil, mapErr("list todos", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, mapErr("scan todo", err)
		}
		out = append(out, t)
	}
	return out, mapErr("list todos", rows.Err())
}

func (r *HRRepo) GetTodo(ctx context.Context, id int64) (*domain.TodoItem, error) {
	t, err := scanTodo(r.pool.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get todo", err)
	}
	return &t, nil
}

func (r *HRRepo) CreateTodo(ctx context.Context, t *domain.TodoItem) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO todos (owner_id, issuer_id, title, content, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		t.OwnerID, t.IssuerID, t.Title, t.Content, t.Deadline, string(t.Status),
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return mapErr("create todo", err)
}

func (r *HRRepo) UpdateTodo(ctx context.Context, t *domain.TodoItem) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE todos SET title = $1, content = $2, deadline = $3, status = $4, updated_at = NOW()
		WHERE id = $5`,
		t.Title, t.Content, t.Deadline, string(t.Status), t.ID)
	return mustAffect("update todo", tag, err)
}

func (r *HRRepo) DeleteTodo(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	return mustAffect("delete todo", tag, err)
}
