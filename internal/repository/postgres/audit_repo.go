package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/hr-console/internal/audit"
)

const auditFields = 10

// WriteBatch пишет пачку событий одним INSERT.
func (r *HRRepo) WriteBatch(ctx context.Context, events []audit.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}

	var sb strings.Builder
	vals := make([]any, 0, len(events)*auditFields)

	// плейсхолдеры строим динамически под размер пачки
	for i, e := range events {
		p := i * auditFields
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			p+1, p+2, p+3, p+4, p+5, p+6, p+7, p+8, p+9, p+10)

		vals = append(vals,
			e.ID, e.TraceID, e.UserID, e.EmployeeID, e.Action,
			e.Resource, e.ResourceID, e.Outcome, e.Reason, e.Timestamp,
		)
	}

	query := "INSERT INTO audit_logs (id, trace_id, user_id, employee_id, action, resource, resource_id, outcome, reason, timestamp) VALUES " + sb.String()
	if _, err := r.pool.Exec(ctx, query, vals...); err != nil {
		return mapErr("write audit batch", err)
	}
	return nil
}

// ListAudit возвращает журнал, новые события первыми.
func (r *HRRepo) ListAudit(ctx context.Context, f audit.Filter) ([]audit.AuditEvent, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, trace_id, user_id, employee_id, action, resource, resource_id, outcome, reason, timestamp
		FROM audit_logs
		WHERE ($1 = '' OR user_id = $1) AND ($2 = '' OR outcome = $2)
		ORDER BY timestamp DESC
		LIMIT $3 OFFSET $4`,
		f.UserID, f.Outcome, limit, f.Offset)
	if err != nil {
		return nil, mapErr("list audit", err)
	}
	defer rows.Close()

	out := make([]audit.AuditEvent, 0)
	for rows.Next() {
		var e audit.AuditEvent
		if err := rows.Scan(&e.ID, &e.TraceID, &e.UserID, &e.EmployeeID, &e.Action,
			&e.Resource, &e.ResourceID, &e.Outcome, &e.Reason, &e.Timestamp); err != nil {
			return nil, mapErr("scan audit", err)
		}
		out = append(out, e)
	}
	return out, mapErr("list audit", rows.Err())
}
