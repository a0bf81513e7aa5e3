package audit

import "time"

// Исходы, которые попадают в журнал.
const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailed  = "FAILED"
	OutcomeDenied  = "DENIED"
)

type AuditEvent struct {
	ID         string    `json:"id"`                    // UUID события
	TraceID    string    `json:"trace_id"`              // Сквозной ID запроса
	UserID     string    `json:"user_id"`               // Кто делал
	EmployeeID *int64    `json:"employee_id,omitempty"` // Карточка сотрудника вызывающего, если есть
	Action     string    `json:"action"`                // Что хотел сделать: "todo.create", "salary.write"
	Resource   string    `json:"resource"`              // Над чем
	ResourceID string    `json:"resource_id,omitempty"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"` // Текст отказа, как его увидел пользователь
	Timestamp  time.Time `json:"timestamp"`
}

// Filter - выборка журнала для экрана аудита.
type Filter struct {
	UserID  string
	Outcome string
	Limit   int
	Offset  int
}
