package domain

import "time"

type TodoStatus string

const (
	TodoPending    TodoStatus = "PENDING"
	TodoInProgress TodoStatus = "IN_PROGRESS"
	TodoDone       TodoStatus = "DONE"
)

func (s TodoStatus) Valid() bool {
	switch s {
	case TodoPending, TodoInProgress, TodoDone:
		return true
	}
	return false
}

// TodoItem принадлежит ровно одному сотруднику (исполнителю).
// IssuerID пуст, если задачу выдал администратор без карточки сотрудника.
type TodoItem struct {
	ID        int64      `json:"id"`
	OwnerID   int64      `json:"owner_id"`
	IssuerID  *int64     `json:"issuer_id,omitempty"`
	Title     string     `json:"title"`
	Content   string     `json:"content,omitempty"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Status    TodoStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
