package domain

import "time"

type Employee struct {
	ID         int64        `json:"id"`
	FullName   string       `json:"full_name"`
	Gender     string       `json:"gender,omitempty"`
	BirthDate  *time.Time   `json:"birth_date,omitempty"`
	Phone      string       `json:"phone,omitempty"`
	Email      string       `json:"email,omitempty"`
	Address    string       `json:"address,omitempty"`
	AvatarPath string       `json:"avatar_path,omitempty"`
	PositionID int64        `json:"position_id"`
	Position   PositionCode `json:"position"` // из справочника positions, только чтение
	UnitID     int64        `json:"unit_id"`
	HiredAt    *time.Time   `json:"hired_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// EmployeeRef - минимальный набор полей владельца записи для проверок доступа.
type EmployeeRef struct {
	ID       int64
	Position PositionCode
	UnitID   int64
}

func (e Employee) Ref() EmployeeRef {
	return EmployeeRef{ID: e.ID, Position: e.Position, UnitID: e.UnitID}
}

// EmployeeFilter - выборка сотрудников. Limit <= 0 означает без ограничения,
// IDs == nil - без ограничения по идентификаторам.
type EmployeeFilter struct {
	UnitID int64
	Query  string
	IDs    []int64
	Limit  int
	Offset int
}
