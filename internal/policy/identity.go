package policy

import (
	"context"

	"github.com/xela07ax/hr-console/internal/domain"
)

// Caller - личность вызывающего, вычисленная один раз на запрос и переданная явно через контекст.
type Caller struct {
	UserID     string
	Role       domain.Role
	EmployeeID int64 // 0, если у учетной записи нет карточки сотрудника
	Position   domain.PositionCode
	UnitID     int64
}

func (c Caller) HasEmployee() bool { return c.EmployeeID != 0 }

// IsSuperAdmin - администратор системы. Приравнивается к директору только на директорском уровне проверок.
func (c Caller) IsSuperAdmin() bool { return c.Role == domain.RoleAdmin }

// Owner описывает сотрудника, которому принадлежит запись.
type Owner struct {
	EmployeeID int64
	Position   domain.PositionCode
	UnitID     int64
}

func OwnerOf(ref domain.EmployeeRef) Owner {
	return Owner{EmployeeID: ref.ID, Position: ref.Position, UnitID: ref.UnitID}
}

// Self возвращает Owner самого вызывающего.
func (c Caller) Self() Owner {
	return Owner{EmployeeID: c.EmployeeID, Position: c.Position, UnitID: c.UnitID}
}

type callerKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CurrentCaller достает личность из контекста. Без нее - domain.ErrUnauthenticated.
func CurrentCaller(ctx context.Context) (Caller, error) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	if !ok || c.UserID == "" {
		return Caller{}, domain.ErrUnauthenticated
	}
	return c, nil
}
