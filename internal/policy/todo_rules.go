package policy

import (
	"fmt"

	"github.com/xela07ax/hr-console/internal/domain"
)

type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// Причины отказа показываются в интерфейсе без изменений, у каждой ветки своя.
const (
	ReasonDirectorTarget = "Giám đốc chỉ có thể giao việc cho Trưởng phòng"
	ReasonDeptHeadTarget = "Trưởng phòng chỉ có thể giao việc cho Trưởng nhóm"
	ReasonDeptHeadScope  = "chỉ có thể giao việc cho Trưởng nhóm trong phòng ban của bạn"
	ReasonTeamLeadTarget = "Trưởng nhóm chỉ có thể giao việc cho Nhân viên"
	ReasonTeamLeadScope  = "chỉ có thể giao việc cho Nhân viên trong nhóm của bạn"
	ReasonSelfOnly       = "bạn chỉ có thể thao tác trên công việc của chính mình"
	ReasonUpdateOwnOnly  = "bạn chỉ có thể cập nhật công việc của chính mình"
)

// CanAccessTodo - булева форма AuthorizeTodo. Любая ошибка, включая NotFound, означает отказ.
func CanAccessTodo(h OrgHierarchy, caller Caller, owner Owner, action Action) bool {
	return AuthorizeTodo(h, caller, owner, action) == nil
}

// AuthorizeTodo решает, может ли caller выполнить action над задачами сотрудника owner.
//
// Таблица (первое совпадение по должности вызывающего):
//
//	Director / super-admin -> DepartmentHead любого отдела
//	DepartmentHead         -> TeamLead групп своего отдела
//	TeamLead               -> Staff своей группы
//	остальные              -> только свои записи
//
// view: таблица или собственные записи.
// create: только таблица.
// update: только собственные записи, плюс Director/admin над задачами DepartmentHead.
// Асимметрия create/update сохранена намеренно и закреплена тестами.
func AuthorizeTodo(h OrgHierarchy, caller Caller, owner Owner, action Action) error {
	switch action {
	case ActionView:
		if isSelf(caller, owner) {
			return nil
		}
		return checkAssignment(h, caller, owner)
	case ActionCreate:
		return checkAssignment(h, caller, owner)
	case ActionUpdate:
		if isSelf(caller, owner) {
			return nil
		}
		if isDirectorLevel(caller) && owner.Position == domain.PositionDepartmentHead {
			return nil
		}
		return domain.Deny(ReasonUpdateOwnOnly)
	default:
		return fmt.Errorf("unsupported todo action %q: %w", action, domain.ErrInvalidInput)
	}
}

func isSelf(caller Caller, owner Owner) bool {
	return caller.HasEmployee() && caller.EmployeeID == owner.EmployeeID
}

func isDirectorLevel(caller Caller) bool {
	return caller.Position == domain.PositionDirector || caller.IsSuperAdmin()
}

func checkAssignment(h OrgHierarchy, caller Caller, owner Owner) error {
	switch {
	case isDirectorLevel(caller):
		if owner.Position != domain.PositionDepartmentHead {
			return domain.Deny(ReasonDirectorTarget)
		}
		return nil

	case caller.Position == domain.PositionDepartmentHead:
		if owner.Position != domain.PositionTeamLead {
			return domain.Deny(ReasonDeptHeadTarget)
		}
		if !caller.HasEmployee() || caller.UnitID == 0 {
			return domain.Deny(ReasonDeptHeadScope)
		}
		parent, ok, err := h.ParentDepartment(owner.UnitID)
		if err != nil {
			return err
		}
		if !ok || parent != caller.UnitID {
			return domain.Deny(ReasonDeptHeadScope)
		}
		return nil

	case caller.Position == domain.PositionTeamLead:
		if owner.Position != domain.PositionStaff {
			return domain.Deny(ReasonTeamLeadTarget)
		}
		if !caller.HasEmployee() || caller.UnitID == 0 || owner.UnitID != caller.UnitID {
			return domain.Deny(ReasonTeamLeadScope)
		}
		return nil

	default:
		if isSelf(caller, owner) {
			return nil
		}
		return domain.Deny(ReasonSelfOnly)
	}
}
