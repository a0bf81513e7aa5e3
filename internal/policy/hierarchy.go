package policy

import (
	"fmt"
	"sort"

	"github.com/xela07ax/hr-console/internal/domain"
)

// OrgHierarchy - чтение оргструктуры, нужное движку правил.
type OrgHierarchy interface {
	ChildGroups(departmentID int64) (map[int64]struct{}, error)
	ParentDepartment(groupID int64) (int64, bool, error)
}

// Hierarchy - неизменяемый снимок оргструктуры. Строится целиком и больше не меняется,
// поэтому безопасен для конкурентного чтения без блокировок.
type Hierarchy struct {
	units    map[int64]domain.OrgUnit
	children map[int64][]int64
}

// NewHierarchy строит снимок из плоского списка подразделений.
// Связи, нарушающие правило "группа внутри отдела", в снимок не попадают.
func NewHierarchy(units []domain.OrgUnit) *Hierarchy {
	h := &Hierarchy{
		units:    make(map[int64]domain.OrgUnit, len(units)),
		children: make(map[int64][]int64),
	}
	for _, u := range units {
		h.units[u.ID] = u
	}
	for _, u := range units {
		if !u.IsGroup() || u.ParentID == nil {
			continue
		}
		parent, ok := h.units[*u.ParentID]
		if !ok || !parent.IsDepartment() {
			continue
		}
		h.children[parent.ID] = append(h.children[parent.ID], u.ID)
	}
	for id := range h.children {
		sort.Slice(h.children[id], func(i, j int) bool { return h.children[id][i] < h.children[id][j] })
	}
	return h
}

func (h *Hierarchy) Len() int { return len(h.units) }

func (h *Hierarchy) Unit(id int64) (domain.OrgUnit, error) {
	u, ok := h.units[id]
	if !ok {
		return domain.OrgUnit{}, fmt.Errorf("unit %d: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

// Units возвращает все подразделения, отсортированные по ID.
func (h *Hierarchy) Units() []domain.OrgUnit {
	out := make([]domain.OrgUnit, 0, len(h.units))
	for _, u := range h.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ChildGroups - группы внутри отдела. Для группы множество пустое.
func (h *Hierarchy) ChildGroups(departmentID int64) (map[int64]struct{}, error) {
	if _, err := h.Unit(departmentID); err != nil {
		return nil, err
	}
	set := make(map[int64]struct{}, len(h.children[departmentID]))
	for _, id := range h.children[departmentID] {
		set[id] = struct{}{}
	}
	return set, nil
}

// ParentDepartment - отдел, в который входит группа. ok=false для отдела
// и для группы с некорректным родителем: результат всегда либо отдел, либо ничего.
func (h *Hierarchy) ParentDepartment(groupID int64) (int64, bool, error) {
	u, err := h.Unit(groupID)
	if err != nil {
		return 0, false, err
	}
	if !u.IsGroup() || u.ParentID == nil {
		return 0, false, nil
	}
	parent, ok := h.units[*u.ParentID]
	if !ok || !parent.IsDepartment() {
		return 0, false, nil
	}
	return parent.ID, true, nil
}

// ValidateUnit проверяет, что подразделение можно записать в текущую структуру, не нарушив глубину 2.
func (h *Hierarchy) ValidateUnit(u domain.OrgUnit) error {
	if !u.Kind.Valid() {
		return fmt.Errorf("unknown unit kind %q: %w", u.Kind, domain.ErrInvalidInput)
	}
	switch u.Kind {
	case domain.UnitDepartment:
		if u.ParentID != nil {
			return fmt.Errorf("department cannot have a parent: %w", domain.ErrInvalidInput)
		}
	case domain.UnitGroup:
		if u.ParentID == nil {
			return fmt.Errorf("group must belong to a department: %w", domain.ErrInvalidInput)
		}
		parent, err := h.Unit(*u.ParentID)
		if err != nil {
			return err
		}
		if !parent.IsDepartment() {
			return fmt.Errorf("parent %d is not a department: %w", parent.ID, domain.ErrInvalidInput)
		}
	}
	// отдел с группами нельзя превратить в группу
	if existing, ok := h.units[u.ID]; ok && existing.IsDepartment() && u.IsGroup() && len(h.children[u.ID]) > 0 {
		return fmt.Errorf("department %d still has groups: %w", u.ID, domain.ErrInvalidInput)
	}
	return nil
}
