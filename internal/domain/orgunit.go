package domain

import "time"

type UnitKind string

const (
	UnitDepartment UnitKind = "department"
	UnitGroup      UnitKind = "group"
)

func (k UnitKind) Valid() bool {
	return k == UnitDepartment || k == UnitGroup
}

// OrgUnit - узел оргструктуры. Глубина дерева ровно 2: отделы (без родителя) и группы внутри отдела.
type OrgUnit struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Kind      UnitKind  `json:"kind"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u OrgUnit) IsDepartment() bool { return u.Kind == UnitDepartment }
func (u OrgUnit) IsGroup() bool      { return u.Kind == UnitGroup }
