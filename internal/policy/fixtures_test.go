package policy

import "github.com/xela07ax/hr-console/internal/domain"

func ptr(v int64) *int64 { return &v }

// Отдел 2 с группами 3 и 4, отдел 5 с группой 9, группа 7 без корректного родителя.
func testUnits() []domain.OrgUnit {
	return []domain.OrgUnit{
		{ID: 2, Name: "Kỹ thuật", Kind: domain.UnitDepartment},
		{ID: 3, Name: "Backend", Kind: domain.UnitGroup, ParentID: ptr(2)},
		{ID: 4, Name: "Frontend", Kind: domain.UnitGroup, ParentID: ptr(2)},
		{ID: 5, Name: "Kinh doanh", Kind: domain.UnitDepartment},
		{ID: 9, Name: "Bán hàng", Kind: domain.UnitGroup, ParentID: ptr(5)},
		{ID: 7, Name: "Mồ côi", Kind: domain.UnitGroup, ParentID: ptr(3)},
	}
}

func testHierarchy() *Hierarchy {
	return NewHierarchy(testUnits())
}

var (
	director   = Caller{UserID: "u-dir", Role: domain.RoleUser, EmployeeID: 1, Position: domain.PositionDirector, UnitID: 2}
	superAdmin = Caller{UserID: "u-admin", Role: domain.RoleAdmin}
	deptHead2  = Caller{UserID: "u-dh2", Role: domain.RoleUser, EmployeeID: 20, Position: domain.PositionDepartmentHead, UnitID: 2}
	teamLead3  = Caller{UserID: "u-tl3", Role: domain.RoleUser, EmployeeID: 30, Position: domain.PositionTeamLead, UnitID: 3}
	staff3     = Caller{UserID: "u-st3", Role: domain.RoleUser, EmployeeID: 31, Position: domain.PositionStaff, UnitID: 3}
	hrCaller   = Caller{UserID: "u-hr", Role: domain.RoleHR, EmployeeID: 40, Position: domain.PositionHR, UnitID: 2}

	ownerDeptHead2 = Owner{EmployeeID: 20, Position: domain.PositionDepartmentHead, UnitID: 2}
	ownerDeptHead5 = Owner{EmployeeID: 50, Position: domain.PositionDepartmentHead, UnitID: 5}
	ownerTeamLead3 = Owner{EmployeeID: 30, Position: domain.PositionTeamLead, UnitID: 3}
	ownerTeamLead9 = Owner{EmployeeID: 90, Position: domain.PositionTeamLead, UnitID: 9}
	ownerStaff3    = Owner{EmployeeID: 31, Position: domain.PositionStaff, UnitID: 3}
	ownerStaff4    = Owner{EmployeeID: 41, Position: domain.PositionStaff, UnitID: 4}
)
