package domain

import "strings"

// PositionCode - закрытый перечень должностей. Свободный текст из БД приводится к нему через ParsePosition.
type PositionCode string

const (
	PositionUnknown          PositionCode = ""
	PositionDirector         PositionCode = "DIRECTOR"
	PositionDepartmentHead   PositionCode = "DEPARTMENT_HEAD"
	PositionTeamLead         PositionCode = "TEAM_LEAD"
	PositionStaff            PositionCode = "STAFF"
	PositionHR               PositionCode = "HR"
	PositionPayrollOfficer   PositionCode = "PAYROLL_OFFICER"
	PositionInsuranceOfficer PositionCode = "INSURANCE_OFFICER"
)

var positionLabels = map[PositionCode]string{
	PositionDirector:         "Giám đốc",
	PositionDepartmentHead:   "Trưởng phòng",
	PositionTeamLead:         "Trưởng nhóm",
	PositionStaff:            "Nhân viên",
	PositionHR:               "Nhân sự",
	PositionPayrollOfficer:   "Kế toán lương",
	PositionInsuranceOfficer: "Cán bộ bảo hiểm",
}

// ParsePosition принимает код или отображаемое название должности.
// Все, что не распознано, становится PositionUnknown.
func ParsePosition(s string) PositionCode {
	s = strings.TrimSpace(s)
	if s == "" {
		return PositionUnknown
	}
	code := PositionCode(strings.ToUpper(strings.ReplaceAll(s, " ", "_")))
	if _, ok := positionLabels[code]; ok {
		return code
	}
	for c, label := range positionLabels {
		if strings.EqualFold(label, s) {
			return c
		}
	}
	return PositionUnknown
}

func (p PositionCode) Valid() bool {
	_, ok := positionLabels[p]
	return ok
}

func (p PositionCode) Label() string {
	if l, ok := positionLabels[p]; ok {
		return l
	}
	return "?"
}

// AllPositions возвращает каталог в стабильном порядке (сверху вниз по иерархии).
func AllPositions() []PositionCode {
	return []PositionCode{
		PositionDirector,
		PositionDepartmentHead,
		PositionTeamLead,
		PositionStaff,
		PositionHR,
		PositionPayrollOfficer,
		PositionInsuranceOfficer,
	}
}

type Position struct {
	ID   int64        `json:"id"`
	Code PositionCode `json:"code"`
	Name string       `json:"name"`
}
