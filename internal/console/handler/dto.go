package handler

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/xela07ax/hr-console/internal/domain"
)

// Даты приходят строками YYYY-MM-DD и проверяются тегом datetime.

type employeeRequest struct {
	FullName      string         `json:"full_name" validate:"required,max=200"`
	Gender        string         `json:"gender" validate:"omitempty,oneof=male female other"`
	BirthDate     string         `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Phone         string         `json:"phone" validate:"omitempty,max=20"`
	Email         string         `json:"email" validate:"omitempty,email"`
	Address       string         `json:"address" validate:"max=500"`
	PositionID    int64          `json:"position_id" validate:"required,gt=0"`
	UnitID        int64          `json:"unit_id" validate:"required,gt=0"`
	HiredAt       string         `json:"hired_at" validate:"omitempty,datetime=2006-01-02"`
	InitialSalary *salaryRequest `json:"initial_salary,omitempty" validate:"omitempty"`
}

func (r employeeRequest) toDomain(id int64) *domain.Employee {
	return &domain.Employee{
		ID:         id,
		FullName:   r.FullName,
		Gender:     r.Gender,
		BirthDate:  parseDate(r.BirthDate),
		Phone:      r.Phone,
		Email:      r.Email,
		Address:    r.Address,
		PositionID: r.PositionID,
		UnitID:     r.UnitID,
		HiredAt:    parseDate(r.HiredAt),
	}
}

type salaryRequest struct {
	BaseAmount    decimal.Decimal `json:"base_amount"`
	Coefficient   decimal.Decimal `json:"coefficient"`
	Allowance     decimal.Decimal `json:"allowance"`
	EffectiveFrom string          `json:"effective_from" validate:"required,datetime=2006-01-02"`
}

func (r salaryRequest) toDomain(id, employeeID int64) *domain.Salary {
	coef := r.Coefficient
	if coef.IsZero() {
		coef = decimal.NewFromInt(1)
	}
	return &domain.Salary{
		ID:            id,
		EmployeeID:    employeeID,
		BaseAmount:    r.BaseAmount,
		Coefficient:   coef,
		Allowance:     r.Allowance,
		EffectiveFrom: mustDate(r.EffectiveFrom),
	}
}

// salaryResponse добавляет к окладу итоговую сумму.
type salaryResponse struct {
	domain.Salary
	Net decimal.Decimal `json:"net"`
}

func salaryResponses(list []domain.Salary) []salaryResponse {
	out := make([]salaryResponse, 0, len(list))
	for _, s := range list {
		out = append(out, salaryResponse{Salary: s, Net: s.Net()})
	}
	return out
}

type contractRequest struct {
	Number    string `json:"number" validate:"required,max=64"`
	Kind      string `json:"kind" validate:"required,max=64"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r contractRequest) toDomain(id, employeeID int64) *domain.Contract {
	return &domain.Contract{
		ID:         id,
		EmployeeID: employeeID,
		Number:     r.Number,
		Kind:       r.Kind,
		StartDate:  mustDate(r.StartDate),
		EndDate:    parseDate(r.EndDate),
	}
}

type insuranceRequest struct {
	Number     string `json:"number" validate:"required,max=64"`
	Kind       string `json:"kind" validate:"required,oneof=social health unemployment"`
	IssuedAt   string `json:"issued_at" validate:"required,datetime=2006-01-02"`
	ExpiresAt  string `json:"expires_at" validate:"omitempty,datetime=2006-01-02"`
	IssuePlace string `json:"issue_place" validate:"max=200"`
}

func (r insuranceRequest) toDomain(id, employeeID int64) *domain.Insurance {
	return &domain.Insurance{
		ID:         id,
		EmployeeID: employeeID,
		Number:     r.Number,
		Kind:       domain.InsuranceKind(r.Kind),
		IssuedAt:   mustDate(r.IssuedAt),
		ExpiresAt:  parseDate(r.ExpiresAt),
		IssuePlace: r.IssuePlace,
	}
}

type relativeRequest struct {
	FullName     string `json:"full_name" validate:"required,max=200"`
	Relationship string `json:"relationship" validate:"required,max=64"`
	BirthDate    string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Phone        string `json:"phone" validate:"omitempty,max=20"`
}

func (r relativeRequest) toDomain(id, employeeID int64) *domain.Relative {
	return &domain.Relative{
		ID:           id,
		EmployeeID:   employeeID,
		FullName:     r.FullName,
		Relationship: r.Relationship,
		BirthDate:    parseDate(r.BirthDate),
		Phone:        r.Phone,
	}
}

type unitRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Kind     string `json:"kind" validate:"required,oneof=department group"`
	ParentID *int64 `json:"parent_id" validate:"omitempty,gt=0"`
}

func (r unitRequest) toDomain(id int64) *domain.OrgUnit {
	return &domain.OrgUnit{ID: id, Name: r.Name, Kind: domain.UnitKind(r.Kind), ParentID: r.ParentID}
}

type todoCreateRequest struct {
	OwnerID  int64      `json:"owner_id" validate:"required,gt=0"`
	Title    string     `json:"title" validate:"required,max=255"`
	Content  string     `json:"content" validate:"max=4000"`
	Deadline *time.Time `json:"deadline"`
}

type todoPatchRequest struct {
	Title    *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Content  *string    `json:"content" validate:"omitempty,max=4000"`
	Deadline *time.Time `json:"deadline"`
	Status   *string    `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS DONE"`
}

type notificationRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=4000"`
}

type uploadResponse struct {
	Path string `json:"path"`
}
