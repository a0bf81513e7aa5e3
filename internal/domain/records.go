package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Записи, привязанные к сотруднику. Удаляются каскадом вместе с ним.

type Contract struct {
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employee_id"`
	Number     string     `json:"number"`
	Kind       string     `json:"kind"` // срочный, бессрочный, испытательный и т.д.
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	ImagePath  string     `json:"image_path,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Salary struct {
	ID            int64           `json:"id"`
	EmployeeID    int64           `json:"employee_id"`
	BaseAmount    decimal.Decimal `json:"base_amount"`
	Coefficient   decimal.Decimal `json:"coefficient"`
	Allowance     decimal.Decimal `json:"allowance"`
	EffectiveFrom time.Time       `json:"effective_from"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Net = base * coefficient + allowance, округление до целой единицы валюты.
func (s Salary) Net() decimal.Decimal {
	return s.BaseAmount.Mul(s.Coefficient).Add(s.Allowance).Round(0)
}

type InsuranceKind string

const (
	InsuranceSocial       InsuranceKind = "social"
	InsuranceHealth       InsuranceKind = "health"
	InsuranceUnemployment InsuranceKind = "unemployment"
)

func (k InsuranceKind) Valid() bool {
	switch k {
	case InsuranceSocial, InsuranceHealth, InsuranceUnemployment:
		return true
	}
	return false
}

type Insurance struct {
	ID         int64         `json:"id"`
	EmployeeID int64         `json:"employee_id"`
	Number     string        `json:"number"`
	Kind       InsuranceKind `json:"kind"`
	IssuedAt   time.Time     `json:"issued_at"`
	ExpiresAt  *time.Time    `json:"expires_at,omitempty"`
	IssuePlace string        `json:"issue_place,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

type Relative struct {
	ID           int64      `json:"id"`
	EmployeeID   int64      `json:"employee_id"`
	FullName     string     `json:"full_name"`
	Relationship string     `json:"relationship"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
