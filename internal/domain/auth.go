package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role - роль учетной записи. Должность сотрудника хранится отдельно (PositionCode).
type Role string

const (
	RoleAdmin Role = "admin"
	RoleHR    Role = "hr"
	RoleUser  Role = "user"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleAdmin, RoleHR, RoleUser:
		return r, true
	}
	return "", false
}

type CustomClaims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Всегда "Bearer"
	ExpiresIn   int64  `json:"expires_in"`
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Никогда не отправляем на фронт
	Role         Role      `json:"role"`
	EmployeeID   *int64    `json:"employee_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
