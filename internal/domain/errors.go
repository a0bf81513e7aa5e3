package domain

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("authorization denied")
	ErrNotFound        = errors.New("record not found")
	ErrAlreadyExists   = errors.New("record already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrRateLimited     = errors.New("too many attempts")
)

// DeniedError - отказ политики доступа. Reason показывается пользователю как есть.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return "authorization denied: " + e.Reason
}

// Is позволяет проверять отказ через errors.Is(err, ErrForbidden).
func (e *DeniedError) Is(target error) bool {
	return target == ErrForbidden
}

func Deny(reason string) error {
	return &DeniedError{Reason: reason}
}

// DenialReason достает текст причины отказа, если он есть в цепочке ошибок.
func DenialReason(err error) (string, bool) {
	var denied *DeniedError
	if errors.As(err, &denied) {
		return denied.Reason, true
	}
	return "", false
}
