package service

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xela07ax/hr-console/internal/domain"
	"github.com/xela07ax/hr-console/internal/policy"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

type UserRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

type EmployeeReader interface {
	GetEmployee(ctx context.Context, id int64) (*domain.Employee, error)
}

type AuthOptions struct {
	Issuer     string
	TokenTTL   time.Duration
	LoginRate  float64 // попыток в секунду на одно имя пользователя
	LoginBurst int
}

type AuthService struct {
	users      UserRepository
	employees  EmployeeReader
	privateKey *rsa.PrivateKey
	opts       AuthOptions
	logger     *zap.Logger

	mu       sync.Mutex
	limiters map[string]*loginLimiter
	idleTTL  time.Duration
	now      func() time.Time
}

type loginLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewAuthService(users UserRepository, employees EmployeeReader, privateKey *rsa.PrivateKey, opts AuthOptions, logger *zap.Logger) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.LoginRate <= 0 {
		opts.LoginRate = 0.2
	}
	if opts.LoginBurst <= 0 {
		opts.LoginBurst = 5
	}
	// за idleTTL ведро успевает наполниться, поэтому удаление не ослабляет ограничение
	idle := time.Duration(float64(opts.LoginBurst) / opts.LoginRate * float64(time.Second))
	if idle < time.Minute {
		idle = time.Minute
	}
	return &AuthService{
		users:      users,
		employees:  employees,
		privateKey: privateKey,
		opts:       opts,
		logger:     logger.Named("auth"),
		limiters:   make(map[string]*loginLimiter),
		idleTTL:    idle,
		now:        time.Now,
	}
}

// limiter - отдельное ведро на каждое имя, чтобы перебор пароля одного пользователя
// не блокировал вход остальным.
func (s *AuthService) limiter(username string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[username]
	if !ok {
		l = &loginLimiter{lim: rate.NewLimiter(rate.Limit(s.opts.LoginRate), s.opts.LoginBurst)}
		s.limiters[username] = l
	}
	l.seen = s.now()
	return l.lim
}

// SweepLimiters удаляет ведра, к которым не обращались дольше idleTTL. Возвращает число удаленных.
func (s *AuthService) SweepLimiters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for name, l := range s.limiters {
		if l.seen.Before(cutoff) {
			delete(s.limiters, name)
			removed++
		}
	}
	return removed
}

// RunLimiterSweep чистит ведра раз в idleTTL до отмены ctx.
func (s *AuthService) RunLimiterSweep(ctx context.Context) {
	ticker := time.NewTicker(s.idleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.SweepLimiters(); n > 0 {
				s.logger.Debug("login limiters swept", zap.Int("removed", n))
			}
		}
	}
}

func (s *AuthService) GenerateToken(ctx context.Context, username, password string) (*domain.TokenResponse, error) {
	if !s.limiter(username).Allow() {
		s.logger.Warn("login throttled", zap.String("username", username))
		return nil, domain.ErrRateLimited
	}

	// 1. Аутентификация (источник правды - Postgres)
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthenticated)
		}
		return nil, err
	}

	// 2. Проверка пароля
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthenticated)
	}

	// 3. В токене только учетная запись: должность и подразделение читаются на каждый запрос
	now := time.Now()
	expiresAt := now.Add(s.opts.TokenTTL)
	claims := &domain.CustomClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.opts.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	// 4. Подпись закрытым ключом (RS256)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("token issued", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &domain.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.opts.TokenTTL.Seconds()),
	}, nil
}

// ResolveCaller собирает личность вызывающего из учетной записи и карточки сотрудника.
func (s *AuthService) ResolveCaller(ctx context.Context, claims *domain.CustomClaims) (policy.Caller, error) {
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return policy.Caller{}, err
	}

	caller := policy.Caller{UserID: user.ID, Role: user.Role}
	if user.EmployeeID == nil {
		return caller, nil
	}

	emp, err := s.employees.GetEmployee(ctx, *user.EmployeeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// карточку удалили: учетная запись работает как без сотрудника
			s.logger.Warn("user references missing employee", zap.String("user_id", user.ID), zap.Int64("employee_id", *user.EmployeeID))
			return caller, nil
		}
		return policy.Caller{}, err
	}
	caller.EmployeeID = emp.ID
	caller.Position = emp.Position
	caller.UnitID = emp.UnitID
	return caller, nil
}
