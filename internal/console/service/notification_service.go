package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xela07ax/hr-console/internal/domain"
	"github.com/xela07ax/hr-console/internal/infra"
	"github.com/xela07ax/hr-console/internal/policy"
	"go.uber.org/zap"
)

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *domain.Notification) error
	ListNotifications(ctx context.Context, limit int) ([]domain.Notification, error)
}

type NotificationService struct {
	repo   NotificationRepository
	guard  *Guard
	bus    Broadcaster
	logger *zap.Logger
}

func NewNotificationService(repo NotificationRepository, guard *Guard, bus Broadcaster, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		guard:  guard,
		bus:    bus,
		logger: logger.Named("notification-service"),
	}
}

// Send сохраняет уведомление и рассылает его всем подключенным клиентам через Redis.
// Сбой рассылки не отменяет запись: уведомление остается в ленте.
func (s *NotificationService) Send(ctx context.Context, title, content string) (*domain.Notification, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Capability(ctx, caller, policy.ObjNotifications, policy.VerbWrite); err != nil {
		return nil, err
	}

	n := &domain.Notification{
		ID:       uuid.NewString(),
		Title:    strings.TrimSpace(title),
		Content:  strings.TrimSpace(content),
		SenderID: caller.UserID,
	}
	if n.Title == "" || n.Content == "" {
		return nil, fmt.Errorf("notification title and content are required: %w", domain.ErrInvalidInput)
	}

	// 1. Persistence Layer
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("notification_service: create: %w", err)
	}
	s.guard.Record(ctx, caller, "notification.send", string(policy.ObjNotifications), n.ID)

	// 2. Real-time Signaling
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("notification_service: marshal: %w", err)
	}
	if err := s.bus.Publish(ctx, infra.RedisChanNotifications, payload); err != nil {
		s.logger.Warn("notification broadcast failed",
			zap.String("notification_id", n.ID),
			zap.Error(err))
	} else {
		s.logger.Info("notification broadcast", zap.String("notification_id", n.ID), zap.String("sender", n.SenderID))
	}
	return n, nil
}

func (s *NotificationService) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Capability(ctx, caller, policy.ObjNotifications, policy.VerbRead); err != nil {
		return nil, err
	}
	return s.repo.ListNotifications(ctx, limit)
}

// AuthorizeStream - право открыть websocket ленты.
func (s *NotificationService) AuthorizeStream(ctx context.Context) error {
	caller, err := policy.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	return s.guard.Capability(ctx, caller, policy.ObjNotifications, policy.VerbRead)
}
