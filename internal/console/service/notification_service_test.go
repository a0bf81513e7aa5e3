package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/hr-console/internal/domain"
	"github.com/xela07ax/hr-console/internal/infra"
	"go.uber.org/zap"
)

func TestNotificationSend(t *testing.T) {
	e := newEnv(t)
	svc := NewNotificationService(e.repo, e.guard, e.bus, zap.NewNop())

	n, err := svc.Send(as(director), "Họp", "Họp toàn công ty lúc 9h")
	require.NoError(t, err)
	assert.Len(t, n.ID, 36)
	assert.Equal(t, director.UserID, n.SenderID)

	sent := e.bus.sent[infra.RedisChanNotifications]
	require.Len(t, sent, 1)
	var got domain.Notification
	require.NoError(t, json.Unmarshal(sent[0], &got))
	assert.Equal(t, n.ID, got.ID)

	_, err = svc.Send(as(staff3), "x", "y")
	requireReason(t, err, "không có quyền chỉnh sửa thông báo")

	_, err = svc.Send(as(hrCaller), "", "y")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNotificationSend_BroadcastFailureKeepsRecord(t *testing.T) {
	e := newEnv(t)
	e.bus.err = errors.New("breaker open")
	svc := NewNotificationService(e.repo, e.guard, e.bus, zap.NewNop())

	_, err := svc.Send(as(hrCaller), "Nghỉ lễ", "Công ty nghỉ lễ 30/4")
	require.NoError(t, err)

	list, err := svc.List(as(staff3), 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, svc.AuthorizeStream(as(staff3)))
}
