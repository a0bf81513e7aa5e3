package handler

import (
	"context"
	"net/http"

	"github.com/xela07ax/hr-console/internal/domain"
	"go.uber.org/zap"
)

type NotificationManager interface {
	Send(ctx context.Context, title, content string) (*domain.Notification, error)
	List(ctx context.Context, limit int) ([]domain.Notification, error)
	AuthorizeStream(ctx context.Context) error
}

// StreamServer поднимает websocket и держит клиента до разрыва.
type StreamServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

const defaultFeedLimit = 50

type NotificationHandler struct {
	service NotificationManager
	stream  StreamServer
	logger  *zap.Logger
}

func NewNotificationHandler(s NotificationManager, stream StreamServer, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{service: s, stream: stream, logger: logger.Named("notification-handler")}
}

// List - последние уведомления, GET /v1/notifications?limit=
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	if limit <= 0 || limit > 500 {
		limit = defaultFeedLimit
	}
	list, err := h.service.List(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	n, err := h.service.Send(r.Context(), req.Title, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// Stream - GET /v1/notifications/stream, апгрейд до websocket после проверки прав.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if err := h.service.AuthorizeStream(r.Context()); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.stream.ServeWS(w, r)
}
