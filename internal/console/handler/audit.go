package handler

import (
	"context"
	"net/http"

	"github.com/xela07ax/hr-console/internal/audit"
	"go.uber.org/zap"
)

type AuditReader interface {
	FetchLogs(ctx context.Context, f audit.Filter) ([]audit.AuditEvent, error)
}

type AuditHandler struct {
	service AuditReader
	logger  *zap.Logger
}

func NewAuditHandler(s AuditReader, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{service: s, logger: logger.Named("audit-handler")}
}

// GetLogs возвращает события аудита с фильтрацией.
// GET /v1/audit?user_id=...&outcome=DENIED&limit=50&offset=0
func (h *AuditHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := audit.Filter{
		UserID:  q.Get("user_id"),
		Outcome: q.Get("outcome"),
		Limit:   queryInt(r, "limit"),
		Offset:  queryInt(r, "offset"),
	}

	logs, err := h.service.FetchLogs(r.Context(), f)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
