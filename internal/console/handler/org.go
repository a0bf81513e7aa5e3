package handler

import (
	"context"
	"net/http"

	"github.com/xela07ax/hr-console/internal/domain"
	"go.uber.org/zap"
)

type OrgManager interface {
	ListUnits(ctx context.Context) ([]domain.OrgUnit, error)
	ListPositions(ctx context.Context) ([]domain.Position, error)
	CreateUnit(ctx context.Context, u *domain.OrgUnit) error
	UpdateUnit(ctx context.Context, u *domain.OrgUnit) error
	DeleteUnit(ctx context.Context, id int64) error
}

type OrgHandler struct {
	service OrgManager
	logger  *zap.Logger
}

func NewOrgHandler(s OrgManager, logger *zap.Logger) *OrgHandler {
	return &OrgHandler{service: s, logger: logger.Named("org-handler")}
}

func (h *OrgHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.service.ListUnits(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, units)
}

func (h *OrgHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPositions(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrgHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req unitRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	u := req.toDomain(0)
	if err := h.service.CreateUnit(r.Context(), u); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *OrgHandler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req unitRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	u := req.toDomain(id)
	if err := h.service.UpdateUnit(r.Context(), u); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *OrgHandler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.service.DeleteUnit(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
