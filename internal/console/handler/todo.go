package handler

import (
	"context"
	"net/http"

	"github.com/xela07ax/hr-console/internal/console/service"
	"github.com/xela07ax/hr-console/internal/domain"
	"go.uber.org/zap"
)

type TodoManager interface {
	ListVisible(ctx context.Context) ([]domain.TodoItem, error)
	ListOwn(ctx context.Context) ([]domain.TodoItem, error)
	Assignees(ctx context.Context) ([]domain.Employee, error)
	Get(ctx context.Context, id int64) (*domain.TodoItem, error)
	Create(ctx context.Context, in service.TodoInput) (*domain.TodoItem, error)
	Update(ctx context.Context, id int64, p service.TodoPatch) (*domain.TodoItem, error)
	Delete(ctx context.Context, id int64) error
}

type TodoHandler struct {
	service TodoManager
	logger  *zap.Logger
}

func NewTodoHandler(s TodoManager, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{service: s, logger: logger.Named("todo-handler")}
}

// List - GET /v1/todos. ?scope=own оставляет только задачи самого вызывающего.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []domain.TodoItem
		err  error
	)
	switch r.URL.Query().Get("scope") {
	case "own":
		list, err = h.service.ListOwn(r.Context())
	case "", "visible":
		list, err = h.service.ListVisible(r.Context())
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid input", Detail: "scope must be own or visible"})
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Assignees - сотрудники, которым вызывающий может выдать задачу.
func (h *TodoHandler) Assignees(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Assignees(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req todoCreateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	t, err := h.service.Create(r.Context(), service.TodoInput{
		OwnerID:  req.OwnerID,
		Title:    req.Title,
		Content:  req.Content,
		Deadline: req.Deadline,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// Update - PATCH /v1/todos/{id}
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req todoPatchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	p := service.TodoPatch{Title: req.Title, Content: req.Content, Deadline: req.Deadline}
	if req.Status != nil {
		st := domain.TodoStatus(*req.Status)
		p.Status = &st
	}
	t, err := h.service.Update(r.Context(), id, p)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
