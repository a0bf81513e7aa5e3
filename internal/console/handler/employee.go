package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/xela07ax/hr-console/internal/domain"
	"go.uber.org/zap"
)

type EmployeeManager interface {
	List(ctx context.Context, f domain.EmployeeFilter) ([]domain.Employee, error)
	Get(ctx context.Context, id int64) (*domain.Employee, error)
	Create(ctx context.Context, e *domain.Employee, initial *domain.Salary) error
	Update(ctx context.Context, e *domain.Employee) error
	Delete(ctx context.Context, id int64) error
	UploadAvatar(ctx context.Context, id int64, data []byte) (string, error)
	Export(ctx context.Context, f domain.EmployeeFilter, w io.Writer) error
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EmployeeHandler struct {
	service   EmployeeManager
	maxUpload int64
	logger    *zap.Logger
}

func NewEmployeeHandler(s EmployeeManager, maxUpload int64, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{service: s, maxUpload: maxUpload, logger: logger.Named("employee-handler")}
}

func employeeFilter(r *http.Request) domain.EmployeeFilter {
	return domain.EmployeeFilter{
		UnitID: int64(queryInt(r, "unit_id")),
		Query:  r.URL.Query().Get("q"),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
}

// List - GET /v1/employees?unit_id=&q=&limit=&offset=
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), employeeFilter(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Create - POST /v1/employees. initial_salary создается в той же транзакции.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	e := req.toDomain(0)
	var initial *domain.Salary
	if req.InitialSalary != nil {
		initial = req.InitialSalary.toDomain(0, 0)
	}
	if err := h.service.Create(r.Context(), e, initial); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req employeeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.InitialSalary != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid input", Detail: "initial_salary is accepted on create only"})
		return
	}
	e := req.toDomain(id)
	if err := h.service.Update(r.Context(), e); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// UploadAvatar - PUT /v1/employees/{id}/avatar, multipart-поле "file".
func (h *EmployeeHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	data, err := readUpload(w, r, h.maxUpload)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	path, err := h.service.UploadAvatar(r.Context(), id, data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Path: path})
}

// Export - GET /v1/employees/export, тот же фильтр, что и у List.
func (h *EmployeeHandler) Export(w http.ResponseWriter, r *http.Request) {
	// сначала собираем файл целиком: ошибка доступа должна уйти JSON-ом, а не обрывком xlsx
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), employeeFilter(r), &buf); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="employees.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
