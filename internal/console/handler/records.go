package handler

import (
	"context"
	"net/http"

	"github.com/xela07ax/hr-console/internal/domain"
	"go.uber.org/zap"
)

type RecordManager interface {
	ListContracts(ctx context.Context, employeeID int64) ([]domain.Contract, error)
	CreateContract(ctx context.Context, c *domain.Contract) error
	UpdateContract(ctx context.Context, c *domain.Contract) error
	DeleteContract(ctx context.Context, id int64) error
	UploadContractImage(ctx context.Context, id int64, data []byte) (string, error)

	ListSalaries(ctx context.Context, employeeID int64) ([]domain.Salary, error)
	CreateSalary(ctx context.Context, s *domain.Salary) error
	UpdateSalary(ctx context.Context, s *domain.Salary) error
	DeleteSalary(ctx context.Context, id int64) error

	ListInsurances(ctx context.Context, employeeID int64) ([]domain.Insurance, error)
	CreateInsurance(ctx context.Context, in *domain.Insurance) error
	UpdateInsurance(ctx context.Context, in *domain.Insurance) error
	DeleteInsurance(ctx context.Context, id int64) error

	ListRelatives(ctx context.Context, employeeID int64) ([]domain.Relative, error)
	CreateRelative(ctx context.Context, r *domain.Relative) error
	UpdateRelative(ctx context.Context, r *domain.Relative) error
	DeleteRelative(ctx context.Context, id int64) error
}

// RecordHandler обслуживает записи сотрудника:
// коллекции под /v1/employees/{id}/..., отдельные записи под /v1/<вид>/{id}.
type RecordHandler struct {
	service   RecordManager
	maxUpload int64
	logger    *zap.Logger
}

func NewRecordHandler(s RecordManager, maxUpload int64, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{service: s, maxUpload: maxUpload, logger: logger.Named("record-handler")}
}

type recordRequest[T any] interface {
	toDomain(id, employeeID int64) *T
}

func listRecords[T any](h *RecordHandler, w http.ResponseWriter, r *http.Request,
	list func(context.Context, int64) ([]T, error), view func([]T) any) {
	employeeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	items, err := list(r.Context(), employeeID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if view != nil {
		writeJSON(w, http.StatusOK, view(items))
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// saveRecord: create - id сотрудника из пути, update - id записи из пути.
func saveRecord[Req recordRequest[T], T any](h *RecordHandler, w http.ResponseWriter, r *http.Request,
	create bool, save func(context.Context, *T) error, view func(*T) any) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req Req
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	var item *T
	status := http.StatusOK
	if create {
		item = req.toDomain(0, id)
		status = http.StatusCreated
	} else {
		item = req.toDomain(id, 0)
	}
	if err := save(r.Context(), item); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if view != nil {
		writeJSON(w, status, view(item))
		return
	}
	writeJSON(w, status, item)
}

func deleteRecord(h *RecordHandler, w http.ResponseWriter, r *http.Request, del func(context.Context, int64) error) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := del(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- contracts ---

func (h *RecordHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	listRecords(h, w, r, h.service.ListContracts, nil)
}

func (h *RecordHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	saveRecord[contractRequest](h, w, r, true, h.service.CreateContract, nil)
}

func (h *RecordHandler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	saveRecord[contractRequest](h, w, r, false, h.service.UpdateContract, nil)
}

func (h *RecordHandler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	deleteRecord(h, w, r, h.service.DeleteContract)
}

// UploadContractImage - PUT /v1/contracts/{id}/image, multipart-поле "file".
func (h *RecordHandler) UploadContractImage(w http.ResponseWriter, r *http.Request) {
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
	path, err := h.service.UploadContractImage(r.Context(), id, data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Path: path})
}

// --- salaries ---

func salaryView(s *domain.Salary) any { return salaryResponse{Salary: *s, Net: s.Net()} }
func salaryListView(l []domain.Salary) any { return salaryResponses(l) }

func (h *RecordHandler) ListSalaries(w http.ResponseWriter, r *http.Request) {
	listRecords(h, w, r, h.service.ListSalaries, salaryListView)
}

func (h *RecordHandler) CreateSalary(w http.ResponseWriter, r *http.Request) {
	saveRecord[salaryRequest](h, w, r, true, h.service.CreateSalary, salaryView)
}

func (h *RecordHandler) UpdateSalary(w http.ResponseWriter, r *http.Request) {
	saveRecord[salaryRequest](h, w, r, false, h.service.UpdateSalary, salaryView)
}

func (h *RecordHandler) DeleteSalary(w http.ResponseWriter, r *http.Request) {
	deleteRecord(h, w, r, h.service.DeleteSalary)
}

// --- insurances ---

func (h *RecordHandler) ListInsurances(w http.ResponseWriter, r *http.Request) {
	listRecords(h, w, r, h.service.ListInsurances, nil)
}

func (h *RecordHandler) CreateInsurance(w http.ResponseWriter, r *http.Request) {
	saveRecord[insuranceRequest](h, w, r, true, h.service.CreateInsurance, nil)
}

func (h *RecordHandler) UpdateInsurance(w http.ResponseWriter, r *http.Request) {
	saveRecord[insuranceRequest](h, w, r, false, h.service.UpdateInsurance, nil)
}

func (h *RecordHandler) DeleteInsurance(w http.ResponseWriter, r *http.Request) {
	deleteRecord(h, w, r, h.service.DeleteInsurance)
}

// --- relatives ---

func (h *RecordHandler) ListRelatives(w http.ResponseWriter, r *http.Request) {
	listRecords(h, w, r, h.service.ListRelatives, nil)
}

func (h *RecordHandler) CreateRelative(w http.ResponseWriter, r *http.Request) {
	saveRecord[relativeRequest](h, w, r, true, h.service.CreateRelative, nil)
}

func (h *RecordHandler) UpdateRelative(w http.ResponseWriter, r *http.Request) {
	saveRecord[relativeRequest](h, w, r, false, h.service.UpdateRelative, nil)
}

func (h *RecordHandler) DeleteRelative(w http.ResponseWriter, r *http.Request) {
	deleteRecord(h, w, r, h.service.DeleteRelative)
}
