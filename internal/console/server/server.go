package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xela07ax/hr-console/internal/console/handler"
	"github.com/xela07ax/hr-console/internal/infra"
	"github.com/xela07ax/hr-console/internal/infra/auth"
	"go.uber.org/zap"
)

// Handlers - обработчики бизнес-доменов консоли.
type Handlers struct {
	Auth          *handler.AuthHandler         // /auth/token
	Employees     *handler.EmployeeHandler     // /v1/employees
	Org           *handler.OrgHandler          // /v1/units, /v1/positions
	Todos         *handler.TodoHandler         // /v1/todos
	Records       *handler.RecordHandler       // договоры, оклады, страховки, родственники
	Notifications *handler.NotificationHandler // /v1/notifications (+ websocket)
	Audit         *handler.AuditHandler        // /v1/audit
}

type ConsoleServer struct {
	router *chi.Mux
	logger *zap.Logger

	// Проверка RS256 токена и сборка личности вызывающего
	validator auth.TokenValidator
	resolver  auth.CallerResolver

	metrics  *infra.Metrics
	gatherer prometheus.Gatherer
	h        Handlers
}

// NewConsoleServer инициализирует сервер консоли со всеми зависимостями
func NewConsoleServer(
	logger *zap.Logger,
	validator auth.TokenValidator,
	resolver auth.CallerResolver,
	metrics *infra.Metrics,
	gatherer prometheus.Gatherer,
	h Handlers,
) *ConsoleServer {
	s := &ConsoleServer{
		router:    chi.NewRouter(),
		logger:    logger.Named("console-api"),
		validator: validator,
		resolver:  resolver,
		metrics:   metrics,
		gatherer:  gatherer,
		h:         h,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(infra.TracingMiddleware)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ ---
	r.Group(func(r chi.Router) {
		r.Post("/auth/token", s.h.Auth.Login)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (RS256 токен) ---
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.validator, s.resolver, s.logger))

		r.Route("/v1/employees", func(r chi.Router) {
			r.Get("/", s.h.Employees.List)
			r.Post("/", s.h.Employees.Create)
			r.Get("/export", s.h.Employees.Export) // XLSX
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.h.Employees.Get)
				r.Put("/", s.h.Employees.Update)
				r.Delete("/", s.h.Employees.Delete) // каскадом со всеми записями
				r.Put("/avatar", s.h.Employees.UploadAvatar)

				r.Get("/contracts", s.h.Records.ListContracts)
				r.Post("/contracts", s.h.Records.CreateContract)
				r.Get("/salaries", s.h.Records.ListSalaries)
				r.Post("/salaries", s.h.Records.CreateSalary)
				r.Get("/insurances", s.h.Records.ListInsurances)
				r.Post("/insurances", s.h.Records.CreateInsurance)
				r.Get("/relatives", s.h.Records.ListRelatives)
				r.Post("/relatives", s.h.Records.CreateRelative)
			})
		})

		r.Route("/v1/contracts/{id}", func(r chi.Router) {
			r.Put("/", s.h.Records.UpdateContract)
			r.Delete("/", s.h.Records.DeleteContract)
			r.Put("/image", s.h.Records.UploadContractImage)
		})
		r.Put("/v1/salaries/{id}", s.h.Records.UpdateSalary)
		r.Delete("/v1/salaries/{id}", s.h.Records.DeleteSalary)
		r.Put("/v1/insurances/{id}", s.h.Records.UpdateInsurance)
		r.Delete("/v1/insurances/{id}", s.h.Records.DeleteInsurance)
		r.Put("/v1/relatives/{id}", s.h.Records.UpdateRelative)
		r.Delete("/v1/relatives/{id}", s.h.Records.DeleteRelative)

		// Оргструктура
		r.Route("/v1/units", func(r chi.Router) {
			r.Get("/", s.h.Org.ListUnits)
			r.Post("/", s.h.Org.CreateUnit)
			r.Put("/{id}", s.h.Org.UpdateUnit)
			r.Delete("/{id}", s.h.Org.DeleteUnit)
		})
		r.Get("/v1/positions", s.h.Org.ListPositions)

		// Задачи: видимость и права решает движок правил
		r.Route("/v1/todos", func(r chi.Router) {
			r.Get("/", s.h.Todos.List) // ?scope=own
			r.Post("/", s.h.Todos.Create)
			r.Get("/assignees", s.h.Todos.Assignees)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.h.Todos.Get)
				r.Patch("/", s.h.Todos.Update)
				r.Delete("/", s.h.Todos.Delete)
			})
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", s.h.Notifications.List)
			r.Post("/", s.h.Notifications.Create)
			r.Get("/stream", s.h.Notifications.Stream) // websocket
		})

		r.Get("/v1/audit", s.h.Audit.GetLogs)
	})
}

// observe пишет метрики и access-лог. Метка route - шаблон chi, а не сырой путь.
func (s *ConsoleServer) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		s.metrics.TotalRequests.WithLabelValues(route, r.Method).Inc()
		s.metrics.RequestDuration.WithLabelValues(route, r.Method, strconv.Itoa(status)).Observe(elapsed.Seconds())

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("trace_id", infra.TraceID(r.Context())),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
