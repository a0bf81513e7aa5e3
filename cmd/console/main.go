package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/xela07ax/hr-console/internal/audit"
	"github.com/xela07ax/hr-console/internal/blob"
	"github.com/xela07ax/hr-console/internal/console/handler"
	"github.com/xela07ax/hr-console/internal/console/server"
	"github.com/xela07ax/hr-console/internal/console/service"
	"github.com/xela07ax/hr-console/internal/infra"
	"github.com/xela07ax/hr-console/internal/infra/auth"
	"github.com/xela07ax/hr-console/internal/notify"
	"github.com/xela07ax/hr-console/internal/policy"
	"github.com/xela07ax/hr-console/internal/repository/postgres"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hr-console: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Контекст для управления жизненным циклом фоновых горутин.
	// SIGINT/SIGTERM отменяет его и останавливает слушателей.
	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Инфраструктура
	pool, err := infra.ConnectPostgres(appCtx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := infra.ConnectRedis(appCtx, cfg.Redis, cfg.Database.ConnectRetries, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	privateKey, err := auth.ParseRSAPrivateKey(cfg.Auth.PrivateKey)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	publicKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	// Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infra.NewMetrics(reg)

	repo := postgres.NewHRRepo(pool)

	// 3. Движок доступа: casbin + кэш оргструктуры
	enforcer, err := policy.NewEnforcer(cfg.Authz.PolicyPath, logger)
	if err != nil {
		return err
	}
	hierarchy := policy.NewMemoHierarchy(repo, rdb, logger)
	if err := hierarchy.Refresh(appCtx); err != nil {
		return fmt.Errorf("hierarchy warm-up: %w", err)
	}
	go hierarchy.StartListener(appCtx)

	// Аудит пишется в базу пачками
	auditWriter := audit.NewWriter(repo, audit.Options{
		BufferSize:    cfg.Audit.BufferSize,
		BatchSize:     cfg.Audit.BatchSize,
		FlushInterval: cfg.Audit.FlushInterval,
	}, metrics.AuditBufferFill, logger)
	auditWriter.Start()
	defer auditWriter.Stop()

	images := blob.NewStore(cfg.Storage.Root, cfg.Storage.MaxBytes, logger)
	publisher := notify.NewPublisher(rdb, logger)
	hub := notify.NewHub(metrics.StreamClients, logger)
	go hub.Run(appCtx, rdb)

	// 4. Сервисный слой (Dependency Injection)
	guard := service.NewGuard(enforcer, hierarchy, auditWriter, metrics.AuthzDecisions, logger)

	authService := service.NewAuthService(repo, repo, privateKey, service.AuthOptions{
		Issuer:     cfg.Auth.Issuer,
		TokenTTL:   cfg.Auth.TokenTTL,
		LoginRate:  cfg.Auth.LoginRate,
		LoginBurst: cfg.Auth.LoginBurst,
	}, logger)
	go authService.RunLimiterSweep(appCtx)
	employeeService := service.NewEmployeeService(repo, guard, images, logger)
	recordService := service.NewRecordService(repo, guard, images, logger)
	todoService := service.NewTodoService(repo, guard, logger)
	orgService := service.NewOrgService(repo, hierarchy, guard, publisher, logger)
	notificationService := service.NewNotificationService(repo, guard, publisher, logger)
	auditService := service.NewAuditService(repo, guard)

	// 5. HTTP
	console := server.NewConsoleServer(
		logger,
		auth.NewBaseValidator(publicKey, cfg.Auth.Issuer),
		authService,
		metrics,
		reg,
		server.Handlers{
			Auth:          handler.NewAuthHandler(authService, logger),
			Employees:     handler.NewEmployeeHandler(employeeService, cfg.Storage.MaxBytes, logger),
			Org:           handler.NewOrgHandler(orgService, logger),
			Todos:         handler.NewTodoHandler(todoService, logger),
			Records:       handler.NewRecordHandler(recordService, cfg.Storage.MaxBytes, logger),
			Notifications: handler.NewNotificationHandler(notificationService, hub, logger),
			Audit:         handler.NewAuditHandler(auditService, logger),
		},
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      console,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// gRPC health для оркестратора
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.HealthPort))
	if err != nil {
		return fmt.Errorf("failed to listen gRPC: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC health server started", zap.String("addr", lis.Addr().String()))
		if err := grpcSrv.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go func() {
		logger.Info("HR console started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	// 6. Graceful Shutdown
	select {
	case <-appCtx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
		stop()
	}

	healthSrv.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	grpcSrv.GracefulStop()
	return nil
}
