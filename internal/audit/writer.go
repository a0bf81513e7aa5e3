package audit

/*
Writer - неблокирующий журнал действий консоли.

События кладутся в буферизованный канал и пишутся в PostgreSQL пачками
по таймеру или по достижении BatchSize. На остановке канал закрывается,
воркер вычитывает остаток и делает финальный flush, поэтому события
не теряются при штатной перезагрузке.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Storage определяет, куда физически сохраняются события.
type Storage interface {
	WriteBatch(ctx context.Context, events []AuditEvent) error
}

// Auditor - то, что нужно сервисам.
type Auditor interface {
	Log(event AuditEvent)
}

type Options struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
}

type Writer struct {
	ch     chan AuditEvent
	repo   Storage
	opts   Options
	fill   prometheus.Gauge // может быть nil
	logger *zap.Logger
	wg     sync.WaitGroup
	// Log после Stop не должен паниковать на закрытом канале
	closed atomic.Bool
	mu     sync.RWMutex
}

func NewWriter(repo Storage, opts Options, fill prometheus.Gauge, logger *zap.Logger) *Writer {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 10000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 500 * time.Millisecond
	}
	return &Writer{
		ch:     make(chan AuditEvent, opts.BufferSize),
		repo:   repo,
		opts:   opts,
		fill:   fill,
		logger: logger.Named("audit"),
	}
}

func (w *Writer) Start() {
	w.wg.Add(1)
	go w.worker()
}

// Stop закрывает вход и ждет, пока воркер все допишет.
func (w *Writer) Stop() {
	w.mu.Lock()
	if w.closed.Swap(true) {
		w.mu.Unlock()
		return
	}
	w.logger.Info("stopping auditor: closing channel and flushing buffer...")
	close(w.ch)
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Info("auditor stopped gracefully")
}

func (w *Writer) Log(event AuditEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	// RLock держит канал открытым на время отправки
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed.Load() {
		w.logger.Warn("audit event dropped: auditor is stopping", zap.String("id", event.ID))
		return
	}

	select {
	case w.ch <- event:
		w.observe()
	default:
		// переполнение: событие остается только в логе процесса
		w.logger.Error("audit_buffer_overflow",
			zap.String("user_id", event.UserID),
			zap.String("action", event.Action),
			zap.String("trace_id", event.TraceID),
		)
	}
}

func (w *Writer) observe() {
	if w.fill != nil {
		w.fill.Set(float64(len(w.ch)))
	}
}

func (w *Writer) worker() {
	defer w.wg.Done()

	batch := make([]AuditEvent, 0, w.opts.BatchSize)
	ticker := time.NewTicker(w.opts.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: на остановке контекст приложения уже отменен
		if err := w.repo.WriteBatch(context.Background(), batch); err != nil {
			w.logger.Error("audit flush failed", zap.Int("events", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
		w.observe()
	}

	for {
		select {
		case event, ok := <-w.ch:
			if !ok {
				flush()
				w.logger.Info("audit worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= w.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
