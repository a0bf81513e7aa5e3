package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xela07ax/hr-console/internal/audit"
	"github.com/xela07ax/hr-console/internal/domain"
	"github.com/xela07ax/hr-console/internal/infra"
	"github.com/xela07ax/hr-console/internal/policy"
	"go.uber.org/zap"
)

// Capabilities - права на разделы системы (casbin).
type Capabilities interface {
	Allowed(c policy.Caller, obj policy.Object, verb policy.Verb) bool
	Authorize(c policy.Caller, obj policy.Object, verb policy.Verb) error
}

// HierarchySource отдает текущий снимок оргструктуры.
type HierarchySource interface {
	Snapshot() *policy.Hierarchy
}

// Guard - единая точка проверок доступа для сервисов.
// Каждое решение попадает в метрику, каждый отказ в журнал аудита.
type Guard struct {
	caps      Capabilities
	hierarchy HierarchySource
	auditor   audit.Auditor
	decisions *prometheus.CounterVec // может быть nil
	logger    *zap.Logger
}

func NewGuard(caps Capabilities, hierarchy HierarchySource, auditor audit.Auditor, decisions *prometheus.CounterVec, logger *zap.Logger) *Guard {
	return &Guard{
		caps:      caps,
		hierarchy: hierarchy,
		auditor:   auditor,
		decisions: decisions,
		logger:    logger.Named("guard"),
	}
}

// Hierarchy - снимок, с которым работает одна операция.
func (g *Guard) Hierarchy() *policy.Hierarchy {
	return g.hierarchy.Snapshot()
}

func (g *Guard) Allowed(c policy.Caller, obj policy.Object, verb policy.Verb) bool {
	return g.caps.Allowed(c, obj, verb)
}

// Capability проверяет право на раздел.
func (g *Guard) Capability(ctx context.Context, c policy.Caller, obj policy.Object, verb policy.Verb) error {
	err := g.caps.Authorize(c, obj, verb)
	g.observe(ctx, c, string(obj), string(obj)+"."+string(verb), "", err)
	return err
}

// OwnRecordOr пропускает чтение собственных записей без права на раздел.
func (g *Guard) OwnRecordOr(ctx context.Context, c policy.Caller, employeeID int64, obj policy.Object, verb policy.Verb) error {
	if verb == policy.VerbRead && c.HasEmployee() && c.EmployeeID == employeeID {
		g.count(string(obj), "allow")
		return nil
	}
	return g.Capability(ctx, c, obj, verb)
}

// EmployeeRead - карточку видно по праву на раздел, себе и по правилу видимости задач.
func (g *Guard) EmployeeRead(ctx context.Context, c policy.Caller, ref domain.EmployeeRef) error {
	if g.caps.Allowed(c, policy.ObjEmployees, policy.VerbRead) ||
		policy.CanAccessTodo(g.Hierarchy(), c, policy.OwnerOf(ref), policy.ActionView) {
		g.count(string(policy.ObjEmployees), "allow")
		return nil
	}
	return g.Capability(ctx, c, policy.ObjEmployees, policy.VerbRead)
}

// Todo применяет правило задач к владельцу.
func (g *Guard) Todo(ctx context.Context, c policy.Caller, owner policy.Owner, action policy.Action, todoID int64) error {
	err := policy.AuthorizeTodo(g.Hierarchy(), c, owner, action)
	resID := ""
	if todoID != 0 {
		resID = strconv.FormatInt(todoID, 10)
	}
	g.observe(ctx, c, "todos", "todo."+string(action), resID, err)
	return err
}

// Record пишет в журнал успешную мутацию.
func (g *Guard) Record(ctx context.Context, c policy.Caller, action, resource, resourceID string) {
	g.auditor.Log(newEvent(ctx, c, action, resource, resourceID, audit.OutcomeSuccess, ""))
}

func (g *Guard) observe(ctx context.Context, c policy.Caller, resource, action, resourceID string, err error) {
	switch {
	case err == nil:
		g.count(resource, "allow")
	case errors.Is(err, domain.ErrForbidden):
		g.count(resource, "deny")
		reason, _ := domain.DenialReason(err)
		g.logger.Info("access denied",
			zap.String("user_id", c.UserID),
			zap.String("action", action),
			zap.String("resource_id", resourceID),
			zap.String("reason", reason))
		g.auditor.Log(newEvent(ctx, c, action, resource, resourceID, audit.OutcomeDenied, reason))
	default:
		g.count(resource, "error")
	}
}

func (g *Guard) count(resource, outcome string) {
	if g.decisions != nil {
		g.decisions.WithLabelValues(resource, outcome).Inc()
	}
}

func newEvent(ctx context.Context, c policy.Caller, action, resource, resourceID, outcome, reason string) audit.AuditEvent {
	ev := audit.AuditEvent{
		TraceID:    infra.TraceID(ctx),
		UserID:     c.UserID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Outcome:    outcome,
		Reason:     reason,
	}
	if c.HasEmployee() {
		id := c.EmployeeID
		ev.EmployeeID = &id
	}
	return ev
}

func idStr(id int64) string { return strconv.FormatInt(id, 10) }
