package policy

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/xela07ax/hr-console/internal/domain"
	"go.uber.org/zap"
)

// Object - раздел системы, на который выдаются права.
type Object string

const (
	ObjEmployees     Object = "employees"
	ObjUnits         Object = "units"
	ObjPositions     Object = "positions"
	ObjContracts     Object = "contracts"
	ObjSalaries      Object = "salaries"
	ObjInsurances    Object = "insurances"
	ObjRelatives     Object = "relatives"
	ObjNotifications Object = "notifications"
	ObjAudit         Object = "audit"
)

type Verb string

const (
	VerbRead  Verb = "read"
	VerbWrite Verb = "write"
)

const capabilityModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// Права по умолчанию. Субъекты: role:<роль учетной записи> и position:<код должности>.
var defaultPolicies = [][]string{
	{"role:admin", "*", "*"},

	{"role:user", "units", "read"},
	{"role:user", "positions", "read"},
	{"role:user", "notifications", "read"},

	{"role:hr", "employees", "*"},
	{"role:hr", "contracts", "*"},
	{"role:hr", "relatives", "*"},
	{"role:hr", "salaries", "read"},
	{"role:hr", "insurances", "read"},
	{"role:hr", "units", "*"},
	{"role:hr", "notifications", "*"},

	{"position:PAYROLL_OFFICER", "employees", "read"},
	{"position:PAYROLL_OFFICER", "salaries", "*"},

	{"position:INSURANCE_OFFICER", "employees", "read"},
	{"position:INSURANCE_OFFICER", "insurances", "*"},

	{"position:DIRECTOR", "employees", "read"},
	{"position:DIRECTOR", "salaries", "read"},
	{"position:DIRECTOR", "notifications", "write"},
	{"position:DIRECTOR", "audit", "read"},
}

var defaultGroupings = [][]string{
	{"role:admin", "role:hr"},
	{"role:hr", "role:user"},
	{"position:HR", "role:hr"},
	{"position:DIRECTOR", "role:user"},
	{"position:DEPARTMENT_HEAD", "role:user"},
	{"position:TEAM_LEAD", "role:user"},
	{"position:STAFF", "role:user"},
	{"position:PAYROLL_OFFICER", "role:user"},
	{"position:INSURANCE_OFFICER", "role:user"},
}

// Enforcer решает вопросы уровня "может ли этот человек вообще работать с разделом".
// Видимость конкретных задач решает AuthorizeTodo.
type Enforcer struct {
	casbin *casbin.Enforcer
	logger *zap.Logger
}

// NewEnforcer поднимает casbin с политиками из CSV-файла, а если путь пуст - со встроенными.
func NewEnforcer(policyPath string, logger *zap.Logger) (*Enforcer, error) {
	m, err := model.NewModelFromString(capabilityModel)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to parse model: %w", err)
	}

	var e *casbin.Enforcer
	if policyPath != "" {
		e, err = casbin.NewEnforcer(m, fileadapter.NewAdapter(policyPath))
	} else {
		e, err = casbin.NewEnforcer(m)
	}
	if err != nil {
		return nil, fmt.Errorf("authz: failed to initialize enforcer: %w", err)
	}

	if policyPath == "" {
		if _, err := e.AddPolicies(defaultPolicies); err != nil {
			return nil, fmt.Errorf("authz: failed to load default policies: %w", err)
		}
		if _, err := e.AddGroupingPolicies(defaultGroupings); err != nil {
			return nil, fmt.Errorf("authz: failed to load default groupings: %w", err)
		}
	}

	return &Enforcer{casbin: e, logger: logger.Named("enforcer")}, nil
}

func subjectsOf(c Caller) []string {
	subjects := make([]string, 0, 2)
	if c.Role != "" {
		subjects = append(subjects, "role:"+strings.ToLower(string(c.Role)))
	}
	if c.Position.Valid() {
		subjects = append(subjects, "position:"+string(c.Position))
	}
	return subjects
}

// Allowed возвращает true, если право есть хотя бы у одного из субъектов вызывающего.
// Ошибка casbin трактуется как отказ.
func (e *Enforcer) Allowed(c Caller, obj Object, verb Verb) bool {
	for _, sub := range subjectsOf(c) {
		ok, err := e.casbin.Enforce(sub, string(obj), string(verb))
		if err != nil {
			e.logger.Error("enforce failed", zap.String("sub", sub), zap.String("obj", string(obj)), zap.Error(err))
			return false
		}
		if ok {
			return true
		}
	}
	return false
}

// Authorize - то же, что Allowed, но с ошибкой для отказа.
func (e *Enforcer) Authorize(c Caller, obj Object, verb Verb) error {
	if e.Allowed(c, obj, verb) {
		return nil
	}
	e.logger.Debug("capability denied",
		zap.String("user_id", c.UserID),
		zap.String("obj", string(obj)),
		zap.String("act", string(verb)))
	return domain.Deny(fmt.Sprintf("không có quyền %s %s", verbLabel(verb), objectLabel(obj)))
}

func verbLabel(v Verb) string {
	if v == VerbWrite {
		return "chỉnh sửa"
	}
	return "xem"
}

var objectLabels = map[Object]string{
	ObjEmployees:     "nhân viên",
	ObjUnits:         "phòng ban",
	ObjPositions:     "chức vụ",
	ObjContracts:     "hợp đồng",
	ObjSalaries:      "lương",
	ObjInsurances:    "bảo hiểm",
	ObjRelatives:     "người thân",
	ObjNotifications: "thông báo",
	ObjAudit:         "nhật ký",
}

func objectLabel(o Object) string {
	if l, ok := objectLabels[o]; ok {
		return l
	}
	return string(o)
}
