package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/hr-console/internal/domain"
	"go.uber.org/zap"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer("", zap.NewNop())
	require.NoError(t, err)
	return e
}

func TestEnforcerDefaults(t *testing.T) {
	e := newTestEnforcer(t)

	payroll := Caller{UserID: "p", Role: domain.RoleUser, EmployeeID: 5, Position: domain.PositionPayrollOfficer}
	insurance := Caller{UserID: "i", Role: domain.RoleUser, EmployeeID: 6, Position: domain.PositionInsuranceOfficer}

	cases := []struct {
		name   string
		caller Caller
		obj    Object
		verb   Verb
		want   bool
	}{
		{"admin writes anything", superAdmin, ObjAudit, VerbWrite, true},
		{"hr role writes employees", hrCaller, ObjEmployees, VerbWrite, true},
		{"hr reads salaries", hrCaller, ObjSalaries, VerbRead, true},
		{"hr cannot write salaries", hrCaller, ObjSalaries, VerbWrite, false},
		{"payroll writes salaries", payroll, ObjSalaries, VerbWrite, true},
		{"payroll cannot write insurances", payroll, ObjInsurances, VerbWrite, false},
		{"insurance officer writes insurances", insurance, ObjInsurances, VerbWrite, true},
		{"staff reads units", staff3, ObjUnits, VerbRead, true},
		{"staff cannot read employees", staff3, ObjEmployees, VerbRead, false},
		{"staff cannot broadcast", staff3, ObjNotifications, VerbWrite, false},
		{"director broadcasts", director, ObjNotifications, VerbWrite, true},
		{"director reads audit", director, ObjAudit, VerbRead, true},
		{"unknown caller", Caller{UserID: "x"}, ObjUnits, VerbRead, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Allowed(tc.caller, tc.obj, tc.verb))
		})
	}
}

func TestEnforcerAuthorizeReason(t *testing.T) {
	e := newTestEnforcer(t)
	err := e.Authorize(staff3, ObjSalaries, VerbWrite)
	require.ErrorIs(t, err, domain.ErrForbidden)
	reason, ok := domain.DenialReason(err)
	require.True(t, ok)
	assert.Equal(t, "không có quyền chỉnh sửa lương", reason)
	assert.NoError(t, e.Authorize(hrCaller, ObjContracts, VerbWrite))
}

func TestEnforcerFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.csv")
	require.NoError(t, os.WriteFile(path, []byte("p, role:user, units, read\n"), 0o600))

	e, err := NewEnforcer(path, zap.NewNop())
	require.NoError(t, err)

	assert.True(t, e.Allowed(Caller{UserID: "a", Role: domain.RoleUser}, ObjUnits, VerbRead))
	assert.False(t, e.Allowed(hrCaller, ObjEmployees, VerbWrite))
}
