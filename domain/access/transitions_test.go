package access

import (
	"testing"

	"github.com/akeren/telecheck/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		from   models.AccessStatus
		action Action
		want   models.AccessStatus
		ok     bool
	}{
		{models.AccessStatusNeedsEntry, ActionSubmit, models.AccessStatusPendingApproval, true},
		{models.AccessStatusPendingApproval, ActionApprove, models.AccessStatusApproved, true},
		{models.AccessStatusPendingApproval, ActionReject, models.AccessStatusRevoked, true},
		{models.AccessStatusApproved, ActionRevoke, models.AccessStatusRevoked, true},
		{models.AccessStatusRevoked, ActionReevaluate, models.AccessStatusPendingApproval, true},
		{models.AccessStatusApproved, ActionApprove, "", false},
		{models.AccessStatusRevoked, ActionApprove, "", false},
		{models.AccessStatusPendingApproval, ActionRevoke, "", false},
		{models.AccessStatusNeedsEntry, ActionApprove, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			got, ok := NextStatus(tt.from, tt.action)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestViewFor(t *testing.T) {
	assert.Equal(t, ViewRequestAccess, ViewFor(models.AccessStatusNeedsEntry, false))
	assert.Equal(t, ViewPendingApproval, ViewFor(models.AccessStatusPendingApproval, false))
	assert.Equal(t, ViewRevoked, ViewFor(models.AccessStatusRevoked, true))
	assert.Equal(t, ViewChecker, ViewFor(models.AccessStatusApproved, false))
	assert.Equal(t, ViewAdmin, ViewFor(models.AccessStatusApproved, true))
}

func TestParseAction(t *testing.T) {
	action, ok := ParseAction("reevaluate")
	assert.True(t, ok)
	assert.Equal(t, ActionReevaluate, action)

	_, ok = ParseAction("submit")
	assert.False(t, ok)
}

func TestPolicy(t *testing.T) {
	p := Policy{AdminEmail: "Admin@TeleCheck.bot", AllowedDomains: []string{"corp.io"}}

	assert.True(t, p.IsAdmin(" admin@telecheck.bot "))
	assert.True(t, p.DomainAllowed("x@CORP.io"))
	assert.False(t, p.DomainAllowed("x@corp.io.evil"))
	assert.Equal(t, models.AccessStatusApproved, p.InitialStatus("admin@telecheck.bot"))
	assert.Equal(t, models.AccessStatusPendingApproval, p.InitialStatus("x@corp.io"))

	p.AdminCaseSensitive = true
	assert.False(t, p.IsAdmin("admin@telecheck.bot"))
	assert.True(t, p.IsAdmin("Admin@TeleCheck.bot"))
	assert.True(t, p.ShadowsAdmin("admin@telecheck.bot"))
	assert.False(t, p.ShadowsAdmin("Admin@TeleCheck.bot"))
	assert.False(t, p.ShadowsAdmin("x@corp.io"))

	p.AutoApproveAllowed = true
	assert.Equal(t, models.AccessStatusApproved, p.InitialStatus("x@corp.io"))

	open := Policy{AdminEmail: "a@b.c", AutoApproveAllowed: true}
	assert.True(t, open.DomainAllowed("anyone@anywhere.org"))
	assert.Equal(t, models.AccessStatusPendingApproval, open.InitialStatus("anyone@anywhere.org"))
}
