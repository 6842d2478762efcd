package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccountCapabilities(t *testing.T) {
	admin := &Account{Role: RoleAdmin}
	operator := &Account{Role: RoleOperator}

	for _, capability := range []Capability{
		CapabilityManageAccounts,
		CapabilityViewAnalytics,
		CapabilityReadAnyUpload,
		CapabilityViewQuizAnswers,
	} {
		assert.True(t, admin.Can(capability), capability)
		assert.False(t, operator.Can(capability), capability)
	}

	var nobody *Account
	assert.False(t, nobody.Can(CapabilityViewAnalytics))
	assert.False(t, (&Account{Role: "SUPERUSER"}).Can(CapabilityViewAnalytics))
}

func TestAccountIsApproved(t *testing.T) {
	assert.True(t, (&Account{Status: StatusApproved}).IsApproved())
	assert.False(t, (&Account{Status: StatusPending}).IsApproved())
	assert.False(t, (&Account{Status: StatusRejected}).IsApproved())
}

func TestSessionActiveAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: now}

	assert.True(t, s.ActiveAt(now.Add(-time.Second)))
	assert.False(t, s.ActiveAt(now))
	assert.False(t, s.ActiveAt(now.Add(time.Second)))

	revoked := now.Add(-time.Hour)
	s = &Session{ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}
	assert.False(t, s.ActiveAt(now))
}

func TestIsProfileField(t *testing.T) {
	assert.True(t, IsProfileField("name"))
	assert.True(t, IsProfileField("restaurant_name"))
	assert.False(t, IsProfileField("status"))
	assert.False(t, IsProfileField("role"))
}
