package recibo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideFreeTier(t *testing.T) {
	now := time.Now()

	d := decide(PlanFree, 0, 3, nil, now)
	assert.True(t, d.Allowed)
	assert.Equal(t, PlanFree, d.Plan)
	assert.Equal(t, 3, d.Used)
	require.NotNil(t, d.Limit)
	assert.Equal(t, FreeDailyLimit, *d.Limit)
	assert.Empty(t, d.Message)

	d = decide(PlanFree, 0, FreeDailyLimit, nil, now)
	assert.False(t, d.Allowed)
	assert.NotEmpty(t, d.Message)
	assert.Contains(t, d.Message, "/assinar")
}

func TestDecideUltraUnlimited(t *testing.T) {
	now := time.Now()

	d := decide(PlanUltra, 99999, 0, nil, now)
	assert.True(t, d.Allowed)
	assert.Nil(t, d.Limit)
	assert.Empty(t, d.Message)

	// an active period changes nothing
	periodEnd := now.AddDate(0, 0, 10)
	d = decide(PlanUltra, 99999, 0, &periodEnd, now)
	assert.True(t, d.Allowed)
	assert.Nil(t, d.Limit)
	assert.False(t, d.InGracePeriod)
	assert.Empty(t, d.Message)
}

func TestDecideGracePeriodUltra(t *testing.T) {
	now := time.Now()
	periodEnd := now.AddDate(0, 0, -1)

	// the unlimited tier gets the same renewal warning as the capped ones
	d := decide(PlanUltra, 0, 0, &periodEnd, now)
	assert.True(t, d.Allowed)
	assert.Nil(t, d.Limit)
	assert.True(t, d.InGracePeriod)
	assert.Equal(t, -1, d.DaysUntilExpiry)
	assert.Contains(t, d.Message, "Ultra")
	assert.Contains(t, d.Message, "2 dia")
}

func TestDecideCappedPaidTier(t *testing.T) {
	now := time.Now()
	periodEnd := now.AddDate(0, 0, 10)

	d := decide(PlanBasico, 999, 0, &periodEnd, now)
	assert.True(t, d.Allowed)
	require.NotNil(t, d.Limit)
	assert.Equal(t, 1000, *d.Limit)
	assert.False(t, d.InGracePeriod)

	d = decide(PlanBasico, 1000, 0, &periodEnd, now)
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Message, "Básico")
}

func TestDecideGracePeriod(t *testing.T) {
	now := time.Now()
	periodEnd := now.AddDate(0, 0, -1)

	d := decide(PlanPro, 100, 0, &periodEnd, now)
	assert.True(t, d.Allowed, "grace period keeps service running")
	assert.True(t, d.InGracePeriod)
	assert.Equal(t, -1, d.DaysUntilExpiry)
	// one day overdue out of three grace days leaves two to renew
	assert.Contains(t, d.Message, "2 dia")
}

func TestExpiredPastGrace(t *testing.T) {
	now := time.Now()

	assert.False(t, expiredPastGrace(nil, now))

	recent := now.AddDate(0, 0, -2)
	assert.False(t, expiredPastGrace(&recent, now))

	old := now.AddDate(0, 0, -40)
	assert.True(t, expiredPastGrace(&old, now))

	boundary := now.AddDate(0, 0, -GraceDays).Add(time.Minute)
	assert.False(t, expiredPastGrace(&boundary, now))
}

func TestCeilDays(t *testing.T) {
	assert.Equal(t, 0, ceilDays(0))
	assert.Equal(t, 1, ceilDays(24*time.Hour))
	assert.Equal(t, 2, ceilDays(25*time.Hour))
	assert.Equal(t, 1, ceilDays(time.Hour))
	assert.Equal(t, -1, ceilDays(-24*time.Hour))
	assert.Equal(t, 0, ceilDays(-time.Hour))
}

func TestExpiredDowngradeSequence(t *testing.T) {
	now := time.Now()
	periodEnd := now.AddDate(0, 0, -10)

	// a basico subscription well past grace triggers the downgrade path
	require.True(t, expiredPastGrace(&periodEnd, now))

	// first evaluation after the downgrade: free rule against the live
	// today-count, flagged as expired with the notice prepended
	d := decide(PlanFree, 0, 2, nil, now)
	d.Expired = true
	d.Message = expiredNotice(PlanBasico, d.Message)

	assert.True(t, d.Allowed)
	assert.Equal(t, PlanFree, d.Plan)
	assert.Equal(t, 2, d.Used)
	assert.Contains(t, d.Message, "Básico")
	assert.Contains(t, d.Message, "Gratuito")

	// second evaluation sees a plain free subscription, no expiry residue
	d = decide(PlanFree, 0, 2, nil, now)
	assert.True(t, d.Allowed)
	assert.False(t, d.Expired)
	assert.Empty(t, d.Message)
}

func TestExpiredNotice(t *testing.T) {
	msg := expiredNotice(PlanPro, "")
	assert.Contains(t, msg, "Pro")
	assert.Contains(t, msg, "Gratuito")

	msg = expiredNotice(PlanBasico, "limite atingido")
	assert.Contains(t, msg, "limite atingido")
}
