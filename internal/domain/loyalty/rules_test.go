package loyalty

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settingsFixture() Settings {
	s := DefaultSettings()
	s.CoinsPerRupee = 0.10
	s.GlobalMultiplier = 1.00
	s.FestiveMultiplier = 2.00
	return s
}

func TestCoinsEarnedFloorsBetweenSteps(t *testing.T) {
	now := time.Now()

	s := settingsFixture()
	s.FestiveActive = true

	// 500 * 0.10 = 50, * 1.0 = 50, * 2.0 = 100
	assert.Equal(t, int64(100), CoinsEarned(s, 500, now))

	// 999.99 * 0.10 = 99.999 -> floor 99 before the next multiplier
	s.GlobalMultiplier = 1.5
	s.FestiveActive = false
	// floor(99 * 1.5) = 148, not floor(99.999*1.5)=149
	assert.Equal(t, int64(148), CoinsEarned(s, 999.99, now))
}

func TestCoinsEarnedClampedToMaxPerOrder(t *testing.T) {
	s := settingsFixture()
	maxPerOrder := int64(30)
	s.MaxCoinsPerOrder = &maxPerOrder

	assert.Equal(t, int64(30), CoinsEarned(s, 5000, time.Now()))
}

func TestCoinsEarnedDisabledOrNonPositive(t *testing.T) {
	now := time.Now()

	s := settingsFixture()
	s.SystemEnabled = false
	assert.Zero(t, CoinsEarned(s, 500, now))

	s = settingsFixture()
	assert.Zero(t, CoinsEarned(s, 0, now))
	assert.Zero(t, CoinsEarned(s, -10, now))
}

func TestFestiveWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -1)
	end := now.AddDate(0, 0, 1)

	s := settingsFixture()
	s.FestiveActive = true
	s.FestiveStart = &start
	s.FestiveEnd = &end
	assert.True(t, FestiveActive(s, now))
	assert.False(t, FestiveActive(s, end.AddDate(0, 0, 1)))
	assert.False(t, FestiveActive(s, start.AddDate(0, 0, -2)))

	// Flag off wins even inside the window.
	s.FestiveActive = false
	assert.False(t, FestiveActive(s, now))

	// Flag on without a window is always active.
	s.FestiveActive = true
	s.FestiveStart = nil
	s.FestiveEnd = nil
	assert.True(t, FestiveActive(s, now))
}

func TestCoinsEarnedForProduct(t *testing.T) {
	now := time.Now()
	s := settingsFixture()

	ps := ProductSettings{ProductID: "p1", EarningEnabled: true}
	// No override falls through to the amount-based rule.
	assert.Equal(t, CoinsEarned(s, 500, now), CoinsEarnedForProduct(s, ps, 500, now))

	ps.CoinsPerPurchase = 25
	assert.Equal(t, int64(25), CoinsEarnedForProduct(s, ps, 500, now))

	maxPerOrder := int64(20)
	s.MaxCoinsPerOrder = &maxPerOrder
	assert.Equal(t, int64(20), CoinsEarnedForProduct(s, ps, 500, now))

	ps.EarningEnabled = false
	assert.Zero(t, CoinsEarnedForProduct(s, ps, 500, now))
}

func TestRedeemCheck(t *testing.T) {
	s := settingsFixture()
	s.MinCoinsToRedeem = 10
	wallet := Wallet{UserID: "u1", TotalEarned: 100, TotalUsed: 40, Available: 60}

	require.NoError(t, RedeemCheck(s, wallet, 60))
	require.NoError(t, RedeemCheck(s, wallet, 10))

	assert.ErrorIs(t, RedeemCheck(s, wallet, 61), ErrInsufficientCoins)
	assert.ErrorIs(t, RedeemCheck(s, wallet, 9), ErrBelowRedeemMinimum)
	assert.ErrorIs(t, RedeemCheck(s, wallet, 0), ErrInvalidAmount)
	assert.ErrorIs(t, RedeemCheck(s, wallet, -5), ErrInvalidAmount)

	s.SystemEnabled = false
	assert.ErrorIs(t, RedeemCheck(s, wallet, 20), ErrSystemDisabled)

	s.SystemEnabled = true
	assert.True(t, CanRedeem(s, wallet, 20))
	assert.False(t, CanRedeem(s, wallet, 1000))
}
