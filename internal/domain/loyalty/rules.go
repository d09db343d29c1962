package loyalty

import (
	"math"
	"time"
)

// FestiveActive reports whether the festive multiplier applies at now.
// The flag alone is not enough: when a window is configured, now must
// fall inside it.
func FestiveActive(s Settings, now time.Time) bool {
	if !s.FestiveActive {
		return false
	}
	if s.FestiveStart != nil && now.Before(*s.FestiveStart) {
		return false
	}
	if s.FestiveEnd != nil && now.After(*s.FestiveEnd) {
		return false
	}
	return true
}

// CoinsEarned computes coins for a purchase amount: each multiplier is
// applied with an integer floor between steps, then the result is
// clamped to MaxCoinsPerOrder when set. Returns 0 when the system is
// disabled.
func CoinsEarned(s Settings, amount float64, now time.Time) int64 {
	if !s.SystemEnabled || amount <= 0 {
		return 0
	}
	coins := math.Floor(amount * s.CoinsPerRupee)
	coins = math.Floor(coins * s.GlobalMultiplier)
	if FestiveActive(s, now) {
		coins = math.Floor(coins * s.FestiveMultiplier)
	}
	earned := int64(coins)
	if earned < 0 {
		earned = 0
	}
	if s.MaxCoinsPerOrder != nil && earned > *s.MaxCoinsPerOrder {
		earned = *s.MaxCoinsPerOrder
	}
	return earned
}

// CoinsEarnedForProduct applies the per-product override: a fixed
// per-purchase grant when configured, otherwise the amount-based rule.
// A product with earning disabled yields 0 regardless of settings.
func CoinsEarnedForProduct(s Settings, ps ProductSettings, amount float64, now time.Time) int64 {
	if !s.SystemEnabled {
		return 0
	}
	if !ps.EarningEnabled {
		return 0
	}
	if ps.CoinsPerPurchase > 0 {
		earned := ps.CoinsPerPurchase
		if s.MaxCoinsPerOrder != nil && earned > *s.MaxCoinsPerOrder {
			earned = *s.MaxCoinsPerOrder
		}
		return earned
	}
	return CoinsEarned(s, amount, now)
}

// RedeemCheck explains why a redemption is not allowed, or returns nil.
func RedeemCheck(s Settings, w Wallet, required int64) error {
	if !s.SystemEnabled {
		return ErrSystemDisabled
	}
	if required <= 0 {
		return ErrInvalidAmount
	}
	if required < s.MinCoinsToRedeem {
		return ErrBelowRedeemMinimum
	}
	if w.Available < required {
		return ErrInsufficientCoins
	}
	return nil
}

// CanRedeem is the pure predicate form of RedeemCheck.
func CanRedeem(s Settings, w Wallet, required int64) bool {
	return RedeemCheck(s, w, required) == nil
}
