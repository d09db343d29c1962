package loyalty

import "errors"

var (
	ErrSystemDisabled     = errors.New("loyalty system is disabled")
	ErrWalletNotFound     = errors.New("coin wallet not found")
	ErrInsufficientCoins  = errors.New("insufficient coins")
	ErrBelowRedeemMinimum = errors.New("redemption below minimum coin threshold")
	ErrInvalidAmount      = errors.New("coin amount must be positive")
	ErrEarningDisabled    = errors.New("coin earning disabled for product")
)
