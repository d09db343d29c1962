package metrics

import (
	"sync/atomic"
	"time"
)

// Collector tracks request-level and domain-level counters with atomics.
// One instance is shared by the middleware and the services.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	coinsEarned       uint64
	coinsRedeemed     uint64
	coinsExpired      uint64
	salariesGenerated uint64
	salariesPaid      uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) AddCoinsEarned(coins int64) {
	if coins > 0 {
		atomic.AddUint64(&c.coinsEarned, uint64(coins))
	}
}

func (c *Collector) AddCoinsRedeemed(coins int64) {
	if coins > 0 {
		atomic.AddUint64(&c.coinsRedeemed, uint64(coins))
	}
}

func (c *Collector) AddCoinsExpired(coins int64) {
	if coins > 0 {
		atomic.AddUint64(&c.coinsExpired, uint64(coins))
	}
}

func (c *Collector) IncSalariesGenerated() {
	atomic.AddUint64(&c.salariesGenerated, 1)
}

func (c *Collector) IncSalariesPaid() {
	atomic.AddUint64(&c.salariesPaid, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":     total,
		"errorsTotal":       atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal":  atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":     avg,
		"coinsEarned":       atomic.LoadUint64(&c.coinsEarned),
		"coinsRedeemed":     atomic.LoadUint64(&c.coinsRedeemed),
		"coinsExpired":      atomic.LoadUint64(&c.coinsExpired),
		"salariesGenerated": atomic.LoadUint64(&c.salariesGenerated),
		"salariesPaid":      atomic.LoadUint64(&c.salariesPaid),
	}
}
