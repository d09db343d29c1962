package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()

	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 0)
	c.AddCoinsEarned(50)
	c.AddCoinsRedeemed(20)
	c.AddCoinsExpired(-5) // negative amounts are ignored
	c.IncSalariesGenerated()
	c.IncSalariesPaid()

	snap := c.Snapshot()
	if snap["requestsTotal"] != uint64(3) {
		t.Fatalf("requestsTotal = %v, want 3", snap["requestsTotal"])
	}
	if snap["errorsTotal"] != uint64(1) {
		t.Fatalf("errorsTotal = %v, want 1", snap["errorsTotal"])
	}
	if snap["rateLimitedTotal"] != uint64(1) {
		t.Fatalf("rateLimitedTotal = %v, want 1", snap["rateLimitedTotal"])
	}
	if snap["coinsEarned"] != uint64(50) {
		t.Fatalf("coinsEarned = %v, want 50", snap["coinsEarned"])
	}
	if snap["coinsExpired"] != uint64(0) {
		t.Fatalf("coinsExpired = %v, want 0", snap["coinsExpired"])
	}
	if snap["salariesGenerated"] != uint64(1) || snap["salariesPaid"] != uint64(1) {
		t.Fatalf("salary counters = %v / %v, want 1 / 1", snap["salariesGenerated"], snap["salariesPaid"])
	}
}
