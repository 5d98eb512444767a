package backend

import (
	"testing"
	"time"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := NewBreaker()
	for i := 0; i < b.failureThreshold; i++ {
		if !b.Allow() {
			t.Fatalf("breaker rejected call %d while closed", i)
		}
		b.RecordFailure()
	}
	if b.State() != BreakerOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	if b.Allow() {
		t.Error("open breaker admitted a call before cooldown")
	}
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	now := time.Now()
	b := NewBreaker()
	b.now = func() time.Time { return now }

	for i := 0; i < b.failureThreshold; i++ {
		b.RecordFailure()
	}

	// Cooldown elapses; the next call is a probe.
	now = now.Add(b.cooldown + time.Second)
	if !b.Allow() {
		t.Fatal("breaker did not admit a probe after cooldown")
	}
	if b.State() != BreakerHalfOpen {
		t.Fatalf("state = %v, want half-open", b.State())
	}

	for i := 0; i < b.successThreshold; i++ {
		b.RecordSuccess()
	}
	if b.State() != BreakerClosed {
		t.Fatalf("state = %v, want closed after probes", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker()
	b.now = func() time.Time { return now }

	for i := 0; i < b.failureThreshold; i++ {
		b.RecordFailure()
	}
	now = now.Add(b.cooldown + time.Second)
	b.Allow()
	b.RecordFailure()

	if b.State() != BreakerOpen {
		t.Fatalf("state = %v, want open after failed probe", b.State())
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker()
	for i := 0; i < b.failureThreshold-1; i++ {
		b.RecordFailure()
	}
	b.RecordSuccess()
	b.RecordFailure()
	if b.State() != BreakerClosed {
		t.Fatalf("state = %v, want closed (count was reset)", b.State())
	}
}
