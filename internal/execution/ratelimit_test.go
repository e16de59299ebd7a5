package execution

import (
	"context"
	"testing"
	"time"
)

func TestWeightLimiterAllowsUpToBudgetWithoutWaiting(t *testing.T) {
	w := NewWeightLimiter()
	ctx := context.Background()

	start := time.Now()
	if err := w.Wait(ctx, exchangeWeightPerMinute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("expected full budget to pass immediately, took %v", elapsed)
	}
}

func TestWeightLimiterBlocksUntilWindowResets(t *testing.T) {
	w := NewWeightLimiter()
	ctx := context.Background()

	if err := w.Wait(ctx, exchangeWeightPerMinute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := w.Wait(ctx, 1)
	if err == nil {
		t.Fatal("expected the next call to block past a 100ms context deadline, got nil error")
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Fatalf("expected call to block close to the deadline, returned after %v", elapsed)
	}
}
