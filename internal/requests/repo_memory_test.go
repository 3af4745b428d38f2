package requests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryClaimProcessingIsExclusive(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	now := time.Now().UTC()
	err := repo.Create(ctx, Request{ID: "req-1", Status: StatusPending, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	claims := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ClaimProcessing(ctx, "req-1", StatusPending)
			claims <- err
		}()
	}
	wg.Wait()
	close(claims)

	won := 0
	for err := range claims {
		if err == nil {
			won++
			continue
		}
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one winning claim, got %d", won)
	}
}

func TestMemoryClaimClearsErrorDetail(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	now := time.Now().UTC()
	if err := repo.Create(ctx, Request{ID: "req-1", Status: StatusPending, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.ClaimProcessing(ctx, "req-1", StatusPending); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := repo.Fail(ctx, "req-1", ErrorCodeStorage, "db down", now); err != nil {
		t.Fatalf("fail: %v", err)
	}

	claimed, err := repo.ClaimProcessing(ctx, "req-1", StatusFailed)
	if err != nil {
		t.Fatalf("re-claim: %v", err)
	}
	if claimed.ErrorCode != "" || claimed.ErrorMessage != "" {
		t.Fatalf("expected error detail cleared, got %q/%q", claimed.ErrorCode, claimed.ErrorMessage)
	}
}
