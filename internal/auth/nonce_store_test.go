package auth

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"
)

var hexNonce = regexp.MustCompile(`^[a-f0-9]{64}$`)

func TestIssueNonceShape(t *testing.T) {
	t.Parallel()

	store := NewMemoryNonceStore()
	ch, err := store.Issue(context.Background(), "GWALLET")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if !hexNonce.MatchString(ch.Nonce) {
		t.Fatalf("nonce is not 64 lowercase hex chars: %q", ch.Nonce)
	}
	ttl := ch.ExpiresAt.Sub(ch.CreatedAt)
	if ttl != NonceTTL {
		t.Fatalf("expected ttl %v, got %v", NonceTTL, ttl)
	}
}

func TestNonceUniqueness(t *testing.T) {
	t.Parallel()

	store := NewMemoryNonceStore()
	ctx := context.Background()
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		ch, err := store.Issue(ctx, "GWALLET")
		if err != nil {
			t.Fatalf("issue %d: %v", i, err)
		}
		if _, dup := seen[ch.Nonce]; dup {
			t.Fatalf("duplicate nonce after %d issues: %s", i, ch.Nonce)
		}
		seen[ch.Nonce] = struct{}{}
	}
}

func TestConsumeUnknownNonce(t *testing.T) {
	t.Parallel()

	store := NewMemoryNonceStore()
	_, err := store.Consume(context.Background(), "GWALLET", "deadbeef")
	if !errors.Is(err, ErrNonceNotFound) {
		t.Fatalf("expected ErrNonceNotFound, got %v", err)
	}
}

func TestConsumeWrongWallet(t *testing.T) {
	t.Parallel()

	store := NewMemoryNonceStore()
	ctx := context.Background()
	ch, err := store.Issue(ctx, "GWALLETA")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := store.Consume(ctx, "GWALLETB", ch.Nonce); !errors.Is(err, ErrNonceNotFound) {
		t.Fatalf("expected ErrNonceNotFound for wrong wallet, got %v", err)
	}
}

func TestConsumeAtMostOnce(t *testing.T) {
	t.Parallel()

	store := NewMemoryNonceStore()
	ctx := context.Background()
	ch, err := store.Issue(ctx, "GWALLET")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const callers = 8
	errs := make([]error, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = store.Consume(ctx, "GWALLET", ch.Nonce)
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrNonceNotFound):
		default:
			t.Fatalf("caller %d: unexpected error %v", i, err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful consumption, got %d", succeeded)
	}
}

func TestConsumeExpiryBoundary(t *testing.T) {
	t.Parallel()

	store := NewMemoryNonceStore().(*memoryNonceStore)
	ctx := context.Background()

	fresh, err := store.Issue(ctx, "GWALLET")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	stale, err := store.Issue(ctx, "GWALLET")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	store.mu.Lock()
	store.challenges[nonceKey("GWALLET", fresh.Nonce)].ExpiresAt = time.Now().UTC().Add(time.Second)
	store.challenges[nonceKey("GWALLET", stale.Nonce)].ExpiresAt = time.Now().UTC().Add(-time.Second)
	store.mu.Unlock()

	if _, err := store.Consume(ctx, "GWALLET", fresh.Nonce); err != nil {
		t.Fatalf("challenge just inside its window should consume, got %v", err)
	}
	if _, err := store.Consume(ctx, "GWALLET", stale.Nonce); !errors.Is(err, ErrNonceExpired) {
		t.Fatalf("expected ErrNonceExpired, got %v", err)
	}

	// An expired consumption still burns the challenge.
	if _, err := store.Consume(ctx, "GWALLET", stale.Nonce); !errors.Is(err, ErrNonceNotFound) {
		t.Fatalf("expected burnt challenge to report ErrNonceNotFound, got %v", err)
	}
}
