package resilience

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestBreakerOpensOnFailureRatio(t *testing.T) {
	ctx := context.Background()
	b := NewBreaker(4, 0.5, 50*time.Millisecond)

	for i := 0; i < 4; i++ {
		if !b.Allow(ctx) {
			t.Fatalf("closed breaker must allow request %d", i)
		}
		b.Report(ctx, false)
	}

	if b.CurrentState() != Open {
		t.Fatalf("expected open state, got %s", b.CurrentState())
	}
	if b.Allow(ctx) {
		t.Fatal("open breaker must reject before cool-off")
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	ctx := context.Background()
	b := NewBreaker(2, 0.5, 10*time.Millisecond)

	b.Report(ctx, false)
	b.Report(ctx, false)
	if b.CurrentState() != Open {
		t.Fatalf("expected open state, got %s", b.CurrentState())
	}

	time.Sleep(15 * time.Millisecond)
	if !b.Allow(ctx) {
		t.Fatal("breaker must allow a probe after cool-off")
	}
	if b.CurrentState() != HalfOpen {
		t.Fatalf("expected half-open state, got %s", b.CurrentState())
	}
	b.Report(ctx, true)
	if b.CurrentState() != Closed {
		t.Fatalf("successful probe must close the breaker, got %s", b.CurrentState())
	}
}

func TestHTTPClientRetriesUntilSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cl := HTTPClient{
		Client:      srv.Client(),
		Breaker:     NewBreaker(100, 0.9, time.Second),
		BaseBackoff: time.Millisecond,
		MaxAttempts: 5,
	}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := cl.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestHTTPClientSingleAttemptDoesNotRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cl := HTTPClient{
		Client:      srv.Client(),
		Breaker:     NewBreaker(100, 0.9, time.Second),
		MaxAttempts: 1,
	}
	req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cl.Do(context.Background(), req); err == nil {
		t.Fatal("expected error on 500 response")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("writes must never be replayed, got %d attempts", got)
	}
}
