package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docsift/docsift/internal/extract"
)

func reqs(n int) []extract.Request {
	out := make([]extract.Request, n)
	for i := range out {
		out[i] = extract.Request{Data: []byte(fmt.Sprintf("doc-%d", i)), Format: "text/plain"}
	}
	return out
}

func TestRun_PreservesInputOrder(t *testing.T) {
	// Items complete in reverse order; outcomes must still follow input order.
	requests := reqs(5)
	out := Run(context.Background(), requests, 5, func(_ context.Context, req extract.Request) (*extract.Result, error) {
		idx := int(req.Data[len(req.Data)-1] - '0')
		time.Sleep(time.Duration(5-idx) * 10 * time.Millisecond)
		return &extract.Result{Content: string(req.Data)}, nil
	})
	if len(out) != len(requests) {
		t.Fatalf("expected %d outcomes, got %d", len(requests), len(out))
	}
	for i, o := range out {
		if o.Err != nil {
			t.Fatalf("item %d: %v", i, o.Err)
		}
		if want := fmt.Sprintf("doc-%d", i); o.Result.Content != want {
			t.Fatalf("item %d: expected %q, got %q", i, want, o.Result.Content)
		}
	}
}

func TestRun_FailureIsolation(t *testing.T) {
	requests := reqs(5)
	boom := errors.New("corrupted input")
	out := Run(context.Background(), requests, 2, func(_ context.Context, req extract.Request) (*extract.Result, error) {
		if string(req.Data) == "doc-2" {
			return nil, boom
		}
		return &extract.Result{Content: string(req.Data)}, nil
	})
	failed := 0
	for i, o := range out {
		if o.Err != nil {
			failed++
			if i != 2 || !errors.Is(o.Err, boom) {
				t.Fatalf("unexpected failure at %d: %v", i, o.Err)
			}
			continue
		}
		if o.Result == nil {
			t.Fatalf("item %d has neither result nor error", i)
		}
	}
	if failed != 1 {
		t.Fatalf("expected exactly 1 failure among 5, got %d", failed)
	}
}

func TestRun_BoundedParallelism(t *testing.T) {
	const workers = 3
	var inFlight, peak atomic.Int64
	var mu sync.Mutex
	out := Run(context.Background(), reqs(20), workers, func(context.Context, extract.Request) (*extract.Result, error) {
		cur := inFlight.Add(1)
		mu.Lock()
		if cur > peak.Load() {
			peak.Store(cur)
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return &extract.Result{}, nil
	})
	if len(out) != 20 {
		t.Fatalf("expected 20 outcomes, got %d", len(out))
	}
	if p := peak.Load(); p > workers {
		t.Fatalf("observed %d concurrent items, cap is %d", p, workers)
	}
}

func TestRun_CancellationMarksRemainingItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var started atomic.Int64
	out := Run(ctx, reqs(10), 1, func(ctx context.Context, _ extract.Request) (*extract.Result, error) {
		if started.Add(1) == 2 {
			cancel()
		}
		return &extract.Result{}, nil
	})
	cancelled := 0
	for _, o := range out {
		if errors.Is(o.Err, extract.ErrCancelled) {
			cancelled++
		}
	}
	if cancelled == 0 {
		t.Fatal("expected unstarted items to report ErrCancelled")
	}
	if int(started.Load())+cancelled != 10 {
		t.Fatalf("every item needs an outcome: started=%d cancelled=%d", started.Load(), cancelled)
	}
}

func TestRun_TimeoutMarksRemainingItems(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	out := Run(ctx, reqs(6), 1, func(context.Context, extract.Request) (*extract.Result, error) {
		time.Sleep(15 * time.Millisecond)
		return &extract.Result{}, nil
	})
	timedOut := 0
	for _, o := range out {
		if errors.Is(o.Err, extract.ErrTimeout) {
			timedOut++
		}
	}
	if timedOut == 0 {
		t.Fatal("expected items past the deadline to report ErrTimeout")
	}
}

func TestRun_EmptyBatch(t *testing.T) {
	out := Run(context.Background(), nil, 4, func(context.Context, extract.Request) (*extract.Result, error) {
		t.Error("fn must not run for empty batch")
		return nil, nil
	})
	if len(out) != 0 {
		t.Fatalf("expected empty outcomes, got %d", len(out))
	}
}
