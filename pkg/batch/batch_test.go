package batch

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prodmap/prodmap/pkg/catalog"
)

// scriptedProcessor fails or panics for named items and succeeds otherwise.
type scriptedProcessor struct {
	failNames  map[string]string // name -> error message
	panicNames map[string]bool
	delay      time.Duration

	mu         sync.Mutex
	concurrent int
	peak       int
}

func (p *scriptedProcessor) Run(_ context.Context, item catalog.Item) *catalog.Profile {
	p.mu.Lock()
	p.concurrent++
	if p.concurrent > p.peak {
		p.peak = p.concurrent
	}
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.concurrent--
		p.mu.Unlock()
	}()

	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.panicNames[item.Name] {
		panic("boom: " + item.Name)
	}
	if msg, ok := p.failNames[item.Name]; ok {
		return catalog.FailedProfile(item.Name, 0, &failure{msg})
	}
	return &catalog.Profile{ProductName: item.Name, Status: catalog.StatusSuccess}
}

type failure struct{ msg string }

func (f *failure) Error() string { return f.msg }

func items(names ...string) []catalog.Item {
	out := make([]catalog.Item, len(names))
	for i, n := range names {
		out[i] = catalog.Item{Name: n, Folder: "testdata/" + n}
	}
	return out
}

func TestRunnerOnePerItemInOrder(t *testing.T) {
	p := &scriptedProcessor{failNames: map[string]string{"b": "no images"}}
	runner := NewRunner(p, WithConcurrency(2))

	profiles := runner.Run(context.Background(), items("a", "b", "c", "d"))

	if len(profiles) != 4 {
		t.Fatalf("got %d profiles, want 4", len(profiles))
	}
	for i, name := range []string{"a", "b", "c", "d"} {
		if profiles[i] == nil {
			t.Fatalf("profiles[%d] is nil", i)
		}
		if profiles[i].ProductName != name {
			t.Errorf("profiles[%d] = %q, want %q (item order preserved)", i, profiles[i].ProductName, name)
		}
	}
	if profiles[1].Status != catalog.StatusFailed {
		t.Errorf("b status = %s, want failed", profiles[1].Status)
	}
	if profiles[0].Status != catalog.StatusSuccess || profiles[3].Status != catalog.StatusSuccess {
		t.Error("failure of one item affected its neighbors")
	}
}

func TestRunnerPanicIsolation(t *testing.T) {
	p := &scriptedProcessor{panicNames: map[string]bool{"bad": true}}
	runner := NewRunner(p, WithConcurrency(2))

	profiles := runner.Run(context.Background(), items("ok1", "bad", "ok2"))

	if profiles[1].Status != catalog.StatusFailed {
		t.Fatalf("panicking item status = %s, want failed", profiles[1].Status)
	}
	if !strings.Contains(profiles[1].Error, "internal error") {
		t.Errorf("error = %q, want an internal error message", profiles[1].Error)
	}
	if profiles[0].Status != catalog.StatusSuccess || profiles[2].Status != catalog.StatusSuccess {
		t.Error("panic leaked into other items")
	}
}

func TestRunnerConcurrencyBound(t *testing.T) {
	p := &scriptedProcessor{delay: 20 * time.Millisecond}
	runner := NewRunner(p, WithConcurrency(2))

	runner.Run(context.Background(), items("a", "b", "c", "d", "e", "f"))

	if p.peak > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", p.peak)
	}
	if p.peak < 2 {
		t.Logf("peak concurrency = %d; pool never saturated, not a failure", p.peak)
	}
}

func TestRunnerCancellation(t *testing.T) {
	var started atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())

	p := &scriptedProcessor{delay: 10 * time.Millisecond}
	runner := NewRunner(&countingProcessor{inner: p, started: &started, cancelAfter: 2, cancel: cancel},
		WithConcurrency(1))

	profiles := runner.Run(ctx, items("a", "b", "c", "d", "e"))

	if len(profiles) != 5 {
		t.Fatalf("got %d profiles, want 5", len(profiles))
	}
	for i, profile := range profiles {
		if profile == nil {
			t.Fatalf("profiles[%d] is nil after cancellation", i)
		}
	}
	failed := 0
	for _, profile := range profiles {
		if profile.Status == catalog.StatusFailed {
			failed++
		}
	}
	if failed == 0 {
		t.Error("cancellation produced no failed profiles")
	}
}

// countingProcessor cancels the batch context after a fixed number of runs.
type countingProcessor struct {
	inner       Processor
	started     *atomic.Int64
	cancelAfter int64
	cancel      context.CancelFunc
}

func (c *countingProcessor) Run(ctx context.Context, item catalog.Item) *catalog.Profile {
	if c.started.Add(1) == c.cancelAfter {
		c.cancel()
	}
	return c.inner.Run(ctx, item)
}

func TestRunnerDefaultConcurrency(t *testing.T) {
	r := NewRunner(&scriptedProcessor{}, WithConcurrency(0))
	if r.concurrency != DefaultConcurrency {
		t.Errorf("concurrency = %d, want default %d", r.concurrency, DefaultConcurrency)
	}
}

func TestRunnerEmptyBatch(t *testing.T) {
	profiles := NewRunner(&scriptedProcessor{}).Run(context.Background(), nil)
	if len(profiles) != 0 {
		t.Errorf("got %d profiles for an empty batch", len(profiles))
	}
}
