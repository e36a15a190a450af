package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"khavho-commerce/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// blockingLister hands out one result per ListAll call, in order, but
// only after the matching release channel is closed. It lets a test
// hold an early load open while a later one completes.
type blockingLister struct {
	mu      sync.Mutex
	calls   int
	results []listResult
}

type listResult struct {
	products []domain.Product
	err      error
	release  chan struct{}
}

func (l *blockingLister) ListAll(ctx context.Context) ([]domain.Product, error) {
	l.mu.Lock()
	if l.calls >= len(l.results) {
		l.mu.Unlock()
		return nil, errors.New("unexpected ListAll call")
	}
	r := l.results[l.calls]
	l.calls++
	l.mu.Unlock()

	if r.release != nil {
		<-r.release
	}
	return r.products, r.err
}

func makeProducts(names ...string) []domain.Product {
	out := make([]domain.Product, len(names))
	for i, name := range names {
		out[i] = domain.Product{ID: uuid.New(), Name: name, Category: "general"}
	}
	return out
}

func TestSnapshotEmptyBeforeFirstLoad(t *testing.T) {
	cache := NewCache(&blockingLister{}, zap.NewNop())

	if cache.Loaded() {
		t.Error("Expected Loaded to be false before any load")
	}
	if got := cache.Snapshot(); len(got) != 0 {
		t.Errorf("Expected empty snapshot, got %d products", len(got))
	}
	if _, ok := cache.Lookup(uuid.New()); ok {
		t.Error("Expected Lookup to miss on empty cache")
	}
}

func TestLoadReplacesSnapshotWholesale(t *testing.T) {
	first := makeProducts("Drill", "Saw")
	second := makeProducts("Drill", "Saw", "Sander")
	lister := &blockingLister{results: []listResult{
		{products: first},
		{products: second},
	}}
	cache := NewCache(lister, zap.NewNop())
	ctx := context.Background()

	if err := cache.Load(ctx); err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	if !cache.Loaded() {
		t.Error("Expected Loaded after first load")
	}
	if got := cache.Snapshot(); len(got) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(got))
	}

	if err := cache.Load(ctx); err != nil {
		t.Fatalf("Second load failed: %v", err)
	}
	got := cache.Snapshot()
	if len(got) != 3 {
		t.Fatalf("Expected 3 products, got %d", len(got))
	}
	for i, p := range second {
		if got[i].ID != p.ID {
			t.Errorf("Position %d: expected %s, got %s", i, p.Name, got[i].Name)
		}
	}
	if _, ok := cache.Lookup(second[2].ID); !ok {
		t.Error("Expected Lookup hit for newly loaded product")
	}
}

func TestFailedLoadKeepsLastGoodSnapshot(t *testing.T) {
	good := makeProducts("Drill")
	loadErr := errors.New("connection refused")
	lister := &blockingLister{results: []listResult{
		{products: good},
		{err: loadErr},
	}}
	cache := NewCache(lister, zap.NewNop())
	ctx := context.Background()

	if err := cache.Load(ctx); err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	if err := cache.Load(ctx); err == nil {
		t.Fatal("Expected second load to fail")
	}

	if got := cache.Snapshot(); len(got) != 1 || got[0].ID != good[0].ID {
		t.Errorf("Expected last good snapshot retained, got %+v", got)
	}
	if !cache.Loaded() {
		t.Error("Expected Loaded to remain true after a failed refresh")
	}
	if !errors.Is(cache.LastError(), loadErr) {
		t.Errorf("Expected recorded load error, got %v", cache.LastError())
	}
}

func TestLastErrorClearedOnRecovery(t *testing.T) {
	lister := &blockingLister{results: []listResult{
		{err: errors.New("timeout")},
		{products: makeProducts("Drill")},
	}}
	cache := NewCache(lister, zap.NewNop())
	ctx := context.Background()

	if err := cache.Load(ctx); err == nil {
		t.Fatal("Expected first load to fail")
	}
	if err := cache.Load(ctx); err != nil {
		t.Fatalf("Second load failed: %v", err)
	}
	if cache.LastError() != nil {
		t.Errorf("Expected LastError cleared after recovery, got %v", cache.LastError())
	}
}

func TestSlowLoadCannotOverwriteNewerSnapshot(t *testing.T) {
	stale := makeProducts("Old drill")
	fresh := makeProducts("New drill", "New saw")
	releaseFirst := make(chan struct{})
	lister := &blockingLister{results: []listResult{
		{products: stale, release: releaseFirst},
		{products: fresh},
	}}
	cache := NewCache(lister, zap.NewNop())
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() { firstDone <- cache.Load(ctx) }()

	// Wait until the first load has taken its sequence number and is
	// blocked inside ListAll.
	for {
		lister.mu.Lock()
		started := lister.calls == 1
		lister.mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if err := cache.Load(ctx); err != nil {
		t.Fatalf("Second load failed: %v", err)
	}

	close(releaseFirst)
	if err := <-firstDone; err != nil {
		t.Fatalf("First load returned error: %v", err)
	}

	got := cache.Snapshot()
	if len(got) != 2 {
		t.Fatalf("Expected the newer snapshot to survive, got %d products", len(got))
	}
	if got[0].ID != fresh[0].ID {
		t.Errorf("Expected newer snapshot, got %s", got[0].Name)
	}
	if _, ok := cache.Lookup(stale[0].ID); ok {
		t.Error("Stale snapshot leaked into the id index")
	}
}

func TestSubscriberNotifiedOnAcceptedLoadsOnly(t *testing.T) {
	lister := &blockingLister{results: []listResult{
		{products: makeProducts("Drill")},
		{err: errors.New("timeout")},
		{products: makeProducts("Drill", "Saw")},
	}}
	cache := NewCache(lister, zap.NewNop())
	ctx := context.Background()

	var notifications [][]domain.Product
	cache.Subscribe(func(snapshot []domain.Product) {
		notifications = append(notifications, snapshot)
	})

	_ = cache.Load(ctx)
	_ = cache.Load(ctx)
	_ = cache.Load(ctx)

	if len(notifications) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(notifications))
	}
	if len(notifications[0]) != 1 || len(notifications[1]) != 2 {
		t.Errorf("Notifications carried wrong snapshots: %d, %d", len(notifications[0]), len(notifications[1]))
	}
}

func TestCategoriesFirstSeenOrder(t *testing.T) {
	products := []domain.Product{
		{ID: uuid.New(), Name: "Drill", Category: "power-tools"},
		{ID: uuid.New(), Name: "Breaker", Category: "electrical"},
		{ID: uuid.New(), Name: "Saw", Category: "power-tools"},
		{ID: uuid.New(), Name: "Cable", Category: "electrical"},
		{ID: uuid.New(), Name: "Pump", Category: "industrial"},
	}
	lister := &blockingLister{results: []listResult{{products: products}}}
	cache := NewCache(lister, zap.NewNop())

	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []string{"power-tools", "electrical", "industrial"}
	got := cache.Categories()
	if len(got) != len(want) {
		t.Fatalf("Expected %d categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestSnapshotReturnsCopy(t *testing.T) {
	lister := &blockingLister{results: []listResult{{products: makeProducts("Drill", "Saw")}}}
	cache := NewCache(lister, zap.NewNop())

	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	snap := cache.Snapshot()
	snap[0].Name = "mutated"

	if again := cache.Snapshot(); again[0].Name == "mutated" {
		t.Error("Snapshot exposed internal state to callers")
	}
}
