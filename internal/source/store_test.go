package source

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/web3-frozen/whirlpool-monitor/internal/position"
)

type fakeRecorder struct {
	snaps     []position.Snapshot
	err       error
	calls     int
	lastLimit int
}

func (f *fakeRecorder) RecentSnapshots(_ context.Context, limit int) ([]position.Snapshot, error) {
	f.calls++
	f.lastLimit = limit
	return f.snaps, f.err
}

type fakeCache struct {
	pages  map[int][]position.Snapshot
	getErr error
	sets   int
}

func (f *fakeCache) Get(_ context.Context, limit int) ([]position.Snapshot, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	s, ok := f.pages[limit]
	return s, ok, nil
}

func (f *fakeCache) Set(_ context.Context, limit int, snaps []position.Snapshot) error {
	f.sets++
	f.pages[limit] = snaps
	return nil
}

func TestStoreSourceReadsDatabase(t *testing.T) {
	db := &fakeRecorder{snaps: []position.Snapshot{{ID: 1, PositionAddress: "pos1"}}}
	src := NewStoreSource(db, slog.Default(), WithLimit(10))

	snaps, err := src.FetchSnapshots(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshots: %v", err)
	}
	if len(snaps) != 1 || db.lastLimit != 10 {
		t.Errorf("snaps = %v, limit = %d", snaps, db.lastLimit)
	}
}

func TestStoreSourceDefaultLimit(t *testing.T) {
	src := NewStoreSource(&fakeRecorder{}, slog.Default(), WithLimit(0))
	if src.Limit() != DefaultLimit {
		t.Errorf("Limit = %d, want %d", src.Limit(), DefaultLimit)
	}
}

func TestStoreSourceDatabaseError(t *testing.T) {
	db := &fakeRecorder{err: errors.New("connection refused")}
	src := NewStoreSource(db, slog.Default())

	_, err := src.FetchSnapshots(context.Background())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestStoreSourceCacheHit(t *testing.T) {
	db := &fakeRecorder{snaps: []position.Snapshot{{ID: 1}}}
	c := &fakeCache{pages: map[int][]position.Snapshot{}}
	src := NewStoreSource(db, slog.Default(), WithCache(c))

	ctx := context.Background()
	if _, err := src.FetchSnapshots(ctx); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := src.FetchSnapshots(ctx); err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if db.calls != 1 {
		t.Errorf("database calls = %d, want 1", db.calls)
	}
	if c.sets != 1 {
		t.Errorf("cache sets = %d, want 1", c.sets)
	}
}

func TestStoreSourceCacheErrorFallsThrough(t *testing.T) {
	db := &fakeRecorder{snaps: []position.Snapshot{{ID: 1}}}
	c := &fakeCache{pages: map[int][]position.Snapshot{}, getErr: errors.New("redis down")}
	src := NewStoreSource(db, slog.Default(), WithCache(c))

	snaps, err := src.FetchSnapshots(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshots: %v", err)
	}
	if len(snaps) != 1 || db.calls != 1 {
		t.Errorf("snaps = %v, db calls = %d", snaps, db.calls)
	}
}
