package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "dealscope.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndListSearches(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	recs := []SearchRecord{
		{Term: "strymon ob1", Location: "london", Currency: "GBP", Sources: []string{"ebay", "gumtree"}, ResultCount: 12, Duration: 800 * time.Millisecond},
		{Term: "fender jazz bass", Currency: "USD", ResultCount: 0, Duration: 1200 * time.Millisecond},
	}
	for _, rec := range recs {
		if err := db.RecordSearch(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ListRecent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	// Newest first.
	if got[0].Term != "fender jazz bass" {
		t.Errorf("expected newest first, got %q", got[0].Term)
	}
	if got[1].Location != "london" {
		t.Errorf("location lost: %+v", got[1])
	}
	if len(got[1].Sources) != 2 || got[1].Sources[0] != "ebay" {
		t.Errorf("sources lost: %v", got[1].Sources)
	}
	if got[1].DurationMS != 800 {
		t.Errorf("duration = %d, want 800", got[1].DurationMS)
	}
}

func TestListRecentLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := db.RecordSearch(ctx, SearchRecord{Term: "q", Currency: "GBP"}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ListRecent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.RecordSearch(ctx, SearchRecord{Term: "a", Currency: "GBP", ResultCount: 10, Duration: time.Second}); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordSearch(ctx, SearchRecord{Term: "a", Currency: "GBP", ResultCount: 20, Duration: 3 * time.Second}); err != nil {
		t.Fatal(err)
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SearchCount != 2 {
		t.Errorf("search count = %d", stats.SearchCount)
	}
	if stats.AvgResults != 15 {
		t.Errorf("avg results = %v", stats.AvgResults)
	}
	if stats.DistinctTerm != 1 {
		t.Errorf("distinct terms = %d", stats.DistinctTerm)
	}
}
