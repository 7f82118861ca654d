package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/GriffinCanCode/glimpse/internal/event"
	"github.com/GriffinCanCode/glimpse/internal/sensitivity"
	"github.com/GriffinCanCode/glimpse/internal/store"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func testEvent(id string, start time.Time, dur time.Duration) event.Event {
	return event.Event{
		ID:          id,
		Start:       start,
		End:         start.Add(dur),
		BundleID:    "com.apple.Safari",
		AppName:     "Safari",
		WindowTitle: "Wikipedia",
		Summary:     "Safari: Wikipedia",
		Tags:        []string{"browsing"},
		Sensitivity: sensitivity.None,
	}
}

func TestInsertAndSearch(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	start := time.Unix(1700000000, 0)

	if err := repo.Insert(ctx, testEvent("ev-1", start, 10*time.Second)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := repo.Search(ctx, store.Query{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	ev := got[0]
	if ev.ID != "ev-1" || ev.Summary != "Safari: Wikipedia" {
		t.Errorf("got %+v", ev)
	}
	if !ev.Start.Equal(start) || !ev.End.Equal(start.Add(10*time.Second)) {
		t.Errorf("timestamps: %v - %v", ev.Start, ev.End)
	}
	if !reflect.DeepEqual(ev.Tags, []string{"browsing"}) {
		t.Errorf("Tags = %v", ev.Tags)
	}
	if ev.ThumbnailPath != "" || ev.TextSnippet != "" {
		t.Error("optional fields should round-trip as empty")
	}
}

func TestInsertIsIdempotentUpsert(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	start := time.Unix(1700000000, 0)

	ev := testEvent("ev-1", start, 5*time.Second)
	if err := repo.Insert(ctx, ev); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	ev.End = start.Add(30 * time.Second)
	ev.WindowTitle = "Wikipedia - Go"
	if err := repo.Insert(ctx, ev); err != nil {
		t.Fatalf("replay Insert: %v", err)
	}

	got, err := repo.Search(ctx, store.Query{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 after replay", len(got))
	}
	if got[0].WindowTitle != "Wikipedia - Go" {
		t.Errorf("WindowTitle = %q, want overwritten content", got[0].WindowTitle)
	}
}

func TestCountEventsSince(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	for i, id := range []string{"a", "b", "c"} {
		ev := testEvent(id, base.Add(time.Duration(i)*time.Hour), time.Minute)
		if err := repo.Insert(ctx, ev); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	count, err := repo.CountEventsSince(ctx, base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("CountEventsSince: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestSearchFilters(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	safari := testEvent("safari-1", base, time.Minute)
	code := testEvent("code-1", base.Add(time.Hour), time.Minute)
	code.BundleID = "com.microsoft.VSCode"
	code.AppName = "Code"
	code.WindowTitle = "segmenter.go"
	code.Summary = "Code: segmenter.go"
	code.Tags = []string{"coding"}

	for _, ev := range []event.Event{safari, code} {
		if err := repo.Insert(ctx, ev); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	byKeyword, err := repo.Search(ctx, store.Query{Keyword: "segmenter"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(byKeyword) != 1 || byKeyword[0].ID != "code-1" {
		t.Errorf("keyword search = %v", byKeyword)
	}

	byBundle, err := repo.Search(ctx, store.Query{AppBundle: "com.apple.Safari"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(byBundle) != 1 || byBundle[0].ID != "safari-1" {
		t.Errorf("bundle search = %v", byBundle)
	}

	byRange, err := repo.Search(ctx, store.Query{From: base.Add(30 * time.Minute)})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(byRange) != 1 || byRange[0].ID != "code-1" {
		t.Errorf("range search = %v", byRange)
	}
}

func TestSearchOrderAndLimit(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	for i := 0; i < 5; i++ {
		ev := testEvent(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute), time.Minute)
		if err := repo.Insert(ctx, ev); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := repo.Search(ctx, store.Query{Limit: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "e" || got[1].ID != "d" {
		t.Errorf("order = %s, %s; want newest first", got[0].ID, got[1].ID)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Error("Open with blank path should fail")
	}
}

func TestOptionalFieldsRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	ev := testEvent("ev-1", time.Unix(1700000000, 0), time.Minute)
	ev.ThumbnailPath = "/tmp/thumbs/ev-1.jpg"
	ev.TextSnippet = "visible text"
	ev.Sensitivity = sensitivity.High

	if err := repo.Insert(ctx, ev); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := repo.Search(ctx, store.Query{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got[0].ThumbnailPath != ev.ThumbnailPath || got[0].TextSnippet != ev.TextSnippet {
		t.Errorf("optional fields = %+v", got[0])
	}
	if got[0].Sensitivity != sensitivity.High {
		t.Errorf("Sensitivity = %v", got[0].Sensitivity)
	}
}
