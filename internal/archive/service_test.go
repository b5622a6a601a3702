package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Kutay07/ContentLab-sub000/internal/hierarchy"
)

func tree(title string) hierarchy.Hierarchy {
	return hierarchy.Hierarchy{
		{ID: "g1", Title: title, Order: 0, Levels: []hierarchy.Level{
			{ID: "l1", Title: "Basics", XPReward: 5, Order: 0, Components: []hierarchy.Component{
				{ID: "c1", Type: "text", Content: hierarchy.Object(map[string]hierarchy.Content{"body": hierarchy.String("hello")}), Order: 0},
			}},
		}},
	}
}

func TestRecordAndReadBack(t *testing.T) {
	tempDir := t.TempDir()
	svc := New(tempDir, "", "Avery")

	first, err := svc.Record(context.Background(), tree("Intro"), "first publish")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(first) != 7 {
		t.Fatalf("expected short hash, got %q", first)
	}
	if _, err := os.Stat(filepath.Join(tempDir, DefaultChannel, ".git")); err != nil {
		t.Fatalf("archive repo missing: %v", err)
	}

	second, err := svc.Record(context.Background(), tree("Introduction"), "second publish")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	history, err := svc.History(DefaultChannel, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(history))
	}
	if history[0].Hash != second || history[1].Hash != first {
		t.Fatalf("unexpected history order: %+v", history)
	}
	if history[0].Author != "Avery" {
		t.Fatalf("unexpected author %q", history[0].Author)
	}

	old, err := svc.HierarchyAt(DefaultChannel, first)
	if err != nil {
		t.Fatalf("HierarchyAt() error = %v", err)
	}
	if old[0].Title != "Intro" {
		t.Fatalf("expected archived title Intro, got %q", old[0].Title)
	}
	body, _ := old[0].Levels[0].Components[0].Content.Field("body")
	if s, _ := body.AsString(); s != "hello" {
		t.Fatalf("content not preserved: %s", old[0].Levels[0].Components[0].Content)
	}

	d, err := svc.Diff(DefaultChannel, first, "HEAD")
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if len(d.Updated.Groups) != 1 || d.Count() != 1 {
		t.Fatalf("expected one updated group, got %+v", d)
	}
}

func TestRecordUnchangedHierarchyReturnsHead(t *testing.T) {
	svc := New(t.TempDir(), "staging", "")

	first, err := svc.Record(context.Background(), tree("Intro"), "publish")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	again, err := svc.Record(context.Background(), tree("Intro"), "publish again")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if first != again {
		t.Fatalf("expected unchanged record to return head %s, got %s", first, again)
	}
	history, _ := svc.History("staging", 0)
	if len(history) != 1 {
		t.Fatalf("expected a single commit, got %d", len(history))
	}
}

func TestHistoryOfMissingChannel(t *testing.T) {
	svc := New(t.TempDir(), "", "")
	if _, err := svc.History("nowhere", 10); err == nil {
		t.Fatal("expected error for missing archive")
	}
}

func TestConcurrentRecords(t *testing.T) {
	svc := New(t.TempDir(), "", "Avery")

	const writers = 8
	var wg sync.WaitGroup
	errCh := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if _, err := svc.Record(context.Background(), tree(fmt.Sprintf("title-%02d", idx)), fmt.Sprintf("publish %02d", idx)); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Fatalf("Record() concurrent error = %v", err)
	}

	history, err := svc.History(DefaultChannel, 100)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != writers {
		t.Fatalf("expected %d commits, got %d", writers, len(history))
	}
	limited, _ := svc.History(DefaultChannel, 3)
	if len(limited) != 3 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}
