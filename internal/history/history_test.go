package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRecordAndListBatches(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	first := Batch{
		ID:           uuid.NewString(),
		StartedAt:    time.Now().Add(-time.Minute),
		FilesTotal:   3,
		FilesOK:      2,
		FilesSkipped: 1,
		Chunks:       12,
		CreatedIndex: true,
	}
	files := []FileOutcome{
		{Path: "a.txt", Chunks: 7},
		{Path: "b.pdf", Chunks: 5},
		{Path: "c.exe", SkipReason: "unsupported document format"},
	}
	if err := db.RecordBatch(ctx, first, files); err != nil {
		t.Fatalf("RecordBatch failed: %v", err)
	}

	second := Batch{ID: uuid.NewString(), StartedAt: time.Now(), FilesTotal: 1, FilesOK: 1, Chunks: 2}
	if err := db.RecordBatch(ctx, second, nil); err != nil {
		t.Fatalf("RecordBatch failed: %v", err)
	}

	batches, err := db.RecentBatches(ctx, 10)
	if err != nil {
		t.Fatalf("RecentBatches failed: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if batches[0].ID != second.ID {
		t.Errorf("batches not ordered newest first")
	}
	if !batches[1].CreatedIndex {
		t.Errorf("created_index flag lost on round trip")
	}

	got, err := db.BatchFiles(ctx, first.ID)
	if err != nil {
		t.Fatalf("BatchFiles failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 file outcomes, got %d", len(got))
	}
	if got[2].SkipReason == "" {
		t.Errorf("skip reason lost for %q", got[2].Path)
	}
}

func TestRecentBatchesLimit(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		b := Batch{ID: uuid.NewString(), StartedAt: time.Now().Add(time.Duration(i) * time.Second), FilesTotal: 1}
		if err := db.RecordBatch(ctx, b, nil); err != nil {
			t.Fatal(err)
		}
	}

	batches, err := db.RecentBatches(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 3 {
		t.Errorf("limit not applied: got %d batches", len(batches))
	}
}
