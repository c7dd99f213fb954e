package storage

import (
	"fmt"
	"testing"

	"github.com/pitchlab/go-match-highlights/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMatchInsertAndExists(t *testing.T) {
	db := openMemDB(t)

	summary := model.MatchSummary{
		MatchID:         "match-1",
		Version:         "v2",
		Half:            1,
		VideoRef:        "files/abc",
		WindowCount:     42,
		RawEventCount:   310,
		DedupEventCount: 205,
		AnalyzedAt:      "2026-08-01T10:00:00Z",
	}
	if err := db.InsertMatch(summary); err != nil {
		t.Fatalf("InsertMatch: %v", err)
	}

	exists, err := db.MatchExists("match-1", "v2", 1)
	if err != nil {
		t.Fatalf("MatchExists: %v", err)
	}
	if !exists {
		t.Error("expected match to exist after insert")
	}

	exists2, _ := db.MatchExists("match-1", "v2", 2)
	if exists2 {
		t.Error("other half should not exist")
	}
}

func TestInsertMatchIsIdempotent(t *testing.T) {
	db := openMemDB(t)

	s := model.MatchSummary{MatchID: "m", AnalyzedAt: "2026-08-01"}
	if err := db.InsertMatch(s); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	s.WindowCount = 9
	if err := db.InsertMatch(s); err != nil {
		t.Fatalf("second insert: %v", err)
	}

	list, err := db.ListMatches()
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 match after replace, got %d", len(list))
	}
	if list[0].WindowCount != 9 {
		t.Errorf("replace should win: got window count %d", list[0].WindowCount)
	}
}

func TestListMatchesOrdering(t *testing.T) {
	db := openMemDB(t)

	for _, s := range []model.MatchSummary{
		{MatchID: "old", AnalyzedAt: "2026-07-01T00:00:00Z"},
		{MatchID: "new", AnalyzedAt: "2026-08-01T00:00:00Z"},
	} {
		if err := db.InsertMatch(s); err != nil {
			t.Fatalf("InsertMatch: %v", err)
		}
	}
	list, err := db.ListMatches()
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(list) != 2 || list[0].MatchID != "new" {
		t.Errorf("expected newest first, got %+v", list)
	}
}

func TestGetMatchByPrefix(t *testing.T) {
	db := openMemDB(t)

	if err := db.InsertMatch(model.MatchSummary{MatchID: "abc123"}); err != nil {
		t.Fatalf("InsertMatch: %v", err)
	}

	got, err := db.GetMatchByPrefix("abc")
	if err != nil {
		t.Fatalf("GetMatchByPrefix: %v", err)
	}
	if got == nil || got.MatchID != "abc123" {
		t.Errorf("prefix lookup: got %+v", got)
	}

	miss, err := db.GetMatchByPrefix("zzz")
	if err != nil {
		t.Fatalf("GetMatchByPrefix miss: %v", err)
	}
	if miss != nil {
		t.Errorf("expected nil on miss, got %+v", miss)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	db := openMemDB(t)

	events := []model.DeduplicatedEvent{
		{AbsoluteTimestamp: 10, Type: model.EventShot, Team: model.TeamHome, AdjustedConfidence: 0.9, MergedFromWindows: []string{"w1"}},
		{AbsoluteTimestamp: 50, Type: model.EventPass, Team: model.TeamAway, AdjustedConfidence: 0.6, MergedFromWindows: []string{"w2", "w3"}},
	}
	docs := make([]Document, len(events))
	for i, e := range events {
		docs[i] = Document{Collection: CollectionEvents, DocID: fmt.Sprintf("e%03d", i), Body: e}
	}
	if err := db.WriteDocuments("m1", docs); err != nil {
		t.Fatalf("WriteDocuments: %v", err)
	}

	got, err := db.LoadEvents("m1")
	if err != nil {
		t.Fatalf("LoadEvents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Type != model.EventShot || got[1].Type != model.EventPass {
		t.Errorf("round trip order: %+v", got)
	}
	if len(got[1].MergedFromWindows) != 2 {
		t.Errorf("merged windows lost: %+v", got[1])
	}
}

// Writes beyond the per-transaction cap split into multiple batches; all rows
// land.
func TestWriteDocumentsSplitsBatches(t *testing.T) {
	db := openMemDB(t)

	docs := make([]Document, maxBatchOps+37)
	for i := range docs {
		docs[i] = Document{
			Collection: CollectionPassEvents,
			DocID:      fmt.Sprintf("p%04d", i),
			Body:       map[string]any{"n": i},
		}
	}
	if err := db.WriteDocuments("m1", docs); err != nil {
		t.Fatalf("WriteDocuments: %v", err)
	}

	count, err := db.CountDocuments("m1", CollectionPassEvents)
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	if count != maxBatchOps+37 {
		t.Errorf("expected %d documents, got %d", maxBatchOps+37, count)
	}
}

func TestDocumentUpsert(t *testing.T) {
	db := openMemDB(t)

	write := func(v int) {
		t.Helper()
		err := db.WriteDocuments("m1", []Document{
			{Collection: CollectionStats, DocID: "s1", Body: model.Stat{StatID: "s1", CalculatorID: "pass_count", Value: float64(v)}},
		})
		if err != nil {
			t.Fatalf("WriteDocuments: %v", err)
		}
	}
	write(10)
	write(12)

	stats, err := db.LoadStats("m1")
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if len(stats) != 1 || stats[0].Value != 12 {
		t.Errorf("upsert should replace: %+v", stats)
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	db := openMemDB(t)

	err := db.WriteDocuments("m1", []Document{
		{Collection: CollectionClips, DocID: "c1", Body: model.Clip{ID: "c1", StartTime: 1, EndTime: 2}},
		{Collection: CollectionSetPieces, DocID: "o1", Body: model.SetPieceOutcome{SetPieceEventID: "sp1"}},
	})
	if err != nil {
		t.Fatalf("WriteDocuments: %v", err)
	}

	clips, err := db.ListDocuments("m1", CollectionClips)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(clips) != 1 {
		t.Errorf("expected 1 clip document, got %d", len(clips))
	}
	if n, _ := db.CountDocuments("m1", CollectionSetPieces); n != 1 {
		t.Errorf("expected 1 set-piece document, got %d", n)
	}
	if n, _ := db.CountDocuments("m2", CollectionClips); n != 0 {
		t.Errorf("other match must be empty, got %d", n)
	}
}
