package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pitchlab/go-match-highlights/internal/model"
)

// Collection names for the documents table. The event collections mirror the
// per-kind streams the pipeline produces; pendingReviews holds low-confidence
// events parked for a human look.
const (
	CollectionRawEvents      = "rawEvents"
	CollectionEvents         = "events"
	CollectionClips          = "clips"
	CollectionStats          = "stats"
	CollectionSetPieces      = "setPieceOutcomes"
	CollectionPendingReviews = "pendingReviews"
	CollectionPassEvents     = "passEvents"
	CollectionCarryEvents    = "carryEvents"
	CollectionTurnoverEvents = "turnoverEvents"
	CollectionPossessionSegs = "possessionSegments"
	CollectionTrackMappings  = "trackMappings"
	CollectionTrackTeamMetas = "trackTeamMetas"
)

// maxBatchOps bounds how many writes go into one transaction.
const maxBatchOps = 450

// MatchExists returns true if an analysis for (matchID, version, half) is stored.
func (db *DB) MatchExists(matchID, version string, half int) (bool, error) {
	var count int
	err := db.conn.QueryRow(
		"SELECT COUNT(1) FROM matches WHERE match_id = ? AND version = ? AND half = ?",
		matchID, version, half).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertMatch inserts a match record. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertMatch(summary model.MatchSummary) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO matches(match_id, version, half, video_ref, window_count, raw_event_count, dedup_event_count, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.MatchID, summary.Version, summary.Half, summary.VideoRef,
		summary.WindowCount, summary.RawEventCount, summary.DedupEventCount,
		summary.AnalyzedAt,
	)
	return err
}

// ListMatches returns all stored match summaries ordered by analyzed_at desc.
func (db *DB) ListMatches() ([]model.MatchSummary, error) {
	rows, err := db.conn.Query(`
		SELECT match_id, version, half, video_ref, window_count, raw_event_count, dedup_event_count, analyzed_at
		FROM matches ORDER BY analyzed_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		var s model.MatchSummary
		if err := rows.Scan(&s.MatchID, &s.Version, &s.Half, &s.VideoRef,
			&s.WindowCount, &s.RawEventCount, &s.DedupEventCount, &s.AnalyzedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetMatchByPrefix finds the first match whose id starts with the given prefix.
func (db *DB) GetMatchByPrefix(prefix string) (*model.MatchSummary, error) {
	var s model.MatchSummary
	err := db.conn.QueryRow(`
		SELECT match_id, version, half, video_ref, window_count, raw_event_count, dedup_event_count, analyzed_at
		FROM matches WHERE match_id LIKE ? LIMIT 1`, prefix+"%").
		Scan(&s.MatchID, &s.Version, &s.Half, &s.VideoRef,
			&s.WindowCount, &s.RawEventCount, &s.DedupEventCount, &s.AnalyzedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Document is one write destined for the documents table. Body is marshaled
// to JSON at write time.
type Document struct {
	Collection string
	DocID      string
	Body       any
}

// WriteDocuments upserts documents for a match, splitting the writes into
// transactions of at most maxBatchOps operations each.
func (db *DB) WriteDocuments(matchID string, docs []Document) error {
	for lo := 0; lo < len(docs); lo += maxBatchOps {
		hi := lo + maxBatchOps
		if hi > len(docs) {
			hi = len(docs)
		}
		if err := db.writeBatch(matchID, docs[lo:hi]); err != nil {
			return fmt.Errorf("write documents for %s (batch at %d): %w", matchID, lo, err)
		}
	}
	return nil
}

func (db *DB) writeBatch(matchID string, docs []Document) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO documents(match_id, collection, doc_id, body)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range docs {
		body, err := json.Marshal(d.Body)
		if err != nil {
			return fmt.Errorf("marshal %s/%s: %w", d.Collection, d.DocID, err)
		}
		if _, err := stmt.Exec(matchID, d.Collection, d.DocID, string(body)); err != nil {
			return fmt.Errorf("insert %s/%s: %w", d.Collection, d.DocID, err)
		}
	}
	return tx.Commit()
}

// ListDocuments returns the raw JSON bodies of one collection, ordered by doc id.
func (db *DB) ListDocuments(matchID, collection string) ([]json.RawMessage, error) {
	rows, err := db.conn.Query(`
		SELECT body FROM documents
		WHERE match_id = ? AND collection = ?
		ORDER BY doc_id`, matchID, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(body))
	}
	return out, rows.Err()
}

// CountDocuments returns how many documents a collection holds for a match.
func (db *DB) CountDocuments(matchID, collection string) (int, error) {
	var count int
	err := db.conn.QueryRow(
		"SELECT COUNT(1) FROM documents WHERE match_id = ? AND collection = ?",
		matchID, collection).Scan(&count)
	return count, err
}

// LoadEvents unmarshals a match's deduplicated events.
func (db *DB) LoadEvents(matchID string) ([]model.DeduplicatedEvent, error) {
	bodies, err := db.ListDocuments(matchID, CollectionEvents)
	if err != nil {
		return nil, err
	}
	out := make([]model.DeduplicatedEvent, 0, len(bodies))
	for _, b := range bodies {
		var e model.DeduplicatedEvent
		if err := json.Unmarshal(b, &e); err != nil {
			return nil, fmt.Errorf("decode event for %s: %w", matchID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// LoadStats unmarshals a match's stats.
func (db *DB) LoadStats(matchID string) ([]model.Stat, error) {
	bodies, err := db.ListDocuments(matchID, CollectionStats)
	if err != nil {
		return nil, err
	}
	out := make([]model.Stat, 0, len(bodies))
	for _, b := range bodies {
		var s model.Stat
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, fmt.Errorf("decode stat for %s: %w", matchID, err)
		}
		out = append(out, s)
	}
	return out, nil
}
