package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pitchlab/go-match-highlights/internal/config"
	"github.com/pitchlab/go-match-highlights/internal/model"
	"github.com/pitchlab/go-match-highlights/internal/storage"
)

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func readSegments(path string) ([]model.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read segments: %w", err)
	}
	var segments []model.Segment
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("decode segments %s: %w", path, err)
	}
	return segments, nil
}

func readClips(path string) ([]model.Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read clips: %w", err)
	}
	var clips []model.Clip
	if err := json.Unmarshal(data, &clips); err != nil {
		return nil, fmt.Errorf("decode clips %s: %w", path, err)
	}
	return clips, nil
}

func openStore() (*storage.DB, error) {
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// loadTimeline reads a stored match's events as the scorer's timeline view.
func loadTimeline(db *storage.DB, matchID string) ([]model.TimelineEvent, error) {
	events, err := db.LoadEvents(matchID)
	if err != nil {
		return nil, fmt.Errorf("load events for %s: %w", matchID, err)
	}
	return model.TimelineFromEvents(events), nil
}
