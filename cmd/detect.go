package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pitchlab/go-match-highlights/internal/analyzer"
	"github.com/pitchlab/go-match-highlights/internal/dedup"
	"github.com/pitchlab/go-match-highlights/internal/detector"
	"github.com/pitchlab/go-match-highlights/internal/model"
	"github.com/pitchlab/go-match-highlights/internal/report"
	"github.com/pitchlab/go-match-highlights/internal/setpiece"
	"github.com/pitchlab/go-match-highlights/internal/storage"
)

// Events below this adjusted confidence are parked for a human look instead
// of feeding the ranking.
const reviewThreshold = 0.5

var (
	detectMatchID string
	detectVersion string
	detectVideo   string
	detectConfig  string
	detectHalf    int
	detectAPIKey  string
	detectModel   string
)

var detectCmd = &cobra.Command{
	Use:   "detect <segments.json>",
	Short: "Run windowed event detection for a match and store the results",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectMatchID, "match", "", "match identifier (required)")
	detectCmd.Flags().StringVar(&detectVersion, "version", "v1", "analysis version label")
	detectCmd.Flags().StringVar(&detectVideo, "video", "", "cached video handle or file URI")
	detectCmd.Flags().StringVar(&detectConfig, "config", "", "path to YAML config")
	detectCmd.Flags().IntVar(&detectHalf, "half", 0, "which half this video covers (0 = full match)")
	detectCmd.Flags().StringVar(&detectAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	detectCmd.Flags().StringVar(&detectModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	detectCmd.MarkFlagRequired("match")
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(detectConfig)
	if err != nil {
		return err
	}
	segments, err := readSegments(args[0])
	if err != nil {
		return err
	}

	apiKey := detectAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	log := newLogger()
	client := analyzer.NewAnthropicClient(apiKey, detectModel)
	driver := analyzer.NewDriver(client, cfg.Retry, nil, log)
	det := detector.New(driver, cfg, log)

	fmt.Fprintf(os.Stdout, "Analyzing %s (%d segments)...\n", detectMatchID, len(segments))
	res, err := det.DetectEventsWindowed(cmd.Context(), detector.Request{
		MatchID:  detectMatchID,
		Version:  detectVersion,
		VideoRef: detectVideo,
		Segments: segments,
	})
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintf(os.Stdout, "Skipped: %s\n", res.SkipReason)
		return nil
	}

	deduped := dedup.Deduplicate(res.RawEvents, cfg.Dedup)
	stats := dedup.ComputeStats(res.RawEvents, deduped)
	timeline := model.TimelineFromEvents(deduped)
	outcomes := setpiece.Analyze(timeline, 0)

	if err := persistRun(db, res, deduped, outcomes); err != nil {
		return err
	}

	report.PrintDedupStats(os.Stdout, stats)
	report.PrintEventTable(os.Stdout, deduped)
	if len(outcomes) > 0 {
		report.PrintSetPieceOutcomes(os.Stdout, outcomes)
	}
	fmt.Fprintf(os.Stdout, "\nStored match %s (run %s).\n", detectMatchID, res.RunID)
	return nil
}

// collectionForType routes raw events into their per-kind collections; kinds
// without a dedicated collection stay only in the shared raw stream.
func collectionForType(t model.EventType) string {
	switch t {
	case model.EventPass:
		return storage.CollectionPassEvents
	case model.EventCarry:
		return storage.CollectionCarryEvents
	case model.EventTurnover:
		return storage.CollectionTurnoverEvents
	default:
		return ""
	}
}

func persistRun(db *storage.DB, res detector.Result, deduped []model.DeduplicatedEvent, outcomes []model.SetPieceOutcome) error {
	var docs []storage.Document
	for i, e := range res.RawEvents {
		id := fmt.Sprintf("raw-%05d", i)
		docs = append(docs, storage.Document{Collection: storage.CollectionRawEvents, DocID: id, Body: e})
		if col := collectionForType(e.Type); col != "" {
			docs = append(docs, storage.Document{Collection: col, DocID: id, Body: e})
		}
	}
	for i, e := range deduped {
		id := fmt.Sprintf("evt-%04d", i)
		docs = append(docs, storage.Document{Collection: storage.CollectionEvents, DocID: id, Body: e})
		if e.AdjustedConfidence < reviewThreshold {
			docs = append(docs, storage.Document{Collection: storage.CollectionPendingReviews, DocID: id, Body: e})
		}
	}
	for i, o := range outcomes {
		docs = append(docs, storage.Document{Collection: storage.CollectionSetPieces, DocID: fmt.Sprintf("sp-%04d", i), Body: o})
	}
	if err := db.WriteDocuments(res.MatchID, docs); err != nil {
		return err
	}

	return db.InsertMatch(model.MatchSummary{
		MatchID:         res.MatchID,
		Version:         detectVersion,
		Half:            detectHalf,
		VideoRef:        detectVideo,
		WindowCount:     res.WindowCount,
		RawEventCount:   res.RawEventCount,
		DedupEventCount: len(deduped),
		AnalyzedAt:      time.Now().UTC().Format(time.RFC3339),
	})
}
