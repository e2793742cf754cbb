package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/claude/stride/internal/ingest"
	"github.com/claude/stride/internal/load"
	"github.com/claude/stride/internal/models"
	"github.com/claude/stride/internal/storage"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	ActivitiesInserted   int64
	ActivitiesDuplicated int64
	ActivitiesRejected   int
}

// Importer reads activity-export JSON files from a directory and inserts
// scored activities into the database. A SQLite state file in the export
// directory makes repeated runs incremental.
type Importer struct {
	db        *storage.DB
	log       *slog.Logger
	athleteID int
	dryRun    bool
	stats     Stats
}

// New creates a new Importer for the given athlete.
func New(db *storage.DB, log *slog.Logger, athleteID int, dryRun bool) *Importer {
	return &Importer{db: db, log: log, athleteID: athleteID, dryRun: dryRun}
}

// Import processes all .json files under the given export directory.
func (imp *Importer) Import(ctx context.Context, exportDir string) (*Stats, error) {
	athlete, err := imp.db.GetAthlete(ctx, imp.athleteID)
	if err != nil {
		return &imp.stats, fmt.Errorf("loading athlete: %w", err)
	}
	profile := load.Athlete{
		RestingHeartRate: athlete.RestingHeartRate,
		MaxHeartRate:     athlete.MaxHeartRate,
	}

	state, err := OpenStateDB(filepath.Join(exportDir, ".stride"))
	if err != nil {
		return &imp.stats, err
	}
	defer state.Close()

	files, err := filepath.Glob(filepath.Join(exportDir, "*.json"))
	if err != nil {
		return &imp.stats, err
	}
	sort.Strings(files)

	for _, f := range files {
		if err := imp.importFile(ctx, f, profile, state); err != nil {
			imp.log.Warn("import failed", "file", f, "error", err)
			imp.stats.FilesErrored++
		}
	}

	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path string, profile load.Athlete, state *StateDB) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hash, err := HashFile(path)
	if err != nil {
		return err
	}

	rel := filepath.Base(path)
	done, err := state.IsImported(rel, info.Size(), hash)
	if err != nil {
		return fmt.Errorf("checking state: %w", err)
	}
	if done {
		imp.stats.FilesSkipped++
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	activities, err := ParseExport(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", rel, err)
	}

	var rows []models.ActivityRow
	for _, a := range activities {
		row, err := ingest.ConvertActivity(a, imp.athleteID, profile)
		if err != nil {
			imp.log.Warn("rejecting activity", "file", rel, "name", a.Name, "error", err)
			imp.stats.ActivitiesRejected++
			continue
		}
		rows = append(rows, *row)
	}

	if imp.dryRun {
		imp.log.Info("dry run", "file", rel, "activities", len(rows))
		imp.stats.FilesProcessed++
		return nil
	}

	if len(rows) > 0 {
		inserted, err := imp.db.InsertActivities(ctx, rows)
		if err != nil {
			return fmt.Errorf("inserting activities: %w", err)
		}
		imp.stats.ActivitiesInserted += inserted
		imp.stats.ActivitiesDuplicated += int64(len(rows)) - inserted
	}

	if err := state.MarkImported(rel, info.Size(), hash); err != nil {
		return fmt.Errorf("recording state: %w", err)
	}
	imp.stats.FilesProcessed++
	return nil
}

// ParseExport accepts either an ingest payload object ({"activities": [...]})
// or a bare activity array.
func ParseExport(data []byte) ([]ingest.Activity, error) {
	var payload ingest.Payload
	if err := json.Unmarshal(data, &payload); err == nil && len(payload.Activities) > 0 {
		return payload.Activities, nil
	}

	var activities []ingest.Activity
	if err := json.Unmarshal(data, &activities); err != nil {
		return nil, fmt.Errorf("not a recognized export shape: %w", err)
	}
	return activities, nil
}
