package export_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-film-recap/internal/export"
	"go-film-recap/internal/model"
)

func TestToJSONFile_RoundTrip(t *testing.T) {
	rec := &model.Recap{
		User:           "alice",
		Year:           2025,
		TotalEntries:   2,
		PagesFetched:   1,
		StoppedBecause: "no_entries_on_page",
		Stats: model.StatsResult{
			ActiveDays:    2,
			LongestStreak: model.StreakResult{Length: 2, Start: "2025-01-01", End: "2025-01-02"},
		},
		GeneratedAt: time.Now(),
	}
	path := filepath.Join(t.TempDir(), "recap.json")
	if err := export.ToJSONFile(rec, path); err != nil {
		t.Fatalf("export: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got model.Recap
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.User != "alice" || got.TotalEntries != 2 || got.Stats.LongestStreak.Length != 2 {
		t.Fatalf("got %+v", got)
	}
}

func TestToJSONFile_BadPath(t *testing.T) {
	if err := export.ToJSONFile(&model.Recap{}, filepath.Join(t.TempDir(), "missing", "recap.json")); err == nil {
		t.Fatal("expect error for unwritable path")
	}
}
