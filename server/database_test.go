package main

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)
	if v := db.GetSetting("missing"); v != "" {
		t.Errorf("unset key should read empty, got %q", v)
	}
	if err := db.SetSetting("k", "one"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetSetting("k", "two"); err != nil {
		t.Fatal(err)
	}
	if v := db.GetSetting("k"); v != "two" {
		t.Errorf("expected upserted value, got %q", v)
	}
}

func TestSaveAndListRuns(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		_, err := db.SaveRun(RunSummary{
			SessionID:    GenerateUUID(),
			Name:         name,
			StartedAt:    base,
			EndedAt:      base.Add(time.Duration(i+1) * time.Minute),
			Ticks:        uint64(3600 * (i + 1)),
			PeakPilots:   i + 1,
			BulletsFired: 100,
			BestPilot:    "ace",
			BestScore:    10 * i,
		})
		if err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	runs, err := db.RecentRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].Name != "third" || runs[1].Name != "second" {
		t.Fatalf("expected newest two runs, got %+v", runs)
	}
	if runs[0].Ticks != 10800 || runs[0].PeakPilots != 3 || runs[0].BestScore != 20 {
		t.Errorf("fields not round-tripped: %+v", runs[0])
	}
	if !runs[0].EndedAt.Equal(base.Add(3 * time.Minute)) {
		t.Errorf("ended_at = %v", runs[0].EndedAt)
	}

	got, err := db.GetRun(runs[1].ID)
	if err != nil || got == nil || got.Name != "second" {
		t.Errorf("GetRun = %+v, %v", got, err)
	}
	missing, err := db.GetRun(9999)
	if err != nil || missing != nil {
		t.Errorf("missing run should be nil, nil; got %+v, %v", missing, err)
	}
}
