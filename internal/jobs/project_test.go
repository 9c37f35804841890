package jobs

import (
	"testing"
	"time"
)

func runningRecord(startedAgo time.Duration, now time.Time) Record {
	startedAt := now.Add(-startedAgo)
	return Record{
		JobID:     "job-1",
		Status:    StatusRunning,
		Files:     testFiles(),
		Flags:     []string{"compress"},
		CreatedAt: now.Add(-time.Minute),
		StartedAt: &startedAt,
	}
}

func TestProjectStatusProgressMidway(t *testing.T) {
	now := time.Now().UTC()
	expected := 7500 * time.Millisecond

	view := ProjectStatus(runningRecord(3750*time.Millisecond, now), now, expected)
	if view.Progress == nil {
		t.Fatal("running job must expose progress")
	}
	if *view.Progress != 50 {
		t.Fatalf("unexpected progress: %d", *view.Progress)
	}
}

func TestProjectStatusProgressCapped(t *testing.T) {
	now := time.Now().UTC()
	view := ProjectStatus(runningRecord(time.Hour, now), now, 7500*time.Millisecond)
	if view.Progress == nil || *view.Progress != 95 {
		t.Fatalf("progress must cap at 95: %v", view.Progress)
	}
}

func TestProjectStatusProgressNeverNegative(t *testing.T) {
	now := time.Now().UTC()
	view := ProjectStatus(runningRecord(-time.Second, now), now, 7500*time.Millisecond)
	if view.Progress == nil || *view.Progress != 0 {
		t.Fatalf("progress must clamp at 0: %v", view.Progress)
	}
}

func TestProjectStatusOmitsProgressWhenNotRunning(t *testing.T) {
	now := time.Now().UTC()
	for _, status := range []Status{StatusPending, StatusSucceeded, StatusFailed} {
		record := Record{JobID: "job-1", Status: status, CreatedAt: now}
		if view := ProjectStatus(record, now, 7500*time.Millisecond); view.Progress != nil {
			t.Fatalf("status %s must not expose progress", status)
		}
	}
}

func TestProjectStatusConditionalFields(t *testing.T) {
	now := time.Now().UTC()
	completedAt := now
	record := Record{
		JobID:       "job-1",
		Status:      StatusFailed,
		Files:       testFiles(),
		Flags:       []string{},
		CreatedAt:   now.Add(-time.Minute),
		StartedAt:   &now,
		CompletedAt: &completedAt,
		Error:       &ErrorInfo{Code: "PROCESSING_FAILED", Message: "failed"},
	}

	view := ProjectStatus(record, now, 7500*time.Millisecond)
	if view.StartedAt == nil || view.CompletedAt == nil || view.Error == nil {
		t.Fatalf("set fields must survive projection: %#v", view)
	}

	pending := ProjectStatus(Record{JobID: "job-2", Status: StatusPending, CreatedAt: now}, now, 0)
	if pending.StartedAt != nil || pending.CompletedAt != nil || pending.Error != nil {
		t.Fatalf("unset fields must stay absent: %#v", pending)
	}
}

func historyFixture(base time.Time) []Record {
	names := []string{"A", "B", "C", "D", "E"}
	records := make([]Record, len(names))
	for i, name := range names {
		records[i] = Record{
			JobID:     name,
			Status:    StatusPending,
			Files:     testFiles(),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
	}
	return records
}

func TestProjectHistoryPagination(t *testing.T) {
	base := time.Now().UTC()
	records := historyFixture(base)

	page, total := ProjectHistory(records, 2, 0)
	if total != 5 {
		t.Fatalf("unexpected total: %d", total)
	}
	if len(page) != 2 || page[0].JobID != "E" || page[1].JobID != "D" {
		t.Fatalf("unexpected first page: %#v", page)
	}

	page, total = ProjectHistory(records, 2, 2)
	if total != 5 {
		t.Fatalf("total must ignore the window: %d", total)
	}
	if len(page) != 2 || page[0].JobID != "C" || page[1].JobID != "B" {
		t.Fatalf("unexpected second page: %#v", page)
	}
}

func TestProjectHistoryOutOfRangeOffset(t *testing.T) {
	records := historyFixture(time.Now().UTC())
	page, total := ProjectHistory(records, 10, 100)
	if len(page) != 0 {
		t.Fatalf("out-of-range offset must yield an empty page: %#v", page)
	}
	if total != 5 {
		t.Fatalf("unexpected total: %d", total)
	}
}

func TestProjectHistoryTiesKeepInsertionOrder(t *testing.T) {
	base := time.Now().UTC()
	records := []Record{
		{JobID: "first", CreatedAt: base},
		{JobID: "second", CreatedAt: base},
	}
	page, _ := ProjectHistory(records, 10, 0)
	if page[0].JobID != "first" || page[1].JobID != "second" {
		t.Fatalf("ties must keep insertion order: %#v", page)
	}
}

func TestProjectHistoryEntryShape(t *testing.T) {
	now := time.Now().UTC()
	completedAt := now
	records := []Record{{
		JobID:       "job-1",
		Status:      StatusSucceeded,
		Files:       testFiles(),
		Flags:       []string{"grayscale"},
		CreatedAt:   now,
		CompletedAt: &completedAt,
		Result:      map[string]any{"heavy": "payload"},
	}}

	page, _ := ProjectHistory(records, 10, 0)
	entry := page[0]
	if entry.FileCount != 2 {
		t.Fatalf("unexpected file count: %d", entry.FileCount)
	}
	if entry.CompletedAt == nil {
		t.Fatal("completedAt must be carried when set")
	}
	if len(entry.Flags) != 1 || entry.Flags[0] != "grayscale" {
		t.Fatalf("unexpected flags: %#v", entry.Flags)
	}
}
