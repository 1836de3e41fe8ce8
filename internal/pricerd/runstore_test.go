package pricerd

import (
	"errors"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
)

func TestRunStoreCreateAndGet(t *testing.T) {
	store := NewRunStore()

	run, err := store.Create("", validRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !strings.HasPrefix(run.ID, "price-") {
		t.Fatalf("expected generated run id, got %q", run.ID)
	}
	if run.Status != models.RunStatusPending {
		t.Fatalf("expected status pending, got %v", run.Status)
	}
	if run.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}

	got, ok := store.Get(run.ID)
	if !ok {
		t.Fatalf("expected run to exist")
	}
	if got.ID != run.ID || got.Request != run.Request {
		t.Fatalf("expected the stored run back, got %+v", got)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 run, got %d", store.Len())
	}
}

func TestRunStoreCreateDuplicate(t *testing.T) {
	store := NewRunStore()
	if _, err := store.Create("run-1", validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := store.Create("run-1", validRequest())
	if !errors.Is(err, ErrRunExists) {
		t.Fatalf("expected ErrRunExists, got %v", err)
	}
}

func TestRunStoreCreateInvalidID(t *testing.T) {
	store := NewRunStore()
	for _, id := range []string{"a/b", "a b", "tab\t"} {
		if _, err := store.Create(id, validRequest()); !errors.Is(err, ErrInvalidRunID) {
			t.Errorf("id %q: expected ErrInvalidRunID, got %v", id, err)
		}
	}
	if store.Len() != 0 {
		t.Fatalf("invalid ids must not be stored")
	}
}

func TestRunStoreSetStatusSetsTimestamps(t *testing.T) {
	store := NewRunStore()
	run, err := store.Create("run-1", validRequest())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !run.StartedAt.IsZero() || !run.EndedAt.IsZero() {
		t.Fatalf("expected timestamps not set initially")
	}

	run, err = store.SetStatus("run-1", models.RunStatusRunning, "")
	if err != nil {
		t.Fatalf("SetStatus running error: %v", err)
	}
	if run.StartedAt.IsZero() {
		t.Fatalf("expected started_at set")
	}
	if !run.EndedAt.IsZero() {
		t.Fatalf("did not expect ended_at set for running")
	}

	run, err = store.SetStatus("run-1", models.RunStatusFailed, "boom")
	if err != nil {
		t.Fatalf("SetStatus failed error: %v", err)
	}
	if run.EndedAt.IsZero() || run.Error != "boom" {
		t.Fatalf("expected ended_at and error set, got %+v", run)
	}

	if _, err := store.SetStatus("missing", models.RunStatusRunning, ""); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRunStoreStartRun(t *testing.T) {
	store := NewRunStore()
	if _, err := store.Create("run-1", validRequest()); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	run, started, err := store.StartRun("run-1")
	if err != nil || !started {
		t.Fatalf("expected first StartRun to start, got started=%v err=%v", started, err)
	}
	if run.Status != models.RunStatusRunning || run.StartedAt.IsZero() {
		t.Fatalf("expected running run with started_at, got %+v", run)
	}

	again, started, err := store.StartRun("run-1")
	if err != nil || started {
		t.Fatalf("expected second StartRun to be a no-op, got started=%v err=%v", started, err)
	}
	if !again.StartedAt.Equal(run.StartedAt) {
		t.Fatalf("started_at changed on second StartRun")
	}

	if _, err := store.SetStatus("run-1", models.RunStatusCompleted, ""); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if _, _, err := store.StartRun("run-1"); !errors.Is(err, ErrRunTerminal) {
		t.Fatalf("expected ErrRunTerminal, got %v", err)
	}
	if _, _, err := store.StartRun("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRunStoreSetResultIsCopied(t *testing.T) {
	store := NewRunStore()
	if _, err := store.Create("run-1", validRequest()); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := store.SetResult("run-1", models.PricingResult{Price: 12.5}); err != nil {
		t.Fatalf("SetResult error: %v", err)
	}

	run, _ := store.Get("run-1")
	if run.Result == nil || run.Result.Price != 12.5 {
		t.Fatalf("expected result to be stored, got %+v", run.Result)
	}
	run.Result.Price = -1
	again, _ := store.Get("run-1")
	if again.Result.Price != 12.5 {
		t.Fatalf("stored result must not be shared with callers")
	}

	if err := store.SetResult("missing", models.PricingResult{}); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRunStoreListNewestFirst(t *testing.T) {
	store := NewRunStore()
	for _, id := range []string{"r1", "r2", "r3", "r4", "r5"} {
		if _, err := store.Create(id, validRequest()); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
	if _, err := store.SetStatus("r2", models.RunStatusCompleted, ""); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if _, err := store.SetStatus("r4", models.RunStatusCompleted, ""); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}

	ids := func(runs []models.Run) string {
		out := make([]string, len(runs))
		for i, r := range runs {
			out[i] = r.ID
		}
		return strings.Join(out, ",")
	}

	tests := []struct {
		name          string
		limit, offset int
		status        models.RunStatus
		expected      string
	}{
		{"all", 0, 0, "", "r5,r4,r3,r2,r1"},
		{"limit", 2, 0, "", "r5,r4"},
		{"offset", 2, 2, "", "r3,r2"},
		{"offset past end", 10, 9, "", ""},
		{"status", 10, 0, models.RunStatusCompleted, "r4,r2"},
		{"status with offset", 10, 1, models.RunStatusCompleted, "r2"},
		{"pending", 10, 0, models.RunStatusPending, "r5,r3,r1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(store.List(tt.limit, tt.offset, tt.status)); got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
