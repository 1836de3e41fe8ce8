package pricerd

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/utils"
)

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrRunExists    = errors.New("run already exists")
	ErrInvalidRunID = errors.New("invalid run id")
)

// RunStore keeps pricing runs in memory. Callers only ever see copies, so a
// returned Run never changes underneath them.
type RunStore struct {
	mu    sync.RWMutex
	runs  map[string]*models.Run
	order []string // insertion order
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*models.Run),
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func validateRunID(runID string) error {
	if strings.ContainsAny(runID, "/ \t\r\n") {
		return fmt.Errorf("%w: %q cannot contain '/' or whitespace", ErrInvalidRunID, runID)
	}
	return nil
}

// Create stores a pending run. An empty runID is replaced by a generated one.
func (s *RunStore) Create(runID string, req models.PricingRequest) (models.Run, error) {
	if err := validateRunID(runID); err != nil {
		return models.Run{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if runID == "" {
		runID = utils.GenerateRunID()
		for s.runs[runID] != nil {
			runID = utils.GenerateRunID()
		}
	}
	if _, exists := s.runs[runID]; exists {
		return models.Run{}, fmt.Errorf("%w: %s", ErrRunExists, runID)
	}

	run := &models.Run{
		ID:        runID,
		Status:    models.RunStatusPending,
		Request:   req,
		CreatedAt: now(),
	}
	s.runs[runID] = run
	s.order = append(s.order, runID)
	return snapshot(run), nil
}

func (s *RunStore) Get(runID string) (models.Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return models.Run{}, false
	}
	return snapshot(run), true
}

// List returns runs newest first, optionally filtered by status. An empty status
// matches every run.
func (s *RunStore) List(limit, offset int, status models.RunStatus) []models.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	out := make([]models.Run, 0, min(limit, len(s.order)))
	skipped := 0
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		run := s.runs[s.order[i]]
		if status != "" && run.Status != status {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, snapshot(run))
	}
	return out
}

func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// SetStatus moves a run to status and stamps the matching timestamp. errMsg is
// recorded when non-empty.
func (s *RunStore) SetStatus(runID string, status models.RunStatus, errMsg string) (models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return models.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	run.Status = status
	if errMsg != "" {
		run.Error = errMsg
	}

	switch status {
	case models.RunStatusRunning:
		if run.StartedAt.IsZero() {
			run.StartedAt = now()
		}
	case models.RunStatusCompleted, models.RunStatusFailed:
		run.EndedAt = now()
	}

	return snapshot(run), nil
}

// StartRun moves a pending run to running under a single lock, so two callers
// racing on one run cannot both price it. started is false when the run was
// already running. Terminal runs give ErrRunTerminal.
func (s *RunStore) StartRun(runID string) (run models.Run, started bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[runID]
	if !ok {
		return models.Run{}, false, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	switch r.Status {
	case models.RunStatusRunning:
		return snapshot(r), false, nil
	case models.RunStatusCompleted, models.RunStatusFailed:
		return models.Run{}, false, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	r.Status = models.RunStatusRunning
	r.StartedAt = now()
	return snapshot(r), true, nil
}

func (s *RunStore) SetResult(runID string, result models.PricingResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	run.Result = &result
	return nil
}

func snapshot(run *models.Run) models.Run {
	out := *run
	if run.Result != nil {
		res := *run.Result
		out.Result = &res
	}
	return out
}
