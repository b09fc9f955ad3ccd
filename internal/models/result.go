package models

import "time"

// RunStatus is the terminal state of a run.
type RunStatus string

const (
	RunStopped  RunStatus = "stopped"
	RunTimedOut RunStatus = "timed_out"
)

// RunSpec identifies a single run within a batch.
type RunSpec struct {
	Policy   PolicyKind
	RunIndex int
	Seed     int64
}

// RunResult is the immutable record produced when a run ends, either by the
// policy's stopping rule or by exhausting the time-step budget. It carries no
// wall-clock data so that identical inputs yield bit-identical results.
type RunResult struct {
	Policy   PolicyKind `json:"policy"`
	RunIndex int        `json:"run_index"`
	Seed     int64      `json:"seed"`
	Status   RunStatus  `json:"status"`
	Stopped  bool       `json:"stopped"`
	Steps    int        `json:"steps"`
	// Pulls holds the total pull count per arm; sum(Pulls) == Steps.
	Pulls []int `json:"pulls"`
	// CumulativeRegrets has one entry per step and is non-decreasing.
	CumulativeRegrets []float64 `json:"cumulative_regrets"`
	// BestArm is nil only when the run consumed zero steps.
	BestArm *int `json:"best_arm"`
}

// RunError is the structured error record of a failed run.
type RunError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
}

// RunFailure records a run that aborted. Failures are kept separate from
// results and never counted in aggregates.
type RunFailure struct {
	Policy   PolicyKind `json:"policy"`
	RunIndex int        `json:"run_index"`
	Seed     int64      `json:"seed"`
	Error    RunError   `json:"error"`
}

// EnvironmentTruth snapshots the hidden arm means a batch ran against.
type EnvironmentTruth struct {
	TrueMeans []float64 `json:"true_means"`
	BestArm   int       `json:"best_arm"`
	BestMean  float64   `json:"best_mean"`
	// Gap is the margin between the best and second-best true mean.
	Gap float64 `json:"gap"`
}

// BatchResult contains every run outcome of one batch.
type BatchResult struct {
	BatchID     string           `json:"batch_id"`
	Name        string           `json:"name"`
	Cancelled   bool             `json:"cancelled"`
	SkippedRuns int              `json:"skipped_runs"`
	StartedAt   time.Time        `json:"started_at"`
	EndedAt     time.Time        `json:"ended_at"`
	Truth       EnvironmentTruth `json:"environment"`
	// Policies preserves the configured comparison order.
	Policies []PolicyKind `json:"policies"`
	// Results maps each policy to its completed runs in ascending run
	// index; failed runs are absent.
	Results  map[PolicyKind][]RunResult `json:"results"`
	Failures []RunFailure               `json:"failures"`
}
