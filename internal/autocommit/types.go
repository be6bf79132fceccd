package autocommit

import "time"

const (
	outcomeStatusSucceededValueConstant        = "succeeded"
	outcomeStatusSkippedNoChangesValueConstant = "skipped_no_changes"
	outcomeStatusFailedValueConstant           = "failed"
)

// OutcomeStatus enumerates the terminal states a repository can reach during a run.
type OutcomeStatus string

// Terminal repository states.
const (
	OutcomeStatusSucceeded        OutcomeStatus = OutcomeStatus(outcomeStatusSucceededValueConstant)
	OutcomeStatusSkippedNoChanges OutcomeStatus = OutcomeStatus(outcomeStatusSkippedNoChangesValueConstant)
	OutcomeStatusFailed           OutcomeStatus = OutcomeStatus(outcomeStatusFailedValueConstant)
)

// RepositoryOutcome records how processing ended for a single repository.
type RepositoryOutcome struct {
	Name    string
	Path    string
	Status  OutcomeStatus
	Details string
}

// RunSummary aggregates the outcomes of one manifest run.
type RunSummary struct {
	Outcomes  []RepositoryOutcome
	Succeeded int
	Skipped   int
	Failed    int
}

// Processed reports how many repositories the run visited.
func (summary RunSummary) Processed() int {
	return len(summary.Outcomes)
}

// Clock supplies the current time so commit messages stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the wall clock.
type SystemClock struct{}

// Now returns the current wall clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
