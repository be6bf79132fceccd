package autocommit

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	runSummaryTemplateConstant         = "processed %d repositories: %d succeeded, %d skipped, %d failed"
	repositoriesFailedMessageConstant  = "one or more repositories failed"
	repositoriesFailedTemplateConstant = "%w: %d of %d repositories"
)

// ErrRepositoriesFailed indicates at least one repository reached the failed state.
var ErrRepositoriesFailed = errors.New(repositoriesFailedMessageConstant)

// Summarize counts terminal states across the supplied outcomes.
func Summarize(outcomes []RepositoryOutcome) RunSummary {
	summary := RunSummary{Outcomes: outcomes}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case OutcomeStatusSucceeded:
			summary.Succeeded++
		case OutcomeStatusSkippedNoChanges:
			summary.Skipped++
		case OutcomeStatusFailed:
			summary.Failed++
		}
	}
	return summary
}

// Reporter emits the end-of-run summary.
type Reporter struct {
	logger *zap.Logger
}

// NewReporter constructs a Reporter backed by the provided logger.
func NewReporter(logger *zap.Logger) *Reporter {
	return &Reporter{logger: ResolveLogger(logger)}
}

// Report logs the run summary and returns an error when any repository failed.
func (reporter *Reporter) Report(summary RunSummary) error {
	summaryMessage := fmt.Sprintf(runSummaryTemplateConstant, summary.Processed(), summary.Succeeded, summary.Skipped, summary.Failed)

	if summary.Failed > 0 {
		reporter.logger.Warn(summaryMessage)
		return fmt.Errorf(repositoriesFailedTemplateConstant, ErrRepositoriesFailed, summary.Failed, summary.Processed())
	}

	reporter.logger.Info(summaryMessage)
	return nil
}
