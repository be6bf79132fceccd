package autocommit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/autogit/internal/fsaccess"
	"github.com/temirov/autogit/internal/manifest"
)

const (
	commitMessageTemplateConstant              = "Auto-commit: Updated files - %s"
	commitTimestampLayoutConstant              = "2006-01-02 15:04"
	manifestLoadedTemplateConstant             = "Loaded manifest with %d repositories"
	manifestLoadFailedTemplateConstant         = "Failed to load manifest: %s"
	processingRepositoryTemplateConstant       = "Processing repository %s at %s"
	repositoryFailureTemplateConstant          = "Failed to process repository %s: %s"
	repositorySkippedTemplateConstant          = "No changes detected in repository %s"
	repositoryUpdatedTemplateConstant          = "Updated repository %s: %s"
	pathDoesNotExistDetailConstant             = "path does not exist"
	notAValidRepositoryDetailConstant          = "not a valid repository"
	noChangesDetailConstant                    = "no changes"
	committedAndPushedDetailConstant           = "committed and pushed changes"
	pushedPendingCommitsDetailTemplateConstant = "pushed %d pending commits"
	dryRunCommitDetailConstant                 = "dry run: would commit and push changes"
	dryRunPushDetailTemplateConstant           = "dry run: would push %d pending commits"
)

// Options carries the per-run parameters of the auto-commit workflow.
type Options struct {
	ManifestPath     string
	DryRun           bool
	OperationTimeout time.Duration
}

// Service processes every manifest entry sequentially, isolating failures so
// one broken repository never prevents the rest from being updated.
type Service struct {
	logger            *zap.Logger
	fileSystem        fsaccess.FileSystem
	manifestLoader    ManifestLoader
	repositoryManager GitRepositoryManager
	clock             Clock
	reporter          *Reporter
}

// NewService constructs a Service, substituting defaults for nil dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	resolvedDependencies, resolutionError := dependencies.Resolve()
	if resolutionError != nil {
		return nil, resolutionError
	}

	return &Service{
		logger:            resolvedDependencies.Logger,
		fileSystem:        resolvedDependencies.FileSystem,
		manifestLoader:    resolvedDependencies.ManifestLoader,
		repositoryManager: resolvedDependencies.RepositoryManager,
		clock:             resolvedDependencies.Clock,
		reporter:          NewReporter(resolvedDependencies.Logger),
	}, nil
}

// Run loads the manifest and processes each repository in document order.
// The returned error is non-nil when the manifest cannot be loaded or when
// at least one repository fails.
func (service *Service) Run(executionContext context.Context, options Options) (RunSummary, error) {
	repositoryEntries, loadError := service.manifestLoader.Load(options.ManifestPath)
	if loadError != nil {
		service.logger.Error(fmt.Sprintf(manifestLoadFailedTemplateConstant, loadError))
		return RunSummary{}, loadError
	}

	service.logger.Info(fmt.Sprintf(manifestLoadedTemplateConstant, len(repositoryEntries)))

	outcomes := make([]RepositoryOutcome, 0, len(repositoryEntries))
	for _, repositoryEntry := range repositoryEntries {
		outcomes = append(outcomes, service.processRepository(executionContext, repositoryEntry, options))
	}

	summary := Summarize(outcomes)
	return summary, service.reporter.Report(summary)
}

func (service *Service) processRepository(executionContext context.Context, repositoryEntry manifest.RepositoryEntry, options Options) RepositoryOutcome {
	service.logger.Info(fmt.Sprintf(processingRepositoryTemplateConstant, repositoryEntry.Name, repositoryEntry.Path))

	if !fsaccess.DirectoryExists(service.fileSystem, repositoryEntry.Path) {
		return service.failRepository(repositoryEntry, pathDoesNotExistDetailConstant)
	}
	if !fsaccess.GitMetadataPresent(service.fileSystem, repositoryEntry.Path) {
		return service.failRepository(repositoryEntry, notAValidRepositoryDetailConstant)
	}

	worktreeClean, statusError := service.checkCleanWorktree(executionContext, repositoryEntry.Path, options)
	if statusError != nil {
		return service.failRepository(repositoryEntry, statusError.Error())
	}

	if worktreeClean {
		return service.processCleanRepository(executionContext, repositoryEntry, options)
	}
	return service.processDirtyRepository(executionContext, repositoryEntry, options)
}

// processCleanRepository pushes commits a previous run created but failed to
// publish, so retrying after a push failure never records a redundant commit.
func (service *Service) processCleanRepository(executionContext context.Context, repositoryEntry manifest.RepositoryEntry, options Options) RepositoryOutcome {
	pendingCommitCount, countError := service.countCommitsAheadOfUpstream(executionContext, repositoryEntry.Path, options)
	if countError != nil {
		return service.failRepository(repositoryEntry, countError.Error())
	}

	if pendingCommitCount == 0 {
		service.logger.Info(fmt.Sprintf(repositorySkippedTemplateConstant, repositoryEntry.Name))
		return RepositoryOutcome{
			Name:    repositoryEntry.Name,
			Path:    repositoryEntry.Path,
			Status:  OutcomeStatusSkippedNoChanges,
			Details: noChangesDetailConstant,
		}
	}

	if options.DryRun {
		return service.succeedRepository(repositoryEntry, fmt.Sprintf(dryRunPushDetailTemplateConstant, pendingCommitCount))
	}

	if pushError := service.pushCurrentBranch(executionContext, repositoryEntry.Path, options); pushError != nil {
		return service.failRepository(repositoryEntry, pushError.Error())
	}
	return service.succeedRepository(repositoryEntry, fmt.Sprintf(pushedPendingCommitsDetailTemplateConstant, pendingCommitCount))
}

func (service *Service) processDirtyRepository(executionContext context.Context, repositoryEntry manifest.RepositoryEntry, options Options) RepositoryOutcome {
	if options.DryRun {
		return service.succeedRepository(repositoryEntry, dryRunCommitDetailConstant)
	}

	if stageError := service.stageAllChanges(executionContext, repositoryEntry.Path, options); stageError != nil {
		return service.failRepository(repositoryEntry, stageError.Error())
	}

	commitMessage := fmt.Sprintf(commitMessageTemplateConstant, service.clock.Now().Format(commitTimestampLayoutConstant))
	if commitError := service.createCommit(executionContext, repositoryEntry.Path, commitMessage, options); commitError != nil {
		return service.failRepository(repositoryEntry, commitError.Error())
	}

	if pushError := service.pushCurrentBranch(executionContext, repositoryEntry.Path, options); pushError != nil {
		return service.failRepository(repositoryEntry, pushError.Error())
	}
	return service.succeedRepository(repositoryEntry, committedAndPushedDetailConstant)
}

func (service *Service) failRepository(repositoryEntry manifest.RepositoryEntry, failureDetails string) RepositoryOutcome {
	service.logger.Error(fmt.Sprintf(repositoryFailureTemplateConstant, repositoryEntry.Name, failureDetails))
	return RepositoryOutcome{
		Name:    repositoryEntry.Name,
		Path:    repositoryEntry.Path,
		Status:  OutcomeStatusFailed,
		Details: failureDetails,
	}
}

func (service *Service) succeedRepository(repositoryEntry manifest.RepositoryEntry, successDetails string) RepositoryOutcome {
	service.logger.Info(fmt.Sprintf(repositoryUpdatedTemplateConstant, repositoryEntry.Name, successDetails))
	return RepositoryOutcome{
		Name:    repositoryEntry.Name,
		Path:    repositoryEntry.Path,
		Status:  OutcomeStatusSucceeded,
		Details: successDetails,
	}
}

func (service *Service) checkCleanWorktree(parentContext context.Context, repositoryPath string, options Options) (bool, error) {
	timedContext, cancelOperation := operationContext(parentContext, options.OperationTimeout)
	defer cancelOperation()
	return service.repositoryManager.CheckCleanWorktree(timedContext, repositoryPath)
}

func (service *Service) countCommitsAheadOfUpstream(parentContext context.Context, repositoryPath string, options Options) (int, error) {
	timedContext, cancelOperation := operationContext(parentContext, options.OperationTimeout)
	defer cancelOperation()
	return service.repositoryManager.CountCommitsAheadOfUpstream(timedContext, repositoryPath)
}

func (service *Service) stageAllChanges(parentContext context.Context, repositoryPath string, options Options) error {
	timedContext, cancelOperation := operationContext(parentContext, options.OperationTimeout)
	defer cancelOperation()
	return service.repositoryManager.StageAllChanges(timedContext, repositoryPath)
}

func (service *Service) createCommit(parentContext context.Context, repositoryPath string, commitMessage string, options Options) error {
	timedContext, cancelOperation := operationContext(parentContext, options.OperationTimeout)
	defer cancelOperation()
	return service.repositoryManager.CreateCommit(timedContext, repositoryPath, commitMessage)
}

func (service *Service) pushCurrentBranch(parentContext context.Context, repositoryPath string, options Options) error {
	timedContext, cancelOperation := operationContext(parentContext, options.OperationTimeout)
	defer cancelOperation()
	return service.repositoryManager.PushCurrentBranch(timedContext, repositoryPath)
}

// operationContext bounds a single git operation. A non-positive timeout
// leaves the parent context untouched.
func operationContext(parentContext context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return parentContext, func() {}
	}
	return context.WithTimeout(parentContext, timeout)
}
