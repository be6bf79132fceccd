package autocommit

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/autogit/internal/execshell"
	"github.com/temirov/autogit/internal/fsaccess"
	"github.com/temirov/autogit/internal/gitrepo"
	"github.com/temirov/autogit/internal/manifest"
	"github.com/temirov/autogit/internal/ui"
	pathutils "github.com/temirov/autogit/internal/utils/path"
)

// ManifestLoader resolves repository entries from a manifest document.
type ManifestLoader interface {
	Load(manifestPath string) ([]manifest.RepositoryEntry, error)
}

// GitRepositoryManager exposes the git operations the run performs per repository.
type GitRepositoryManager interface {
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	StageAllChanges(executionContext context.Context, repositoryPath string) error
	CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) error
	PushCurrentBranch(executionContext context.Context, repositoryPath string) error
	CountCommitsAheadOfUpstream(executionContext context.Context, repositoryPath string) (int, error)
}

// Dependencies aggregates the collaborators the service requires. Nil fields
// are replaced with operating system backed implementations during resolution.
type Dependencies struct {
	Logger            *zap.Logger
	FileSystem        fsaccess.FileSystem
	ManifestLoader    ManifestLoader
	RepositoryManager GitRepositoryManager
	Clock             Clock
}

// ResolveLogger returns the configured logger or a no-op fallback.
func ResolveLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// ResolveFileSystem returns the configured filesystem or the operating system implementation.
func ResolveFileSystem(fileSystem fsaccess.FileSystem) fsaccess.FileSystem {
	if fileSystem == nil {
		return fsaccess.NewOSFileSystem()
	}
	return fileSystem
}

// ResolveClock returns the configured clock or the system wall clock.
func ResolveClock(clock Clock) Clock {
	if clock == nil {
		return SystemClock{}
	}
	return clock
}

// ResolveManifestLoader returns the configured loader or one backed by the provided filesystem.
func ResolveManifestLoader(loader ManifestLoader, fileSystem fsaccess.FileSystem) ManifestLoader {
	if loader != nil {
		return loader
	}
	return manifest.NewLoader(ResolveFileSystem(fileSystem), pathutils.NewHomeExpander())
}

// ResolveRepositoryManager returns the configured manager or one that shells out to git,
// tracing raw invocations through the logger.
func ResolveRepositoryManager(manager GitRepositoryManager, logger *zap.Logger) (GitRepositoryManager, error) {
	if manager != nil {
		return manager, nil
	}

	resolvedLogger := ResolveLogger(logger)
	shellExecutor, executorError := execshell.NewShellExecutorWithObserver(resolvedLogger, execshell.NewOSCommandRunner(), ui.NewCommandTracer(resolvedLogger))
	if executorError != nil {
		return nil, executorError
	}
	return gitrepo.NewRepositoryManager(shellExecutor)
}

// Resolve fills every nil dependency with its default implementation.
func (dependencies Dependencies) Resolve() (Dependencies, error) {
	resolved := dependencies
	resolved.Logger = ResolveLogger(resolved.Logger)
	resolved.FileSystem = ResolveFileSystem(resolved.FileSystem)
	resolved.Clock = ResolveClock(resolved.Clock)
	resolved.ManifestLoader = ResolveManifestLoader(resolved.ManifestLoader, resolved.FileSystem)

	repositoryManager, managerError := ResolveRepositoryManager(resolved.RepositoryManager, resolved.Logger)
	if managerError != nil {
		return Dependencies{}, managerError
	}
	resolved.RepositoryManager = repositoryManager

	return resolved, nil
}
