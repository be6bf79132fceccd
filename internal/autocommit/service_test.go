package autocommit_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/autogit/internal/autocommit"
	"github.com/temirov/autogit/internal/manifest"
)

const (
	serviceSubtestNameTemplateConstant    = "%d_%s"
	testManifestPathConstant              = "/workspace/repositories.json"
	testFirstRepositoryNameConstant       = "alpha"
	testFirstRepositoryPathConstant       = "/workspace/alpha"
	testSecondRepositoryNameConstant      = "beta"
	testSecondRepositoryPathConstant      = "/workspace/beta"
	testCommitTimestampConstant           = "2026-08-24 10:00"
	testExpectedCommitMessageConstant     = "Auto-commit: Updated files - " + testCommitTimestampConstant
	testCaseMissingPathNameConstant       = "missing_path_fails_repository"
	testCaseNotARepositoryNameConstant    = "directory_without_git_metadata_fails_repository"
	testCaseStatusFailureNameConstant     = "status_failure_fails_repository"
	testCaseStageFailureNameConstant      = "stage_failure_fails_repository"
	testCaseCommitFailureNameConstant     = "commit_failure_fails_repository"
	testCasePushFailureNameConstant       = "push_failure_fails_repository"
	testCaseAheadCountFailureNameConstant = "ahead_count_failure_fails_repository"
)

type fakeFileInfo struct {
	directory bool
}

func (information fakeFileInfo) Name() string       { return "" }
func (information fakeFileInfo) Size() int64        { return 0 }
func (information fakeFileInfo) Mode() fs.FileMode  { return 0 }
func (information fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (information fakeFileInfo) IsDir() bool        { return information.directory }
func (information fakeFileInfo) Sys() any           { return nil }

type stubFileSystem struct {
	directories map[string]bool
}

func (fileSystem *stubFileSystem) Stat(path string) (fs.FileInfo, error) {
	if fileSystem.directories[path] {
		return fakeFileInfo{directory: true}, nil
	}
	return nil, fs.ErrNotExist
}

func (fileSystem *stubFileSystem) ReadFile(path string) ([]byte, error) {
	return nil, fs.ErrNotExist
}

func (fileSystem *stubFileSystem) Abs(path string) (string, error) {
	return path, nil
}

// addRepository registers a directory carrying git metadata.
func (fileSystem *stubFileSystem) addRepository(repositoryPath string) {
	fileSystem.directories[repositoryPath] = true
	fileSystem.directories[filepath.Join(repositoryPath, ".git")] = true
}

type stubManifestLoader struct {
	entries           []manifest.RepositoryEntry
	loadError         error
	requestedManifest string
}

func (loader *stubManifestLoader) Load(manifestPath string) ([]manifest.RepositoryEntry, error) {
	loader.requestedManifest = manifestPath
	return loader.entries, loader.loadError
}

type repositoryScript struct {
	worktreeClean bool
	statusError   error
	aheadCount    int
	aheadError    error
	stageError    error
	commitError   error
	pushError     error
}

type stubRepositoryManager struct {
	scripts          map[string]repositoryScript
	recordedCalls    []string
	recordedMessages []string
}

func (manager *stubRepositoryManager) recordCall(operationName string, repositoryPath string) {
	manager.recordedCalls = append(manager.recordedCalls, fmt.Sprintf("%s %s", operationName, repositoryPath))
}

func (manager *stubRepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	manager.recordCall("status", repositoryPath)
	script := manager.scripts[repositoryPath]
	return script.worktreeClean, script.statusError
}

func (manager *stubRepositoryManager) StageAllChanges(executionContext context.Context, repositoryPath string) error {
	manager.recordCall("stage", repositoryPath)
	return manager.scripts[repositoryPath].stageError
}

func (manager *stubRepositoryManager) CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) error {
	manager.recordCall("commit", repositoryPath)
	manager.recordedMessages = append(manager.recordedMessages, commitMessage)
	return manager.scripts[repositoryPath].commitError
}

func (manager *stubRepositoryManager) PushCurrentBranch(executionContext context.Context, repositoryPath string) error {
	manager.recordCall("push", repositoryPath)
	return manager.scripts[repositoryPath].pushError
}

func (manager *stubRepositoryManager) CountCommitsAheadOfUpstream(executionContext context.Context, repositoryPath string) (int, error) {
	manager.recordCall("count", repositoryPath)
	script := manager.scripts[repositoryPath]
	return script.aheadCount, script.aheadError
}

type fixedClock struct {
	instant time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.instant
}

func buildTestClock(testInstance *testing.T) fixedClock {
	instant, parseError := time.Parse("2006-01-02 15:04", testCommitTimestampConstant)
	require.NoError(testInstance, parseError)
	return fixedClock{instant: instant}
}

func buildService(testInstance *testing.T, loader *stubManifestLoader, fileSystem *stubFileSystem, manager *stubRepositoryManager) *autocommit.Service {
	service, creationError := autocommit.NewService(autocommit.Dependencies{
		Logger:            zap.NewNop(),
		FileSystem:        fileSystem,
		ManifestLoader:    loader,
		RepositoryManager: manager,
		Clock:             buildTestClock(testInstance),
	})
	require.NoError(testInstance, creationError)
	return service
}

func defaultOptions() autocommit.Options {
	return autocommit.Options{ManifestPath: testManifestPathConstant, OperationTimeout: time.Minute}
}

func TestRunCommitsAndPushesDirtyRepository(testInstance *testing.T) {
	fileSystem := &stubFileSystem{directories: map[string]bool{}}
	fileSystem.addRepository(testFirstRepositoryPathConstant)
	loader := &stubManifestLoader{entries: []manifest.RepositoryEntry{
		{Name: testFirstRepositoryNameConstant, Path: testFirstRepositoryPathConstant},
	}}
	manager := &stubRepositoryManager{scripts: map[string]repositoryScript{
		testFirstRepositoryPathConstant: {worktreeClean: false},
	}}
	service := buildService(testInstance, loader, fileSystem, manager)

	summary, runError := service.Run(context.Background(), defaultOptions())

	require.NoError(testInstance, runError)
	require.Equal(testInstance, testManifestPathConstant, loader.requestedManifest)
	require.Equal(testInstance, 1, summary.Succeeded)
	require.Equal(testInstance, []string{
		"status " + testFirstRepositoryPathConstant,
		"stage " + testFirstRepositoryPathConstant,
		"commit " + testFirstRepositoryPathConstant,
		"push " + testFirstRepositoryPathConstant,
	}, manager.recordedCalls)
	require.Equal(testInstance, []string{testExpectedCommitMessageConstant}, manager.recordedMessages)
}

func TestRunSkipsCleanRepositoryWithoutMutations(testInstance *testing.T) {
	fileSystem := &stubFileSystem{directories: map[string]bool{}}
	fileSystem.addRepository(testFirstRepositoryPathConstant)
	loader := &stubManifestLoader{entries: []manifest.RepositoryEntry{
		{Name: testFirstRepositoryNameConstant, Path: testFirstRepositoryPathConstant},
	}}
	manager := &stubRepositoryManager{scripts: map[string]repositoryScript{
		testFirstRepositoryPathConstant: {worktreeClean: true, aheadCount: 0},
	}}
	service := buildService(testInstance, loader, fileSystem, manager)

	summary, runError := service.Run(context.Background(), defaultOptions())

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.Skipped)
	require.Equal(testInstance, autocommit.OutcomeStatusSkippedNoChanges, summary.Outcomes[0].Status)
	require.Equal(testInstance, []string{
		"status " + testFirstRepositoryPathConstant,
		"count " + testFirstRepositoryPathConstant,
	}, manager.recordedCalls)
	require.Empty(testInstance, manager.recordedMessages)
}

func TestRunPushesPendingCommitsWithoutRecommitting(testInstance *testing.T) {
	fileSystem := &stubFileSystem{directories: map[string]bool{}}
	fileSystem.addRepository(testFirstRepositoryPathConstant)
	loader := &stubManifestLoader{entries: []manifest.RepositoryEntry{
		{Name: testFirstRepositoryNameConstant, Path: testFirstRepositoryPathConstant},
	}}
	manager := &stubRepositoryManager{scripts: map[string]repositoryScript{
		testFirstRepositoryPathConstant: {worktreeClean: true, aheadCount: 2},
	}}
	service := buildService(testInstance, loader, fileSystem, manager)

	summary, runError := service.Run(context.Background(), defaultOptions())

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.Succeeded)
	require.Equal(testInstance, "pushed 2 pending commits", summary.Outcomes[0].Details)
	require.Equal(testInstance, []string{
		"status " + testFirstRepositoryPathConstant,
		"count " + testFirstRepositoryPathConstant,
		"push " + testFirstRepositoryPathConstant,
	}, manager.recordedCalls)
	require.Empty(testInstance, manager.recordedMessages)
}

func TestRunDryRunReportsWithoutMutations(testInstance *testing.T) {
	fileSystem := &stubFileSystem{directories: map[string]bool{}}
	fileSystem.addRepository(testFirstRepositoryPathConstant)
	fileSystem.addRepository(testSecondRepositoryPathConstant)
	loader := &stubManifestLoader{entries: []manifest.RepositoryEntry{
		{Name: testFirstRepositoryNameConstant, Path: testFirstRepositoryPathConstant},
		{Name: testSecondRepositoryNameConstant, Path: testSecondRepositoryPathConstant},
	}}
	manager := &stubRepositoryManager{scripts: map[string]repositoryScript{
		testFirstRepositoryPathConstant:  {worktreeClean: false},
		testSecondRepositoryPathConstant: {worktreeClean: true, aheadCount: 1},
	}}
	service := buildService(testInstance, loader, fileSystem, manager)

	options := defaultOptions()
	options.DryRun = true
	summary, runError := service.Run(context.Background(), options)

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 2, summary.Succeeded)
	require.Equal(testInstance, "dry run: would commit and push changes", summary.Outcomes[0].Details)
	require.Equal(testInstance, "dry run: would push 1 pending commits", summary.Outcomes[1].Details)
	require.Equal(testInstance, []string{
		"status " + testFirstRepositoryPathConstant,
		"status " + testSecondRepositoryPathConstant,
		"count " + testSecondRepositoryPathConstant,
	}, manager.recordedCalls)
	require.Empty(testInstance, manager.recordedMessages)
}

func TestRunIsolatesRepositoryFailures(testInstance *testing.T) {
	stepFailure := errors.New("step failure")

	testCases := []struct {
		name            string
		registerPath    bool
		addGitMetadata  bool
		script          repositoryScript
		expectedDetails string
	}{
		{
			name:            testCaseMissingPathNameConstant,
			registerPath:    false,
			expectedDetails: "path does not exist",
		},
		{
			name:            testCaseNotARepositoryNameConstant,
			registerPath:    true,
			addGitMetadata:  false,
			expectedDetails: "not a valid repository",
		},
		{
			name:            testCaseStatusFailureNameConstant,
			registerPath:    true,
			addGitMetadata:  true,
			script:          repositoryScript{statusError: stepFailure},
			expectedDetails: stepFailure.Error(),
		},
		{
			name:            testCaseAheadCountFailureNameConstant,
			registerPath:    true,
			addGitMetadata:  true,
			script:          repositoryScript{worktreeClean: true, aheadError: stepFailure},
			expectedDetails: stepFailure.Error(),
		},
		{
			name:            testCaseStageFailureNameConstant,
			registerPath:    true,
			addGitMetadata:  true,
			script:          repositoryScript{stageError: stepFailure},
			expectedDetails: stepFailure.Error(),
		},
		{
			name:            testCaseCommitFailureNameConstant,
			registerPath:    true,
			addGitMetadata:  true,
			script:          repositoryScript{commitError: stepFailure},
			expectedDetails: stepFailure.Error(),
		},
		{
			name:            testCasePushFailureNameConstant,
			registerPath:    true,
			addGitMetadata:  true,
			script:          repositoryScript{pushError: stepFailure},
			expectedDetails: stepFailure.Error(),
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(serviceSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fileSystem := &stubFileSystem{directories: map[string]bool{}}
			if testCase.registerPath {
				fileSystem.directories[testFirstRepositoryPathConstant] = true
			}
			if testCase.addGitMetadata {
				fileSystem.addRepository(testFirstRepositoryPathConstant)
			}
			fileSystem.addRepository(testSecondRepositoryPathConstant)

			loader := &stubManifestLoader{entries: []manifest.RepositoryEntry{
				{Name: testFirstRepositoryNameConstant, Path: testFirstRepositoryPathConstant},
				{Name: testSecondRepositoryNameConstant, Path: testSecondRepositoryPathConstant},
			}}
			manager := &stubRepositoryManager{scripts: map[string]repositoryScript{
				testFirstRepositoryPathConstant:  testCase.script,
				testSecondRepositoryPathConstant: {worktreeClean: false},
			}}
			service := buildService(testInstance, loader, fileSystem, manager)

			summary, runError := service.Run(context.Background(), defaultOptions())

			require.ErrorIs(testInstance, runError, autocommit.ErrRepositoriesFailed)
			require.Equal(testInstance, 1, summary.Failed)
			require.Equal(testInstance, 1, summary.Succeeded)
			require.Equal(testInstance, autocommit.OutcomeStatusFailed, summary.Outcomes[0].Status)
			require.Equal(testInstance, testCase.expectedDetails, summary.Outcomes[0].Details)

			require.Equal(testInstance, autocommit.OutcomeStatusSucceeded, summary.Outcomes[1].Status)
			require.Contains(testInstance, manager.recordedCalls, "push "+testSecondRepositoryPathConstant)
		})
	}
}

func TestRunReturnsManifestLoadFailures(testInstance *testing.T) {
	loadFailure := manifest.MalformedManifestError{Reason: "top-level value must be a JSON object"}
	loader := &stubManifestLoader{loadError: loadFailure}
	service := buildService(testInstance, loader, &stubFileSystem{directories: map[string]bool{}}, &stubRepositoryManager{scripts: map[string]repositoryScript{}})

	summary, runError := service.Run(context.Background(), defaultOptions())

	require.Error(testInstance, runError)
	malformedError := manifest.MalformedManifestError{}
	require.ErrorAs(testInstance, runError, &malformedError)
	require.Zero(testInstance, summary.Processed())
}

func TestRunProcessesEmptyManifest(testInstance *testing.T) {
	loader := &stubManifestLoader{entries: []manifest.RepositoryEntry{}}
	service := buildService(testInstance, loader, &stubFileSystem{directories: map[string]bool{}}, &stubRepositoryManager{scripts: map[string]repositoryScript{}})

	summary, runError := service.Run(context.Background(), defaultOptions())

	require.NoError(testInstance, runError)
	require.Zero(testInstance, summary.Processed())
}
