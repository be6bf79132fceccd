package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/autogit/internal/execshell"
)

const (
	gitStatusSubcommandConstant           = "status"
	gitStatusPorcelainFlagConstant        = "--porcelain"
	gitAddSubcommandConstant              = "add"
	gitAddAllFlagConstant                 = "--all"
	gitCommitSubcommandConstant           = "commit"
	gitCommitMessageFlagConstant          = "-m"
	gitPushSubcommandConstant             = "push"
	gitRevListSubcommandConstant          = "rev-list"
	gitRevListCountFlagConstant           = "--count"
	gitUpstreamRangeConstant              = "@{u}..HEAD"
	terminalPromptEnvironmentKeyConstant  = "GIT_TERMINAL_PROMPT"
	terminalPromptDisabledValueConstant   = "0"
	executorNotConfiguredMessageConstant  = "git executor not configured"
	aheadCountParseErrorTemplateConstant  = "failed to parse commit count %q: %w"
	commitMessageRequiredMessageConstant  = "commit message must not be empty"
	repositoryPathRequiredMessageConstant = "repository path must not be empty"
)

// ErrExecutorNotConfigured indicates the manager was constructed without a git executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrCommitMessageRequired indicates an empty commit message was supplied.
var ErrCommitMessageRequired = errors.New(commitMessageRequiredMessageConstant)

// ErrRepositoryPathRequired indicates an operation was requested without a repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// GitExecutor runs git commands and reports their results.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs git operations against local repositories.
// Every command disables terminal credential prompts so unattended runs
// fail fast instead of hanging.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CheckCleanWorktree reports whether the repository worktree carries no staged or unstaged changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	statusResult, statusError := manager.executeGit(executionContext, repositoryPath, gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant)
	if statusError != nil {
		return false, statusError
	}
	return len(strings.TrimSpace(statusResult.StandardOutput)) == 0, nil
}

// StageAllChanges stages every modification, addition, and deletion in the repository.
func (manager *RepositoryManager) StageAllChanges(executionContext context.Context, repositoryPath string) error {
	_, stageError := manager.executeGit(executionContext, repositoryPath, gitAddSubcommandConstant, gitAddAllFlagConstant)
	return stageError
}

// CreateCommit records a commit containing the staged changes with the supplied message.
func (manager *RepositoryManager) CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) error {
	if len(strings.TrimSpace(commitMessage)) == 0 {
		return ErrCommitMessageRequired
	}
	_, commitError := manager.executeGit(executionContext, repositoryPath, gitCommitSubcommandConstant, gitCommitMessageFlagConstant, commitMessage)
	return commitError
}

// PushCurrentBranch pushes the current branch to its configured upstream.
func (manager *RepositoryManager) PushCurrentBranch(executionContext context.Context, repositoryPath string) error {
	_, pushError := manager.executeGit(executionContext, repositoryPath, gitPushSubcommandConstant)
	return pushError
}

// CountCommitsAheadOfUpstream reports how many local commits the upstream branch is missing.
// Repositories without a configured upstream report zero commits ahead.
func (manager *RepositoryManager) CountCommitsAheadOfUpstream(executionContext context.Context, repositoryPath string) (int, error) {
	revListResult, revListError := manager.executeGit(executionContext, repositoryPath, gitRevListSubcommandConstant, gitRevListCountFlagConstant, gitUpstreamRangeConstant)
	if revListError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(revListError, &commandFailure) {
			return 0, nil
		}
		return 0, revListError
	}

	trimmedCount := strings.TrimSpace(revListResult.StandardOutput)
	if len(trimmedCount) == 0 {
		return 0, nil
	}

	aheadCount, parseError := strconv.Atoi(trimmedCount)
	if parseError != nil {
		return 0, fmt.Errorf(aheadCountParseErrorTemplateConstant, trimmedCount, parseError)
	}
	return aheadCount, nil
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return execshell.ExecutionResult{}, ErrRepositoryPathRequired
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
		EnvironmentVariables: map[string]string{
			terminalPromptEnvironmentKeyConstant: terminalPromptDisabledValueConstant,
		},
	}
	return manager.executor.ExecuteGit(executionContext, commandDetails)
}
