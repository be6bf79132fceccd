package execshell

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	gitExecutableNameConstant                 = "git"
)

// CommandName identifies a supported executable.
type CommandName string

// Supported executables.
const (
	CommandGit CommandName = CommandName(gitExecutableNameConstant)
)

// CommandDetails describes a single command invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines a CommandName with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandFailedError indicates a command completed with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the command failure including captured standard error output.
func (failedError CommandFailedError) Error() string {
	formatter := CommandMessageFormatter{}
	return formatter.BuildFailureMessage(failedError.Command, failedError.Result)
}

// CommandExecutionError indicates a command could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	formatter := CommandMessageFormatter{}
	return formatter.BuildExecutionFailureMessage(executionError.Command, executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutor coordinates command execution, logging, and event notification.
type ShellExecutor struct {
	logger           *zap.Logger
	commandRunner    CommandRunner
	messageFormatter CommandMessageFormatter
	eventObserver    CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor from the provided logger and runner.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithObserver(logger, commandRunner, noopCommandEventObserver{})
}

// NewShellExecutorWithObserver constructs a ShellExecutor that additionally notifies the supplied observer.
func NewShellExecutorWithObserver(logger *zap.Logger, commandRunner CommandRunner, eventObserver CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if eventObserver == nil {
		eventObserver = noopCommandEventObserver{}
	}
	return &ShellExecutor{
		logger:           logger,
		commandRunner:    commandRunner,
		messageFormatter: CommandMessageFormatter{},
		eventObserver:    eventObserver,
	}, nil
}

// ExecuteGit runs git with the provided invocation details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	gitCommand := ShellCommand{Name: CommandGit, Details: details}
	return executor.execute(executionContext, gitCommand)
}

func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Info(executor.messageFormatter.BuildStartedMessage(command))
	executor.eventObserver.CommandStarted(command)

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Error(executor.messageFormatter.BuildExecutionFailureMessage(command, runError))
		executor.eventObserver.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.eventObserver.CommandCompleted(command, executionResult)
	if executionResult.ExitCode != 0 {
		executor.logger.Warn(executor.messageFormatter.BuildFailureMessage(command, executionResult))
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Info(executor.messageFormatter.BuildSuccessMessage(command))
	return executionResult, nil
}
