package ui

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/autogit/internal/execshell"
)

const (
	commandStartedMessageTemplateConstant          = "Running %s"
	commandCompletedMessageTemplateConstant        = "Completed %s"
	commandFailedExitCodeMessageTemplateConstant   = "%s exited with code %d"
	commandExecutionFailureMessageTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant         = " (in %s)"
	commandArgumentsJoinSeparatorConstant          = " "
	standardErrorSuffixTemplateConstant            = ": %s"
	unknownFailureMessageConstant                  = "unknown error"
)

// CommandEventFormatter builds human-readable labels for raw git invocations.
type CommandEventFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandEventFormatter) BuildStartedMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandStartedMessageTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandEventFormatter) BuildSuccessMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandCompletedMessageTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandEventFormatter) BuildFailureMessage(command execshell.ShellCommand, result execshell.ExecutionResult) string {
	baseMessage := fmt.Sprintf(commandFailedExitCodeMessageTemplateConstant, formatter.formatCommandLabel(command), result.ExitCode)
	trimmedStandardError := strings.TrimSpace(result.StandardError)
	if len(trimmedStandardError) == 0 {
		return baseMessage
	}
	return baseMessage + fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(command execshell.ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(commandExecutionFailureMessageTemplateConstant, formatter.formatCommandLabel(command), failureMessage)
}

func (formatter CommandEventFormatter) formatCommandLabel(command execshell.ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return commandLabel
	}
	return commandLabel + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

// CommandTracer logs raw git invocations at debug level so troubleshooting
// sessions can see the exact subprocess activity without duplicating the
// executor's summary lines at info level.
type CommandTracer struct {
	logger    *zap.Logger
	formatter CommandEventFormatter
}

// NewCommandTracer constructs a tracer backed by the provided zap logger.
func NewCommandTracer(logger *zap.Logger) *CommandTracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandTracer{logger: logger, formatter: CommandEventFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver by tracing command start notifications.
func (tracer *CommandTracer) CommandStarted(command execshell.ShellCommand) {
	if tracer == nil {
		return
	}
	tracer.logger.Debug(tracer.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver by tracing command completion notifications.
func (tracer *CommandTracer) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if tracer == nil {
		return
	}
	if result.ExitCode == 0 {
		tracer.logger.Debug(tracer.formatter.BuildSuccessMessage(command))
		return
	}
	tracer.logger.Debug(tracer.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed implements execshell.CommandEventObserver by tracing unexpected execution failures.
func (tracer *CommandTracer) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if tracer == nil {
		return
	}
	tracer.logger.Debug(tracer.formatter.BuildExecutionFailureMessage(command, failure))
}
