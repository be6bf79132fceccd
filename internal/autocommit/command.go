package autocommit

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/autogit/internal/utils"
	flagutils "github.com/temirov/autogit/internal/utils/flags"
)

const (
	commandUseConstant                       = "run"
	commandShortDescriptionConstant          = "Commit and push pending changes in every manifest repository"
	commandLongDescriptionConstant           = "Run loads the repository manifest, then stages, commits, and pushes pending changes in each listed repository. Repositories are processed in manifest order and one failure never stops the remaining repositories."
	flagManifestNameConstant                 = "manifest"
	flagManifestDescriptionConstant          = "Path to the JSON manifest mapping repository names to paths"
	flagDryRunNameConstant                   = "dry-run"
	flagDryRunDescriptionConstant            = "Report what would change without touching any repository"
	configurationFileResolvedMessageConstant = "resolved configuration file"
	configurationFilePathLogFieldConstant    = "config_file"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the effective command configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the auto-commit cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Dependencies          Dependencies

	dryRunFlagValue bool
}

// Build constructs the cobra command for the auto-commit workflow.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(flagManifestNameConstant, "", flagManifestDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), &builder.dryRunFlagValue, flagDryRunNameConstant, false, flagDryRunDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	options := builder.resolveOptions(command)
	commandLogger := builder.resolveLogger()

	contextAccessor := utils.NewCommandContextAccessor()
	if configurationFilePath, configurationFilePathAvailable := contextAccessor.ConfigurationFilePath(command.Context()); configurationFilePathAvailable && len(configurationFilePath) > 0 {
		commandLogger.Debug(configurationFileResolvedMessageConstant, zap.String(configurationFilePathLogFieldConstant, configurationFilePath))
	}

	serviceDependencies := builder.Dependencies
	serviceDependencies.Logger = commandLogger

	service, serviceError := NewService(serviceDependencies)
	if serviceError != nil {
		return serviceError
	}

	_, runError := service.Run(command.Context(), options)
	return runError
}

func (builder *CommandBuilder) resolveOptions(command *cobra.Command) Options {
	configuration := builder.resolveConfiguration()

	manifestPath := configuration.ManifestPath
	if flagManifestPath, flagError := command.Flags().GetString(flagManifestNameConstant); flagError == nil && command.Flags().Changed(flagManifestNameConstant) {
		manifestPath = flagManifestPath
	}

	dryRun := configuration.DryRun
	if command.Flags().Changed(flagDryRunNameConstant) {
		dryRun = builder.dryRunFlagValue
	}

	return Options{
		ManifestPath:     manifestPath,
		DryRun:           dryRun,
		OperationTimeout: configuration.OperationTimeout(),
	}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().Sanitize()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	return ResolveLogger(builder.LoggerProvider())
}
