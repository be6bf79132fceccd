package autocommit

import (
	"strings"
	"time"
)

const (
	defaultManifestPathConstant              = "repositories.json"
	defaultOperationTimeoutSecondsConstant   = 120
	manifestPathConfigurationKeyConstant     = ".manifest_path"
	operationTimeoutConfigurationKeyConstant = ".operation_timeout_seconds"
	dryRunConfigurationKeyConstant           = ".dry_run"
)

// CommandConfiguration captures the configurable inputs of the auto-commit command.
type CommandConfiguration struct {
	ManifestPath            string `mapstructure:"manifest_path"`
	OperationTimeoutSeconds int    `mapstructure:"operation_timeout_seconds"`
	DryRun                  bool   `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration returns the built-in configuration values.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ManifestPath:            defaultManifestPathConstant,
		OperationTimeoutSeconds: defaultOperationTimeoutSecondsConstant,
	}
}

// DefaultConfigurationValues exposes the built-in values keyed under the supplied configuration prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + manifestPathConfigurationKeyConstant:     defaults.ManifestPath,
		configurationKeyPrefix + operationTimeoutConfigurationKeyConstant: defaults.OperationTimeoutSeconds,
		configurationKeyPrefix + dryRunConfigurationKeyConstant:           defaults.DryRun,
	}
}

// Sanitize normalizes whitespace and replaces unusable values with defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.ManifestPath = strings.TrimSpace(sanitized.ManifestPath)
	if len(sanitized.ManifestPath) == 0 {
		sanitized.ManifestPath = defaultManifestPathConstant
	}
	if sanitized.OperationTimeoutSeconds < 0 {
		sanitized.OperationTimeoutSeconds = defaultOperationTimeoutSecondsConstant
	}
	return sanitized
}

// OperationTimeout converts the configured seconds into a duration.
// A zero value disables per-operation timeouts.
func (configuration CommandConfiguration) OperationTimeout() time.Duration {
	return time.Duration(configuration.OperationTimeoutSeconds) * time.Second
}
