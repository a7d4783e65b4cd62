// Package config loads recomment defaults from global and local YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/recomment/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// HomeDirectory overrides the user's home directory when locating the global file.
	HomeDirectory string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Reintegrate ReintegrateConfiguration `mapstructure:"reintegrate"`
	Index       IndexConfiguration       `mapstructure:"index"`
	Filter      FilterConfiguration      `mapstructure:"filter"`
	Engine      EngineConfiguration      `mapstructure:"engine"`
}

// ReintegrateConfiguration defines defaults for the reintegrate command.
type ReintegrateConfiguration struct {
	Output       string `mapstructure:"output"`
	Mode         string `mapstructure:"mode"`
	Strictness   string `mapstructure:"strictness"`
	Indent       *int   `mapstructure:"indent"`
	Concurrency  *int   `mapstructure:"concurrency"`
	Format       string `mapstructure:"format"`
	FlushOrphans *bool  `mapstructure:"flush_orphans"`
	Diff         *bool  `mapstructure:"diff"`
	Clipboard    *bool  `mapstructure:"copy"`
}

// IndexConfiguration defines defaults for the index command.
type IndexConfiguration struct {
	Mode   string `mapstructure:"mode"`
	Format string `mapstructure:"format"`
}

// FilterConfiguration selects which files of a revision directory are processed.
type FilterConfiguration struct {
	Extension     string   `mapstructure:"extension"`
	Exclude       []string `mapstructure:"exclude"`
	Ignore        []string `mapstructure:"ignore"`
	UseIgnoreFile *bool    `mapstructure:"use_ignore"`
}

// EngineConfiguration overrides the comment engine vocabulary.
type EngineConfiguration struct {
	HeaderKeywords []string `mapstructure:"header_keywords"`
	Sentinel       string   `mapstructure:"sentinel"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
// Missing files are not an error.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if userHomeDirectory, err := os.UserHomeDir(); err == nil {
			homeDirectory = userHomeDirectory
		}
	}
	if homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if options.ExplicitFilePath != "" {
		if _, statErr := os.Stat(localPath); statErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("configuration file %s: %w", localPath, statErr)
		}
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.Filter.Exclude = utils.CompactValues(merged.Filter.Exclude)
	merged.Filter.Ignore = utils.CompactValues(merged.Filter.Ignore)
	merged.Engine.HeaderKeywords = utils.CompactValues(merged.Engine.HeaderKeywords)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.LocalConfigFileName)
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Reintegrate = result.Reintegrate.merge(override.Reintegrate)
	result.Index = result.Index.merge(override.Index)
	result.Filter = result.Filter.merge(override.Filter)
	result.Engine = result.Engine.merge(override.Engine)
	return result
}

func (config ReintegrateConfiguration) merge(override ReintegrateConfiguration) ReintegrateConfiguration {
	result := config
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Mode != "" {
		result.Mode = override.Mode
	}
	if override.Strictness != "" {
		result.Strictness = override.Strictness
	}
	if override.Indent != nil {
		result.Indent = cloneInt(override.Indent)
	}
	if override.Concurrency != nil {
		result.Concurrency = cloneInt(override.Concurrency)
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.FlushOrphans != nil {
		result.FlushOrphans = cloneBool(override.FlushOrphans)
	}
	if override.Diff != nil {
		result.Diff = cloneBool(override.Diff)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config IndexConfiguration) merge(override IndexConfiguration) IndexConfiguration {
	result := config
	if override.Mode != "" {
		result.Mode = override.Mode
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	return result
}

func (config FilterConfiguration) merge(override FilterConfiguration) FilterConfiguration {
	result := config
	if override.Extension != "" {
		result.Extension = override.Extension
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, override.Exclude...)
	}
	if len(override.Ignore) > 0 {
		result.Ignore = utils.DeduplicatePatterns(append(append([]string{}, result.Ignore...), override.Ignore...))
	}
	if override.UseIgnoreFile != nil {
		result.UseIgnoreFile = cloneBool(override.UseIgnoreFile)
	}
	return result
}

func (config EngineConfiguration) merge(override EngineConfiguration) EngineConfiguration {
	result := config
	if len(override.HeaderKeywords) > 0 {
		result.HeaderKeywords = append([]string{}, override.HeaderKeywords...)
	}
	if override.Sentinel != "" {
		result.Sentinel = override.Sentinel
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
