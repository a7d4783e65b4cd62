// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/recomment/internal/comments"
	"github.com/temirov/recomment/internal/config"
	"github.com/temirov/recomment/internal/fileset"
	"github.com/temirov/recomment/internal/output"
	"github.com/temirov/recomment/internal/pipeline"
	"github.com/temirov/recomment/internal/services/clipboard"
	"github.com/temirov/recomment/internal/types"
	"github.com/temirov/recomment/internal/utils"
)

const (
	versionFlagName      = "version"
	configFlagName       = "config"
	verboseFlagName      = "verbose"
	outputFlagName       = "output"
	outputFlagShorthand  = "o"
	modeFlagName         = "mode"
	strictnessFlagName   = "strictness"
	indentFlagName       = "indent"
	concurrencyFlagName  = "concurrency"
	formatFlagName       = "format"
	diffFlagName         = "diff"
	flushOrphansFlagName = "flush-orphans"
	copyFlagName         = "copy"
	globalFlagName       = "global"
	forceFlagName        = "force"

	versionTemplate      = "recomment version: %s\n"
	rootUse              = "recomment"
	rootShortDescription = "recomment command line interface"
	rootLongDescription  = `recomment carries hand-written comments from an old revision of domain-definition
files into a new revision. Comments are matched to declarations by tolerant token
comparison, so renamed or slightly reworded lines keep their commentary.
Use --config to point at a configuration file and --version to print the application version.`

	reintegrateUse              = types.CommandReintegrate + " <old-directory> <new-directory>"
	reintegrateAlias            = "r"
	reintegrateShortDescription = "reintegrate comments into a new revision (" + reintegrateAlias + ")"
	reintegrateLongDescription  = `Index the comments of every definition file in the old revision and write each
file of the new revision, with the recovered comments interleaved, into the output directory.
Use --format to select raw, json, or xml output for the report and --diff to list inserted lines.`
	reintegrateUsageExample = `  # Reintegrate comments and print a table report
  recomment reintegrate shr-5.0 shr-6.0

  # Match files by namespace and write a JSON report
  recomment r --mode per_namespace --format json -o merged shr-5.0 shr-6.0`

	indexUse              = types.CommandIndex + " <directory>"
	indexAlias            = "i"
	indexShortDescription = "list the comments of a revision (" + indexAlias + ")"
	indexLongDescription  = `Extract the comments of every definition file in a directory and print them
grouped by file (or namespace) and element.`
	indexUsageExample = `  # Dump the comment index as XML
  recomment index --format xml shr-5.0`

	initUse              = types.CommandInit
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write the default configuration to ./.recomment.yaml, or to ~/.recomment/config.yaml with --global.`

	configFlagDescription       = "configuration file (default ./.recomment.yaml)"
	versionFlagDescription      = "display application version"
	verboseFlagDescription      = "log per-file progress"
	outputFlagDescription       = "directory receiving reintegrated files"
	modeFlagDescription         = "index mode: per_file or per_namespace"
	strictnessFlagDescription   = "token match strictness: tolerant or strict"
	indentFlagDescription       = "spaces placed before reintegrated line comments"
	concurrencyFlagDescription  = "files processed in parallel (0 uses all CPUs)"
	formatFlagDescription       = "output format"
	diffFlagDescription         = "list inserted and removed lines of every reintegrated file"
	flushOrphansFlagDescription = "emit comments of removed elements instead of dropping them"
	copyFlagDescription         = "copy the rendered output to the clipboard"
	globalFlagDescription       = "write the global configuration file"
	forceFlagDescription        = "overwrite an existing configuration file"

	invalidFormatMessage       = "Invalid format value '%s'"
	filesFailedFormat          = "%d file(s) could not be processed"
	clipboardCopyErrorFormat   = "copy output to clipboard: %w"
	configurationCreatedFormat = "Configuration written to %s\n"
	loggerCreationErrorFormat  = "create logger: %w"
)

// errFilesFailed marks a run that completed with per-file failures.
var errFilesFailed = errors.New("files failed")

// Dependencies carries the collaborators of the commands.
type Dependencies struct {
	Stdout           io.Writer
	Clipboard        clipboard.Copier
	NewLogger        func(verbose bool) (*zap.Logger, error)
	WorkingDirectory string
	HomeDirectory    string
}

func defaultDependencies() Dependencies {
	return Dependencies{
		Stdout:    os.Stdout,
		Clipboard: clipboard.NewService(),
		NewLogger: utils.NewApplicationLogger,
	}
}

// Execute runs the recomment application.
func Execute() error {
	rootCommand := createRootCommand(defaultDependencies())
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// rootOptions stores the persistent flags shared by every command.
type rootOptions struct {
	showVersion       bool
	configurationPath string
	verbose           bool
}

// createRootCommand builds the root Cobra command.
func createRootCommand(dependencies Dependencies) *cobra.Command {
	var options rootOptions

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				_, printError := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return printError
			}
			return command.Help()
		},
	}
	if dependencies.Stdout != nil {
		rootCommand.SetOut(dependencies.Stdout)
	}
	rootCommand.PersistentFlags().BoolVar(&options.showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&options.configurationPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &options.verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.AddCommand(
		createReintegrateCommand(dependencies, &options),
		createIndexCommand(dependencies, &options),
		createInitCommand(dependencies),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// commandEnvironment is the loaded configuration and logger of one invocation.
type commandEnvironment struct {
	configuration config.ApplicationConfiguration
	logger        *zap.Logger
}

func prepareEnvironment(dependencies Dependencies, options *rootOptions) (commandEnvironment, error) {
	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: dependencies.WorkingDirectory,
		ExplicitFilePath: options.configurationPath,
		HomeDirectory:    dependencies.HomeDirectory,
	})
	if loadError != nil {
		return commandEnvironment{}, loadError
	}
	logger := zap.NewNop()
	if dependencies.NewLogger != nil {
		createdLogger, loggerError := dependencies.NewLogger(options.verbose)
		if loggerError != nil {
			return commandEnvironment{}, fmt.Errorf(loggerCreationErrorFormat, loggerError)
		}
		logger = createdLogger
	}
	return commandEnvironment{configuration: configuration, logger: logger}, nil
}

// reintegrateOptions stores the flags of the reintegrate command.
type reintegrateOptions struct {
	outputDirectory string
	mode            string
	strictness      string
	indent          int
	concurrency     int
	format          string
	diff            bool
	flushOrphans    bool
	copyOutput      bool
}

func (options *reintegrateOptions) applyConfiguration(command *cobra.Command, configuration config.ReintegrateConfiguration) {
	flags := command.Flags()
	options.outputDirectory = stringSetting(flags, outputFlagName, options.outputDirectory, configuration.Output)
	options.mode = stringSetting(flags, modeFlagName, options.mode, configuration.Mode)
	options.strictness = stringSetting(flags, strictnessFlagName, options.strictness, configuration.Strictness)
	options.indent = intSetting(flags, indentFlagName, options.indent, configuration.Indent)
	options.concurrency = intSetting(flags, concurrencyFlagName, options.concurrency, configuration.Concurrency)
	options.format = strings.ToLower(stringSetting(flags, formatFlagName, options.format, configuration.Format))
	options.diff = boolSetting(flags, diffFlagName, options.diff, configuration.Diff)
	options.flushOrphans = boolSetting(flags, flushOrphansFlagName, options.flushOrphans, configuration.FlushOrphans)
	options.copyOutput = boolSetting(flags, copyFlagName, options.copyOutput, configuration.Clipboard)
}

// createReintegrateCommand returns the reintegrate subcommand.
func createReintegrateCommand(dependencies Dependencies, root *rootOptions) *cobra.Command {
	options := reintegrateOptions{
		outputDirectory: pipeline.DefaultOutputDirectory,
		mode:            string(pipeline.IndexModePerFile),
		strictness:      string(comments.StrictnessTolerant),
		indent:          comments.DefaultIndentWidth,
		format:          types.FormatRaw,
	}

	reintegrateCommand := &cobra.Command{
		Use:     reintegrateUse,
		Aliases: []string{reintegrateAlias},
		Short:   reintegrateShortDescription,
		Long:    reintegrateLongDescription,
		Example: reintegrateUsageExample,
		Args:    cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, arguments []string) error {
			environment, environmentError := prepareEnvironment(dependencies, root)
			if environmentError != nil {
				return environmentError
			}
			defer func() { _ = environment.logger.Sync() }()
			options.applyConfiguration(command, environment.configuration.Reintegrate)
			return runReintegrate(command, dependencies, environment, options, arguments[0], arguments[1])
		},
	}

	flags := reintegrateCommand.Flags()
	flags.StringVarP(&options.outputDirectory, outputFlagName, outputFlagShorthand, options.outputDirectory, outputFlagDescription)
	flags.StringVar(&options.mode, modeFlagName, options.mode, modeFlagDescription)
	flags.StringVar(&options.strictness, strictnessFlagName, options.strictness, strictnessFlagDescription)
	flags.IntVar(&options.indent, indentFlagName, options.indent, indentFlagDescription)
	flags.IntVar(&options.concurrency, concurrencyFlagName, 0, concurrencyFlagDescription)
	flags.StringVar(&options.format, formatFlagName, options.format, formatFlagDescription)
	registerBooleanFlag(flags, &options.diff, diffFlagName, false, diffFlagDescription)
	registerBooleanFlag(flags, &options.flushOrphans, flushOrphansFlagName, true, flushOrphansFlagDescription)
	registerBooleanFlag(flags, &options.copyOutput, copyFlagName, false, copyFlagDescription)
	return reintegrateCommand
}

func runReintegrate(command *cobra.Command, dependencies Dependencies, environment commandEnvironment, options reintegrateOptions, oldDirectory string, newDirectory string) error {
	if !types.IsSupportedFormat(options.format) {
		return fmt.Errorf(invalidFormatMessage, options.format)
	}
	mode, modeError := pipeline.ParseIndexMode(options.mode)
	if modeError != nil {
		return modeError
	}
	strictness, strictnessError := comments.ParseStrictness(options.strictness)
	if strictnessError != nil {
		return strictnessError
	}
	engine := engineOptions(environment.configuration.Engine)
	engine.Strictness = strictness
	engine.IndentWidth = options.indent
	engine.FlushOrphans = options.flushOrphans

	report, runError := pipeline.Run(command.Context(), pipeline.Options{
		OldDirectory:    oldDirectory,
		NewDirectory:    newDirectory,
		OutputDirectory: options.outputDirectory,
		Filter:          filterOptions(environment.configuration.Filter),
		Engine:          engine,
		Mode:            mode,
		Concurrency:     options.concurrency,
		KeepText:        options.diff,
		Logger:          environment.logger,
	})
	if runError != nil {
		return runError
	}

	renderError := renderOutput(command, dependencies, options.copyOutput, func(writer io.Writer) error {
		if reportError := output.RenderReport(writer, report, options.format); reportError != nil {
			return reportError
		}
		if !options.diff {
			return nil
		}
		for _, outcome := range report.Files {
			if outcome.Status != pipeline.StatusReintegrated {
				continue
			}
			if diffError := output.RenderDiff(writer, outcome.Name, outcome.Original, outcome.Output); diffError != nil {
				return diffError
			}
		}
		return nil
	})
	if renderError != nil {
		return renderError
	}
	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%w: "+filesFailedFormat, errFilesFailed, len(failed))
	}
	return nil
}

// indexOptions stores the flags of the index command.
type indexOptions struct {
	mode       string
	format     string
	copyOutput bool
}

// createIndexCommand returns the index subcommand.
func createIndexCommand(dependencies Dependencies, root *rootOptions) *cobra.Command {
	options := indexOptions{
		mode:   string(pipeline.IndexModePerFile),
		format: types.FormatRaw,
	}

	indexCommand := &cobra.Command{
		Use:     indexUse,
		Aliases: []string{indexAlias},
		Short:   indexShortDescription,
		Long:    indexLongDescription,
		Example: indexUsageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			environment, environmentError := prepareEnvironment(dependencies, root)
			if environmentError != nil {
				return environmentError
			}
			defer func() { _ = environment.logger.Sync() }()

			flags := command.Flags()
			indexConfiguration := environment.configuration.Index
			options.mode = stringSetting(flags, modeFlagName, options.mode, indexConfiguration.Mode)
			options.format = strings.ToLower(stringSetting(flags, formatFlagName, options.format, indexConfiguration.Format))
			if !types.IsSupportedFormat(options.format) {
				return fmt.Errorf(invalidFormatMessage, options.format)
			}
			mode, modeError := pipeline.ParseIndexMode(options.mode)
			if modeError != nil {
				return modeError
			}

			index, outcomes, buildError := pipeline.BuildIndex(command.Context(), pipeline.Options{
				OldDirectory: arguments[0],
				Filter:       filterOptions(environment.configuration.Filter),
				Engine:       engineOptions(environment.configuration.Engine),
				Mode:         mode,
				Logger:       environment.logger,
			})
			if buildError != nil {
				return buildError
			}
			renderError := renderOutput(command, dependencies, options.copyOutput, func(writer io.Writer) error {
				return output.RenderIndex(writer, index, options.format)
			})
			if renderError != nil {
				return renderError
			}
			failedCount := 0
			for _, outcome := range outcomes {
				if outcome.Status == pipeline.StatusFailed {
					failedCount++
				}
			}
			if failedCount > 0 {
				return fmt.Errorf("%w: "+filesFailedFormat, errFilesFailed, failedCount)
			}
			return nil
		},
	}

	indexCommand.Flags().StringVar(&options.mode, modeFlagName, options.mode, modeFlagDescription)
	indexCommand.Flags().StringVar(&options.format, formatFlagName, options.format, formatFlagDescription)
	registerBooleanFlag(indexCommand.Flags(), &options.copyOutput, copyFlagName, false, copyFlagDescription)
	return indexCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(dependencies Dependencies) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: dependencies.WorkingDirectory,
				HomeDirectory:    dependencies.HomeDirectory,
			})
			if initError != nil {
				return initError
			}
			_, printError := fmt.Fprintf(command.OutOrStdout(), configurationCreatedFormat, path)
			return printError
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// renderOutput writes rendered output to the command's stdout and, when
// requested, to the clipboard without colour codes.
func renderOutput(command *cobra.Command, dependencies Dependencies, copyRequested bool, render func(io.Writer) error) error {
	if !copyRequested {
		return render(command.OutOrStdout())
	}
	if dependencies.Clipboard == nil {
		return fmt.Errorf(clipboardCopyErrorFormat, clipboard.ErrUnsupported)
	}
	previousNoColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = previousNoColor }()

	var buffer bytes.Buffer
	if renderError := render(&buffer); renderError != nil {
		return renderError
	}
	if _, writeError := command.OutOrStdout().Write(buffer.Bytes()); writeError != nil {
		return writeError
	}
	if copyError := dependencies.Clipboard.Copy(buffer.String()); copyError != nil {
		return fmt.Errorf(clipboardCopyErrorFormat, copyError)
	}
	return nil
}

// engineOptions applies configured vocabulary overrides to the default engine options.
func engineOptions(configuration config.EngineConfiguration) comments.Options {
	engine := comments.DefaultOptions()
	if len(configuration.HeaderKeywords) > 0 {
		engine.HeaderKeywords = append([]string(nil), configuration.HeaderKeywords...)
	}
	if configuration.Sentinel != "" {
		engine.SentinelElement = configuration.Sentinel
	}
	return engine
}

// filterOptions applies configured overrides to the default file filter.
func filterOptions(configuration config.FilterConfiguration) fileset.Filter {
	filter := fileset.DefaultFilter()
	if configuration.Extension != "" {
		filter.Extension = configuration.Extension
	}
	if len(configuration.Exclude) > 0 {
		filter.ExcludedSubstrings = append([]string(nil), configuration.Exclude...)
	}
	if configuration.UseIgnoreFile != nil && !*configuration.UseIgnoreFile {
		filter.SkipIgnoreFile = true
	}
	return filter.WithIgnorePatterns(configuration.Ignore)
}
