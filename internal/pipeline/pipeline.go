// Package pipeline runs comment reintegration over two revision directories.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/recomment/internal/comments"
	"github.com/temirov/recomment/internal/fileset"
	"github.com/temirov/recomment/internal/writer"
)

// IndexMode selects how old-revision files are grouped into element indices.
type IndexMode string

const (
	// IndexModePerFile keys each element index by file name.
	IndexModePerFile IndexMode = "per_file"
	// IndexModePerNamespace merges files declaring the same namespace.
	IndexModePerNamespace IndexMode = "per_namespace"

	// DefaultOutputDirectory receives the reintegrated files.
	DefaultOutputDirectory = "CommentReintegration"

	unsupportedModeFormat      = "unsupported index mode %q"
	errorListOldRevisionFormat = "list old revision: %w"
	errorListNewRevisionFormat = "list new revision: %w"

	logFieldFile       = "file"
	logFieldKey        = "key"
	logFieldStage      = "stage"
	logFieldDuplicates = "duplicates"
	logFieldMissing    = "missing_elements"
)

// ParseIndexMode validates an index mode name.
func ParseIndexMode(value string) (IndexMode, error) {
	switch IndexMode(value) {
	case IndexModePerFile, IndexModePerNamespace:
		return IndexMode(value), nil
	default:
		return "", fmt.Errorf(unsupportedModeFormat, value)
	}
}

// Options configures a reintegration run.
type Options struct {
	OldDirectory    string
	NewDirectory    string
	OutputDirectory string
	Filter          fileset.Filter
	Engine          comments.Options
	Mode            IndexMode
	// Concurrency bounds the number of files processed at once. Zero uses GOMAXPROCS.
	Concurrency int
	// KeepText retains original and reintegrated text in each outcome.
	KeepText bool
	Logger   *zap.Logger
}

func (options Options) withDefaults() Options {
	if options.OutputDirectory == "" {
		options.OutputDirectory = DefaultOutputDirectory
	}
	if options.Mode == "" {
		options.Mode = IndexModePerFile
	}
	if options.Concurrency <= 0 {
		options.Concurrency = runtime.GOMAXPROCS(0)
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return options
}

// indexedFile is the extraction result of one old-revision file.
type indexedFile struct {
	key   comments.IndexKey
	index *comments.ElementIndex
}

// BuildIndex extracts the comments of every allowed file of the old revision.
// Files are processed in parallel; a file that fails extraction is reported
// and left out of the index. A file that cannot be read aborts the build.
func BuildIndex(ctx context.Context, options Options) (comments.Index, []FileOutcome, error) {
	options = options.withDefaults()
	if _, modeError := ParseIndexMode(string(options.Mode)); modeError != nil {
		return nil, nil, modeError
	}
	revision, listError := fileset.ListRevision(options.OldDirectory, options.Filter)
	if listError != nil {
		return nil, nil, fmt.Errorf(errorListOldRevisionFormat, listError)
	}

	indexedFiles := make([]indexedFile, len(revision.Files))
	outcomes := make([]FileOutcome, len(revision.Files))
	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(options.Concurrency)
	for fileIndex, fileName := range revision.Files {
		fileIndex, fileName := fileIndex, fileName
		group.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			indexed, outcome, readError := extractFile(revision, fileName, options)
			if readError != nil {
				return readError
			}
			indexedFiles[fileIndex], outcomes[fileIndex] = indexed, outcome
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return nil, nil, waitError
	}

	index := comments.Index{}
	for _, indexed := range indexedFiles {
		if indexed.index == nil {
			continue
		}
		existing, found := index[indexed.key]
		if !found {
			index[indexed.key] = indexed.index
			continue
		}
		existing.Merge(indexed.index)
	}
	return index, outcomes, nil
}

func extractFile(revision fileset.Revision, fileName string, options Options) (indexedFile, FileOutcome, error) {
	lines, readError := fileset.ReadLines(revision.Path(fileName))
	if readError != nil {
		return indexedFile{}, FileOutcome{}, &FileError{Name: fileName, Stage: StageRead, Err: readError}
	}
	elementIndex, extractError := comments.Extract(lines, options.Engine)
	if extractError != nil {
		outcome := failedOutcome(fileName, StageExtract, extractError)
		logFailure(options.Logger, outcome)
		return indexedFile{}, outcome, nil
	}
	key := indexKey(fileName, lines, options.Mode)
	options.Logger.Debug("indexed comments",
		zap.String(logFieldFile, fileName),
		zap.String(logFieldKey, string(key)),
		zap.Int("comments", elementIndex.Len()),
	)
	return indexedFile{key: key, index: elementIndex}, FileOutcome{
		Name:     fileName,
		Key:      string(key),
		Status:   StatusIndexed,
		Comments: elementIndex.Len(),
	}, nil
}

func indexKey(fileName string, lines []string, mode IndexMode) comments.IndexKey {
	if mode == IndexModePerNamespace {
		if namespace, found := fileset.NamespaceOf(lines); found {
			return comments.IndexKey(namespace)
		}
	}
	return comments.IndexKey(fileName)
}

// Run builds the old-revision index and writes one reintegrated file per
// allowed new-revision file. Extraction and reintegration failures are
// reported per file; listing a revision, creating the output directory,
// reading an input file or writing an output file aborts.
func Run(ctx context.Context, options Options) (Report, error) {
	options = options.withDefaults()
	report := Report{
		OldDirectory:    options.OldDirectory,
		NewDirectory:    options.NewDirectory,
		OutputDirectory: options.OutputDirectory,
		Mode:            options.Mode,
	}

	index, indexedOutcomes, indexError := BuildIndex(ctx, options)
	if indexError != nil {
		return report, indexError
	}
	report.Indexed = indexedOutcomes

	revision, listError := fileset.ListRevision(options.NewDirectory, options.Filter)
	if listError != nil {
		return report, fmt.Errorf(errorListNewRevisionFormat, listError)
	}
	if directoryError := writer.EnsureDirectory(options.OutputDirectory); directoryError != nil {
		return report, directoryError
	}

	outcomes := make([]FileOutcome, len(revision.Files))
	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(options.Concurrency)
	for fileIndex, fileName := range revision.Files {
		fileIndex, fileName := fileIndex, fileName
		group.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			outcome, ioError := reintegrateFile(revision, fileName, index, options)
			if ioError != nil {
				return ioError
			}
			outcomes[fileIndex] = outcome
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return report, waitError
	}
	report.Files = outcomes
	return report, nil
}

func reintegrateFile(revision fileset.Revision, fileName string, index comments.Index, options Options) (FileOutcome, error) {
	lines, readError := fileset.ReadLines(revision.Path(fileName))
	if readError != nil {
		return FileOutcome{}, &FileError{Name: fileName, Stage: StageRead, Err: readError}
	}
	key := indexKey(fileName, lines, options.Mode)
	elementIndex, found := index[key]

	result, reintegrateError := comments.Reintegrate(elementIndex, lines, options.Engine)
	if reintegrateError != nil {
		outcome := failedOutcome(fileName, StageReintegrate, reintegrateError)
		logFailure(options.Logger, outcome)
		return outcome, nil
	}
	outputText := result.Text()
	if writeError := writer.WriteAtomic(filepath.Join(options.OutputDirectory, fileName), outputText); writeError != nil {
		return FileOutcome{}, &FileError{Name: fileName, Stage: StageWrite, Err: writeError}
	}

	outcome := FileOutcome{
		Name:            fileName,
		Key:             string(key),
		Status:          StatusReintegrated,
		Comments:        elementIndex.Len(),
		Inserted:        result.Inserted,
		Flushed:         result.Flushed,
		Orphaned:        result.Orphaned,
		Duplicates:      result.Duplicates,
		Bytes:           int64(len(outputText)),
		MissingElements: result.MissingElements,
	}
	if !found {
		outcome.Status = StatusUnmatched
		outcome.MissingElements = nil
		options.Logger.Warn("no comment history for file", zap.String(logFieldFile, fileName), zap.String(logFieldKey, string(key)))
	}
	if options.KeepText {
		outcome.Original = result.OriginalText()
		outcome.Output = outputText
	}
	if result.Duplicates > 0 {
		options.Logger.Warn("comment text emitted more than once",
			zap.String(logFieldFile, fileName),
			zap.Int(logFieldDuplicates, result.Duplicates),
		)
	}
	if found && len(result.MissingElements) > 0 {
		options.Logger.Debug("elements without comment history",
			zap.String(logFieldFile, fileName),
			zap.Strings(logFieldMissing, result.MissingElements),
		)
	}
	return outcome, nil
}

func logFailure(logger *zap.Logger, outcome FileOutcome) {
	fields := []zap.Field{zap.String(logFieldFile, outcome.Name), zap.Error(outcome.Err())}
	if fileError, isFileError := outcome.Err().(*FileError); isFileError {
		fields = append(fields, zap.String(logFieldStage, string(fileError.Stage)))
	}
	logger.Warn("file skipped", fields...)
}
