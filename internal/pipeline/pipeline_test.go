package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/temirov/recomment/internal/comments"
	"github.com/temirov/recomment/internal/fileset"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testIndentation = strings.Repeat(" ", comments.DefaultIndentWidth)

type revisionFixture struct {
	oldDirectory    string
	newDirectory    string
	outputDirectory string
}

func newRevisionFixture(t *testing.T, oldFiles map[string]string, newFiles map[string]string) revisionFixture {
	t.Helper()
	root := t.TempDir()
	fixture := revisionFixture{
		oldDirectory:    filepath.Join(root, "old"),
		newDirectory:    filepath.Join(root, "new"),
		outputDirectory: filepath.Join(root, "out"),
	}
	writeRevision(t, fixture.oldDirectory, oldFiles)
	writeRevision(t, fixture.newDirectory, newFiles)
	return fixture
}

func writeRevision(t *testing.T, directory string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(directory, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(directory, name), []byte(content), 0o644))
	}
}

func (fixture revisionFixture) options(mode IndexMode) Options {
	return Options{
		OldDirectory:    fixture.oldDirectory,
		NewDirectory:    fixture.newDirectory,
		OutputDirectory: fixture.outputDirectory,
		Filter:          fileset.DefaultFilter(),
		Engine:          comments.DefaultOptions(),
		Mode:            mode,
		Concurrency:     2,
		KeepText:        true,
	}
}

func readOutput(t *testing.T, fixture revisionFixture, name string) string {
	t.Helper()
	content, readError := os.ReadFile(filepath.Join(fixture.outputDirectory, name))
	require.NoError(t, readError)
	return string(content)
}

func TestRunPerFile(t *testing.T) {
	fixture := newRevisionFixture(t,
		map[string]string{
			"dose.txt":   "Element: Dose\n// amount given\nValue: decimal\n",
			"status.txt": "Element: Status // lifecycle\nValue: code\n",
		},
		map[string]string{
			"dose.txt":   "Element: Dose\nValue: decimal\nConcept: TBD\n",
			"status.txt": "Element: Status\nValue: code\n",
			"fresh.txt":  "Element: Fresh\nValue: string\n",
		},
	)

	report, runError := Run(context.Background(), fixture.options(IndexModePerFile))
	require.NoError(t, runError)
	require.Empty(t, report.Failed())
	require.Len(t, report.Indexed, 2)
	require.Len(t, report.Files, 3)

	assert.Equal(t, "Element: Dose\n"+testIndentation+"// amount given\nValue: decimal\nConcept: TBD\n", readOutput(t, fixture, "dose.txt"))
	assert.Equal(t, testIndentation+"// lifecycle\nElement: Status\nValue: code\n", readOutput(t, fixture, "status.txt"))
	assert.Equal(t, "Element: Fresh\nValue: string\n", readOutput(t, fixture, "fresh.txt"))

	statuses := map[string]Status{}
	for _, outcome := range report.Files {
		statuses[outcome.Name] = outcome.Status
	}
	assert.Equal(t, map[string]Status{
		"dose.txt":   StatusReintegrated,
		"fresh.txt":  StatusUnmatched,
		"status.txt": StatusReintegrated,
	}, statuses)

	totals := report.Totals()
	assert.Equal(t, 2, totals.Comments)
	assert.Equal(t, 2, totals.Inserted)
}

func TestRunPerNamespaceFollowsRenamedFiles(t *testing.T) {
	fixture := newRevisionFixture(t,
		map[string]string{
			"onco.txt": "Grammar: DataElement 6.0\nNamespace: shr.oncology\nElement: Tumor\n// staging note\nValue: code\n",
		},
		map[string]string{
			"oncology.txt": "Grammar: DataElement 6.0\nNamespace: shr.oncology\nElement: Tumor\nValue: code\n",
		},
	)

	report, runError := Run(context.Background(), fixture.options(IndexModePerNamespace))
	require.NoError(t, runError)
	require.Len(t, report.Files, 1)
	assert.Equal(t, "shr.oncology", report.Files[0].Key)
	assert.Equal(t, StatusReintegrated, report.Files[0].Status)
	assert.Equal(t,
		"Grammar: DataElement 6.0\nNamespace: shr.oncology\nElement: Tumor\n"+testIndentation+"// staging note\nValue: code\n",
		readOutput(t, fixture, "oncology.txt"),
	)
}

func TestRunPerFileIgnoresRenamedFiles(t *testing.T) {
	fixture := newRevisionFixture(t,
		map[string]string{"onco.txt": "Element: Tumor\n// staging note\nValue: code\n"},
		map[string]string{"oncology.txt": "Element: Tumor\nValue: code\n"},
	)

	report, runError := Run(context.Background(), fixture.options(IndexModePerFile))
	require.NoError(t, runError)
	require.Len(t, report.Files, 1)
	assert.Equal(t, StatusUnmatched, report.Files[0].Status)
	assert.Equal(t, "Element: Tumor\nValue: code\n", readOutput(t, fixture, "oncology.txt"))
}

func TestRunWithOnlyFilteredFilesWritesNothing(t *testing.T) {
	fixture := newRevisionFixture(t,
		map[string]string{"thing_vs.txt": "// note\nValueSet: Thing\n"},
		map[string]string{"thing_vs.txt": "ValueSet: Thing\n", "thing.txt.html": "<html></html>\n"},
	)

	report, runError := Run(context.Background(), fixture.options(IndexModePerFile))
	require.NoError(t, runError)
	assert.Empty(t, report.Indexed)
	assert.Empty(t, report.Files)

	entries, readError := os.ReadDir(fixture.outputDirectory)
	require.NoError(t, readError)
	assert.Empty(t, entries)
}

func TestRunIsolatesMalformedFiles(t *testing.T) {
	fixture := newRevisionFixture(t,
		map[string]string{
			"broken.txt": "Element: Broken\n/* never closed\nValue: code\n",
			"good.txt":   "Element: Good\n// kept\nValue: code\n",
		},
		map[string]string{
			"broken.txt": "Element: Broken\nValue: code\n",
			"good.txt":   "Element: Good\nValue: code\n",
			"header.txt": "Element: Fine\nEntry:\n",
		},
	)

	report, runError := Run(context.Background(), fixture.options(IndexModePerFile))
	require.NoError(t, runError)

	failed := report.Failed()
	require.Len(t, failed, 2)
	stages := map[string]Stage{}
	for _, outcome := range failed {
		var fileError *FileError
		require.True(t, errors.As(outcome.Err(), &fileError))
		stages[outcome.Name] = fileError.Stage
		assert.NotEmpty(t, outcome.Error)
	}
	assert.Equal(t, map[string]Stage{"broken.txt": StageExtract, "header.txt": StageReintegrate}, stages)
	assert.True(t, errors.Is(failed[0].Err(), comments.ErrUnbalancedBlockComment))

	assert.Equal(t, "Element: Good\n"+testIndentation+"// kept\nValue: code\n", readOutput(t, fixture, "good.txt"))
	assert.Equal(t, "Element: Broken\nValue: code\n", readOutput(t, fixture, "broken.txt"))
	_, statError := os.Stat(filepath.Join(fixture.outputDirectory, "header.txt"))
	assert.True(t, os.IsNotExist(statError))
}

func TestRunRejectsMissingRevision(t *testing.T) {
	fixture := newRevisionFixture(t, map[string]string{}, map[string]string{})
	options := fixture.options(IndexModePerFile)
	options.NewDirectory = filepath.Join(fixture.newDirectory, "absent")

	_, runError := Run(context.Background(), options)
	require.Error(t, runError)
}

func TestRunAbortsWhenOutputCannotBeWritten(t *testing.T) {
	fixture := newRevisionFixture(t,
		map[string]string{"a.txt": "Element: A // note\nValue: x\n"},
		map[string]string{"a.txt": "Element: A\nValue: x\n"},
	)
	occupiedPath := filepath.Join(fixture.outputDirectory, "a.txt")
	require.NoError(t, os.MkdirAll(occupiedPath, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(occupiedPath, "keep"), []byte("x"), 0o644))

	_, runError := Run(context.Background(), fixture.options(IndexModePerFile))
	require.Error(t, runError)
	var fileError *FileError
	require.True(t, errors.As(runError, &fileError))
	assert.Equal(t, StageWrite, fileError.Stage)
	assert.Equal(t, "a.txt", fileError.Name)
}

func TestBuildIndexAbortsOnUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	fixture := newRevisionFixture(t,
		map[string]string{
			"a.txt": "Element: A // note\n",
			"b.txt": "Element: B // note\n",
		},
		map[string]string{},
	)
	lockedPath := filepath.Join(fixture.oldDirectory, "b.txt")
	require.NoError(t, os.Chmod(lockedPath, 0o000))
	t.Cleanup(func() { _ = os.Chmod(lockedPath, 0o644) })

	_, _, buildError := BuildIndex(context.Background(), fixture.options(IndexModePerFile))
	require.Error(t, buildError)
	var fileError *FileError
	require.True(t, errors.As(buildError, &fileError))
	assert.Equal(t, StageRead, fileError.Stage)
	assert.Equal(t, "b.txt", fileError.Name)
}

func TestRunHonorsCancelledContext(t *testing.T) {
	fixture := newRevisionFixture(t,
		map[string]string{"a.txt": "Element: A\nValue: x\n"},
		map[string]string{"a.txt": "Element: A\nValue: x\n"},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, runError := Run(ctx, fixture.options(IndexModePerFile))
	require.ErrorIs(t, runError, context.Canceled)
}

func TestBuildIndexMergesNamespaces(t *testing.T) {
	fixture := newRevisionFixture(t,
		map[string]string{
			"a.txt": "Grammar: DataElement 6.0\nNamespace: shr.core\nElement: A // a note\n",
			"b.txt": "Grammar: DataElement 6.0\nNamespace: shr.core\nElement: B // b note\n",
			"c.txt": "Element: C // c note\n",
		},
		map[string]string{},
	)

	index, outcomes, buildError := BuildIndex(context.Background(), fixture.options(IndexModePerNamespace))
	require.NoError(t, buildError)
	require.Len(t, outcomes, 3)
	require.Len(t, index, 2)
	require.Contains(t, index, comments.IndexKey("shr.core"))
	require.Contains(t, index, comments.IndexKey("c.txt"))

	merged := index[comments.IndexKey("shr.core")]
	assert.Equal(t, 2, merged.Len())
	assert.Equal(t, []string{comments.DefaultSentinelElement, "A", "B"}, merged.Names())
}

func TestParseIndexMode(t *testing.T) {
	mode, parseError := ParseIndexMode("per_namespace")
	require.NoError(t, parseError)
	assert.Equal(t, IndexModePerNamespace, mode)

	_, parseError = ParseIndexMode("per_directory")
	assert.Error(t, parseError)
}
