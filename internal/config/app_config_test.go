package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/recomment/internal/utils"
)

type configTestCase struct {
	name              string
	globalContent     string
	localContent      string
	explicitPath      string
	explicitContent   string
	expectOutput      string
	expectMode        string
	expectStrictness  string
	expectIndent      *int
	expectCopy        *bool
	expectIgnore      []string
	expectExclude     []string
	expectKeywords    []string
	expectIndexFormat string
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func intPointer(value int) *int {
	pointer := value
	return &pointer
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:             "local_overrides_global",
			globalContent:    "reintegrate:\n  output: global-out\n  mode: per_namespace\n  indent: 4\n  copy: true\nfilter:\n  ignore: [draft-*]\n",
			localContent:     "reintegrate:\n  output: local-out\n  strictness: strict\n  copy: false\nfilter:\n  ignore: [scratch*, draft-*]\n  exclude: [' _vs ', _vs]\n",
			expectOutput:     "local-out",
			expectMode:       "per_namespace",
			expectStrictness: "strict",
			expectIndent:     intPointer(4),
			expectCopy:       boolPointer(false),
			expectIgnore:     []string{"draft-*", "scratch*"},
			expectExclude:    []string{"_vs"},
		},
		{
			name:              "explicit_path_replaces_local",
			globalContent:     "index:\n  format: json\n",
			localContent:      "reintegrate:\n  output: local-out\n",
			explicitPath:      "custom.yaml",
			explicitContent:   "engine:\n  header_keywords: [Element, ' Entry ']\n",
			expectKeywords:    []string{"Element", "Entry"},
			expectIndexFormat: "json",
		},
		{
			name:          "global_only",
			globalContent: "reintegrate:\n  copy: true\n  indent: 2\n",
			expectIndent:  intPointer(2),
			expectCopy:    boolPointer(true),
		},
		{
			name: "no_files",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDir := t.TempDir()
			workingDir := t.TempDir()
			configDir := filepath.Join(homeDir, utils.GlobalConfigDirectoryName)
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				t.Fatalf("create config dir: %v", err)
			}
			if testCase.globalContent != "" {
				globalPath := filepath.Join(configDir, utils.ConfigFileName)
				if err := os.WriteFile(globalPath, []byte(testCase.globalContent), 0o600); err != nil {
					t.Fatalf("write global config: %v", err)
				}
			}
			if testCase.localContent != "" {
				localPath := filepath.Join(workingDir, utils.LocalConfigFileName)
				if err := os.WriteFile(localPath, []byte(testCase.localContent), 0o600); err != nil {
					t.Fatalf("write local config: %v", err)
				}
			}
			if testCase.explicitPath != "" {
				target := filepath.Join(workingDir, testCase.explicitPath)
				if err := os.WriteFile(target, []byte(testCase.explicitContent), 0o600); err != nil {
					t.Fatalf("write explicit config: %v", err)
				}
			}

			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDir,
				ExplicitFilePath: testCase.explicitPath,
				HomeDirectory:    homeDir,
			})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}

			reintegrate := loadedConfig.Reintegrate
			if reintegrate.Output != testCase.expectOutput {
				t.Fatalf("expected output %q, got %q", testCase.expectOutput, reintegrate.Output)
			}
			if reintegrate.Mode != testCase.expectMode {
				t.Fatalf("expected mode %q, got %q", testCase.expectMode, reintegrate.Mode)
			}
			if reintegrate.Strictness != testCase.expectStrictness {
				t.Fatalf("expected strictness %q, got %q", testCase.expectStrictness, reintegrate.Strictness)
			}
			if testCase.expectIndent == nil {
				if reintegrate.Indent != nil {
					t.Fatalf("expected no indent override")
				}
			} else if reintegrate.Indent == nil || *reintegrate.Indent != *testCase.expectIndent {
				t.Fatalf("unexpected indent value")
			}
			if testCase.expectCopy == nil {
				if reintegrate.Clipboard != nil {
					t.Fatalf("expected no copy override")
				}
			} else if reintegrate.Clipboard == nil || *reintegrate.Clipboard != *testCase.expectCopy {
				t.Fatalf("unexpected copy value")
			}
			if loadedConfig.Index.Format != testCase.expectIndexFormat {
				t.Fatalf("expected index format %q, got %q", testCase.expectIndexFormat, loadedConfig.Index.Format)
			}
			assertStrings(t, "ignore", testCase.expectIgnore, loadedConfig.Filter.Ignore)
			assertStrings(t, "exclude", testCase.expectExclude, loadedConfig.Filter.Exclude)
			assertStrings(t, "header_keywords", testCase.expectKeywords, loadedConfig.Engine.HeaderKeywords)
		})
	}
}

func assertStrings(t *testing.T, label string, expected []string, actual []string) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("expected %s %v, got %v", label, expected, actual)
	}
	for position := range expected {
		if expected[position] != actual[position] {
			t.Fatalf("expected %s %v, got %v", label, expected, actual)
		}
	}
}

func TestLoadApplicationConfigurationRejectsMissingExplicitFile(t *testing.T) {
	_, err := LoadApplicationConfiguration(LoadOptions{
		WorkingDirectory: t.TempDir(),
		ExplicitFilePath: "absent.yaml",
		HomeDirectory:    t.TempDir(),
	})
	if err == nil {
		t.Fatalf("expected error for missing explicit configuration file")
	}
}

func TestLoadApplicationConfigurationRejectsMalformedYAML(t *testing.T) {
	workingDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(workingDir, utils.LocalConfigFileName), []byte("reintegrate: [unclosed\n"), 0o600); err != nil {
		t.Fatalf("write local config: %v", err)
	}
	if _, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir, HomeDirectory: t.TempDir()}); err == nil {
		t.Fatalf("expected error for malformed configuration")
	}
}

func TestReintegrateMergeKeepsUnsetFields(t *testing.T) {
	base := ReintegrateConfiguration{Output: "out", Diff: boolPointer(true), Concurrency: intPointer(3)}
	merged := base.merge(ReintegrateConfiguration{Format: "json"})
	if merged.Output != "out" || merged.Format != "json" || merged.Diff == nil || !*merged.Diff || *merged.Concurrency != 3 {
		t.Fatalf("unexpected merge result %+v", merged)
	}
}
