package pipeline

import (
	"encoding/xml"
	"fmt"
)

// Stage names the processing step a file error happened in.
type Stage string

const (
	StageRead        Stage = "read"
	StageExtract     Stage = "extract"
	StageReintegrate Stage = "reintegrate"
	StageWrite       Stage = "write"
)

// Status summarizes what happened to one file.
type Status string

const (
	// StatusIndexed marks an old-revision file whose comments were extracted.
	StatusIndexed Status = "indexed"
	// StatusReintegrated marks a new-revision file written with recovered comments.
	StatusReintegrated Status = "reintegrated"
	// StatusUnmatched marks a new-revision file without comment history, written unchanged.
	StatusUnmatched Status = "unmatched"
	// StatusFailed marks a file that produced no output.
	StatusFailed Status = "failed"
)

// FileError carries the file name and stage of a per-file failure.
type FileError struct {
	Name  string
	Stage Stage
	Err   error
}

func (fileError *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", fileError.Stage, fileError.Name, fileError.Err)
}

func (fileError *FileError) Unwrap() error {
	return fileError.Err
}

// FileOutcome reports the processing of one file.
type FileOutcome struct {
	Name            string   `json:"name" xml:"name,attr"`
	Key             string   `json:"key,omitempty" xml:"key,attr,omitempty"`
	Status          Status   `json:"status" xml:"status,attr"`
	Comments        int      `json:"comments,omitempty" xml:"comments,attr,omitempty"`
	Inserted        int      `json:"inserted,omitempty" xml:"inserted,attr,omitempty"`
	Flushed         int      `json:"flushed,omitempty" xml:"flushed,attr,omitempty"`
	Orphaned        int      `json:"orphaned,omitempty" xml:"orphaned,attr,omitempty"`
	Duplicates      int      `json:"duplicates,omitempty" xml:"duplicates,attr,omitempty"`
	Bytes           int64    `json:"bytes,omitempty" xml:"bytes,attr,omitempty"`
	MissingElements []string `json:"missingElements,omitempty" xml:"missing>element,omitempty"`
	Error           string   `json:"error,omitempty" xml:"error,omitempty"`

	// Original and Output hold file text when Options.KeepText is set.
	Original string `json:"-" xml:"-"`
	Output   string `json:"-" xml:"-"`

	err error
}

// Err returns the failure of the file, if any.
func (outcome FileOutcome) Err() error {
	return outcome.err
}

func failedOutcome(name string, stage Stage, cause error) FileOutcome {
	fileError := &FileError{Name: name, Stage: stage, Err: cause}
	return FileOutcome{Name: name, Status: StatusFailed, Error: fileError.Error(), err: fileError}
}

// Report is the result of a whole reintegration run.
type Report struct {
	XMLName         xml.Name      `json:"-" xml:"report"`
	OldDirectory    string        `json:"oldDirectory" xml:"oldDirectory,attr"`
	NewDirectory    string        `json:"newDirectory" xml:"newDirectory,attr"`
	OutputDirectory string        `json:"outputDirectory" xml:"outputDirectory,attr"`
	Mode            IndexMode     `json:"mode" xml:"mode,attr"`
	Indexed         []FileOutcome `json:"indexed" xml:"indexed>file"`
	Files           []FileOutcome `json:"files" xml:"files>file"`
}

// Failed returns every outcome, indexed or written, that failed.
func (report Report) Failed() []FileOutcome {
	var failed []FileOutcome
	for _, outcome := range append(append([]FileOutcome(nil), report.Indexed...), report.Files...) {
		if outcome.Status == StatusFailed {
			failed = append(failed, outcome)
		}
	}
	return failed
}

// Totals sums the per-file counters of written files.
func (report Report) Totals() FileOutcome {
	totals := FileOutcome{Name: "total"}
	for _, outcome := range report.Files {
		totals.Inserted += outcome.Inserted
		totals.Flushed += outcome.Flushed
		totals.Orphaned += outcome.Orphaned
		totals.Duplicates += outcome.Duplicates
		totals.Bytes += outcome.Bytes
	}
	for _, outcome := range report.Indexed {
		totals.Comments += outcome.Comments
	}
	return totals
}
