// Package output renders reintegration reports, element indices and diffs.
package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/temirov/recomment/internal/pipeline"
	"github.com/temirov/recomment/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	xmlHeader = xml.Header

	unsupportedFormatMessage = "unsupported output format %q"

	reportHeaderFormat    = "Old: %s\nNew: %s\nOutput: %s\nMode: %s\n"
	failuresHeader        = "Failures:"
	failureLineFormat     = "  %s\n"
	missingElementsFormat = "  %s: no comment history for %s\n"
	emptyCell             = ""
	totalLabel            = "Total"
)

var reportColumns = table.Row{"File", "Key", "Status", "Comments", "Inserted", "Flushed", "Orphaned", "Duplicates", "Size"}

// RenderReport writes report to writer in the requested format.
func RenderReport(writer io.Writer, report pipeline.Report, format string) error {
	switch format {
	case types.FormatRaw:
		return renderReportRaw(writer, report)
	case types.FormatJSON:
		encoded, jsonEncodeError := json.MarshalIndent(report, indentPrefix, indentSpacer)
		if jsonEncodeError != nil {
			return jsonEncodeError
		}
		_, writeError := fmt.Fprintln(writer, string(encoded))
		return writeError
	case types.FormatXML:
		encoded, xmlMarshalError := xml.MarshalIndent(report, indentPrefix, indentSpacer)
		if xmlMarshalError != nil {
			return xmlMarshalError
		}
		_, writeError := fmt.Fprintln(writer, xmlHeader+string(encoded))
		return writeError
	default:
		return fmt.Errorf(unsupportedFormatMessage, format)
	}
}

func renderReportRaw(writer io.Writer, report pipeline.Report) error {
	if _, writeError := fmt.Fprintf(writer, reportHeaderFormat, report.OldDirectory, report.NewDirectory, report.OutputDirectory, report.Mode); writeError != nil {
		return writeError
	}

	reportTable := table.NewWriter()
	reportTable.SetStyle(table.StyleLight)
	reportTable.AppendHeader(reportColumns)
	for _, outcome := range report.Files {
		reportTable.AppendRow(table.Row{
			outcome.Name,
			outcome.Key,
			colorizeStatus(outcome.Status),
			countCell(outcome.Comments),
			countCell(outcome.Inserted),
			countCell(outcome.Flushed),
			countCell(outcome.Orphaned),
			countCell(outcome.Duplicates),
			sizeCell(outcome),
		})
	}
	totals := report.Totals()
	reportTable.AppendFooter(table.Row{
		totalLabel,
		emptyCell,
		strconv.Itoa(len(report.Files)),
		strconv.Itoa(totals.Comments),
		strconv.Itoa(totals.Inserted),
		strconv.Itoa(totals.Flushed),
		strconv.Itoa(totals.Orphaned),
		strconv.Itoa(totals.Duplicates),
		humanize.Bytes(uint64(totals.Bytes)),
	})
	if _, writeError := fmt.Fprintln(writer, reportTable.Render()); writeError != nil {
		return writeError
	}

	for _, outcome := range report.Files {
		if len(outcome.MissingElements) == 0 {
			continue
		}
		if _, writeError := fmt.Fprintf(writer, missingElementsFormat, outcome.Name, strings.Join(outcome.MissingElements, ", ")); writeError != nil {
			return writeError
		}
	}

	failed := report.Failed()
	if len(failed) == 0 {
		return nil
	}
	if _, writeError := fmt.Fprintln(writer, color.New(color.FgRed).Sprint(failuresHeader)); writeError != nil {
		return writeError
	}
	for _, outcome := range failed {
		if _, writeError := fmt.Fprintf(writer, failureLineFormat, outcome.Error); writeError != nil {
			return writeError
		}
	}
	return nil
}

func colorizeStatus(status pipeline.Status) string {
	switch status {
	case pipeline.StatusReintegrated:
		return color.New(color.FgGreen).Sprint(status)
	case pipeline.StatusUnmatched:
		return color.New(color.FgYellow).Sprint(status)
	case pipeline.StatusFailed:
		return color.New(color.FgRed).Sprint(status)
	default:
		return string(status)
	}
}

func countCell(count int) string {
	if count == 0 {
		return emptyCell
	}
	return strconv.Itoa(count)
}

func sizeCell(outcome pipeline.FileOutcome) string {
	if outcome.Status == pipeline.StatusFailed {
		return emptyCell
	}
	return humanize.Bytes(uint64(outcome.Bytes))
}
