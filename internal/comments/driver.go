package comments

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Line is one line of reintegrated output.
type Line struct {
	Text string `json:"text"`
	// Recovered marks lines that carry a reintegrated comment.
	Recovered bool `json:"recovered"`
}

// Result is the outcome of reintegrating one file.
type Result struct {
	Lines []Line
	// Inserted counts comments placed next to a matching line.
	Inserted int
	// Flushed counts comments emitted at element boundaries, at the start or at the end of the file.
	Flushed int
	// Orphaned counts flushed comments whose element is absent from the new revision.
	Orphaned int
	// Duplicates counts emitted comments whose text was already emitted earlier in the file.
	Duplicates int
	// MissingElements lists new-revision elements without comments history.
	MissingElements []string
}

// Text joins every output line.
func (result Result) Text() string {
	var builder strings.Builder
	for _, line := range result.Lines {
		builder.WriteString(line.Text)
	}
	return builder.String()
}

// OriginalText joins the output lines that were not recovered comments.
func (result Result) OriginalText() string {
	var builder strings.Builder
	for _, line := range result.Lines {
		if !line.Recovered {
			builder.WriteString(line.Text)
		}
	}
	return builder.String()
}

// Recovered returns the number of reintegrated comments.
func (result Result) Recovered() int {
	return result.Inserted + result.Flushed
}

// driverState is the explicit state of the reintegration state machine. An
// empty currentElement means no declaration has been seen yet.
type driverState struct {
	currentElement string
	known          bool
	consumed       map[string]map[int]struct{}
}

func (state *driverState) consumedFor(elementName string) map[int]struct{} {
	consumedIndices, exists := state.consumed[elementName]
	if !exists {
		consumedIndices = map[int]struct{}{}
		state.consumed[elementName] = consumedIndices
	}
	return consumedIndices
}

// headerTarget is the old-revision element a new-revision header maps to.
type headerTarget struct {
	name  string
	known bool
}

type reintegration struct {
	index       *ElementIndex
	options     Options
	matcher     Matcher
	indentation string
	state       driverState
	result      Result
	emitted     map[uint64]struct{}
	orphans     []string
	orphanRank  map[string]int
}

// Reintegrate interleaves the comments of index with the lines of the new
// revision. A nil index yields the new lines unchanged.
func Reintegrate(index *ElementIndex, newLines []string, options Options) (Result, error) {
	options = options.withDefaults()
	if index == nil {
		index = NewElementIndex(options.SentinelElement)
	}
	run := &reintegration{
		index:       index,
		options:     options,
		matcher:     NewMatcher(options),
		indentation: strings.Repeat(" ", options.IndentWidth),
		state:       driverState{consumed: map[string]map[int]struct{}{}},
		emitted:     map[uint64]struct{}{},
	}

	headerTargets, planError := run.planHeaders(newLines)
	if planError != nil {
		return Result{}, planError
	}
	run.collectOrphans(headerTargets)
	run.emitLeadingComments()

	for lineIndex, line := range newLines {
		if target, isHeader := headerTargets[lineIndex]; isHeader {
			run.enterElement(target)
		}
		if run.state.known && !isBlank(line) {
			run.emitMatches(line)
		}
		run.append(Line{Text: line})
	}

	run.flushCurrent()
	run.flushOrphansBefore(len(index.names))
	return run.result, nil
}

// planHeaders maps every header line of the new revision to an old element.
// Exact names are claimed first; remaining headers take the first unclaimed
// old element whose normalized name shares a token with theirs and matches
// within the drift tolerance.
func (run *reintegration) planHeaders(newLines []string) (map[int]headerTarget, error) {
	detector := newHeaderDetector(run.options.HeaderKeywords)
	names := map[int]string{}
	var headerLines []int
	claimed := map[string]struct{}{}
	for lineIndex, line := range newLines {
		if !detector.isHeader(line) {
			continue
		}
		name, nameError := elementName(line)
		if nameError != nil {
			return nil, &LineError{Line: lineIndex + 1, Text: strings.TrimRight(line, newlineCharacter), Err: nameError}
		}
		names[lineIndex] = name
		headerLines = append(headerLines, lineIndex)
		if run.index.Has(name) {
			claimed[name] = struct{}{}
		}
	}

	targets := make(map[int]headerTarget, len(headerLines))
	resolved := map[string]headerTarget{}
	for _, lineIndex := range headerLines {
		name := names[lineIndex]
		target, seen := resolved[name]
		if !seen {
			target = run.resolveElement(name, claimed)
			resolved[name] = target
			if target.known {
				claimed[target.name] = struct{}{}
			} else {
				run.result.MissingElements = append(run.result.MissingElements, name)
			}
		}
		targets[lineIndex] = target
	}
	return targets, nil
}

func (run *reintegration) resolveElement(name string, claimed map[string]struct{}) headerTarget {
	if run.index.Has(name) {
		return headerTarget{name: name, known: true}
	}
	newTokens := Tokens(name)
	for _, oldName := range run.index.names {
		if _, taken := claimed[oldName]; taken {
			continue
		}
		oldTokens := Tokens(run.options.Normalizer(oldName))
		if differenceSize(oldTokens, newTokens) == len(oldTokens) {
			continue
		}
		if TokenSetsMatch(oldTokens, newTokens, StrictnessTolerant) {
			return headerTarget{name: oldName, known: true}
		}
	}
	return headerTarget{name: name}
}

// collectOrphans records old elements that no header of the new revision maps to.
func (run *reintegration) collectOrphans(headerTargets map[int]headerTarget) {
	run.orphanRank = map[string]int{}
	if !run.options.FlushOrphans {
		return
	}
	visited := map[string]struct{}{}
	for _, target := range headerTargets {
		if target.known {
			visited[target.name] = struct{}{}
		}
	}
	for rank, elementName := range run.index.names {
		if _, seen := visited[elementName]; seen {
			continue
		}
		run.orphans = append(run.orphans, elementName)
		run.orphanRank[elementName] = rank
	}
}

// emitLeadingComments writes the sentinel comments that had no anchor at the
// very start of the output.
func (run *reintegration) emitLeadingComments() {
	sentinel := run.options.SentinelElement
	consumedIndices := run.state.consumedFor(sentinel)
	for commentIndex, comment := range run.index.Comments(sentinel) {
		if comment.HasAnchor() {
			continue
		}
		consumedIndices[commentIndex] = struct{}{}
		run.emit(comment.Text, false)
		run.result.Flushed++
	}
}

// enterElement flushes the previous element and makes target current.
func (run *reintegration) enterElement(target headerTarget) {
	run.flushCurrent()
	run.state.currentElement = target.name
	run.state.known = target.known
	if !target.known {
		return
	}
	run.flushOrphansBefore(run.rankOf(target.name))
	run.state.consumedFor(target.name)
}

func (run *reintegration) rankOf(elementName string) int {
	for rank, candidate := range run.index.names {
		if candidate == elementName {
			return rank
		}
	}
	return -1
}

// emitMatches emits every unconsumed comment of the current element whose
// anchor matches line, in original order.
func (run *reintegration) emitMatches(line string) {
	consumedIndices := run.state.consumedFor(run.state.currentElement)
	for commentIndex, comment := range run.index.Comments(run.state.currentElement) {
		if !comment.HasAnchor() {
			continue
		}
		if _, done := consumedIndices[commentIndex]; done {
			continue
		}
		if !run.matcher.Matches(comment.Anchor, line) {
			continue
		}
		consumedIndices[commentIndex] = struct{}{}
		run.emitFormatted(comment)
		run.result.Inserted++
	}
}

// flushCurrent emits the unconsumed comments of the current element.
func (run *reintegration) flushCurrent() {
	if run.state.currentElement == "" || !run.state.known {
		return
	}
	run.result.Flushed += run.flushElement(run.state.currentElement)
}

// flushOrphansBefore flushes orphan elements ranked before rank in old order.
func (run *reintegration) flushOrphansBefore(rank int) {
	remaining := run.orphans[:0]
	for _, elementName := range run.orphans {
		if run.orphanRank[elementName] >= rank {
			remaining = append(remaining, elementName)
			continue
		}
		flushedCount := run.flushElement(elementName)
		run.result.Flushed += flushedCount
		run.result.Orphaned += flushedCount
	}
	run.orphans = remaining
}

func (run *reintegration) flushElement(elementName string) int {
	consumedIndices := run.state.consumedFor(elementName)
	flushedCount := 0
	for commentIndex, comment := range run.index.Comments(elementName) {
		if _, done := consumedIndices[commentIndex]; done {
			continue
		}
		consumedIndices[commentIndex] = struct{}{}
		run.emitFormatted(comment)
		flushedCount++
	}
	return flushedCount
}

// emitFormatted indents line comments; block comments are emitted verbatim.
func (run *reintegration) emitFormatted(comment AnchoredComment) {
	run.emit(comment.Text, !comment.IsBlock())
}

func (run *reintegration) emit(text string, indent bool) {
	fingerprint := xxhash.Sum64String(strings.TrimSpace(text))
	if _, seen := run.emitted[fingerprint]; seen {
		run.result.Duplicates++
	}
	run.emitted[fingerprint] = struct{}{}

	if indent {
		text = run.indentation + text
	}
	if !strings.HasSuffix(text, newlineCharacter) {
		text += newlineCharacter
	}
	if lineCount := len(run.result.Lines); lineCount > 0 && !strings.HasSuffix(run.result.Lines[lineCount-1].Text, newlineCharacter) {
		text = newlineCharacter + text
	}
	run.append(Line{Text: text, Recovered: true})
}

func (run *reintegration) append(line Line) {
	run.result.Lines = append(run.result.Lines, line)
}
