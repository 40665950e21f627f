package domain

import (
	"errors"
	"unicode/utf8"
)

// Failure taxonomy shared by every backend boundary.
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrBackendTransport  = errors.New("backend transport failure")
	ErrBackendContent    = errors.New("backend returned no usable content")
)

// Source is one configured URL together with its position in the source list.
type Source struct {
	URL      string
	Position int
}

// FetchStatus classifies the outcome of a single source fetch.
type FetchStatus string

const (
	FetchOK     FetchStatus = "ok"
	FetchEmpty  FetchStatus = "empty"
	FetchFailed FetchStatus = "failed"
)

// Excerpt is the truncated text pulled from one source.
type Excerpt struct {
	Source Source
	Text   string
	Status FetchStatus
	Err    error
}

// Document is the aggregated input handed to the summarizer.
type Document struct {
	Text      string
	Included  int
	Attempted int
}

// Len reports the document size in characters.
func (d Document) Len() int {
	return utf8.RuneCountInString(d.Text)
}

// Briefing is the summarizer output. Failed marks an error sentinel.
type Briefing struct {
	Text   string
	Failed bool
}

// RunState enumerates orchestrator milestones.
type RunState string

const (
	StateIdle        RunState = "idle"
	StateFetching    RunState = "fetching"
	StateSummarizing RunState = "summarizing"
	StateDelivering  RunState = "delivering"
	StateDone        RunState = "done"
	StateAborted     RunState = "aborted"
)

// Outcome is the operator-facing verdict of one run.
type Outcome string

const (
	OutcomeDelivered          Outcome = "delivered"
	OutcomeDeliveredWithError Outcome = "delivered_with_error"
	OutcomeDeliveryFailed     Outcome = "delivery_failed"
	OutcomeAborted            Outcome = "aborted"
)

// RunResult summarizes a finished pipeline run for the entry point.
type RunResult struct {
	RunID       string
	State       RunState
	Outcome     Outcome
	DocumentLen int
	Sources     int
	Included    int
	Briefing    Briefing
	Delivered   bool
}

// OK reports whether the run delivered a real briefing.
func (r RunResult) OK() bool {
	return r.Outcome == OutcomeDelivered
}

// NewSources numbers urls in configuration order, skipping blanks.
func NewSources(urls []string) []Source {
	sources := make([]Source, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		sources = append(sources, Source{URL: u, Position: len(sources)})
	}
	return sources
}
