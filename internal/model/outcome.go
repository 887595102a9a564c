package model

import "net/http"

// Outcome is the terminal state of one pipeline run.
type Outcome string

const (
	OutcomeDone            Outcome = "done"
	OutcomeNoData          Outcome = "no_data"
	OutcomeNoRecent        Outcome = "no_recent"
	OutcomeSummarizeFailed Outcome = "summarize_failed"
	OutcomePublishFailed   Outcome = "publish_failed"
)

// OK reports whether the outcome counts as a successful run.
// NoRecent is benign: nothing to summarize is not an error.
func (o Outcome) OK() bool {
	return o == OutcomeDone || o == OutcomeNoRecent
}

// StatusCode returns the HTTP-style status for the outcome.
func (o Outcome) StatusCode() int {
	if o.OK() {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// Message returns the human readable body paired with StatusCode.
func (o Outcome) Message() string {
	switch o {
	case OutcomeDone:
		return "Analysis complete and published"
	case OutcomeNoData:
		return "Failed to fetch data from forum"
	case OutcomeNoRecent:
		return "No recent posts found"
	case OutcomeSummarizeFailed:
		return "Analysis failed"
	case OutcomePublishFailed:
		return "Failed to publish digest"
	default:
		return "Unknown outcome"
	}
}

// ExitCode maps the outcome to a process exit status for batch runs.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeDone, OutcomeNoRecent:
		return 0
	case OutcomeNoData:
		return 2
	case OutcomeSummarizeFailed:
		return 3
	case OutcomePublishFailed:
		return 4
	default:
		return 1
	}
}
