package domain

import (
	"fmt"
	"time"
)

// experimentTimeLayout is followed by a dash and six digits of microseconds.
const experimentTimeLayout = "2006-01-02T15-04-05"

// Status is the completion state shown in the status column.
type Status string

const (
	StatusRunning  Status = "Running"
	StatusComplete Status = "Complete"
)

type Author struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ExecutionInfo is written when an experiment starts.
type ExecutionInfo struct {
	StartTime string   `json:"start_time"`
	Author    Author   `json:"author"`
	Notes     []string `json:"notes"`
	Args      []string `json:"args,omitempty"`
}

// Results is written when an experiment finishes.
type Results struct {
	StartTime string  `json:"start_time,omitempty"`
	EndTime   string  `json:"end_time"`
	Metrics   Metrics `json:"metrics"`
}

// ExperimentSummary is the server's snapshot of one experiment. Summaries are
// never mutated once decoded.
type ExperimentSummary struct {
	ID            string         `json:"-"`
	ExecutionInfo *ExecutionInfo `json:"execution_info"`
	Logs          []string       `json:"logs"`
	Results       *Results       `json:"results"`
}

// Status derives completion from the presence of results.
func (s *ExperimentSummary) Status() Status {
	if s.Results != nil {
		return StatusComplete
	}
	return StatusRunning
}

// FinishTime returns the end time or the NotAvailable sentinel.
func (s *ExperimentSummary) FinishTime() string {
	if s.Results == nil || s.Results.EndTime == "" {
		return NotAvailable
	}
	return s.Results.EndTime
}

// Metrics returns the reported metrics, or nil while the experiment runs.
func (s *ExperimentSummary) Metrics() Metrics {
	if s.Results == nil {
		return nil
	}
	return s.Results.Metrics
}

// FormatExperimentTime renders t the way experiment ids and end times are
// stored, e.g. 2019-09-04T10-12-01-004512.
func FormatExperimentTime(t time.Time) string {
	return fmt.Sprintf("%s-%06d", t.Format(experimentTimeLayout), t.Nanosecond()/1000)
}
