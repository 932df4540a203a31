package integration

import (
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// ProcessStatus
// ---------------------------------------------------------------------------

// ProcessState is the outcome of one status poll of an asynchronous platform job.
type ProcessState string

const (
	ProcessStatePending   ProcessState = "PENDING"
	ProcessStateSucceeded ProcessState = "SUCCESS"
	ProcessStateFailed    ProcessState = "FAILURE"
)

// ProcessStatus is the answer of a single status poll.
// EntityID is set when the job succeeded, Reason when it failed.
type ProcessStatus struct {
	State    ProcessState
	EntityID string
	Reason   string
}

// ---------------------------------------------------------------------------
// ExportJob state machine
// ---------------------------------------------------------------------------

// ExportState is a state of the offer export lifecycle.
type ExportState string

const (
	ExportStateIdle        ExportState = "IDLE"
	ExportStateRequested   ExportState = "REQUESTED"
	ExportStatePolling     ExportState = "POLLING"
	ExportStateDownloading ExportState = "DOWNLOADING"
	ExportStateComplete    ExportState = "COMPLETE"
	ExportStateFailed      ExportState = "FAILED"
)

// IsTerminal reports whether no further transition is possible.
func (s ExportState) IsTerminal() bool {
	return s == ExportStateComplete || s == ExportStateFailed
}

var exportTransitions = map[ExportState][]ExportState{
	ExportStateIdle:        {ExportStateRequested, ExportStateFailed},
	ExportStateRequested:   {ExportStatePolling, ExportStateFailed},
	ExportStatePolling:     {ExportStatePolling, ExportStateDownloading, ExportStateFailed},
	ExportStateDownloading: {ExportStateComplete, ExportStateFailed},
}

// ExportJob tracks one offer export from request to download.
type ExportJob struct {
	State           ExportState
	ProcessStatusID string
	EntityID        string
	Polls           int
	FailureReason   string
	StartedAt       time.Time
	FinishedAt      *time.Time
}

// NewExportJob creates an idle export job.
func NewExportJob() *ExportJob {
	return &ExportJob{State: ExportStateIdle, StartedAt: time.Now()}
}

func (j *ExportJob) transition(to ExportState) error {
	for _, allowed := range exportTransitions[j.State] {
		if allowed == to {
			j.State = to
			if to.IsTerminal() {
				now := time.Now()
				j.FinishedAt = &now
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidJobTransition, j.State, to)
}

// Requested records the process status id handed out by the platform and starts polling.
func (j *ExportJob) Requested(processStatusID string) error {
	if err := j.transition(ExportStateRequested); err != nil {
		return err
	}
	j.ProcessStatusID = processStatusID
	return j.transition(ExportStatePolling)
}

// Observe applies one poll result. It returns true when the job left the polling state.
func (j *ExportJob) Observe(status ProcessStatus) (bool, error) {
	if j.State != ExportStatePolling {
		return false, fmt.Errorf("%w: poll result in state %s", ErrInvalidJobTransition, j.State)
	}
	j.Polls++

	switch status.State {
	case ProcessStateSucceeded:
		j.EntityID = status.EntityID
		return true, j.transition(ExportStateDownloading)
	case ProcessStateFailed:
		j.FailureReason = status.Reason
		return true, j.transition(ExportStateFailed)
	default:
		return false, j.transition(ExportStatePolling)
	}
}

// Complete marks the artifact as downloaded.
func (j *ExportJob) Complete() error {
	return j.transition(ExportStateComplete)
}

// Fail moves the job to the failed state from any non-terminal state.
func (j *ExportJob) Fail(reason string) {
	if j.State.IsTerminal() {
		return
	}
	j.FailureReason = reason
	_ = j.transition(ExportStateFailed)
}
