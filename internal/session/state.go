package session

import (
	"github.com/alanbriolat/tubefetch"
	"github.com/alanbriolat/tubefetch/generic"
)

type PollState string

const (
	PollIdle      PollState = "idle"
	PollPolling   PollState = "polling"
	PollComplete  PollState = "complete"
	PollFailed    PollState = "failed"
	PollCancelled PollState = "cancelled"
)

var terminalPollStates = generic.NewSet(
	PollComplete,
	PollFailed,
	PollCancelled,
)

// IsTerminal returns true if no further status queries will be made in this state.
func (s PollState) IsTerminal() bool {
	return terminalPollStates.Contains(s)
}

// Job is a download started on the backend. The backend identifies it only by the video ID.
type Job struct {
	VideoID  tubefetch.VideoID
	FormatID string
}

// State is a copy of the session, as seen by the controller goroutine at one point in time.
type State struct {
	ID string
	// URL is the trimmed input of the lookup that produced VideoID; downloads are requested for this URL.
	URL      string
	VideoID  tubefetch.VideoID
	Metadata *tubefetch.VideoMetadata
	Catalog  tubefetch.Catalog
	Job      *Job
	Poll     PollState
	Loading  bool
	Starting bool
}
