package session

import (
	"github.com/alanbriolat/tubefetch"
)

type Event interface {
	// SessionID identifies the Controller that published the event.
	SessionID() string
}

type sessionEvent struct {
	sessionID string
}

func (e sessionEvent) SessionID() string {
	return e.sessionID
}

// LoadingChanged is sent when a metadata lookup starts or finishes.
type LoadingChanged struct {
	sessionEvent
	Loading bool
}

// MetadataLoaded is sent when a lookup succeeded and replaced the session.
type MetadataLoaded struct {
	sessionEvent
	URL      string
	VideoID  tubefetch.VideoID
	Metadata tubefetch.VideoMetadata
	Catalog  tubefetch.Catalog
}

// ErrorReported carries a failed action's error for display: validation, lookup or download start.
type ErrorReported struct {
	sessionEvent
	Err error
}

type DownloadStarted struct {
	sessionEvent
	VideoID tubefetch.VideoID
	Format  tubefetch.FormatOption
}

// ProgressUpdated is sent for every poll that returned a percentage. Complete is set on the last one.
type ProgressUpdated struct {
	sessionEvent
	VideoID  tubefetch.VideoID
	Snapshot tubefetch.ProgressSnapshot
	Complete bool
}

// DownloadFailed is sent once when the backend reports the job as failed; polling has stopped.
type DownloadFailed struct {
	sessionEvent
	VideoID tubefetch.VideoID
	Err     *tubefetch.JobError
}

// ProgressHidden is sent a while after completion, when the progress display should be hidden. It is sent early
// if a lookup or another download replaces the completed job first.
type ProgressHidden struct {
	sessionEvent
	VideoID tubefetch.VideoID
}

type SessionUpdated struct {
	sessionEvent
	OldState State
	NewState State
}
