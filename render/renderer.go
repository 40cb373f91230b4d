// Package render presents session events to a user. A Renderer only ever receives typed data; it never reports
// anything back to the session.
package render

import (
	"github.com/alanbriolat/tubefetch"
	"github.com/alanbriolat/tubefetch/internal/pubsub"
	"github.com/alanbriolat/tubefetch/internal/session"
)

type Renderer interface {
	Loading(loading bool)
	ShowMetadata(videoID tubefetch.VideoID, metadata tubefetch.VideoMetadata, catalog tubefetch.Catalog)
	ShowError(err error)
	ShowDownloadStarted(videoID tubefetch.VideoID, format tubefetch.FormatOption)
	ShowProgress(videoID tubefetch.VideoID, snapshot tubefetch.ProgressSnapshot, complete bool)
	ShowJobFailed(err *tubefetch.JobError)
	HideProgress(videoID tubefetch.VideoID)
}

// Pump feeds session events to r until events is closed.
func Pump(events pubsub.Receiver[session.Event], r Renderer) {
	for event := range events.Receive() {
		Dispatch(event, r)
	}
}

// Dispatch calls the Renderer method for one event. Events with nothing to show are ignored.
func Dispatch(event session.Event, r Renderer) {
	switch e := event.(type) {
	case session.LoadingChanged:
		r.Loading(e.Loading)
	case session.MetadataLoaded:
		r.ShowMetadata(e.VideoID, e.Metadata, e.Catalog)
	case session.ErrorReported:
		r.ShowError(e.Err)
	case session.DownloadStarted:
		r.ShowDownloadStarted(e.VideoID, e.Format)
	case session.ProgressUpdated:
		r.ShowProgress(e.VideoID, e.Snapshot, e.Complete)
	case session.DownloadFailed:
		r.ShowJobFailed(e.Err)
	case session.ProgressHidden:
		r.HideProgress(e.VideoID)
	}
}
