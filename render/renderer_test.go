package render

import (
	"errors"
	"testing"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/alanbriolat/tubefetch"
	"github.com/alanbriolat/tubefetch/generic"
	"github.com/alanbriolat/tubefetch/internal/pubsub"
	"github.com/alanbriolat/tubefetch/internal/session"
)

// recordingRenderer keeps a log of calls.
type recordingRenderer struct {
	calls []string
}

func (r *recordingRenderer) Loading(loading bool) {
	if loading {
		r.calls = append(r.calls, "loading")
	} else {
		r.calls = append(r.calls, "loaded")
	}
}

func (r *recordingRenderer) ShowMetadata(videoID tubefetch.VideoID, metadata tubefetch.VideoMetadata, catalog tubefetch.Catalog) {
	r.calls = append(r.calls, "metadata "+metadata.Title)
}

func (r *recordingRenderer) ShowError(err error) {
	r.calls = append(r.calls, "error "+err.Error())
}

func (r *recordingRenderer) ShowDownloadStarted(videoID tubefetch.VideoID, format tubefetch.FormatOption) {
	r.calls = append(r.calls, "started "+format.ID)
}

func (r *recordingRenderer) ShowProgress(videoID tubefetch.VideoID, snapshot tubefetch.ProgressSnapshot, complete bool) {
	r.calls = append(r.calls, "progress "+FormatPercent(snapshot.Percent.Unwrap()))
}

func (r *recordingRenderer) ShowJobFailed(err *tubefetch.JobError) {
	r.calls = append(r.calls, "failed "+err.Message)
}

func (r *recordingRenderer) HideProgress(videoID tubefetch.VideoID) {
	r.calls = append(r.calls, "hide "+videoID.String())
}

func TestPump(t *testing.T) {
	assert := assert_.New(t)
	ch := pubsub.NewChannel[session.Event](16)
	events := []session.Event{
		session.LoadingChanged{Loading: true},
		session.MetadataLoaded{VideoID: "dQw4w9WgXcQ", Metadata: tubefetch.VideoMetadata{Title: "Never Gonna Give You Up"}},
		session.LoadingChanged{Loading: false},
		session.ErrorReported{Err: errors.New("oops")},
		session.SessionUpdated{},
		session.DownloadStarted{VideoID: "dQw4w9WgXcQ", Format: tubefetch.FormatOption{ID: "18"}},
		session.ProgressUpdated{VideoID: "dQw4w9WgXcQ", Snapshot: tubefetch.ProgressSnapshot{Percent: generic.Some(100.0)}, Complete: true},
		session.DownloadFailed{VideoID: "dQw4w9WgXcQ", Err: &tubefetch.JobError{Message: "job failed"}},
		session.ProgressHidden{VideoID: "dQw4w9WgXcQ"},
	}
	for _, e := range events {
		assert.True(ch.Send(e))
	}
	ch.Close()

	r := &recordingRenderer{}
	Pump(ch, r)
	assert.Equal([]string{
		"loading",
		"metadata Never Gonna Give You Up",
		"loaded",
		"error oops",
		"started 18",
		"progress 100%",
		"failed job failed",
		"hide dQw4w9WgXcQ",
	}, r.calls)
}
