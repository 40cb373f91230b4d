package session

import (
	"context"
	"errors"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/alanbriolat/tubefetch"
	"github.com/alanbriolat/tubefetch/generic"
)

const (
	videoA tubefetch.VideoID = "dQw4w9WgXcQ"
	videoB tubefetch.VideoID = "9bZkp7q19f0"
)

type answer struct {
	snapshot tubefetch.ProgressSnapshot
	err      error
}

// newTestPoller returns a Poller whose queries block until answered, or until their poll is cancelled.
func newTestPoller(hideDelay time.Duration) (*Poller, chan<- answer) {
	answers := make(chan answer, 10)
	query := func(ctx context.Context, videoID tubefetch.VideoID) (tubefetch.ProgressSnapshot, error) {
		select {
		case a := <-answers:
			return a.snapshot, a.err
		case <-ctx.Done():
			return tubefetch.ProgressSnapshot{}, ctx.Err()
		}
	}
	return NewPoller(query, time.Hour, hideDelay, nil), answers
}

func percent(v float64) tubefetch.ProgressSnapshot {
	return tubefetch.ProgressSnapshot{Percent: generic.Some(v)}
}

func TestPoller_Progress(t *testing.T) {
	assert := assert_.New(t)
	p, answers := newTestPoller(time.Hour)

	assert.Equal(PollIdle, p.State())
	assert.Nil(p.TickC())
	assert.Nil(p.ResultC())
	assert.False(p.Tick(), "no query when idle")

	p.Start(context.Background(), videoA)
	assert.Equal(PollPolling, p.State())
	assert.Equal(videoA, p.VideoID())
	assert.NotNil(p.TickC())

	assert.True(p.Tick())
	assert.False(p.Tick(), "no second query while one is outstanding")
	answers <- answer{snapshot: tubefetch.ProgressSnapshot{}}
	assert.Equal(OutcomeNotReady, p.Handle(<-p.ResultC()))
	assert.Nil(p.ResultC())

	assert.True(p.Tick())
	answers <- answer{err: errors.New("connection refused")}
	assert.Equal(OutcomeTransient, p.Handle(<-p.ResultC()))
	assert.Equal(PollPolling, p.State())

	assert.True(p.Tick())
	answers <- answer{snapshot: percent(42.5)}
	assert.Equal(OutcomeProgress, p.Handle(<-p.ResultC()))
	assert.Equal(PollPolling, p.State())

	assert.True(p.Tick())
	answers <- answer{snapshot: percent(100)}
	assert.Equal(OutcomeComplete, p.Handle(<-p.ResultC()))
	assert.Equal(PollComplete, p.State())
	assert.Nil(p.TickC(), "no more ticks once complete")
	assert.NotNil(p.HideC())
	assert.False(p.Tick())
}

func TestPoller_Failed(t *testing.T) {
	assert := assert_.New(t)
	p, answers := newTestPoller(time.Hour)

	p.Start(context.Background(), videoA)
	assert.True(p.Tick())
	answers <- answer{snapshot: tubefetch.ProgressSnapshot{Error: "ERROR: Requested format is not available"}}
	assert.Equal(OutcomeFailed, p.Handle(<-p.ResultC()))
	assert.Equal(PollFailed, p.State())
	assert.True(p.State().IsTerminal())
	assert.Nil(p.TickC())
	assert.Nil(p.HideC(), "failures are not hidden")
	assert.False(p.Cancel(), "nothing to cancel")
	assert.Equal(PollFailed, p.State())
}

func TestPoller_Cancel(t *testing.T) {
	assert := assert_.New(t)
	p, _ := newTestPoller(time.Hour)

	assert.False(p.Cancel())
	p.Start(context.Background(), videoA)
	generation := p.Generation()
	assert.True(p.Tick())
	assert.True(p.Cancel())
	assert.Equal(PollCancelled, p.State())
	assert.Greater(p.Generation(), generation)
	assert.Nil(p.TickC())
	assert.False(p.Tick())

	// The outstanding query was cancelled with its poll, and its result is ignored
	res := <-p.ResultC()
	assert.ErrorIs(res.Unwrap().Err, context.Canceled)
	assert.Equal(OutcomeStale, p.Handle(res))
	assert.Equal(PollCancelled, p.State())
	assert.False(p.Cancel())

	p.Reset()
	assert.Equal(PollIdle, p.State())
	assert.Equal(tubefetch.VideoID(""), p.VideoID())
}

func TestPoller_Restart(t *testing.T) {
	assert := assert_.New(t)
	p, answers := newTestPoller(time.Hour)

	p.Start(context.Background(), videoA)
	assert.True(p.Tick())
	stale := p.ResultC()
	p.Start(context.Background(), videoB)
	assert.Equal(PollPolling, p.State())
	assert.Equal(videoB, p.VideoID())

	// A result for the replaced poll changes nothing
	res := <-stale
	assert.Equal(videoA, res.Unwrap().VideoID)
	assert.Equal(OutcomeStale, p.Handle(res))
	assert.Equal(PollPolling, p.State())

	assert.True(p.Tick())
	answers <- answer{snapshot: percent(100)}
	res = <-p.ResultC()
	assert.Equal(videoB, res.Unwrap().VideoID)
	assert.Equal(OutcomeComplete, p.Handle(res))

	// Starting again also drops the pending hide of the completed poll
	assert.NotNil(p.HideC())
	p.Start(context.Background(), videoA)
	assert.Nil(p.HideC())
}

func TestPoller_StaleAfterRestartWithQueryOutstanding(t *testing.T) {
	assert := assert_.New(t)
	p, answers := newTestPoller(time.Hour)

	p.Start(context.Background(), videoA)
	assert.True(p.Tick())
	stale := p.ResultC()
	p.Start(context.Background(), videoB)
	// The new poll does not wait for the old poll's result to be handled
	assert.True(p.Tick())
	assert.ErrorIs((<-stale).Unwrap().Err, context.Canceled)
	answers <- answer{snapshot: percent(50)}
	res := <-p.ResultC()
	assert.Equal(videoB, res.Unwrap().VideoID)
	assert.Equal(OutcomeProgress, p.Handle(res))
}

func TestPoller_Hide(t *testing.T) {
	assert := assert_.New(t)
	p, answers := newTestPoller(10 * time.Millisecond)

	p.Start(context.Background(), videoA)
	assert.True(p.Tick())
	answers <- answer{snapshot: percent(100.0)}
	assert.Equal(OutcomeComplete, p.Handle(<-p.ResultC()))
	select {
	case <-p.HideC():
		p.Hidden()
	case <-time.After(time.Second):
		assert.Fail("hide timer did not fire")
	}
	assert.Nil(p.HideC())
	assert.Equal(PollComplete, p.State())
}

func TestPoller_Ticker(t *testing.T) {
	assert := assert_.New(t)
	p := NewPoller(func(context.Context, tubefetch.VideoID) (tubefetch.ProgressSnapshot, error) {
		return tubefetch.ProgressSnapshot{}, nil
	}, 5*time.Millisecond, time.Hour, nil)

	p.Start(context.Background(), videoA)
	select {
	case <-p.TickC():
	case <-time.After(time.Second):
		assert.Fail("ticker did not fire")
	}
	p.Cancel()
	assert.Nil(p.TickC())
}

func TestPollOutcome_String(t *testing.T) {
	assert := assert_.New(t)
	assert.Equal("stale", OutcomeStale.String())
	assert.Equal("complete", OutcomeComplete.String())
	assert.Equal("unknown", PollOutcome(99).String())
}
