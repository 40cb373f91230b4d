package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alanbriolat/tubefetch"
	"github.com/alanbriolat/tubefetch/async"
	"github.com/alanbriolat/tubefetch/generic"
)

// ProgressQuery fetches the current status of the job for a video.
type ProgressQuery func(ctx context.Context, videoID tubefetch.VideoID) (tubefetch.ProgressSnapshot, error)

// PollResult is the outcome of one status query, stamped with the generation of the poll that made it.
type PollResult struct {
	Generation uint64
	VideoID    tubefetch.VideoID
	Snapshot   tubefetch.ProgressSnapshot
	Err        error
}

type PollOutcome int

const (
	// OutcomeStale means the result belongs to a poll that has since been cancelled or replaced.
	OutcomeStale PollOutcome = iota
	// OutcomeTransient means the query failed; polling continues.
	OutcomeTransient
	// OutcomeNotReady means the backend has no progress for the job yet.
	OutcomeNotReady
	OutcomeProgress
	OutcomeComplete
	OutcomeFailed
)

func (o PollOutcome) String() string {
	switch o {
	case OutcomeStale:
		return "stale"
	case OutcomeTransient:
		return "transient"
	case OutcomeNotReady:
		return "not-ready"
	case OutcomeProgress:
		return "progress"
	case OutcomeComplete:
		return "complete"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Poller tracks the status of at most one download job, querying it every interval until it completes, fails or is
// cancelled. It owns no goroutine: the owning loop selects on TickC, ResultC and HideC and calls back into the
// Poller, which must only ever be used from that one goroutine.
//
// Every Start or Cancel advances the generation, so a query result that arrives late for an older poll is
// recognised and ignored, and the timer of an older poll can never fire.
type Poller struct {
	query     ProgressQuery
	interval  time.Duration
	hideDelay time.Duration
	log       *zap.SugaredLogger

	state      PollState
	videoID    tubefetch.VideoID
	generation uint64
	ticker     *time.Ticker
	hideTimer  *time.Timer
	// Context for queries of the current generation, cancelled along with it.
	queryCtx    context.Context
	queryCancel context.CancelFunc
	// At most one query at a time; a tick while it is outstanding is skipped.
	pending           <-chan generic.Result[PollResult]
	pendingGeneration uint64
}

func NewPoller(query ProgressQuery, interval time.Duration, hideDelay time.Duration, log *zap.SugaredLogger) *Poller {
	if log == nil {
		log = zap.S()
	}
	return &Poller{
		query:     query,
		interval:  interval,
		hideDelay: hideDelay,
		log:       log.Named("poller"),
		state:     PollIdle,
	}
}

func (p *Poller) State() PollState {
	return p.state
}

// VideoID is the video of the current or most recent poll.
func (p *Poller) VideoID() tubefetch.VideoID {
	return p.videoID
}

func (p *Poller) Generation() uint64 {
	return p.generation
}

// Start begins polling for videoID, cancelling whatever poll was active first. The first query happens after one
// interval.
func (p *Poller) Start(ctx context.Context, videoID tubefetch.VideoID) {
	p.Cancel()
	p.generation++
	p.videoID = videoID
	p.state = PollPolling
	p.queryCtx, p.queryCancel = context.WithCancel(ctx)
	p.ticker = time.NewTicker(p.interval)
	p.log.Debugw("started polling", "video_id", videoID, "generation", p.generation)
}

// Cancel stops the active poll and any pending hide, returning true if a poll was active. No query is made and no
// result is accepted for the cancelled poll afterwards.
func (p *Poller) Cancel() bool {
	p.stopHide()
	if p.state != PollPolling {
		return false
	}
	p.stop()
	p.generation++
	p.state = PollCancelled
	p.log.Debugw("cancelled polling", "video_id", p.videoID)
	return true
}

// Reset cancels any active poll and forgets the video it was for.
func (p *Poller) Reset() {
	p.Cancel()
	p.state = PollIdle
	p.videoID = ""
}

func (p *Poller) stop() {
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
	}
	if p.queryCancel != nil {
		p.queryCancel()
		p.queryCtx, p.queryCancel = nil, nil
	}
}

func (p *Poller) stopHide() {
	if p.hideTimer != nil {
		p.hideTimer.Stop()
		p.hideTimer = nil
	}
}

// TickC delivers the poll interval, or nil if not polling.
func (p *Poller) TickC() <-chan time.Time {
	if p.ticker == nil {
		return nil
	}
	return p.ticker.C
}

// ResultC delivers the result of the outstanding query, or nil if there is none.
func (p *Poller) ResultC() <-chan generic.Result[PollResult] {
	return p.pending
}

// HideC fires once, HideDelay after completion, or is nil.
func (p *Poller) HideC() <-chan time.Time {
	if p.hideTimer == nil {
		return nil
	}
	return p.hideTimer.C
}

// Tick dispatches a status query unless not polling or a query for this generation is still outstanding. Returns
// true if a query was dispatched.
func (p *Poller) Tick() bool {
	if p.state != PollPolling {
		return false
	}
	if p.pending != nil && p.pendingGeneration == p.generation {
		p.log.Debugw("skipping tick, query still outstanding", "video_id", p.videoID)
		return false
	}
	ctx, generation, videoID := p.queryCtx, p.generation, p.videoID
	p.pendingGeneration = generation
	p.pending = async.RunResult(func() (PollResult, error) {
		snapshot, err := p.query(ctx, videoID)
		return PollResult{Generation: generation, VideoID: videoID, Snapshot: snapshot, Err: err}, nil
	})
	return true
}

// Handle applies a result received from ResultC, and returns what it meant. Terminal outcomes stop polling.
func (p *Poller) Handle(result generic.Result[PollResult]) PollOutcome {
	p.pending = nil
	res := result.Unwrap()
	if res.Generation != p.generation || p.state != PollPolling {
		p.log.Debugw("discarding stale result", "video_id", res.VideoID, "generation", res.Generation)
		return OutcomeStale
	}
	switch {
	case res.Err != nil:
		p.log.Warnw("progress query failed", "video_id", res.VideoID, "error", res.Err)
		return OutcomeTransient
	case res.Snapshot.IsFailed():
		p.stop()
		p.state = PollFailed
		p.log.Infow("download failed", "video_id", res.VideoID, "error", res.Snapshot.Error)
		return OutcomeFailed
	case res.Snapshot.IsComplete():
		p.stop()
		p.state = PollComplete
		p.hideTimer = time.NewTimer(p.hideDelay)
		p.log.Infow("download complete", "video_id", res.VideoID)
		return OutcomeComplete
	case res.Snapshot.HasUpdate():
		return OutcomeProgress
	default:
		return OutcomeNotReady
	}
}

// Hidden must be called after HideC fires.
func (p *Poller) Hidden() {
	p.hideTimer = nil
}
