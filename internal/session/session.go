package session

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/r3labs/diff/v3"
	"go.uber.org/zap"

	"github.com/alanbriolat/tubefetch"
	"github.com/alanbriolat/tubefetch/async"
	"github.com/alanbriolat/tubefetch/generic"
	"github.com/alanbriolat/tubefetch/internal/lpc"
	"github.com/alanbriolat/tubefetch/internal/pubsub"
)

// Backend is what the Controller needs from the download backend; *backend.Client implements it.
type Backend interface {
	FetchMetadata(ctx context.Context, rawURL string) (*tubefetch.Lookup, error)
	StartJob(ctx context.Context, rawURL string, formatID string, videoID tubefetch.VideoID) error
	QueryProgress(ctx context.Context, videoID tubefetch.VideoID) (tubefetch.ProgressSnapshot, error)
}

type lookupCommand = *lpc.Command[string, generic.Void]
type selectCommand = *lpc.Command[string, generic.Void]
type stateCommand = *lpc.Command[generic.Void, State]

type pendingLookup struct {
	cmd     lookupCommand
	url     string
	videoID tubefetch.VideoID
	result  <-chan generic.Result[*tubefetch.Lookup]
}

type pendingStart struct {
	cmd    selectCommand
	job    Job
	format tubefetch.FormatOption
	result <-chan generic.Result[generic.Void]
}

// Controller owns the state of a single download session: the looked-up video, its formats, and the progress of the
// most recently started download. All of it is owned by one goroutine, which user actions, backend responses and
// timers are all funnelled into, so there is never more than one poll and never a stale update applied.
type Controller struct {
	id        string
	config    tubefetch.Config
	backend   Backend
	ctx       context.Context
	ctxCancel context.CancelFunc
	log       *zap.SugaredLogger
	events    pubsub.Publisher[Event]
	done      chan struct{}

	lookupCommands chan lookupCommand
	selectCommands chan selectCommand
	stateCommands  chan stateCommand

	// Only accessed from the run goroutine
	state         State
	poller        *Poller
	pendingLookup *pendingLookup
	pendingStart  *pendingStart
}

func New(ctx context.Context, config tubefetch.Config, backend Backend) (*Controller, error) {
	if backend == nil {
		return nil, errors.New("session: no backend")
	}
	id := generic.Unwrap(uuid.NewRandom()).String()
	ctx, cancel := context.WithCancel(ctx)
	c := &Controller{
		id:        id,
		config:    config,
		backend:   backend,
		ctx:       ctx,
		ctxCancel: cancel,
		log:       tubefetch.Logger(ctx).Sugar().Named("session").With("session_id", id),
		events:    pubsub.NewPublisher[Event](),
		done:      make(chan struct{}),

		lookupCommands: make(chan lookupCommand),
		selectCommands: make(chan selectCommand),
		stateCommands:  make(chan stateCommand),

		state: State{ID: id, Poll: PollIdle},
	}
	c.poller = NewPoller(backend.QueryProgress, config.PollInterval, config.HideDelay, c.log)
	go c.run()
	return c, nil
}

func (c *Controller) ID() string {
	return c.id
}

// Subscribe returns a receiver for all events published after this call. Subscribers must keep receiving, or the
// controller will eventually block.
func (c *Controller) Subscribe() (pubsub.ReceiverCloser[Event], error) {
	bufSize := c.config.EventBufSize
	if bufSize <= 0 {
		bufSize = pubsub.DefaultSubscriberBufSize
	}
	return c.events.SubscribeBufSize(bufSize)
}

// AddSubscriber is like Subscribe, but for a caller-provided sender, e.g. one from pubsub.NewFilteredSender.
func (c *Controller) AddSubscriber(s pubsub.SenderCloser[Event]) error {
	return c.events.AddSubscriber(s)
}

// Lookup validates rawURL and fetches its metadata, replacing the session on success. It returns once the lookup
// has finished; a failure is also published as ErrorReported. A lookup while another is still running is rejected
// with ErrLookupInProgress.
func (c *Controller) Lookup(ctx context.Context, rawURL string) error {
	cmd := lookupCommand(nil).New(rawURL)
	if err := send(ctx, c, c.lookupCommands, cmd); err != nil {
		return err
	}
	_, err := cmd.WaitContext(ctx)
	return err
}

// SelectFormat starts a download of formatID for the current video. It returns once the backend has accepted or
// rejected the request; progress is then published as events.
func (c *Controller) SelectFormat(ctx context.Context, formatID string) error {
	cmd := selectCommand(nil).New(formatID)
	if err := send(ctx, c, c.selectCommands, cmd); err != nil {
		return err
	}
	_, err := cmd.WaitContext(ctx)
	return err
}

// State returns a copy of the current session.
func (c *Controller) State(ctx context.Context) (State, error) {
	cmd := stateCommand(nil).New(generic.NewVoid())
	if err := send(ctx, c, c.stateCommands, cmd); err != nil {
		return State{}, err
	}
	return cmd.WaitContext(ctx)
}

// Done is closed once the controller has stopped.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Close stops polling, fails any unfinished action with ErrClosed, and closes all subscribers.
func (c *Controller) Close() {
	c.ctxCancel()
	<-c.done
	c.events.Close()
}

func send[T any](ctx context.Context, c *Controller, ch chan<- T, cmd T) error {
	select {
	case ch <- cmd:
		return nil
	case <-c.done:
		return tubefetch.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) run() {
	defer close(c.done)
	c.log.Debug("started")
	for {
		select {
		case <-c.ctx.Done():
			c.shutdown()
			return

		case cmd := <-c.lookupCommands:
			c.lookup(cmd)
		case cmd := <-c.selectCommands:
			c.selectFormat(cmd)
		case cmd := <-c.stateCommands:
			_ = cmd.Respond(c.state)

		case res := <-c.lookupResultC():
			c.finishLookup(res)
		case res := <-c.startResultC():
			c.finishStart(res)

		case <-c.poller.TickC():
			c.poller.Tick()
		case res := <-c.poller.ResultC():
			c.handleProgress(res)
		case <-c.poller.HideC():
			c.poller.Hidden()
			c.publish(ProgressHidden{sessionEvent: c.event(), VideoID: c.poller.VideoID()})
		}
	}
}

func (c *Controller) lookupResultC() <-chan generic.Result[*tubefetch.Lookup] {
	if c.pendingLookup == nil {
		return nil
	}
	return c.pendingLookup.result
}

func (c *Controller) startResultC() <-chan generic.Result[generic.Void] {
	if c.pendingStart == nil {
		return nil
	}
	return c.pendingStart.result
}

func (c *Controller) lookup(cmd lookupCommand) {
	if c.pendingLookup != nil {
		_ = cmd.RespondError(tubefetch.ErrLookupInProgress)
		return
	}
	rawURL := cmd.Arg()
	videoID, err := tubefetch.ParseVideoURL(rawURL)
	if err != nil {
		c.log.Debugw("rejected url", "url", rawURL, "error", err)
		c.report(err)
		_ = cmd.RespondError(err)
		return
	}
	// Progress for some other video is of no further interest
	if c.poller.VideoID() != videoID && c.cancelPoll() {
		c.updateState(func(s *State) { s.Poll = c.poller.State() })
	}

	url := strings.TrimSpace(rawURL)
	c.log.Infow("looking up video", "url", url, "video_id", videoID)
	c.pendingLookup = &pendingLookup{
		cmd:     cmd,
		url:     url,
		videoID: videoID,
		result: async.RunResult(func() (*tubefetch.Lookup, error) {
			return c.backend.FetchMetadata(c.ctx, url)
		}),
	}
	c.updateState(func(s *State) { s.Loading = true })
	c.publish(LoadingChanged{sessionEvent: c.event(), Loading: true})
}

func (c *Controller) finishLookup(res generic.Result[*tubefetch.Lookup]) {
	p := c.pendingLookup
	c.pendingLookup = nil
	lookup, err := res.Parts()
	if err != nil {
		c.log.Warnw("lookup failed", "url", p.url, "error", err)
		c.updateState(func(s *State) { s.Loading = false })
		c.report(err)
		c.publish(LoadingChanged{sessionEvent: c.event(), Loading: false})
		_ = p.cmd.RespondError(err)
		return
	}

	// A new session: nothing about the previous video survives
	c.cancelPoll()
	c.poller.Reset()
	c.supersedeStart()
	metadata := lookup.Metadata
	catalog := tubefetch.Organize(lookup.Formats)
	c.updateState(func(s *State) {
		s.URL = p.url
		s.VideoID = p.videoID
		s.Metadata = &metadata
		s.Catalog = catalog
		s.Job = nil
		s.Poll = c.poller.State()
		s.Loading = false
	})
	c.log.Infow("loaded video", "video_id", p.videoID, "title", metadata.Title, "formats", catalog.Len())
	c.publish(MetadataLoaded{sessionEvent: c.event(), URL: p.url, VideoID: p.videoID, Metadata: metadata, Catalog: catalog})
	c.publish(LoadingChanged{sessionEvent: c.event(), Loading: false})
	_ = p.cmd.Respond(generic.NewVoid())
}

func (c *Controller) selectFormat(cmd selectCommand) {
	if c.state.VideoID == "" {
		_ = cmd.RespondError(tubefetch.ErrNoActiveVideo)
		return
	}
	formatID := cmd.Arg()
	format, ok := c.state.Catalog.Find(formatID)
	if !ok {
		_ = cmd.RespondError(tubefetch.ErrUnknownFormat)
		return
	}
	// The previous download's poll stops before the new one is even requested
	c.cancelPoll()
	c.supersedeStart()

	job := Job{VideoID: c.state.VideoID, FormatID: formatID}
	url := c.state.URL
	c.log.Infow("starting download", "video_id", job.VideoID, "format_id", formatID, "quality", format.Quality)
	c.pendingStart = &pendingStart{
		cmd:    cmd,
		job:    job,
		format: format,
		result: async.RunResult(func() (generic.Void, error) {
			return generic.NewVoid(), c.backend.StartJob(c.ctx, url, job.FormatID, job.VideoID)
		}),
	}
	c.updateState(func(s *State) {
		s.Poll = c.poller.State()
		s.Starting = true
	})
}

func (c *Controller) finishStart(res generic.Result[generic.Void]) {
	p := c.pendingStart
	c.pendingStart = nil
	if _, err := res.Parts(); err != nil {
		c.log.Warnw("download start failed", "video_id", p.job.VideoID, "format_id", p.job.FormatID, "error", err)
		c.updateState(func(s *State) { s.Starting = false })
		c.report(err)
		_ = p.cmd.RespondError(err)
		return
	}
	c.poller.Start(c.ctx, p.job.VideoID)
	job := p.job
	c.updateState(func(s *State) {
		s.Job = &job
		s.Poll = c.poller.State()
		s.Starting = false
	})
	c.publish(DownloadStarted{sessionEvent: c.event(), VideoID: job.VideoID, Format: p.format})
	_ = p.cmd.Respond(generic.NewVoid())
}

// supersedeStart abandons a download request still awaiting the backend. The backend may still start it, but it
// will never be polled.
func (c *Controller) supersedeStart() {
	if c.pendingStart == nil {
		return
	}
	c.log.Debugw("superseded download start", "video_id", c.pendingStart.job.VideoID, "format_id", c.pendingStart.job.FormatID)
	_ = c.pendingStart.cmd.RespondError(tubefetch.ErrSuperseded)
	c.pendingStart = nil
	c.updateState(func(s *State) { s.Starting = false })
}

func (c *Controller) handleProgress(res generic.Result[PollResult]) {
	outcome := c.poller.Handle(res)
	r := res.Unwrap()
	switch outcome {
	case OutcomeProgress:
		c.publish(ProgressUpdated{sessionEvent: c.event(), VideoID: r.VideoID, Snapshot: r.Snapshot})
	case OutcomeComplete:
		c.publish(ProgressUpdated{sessionEvent: c.event(), VideoID: r.VideoID, Snapshot: r.Snapshot, Complete: true})
		c.updateState(func(s *State) { s.Poll = c.poller.State() })
	case OutcomeFailed:
		c.publish(DownloadFailed{sessionEvent: c.event(), VideoID: r.VideoID, Err: &tubefetch.JobError{VideoID: r.VideoID, Message: r.Snapshot.Error}})
		c.updateState(func(s *State) { s.Poll = c.poller.State() })
	}
}

// cancelPoll stops any active poll. A completed job whose progress is still shown is hidden straight away.
func (c *Controller) cancelPoll() bool {
	videoID, hiding := c.poller.VideoID(), c.poller.HideC() != nil
	cancelled := c.poller.Cancel()
	if hiding {
		c.publish(ProgressHidden{sessionEvent: c.event(), VideoID: videoID})
	}
	return cancelled
}

func (c *Controller) shutdown() {
	c.poller.Reset()
	if c.pendingLookup != nil {
		_ = c.pendingLookup.cmd.RespondError(tubefetch.ErrClosed)
		c.pendingLookup = nil
	}
	if c.pendingStart != nil {
		_ = c.pendingStart.cmd.RespondError(tubefetch.ErrClosed)
		c.pendingStart = nil
	}
	c.log.Debug("stopped")
}

func (c *Controller) event() sessionEvent {
	return sessionEvent{sessionID: c.id}
}

func (c *Controller) report(err error) {
	c.publish(ErrorReported{sessionEvent: c.event(), Err: err})
}

func (c *Controller) publish(event Event) {
	c.events.Send(event)
}

// updateState applies f to the session, publishing SessionUpdated if anything changed.
func (c *Controller) updateState(f func(s *State)) {
	oldState := c.state
	f(&c.state)
	if changes, err := diff.Diff(oldState, c.state); err != nil || len(changes) > 0 {
		c.publish(SessionUpdated{sessionEvent: c.event(), OldState: oldState, NewState: c.state})
	}
}
