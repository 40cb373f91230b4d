package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/r3labs/diff/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alanbriolat/tubefetch"
	"github.com/alanbriolat/tubefetch/async"
	"github.com/alanbriolat/tubefetch/backend"
	"github.com/alanbriolat/tubefetch/internal/pubsub"
	"github.com/alanbriolat/tubefetch/internal/session"
	"github.com/alanbriolat/tubefetch/render"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{
		Name:      "tubefetch",
		Usage:     "download a YouTube video through a tubefetch backend",
		ArgsUsage: "URL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Value:   tubefetch.DefaultConfig.BackendURL,
				Usage:   "backend API base `URL`",
				EnvVars: []string{"TUBEFETCH_BACKEND"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "download format `ID`, prompted for if not given",
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				Value:   tubefetch.DefaultConfig.PollInterval,
				Usage:   "interval between progress queries",
				EnvVars: []string{"TUBEFETCH_POLL_INTERVAL"},
			},
			&cli.DurationFlag{
				Name:  "hide-delay",
				Value: tubefetch.DefaultConfig.HideDelay,
				Usage: "how long the finished progress bar stays visible",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Value:   tubefetch.DefaultConfig.RequestTimeout,
				Usage:   "timeout for each backend request",
				EnvVars: []string{"TUBEFETCH_TIMEOUT"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log debug output, including every session change",
			},
		},
		Before: func(c *cli.Context) error {
			logger, err := newLogger(c.Bool("debug"))
			if err != nil {
				return err
			}
			zap.RedirectStdLog(logger)
			zap.ReplaceGlobals(logger)
			return nil
		},
		After: func(c *cli.Context) error {
			_ = zap.L().Sync()
			return nil
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one URL", 2)
			}
			config := tubefetch.DefaultConfig
			config.BackendURL = c.String("backend")
			config.PollInterval = c.Duration("poll-interval")
			config.HideDelay = c.Duration("hide-delay")
			config.RequestTimeout = c.Duration("timeout")
			return fetch(tubefetch.WithLogger(ctx, zap.L()), config, c.Args().First(), c.String("format"), c.Bool("debug"))
		},
		HideHelpCommand: true,
	}

	result := async.Run(func() error { return app.Run(os.Args) })

	var err error
	select {
	case err = <-result:
	case <-ctx.Done():
		stop()
		err = <-result
	}
	if err != nil {
		log.Fatal(err)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	// Keep the terminal for the progress bar unless asked
	if !debug {
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("can't initialize zap logger: %w", err)
	}
	return logger, nil
}

func fetch(ctx context.Context, config tubefetch.Config, url string, formatID string, debug bool) error {
	logger := tubefetch.Logger(ctx).Sugar()

	client, err := backend.NewFromConfig(config, backend.WithLogger(tubefetch.Logger(ctx)))
	if err != nil {
		return err
	}
	ses, err := session.New(ctx, config, client)
	if err != nil {
		return err
	}
	defer ses.Close()

	term := render.NewTerminal(os.Stdout)
	events, err := ses.Subscribe()
	if err != nil {
		return err
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		render.Pump(events, term)
	}()
	if debug {
		if err := logSessionChanges(ses, logger, &wg); err != nil {
			return err
		}
	}

	if err := ses.Lookup(ctx, url); err != nil {
		// Already shown by the renderer
		return finish(ses, &wg, cli.Exit("", 1))
	}
	state, err := ses.State(ctx)
	if err != nil {
		return finish(ses, &wg, err)
	}
	if state.Catalog.Len() == 0 {
		return finish(ses, &wg, cli.Exit("", 1))
	}
	if formatID == "" {
		select {
		case <-term.MetadataShown():
		case <-ctx.Done():
			return finish(ses, &wg, ctx.Err())
		}
		if formatID, err = prompt(ctx, os.Stdin, state.Catalog); err != nil {
			return finish(ses, &wg, err)
		}
	}

	if err := ses.SelectFormat(ctx, formatID); err != nil {
		if errors.Is(err, tubefetch.ErrUnknownFormat) {
			return finish(ses, &wg, fmt.Errorf("%q: %w", formatID, err))
		}
		return finish(ses, &wg, cli.Exit("", 1))
	}

	select {
	case <-term.Done():
		// Leave the finished bar up for the hide delay, unless interrupted
		select {
		case <-time.After(config.HideDelay):
		case <-ctx.Done():
		}
	case <-ctx.Done():
		logger.Info("Exiting gracefully...")
	}
	return finish(ses, &wg, nil)
}

// finish closes the session, so that all event consumers drain and exit.
func finish(ses *session.Controller, wg *sync.WaitGroup, err error) error {
	ses.Close()
	wg.Wait()
	return err
}

// logSessionChanges logs the diff of every session change at debug level.
func logSessionChanges(ses *session.Controller, logger *zap.SugaredLogger, wg *sync.WaitGroup) error {
	updates := pubsub.NewChannel[session.Event](pubsub.DefaultSubscriberBufSize)
	if err := ses.AddSubscriber(pubsub.NewFilteredSender[session.Event](updates, func(e session.Event) bool {
		_, ok := e.(session.SessionUpdated)
		return ok
	})); err != nil {
		return err
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for event := range updates.Receive() {
			e := event.(session.SessionUpdated)
			changes, err := diff.Diff(e.OldState, e.NewState)
			if err != nil {
				logger.Errorf("failed to diff old and new session state: %v", err)
				continue
			}
			for _, change := range changes {
				logger.Debugf("%v: %#v -> %#v", change.Path, change.From, change.To)
			}
		}
	}()
	return nil
}

// prompt asks for a format ID on in until one from catalog is entered.
func prompt(ctx context.Context, in io.Reader, catalog tubefetch.Catalog) (string, error) {
	selected := async.Run(func() string {
		scanner := bufio.NewScanner(in)
		fmt.Print("Format: ")
		for scanner.Scan() {
			formatID := strings.TrimSpace(scanner.Text())
			if _, ok := catalog.Find(formatID); ok {
				return formatID
			}
			fmt.Print("Unknown format, try again: ")
		}
		return ""
	})
	select {
	case formatID := <-selected:
		if formatID == "" {
			return "", errors.New("no format selected")
		}
		return formatID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
