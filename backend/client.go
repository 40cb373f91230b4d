// Package backend is the HTTP client for the download backend: metadata lookup, job start and job progress.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/alanbriolat/tubefetch"
	"github.com/alanbriolat/tubefetch/generic"
)

// Responses are small JSON documents, anything bigger than this is not a response we understand.
const maxResponseBytes = 1 << 20

var protocols = generic.NewSet("http", "https")

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.SugaredLogger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client, e.g. to set a transport or timeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = l.Sugar().Named("backend")
	}
}

// New creates a Client for the backend rooted at baseURL, e.g. "http://localhost:5000/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if !protocols.Contains(parsedURL.Scheme) {
		return nil, fmt.Errorf("invalid backend URL: unknown URL scheme %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid backend URL: missing host")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     zap.S().Named("backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromConfig creates a Client from config.BackendURL, with config.RequestTimeout applied to the default
// http.Client. Options are applied afterwards.
func NewFromConfig(config tubefetch.Config, opts ...Option) (*Client, error) {
	opts = append([]Option{WithHTTPClient(&http.Client{Timeout: config.RequestTimeout})}, opts...)
	return New(config.BackendURL, opts...)
}

// FetchMetadata looks up rawURL. A failure is either a *tubefetch.BackendError, if the backend answered with
// success=false, or a *tubefetch.UnreachableError.
func (c *Client) FetchMetadata(ctx context.Context, rawURL string) (*tubefetch.Lookup, error) {
	var resp videoInfoResponse
	status, err := c.do(ctx, tubefetch.OpVideoInfo, http.MethodPost, "/video-info", &videoInfoRequest{URL: rawURL}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, c.rejection(tubefetch.OpVideoInfo, status, resp.Error)
	}
	lookup := resp.lookup()
	for _, f := range lookup.Formats {
		if !f.Kind.IsKnown() {
			c.log.Debugw("ignoring format of unknown kind", "format_id", f.ID, "kind", f.Kind)
		}
	}
	return lookup, nil
}

// StartJob asks the backend to download formatID of the video. The job is identified by videoID from then on; the
// backend returns no job ID of its own.
func (c *Client) StartJob(ctx context.Context, rawURL string, formatID string, videoID tubefetch.VideoID) error {
	if videoID == "" {
		return tubefetch.ErrNoActiveVideo
	}
	req := &downloadRequest{URL: rawURL, FormatID: formatID, VideoID: videoID.String()}
	var resp downloadResponse
	status, err := c.do(ctx, tubefetch.OpDownload, http.MethodPost, "/download", req, &resp)
	if err != nil {
		return err
	}
	if !resp.Success || !isSuccessStatus(status) {
		return c.rejection(tubefetch.OpDownload, status, resp.Error)
	}
	c.log.Debugw("download started", "video_id", videoID, "format_id", formatID, "message", resp.Message)
	return nil
}

// QueryProgress fetches the current state of the job for videoID. A job failure is reported in the snapshot, not as
// an error; errors are always *tubefetch.UnreachableError.
func (c *Client) QueryProgress(ctx context.Context, videoID tubefetch.VideoID) (tubefetch.ProgressSnapshot, error) {
	var resp progressResponse
	status, err := c.do(ctx, tubefetch.OpProgress, http.MethodGet, "/progress/"+url.PathEscape(videoID.String()), nil, &resp)
	if err != nil {
		return tubefetch.ProgressSnapshot{}, err
	}
	snapshot := resp.snapshot()
	if !isSuccessStatus(status) && !snapshot.IsFailed() {
		return tubefetch.ProgressSnapshot{}, &tubefetch.UnreachableError{
			Op:  tubefetch.OpProgress,
			Err: fmt.Errorf("unexpected status %d", status),
		}
	}
	return snapshot, nil
}

// rejection turns a success=false response into an error. Without a message, a non-2xx status means we never got a
// real answer (e.g. a proxy error page that happened to be JSON).
func (c *Client) rejection(op string, status int, message string) error {
	if message == "" && !isSuccessStatus(status) {
		return &tubefetch.UnreachableError{Op: op, Err: fmt.Errorf("unexpected status %d", status)}
	}
	return tubefetch.NewBackendError(op, message)
}

// do performs one request, decoding the JSON response body into out. Any failure to get a decodable body is an
// *tubefetch.UnreachableError. The HTTP status is returned for the caller to interpret.
func (c *Client) do(ctx context.Context, op string, method string, path string, in interface{}, out interface{}) (int, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &tubefetch.UnreachableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, &tubefetch.UnreachableError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	c.log.Debugw("backend response", "op", op, "method", method, "path", path, "status", resp.StatusCode, "bytes", len(data))
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, &tubefetch.UnreachableError{
			Op:  op,
			Err: fmt.Errorf("malformed response (status %d): %w", resp.StatusCode, err),
		}
	}
	return resp.StatusCode, nil
}

func isSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
