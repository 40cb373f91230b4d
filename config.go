package tubefetch

import (
	"time"
)

type Config struct {
	// BackendURL is the base URL that /video-info, /download and /progress/{id} are resolved against.
	BackendURL string
	// RequestTimeout bounds every individual backend request, 0 for no limit.
	RequestTimeout time.Duration
	// PollInterval is the period of the progress polling timer.
	PollInterval time.Duration
	// HideDelay is how long after completion the progress display is hidden.
	HideDelay time.Duration
	// EventBufSize is the buffer size of each event subscription.
	EventBufSize int
}

var DefaultConfig = Config{
	BackendURL:     "http://localhost:5000/api",
	RequestTimeout: 30 * time.Second,
	PollInterval:   time.Second,
	HideDelay:      3 * time.Second,
	EventBufSize:   16,
}
