package tubefetch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// A urlPattern recognises one URL shape and captures the video ID from it.
type urlPattern struct {
	name string
	re   *regexp.Regexp
}

const (
	urlPrefix = `^(?:https?://)?(?:www\.)?`
	// The ID must not run on into further ID characters, so a 12-character "ID" is rejected rather than truncated.
	videoIDCapture = `([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`
)

var urlPatterns = []urlPattern{
	{name: "watch", re: regexp.MustCompile(urlPrefix + `youtube\.com/watch\?v=` + videoIDCapture)},
	{name: "short", re: regexp.MustCompile(urlPrefix + `youtu\.be/` + videoIDCapture)},
}

var videoIDRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsValid returns true if id has the shape of a video ID.
func (id VideoID) IsValid() bool {
	return videoIDRegexp.MatchString(string(id))
}

// ParseVideoURL validates raw (after trimming whitespace) and extracts its video ID. Any failure is a
// *ValidationError wrapping ErrEmptyURL or ErrInvalidURL.
func ParseVideoURL(raw string) (VideoID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &ValidationError{Input: raw, Err: ErrEmptyURL}
	}
	var result error
	for _, p := range urlPatterns {
		if m := p.re.FindStringSubmatch(trimmed); m != nil {
			return VideoID(m[1]), nil
		}
		result = multierror.Append(result, fmt.Errorf("[%s] no match", p.name))
	}
	return "", &ValidationError{Input: raw, Err: ErrInvalidURL, Reasons: result}
}

// IsVideoURL reports whether ParseVideoURL would accept raw.
func IsVideoURL(raw string) bool {
	_, err := ParseVideoURL(raw)
	return err == nil
}

// ExtractVideoID returns the video ID of raw, or false if it is not a valid video URL. It shares ParseVideoURL's
// patterns, so IsVideoURL(raw) implies a successful extraction of the same ID.
func ExtractVideoID(raw string) (VideoID, bool) {
	id, err := ParseVideoURL(raw)
	return id, err == nil
}
