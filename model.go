package tubefetch

import (
	"github.com/alanbriolat/tubefetch/generic"
)

// VideoID is the canonical 11-character identifier of a YouTube video. Values only ever come from ParseVideoURL or
// ExtractVideoID.
type VideoID string

func (id VideoID) String() string {
	return string(id)
}

// VideoMetadata describes a looked-up video. It is replaced wholesale by every successful lookup, never merged.
type VideoMetadata struct {
	Title     string
	Channel   string
	Thumbnail string
	// Duration is the backend's display string, e.g. "3:33".
	Duration  string
	ViewCount int64
	// UploadDate is the 8-digit YYYYMMDD token, or empty if unknown.
	UploadDate string
}

type FormatKind string

const (
	FormatVideo FormatKind = "video"
	FormatAudio FormatKind = "audio"
)

var knownFormatKinds = generic.NewSet(FormatVideo, FormatAudio)

// IsKnown returns false for kinds this client does not know how to present.
func (k FormatKind) IsKnown() bool {
	return knownFormatKinds.Contains(k)
}

// FormatOption is one downloadable format offered by a lookup. It is only meaningful together with the VideoID of
// the lookup that produced it.
type FormatOption struct {
	Kind    FormatKind
	Quality string
	// FileSize in bytes, 0 if unknown.
	FileSize int64
	ID       string
	Ext      string
}

// Lookup is the successful result of fetching metadata for a URL.
type Lookup struct {
	Metadata VideoMetadata
	Formats  []FormatOption
}

// ProgressSnapshot is the complete state of a download job at one poll. An empty snapshot (no percent, no error)
// means the backend has nothing to report yet.
type ProgressSnapshot struct {
	Percent generic.Option[float64]
	// Speed in bytes per second.
	Speed generic.Option[float64]
	// ETA in seconds.
	ETA   generic.Option[float64]
	Error string
}

// IsFailed returns true if the backend reported the job as failed.
func (p ProgressSnapshot) IsFailed() bool {
	return p.Error != ""
}

// IsComplete returns true if the job has reached 100%.
func (p ProgressSnapshot) IsComplete() bool {
	percent, ok := p.Percent.Get()
	return ok && percent >= 100
}

// HasUpdate returns false if the snapshot carries neither progress nor an error.
func (p ProgressSnapshot) HasUpdate() bool {
	return p.Percent.IsSome() || p.IsFailed()
}
