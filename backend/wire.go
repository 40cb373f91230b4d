package backend

import (
	"github.com/alanbriolat/tubefetch"
	"github.com/alanbriolat/tubefetch/generic"
)

type videoInfoRequest struct {
	URL string `json:"url"`
}

type videoInfoResponse struct {
	Success    bool             `json:"success"`
	Error      string           `json:"error,omitempty"`
	Title      string           `json:"title"`
	Channel    string           `json:"channel"`
	Thumbnail  string           `json:"thumbnail"`
	Duration   string           `json:"duration"`
	ViewCount  int64            `json:"view_count"`
	UploadDate string           `json:"upload_date,omitempty"`
	Formats    []formatResponse `json:"formats"`
}

type formatResponse struct {
	Type     string   `json:"type"`
	Quality  string   `json:"quality"`
	FileSize *float64 `json:"filesize,omitempty"`
	FormatID string   `json:"format_id"`
	Ext      string   `json:"ext,omitempty"`
}

type downloadRequest struct {
	URL      string `json:"url"`
	FormatID string `json:"format_id"`
	VideoID  string `json:"video_id"`
}

type downloadResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type progressResponse struct {
	Percent *float64 `json:"percent,omitempty"`
	Speed   *float64 `json:"speed,omitempty"`
	ETA     *float64 `json:"eta,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func (r *videoInfoResponse) lookup() *tubefetch.Lookup {
	lookup := &tubefetch.Lookup{
		Metadata: tubefetch.VideoMetadata{
			Title:      r.Title,
			Channel:    r.Channel,
			Thumbnail:  r.Thumbnail,
			Duration:   r.Duration,
			ViewCount:  r.ViewCount,
			UploadDate: r.UploadDate,
		},
		Formats: make([]tubefetch.FormatOption, 0, len(r.Formats)),
	}
	if lookup.Metadata.ViewCount < 0 {
		lookup.Metadata.ViewCount = 0
	}
	for _, f := range r.Formats {
		var size int64
		if f.FileSize != nil && *f.FileSize > 0 {
			size = int64(*f.FileSize)
		}
		lookup.Formats = append(lookup.Formats, tubefetch.FormatOption{
			Kind:     tubefetch.FormatKind(f.Type),
			Quality:  f.Quality,
			FileSize: size,
			ID:       f.FormatID,
			Ext:      f.Ext,
		})
	}
	return lookup
}

func (r *progressResponse) snapshot() tubefetch.ProgressSnapshot {
	return tubefetch.ProgressSnapshot{
		Percent: generic.FromPointer(r.Percent),
		Speed:   generic.FromPointer(r.Speed),
		ETA:     generic.FromPointer(r.ETA),
		Error:   r.Error,
	}
}
