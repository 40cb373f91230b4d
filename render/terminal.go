package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/alanbriolat/tubefetch"
	"github.com/alanbriolat/tubefetch/internal/sync_"
)

const progressBarWidth = 30

// Terminal renders to a text stream, with a progress bar for the running download. It is not safe for concurrent
// use; drive it from a single Pump.
type Terminal struct {
	out   io.Writer
	bar   *progressbar.ProgressBar
	shown sync_.Event
	done  sync_.Event
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// MetadataShown is closed once a lookup result has been printed.
func (t *Terminal) MetadataShown() <-chan struct{} {
	return t.shown.Wait()
}

// Done is closed once a download has completed or failed.
func (t *Terminal) Done() <-chan struct{} {
	return t.done.Wait()
}

func (t *Terminal) Loading(loading bool) {
	if loading {
		fmt.Fprintln(t.out, "Fetching video information...")
	}
}

func (t *Terminal) ShowMetadata(videoID tubefetch.VideoID, metadata tubefetch.VideoMetadata, catalog tubefetch.Catalog) {
	fmt.Fprintf(t.out, "%s [%s]\n", metadata.Title, videoID)
	fmt.Fprintf(t.out, "  %s | %s | %s views | %s\n",
		metadata.Channel, metadata.Duration, FormatViews(metadata.ViewCount), FormatDate(metadata.UploadDate))
	if metadata.Thumbnail != "" {
		fmt.Fprintf(t.out, "  %s\n", metadata.Thumbnail)
	}
	t.printFormats("Video", catalog.Video)
	t.printFormats("Audio", catalog.Audio)
	if catalog.Len() == 0 {
		fmt.Fprintln(t.out, "No downloadable formats")
	}
	t.shown.Set()
}

func (t *Terminal) printFormats(heading string, formats []tubefetch.FormatOption) {
	if len(formats) == 0 {
		return
	}
	fmt.Fprintf(t.out, "%s formats:\n", heading)
	for _, f := range formats {
		fmt.Fprintf(t.out, "  [%s] %s\n", f.ID, FormatOptionLabel(f))
	}
}

func (t *Terminal) ShowError(err error) {
	t.endBar()
	fmt.Fprintf(t.out, "Error: %s\n", tubefetch.Hint(err))
}

func (t *Terminal) ShowDownloadStarted(videoID tubefetch.VideoID, format tubefetch.FormatOption) {
	t.endBar()
	fmt.Fprintf(t.out, "Downloading %s as %s\n", videoID, format.Quality)
	t.bar = t.newBar()
}

func (t *Terminal) newBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionSetDescription(StatusText(false)),
		progressbar.OptionSetWidth(progressBarWidth),
		progressbar.OptionSetPredictTime(false),
	)
}

func (t *Terminal) ShowProgress(videoID tubefetch.VideoID, snapshot tubefetch.ProgressSnapshot, complete bool) {
	if t.bar == nil {
		t.bar = t.newBar()
	}
	percent := snapshot.Percent.UnwrapOr(0)
	t.bar.Describe(describeProgress(snapshot, complete))
	_ = t.bar.Set(int(math.Min(math.Max(percent, 0), 100)))
	if complete {
		_ = t.bar.Finish()
		fmt.Fprintln(t.out)
		t.bar = nil
		t.done.Set()
	}
}

func describeProgress(snapshot tubefetch.ProgressSnapshot, complete bool) string {
	parts := []string{StatusText(complete), FormatPercent(snapshot.Percent.UnwrapOr(0))}
	if speed, ok := snapshot.Speed.Get(); ok && speed > 0 {
		parts = append(parts, "Speed: "+FormatSpeed(speed))
	}
	if eta, ok := snapshot.ETA.Get(); ok && eta > 0 && !complete {
		parts = append(parts, "ETA: "+FormatDuration(eta))
	}
	return strings.Join(parts, " ")
}

func (t *Terminal) ShowJobFailed(err *tubefetch.JobError) {
	t.endBar()
	fmt.Fprintf(t.out, "Error: %s\n", err.Error())
	t.done.Set()
}

func (t *Terminal) HideProgress(videoID tubefetch.VideoID) {
	if t.bar != nil {
		_ = t.bar.Clear()
		t.bar = nil
	}
}

// endBar moves output past an unfinished progress bar.
func (t *Terminal) endBar() {
	if t.bar != nil {
		fmt.Fprintln(t.out)
		t.bar = nil
	}
}
