package render

import (
	"fmt"
	"math"
	"strconv"

	"github.com/alanbriolat/tubefetch"
)

const (
	unknownSize = "Unknown size"
	unknownDate = "Unknown date"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatViews abbreviates a view count: 1500000 is "1.5M", 2500 is "2.5K".
func FormatViews(views int64) string {
	switch {
	case views >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(views)/1_000_000)
	case views >= 1_000:
		return fmt.Sprintf("%.1fK", float64(views)/1_000)
	default:
		return strconv.FormatInt(views, 10)
	}
}

// FormatSize renders a byte count in the largest unit (up to GB) it is at least 1 of, with at most 2 decimals.
func FormatSize(bytes float64) string {
	if bytes <= 0 || math.IsNaN(bytes) || math.IsInf(bytes, 0) {
		return unknownSize
	}
	i := 0
	for i < len(sizeUnits)-1 && bytes >= math.Pow(1024, float64(i+1)) {
		i++
	}
	value := math.Round(bytes/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
}

func FormatSpeed(bytesPerSecond float64) string {
	return FormatSize(bytesPerSecond) + "/s"
}

// FormatDuration renders seconds as "1h 2m 3s", leaving out leading zero components.
func FormatDuration(seconds float64) string {
	total := int64(math.Round(math.Max(seconds, 0)))
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// FormatDate turns a YYYYMMDD token into YYYY-MM-DD.
func FormatDate(token string) string {
	if len(token) != 8 {
		return unknownDate
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return unknownDate
		}
	}
	return token[0:4] + "-" + token[4:6] + "-" + token[6:8]
}

// FormatPercent renders a percentage with only the decimals it has, e.g. "40%" or "42.5%".
func FormatPercent(percent float64) string {
	return strconv.FormatFloat(percent, 'f', -1, 64) + "%"
}

// FormatOptionLabel is how a format is offered for selection.
func FormatOptionLabel(f tubefetch.FormatOption) string {
	return fmt.Sprintf("%s - %s", f.Quality, FormatSize(float64(f.FileSize)))
}

// StatusText is the progress status line for a snapshot.
func StatusText(complete bool) string {
	if complete {
		return "Download Complete!"
	}
	return "Downloading..."
}
