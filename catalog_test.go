package tubefetch

import (
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestOrganize(t *testing.T) {
	assert := assert_.New(t)

	formats := []FormatOption{
		{Kind: FormatVideo, Quality: "720p (mp4)", ID: "22"},
		{Kind: FormatAudio, Quality: "medium audio (m4a)", ID: "140"},
		{Kind: "subtitles", Quality: "en", ID: "en"},
		{Kind: FormatVideo, Quality: "1080p video (webm)", ID: "248"},
		{Kind: FormatAudio, Quality: "low audio (webm)", ID: "249"},
		{Kind: "", ID: "blank"},
	}
	c := Organize(formats)

	assert.Equal([]string{"22", "248"}, ids(c.Video))
	assert.Equal([]string{"140", "249"}, ids(c.Audio))
	assert.Equal(4, c.Len())
	assert.Equal([]string{"22", "248", "140", "249"}, ids(c.All()))

	// Every known-kind input appears exactly once, unknown kinds vanish
	seen := map[string]int{}
	for _, f := range c.All() {
		seen[f.ID]++
	}
	for _, f := range formats {
		if f.Kind.IsKnown() {
			assert.Equal(1, seen[f.ID], f.ID)
		} else {
			assert.Equal(0, seen[f.ID], f.ID)
		}
	}
}

func TestOrganize_Empty(t *testing.T) {
	assert := assert_.New(t)
	c := Organize(nil)
	assert.Equal(0, c.Len())
	assert.Empty(c.All())
	_, ok := c.Find("22")
	assert.False(ok)
}

func TestCatalog_Find(t *testing.T) {
	assert := assert_.New(t)
	c := Organize([]FormatOption{
		{Kind: FormatVideo, ID: "22", Quality: "720p (mp4)"},
		{Kind: FormatAudio, ID: "140", Quality: "medium audio (m4a)"},
	})
	f, ok := c.Find("140")
	assert.True(ok)
	assert.Equal(FormatAudio, f.Kind)
	_, ok = c.Find("999")
	assert.False(ok)
}

func ids(formats []FormatOption) []string {
	var res []string
	for _, f := range formats {
		res = append(res, f.ID)
	}
	return res
}
