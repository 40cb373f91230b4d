package tubefetch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewBackendError(t *testing.T) {
	assert := assert_.New(t)
	assert.Equal("Failed to fetch video information", NewBackendError(OpVideoInfo, "").Error())
	assert.Equal("Failed to start download", NewBackendError(OpDownload, "").Error())
	assert.Equal("Video unavailable", NewBackendError(OpVideoInfo, "Video unavailable").Error())
}

func TestIsUnreachable(t *testing.T) {
	assert := assert_.New(t)
	unreachable := &UnreachableError{Op: OpVideoInfo, Err: errors.New("connection refused")}
	assert.True(IsUnreachable(unreachable))
	assert.True(IsUnreachable(fmt.Errorf("lookup failed: %w", unreachable)))
	assert.False(IsUnreachable(NewBackendError(OpVideoInfo, "")))
	assert.False(IsUnreachable(nil))
}

func TestHint(t *testing.T) {
	assert := assert_.New(t)
	assert.Equal("", Hint(nil))
	assert.Equal("Network error. Please check if the backend server is running.",
		Hint(&UnreachableError{Op: OpDownload, Err: errors.New("EOF")}))
	assert.Equal("Private video", Hint(fmt.Errorf("wrapped: %w", NewBackendError(OpVideoInfo, "Private video"))))
	_, err := ParseVideoURL("")
	assert.Equal("please enter a YouTube URL", Hint(err))
	assert.Equal("job failed", Hint(&JobError{VideoID: "dQw4w9WgXcQ", Message: "job failed"}))
}

func TestLogger(t *testing.T) {
	assert := assert_.New(t)
	assert.Same(zap.L(), Logger(context.Background()))
	logger := zap.NewNop()
	assert.Same(logger, Logger(WithLogger(context.Background(), logger)))
}
