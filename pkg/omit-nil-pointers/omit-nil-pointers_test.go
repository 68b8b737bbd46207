package omitnilpointers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOmitNilPointers(t *testing.T) {
	currentTime := 42.5
	isPlaying := false
	var videoID *string

	res := OmitNilPointers(map[string]any{
		"current_time":     &currentTime,
		"is_playing":       &isPlaying,
		"current_video_id": videoID,
		"code":             "ABC123",
		"empty":            nil,
	})

	assert.Equal(t, map[string]any{
		"current_time": 42.5,
		"is_playing":   false,
		"code":         "ABC123",
	}, res)
}
