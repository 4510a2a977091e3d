package media

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Kind
	}{
		{"mp3", "https://cdn.example.com/lecture.mp3", Audio},
		{"flac uppercase", "https://cdn.example.com/TRACK.FLAC", Audio},
		{"mp4", "https://cdn.example.com/lecture.mp4", Video},
		{"webm", "https://cdn.example.com/clip.webm", Video},
		{"no extension", "https://cdn.example.com/stream/873412", Video},
		{"query after extension", "https://cdn.example.com/clip.mp4?token=abc", Video},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.url))
		})
	}
}

func TestKindFor(t *testing.T) {
	assert.Equal(t, Audio, KindFor("audio", "https://x.example/clip.mp4"))
	assert.Equal(t, Video, KindFor("", "https://x.example/clip.mp4"))
	assert.Equal(t, Audio, KindFor("bogus", "https://x.example/track.ogg"))
}

func TestOutputName(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	got := OutputName("https://cdn.example.com/media/wyklad-07.mp4", Video, "dump", now)
	assert.Equal(t, filepath.Join("dump", "wyklad-07_20260314_092653.mp4"), got)

	got = OutputName("https://cdn.example.com/media/odcinek%2012.mp3", Audio, "dump", now)
	assert.Equal(t, filepath.Join("dump", "odcinek 12_20260314_092653.mp3"), got)
}

func TestOutputNameFallbacks(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	assert.Equal(t, filepath.Join("dump", "video_20260314_092653.mp4"),
		OutputName("https://cdn.example.com/", Video, "dump", now))
	assert.Equal(t, filepath.Join("dump", "audio_20260314_092653.mp3"),
		OutputName("https://cdn.example.com/", Audio, "dump", now))
}
