// Package media decides how a URL's payload is treated downstream and where
// it lands on disk. Pure string work, no network.
package media

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"
)

type Kind string

const (
	Audio Kind = "audio"
	Video Kind = "video"
)

var audioExtensions = []string{".mp3", ".m4a", ".wav", ".aac", ".flac", ".ogg"}
var videoExtensions = []string{".mp4", ".avi", ".mkv", ".mov", ".webm", ".flv"}

// Classify inspects the URL's extension; anything unrecognized is treated as
// video, the common case for the hosts this tool targets.
func Classify(rawURL string) Kind {
	lower := strings.ToLower(rawURL)
	for _, ext := range audioExtensions {
		if strings.HasSuffix(lower, ext) {
			return Audio
		}
	}
	for _, ext := range videoExtensions {
		if strings.HasSuffix(lower, ext) {
			return Video
		}
	}
	return Video
}

// KindFor maps a batch entry's type override onto a Kind, falling back to
// classification when the override is absent or unknown.
func KindFor(override, rawURL string) Kind {
	switch strings.ToLower(override) {
	case string(Audio):
		return Audio
	case string(Video):
		return Video
	default:
		return Classify(rawURL)
	}
}

// OutputName generates a unique timestamped destination inside dir: the URL's
// decoded basename with the timestamp injected before the extension, or a
// generic video_/audio_ name when the URL has no usable basename.
func OutputName(rawURL string, kind Kind, dir string, now time.Time) string {
	timestamp := now.Format("20060102_150405")
	original := filenameFromURL(rawURL)
	var filename string
	if original != "" {
		ext := path.Ext(original)
		name := strings.TrimSuffix(original, ext)
		filename = fmt.Sprintf("%s_%s%s", name, timestamp, ext)
	} else if kind == Audio {
		filename = fmt.Sprintf("audio_%s.mp3", timestamp)
	} else {
		filename = fmt.Sprintf("video_%s.mp4", timestamp)
	}
	return filepath.Join(dir, filename)
}

func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
