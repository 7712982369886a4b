// Package subtitles loads sidecar subtitle files and finds the cue to show
// at a playback position.
package subtitles

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/asticode/go-astisub"
)

// SidecarExtensions are tried, in order, next to a video file
var SidecarExtensions = []string{".srt", ".vtt", ".ass", ".ssa", ".ttml"}

// ErrNoCues is returned for subtitle files without a single cue
var ErrNoCues = errors.New("subtitle file has no cues")

// Cue is one timed subtitle
type Cue struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Text  string        `json:"text"`
}

// Track is an ordered list of cues
type Track struct {
	Source string
	Cues   []Cue
}

// FindSidecar looks for a subtitle file sharing the video's base name
func FindSidecar(videoPath string) (string, bool) {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	for _, ext := range SidecarExtensions {
		for _, candidate := range []string{base + ext, base + strings.ToUpper(ext)} {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
	}
	return "", false
}

// Load reads a subtitle file, the format is picked from its extension
func Load(path string) (*Track, error) {
	subs, err := astisub.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitles %s: %w", path, err)
	}
	return fromSubtitles(path, subs)
}

// ParseSRT reads SubRip content
func ParseSRT(r io.Reader) (*Track, error) {
	subs, err := astisub.ReadFromSRT(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse srt: %w", err)
	}
	return fromSubtitles("srt", subs)
}

// ParseWebVTT reads WebVTT content
func ParseWebVTT(r io.Reader) (*Track, error) {
	subs, err := astisub.ReadFromWebVTT(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse webvtt: %w", err)
	}
	return fromSubtitles("webvtt", subs)
}

// At returns the cue active at position (seconds). The delay (seconds) is
// added to every cue timestamp: a positive delay shows subtitles later.
func (t *Track) At(position, delay float64) (Cue, bool) {
	if t == nil || math.IsNaN(position) {
		return Cue{}, false
	}
	pos := seconds(position)
	shift := seconds(delay)
	for _, cue := range t.Cues {
		if pos >= cue.Start+shift && pos < cue.End+shift {
			return cue, true
		}
	}
	return Cue{}, false
}

func fromSubtitles(source string, subs *astisub.Subtitles) (*Track, error) {
	track := &Track{Source: source}
	for _, item := range subs.Items {
		if item == nil {
			continue
		}
		var lines []string
		for _, line := range item.Lines {
			var parts []string
			for _, li := range line.Items {
				if text := strings.TrimSpace(li.Text); text != "" {
					parts = append(parts, text)
				}
			}
			if len(parts) > 0 {
				lines = append(lines, strings.Join(parts, " "))
			}
		}
		if len(lines) == 0 || item.EndAt <= item.StartAt {
			continue
		}
		track.Cues = append(track.Cues, Cue{
			Start: item.StartAt,
			End:   item.EndAt,
			Text:  strings.Join(lines, "\n"),
		})
	}
	if len(track.Cues) == 0 {
		return nil, ErrNoCues
	}
	return track, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
