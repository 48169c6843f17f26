// Package clip derives clip destinations and performs the idempotent
// per-row fetch of audio clips through an external converter.
package clip

import (
	"errors"
	"fmt"
	"strings"
)

// Duration is the fixed length, in seconds, of every extracted clip. The end
// of a clip's window is always its row's start time plus Duration.
const Duration = 10.0

// Format selects both the converter's target audio codec and the artifact's
// file extension.
type Format string

// Supported output formats.
const (
	FormatVorbis Format = "vorbis"
	FormatMP3    Format = "mp3"
	FormatM4A    Format = "m4a"
	FormatWAV    Format = "wav"
)

// DefaultFormat is used when no format is requested.
const DefaultFormat = FormatVorbis

// ErrUnknownFormat indicates a format name outside the supported set.
var ErrUnknownFormat = errors.New("unknown audio format")

// extensions maps each format to its file extension. Vorbis audio lives in
// an Ogg container, hence the one non-identity entry.
var extensions = map[Format]string{
	FormatVorbis: "ogg",
	FormatMP3:    "mp3",
	FormatM4A:    "m4a",
	FormatWAV:    "wav",
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := extensions[f]; !ok {
		return "", fmt.Errorf("%w: %q (supported: vorbis, mp3, m4a, wav)", ErrUnknownFormat, s)
	}
	return f, nil
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string { return extensions[f] }

func (f Format) String() string { return string(f) }

// Quality is the converter quality level: 0 is best, 10 is worst.
type Quality int

// Quality bounds and default.
const (
	QualityBest    Quality = 0
	QualityDefault Quality = 5
	QualityWorst   Quality = 10
)

// ClampQuality constrains a quality level to the valid range.
func ClampQuality(q int) Quality {
	if q < int(QualityBest) {
		return QualityBest
	}
	if q > int(QualityWorst) {
		return QualityWorst
	}
	return Quality(q)
}
