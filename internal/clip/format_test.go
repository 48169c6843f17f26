package clip

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "vorbis", input: "vorbis", want: FormatVorbis},
		{name: "mp3", input: "mp3", want: FormatMP3},
		{name: "m4a", input: "m4a", want: FormatM4A},
		{name: "wav", input: "wav", want: FormatWAV},
		{name: "uppercase", input: "WAV", want: FormatWAV},
		{name: "surrounding space", input: " mp3 ", want: FormatMP3},
		{name: "unknown", input: "flac", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFormat(%q) error = nil, want error", tt.input)
				}
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		want   string
	}{
		{FormatVorbis, "ogg"},
		{FormatMP3, "mp3"},
		{FormatM4A, "m4a"},
		{FormatWAV, "wav"},
	}

	for _, tt := range tests {
		if got := tt.format.Ext(); got != tt.want {
			t.Errorf("%s.Ext() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestClampQuality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input int
		want  Quality
	}{
		{-3, QualityBest},
		{0, QualityBest},
		{5, QualityDefault},
		{10, QualityWorst},
		{99, QualityWorst},
	}

	for _, tt := range tests {
		if got := ClampQuality(tt.input); got != tt.want {
			t.Errorf("ClampQuality(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
