package audio

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestExtractInvalidRange(t *testing.T) {
	e := NewExtractor()

	cases := []struct {
		name  string
		start int64
		end   int64
	}{
		{"NegativeStart", -100, 1000},
		{"EmptyRange", 1000, 1000},
		{"InvertedRange", 2000, 1000},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := e.Extract(context.Background(), "song.mp3", c.start, c.end)
			var rangeErr *InvalidRangeError
			if !errors.As(err, &rangeErr) {
				t.Errorf("expected InvalidRangeError, got %v", err)
			}
		})
	}
}

func TestExtractMissingSource(t *testing.T) {
	e := NewExtractor()

	path := filepath.Join(t.TempDir(), "gone.mp3")
	_, err := e.Extract(context.Background(), path, 0, 1000)

	var missing *MissingSourceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSourceError, got %v", err)
	}
	if missing.Path != path {
		t.Errorf("error path = %q, want %q", missing.Path, path)
	}
}

func TestExtractRealFile(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skipf("ffmpeg not installed: %v", err)
	}
	src := "testdata/sample.mp3"
	if _, err := NewMP3Reader(src); err != nil {
		t.Skipf("no test audio at %s: %v", src, err)
	}

	e := NewExtractor()
	clip, err := e.Extract(context.Background(), src, 500, 2500)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if clip.SampleRate <= 0 {
		t.Errorf("sample rate = %d", clip.SampleRate)
	}
	if len(clip.Samples) == 0 {
		t.Fatal("empty clip")
	}
	// acodec copy режет по границам фреймов, допускаем слабину в полсекунды
	dur := clip.DurationMs()
	if dur < 1500 || dur > 2500 {
		t.Errorf("clip duration = %dms, want ~2000ms", dur)
	}
}

func TestResampleLinear(t *testing.T) {
	src := []float32{0, 1, 0, -1, 0, 1, 0, -1}

	t.Run("SameRate", func(t *testing.T) {
		got := ResampleLinear(src, 16000, 16000)
		if len(got) != len(src) {
			t.Errorf("len = %d, want %d", len(got), len(src))
		}
	})

	t.Run("Downsample", func(t *testing.T) {
		got := ResampleLinear(src, 32000, 16000)
		if len(got) != 4 {
			t.Errorf("len = %d, want 4", len(got))
		}
	})

	t.Run("Upsample", func(t *testing.T) {
		got := ResampleLinear(src, 16000, 32000)
		if len(got) != 16 {
			t.Errorf("len = %d, want 16", len(got))
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if got := ResampleLinear(nil, 44100, 16000); len(got) != 0 {
			t.Errorf("expected empty result, got %v", got)
		}
	})
}
