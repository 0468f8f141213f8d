package audio

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Extractor извлекает короткие фрагменты из длинного MP3 файла.
// Вместо декодирования всего файла: ffmpeg перематывает к началу клипа и
// копирует сжатый поток без перекодирования (acodec copy) во временный файл,
// после чего декодируется только этот короткий файл.
type Extractor struct {
	// FFmpegPath путь к бинарнику ffmpeg (по умолчанию "ffmpeg" из PATH)
	FFmpegPath string
}

// NewExtractor создаёт экстрактор с настройками по умолчанию
func NewExtractor() *Extractor {
	return &Extractor{FFmpegPath: "ffmpeg"}
}

// Extract возвращает декодированный фрагмент [startMs, endMs) файла sourcePath.
// Требуется startMs < endMs. Временный файл транскодера удаляется на всех
// путях выхода, включая ошибочные. Ошибки ffmpeg не ретраятся: детерминированный
// транскод почти никогда не чинится повтором.
func (e *Extractor) Extract(ctx context.Context, sourcePath string, startMs, endMs int64) (*Segment, error) {
	if startMs < 0 || startMs >= endMs {
		return nil, &InvalidRangeError{StartMs: startMs, EndMs: endMs}
	}
	if _, err := os.Stat(sourcePath); os.IsNotExist(err) {
		return nil, &MissingSourceError{Path: sourcePath}
	}

	tmp, err := os.CreateTemp("", "pact-clip-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := e.runFFmpeg(ctx, sourcePath, tmpPath, startMs, endMs); err != nil {
		return nil, err
	}

	reader, err := NewMP3Reader(tmpPath)
	if err != nil {
		return nil, &ExtractionError{Output: "transcoder produced unreadable output", Err: err}
	}
	defer reader.Close()

	samples, err := reader.ReadAllMono()
	if err != nil {
		return nil, &ExtractionError{Output: "failed to decode extracted clip", Err: err}
	}

	log.Printf("Extractor: %s [%s - %s] -> %d samples @ %dHz",
		sourcePath, msToSeconds(startMs), msToSeconds(endMs), len(samples), reader.SampleRate())

	return &Segment{Samples: samples, SampleRate: reader.SampleRate()}, nil
}

// runFFmpeg запускает внешний транскодер: seek + stream copy.
// vsync vfr нужен для корректных таймстемпов фреймов при copy,
// loglevel error глушит болтливый вывод ffmpeg.
func (e *Extractor) runFFmpeg(ctx context.Context, src, dst string, startMs, endMs int64) error {
	bin := e.FFmpegPath
	if bin == "" {
		bin = "ffmpeg"
	}

	args := []string{
		"-ss", msToSeconds(startMs),
		"-t", msToSeconds(endMs - startMs),
		"-i", src,
		"-acodec", "copy",
		"-vsync", "vfr",
		"-loglevel", "error",
		"-y",
		dst,
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	started := time.Now()
	if err := cmd.Run(); err != nil {
		return &ExtractionError{Output: strings.TrimSpace(stderr.String()), Err: err}
	}
	log.Printf("Extractor: ffmpeg copy took %v", time.Since(started))
	return nil
}

func msToSeconds(ms int64) string {
	return fmt.Sprintf("%.3f", float64(ms)/1000.0)
}
