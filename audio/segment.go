// Package audio отвечает за извлечение, декодирование, кодирование и
// воспроизведение фрагментов песни.
package audio

import "fmt"

// Segment декодированный PCM фрагмент песни (float32, mono).
// Живёт только в памяти: сессия хранит границы клипа, не сами сэмплы.
type Segment struct {
	Samples    []float32
	SampleRate int
}

// DurationMs возвращает длительность фрагмента в миллисекундах
func (s *Segment) DurationMs() int64 {
	if s.SampleRate == 0 {
		return 0
	}
	return int64(len(s.Samples)) * 1000 / int64(s.SampleRate)
}

// InvalidRangeError ошибка диапазона: start >= end или отрицательные границы
type InvalidRangeError struct {
	StartMs int64
	EndMs   int64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid clip range: start=%dms end=%dms", e.StartMs, e.EndMs)
}

// MissingSourceError исходный файл песни не найден на диске
type MissingSourceError struct {
	Path string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("music file not found: %s", e.Path)
}

// ExtractionError внешний транскодер завершился с ошибкой.
// Output содержит диагностику инструмента (stderr).
type ExtractionError struct {
	Output string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("clip extraction failed: %v: %s", e.Err, e.Output)
	}
	return fmt.Sprintf("clip extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
