package session

import (
	"errors"
	"fmt"
	"os"

	"pact/audio"
)

// ErrNotLoaded операции с закладками до загрузки песни
var ErrNotLoaded = errors.New("no song loaded")

// Bookmark отметка пользователя внутри песни: позиция, опциональные
// границы клипа и опциональная транскрипция.
// Транскрипция может содержать литеральные скобки из слияния
// (см. MergeTranscription) - это данные, не синтаксис.
type Bookmark struct {
	PositionMs int64 `json:"position_ms"`
	// ClipBoundsMs границы клипа [start, end) в миллисекундах;
	// nil означает "вся песня"
	ClipBoundsMs  []int64 `json:"clip_bounds_ms,omitempty"`
	Transcription string  `json:"transcription,omitempty"`
}

// Session состояние редактирования одной песни: ссылки на исходные файлы
// и упорядоченная последовательность закладок.
//
// Инвариант: Bookmarks непуст, Bookmarks[0] - закладка "вся песня" с
// границами (0, DurationMs). Она создаётся при загрузке песни; её нельзя
// ни удалить, ни сузить.
type Session struct {
	MusicFile         string      `json:"music_file"`
	TranscriptionFile string      `json:"transcription_file,omitempty"`
	DurationMs        int64       `json:"duration_ms"`
	Bookmarks         []*Bookmark `json:"bookmarks"`
}

// NewSession создаёт сессию для песни длительностью durationMs,
// сразу вставляя закладку "вся песня"
func NewSession(musicFile string, durationMs int64) *Session {
	return &Session{
		MusicFile:  musicFile,
		DurationMs: durationMs,
		Bookmarks: []*Bookmark{
			{PositionMs: 0, ClipBoundsMs: []int64{0, durationMs}},
		},
	}
}

// AddBookmark добавляет закладку в позиции positionMs и возвращает её индекс
func (s *Session) AddBookmark(positionMs int64) int {
	if positionMs < 0 {
		positionMs = 0
	}
	s.Bookmarks = append(s.Bookmarks, &Bookmark{PositionMs: positionMs})
	return len(s.Bookmarks) - 1
}

// RemoveBookmark удаляет закладку. Закладку "вся песня" удалить нельзя.
func (s *Session) RemoveBookmark(index int) error {
	if index <= 0 || index >= len(s.Bookmarks) {
		if index == 0 && len(s.Bookmarks) > 0 {
			return fmt.Errorf("whole-song bookmark cannot be removed")
		}
		return fmt.Errorf("bookmark index out of range: %d", index)
	}
	s.Bookmarks = append(s.Bookmarks[:index], s.Bookmarks[index+1:]...)
	return nil
}

// Bookmark возвращает закладку по индексу
func (s *Session) Bookmark(index int) (*Bookmark, error) {
	if index < 0 || index >= len(s.Bookmarks) {
		return nil, fmt.Errorf("bookmark index out of range: %d", index)
	}
	return s.Bookmarks[index], nil
}

// IsWholeSong возвращает true для закладки "вся песня"
func (s *Session) IsWholeSong(index int) bool {
	return index == 0
}

// ClipBounds возвращает действующие границы клипа закладки.
// Для закладки без границ это вся песня.
func (s *Session) ClipBounds(index int) (startMs, endMs int64, err error) {
	b, err := s.Bookmark(index)
	if err != nil {
		return 0, 0, err
	}
	if len(b.ClipBoundsMs) != 2 {
		return 0, s.DurationMs, nil
	}
	return b.ClipBoundsMs[0], b.ClipBoundsMs[1], nil
}

// SetClipStart устанавливает начало клипа (с клэмпом в [0, DurationMs]).
// Конец по умолчанию - конец песни.
func (s *Session) SetClipStart(index int, ms int64) error {
	if s.IsWholeSong(index) {
		return fmt.Errorf("whole-song bookmark bounds cannot be changed")
	}
	b, err := s.Bookmark(index)
	if err != nil {
		return err
	}

	start := s.clamp(ms)
	end := s.DurationMs
	if len(b.ClipBoundsMs) == 2 {
		end = b.ClipBoundsMs[1]
	}
	if start >= end {
		return &audio.InvalidRangeError{StartMs: start, EndMs: end}
	}
	b.ClipBoundsMs = []int64{start, end}
	return nil
}

// SetClipEnd устанавливает конец клипа (с клэмпом в [0, DurationMs]).
// Начало по умолчанию - начало песни.
func (s *Session) SetClipEnd(index int, ms int64) error {
	if s.IsWholeSong(index) {
		return fmt.Errorf("whole-song bookmark bounds cannot be changed")
	}
	b, err := s.Bookmark(index)
	if err != nil {
		return err
	}

	end := s.clamp(ms)
	var start int64
	if len(b.ClipBoundsMs) == 2 {
		start = b.ClipBoundsMs[0]
	}
	if start >= end {
		return &audio.InvalidRangeError{StartMs: start, EndMs: end}
	}
	b.ClipBoundsMs = []int64{start, end}
	return nil
}

// SetTranscription сохраняет текст транскрипции закладки
func (s *Session) SetTranscription(index int, text string) error {
	b, err := s.Bookmark(index)
	if err != nil {
		return err
	}
	b.Transcription = text
	return nil
}

// CheckSource проверяет что исходный файл песни существует.
// Вызывается при первом использовании, а не при загрузке сессии:
// сессию с переехавшим файлом можно открыть и починить.
func (s *Session) CheckSource() error {
	if _, err := os.Stat(s.MusicFile); os.IsNotExist(err) {
		return &audio.MissingSourceError{Path: s.MusicFile}
	}
	return nil
}

func (s *Session) clamp(ms int64) int64 {
	if ms < 0 {
		return 0
	}
	if ms > s.DurationMs {
		return s.DurationMs
	}
	return ms
}
