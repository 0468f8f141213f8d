package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CorruptSessionError файл сессии отсутствует, повреждён или не содержит
// обязательных полей
type CorruptSessionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptSessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt session file %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt session file %s: %s", e.Path, e.Reason)
}

func (e *CorruptSessionError) Unwrap() error { return e.Err }

// Save сохраняет сессию в файл. Запись атомарная: сначала во временный
// файл рядом, потом rename, чтобы параллельный читатель не увидел
// недописанный файл.
func Save(s *Session, path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pact-session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Load восстанавливает сессию из файла. Существование music_file здесь
// не проверяется (см. Session.CheckSource) - это позволяет открыть и
// перепривязать сессию, у которой переехал исходник.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CorruptSessionError{Path: path, Reason: "cannot read", Err: err}
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &CorruptSessionError{Path: path, Reason: "malformed JSON", Err: err}
	}

	if err := validate(&s); err != nil {
		return nil, &CorruptSessionError{Path: path, Reason: err.Error()}
	}

	return &s, nil
}

func validate(s *Session) error {
	if s.MusicFile == "" {
		return fmt.Errorf("missing music_file")
	}
	if s.DurationMs <= 0 {
		return fmt.Errorf("missing or invalid duration_ms")
	}
	if len(s.Bookmarks) == 0 {
		return fmt.Errorf("no bookmarks (whole-song bookmark required)")
	}

	first := s.Bookmarks[0]
	if len(first.ClipBoundsMs) != 2 || first.ClipBoundsMs[0] != 0 || first.ClipBoundsMs[1] != s.DurationMs {
		return fmt.Errorf("first bookmark does not cover the whole song")
	}

	for i, b := range s.Bookmarks {
		if b == nil {
			return fmt.Errorf("bookmark %d is null", i)
		}
		if b.PositionMs < 0 {
			return fmt.Errorf("bookmark %d: negative position", i)
		}
		switch len(b.ClipBoundsMs) {
		case 0:
		case 2:
			if b.ClipBoundsMs[0] >= b.ClipBoundsMs[1] {
				return fmt.Errorf("bookmark %d: empty clip range", i)
			}
		default:
			return fmt.Errorf("bookmark %d: clip_bounds_ms must hold two values", i)
		}
	}
	return nil
}
