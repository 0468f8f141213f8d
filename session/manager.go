package session

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"pact/audio"
)

// Manager владеет текущей сессией редактирования. Одновременно открыта
// максимум одна сессия; загрузка новой песни сбрасывает предыдущую.
type Manager struct {
	mu         sync.Mutex
	session    *Session
	transcript string // полная транскрипция песни (содержимое transcription_file)

	// OnChanged вызывается после каждой мутации модели (для UI слоя)
	OnChanged func(*Session)
}

// NewManager создаёт менеджер без открытой сессии
func NewManager() *Manager {
	return &Manager{}
}

// LoadSong открывает песню: замеряет длительность и создаёт сессию
// с закладкой "вся песня"
func (m *Manager) LoadSong(path string) (*Session, error) {
	durationMs, err := audio.SongDurationMs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load song: %w", err)
	}

	m.mu.Lock()
	m.session = NewSession(path, durationMs)
	m.transcript = ""
	s := m.session
	m.mu.Unlock()

	log.Printf("Manager: loaded song %s (%s)", path, TimeString(durationMs))
	m.notify()
	return s, nil
}

// LoadTranscription загружает полную транскрипцию песни из текстового файла
func (m *Manager) LoadTranscription(path string) error {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return ErrNotLoaded
	}
	m.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read transcription file: %w", err)
	}

	m.mu.Lock()
	m.session.TranscriptionFile = path
	m.transcript = strings.TrimSpace(string(data))
	m.mu.Unlock()

	log.Printf("Manager: loaded transcription %s (%d bytes)", path, len(data))
	m.notify()
	return nil
}

// Current возвращает открытую сессию (nil если песня не загружена)
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Transcript возвращает полную транскрипцию песни ("" если не загружена)
func (m *Manager) Transcript() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transcript
}

// AddBookmark добавляет закладку в текущей сессии
func (m *Manager) AddBookmark(positionMs int64) (int, error) {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return 0, ErrNotLoaded
	}
	index := m.session.AddBookmark(positionMs)
	m.mu.Unlock()

	m.notify()
	return index, nil
}

// RemoveBookmark удаляет закладку (кроме закладки "вся песня")
func (m *Manager) RemoveBookmark(index int) error {
	return m.mutate(func(s *Session) error { return s.RemoveBookmark(index) })
}

// SetClipStart устанавливает начало клипа закладки
func (m *Manager) SetClipStart(index int, ms int64) error {
	return m.mutate(func(s *Session) error { return s.SetClipStart(index, ms) })
}

// SetClipEnd устанавливает конец клипа закладки
func (m *Manager) SetClipEnd(index int, ms int64) error {
	return m.mutate(func(s *Session) error { return s.SetClipEnd(index, ms) })
}

// SetTranscription сохраняет транскрипцию закладки
func (m *Manager) SetTranscription(index int, text string) error {
	return m.mutate(func(s *Session) error { return s.SetTranscription(index, text) })
}

// MergeClipTranscription вклеивает свежую транскрипцию клипа закладки
// в полную транскрипцию песни и сохраняет результат на закладке.
// Возвращает итоговый текст.
func (m *Manager) MergeClipTranscription(index int, text string) (string, error) {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return "", ErrNotLoaded
	}

	startMs, endMs, err := m.session.ClipBounds(index)
	if err != nil {
		m.mu.Unlock()
		return "", err
	}

	merged := MergeTranscription(m.transcript, m.session.DurationMs, startMs, endMs, text)
	if err := m.session.SetTranscription(index, merged); err != nil {
		m.mu.Unlock()
		return "", err
	}
	m.mu.Unlock()

	m.notify()
	return merged, nil
}

// Save сохраняет текущую сессию в файл
func (m *Manager) Save(path string) error {
	m.mu.Lock()
	s := m.session
	m.mu.Unlock()

	if s == nil {
		return ErrNotLoaded
	}
	if err := Save(s, path); err != nil {
		return err
	}
	log.Printf("Manager: session saved to %s", path)
	return nil
}

// Load открывает сессию из файла, включая транскрипцию песни если
// файл транскрипции ещё существует
func (m *Manager) Load(path string) (*Session, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}

	transcript := ""
	if s.TranscriptionFile != "" {
		if data, err := os.ReadFile(s.TranscriptionFile); err == nil {
			transcript = strings.TrimSpace(string(data))
		} else {
			log.Printf("Manager: transcription file unavailable: %v", err)
		}
	}

	m.mu.Lock()
	m.session = s
	m.transcript = transcript
	m.mu.Unlock()

	log.Printf("Manager: session loaded from %s (%d bookmarks)", path, len(s.Bookmarks))
	m.notify()
	return s, nil
}

func (m *Manager) mutate(fn func(*Session) error) error {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return ErrNotLoaded
	}
	err := fn(m.session)
	m.mu.Unlock()

	if err != nil {
		return err
	}
	m.notify()
	return nil
}

func (m *Manager) notify() {
	m.mu.Lock()
	cb := m.OnChanged
	s := m.session
	m.mu.Unlock()

	if cb != nil && s != nil {
		cb(s)
	}
}
