package service

import (
	"context"
	"log"
	"sync"

	"pact/ai"
	"pact/anki"
	"pact/session"
)

// ExportService экспортирует клип закладки с транскрипцией в Anki
type ExportService struct {
	sessions  *session.Manager
	extractor ClipExtractor
	client    *anki.Client

	mu     sync.Mutex
	active bool

	// Callbacks for UI updates
	OnExported func(index int)
	OnError    func(index int, err error)
}

// NewExportService создаёт сервис экспорта
func NewExportService(sessions *session.Manager, extractor ClipExtractor, client *anki.Client) *ExportService {
	return &ExportService{
		sessions:  sessions,
		extractor: extractor,
		client:    client,
	}
}

// ExportBookmark экспортирует клип закладки index в фоне.
// Тег карточки строится из имени файла песни.
func (e *ExportService) ExportBookmark(index int) error {
	s := e.sessions.Current()
	if s == nil {
		return session.ErrNotLoaded
	}

	startMs, endMs, err := s.ClipBounds(index)
	if err != nil {
		return err
	}
	if err := s.CheckSource(); err != nil {
		return err
	}

	b, err := s.Bookmark(index)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		return ai.ErrAlreadyRunning
	}
	e.active = true
	e.mu.Unlock()

	tag := anki.TagFromFilename(s.MusicFile)
	transcription := b.Transcription

	go func() {
		defer func() {
			e.mu.Lock()
			e.active = false
			e.mu.Unlock()
		}()

		clip, err := e.extractor.Extract(context.Background(), s.MusicFile, startMs, endMs)
		if err != nil {
			e.reportError(index, err)
			return
		}

		if err := e.client.ExportClip(clip, transcription, tag); err != nil {
			e.reportError(index, err)
			return
		}

		log.Printf("ExportService: bookmark %d exported (tag=%s)", index, tag)
		if e.OnExported != nil {
			e.OnExported(index)
		}
	}()

	return nil
}

func (e *ExportService) reportError(index int, err error) {
	log.Printf("ExportService: bookmark %d: %v", index, err)
	if e.OnError != nil {
		e.OnError(index, err)
	}
}
