// Package service оркестрирует длинные операции движка: извлечение клипа,
// транскрипцию и экспорт. Вся работа идёт в фоне, вызывающий поток
// (событийный цикл редактора) никогда не блокируется.
package service

import (
	"context"
	"log"
	"sync"

	"pact/ai"
	"pact/audio"
	"pact/session"
)

// ClipExtractor извлекает декодированный фрагмент песни (audio.Extractor)
type ClipExtractor interface {
	Extract(ctx context.Context, sourcePath string, startMs, endMs int64) (*audio.Segment, error)
}

// TranscriptionService транскрибирует клип закладки: извлекает фрагмент,
// прогоняет через стратегию и вклеивает результат в полную транскрипцию.
type TranscriptionService struct {
	sessions  *session.Manager
	extractor ClipExtractor
	strategy  ai.Strategy

	mu     sync.Mutex
	active bool
	cancel context.CancelFunc

	// Callbacks for UI updates
	OnProgress    func(index int, percent int)
	OnTranscribed func(index int, text string)
	OnError       func(index int, err error)
}

// NewTranscriptionService создаёт сервис транскрипции
func NewTranscriptionService(sessions *session.Manager, extractor ClipExtractor, strategy ai.Strategy) *TranscriptionService {
	return &TranscriptionService{
		sessions:  sessions,
		extractor: extractor,
		strategy:  strategy,
	}
}

// TranscribeBookmark запускает транскрипцию клипа закладки index.
// Возвращается сразу; извлечение и распознавание идут в фоне,
// результат приходит через OnTranscribed/OnError.
func (t *TranscriptionService) TranscribeBookmark(index int) error {
	s := t.sessions.Current()
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

	ctx, cancel := context.WithCancel(context.Background())

	t.mu.Lock()
	if t.active {
		t.mu.Unlock()
		cancel()
		return ai.ErrAlreadyRunning
	}
	t.active = true
	t.cancel = cancel
	t.mu.Unlock()

	go t.run(ctx, s.MusicFile, index, startMs, endMs)
	return nil
}

func (t *TranscriptionService) run(ctx context.Context, musicFile string, index int, startMs, endMs int64) {
	// Извлечение - блокирующий subprocess, поэтому мы уже в фоне
	clip, err := t.extractor.Extract(ctx, musicFile, startMs, endMs)
	if ctx.Err() != nil {
		// Отменено через Stop: никаких коллбеков
		t.finish()
		return
	}
	if err != nil {
		t.finish()
		t.reportError(index, err)
		return
	}

	log.Printf("TranscriptionService: bookmark %d clip %s, strategy=%s",
		index, session.IntervalString(startMs, endMs, "n/a"), t.strategy.Name())

	err = t.strategy.Start(clip, ai.Callbacks{
		OnProgress: func(percent int) {
			if t.OnProgress != nil {
				t.OnProgress(index, percent)
			}
		},
		OnFinished: func(text string) {
			t.finish()

			merged, err := t.sessions.MergeClipTranscription(index, text)
			if err != nil {
				t.reportError(index, err)
				return
			}
			if t.OnTranscribed != nil {
				t.OnTranscribed(index, merged)
			}
		},
		OnError: func(err error) {
			t.finish()
			t.reportError(index, err)
		},
	})
	if err != nil {
		t.finish()
		t.reportError(index, err)
	}
}

// Stop отменяет текущую транскрипцию, включая ещё идущее извлечение
// клипа. Безопасно вызывать в любой момент.
func (t *TranscriptionService) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	t.strategy.Stop()
	t.finish()
}

// IsActive возвращает true пока транскрипция идёт
func (t *TranscriptionService) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *TranscriptionService) finish() {
	t.mu.Lock()
	t.active = false
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (t *TranscriptionService) reportError(index int, err error) {
	log.Printf("TranscriptionService: bookmark %d: %v", index, err)
	if t.OnError != nil {
		t.OnError(index, err)
	}
}
