package ai

import (
	"time"

	"pact/audio"
)

// StubStrategy детерминированная стратегия для тестов и разработки без моделей.
// Выдаёт фиксированные шаги прогресса и заданный текст.
type StubStrategy struct {
	// Text текст, который вернёт OnFinished
	Text string
	// StepDelay пауза между шагами прогресса
	StepDelay time.Duration
	// Steps значения прогресса перед завершением
	Steps []int

	guard runGuard
}

// NewStubStrategy создаёт заглушку с текстом text
func NewStubStrategy(text string) *StubStrategy {
	return &StubStrategy{
		Text:      text,
		StepDelay: 10 * time.Millisecond,
		Steps:     []int{0, 25, 50, 75, 100},
	}
}

// Name возвращает имя стратегии
func (s *StubStrategy) Name() string { return "stub" }

// Start запускает фиктивную транскрипцию в фоне
func (s *StubStrategy) Start(clip *audio.Segment, cb Callbacks) error {
	gen, err := s.guard.begin()
	if err != nil {
		return err
	}

	go func() {
		defer s.guard.end(gen)

		for _, p := range s.Steps {
			if !s.guard.valid(gen) {
				return
			}
			percent := p
			s.guard.deliver(gen, func() {
				if cb.OnProgress != nil {
					cb.OnProgress(percent)
				}
			})
			time.Sleep(s.StepDelay)
		}

		s.guard.deliver(gen, func() {
			if cb.OnFinished != nil {
				cb.OnFinished(s.Text)
			}
		})
	}()

	return nil
}

// Stop отменяет текущий запуск
func (s *StubStrategy) Stop() {
	s.guard.cancel()
}
