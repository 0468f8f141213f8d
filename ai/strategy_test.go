package ai

import (
	"errors"
	"sync"
	"testing"
	"time"

	"pact/audio"
)

func testClip() *audio.Segment {
	return &audio.Segment{Samples: make([]float32, 16000), SampleRate: 16000}
}

func TestStubStrategyContract(t *testing.T) {
	s := NewStubStrategy("un perro")
	s.StepDelay = time.Millisecond

	var mu sync.Mutex
	var progress []int
	var finished []string
	done := make(chan struct{})

	err := s.Start(testClip(), Callbacks{
		OnProgress: func(p int) {
			mu.Lock()
			progress = append(progress, p)
			mu.Unlock()
		},
		OnFinished: func(text string) {
			mu.Lock()
			finished = append(finished, text)
			mu.Unlock()
			close(done)
		},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("transcription did not finish")
	}

	mu.Lock()
	defer mu.Unlock()

	if len(finished) != 1 || finished[0] != "un perro" {
		t.Errorf("OnFinished calls = %v, want exactly one with %q", finished, "un perro")
	}
	if len(progress) == 0 {
		t.Fatal("expected progress callbacks")
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Errorf("progress not monotone: %v", progress)
			break
		}
	}
	if last := progress[len(progress)-1]; last != 100 {
		t.Errorf("last progress = %d, want 100", last)
	}
}

func TestStubStrategySecondStartRejected(t *testing.T) {
	s := NewStubStrategy("x")
	s.StepDelay = 20 * time.Millisecond
	defer s.Stop()

	if err := s.Start(testClip(), Callbacks{}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(testClip(), Callbacks{}); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start: got %v, want ErrAlreadyRunning", err)
	}
}

func TestStubStrategyStopSuppressesCallbacks(t *testing.T) {
	s := NewStubStrategy("x")
	s.StepDelay = 5 * time.Millisecond

	var mu sync.Mutex
	stopped := false
	var late []string

	err := s.Start(testClip(), Callbacks{
		OnProgress: func(p int) {
			mu.Lock()
			if stopped {
				late = append(late, "progress")
			}
			mu.Unlock()
		},
		OnFinished: func(string) {
			mu.Lock()
			if stopped {
				late = append(late, "finished")
			}
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	time.Sleep(7 * time.Millisecond)
	s.Stop()
	mu.Lock()
	stopped = true
	mu.Unlock()

	// После возврата Stop запуск мёртв; даём горутине шанс нарушить контракт
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(late) != 0 {
		t.Errorf("callbacks after Stop returned: %v", late)
	}
}

func TestStubStrategyRestartAfterStop(t *testing.T) {
	s := NewStubStrategy("segundo")
	s.StepDelay = time.Millisecond

	if err := s.Start(testClip(), Callbacks{}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
	// Повторный Stop - no-op
	s.Stop()

	done := make(chan string, 1)
	err := s.Start(testClip(), Callbacks{
		OnFinished: func(text string) { done <- text },
	})
	if err != nil {
		t.Fatalf("Start after Stop: %v", err)
	}

	select {
	case text := <-done:
		if text != "segundo" {
			t.Errorf("text = %q, want %q", text, "segundo")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("restarted run did not finish")
	}
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy(Config{Type: StrategyTypeStub, StubText: "hola"})
	if err != nil {
		t.Fatalf("NewStrategy: %v", err)
	}
	if s.Name() != "stub" {
		t.Errorf("Name = %q, want stub", s.Name())
	}

	if _, err := NewStrategy(Config{Type: "nonsense"}); err == nil {
		t.Error("unknown strategy type must fail")
	}

	// sherpa без файлов моделей не создаётся
	if _, err := NewStrategy(Config{Type: StrategyTypeSherpa}); err == nil {
		t.Error("sherpa without model paths must fail")
	}
}
