package ai

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"

	"pact/audio"
)

const (
	// Whisper модели ожидают 16kHz mono
	whisperSampleRate = 16000
	// Офлайн whisper декодирует окна до 30 секунд; режем с запасом
	windowSeconds = 25
)

// detectBestProvider определяет лучший ONNX provider для текущей платформы
func detectBestProvider() string {
	if runtime.GOOS == "darwin" && runtime.GOARCH == "arm64" {
		return "coreml"
	}
	return "cpu"
}

// SherpaStrategy транскрибирует клипы офлайн Whisper моделью через sherpa-onnx.
// Клип режется на окна; отмена проверяется между окнами (кооперативно),
// прогресс = доля обработанных окон.
type SherpaStrategy struct {
	config     Config
	recognizer *sherpa.OfflineRecognizer
	guard      runGuard
}

// NewSherpaStrategy создаёт стратегию на базе sherpa-onnx
func NewSherpaStrategy(cfg Config) (*SherpaStrategy, error) {
	for _, p := range []string{cfg.EncoderPath, cfg.DecoderPath, cfg.TokensPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return nil, fmt.Errorf("model file not found: %s", p)
		}
	}

	provider := cfg.Provider
	if provider == "auto" || provider == "" {
		provider = detectBestProvider()
	}
	numThreads := cfg.NumThreads
	if numThreads <= 0 {
		numThreads = 4
	}

	sherpaConfig := &sherpa.OfflineRecognizerConfig{
		FeatConfig: sherpa.FeatureConfig{
			SampleRate: whisperSampleRate,
			FeatureDim: 80,
		},
		ModelConfig: sherpa.OfflineModelConfig{
			Whisper: sherpa.OfflineWhisperModelConfig{
				Encoder:  cfg.EncoderPath,
				Decoder:  cfg.DecoderPath,
				Language: cfg.Language,
				Task:     "transcribe",
			},
			Tokens:     cfg.TokensPath,
			NumThreads: numThreads,
			Debug:      0,
			Provider:   provider,
		},
		DecodingMethod: "greedy_search",
	}

	log.Printf("SherpaStrategy: using provider=%s threads=%d", provider, numThreads)

	recognizer := sherpa.NewOfflineRecognizer(sherpaConfig)
	if recognizer == nil {
		// Fallback на CPU если аппаратный provider не поднялся
		if provider != "cpu" {
			log.Printf("SherpaStrategy: %s provider failed, falling back to CPU", provider)
			sherpaConfig.ModelConfig.Provider = "cpu"
			recognizer = sherpa.NewOfflineRecognizer(sherpaConfig)
		}
		if recognizer == nil {
			return nil, fmt.Errorf("failed to create sherpa-onnx recognizer")
		}
	}

	return &SherpaStrategy{config: cfg, recognizer: recognizer}, nil
}

// Name возвращает имя стратегии (для логирования)
func (s *SherpaStrategy) Name() string { return "sherpa-whisper" }

// Start запускает транскрипцию клипа в фоне
func (s *SherpaStrategy) Start(clip *audio.Segment, cb Callbacks) error {
	if clip == nil || len(clip.Samples) == 0 {
		return fmt.Errorf("empty clip")
	}

	gen, err := s.guard.begin()
	if err != nil {
		return err
	}

	go s.run(gen, clip, cb)
	return nil
}

func (s *SherpaStrategy) run(gen uint64, clip *audio.Segment, cb Callbacks) {
	defer s.guard.end(gen)

	samples := audio.ResampleLinear(clip.Samples, clip.SampleRate, whisperSampleRate)

	windowLen := windowSeconds * whisperSampleRate
	numWindows := (len(samples) + windowLen - 1) / windowLen

	s.guard.deliver(gen, func() {
		if cb.OnProgress != nil {
			cb.OnProgress(0)
		}
	})

	var parts []string
	for w := 0; w < numWindows; w++ {
		if !s.guard.valid(gen) {
			log.Printf("SherpaStrategy: run cancelled at window %d/%d", w, numWindows)
			return
		}

		start := w * windowLen
		end := start + windowLen
		if end > len(samples) {
			end = len(samples)
		}

		text, err := s.decodeWindow(samples[start:end])
		if err != nil {
			s.guard.deliver(gen, func() {
				if cb.OnError != nil {
					cb.OnError(err)
				}
			})
			return
		}
		if text != "" {
			parts = append(parts, text)
		}

		percent := (w + 1) * 100 / numWindows
		s.guard.deliver(gen, func() {
			if cb.OnProgress != nil {
				cb.OnProgress(percent)
			}
		})
	}

	result := strings.TrimSpace(strings.Join(parts, " "))
	s.guard.deliver(gen, func() {
		if cb.OnFinished != nil {
			cb.OnFinished(result)
		}
	})
}

func (s *SherpaStrategy) decodeWindow(samples []float32) (string, error) {
	stream := sherpa.NewOfflineStream(s.recognizer)
	if stream == nil {
		return "", fmt.Errorf("failed to create sherpa stream")
	}
	defer sherpa.DeleteOfflineStream(stream)

	stream.AcceptWaveform(whisperSampleRate, samples)
	s.recognizer.Decode(stream)

	result := stream.GetResult()
	if result == nil {
		return "", fmt.Errorf("sherpa decode returned no result")
	}
	return strings.TrimSpace(result.Text), nil
}

// Stop отменяет текущий запуск (кооперативно, между окнами)
func (s *SherpaStrategy) Stop() {
	s.guard.cancel()
}

// Close освобождает ресурсы распознавателя
func (s *SherpaStrategy) Close() {
	s.Stop()
	if s.recognizer != nil {
		sherpa.DeleteOfflineRecognizer(s.recognizer)
		s.recognizer = nil
	}
}
