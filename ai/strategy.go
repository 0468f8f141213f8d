// Package ai предоставляет интерфейс и реализации стратегий транскрипции
package ai

import (
	"errors"
	"fmt"

	"pact/audio"
)

// ErrAlreadyRunning возвращается из Start пока предыдущий запуск не завершён
var ErrAlreadyRunning = errors.New("transcription already running")

// Callbacks коллбеки одного запуска транскрипции.
// Доставка асинхронная: вызывающая сторона сама маршалит обработку
// в свой контекст синхронизации.
type Callbacks struct {
	// OnProgress вызывается ноль или более раз с монотонно
	// неубывающим процентом 0..100
	OnProgress func(percent int)
	// OnFinished вызывается ровно один раз с финальным текстом,
	// если запуск не был отменён через Stop
	OnFinished func(text string)
	// OnError асинхронные ошибки бэкенда; после OnError
	// OnFinished уже не вызывается
	OnError func(err error)
}

// Strategy асинхронная отменяемая стратегия транскрипции.
// Контракт:
//   - Start возвращается сразу, работа идёт в фоне
//   - одновременно активен максимум один запуск (иначе ErrAlreadyRunning)
//   - после возврата Stop коллбеки этого запуска больше не вызываются
//   - Stop безопасно вызывать в любой момент, включая после завершения
type Strategy interface {
	Start(clip *audio.Segment, cb Callbacks) error
	Stop()
	Name() string
}

// StrategyType тип стратегии транскрипции
type StrategyType string

const (
	// StrategyTypeSherpa - офлайн Whisper через sherpa-onnx
	StrategyTypeSherpa StrategyType = "sherpa"
	// StrategyTypeStub - детерминированная заглушка для тестов и разработки
	StrategyTypeStub StrategyType = "stub"
)

// Config конфигурация для создания стратегии
type Config struct {
	Type StrategyType

	// Для sherpa
	EncoderPath string // путь к whisper encoder ONNX модели
	DecoderPath string // путь к whisper decoder ONNX модели
	TokensPath  string // путь к файлу токенов
	Language    string // язык распознавания ("" = автоопределение)
	NumThreads  int
	Provider    string // onnx provider: cpu, cuda, coreml, auto

	// Для stub
	StubText string
}

// NewStrategy создаёт стратегию по типу из конфигурации
func NewStrategy(cfg Config) (Strategy, error) {
	switch cfg.Type {
	case StrategyTypeSherpa:
		return NewSherpaStrategy(cfg)
	case StrategyTypeStub:
		return NewStubStrategy(cfg.StubText), nil
	default:
		return nil, fmt.Errorf("unknown strategy type: %s", cfg.Type)
	}
}
