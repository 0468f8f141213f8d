package api

import (
	"pact/audio"
	"pact/session"
)

// Message сообщение управляющего канала (WebSocket и gRPC stream)
type Message struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`

	// Пути файлов (песня, транскрипция, файл сессии)
	Path string `json:"path,omitempty"`

	// Закладки
	Index      int   `json:"index,omitempty"`
	PositionMs int64 `json:"positionMs,omitempty"`
	Ms         int64 `json:"ms,omitempty"`

	// Волна
	Buckets  int                   `json:"buckets,omitempty"`
	Envelope []audio.EnvelopePoint `json:"envelope,omitempty"`

	// Ответы
	Session  *session.Session `json:"session,omitempty"`
	Text     string           `json:"text,omitempty"`
	Label    string           `json:"label,omitempty"`
	Progress int              `json:"progress,omitempty"`
	Error    string           `json:"error,omitempty"`
}
