// Package anki строит и отправляет запросы экспорта клипов в Anki
// через AnkiConnect.
package anki

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// ankiConnectVersion версия протокола AnkiConnect
const ankiConnectVersion = 6

// NoteConfig настройки экспорта: куда и в какие поля класть клип
type NoteConfig struct {
	URL                string `json:"url"`
	Deck               string `json:"deck"`
	NoteType           string `json:"note_type"`
	AudioField         string `json:"audio_field"`
	TranscriptionField string `json:"transcription_field"`
	MediaFolder        string `json:"media_folder"`
}

// ValidationError в конфигурации экспорта не хватает обязательного поля
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("anki config: missing required field %q", e.Field)
}

// ExportError карточный сервис вернул ошибку; текст передаётся как есть,
// чтобы пользователь мог диагностировать удалённую сторону
type ExportError struct {
	Message string
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("anki export failed: %s", e.Message)
}

// Note содержимое создаваемой заметки
type Note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags,omitempty"`
}

// AddNoteRequest тело запроса addNote для AnkiConnect
type AddNoteRequest struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  struct {
		Note Note `json:"note"`
	} `json:"params"`
}

// BuildNote собирает запрос addNote. Чистая функция: сетевой вызов и
// копирование аудио в медиа-хранилище - забота вызывающего (см. Client).
// Поле транскрипции добавляется только при непустом тексте; переносы
// строк превращаются в <br>. Тег добавляется только если непуст.
func BuildNote(transcription, tag, soundFilename string, cfg NoteConfig) (*AddNoteRequest, error) {
	switch {
	case cfg.Deck == "":
		return nil, &ValidationError{Field: "deck"}
	case cfg.NoteType == "":
		return nil, &ValidationError{Field: "note_type"}
	case cfg.AudioField == "":
		return nil, &ValidationError{Field: "audio_field"}
	}

	fields := map[string]string{
		cfg.AudioField: fmt.Sprintf("[sound:%s]", soundFilename),
	}

	text := strings.TrimSpace(transcription)
	if text != "" && cfg.TranscriptionField != "" {
		fields[cfg.TranscriptionField] = strings.ReplaceAll(text, "\n", "<br>")
	}

	req := &AddNoteRequest{
		Action:  "addNote",
		Version: ankiConnectVersion,
	}
	req.Params.Note = Note{
		DeckName:  cfg.Deck,
		ModelName: cfg.NoteType,
		Fields:    fields,
	}
	if tag != "" {
		req.Params.Note.Tags = []string{tag}
	}

	return req, nil
}

// TagFromFilename делает тег из имени файла песни: остаются только
// буквоцифры и "._- ", пробелы заменяются дефисами
func TagFromFilename(path string) string {
	base := path
	if idx := strings.LastIndexAny(base, `/\`); idx >= 0 {
		base = base[idx+1:]
	}

	var b strings.Builder
	for _, c := range base {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || strings.ContainsRune("._- ", c) {
			b.WriteRune(c)
		}
	}

	tag := b.String()
	if tag == ".mp3" {
		tag = "Unknown.mp3"
	}
	return strings.ReplaceAll(tag, " ", "-")
}

// MediaFilename имя файла клипа в медиа-хранилище: таймстемп плюс
// уникальный токен, чтобы экспорт никогда не перетирал чужие файлы
func MediaFilename(now time.Time) string {
	token := strings.Split(uuid.New().String(), "-")[0]
	return fmt.Sprintf("clip_%s_%s.mp3", now.Format("20060102_150405"), token)
}
