package anki

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"pact/audio"
)

// Client отправляет готовые клипы в AnkiConnect
type Client struct {
	cfg  NoteConfig
	http *http.Client
}

// NewClient создаёт клиент для конфигурации cfg
func NewClient(cfg NoteConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// addNoteResponse ответ AnkiConnect: ненулевой error - жёсткая ошибка
type addNoteResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// ExportClip кодирует клип в MP3, кладёт его в медиа-хранилище Anki под
// неперетираемым именем и создаёт заметку через addNote
func (c *Client) ExportClip(clip *audio.Segment, transcription, tag string) error {
	if c.cfg.MediaFolder == "" {
		return &ValidationError{Field: "media_folder"}
	}

	filename := MediaFilename(time.Now())

	req, err := BuildNote(transcription, tag, filename, c.cfg)
	if err != nil {
		return err
	}

	if err := c.renderClip(clip, filename); err != nil {
		return err
	}

	return c.post(req)
}

// renderClip кодирует клип во временный MP3 и копирует в медиа-папку
func (c *Client) renderClip(clip *audio.Segment, filename string) error {
	tmp, err := os.CreateTemp("", "pact-export-*.mp3")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := audio.EncodeMP3(clip, tmpPath); err != nil {
		return err
	}

	dest := filepath.Join(c.cfg.MediaFolder, filename)
	if err := copyFile(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to copy clip to media folder: %w", err)
	}

	log.Printf("Anki: clip rendered to %s", dest)
	return nil
}

func (c *Client) post(req *AddNoteRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal addNote request: %w", err)
	}

	resp, err := c.http.Post(c.cfg.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return &ExportError{Message: err.Error()}
	}
	defer resp.Body.Close()

	var parsed addNoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return &ExportError{Message: fmt.Sprintf("unreadable response: %v", err)}
	}

	if parsed.Error != nil {
		return &ExportError{Message: *parsed.Error}
	}

	log.Printf("Anki: note added (deck=%s)", c.cfg.Deck)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
