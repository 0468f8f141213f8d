package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pact/anki"
)

func TestExportBookmark(t *testing.T) {
	var received anki.AddNoteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"result": 1, "error": null}`))
	}))
	defer srv.Close()

	m := loadedManager(t)
	if err := m.SetTranscription(1, "un perro"); err != nil {
		t.Fatalf("SetTranscription: %v", err)
	}

	client := anki.NewClient(anki.NoteConfig{
		URL:                srv.URL,
		Deck:               "Spanish",
		NoteType:           "Basic",
		AudioField:         "Audio",
		TranscriptionField: "Front",
		MediaFolder:        t.TempDir(),
	})

	svc := NewExportService(m, &fakeExtractor{}, client)

	done := make(chan int, 1)
	svc.OnExported = func(index int) { done <- index }
	svc.OnError = func(index int, err error) {
		t.Errorf("export error for bookmark %d: %v", index, err)
		done <- -1
	}

	if err := svc.ExportBookmark(1); err != nil {
		t.Fatalf("ExportBookmark: %v", err)
	}

	select {
	case index := <-done:
		if index != 1 {
			t.Errorf("exported index = %d, want 1", index)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("export did not finish")
	}

	if got := received.Params.Note.Fields["Front"]; got != "un perro" {
		t.Errorf("transcription field = %q", got)
	}
	// Тег карточки строится из имени файла песни
	if len(received.Params.Note.Tags) != 1 || received.Params.Note.Tags[0] != "cancion.mp3" {
		t.Errorf("tags = %v, want [cancion.mp3]", received.Params.Note.Tags)
	}
}
