// Package api обслуживает тонкий фронтенд редактора: WebSocket канал
// и gRPC stream с JSON кодеком поверх unix сокета / named pipe.
package api

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"pact/audio"
	"pact/internal/config"
	"pact/internal/service"
	"pact/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client общая абстракция над WebSocket соединением и gRPC стримом
type client interface {
	WriteJSON(v interface{}) error
}

type Server struct {
	Config        *config.Config
	Sessions      *session.Manager
	Extractor     *audio.Extractor
	Player        *audio.Player
	Transcription *service.TranscriptionService
	Export        *service.ExportService

	clients map[client]bool
	mu      sync.Mutex
}

func NewServer(
	cfg *config.Config,
	sessions *session.Manager,
	extractor *audio.Extractor,
	player *audio.Player,
	transcription *service.TranscriptionService,
	export *service.ExportService,
) *Server {
	s := &Server{
		Config:        cfg,
		Sessions:      sessions,
		Extractor:     extractor,
		Player:        player,
		Transcription: transcription,
		Export:        export,
		clients:       make(map[client]bool),
	}
	s.setupCallbacks()
	return s
}

func (s *Server) Start() {
	go s.startGRPCServer()

	http.HandleFunc("/ws", s.handleWebSocket)

	log.Printf("Backend listening on :%s", s.Config.Port)
	if err := http.ListenAndServe(":"+s.Config.Port, nil); err != nil {
		log.Fatal("ListenAndServe:", err)
	}
}

func (s *Server) setupCallbacks() {
	s.Sessions.OnChanged = func(sess *session.Session) {
		s.broadcast(Message{Type: "session_changed", Session: sess})
	}

	s.Transcription.OnProgress = func(index, percent int) {
		s.broadcast(Message{Type: "transcription_progress", Index: index, Progress: percent})
	}
	s.Transcription.OnTranscribed = func(index int, text string) {
		s.broadcast(Message{Type: "bookmark_transcribed", Index: index, Text: text})
	}
	s.Transcription.OnError = func(index int, err error) {
		s.broadcast(Message{Type: "transcription_error", Index: index, Error: err.Error()})
	}

	s.Export.OnExported = func(index int) {
		s.broadcast(Message{Type: "export_done", Index: index})
	}
	s.Export.OnError = func(index int, err error) {
		s.broadcast(Message{Type: "export_error", Index: index, Error: err.Error()})
	}
}

func (s *Server) broadcast(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.clients) == 0 {
		return
	}

	// Глобальный лок сериализует записи во все соединения: у коллбеков
	// сервисов нет собственного write pump
	for c := range s.clients {
		if err := c.WriteJSON(msg); err != nil {
			log.Printf("Write error: %v", err)
			delete(s.clients, c)
		}
	}
}

func (s *Server) reply(c client, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := c.WriteJSON(msg); err != nil {
		log.Printf("Write error: %v", err)
	}
}

func (s *Server) replyError(c client, err error) {
	s.reply(c, Message{Type: "error", Error: err.Error()})
}

func (s *Server) addClient(c client) {
	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()
}

func (s *Server) removeClient(c client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade:", err)
		return
	}

	s.addClient(conn)
	defer func() {
		s.removeClient(conn)
		conn.Close()
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			log.Println("Read:", err)
			break
		}
		s.processMessage(conn, msg)
	}
}

func (s *Server) processMessage(c client, msg Message) {
	switch msg.Type {
	case "load_song":
		sess, err := s.Sessions.LoadSong(msg.Path)
		if err != nil {
			s.replyError(c, err)
			return
		}
		s.reply(c, Message{Type: "song_loaded", Session: sess})

	case "load_transcription":
		if err := s.Sessions.LoadTranscription(msg.Path); err != nil {
			s.replyError(c, err)
			return
		}
		s.reply(c, Message{Type: "transcription_loaded", Path: msg.Path})

	case "get_session":
		s.reply(c, Message{Type: "session", Session: s.Sessions.Current()})

	case "add_bookmark":
		index, err := s.Sessions.AddBookmark(msg.PositionMs)
		if err != nil {
			s.replyError(c, err)
			return
		}
		s.reply(c, Message{Type: "bookmark_added", Index: index})

	case "remove_bookmark":
		if err := s.Sessions.RemoveBookmark(msg.Index); err != nil {
			s.replyError(c, err)
			return
		}
		s.reply(c, Message{Type: "bookmark_removed", Index: msg.Index})

	case "set_clip_start":
		if err := s.Sessions.SetClipStart(msg.Index, msg.Ms); err != nil {
			s.replyError(c, err)
			return
		}
		s.reply(c, s.clipLabel(msg.Index))

	case "set_clip_end":
		if err := s.Sessions.SetClipEnd(msg.Index, msg.Ms); err != nil {
			s.replyError(c, err)
			return
		}
		s.reply(c, s.clipLabel(msg.Index))

	case "set_transcription":
		if err := s.Sessions.SetTranscription(msg.Index, msg.Text); err != nil {
			s.replyError(c, err)
			return
		}
		s.reply(c, Message{Type: "transcription_set", Index: msg.Index})

	case "time_label":
		s.reply(c, Message{Type: "time_label", Ms: msg.Ms, Label: session.TimeString(msg.Ms)})

	case "transcribe":
		if err := s.Transcription.TranscribeBookmark(msg.Index); err != nil {
			s.replyError(c, err)
			return
		}
		s.reply(c, Message{Type: "transcription_started", Index: msg.Index})

	case "stop_transcribe":
		s.Transcription.Stop()
		s.reply(c, Message{Type: "transcription_stopped"})

	case "play_clip":
		s.playClip(c, msg.Index)

	case "stop_clip":
		s.Player.Stop()
		s.reply(c, Message{Type: "playback_stopped"})

	case "envelope":
		s.sendEnvelope(c, msg.Index, msg.Buckets)

	case "export":
		if err := s.Export.ExportBookmark(msg.Index); err != nil {
			s.replyError(c, err)
			return
		}
		s.reply(c, Message{Type: "export_started", Index: msg.Index})

	case "save_session":
		if err := s.Sessions.Save(msg.Path); err != nil {
			s.replyError(c, err)
			return
		}
		s.reply(c, Message{Type: "session_saved", Path: msg.Path})

	case "load_session":
		sess, err := s.Sessions.Load(msg.Path)
		if err != nil {
			s.replyError(c, err)
			return
		}
		s.reply(c, Message{Type: "session_loaded", Session: sess})

	default:
		s.reply(c, Message{Type: "error", Error: "unknown message type: " + msg.Type})
	}
}

func (s *Server) clipLabel(index int) Message {
	sess := s.Sessions.Current()
	startMs, endMs, err := sess.ClipBounds(index)
	if err != nil {
		return Message{Type: "error", Error: err.Error()}
	}
	return Message{
		Type:  "clip_changed",
		Index: index,
		Label: session.IntervalString(startMs, endMs, "n/a"),
	}
}

// playClip извлекает клип и запускает воспроизведение в фоне:
// subprocess транскодера не должен блокировать обработку сообщений
func (s *Server) playClip(c client, index int) {
	clip, err := s.extractBookmarkClip(index)
	if err != nil {
		s.replyError(c, err)
		return
	}

	go func() {
		seg, err := clip()
		if err != nil {
			s.broadcast(Message{Type: "playback_error", Index: index, Error: err.Error()})
			return
		}
		if err := s.Player.Play(seg); err != nil {
			s.broadcast(Message{Type: "playback_error", Index: index, Error: err.Error()})
			return
		}
		s.broadcast(Message{Type: "playback_started", Index: index})
	}()
}

func (s *Server) sendEnvelope(c client, index, buckets int) {
	clip, err := s.extractBookmarkClip(index)
	if err != nil {
		s.replyError(c, err)
		return
	}
	if buckets <= 0 {
		buckets = 400
	}

	go func() {
		seg, err := clip()
		if err != nil {
			s.broadcast(Message{Type: "envelope_error", Index: index, Error: err.Error()})
			return
		}
		s.broadcast(Message{
			Type:     "envelope",
			Index:    index,
			Envelope: audio.Envelope(seg.Samples, buckets),
		})
	}()
}

// extractBookmarkClip валидирует закладку синхронно и возвращает
// отложенное извлечение для запуска в фоне
func (s *Server) extractBookmarkClip(index int) (func() (*audio.Segment, error), error) {
	sess := s.Sessions.Current()
	if sess == nil {
		return nil, session.ErrNotLoaded
	}
	startMs, endMs, err := sess.ClipBounds(index)
	if err != nil {
		return nil, err
	}
	if err := sess.CheckSource(); err != nil {
		return nil, err
	}

	musicFile := sess.MusicFile
	return func() (*audio.Segment, error) {
		return s.Extractor.Extract(context.Background(), musicFile, startMs, endMs)
	}, nil
}
