package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pact/ai"
	"pact/anki"
	"pact/audio"
	"pact/internal/config"
	"pact/internal/service"
	"pact/session"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// jsonClient is a lightweight gRPC JSON client for the Control stream.
type jsonClient struct {
	conn   *grpc.ClientConn
	stream grpc.ClientStream
}

func newJSONClient(t *testing.T, addr string) *jsonClient {
	t.Helper()

	conn, err := grpc.Dial(
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
		grpc.WithContextDialer(func(ctx context.Context, addr string) (net.Conn, error) {
			// Support unix:/path format
			if len(addr) > 5 && addr[:5] == "unix:" {
				return net.DialTimeout("unix", addr[5:], 3*time.Second)
			}
			return net.DialTimeout("tcp", addr, 3*time.Second)
		}),
	)
	if err != nil {
		t.Fatalf("dial grpc: %v", err)
	}

	stream, err := conn.NewStream(context.Background(), &_Control_serviceDesc.Streams[0], "/pact.Control/Stream")
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}

	return &jsonClient{conn: conn, stream: stream}
}

func (c *jsonClient) send(msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	// Send as generic interface{} so ForceCodec(jsonCodec{}) kicks in on server
	var any interface{}
	if err := json.Unmarshal(raw, &any); err != nil {
		return err
	}
	return c.stream.SendMsg(any)
}

func (c *jsonClient) recv(timeout time.Duration) (Message, error) {
	var msg Message
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	recvDone := make(chan error, 1)
	go func() { recvDone <- c.stream.RecvMsg(&msg) }()
	select {
	case err := <-recvDone:
		return msg, err
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (c *jsonClient) close() {
	_ = c.stream.CloseSend()
	_ = c.conn.Close()
}

// startTestServer запускает минимальный сервер с unix сокетом.
// Плеер не инициализируется: play_clip в тестах не используется.
func startTestServer(t *testing.T, socketPath string) *Server {
	t.Helper()

	cfg := &config.Config{
		Port:     "0",
		GRPCAddr: "unix:" + socketPath,
		Strategy: "stub",
	}

	sessions := session.NewManager()
	extractor := audio.NewExtractor()
	strategy := ai.NewStubStrategy("hola")
	transcription := service.NewTranscriptionService(sessions, extractor, strategy)
	export := service.NewExportService(sessions, extractor, anki.NewClient(anki.NoteConfig{}))

	s := NewServer(cfg, sessions, extractor, nil, transcription, export)

	go s.startGRPCServer()
	time.Sleep(300 * time.Millisecond) // дать сокету создаться
	return s
}

// writeSessionFixture кладёт на диск сессию с песней-пустышкой и
// закладкой 1 с клипом [4600, 6600)
func writeSessionFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	music := filepath.Join(dir, "cancion.mp3")
	if err := os.WriteFile(music, []byte("mp3"), 0644); err != nil {
		t.Fatalf("write music stub: %v", err)
	}

	sessionJSON := fmt.Sprintf(`{
  "music_file": %q,
  "duration_ms": 10000,
  "bookmarks": [
    {"position_ms": 0, "clip_bounds_ms": [0, 10000]},
    {"position_ms": 5600, "clip_bounds_ms": [4600, 6600]}
  ]
}`, music)

	path := filepath.Join(dir, "session.json")
	if err := os.WriteFile(path, []byte(sessionJSON), 0644); err != nil {
		t.Fatalf("write session: %v", err)
	}
	return path
}

func TestControlStream(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "pact-test.sock")
	s := startTestServer(t, socket)

	client := newJSONClient(t, s.Config.GRPCAddr)
	defer client.close()

	// До загрузки песни мутации отклоняются
	if err := client.send(Message{Type: "add_bookmark", PositionMs: 100}); err != nil {
		t.Fatalf("send add_bookmark: %v", err)
	}
	msg, err := client.recv(2 * time.Second)
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if msg.Type != "error" || msg.Error == "" {
		t.Fatalf("expected error reply, got %+v", msg)
	}

	// time_label работает без сессии
	if err := client.send(Message{Type: "time_label", Ms: 5600}); err != nil {
		t.Fatalf("send time_label: %v", err)
	}
	msg, err = client.recv(2 * time.Second)
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if msg.Type != "time_label" || msg.Label != "00:05.6" {
		t.Fatalf("time_label reply = %+v", msg)
	}

	// Загрузка сессии из файла
	if err := client.send(Message{Type: "load_session", Path: writeSessionFixture(t)}); err != nil {
		t.Fatalf("send load_session: %v", err)
	}
	for {
		msg, err = client.recv(2 * time.Second)
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		// Мутации рассылают session_changed всем клиентам; ждём прямой ответ
		if msg.Type != "session_changed" {
			break
		}
	}
	if msg.Type != "session_loaded" || msg.Session == nil {
		t.Fatalf("load_session reply = %+v", msg)
	}
	if len(msg.Session.Bookmarks) != 2 {
		t.Fatalf("bookmarks = %d, want 2", len(msg.Session.Bookmarks))
	}

	// Сдвиг границы клипа возвращает человекочитаемый интервал
	if err := client.send(Message{Type: "set_clip_start", Index: 1, Ms: 5000}); err != nil {
		t.Fatalf("send set_clip_start: %v", err)
	}
	for {
		msg, err = client.recv(2 * time.Second)
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		if msg.Type != "session_changed" {
			break
		}
	}
	if msg.Type != "clip_changed" || msg.Label != "00:05.0 - 00:06.6" {
		t.Fatalf("clip_changed reply = %+v", msg)
	}
}
