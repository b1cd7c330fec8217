package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/internal/console"
)

func newTestServer(t *testing.T) (*httptest.Server, *Service) {
	t.Helper()
	svc := NewService(newFakeRepo(), nil)
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, nil)
	r := chi.NewRouter()
	r.Route("/chat", handler.MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestSendStreamsSSE(t *testing.T) {
	srv, svc := newTestServer(t)

	session, err := svc.CreateSession(context.Background(), CreateSessionInput{Title: "t"})
	require.NoError(t, err)

	body, _ := json.Marshal(SendMessageInput{Content: "ping"})
	resp, err := http.Post(srv.URL+"/chat/sessions/"+session.ID+"/messages", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var deltas []string
	var final string
	parser := console.NewStreamParser(console.StreamCallbacks{
		OnDelta: func(text string) { deltas = append(deltas, text) },
		OnDone:  func(tr string) { final = tr },
	})
	require.NoError(t, parser.Consume(resp.Body))

	assert.NotEmpty(t, deltas)
	assert.Equal(t, "You said: ping", final)
	assert.Equal(t, console.StreamDone, parser.State())
}

func TestSendUnknownSessionIsErrorEvent(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(SendMessageInput{Content: "ping"})
	resp, err := http.Post(srv.URL+"/chat/sessions/nope/messages", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var gotErr error
	parser := console.NewStreamParser(console.StreamCallbacks{OnError: func(e error) { gotErr = e }})
	err = parser.Consume(resp.Body)

	require.Error(t, err)
	require.Error(t, gotErr)
	assert.Equal(t, console.StreamError, parser.State())
}

type slowGenerator struct {
	step time.Duration
}

func (g slowGenerator) Generate(ctx context.Context, _ []Message, emit func(string) error) (string, error) {
	parts := []string{"slow", " and", " steady"}
	var reply strings.Builder
	for _, part := range parts {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.step):
		}
		if err := emit(part); err != nil {
			return "", err
		}
		reply.WriteString(part)
	}
	return reply.String(), nil
}

func TestSendOutlivesServerWriteTimeout(t *testing.T) {
	svc := NewService(newFakeRepo(), slowGenerator{step: 60 * time.Millisecond})
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, nil)
	r := chi.NewRouter()
	r.Route("/chat", handler.MountRoutes)

	// A write timeout shorter than a single generation step would cut the
	// stream if the handler did not clear its deadline.
	srv := httptest.NewUnstartedServer(r)
	srv.Config.WriteTimeout = 50 * time.Millisecond
	srv.Start()
	t.Cleanup(srv.Close)

	session, err := svc.CreateSession(context.Background(), CreateSessionInput{Title: "t"})
	require.NoError(t, err)

	body, _ := json.Marshal(SendMessageInput{Content: "ping"})
	resp, err := http.Post(srv.URL+"/chat/sessions/"+session.ID+"/messages", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var final string
	parser := console.NewStreamParser(console.StreamCallbacks{OnDone: func(tr string) { final = tr }})
	require.NoError(t, parser.Consume(resp.Body))

	assert.Equal(t, "slow and steady", final)
	assert.Equal(t, console.StreamDone, parser.State())
}

func TestSessionCRUDOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(CreateSessionInput{Title: "triage"})
	resp, err := http.Post(srv.URL+"/chat/sessions", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	assert.NotEmpty(t, session.ID)

	listResp, err := http.Get(srv.URL + "/chat/sessions")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var envelope struct {
		Items      []Session `json:"items"`
		TotalCount int       `json:"total_count"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&envelope))
	assert.Equal(t, 1, envelope.TotalCount)
}
