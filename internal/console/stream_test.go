package console

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamParserStateTransitions(t *testing.T) {
	p := NewStreamParser(StreamCallbacks{})
	assert.Equal(t, StreamIdle, p.State())

	require.NoError(t, p.HandleEvent("delta", `{"text":"hel"}`))
	assert.Equal(t, StreamStreaming, p.State())

	require.NoError(t, p.HandleEvent("delta", `{"text":"lo"}`))
	require.NoError(t, p.HandleEvent("done", "{}"))
	assert.Equal(t, StreamDone, p.State())
	assert.Equal(t, "hello", p.Transcript())
}

func TestStreamParserErrorEvent(t *testing.T) {
	var gotErr error
	p := NewStreamParser(StreamCallbacks{OnError: func(err error) { gotErr = err }})

	require.NoError(t, p.HandleEvent("delta", `{"text":"partial"}`))
	err := p.HandleEvent("error", `{"message":"model unavailable"}`)

	require.Error(t, err)
	assert.Equal(t, StreamError, p.State())
	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "model unavailable")
}

func TestStreamParserRejectsEventsAfterTerminal(t *testing.T) {
	p := NewStreamParser(StreamCallbacks{})
	require.NoError(t, p.HandleEvent("done", "{}"))

	err := p.HandleEvent("delta", `{"text":"late"}`)
	assert.ErrorIs(t, err, ErrStreamClosed)
}

func TestStreamParserDetectsFencedConfig(t *testing.T) {
	var configs []string
	p := NewStreamParser(StreamCallbacks{
		OnConfig: func(raw json.RawMessage) { configs = append(configs, string(raw)) },
	})

	// The fence arrives split across deltas; detection fires only once the
	// closing fence is complete.
	require.NoError(t, p.HandleEvent("delta", `{"text":"Here is the config:\n`+"```json"+`\n{\"model\":"}`))
	assert.Empty(t, configs)
	require.NoError(t, p.HandleEvent("delta", `{"text":"\"sonnet\"}\n`+"```"+`\ndone."}`))

	require.Len(t, configs, 1)
	assert.JSONEq(t, `{"model":"sonnet"}`, configs[0])

	// Already-emitted blocks are not re-emitted on finalize.
	require.NoError(t, p.HandleEvent("done", "{}"))
	assert.Len(t, configs, 1)
}

func TestStreamParserIgnoresInvalidFencedJSON(t *testing.T) {
	var configs []string
	p := NewStreamParser(StreamCallbacks{
		OnConfig: func(raw json.RawMessage) { configs = append(configs, string(raw)) },
	})

	require.NoError(t, p.HandleEvent("delta", `{"text":"`+"```json"+`\nnot json\n`+"```"+`"}`))
	assert.Empty(t, configs)
}

func TestStreamParserConsumeWireFormat(t *testing.T) {
	wire := strings.Join([]string{
		"event: delta",
		`data: {"text":"tok1 "}`,
		"",
		"event: delta",
		`data: {"text":"tok2"}`,
		"",
		"event: done",
		"data: {}",
		"",
	}, "\n")

	var deltas []string
	var final string
	p := NewStreamParser(StreamCallbacks{
		OnDelta: func(text string) { deltas = append(deltas, text) },
		OnDone:  func(tr string) { final = tr },
	})

	require.NoError(t, p.Consume(strings.NewReader(wire)))
	assert.Equal(t, []string{"tok1 ", "tok2"}, deltas)
	assert.Equal(t, "tok1 tok2", final)
	assert.Equal(t, StreamDone, p.State())
}

func TestStreamParserConsumeTruncatedStream(t *testing.T) {
	wire := "event: delta\ndata: {\"text\":\"tok\"}\n\n"
	p := NewStreamParser(StreamCallbacks{})

	err := p.Consume(strings.NewReader(wire))

	require.Error(t, err)
	assert.Equal(t, StreamError, p.State())
}

func TestOpenStreamEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, tok := range []string{"agent ", "ready"} {
			fmt.Fprintf(w, "event: delta\ndata: {\"text\":%q}\n\n", tok)
			flusher.Flush()
		}
		fmt.Fprint(w, "event: done\ndata: {}\n\n")
	}))
	t.Cleanup(srv.Close)

	client, err := New(srv.URL)
	require.NoError(t, err)

	var transcript string
	err = client.OpenStream(context.Background(), "/chat/sessions/s1/messages",
		map[string]string{"content": "hi"},
		StreamCallbacks{OnDone: func(tr string) { transcript = tr }})

	require.NoError(t, err)
	assert.Equal(t, "agent ready", transcript)
}

func TestOpenStreamPermanentOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	client, err := New(srv.URL)
	require.NoError(t, err)

	err = client.OpenStream(context.Background(), "/chat/sessions/s1/messages", nil, StreamCallbacks{})

	require.Error(t, err)
	assert.Equal(t, KindUnauthorized, Categorize(err))
}

func TestOpenStreamRetriesServerError(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			http.Error(w, "restarting", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: delta\ndata: {\"text\":\"ok\"}\n\n")
		fmt.Fprint(w, "event: done\ndata: {}\n\n")
	}))
	t.Cleanup(srv.Close)

	client, err := New(srv.URL)
	require.NoError(t, err)

	var transcript string
	err = client.OpenStream(context.Background(), "/chat/sessions/s1/messages", nil,
		StreamCallbacks{OnDone: func(tr string) { transcript = tr }})

	require.NoError(t, err)
	assert.Equal(t, "ok", transcript)
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}
