package console

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
)

// StreamState is the explicit state of the incremental stream parser.
type StreamState string

const (
	StreamIdle       StreamState = "idle"
	StreamStreaming  StreamState = "streaming"
	StreamFinalizing StreamState = "finalizing"
	StreamDone       StreamState = "done"
	StreamError      StreamState = "error"
)

// ErrStreamClosed is returned when events arrive after a terminal state.
var ErrStreamClosed = errors.New("console: stream already closed")

const (
	configFenceOpen  = "```json"
	configFenceClose = "```"
)

// StreamCallbacks receive parsed stream output. Nil callbacks are skipped.
type StreamCallbacks struct {
	OnDelta  func(text string)
	OnConfig func(raw json.RawMessage)
	OnDone   func(transcript string)
	OnError  func(err error)
}

// StreamParser consumes server-sent generation events and accumulates the
// transcript. It is a deterministic state machine
// (idle -> streaming -> finalizing -> done|error) so stream handling can be
// tested without a network. Fenced JSON configuration blocks embedded in the
// streamed text are detected incrementally and emitted once each.
type StreamParser struct {
	state      StreamState
	transcript strings.Builder
	scanFrom   int
	cb         StreamCallbacks
}

// NewStreamParser constructs a parser in the idle state.
func NewStreamParser(cb StreamCallbacks) *StreamParser {
	return &StreamParser{state: StreamIdle, cb: cb}
}

// State returns the current parser state.
func (p *StreamParser) State() StreamState { return p.state }

// Transcript returns the accumulated text so far.
func (p *StreamParser) Transcript() string { return p.transcript.String() }

type deltaPayload struct {
	Text string `json:"text"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// HandleEvent feeds one decoded SSE event into the state machine.
func (p *StreamParser) HandleEvent(eventType, data string) error {
	switch p.state {
	case StreamDone, StreamError:
		return ErrStreamClosed
	}

	switch eventType {
	case "delta":
		var payload deltaPayload
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return p.fail(fmt.Errorf("console: decode delta: %w", err))
		}
		p.state = StreamStreaming
		p.transcript.WriteString(payload.Text)
		if p.cb.OnDelta != nil {
			p.cb.OnDelta(payload.Text)
		}
		p.detectConfigs()
		return nil

	case "config":
		raw := json.RawMessage(data)
		if !json.Valid(raw) {
			return p.fail(fmt.Errorf("console: invalid config event"))
		}
		if p.cb.OnConfig != nil {
			p.cb.OnConfig(raw)
		}
		return nil

	case "done":
		p.state = StreamFinalizing
		p.detectConfigs()
		p.state = StreamDone
		if p.cb.OnDone != nil {
			p.cb.OnDone(p.transcript.String())
		}
		return nil

	case "error":
		var payload errorPayload
		msg := data
		if err := json.Unmarshal([]byte(data), &payload); err == nil && payload.Message != "" {
			msg = payload.Message
		}
		return p.fail(errors.New(msg))

	default:
		// Unknown event types are ignored for forward compatibility.
		return nil
	}
}

func (p *StreamParser) fail(err error) error {
	p.state = StreamError
	if p.cb.OnError != nil {
		p.cb.OnError(err)
	}
	return err
}

// detectConfigs scans the not-yet-scanned transcript tail for completed
// fenced JSON blocks and emits each exactly once.
func (p *StreamParser) detectConfigs() {
	if p.cb.OnConfig == nil {
		return
	}
	text := p.transcript.String()
	for {
		open := strings.Index(text[p.scanFrom:], configFenceOpen)
		if open < 0 {
			return
		}
		start := p.scanFrom + open + len(configFenceOpen)
		closeIdx := strings.Index(text[start:], configFenceClose)
		if closeIdx < 0 {
			// Fence still open; wait for more deltas.
			return
		}
		body := strings.TrimSpace(text[start : start+closeIdx])
		p.scanFrom = start + closeIdx + len(configFenceClose)
		if json.Valid([]byte(body)) {
			p.cb.OnConfig(json.RawMessage(body))
		}
	}
}

// Consume reads SSE frames from r until EOF or a terminal event, feeding the
// state machine. The wire format is standard text/event-stream: "event:" and
// "data:" lines terminated by a blank line.
func (p *StreamParser) Consume(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	eventType := "message"
	var eventData bytes.Buffer

	dispatch := func() error {
		if eventData.Len() == 0 {
			return nil
		}
		data := strings.TrimSuffix(eventData.String(), "\n")
		eventData.Reset()
		defer func() { eventType = "message" }()
		return p.HandleEvent(eventType, data)
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if err := dispatch(); err != nil {
				return err
			}
			if p.state == StreamDone {
				return nil
			}
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			eventData.WriteString(strings.TrimPrefix(line, "data: "))
			eventData.WriteByte('\n')
		case strings.HasPrefix(line, ":"):
			// Comment, ignore.
		}
	}
	if err := scanner.Err(); err != nil {
		return p.fail(fmt.Errorf("console: read stream: %w", err))
	}
	if err := dispatch(); err != nil {
		return err
	}
	if p.state != StreamDone {
		return p.fail(errors.New("console: stream ended before done event"))
	}
	return nil
}

// OpenStream posts to a streaming endpoint and consumes the resulting SSE
// stream. Connection failures before the first byte are retried with
// exponential backoff; once streaming has begun, failures surface to the
// caller instead of being retried.
func (c *Client) OpenStream(ctx context.Context, path string, body any, cb StreamCallbacks) error {
	operation := func() error {
		parser := NewStreamParser(cb)

		var reader io.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("console: encode stream request: %w", err))
			}
			reader = bytes.NewReader(raw)
		}

		endpoint := *c.base
		endpoint.Path = path
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("Cache-Control", "no-cache")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			apiErr := &APIError{
				Kind:   kindForStatus(resp.StatusCode),
				Status: resp.StatusCode,
				Title:  http.StatusText(resp.StatusCode),
			}
			// Client errors will not heal on retry; a 5xx from a restarting
			// backend goes back through the backoff loop.
			if resp.StatusCode < 500 {
				return backoff.Permanent(apiErr)
			}
			return apiErr
		}

		if err := parser.Consume(resp.Body); err != nil {
			if parser.State() == StreamError || parser.State() == StreamDone {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}

	return backoff.Retry(operation, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))
}
