package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/muurk/ledbadge/internal/badge"
	"github.com/muurk/ledbadge/internal/dispatch"
	"github.com/muurk/ledbadge/internal/display"
	"github.com/muurk/ledbadge/internal/sink"
)

func newTestServer(t *testing.T, s sink.Sink, opts badge.Options, config *Config) *httptest.Server {
	t.Helper()
	if config == nil {
		config = &Config{}
	}
	srv, err := New(config, badge.NewService(s, opts))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body, token string) (int, Response) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return do(t, req)
}

func do(t *testing.T, req *http.Request) (int, Response) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func TestSetTextEndpoint(t *testing.T) {
	m := sink.NewMemory("desk")
	ts := newTestServer(t, m, badge.Options{}, nil)

	status, resp := post(t, ts, "/api/set_text", `{"text":"HELLO","speed":4,"mode":"left"}`, "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %+v", status, resp)
	}
	if resp.Result != "ok" {
		t.Errorf("Result = %q", resp.Result)
	}
	if want := `Displayed "HELLO" (left, speed 4) on desk`; resp.Message != want {
		t.Errorf("Message = %q, want %q", resp.Message, want)
	}
	if resp.CorrelationID == "" {
		t.Error("CorrelationID is empty")
	}
	if m.Writes() != 1 {
		t.Errorf("sink saw %d writes, want 1", m.Writes())
	}
}

func TestSetTextEndpointRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "unknown mode", body: `{"text":"HI","speed":4,"mode":"spiral"}`, code: "UnknownMode"},
		{name: "speed out of range", body: `{"text":"HI","speed":12,"mode":"left"}`, code: "SpeedOutOfRange"},
		{name: "fractional speed", body: `{"text":"HI","speed":1.5,"mode":"left"}`, code: "SpeedOutOfRange"},
		{name: "text too long", body: `{"text":"TOO LONG","speed":1,"mode":"left"}`, code: "TextTooLong"},
		{name: "missing mode", body: `{"text":"HI","speed":1}`, code: "MissingField"},
		{name: "unknown effect", body: `{"text":"HI","speed":1,"mode":"up","effects":["sparkle"]}`, code: "UnknownEffect"},
		{name: "speed as string", body: `{"text":"HI","speed":"4","mode":"left"}`, code: "BAD_REQUEST"},
		{name: "unknown field", body: `{"text":"HI","speed":4,"mode":"left","font":"big"}`, code: "BAD_REQUEST"},
		{name: "empty body", body: ``, code: "BAD_REQUEST"},
		{name: "two objects", body: `{"text":"A","speed":1,"mode":"up"}{}`, code: "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sink.NewMemory("desk")
			ts := newTestServer(t, m, badge.Options{MaxTextLength: 5}, nil)

			status, resp := post(t, ts, "/api/set_text", tt.body, "")
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
			if resp.Result != "error" || resp.Code != tt.code {
				t.Errorf("response = %+v, want code %s", resp, tt.code)
			}
			if m.Writes() != 0 {
				t.Errorf("sink saw %d writes, want 0", m.Writes())
			}
		})
	}
}

func TestSetTextEndpointDispatchFailures(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(m *sink.Memory)
		opts   badge.Options
		status int
		code   string
	}{
		{
			name:   "timeout",
			setup:  func(m *sink.Memory) { m.Delay = time.Second },
			opts:   badge.Options{Timeout: 20 * time.Millisecond},
			status: http.StatusGatewayTimeout,
			code:   "Timeout",
		},
		{
			name:   "sink failure",
			setup:  func(m *sink.Memory) { m.Err = errors.New("badge unplugged") },
			status: http.StatusBadGateway,
			code:   "SinkFailure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sink.NewMemory("desk")
			tt.setup(m)
			ts := newTestServer(t, m, tt.opts, nil)

			status, resp := post(t, ts, "/api/set_text", `{"text":"HI","speed":4,"mode":"left"}`, "")
			if status != tt.status || resp.Code != tt.code {
				t.Errorf("got %d %q, want %d %q (%s)", status, resp.Code, tt.status, tt.code, resp.Message)
			}
		})
	}
}

func TestSetMessagesEndpoint(t *testing.T) {
	m := sink.NewMemory("desk")
	ts := newTestServer(t, m, badge.Options{}, nil)

	body := `{"messages":[
		{"text":"OPEN","speed":3,"mode":"left"},
		{"text":"SALE","speed":6,"mode":"laser","effects":["flashing"]}
	]}`
	status, resp := post(t, ts, "/api/set_messages", body, "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %+v", status, resp)
	}
	if want := "Displayed 2 messages on desk"; resp.Message != want {
		t.Errorf("Message = %q, want %q", resp.Message, want)
	}
	if got := len(m.Commands()); got != 2 {
		t.Errorf("sink received %d messages, want 2", got)
	}
}

type writeOnly struct{ m *sink.Memory }

func (w writeOnly) Write(ctx context.Context, cmd display.Command) (sink.Ack, error) {
	return w.m.Write(ctx, cmd)
}

func (w writeOnly) Close() error { return nil }

func TestSetMessagesEndpointUnsupported(t *testing.T) {
	ts := newTestServer(t, writeOnly{sink.NewMemory("lcd")}, badge.Options{}, nil)

	status, resp := post(t, ts, "/api/set_messages", `{"messages":[{"text":"A","speed":1,"mode":"up"}]}`, "")
	if status != http.StatusNotImplemented || resp.Code != "Unsupported" {
		t.Errorf("got %d %+v", status, resp)
	}
}

func TestModesEndpoint(t *testing.T) {
	m := sink.NewMemory("desk")
	m.Limit = sink.Limits{MaxTextLength: 255, Charset: display.Latin1}
	ts := newTestServer(t, m, badge.Options{}, nil)

	resp, err := http.Get(ts.URL + "/api/modes")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out struct {
		Result string        `json:"result"`
		Data   ModesResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Data.Modes) != 9 || out.Data.Modes[0] != "left" || out.Data.Modes[8] != "laser" {
		t.Errorf("Modes = %v", out.Data.Modes)
	}
	if out.Data.MaxSpeed != 7 || out.Data.MaxTextLength != 255 || out.Data.MaxMessages != 8 {
		t.Errorf("limits = %+v", out.Data)
	}
	if out.Data.Charset != "ISO-8859-1" {
		t.Errorf("Charset = %q", out.Data.Charset)
	}
}

func TestWrongMethod(t *testing.T) {
	ts := newTestServer(t, sink.NewMemory("desk"), badge.Options{}, nil)

	resp, err := http.Get(ts.URL + "/api/set_text")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", display.UnknownMode("x"), http.StatusBadRequest, "UnknownMode"},
		{"timeout", &dispatch.Error{Kind: dispatch.KindTimeout}, http.StatusGatewayTimeout, "Timeout"},
		{"canceled", &dispatch.Error{Kind: dispatch.KindCanceled}, http.StatusRequestTimeout, "Canceled"},
		{"unsupported", &dispatch.Error{Kind: dispatch.KindUnsupported}, http.StatusNotImplemented, "Unsupported"},
		{"sink failure", &dispatch.Error{Kind: dispatch.KindSinkFailure}, http.StatusBadGateway, "SinkFailure"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := StatusFor(tt.err)
			if status != tt.status || code != tt.code {
				t.Errorf("StatusFor() = %d %q, want %d %q", status, code, tt.status, tt.code)
			}
		})
	}
}

func TestTXTRecords(t *testing.T) {
	m := sink.NewMemory("desk")
	m.Limit = sink.Limits{MaxTextLength: 255, Charset: display.Latin1}
	srv, err := New(&Config{AuthSecret: "s3cret"}, badge.NewService(m, badge.Options{MaxTextLength: 64}))
	if err != nil {
		t.Fatal(err)
	}

	txt := srv.txtRecords()
	want := map[string]string{"path": "/bridge", "max_text": "64", "charset": "latin1", "auth": "bearer"}
	for k, v := range want {
		if txt[k] != v {
			t.Errorf("txt[%q] = %q, want %q", k, txt[k], v)
		}
	}
}

func TestNewRequiresService(t *testing.T) {
	if _, err := New(&Config{}, nil); err == nil {
		t.Error("New() with nil service should fail")
	}
}

func TestNewTLSConfigErrors(t *testing.T) {
	if _, err := New(&Config{CertPath: "cert.pem"}, badge.NewService(sink.NewMemory(""), badge.Options{})); err == nil {
		t.Error("cert without key should fail")
	}
	if _, err := NewTLSConfig("/nonexistent/cert.pem", "/nonexistent/key.pem"); err == nil {
		t.Error("missing files should fail")
	}
}
