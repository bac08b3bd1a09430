package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/muurk/ledbadge/internal/dispatch"
	"github.com/muurk/ledbadge/internal/display"
	"github.com/muurk/ledbadge/internal/logging"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; eight full badge messages fit easily
const maxBodyBytes = 64 << 10

// Response is the JSON envelope of every API reply
type Response struct {
	Result        string      `json:"result"` // "ok" or "error"
	Message       string      `json:"message,omitempty"`
	Code          string      `json:"code,omitempty"`
	Data          interface{} `json:"data,omitempty"`
	CorrelationID string      `json:"correlationId"`
}

// SetMessagesRequest is the body of POST /api/set_messages
type SetMessagesRequest struct {
	Messages []display.Request `json:"messages"`
}

// ModesResponse lists the accepted tokens and the active limits
type ModesResponse struct {
	Modes         []string `json:"modes"`
	Effects       []string `json:"effects"`
	MinSpeed      int      `json:"min_speed"`
	MaxSpeed      int      `json:"max_speed"`
	MaxTextLength int      `json:"max_text_length,omitempty"`
	Charset       string   `json:"charset,omitempty"`
	MaxMessages   int      `json:"max_messages"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &Response{Result: "ok", Message: "healthy"})
}

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	v := s.service.Validator()
	modes := ModesResponse{
		Modes:         display.ModeNames(),
		Effects:       display.EffectNames(),
		MinSpeed:      int(display.MinSpeed),
		MaxSpeed:      int(display.MaxSpeed),
		MaxTextLength: v.MaxTextLength,
		MaxMessages:   display.MaxProgramLength,
	}
	if v.Charset != nil {
		modes.Charset = v.Charset.Name()
	}
	writeJSON(w, http.StatusOK, &Response{Result: "ok", Data: modes})
}

func (s *Server) handleSetText(w http.ResponseWriter, r *http.Request) {
	var req display.Request
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	ack, err := s.service.Submit(r.Context(), req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &Response{Result: "ok", Message: ack})
}

func (s *Server) handleSetMessages(w http.ResponseWriter, r *http.Request) {
	var req SetMessagesRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	ack, err := s.service.SetMessages(r.Context(), req.Messages)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &Response{Result: "ok", Message: ack})
}

// decodeBody reads exactly one JSON object. A field with the wrong JSON type
// (speed as a string, say) fails here rather than in the validator.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("request body must hold a single JSON object")
	}
	return nil
}

// StatusFor maps a set_text failure onto an HTTP status and error code
func StatusFor(err error) (int, string) {
	if kind, ok := display.KindOf(err); ok {
		return http.StatusBadRequest, kind.String()
	}
	if kind, ok := dispatch.KindOf(err); ok {
		switch kind {
		case dispatch.KindTimeout:
			return http.StatusGatewayTimeout, kind.String()
		case dispatch.KindCanceled:
			return http.StatusRequestTimeout, kind.String()
		case dispatch.KindUnsupported:
			return http.StatusNotImplemented, kind.String()
		default:
			return http.StatusBadGateway, kind.String()
		}
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func writeFailure(w http.ResponseWriter, err error) {
	status, code := StatusFor(err)
	writeError(w, status, code, err.Error())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, &Response{Result: "error", Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, resp *Response) {
	if resp.CorrelationID == "" {
		resp.CorrelationID = uuid.NewString()
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error("Failed to write response", zap.Error(err))
	}
}

// statusRecorder captures the status code for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// logRequests logs every request once it has been served
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
