package sink

import (
	"bytes"
	"context"
	"testing"

	"github.com/muurk/ledbadge/internal/display"
)

func TestOpen(t *testing.T) {
	var buf bytes.Buffer

	tests := []struct {
		name    string
		target  Target
		wantErr bool
		check   func(t *testing.T, s Sink)
	}{
		{
			name:   "console default",
			target: Target{Output: &buf},
			check: func(t *testing.T, s Sink) {
				if _, ok := s.(*Console); !ok {
					t.Errorf("got %T, want *Console", s)
				}
			},
		},
		{
			name:   "memory with limits",
			target: Target{Name: "dry", Kind: KindMemory, MaxTextLength: 16, Charset: "ascii"},
			check: func(t *testing.T, s Sink) {
				l := LimitsOf(s)
				if l.MaxTextLength != 16 || l.Charset != display.ASCII {
					t.Errorf("limits = %+v", l)
				}
			},
		},
		{name: "unknown kind", target: Target{Kind: "carrier-pigeon"}, wantErr: true},
		{name: "unknown charset", target: Target{Kind: KindMemory, Charset: "ebcdic"}, wantErr: true},
		{name: "serial without path", target: Target{Kind: KindSerial}, wantErr: true},
		{name: "websocket without url", target: Target{Kind: KindWebSocket}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(context.Background(), tt.target)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Open() expected error, got %T", s)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer s.Close()
			tt.check(t, s)
		})
	}
}
