package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCommitStepUsesContextLogger(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	SetOutput(&buf)

	l := WithRequestID("req-1")
	ctx := NewContext(context.Background(), &l)
	CommitStep(ctx, 7, "create image 21")

	out := buf.String()
	for _, want := range []string{`"request_id":"req-1"`, `"product_id":7`, `"step":"create image 21"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %s", out, want)
		}
	}
}

func TestWithContextFallsBackToGlobal(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	SetOutput(&buf)
	CacheInvalidated(context.Background(), "product:", "test")
	if !strings.Contains(buf.String(), `"prefix":"product:"`) {
		t.Errorf("unexpected output %q", buf.String())
	}
}
