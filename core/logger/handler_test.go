package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func captureLine(t *testing.T, format logFormat, fn func(*slog.Logger)) string {
	t.Helper()
	var buf bytes.Buffer
	aw := newAsyncWriter([]io.Writer{&buf}, 0)
	h := newStructuredHandler(handlerConfig{
		level:  slog.LevelDebug,
		writer: aw,
		format: format,
	})
	fn(slog.New(h))
	if err := aw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func TestHandleKVOrder(t *testing.T) {
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		l.LogAttrs(context.Background(), slog.LevelInfo, "",
			slog.String("event", "photo_sent"),
			slog.String("component", "tg"),
			slog.String("status", "OK"),
			slog.Int64("user_id", 42),
			slog.String("place", "mars"),
		)
	})
	fields := strings.Fields(line)
	wantPrefix := []string{"level=INFO", "component=tg", "event=photo_sent", "status=ok", "user_id=42", "place=mars"}
	if len(fields) < len(wantPrefix)+1 {
		t.Fatalf("unexpected field count in %q", line)
	}
	if !strings.HasPrefix(fields[0], "ts=") {
		t.Fatalf("first field should be ts, got %q", fields[0])
	}
	for i, want := range wantPrefix {
		if fields[i+1] != want {
			t.Errorf("field %d: got %q want %q (line %q)", i+1, fields[i+1], want, line)
		}
	}
}

func TestHandleJSONKeyOrder(t *testing.T) {
	line := captureLine(t, formatJSON, func(l *slog.Logger) {
		l.LogAttrs(context.Background(), slog.LevelWarn, "quota_hit",
			slog.String("component", "nasa"),
			slog.String("date", "2023-05-11"),
			slog.Int("attempts", 3),
		)
	})
	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", line, err)
	}
	if decoded["event"] != "quota_hit" {
		t.Errorf("event: got %v", decoded["event"])
	}
	if decoded["level"] != "WARN" {
		t.Errorf("level: got %v", decoded["level"])
	}
	// Keys from defaultKeyOrder must come out in that order in the raw line.
	tsIdx := strings.Index(line, `"ts"`)
	compIdx := strings.Index(line, `"component"`)
	dateIdx := strings.Index(line, `"date"`)
	attIdx := strings.Index(line, `"attempts"`)
	if !(tsIdx >= 0 && tsIdx < compIdx && compIdx < dateIdx && dateIdx < attIdx) {
		t.Errorf("key order violated in %q", line)
	}
}

func TestHandleContextFields(t *testing.T) {
	ctx := WithRID(context.Background(), BuildRID(100, 200, 300))
	ctx = WithHandler(ctx, "cb:destination")
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		l.LogAttrs(ctx, slog.LevelInfo, "state_set", slog.String("component", "tg"))
	})
	if !strings.Contains(line, "rid="+CompactRID("100:200:300")) {
		t.Errorf("rid missing or not compacted: %q", line)
	}
	if !strings.Contains(line, "handler=cb:destination") {
		t.Errorf("handler missing: %q", line)
	}
}

func TestHandleDurationKey(t *testing.T) {
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		l.LogAttrs(context.Background(), slog.LevelInfo, "fetch_done",
			slog.String("component", "nasa"),
			slog.Duration("duration", 1530*time.Millisecond),
		)
	})
	if !strings.Contains(line, "duration_ms=1530") {
		t.Errorf("duration not converted to ms key: %q", line)
	}
	if strings.Contains(line, "duration=") && !strings.Contains(line, "duration_ms=") {
		t.Errorf("raw duration key leaked: %q", line)
	}
}

func TestCompactRID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"100:200:300", "2s.5k.8c"},
		{"0:0:0", "0.0.0"},
		{"not-a-rid", "not-a-rid"},
		{"1:2", "1:2"},
		{"1:x:3", "1:x:3"},
	}
	for _, tc := range cases {
		if got := CompactRID(tc.in); got != tc.want {
			t.Errorf("CompactRID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeLimit(t *testing.T) {
	in := "hello\x00 world\x1b[0m"
	got := Sanitize(in)
	if strings.ContainsRune(got, 0) || strings.Contains(got, "\x1b") {
		t.Errorf("control chars survived: %q", got)
	}
	if got := SanitizeLimit("привет космос", 6); got != "привет" {
		t.Errorf("rune limit: got %q", got)
	}
	if got := SanitizeLimit("abc", 0); got != "" {
		t.Errorf("zero limit: got %q", got)
	}
}

func TestNormalizeStatus(t *testing.T) {
	if got := normalizeStatus(" OK "); got != "ok" {
		t.Errorf("got %q", got)
	}
	if got := normalizeStatus("weird"); got != "weird" {
		t.Errorf("unknown status should pass through, got %q", got)
	}
}
