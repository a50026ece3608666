package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLogEventCarriesEventAttribute(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(slog.NewJSONHandler(buf, nil)).With("component", "service.test")

	ctx := WithRID(Background(), "42:7:9")
	LogEvent(ctx, log, slog.LevelInfo, "test.event",
		slog.String("status", "ok"),
	)

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		t.Fatalf("unmarshal: %v (%s)", err, line)
	}
	if fields["event"] != "test.event" {
		t.Fatalf("event = %v, expected test.event", fields["event"])
	}
	if fields["component"] != "service.test" {
		t.Fatalf("component = %v, expected service.test", fields["component"])
	}
	if fields["status"] != "ok" {
		t.Fatalf("status = %v, expected ok", fields["status"])
	}
}

func TestContextMetaRoundTrip(t *testing.T) {
	ctx := WithRID(Background(), "1:2:3")
	ctx = WithUpdateMeta(ctx, 11, 22, 33)

	if rid := RIDFrom(ctx); rid != "1:2:3" {
		t.Fatalf("rid = %s", rid)
	}
	if id := UpdateIDFrom(ctx); id != 11 {
		t.Fatalf("update_id = %d", id)
	}
	if id := UserIDFrom(ctx); id != 22 {
		t.Fatalf("user_id = %d", id)
	}
	if id := ChatIDFrom(ctx); id != 33 {
		t.Fatalf("chat_id = %d", id)
	}
	if rid := RIDFrom(Background()); rid != "" {
		t.Fatalf("empty context rid = %s", rid)
	}
}

func TestBuildRID(t *testing.T) {
	if rid := BuildRID(5, 10, 15); rid != "5:10:15" {
		t.Fatalf("rid = %s", rid)
	}
}

func TestSanitizeLimit(t *testing.T) {
	in := "hello\x00world\x1b[0m"
	if got := Sanitize(in); got != "helloworld[0m" {
		t.Fatalf("sanitize = %q", got)
	}
	if got := SanitizeLimit("abcdef", 3); got != "abc" {
		t.Fatalf("limit = %q", got)
	}
	if got := SanitizeLimit("abc", 0); got != "" {
		t.Fatalf("zero limit = %q", got)
	}
}

func TestSummarizeStrings(t *testing.T) {
	s, truncated := SummarizeStrings([]string{"a", "b", "c"}, 2)
	if s != "a, b" || !truncated {
		t.Fatalf("got %q truncated=%v", s, truncated)
	}
	s, truncated = SummarizeStrings([]string{"a"}, 2)
	if s != "a" || truncated {
		t.Fatalf("got %q truncated=%v", s, truncated)
	}
}
