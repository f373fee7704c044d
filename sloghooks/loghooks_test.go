package sloghooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newJSONHooks(opts Options) (*Hooks, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(l, opts), &buf
}

func lines(buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, ln := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if ln == "" {
			continue
		}
		m := map[string]any{}
		_ = json.Unmarshal([]byte(ln), &m)
		out = append(out, m)
	}
	return out
}

func TestKeysAreRedacted(t *testing.T) {
	h, buf := newJSONHooks(Options{})
	h.SelfHealSingle("single:user:secret-id", "corrupt")
	h.ProviderError("get", "single:user:secret-id", errors.New("down"))

	if strings.Contains(buf.String(), "secret-id") {
		t.Fatalf("raw key leaked: %s", buf.String())
	}
	ls := lines(buf)
	if len(ls) != 2 {
		t.Fatalf("got %d lines", len(ls))
	}
	if ls[0]["msg"] != "binpack.self_heal_single" || ls[0]["reason"] != "corrupt" {
		t.Fatalf("line = %v", ls[0])
	}
	if k, _ := ls[0]["key"].(string); len(k) != 16 || k != ls[1]["key"] {
		t.Fatalf("redacted keys differ or have the wrong shape: %v / %v", ls[0]["key"], ls[1]["key"])
	}
}

func TestCustomRedact(t *testing.T) {
	h, buf := newJSONHooks(Options{Redact: func(string) string { return "X" }})
	h.ProviderSetRejected("k", true)
	ls := lines(buf)
	if len(ls) != 1 || ls[0]["key"] != "X" || ls[0]["is_bulk"] != true {
		t.Fatalf("lines = %v", ls)
	}
}

func TestSampling(t *testing.T) {
	h, buf := newJSONHooks(Options{BulkRejectEvery: 3})
	for i := 0; i < 9; i++ {
		h.BulkRejected("ns", 2, "incomplete")
	}
	if n := len(lines(buf)); n != 3 {
		t.Fatalf("logged %d of 9, want 3", n)
	}
}

func TestNilLogger(t *testing.T) {
	h := New(nil, Options{})
	h.SelfHealSingle("k", "corrupt")
	h.BulkRejected("ns", 1, "corrupt")
	h.ProviderSetRejected("k", false)
	h.ProviderError("del", "k", nil)
}
