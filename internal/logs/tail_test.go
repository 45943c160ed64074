package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"podopt/internal/logs"
)

const consoleLog = `2026-10-16 10:00:00 INFO [daemon] – podopt daemon started
    - address: 127.0.0.1:7590
2026-10-16 10:00:05 INFO [optimizer] Episode #12 (prod-1) – production started
    - bitrate: 128
2026-10-16 10:00:06 WARN [optimizer] Episode #123 – production_cleanup_failed
2026-10-16 10:01:00 ERROR [webhook] Episode #12 (prod-1) – download failed
    - error: boom
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "podopt.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailGroupsConsoleRecords(t *testing.T) {
	path := writeLog(t, consoleLog)

	records, offset, err := logs.Tail(path, 2, nil)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if offset != int64(len(consoleLog)) {
		t.Fatalf("offset = %d, want %d", offset, len(consoleLog))
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %#v", records)
	}
	if !strings.Contains(records[0].String(), "production_cleanup_failed") {
		t.Fatalf("unexpected first record %q", records[0])
	}
	if len(records[1].Lines) != 2 || records[1].Lines[1] != "    - error: boom" {
		t.Fatalf("expected attribute line grouped with header, got %#v", records[1].Lines)
	}
}

func TestTailFilters(t *testing.T) {
	path := writeLog(t, consoleLog)

	records, _, err := logs.Tail(path, 10, logs.EpisodeFilter(12))
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("episode 12 filter matched %d records (episode 123 must not match)", len(records))
	}

	records, _, err = logs.Tail(path, 10, logs.All(logs.EpisodeFilter(12), logs.LevelFilter("warn")))
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(records) != 1 || !strings.Contains(records[0].Lines[0], "download failed") {
		t.Fatalf("unexpected combined filter result %#v", records)
	}
}

func TestEpisodeFilterJSON(t *testing.T) {
	filter := logs.EpisodeFilter(7)
	tests := []struct {
		line string
		want bool
	}{
		{`{"ts":"x","level":"info","msg":"m","episode_id":7}`, true},
		{`{"ts":"x","level":"info","msg":"m","episode_id":7,"production_id":"p"}`, true},
		{`{"ts":"x","level":"info","msg":"m","episode_id":70}`, false},
		{`{"ts":"x","level":"info","msg":"m"}`, false},
	}
	for _, tt := range tests {
		if got := filter(logs.Record{Lines: []string{tt.line}}); got != tt.want {
			t.Errorf("filter(%s) = %v, want %v", tt.line, got, tt.want)
		}
	}
	if !logs.LevelFilter("error")(logs.Record{Lines: []string{`{"level":"error","msg":"x"}`}}) {
		t.Error("expected JSON error record to pass error level filter")
	}
}

func TestTailMissingFileAndZeroLimit(t *testing.T) {
	records, offset, err := logs.Tail(filepath.Join(t.TempDir(), "missing.log"), 5, nil)
	if err != nil || records != nil || offset != 0 {
		t.Fatalf("unexpected missing-file result %v %d %v", records, offset, err)
	}

	path := writeLog(t, consoleLog)
	records, offset, err = logs.Tail(path, 0, nil)
	if err != nil || len(records) != 0 || offset != int64(len(consoleLog)) {
		t.Fatalf("unexpected zero-limit result %v %d %v", records, offset, err)
	}
}

func TestFollowEmitsAppendedRecords(t *testing.T) {
	path := writeLog(t, "2026-10-16 10:00:00 INFO – start\n")
	_, offset, err := logs.Tail(path, 1, nil)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var (
		mu   sync.Mutex
		seen []string
	)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 10*time.Millisecond, nil, func(rec logs.Record) {
			mu.Lock()
			seen = append(seen, rec.Lines[0])
			mu.Unlock()
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("2026-10-16 10:00:01 INFO – later\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for followed record")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || !strings.HasSuffix(seen[0], "later") {
		t.Fatalf("unexpected followed records %#v", seen)
	}
}

func TestFollowRestartsAfterTruncation(t *testing.T) {
	path := writeLog(t, consoleLog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan string, 4)
	go func() {
		_ = logs.Follow(ctx, path, int64(len(consoleLog)), 10*time.Millisecond, nil, func(rec logs.Record) {
			got <- rec.Lines[0]
		})
	}()

	if err := os.WriteFile(path, []byte("2026-10-16 11:00:00 INFO – rotated\n"), 0o644); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	select {
	case line := <-got:
		if !strings.HasSuffix(line, "rotated") {
			t.Fatalf("unexpected line %q", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected truncated log to be re-read")
	}
}
