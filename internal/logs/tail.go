package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// attrPrefix marks a console-handler attribute line belonging to the
// preceding header line.
const attrPrefix = "    - "

const maxLineBytes = 1024 * 1024

// Record is one log entry: a single JSON line, or a console header with its
// attribute lines.
type Record struct {
	Lines []string
}

// String joins the record's lines.
func (r Record) String() string {
	return strings.Join(r.Lines, "\n")
}

// Filter selects records; nil keeps everything.
type Filter func(Record) bool

// Tail returns the last limit records of path that pass filter, plus the
// file size to resume following from. A missing file yields no records and
// offset zero.
func Tail(path string, limit int, filter Filter) ([]Record, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}
	if limit <= 0 {
		return nil, info.Size(), nil
	}

	ring := make([]Record, limit)
	count, idx := 0, 0
	offset, err := scanRecords(file, func(rec Record) {
		if filter != nil && !filter(rec) {
			return
		}
		ring[idx] = rec
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	})
	if err != nil {
		return nil, 0, err
	}

	records := make([]Record, count)
	if count == limit {
		for i := range count {
			records[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(records, ring[:count])
	}
	return records, offset, nil
}

// Follow polls path every interval and emits records appended after offset
// until ctx is done. A file shorter than offset was rotated or truncated and
// is re-read from the start. The returned error is nil when ctx ends.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, filter Filter, emit func(Record)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, filter, emit)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, filter Filter, emit func(Record)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < offset {
		offset = 0
	}
	if info.Size() == offset {
		return offset, nil
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}

	consumed, err := scanRecords(file, func(rec Record) {
		if filter == nil || filter(rec) {
			emit(rec)
		}
	})
	if err != nil {
		return offset, err
	}
	return offset + consumed, nil
}

// scanRecords groups lines into records and returns the bytes consumed. A
// trailing partial line is left unconsumed for the next read.
func scanRecords(r io.Reader, emit func(Record)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var (
		consumed int64
		current  Record
	)
	flush := func() {
		if len(current.Lines) > 0 {
			emit(current)
			current = Record{}
		}
	}

	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		if len(line) > maxLineBytes {
			line = line[:maxLineBytes]
		}
		text := strings.TrimRight(line, "\r\n")
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, attrPrefix) && len(current.Lines) > 0 {
			current.Lines = append(current.Lines, text)
			continue
		}
		flush()
		current.Lines = []string{text}
	}
	flush()
	return consumed, nil
}
