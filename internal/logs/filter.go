package logs

import (
	"strconv"
	"strings"
)

// EpisodeFilter keeps records about one episode in either log format.
func EpisodeFilter(id int64) Filter {
	num := strconv.FormatInt(id, 10)
	jsonKey := `"episode_id":` + num
	console := "Episode #" + num
	return func(rec Record) bool {
		if len(rec.Lines) == 0 {
			return false
		}
		header := rec.Lines[0]
		if idx := strings.Index(header, jsonKey); idx >= 0 {
			rest := header[idx+len(jsonKey):]
			return rest == "" || rest[0] == ',' || rest[0] == '}'
		}
		if idx := strings.Index(header, console); idx >= 0 {
			rest := header[idx+len(console):]
			return rest == "" || rest[0] == ' '
		}
		return false
	}
}

// LevelFilter keeps records at or above min, matching the console level
// label or the JSON "level" field.
func LevelFilter(min string) Filter {
	rank := levelRank(min)
	if rank <= 0 {
		return nil
	}
	return func(rec Record) bool {
		if len(rec.Lines) == 0 {
			return false
		}
		return recordLevel(rec.Lines[0]) >= rank
	}
}

// All combines filters; nil entries are skipped.
func All(filters ...Filter) Filter {
	var active []Filter
	for _, f := range filters {
		if f != nil {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return func(rec Record) bool {
		for _, f := range active {
			if !f(rec) {
				return false
			}
		}
		return true
	}
}

func levelRank(level string) int {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return 0
	case "INFO":
		return 1
	case "WARN", "WARNING":
		return 2
	case "ERROR":
		return 3
	default:
		return 0
	}
}

// recordLevel reads the JSON "level" field or the console label that
// follows the date and time.
func recordLevel(header string) int {
	if strings.HasPrefix(header, "{") {
		for _, level := range []string{"error", "warn", "info", "debug"} {
			if strings.Contains(header, `"level":"`+level+`"`) {
				return levelRank(level)
			}
		}
		return 1
	}
	fields := strings.Fields(header)
	if len(fields) < 3 {
		return 1
	}
	return levelRank(fields[2])
}
