package domain

import (
	"regexp"
	"strings"
)

// LogEntry is one recorded log line. Lines written as "LEVEL:logger:message"
// are split into their parts; anything else is kept whole as the message.
type LogEntry struct {
	Level   string
	Logger  string
	Message string
}

var logLinePattern = regexp.MustCompile(`(?s)^([A-Z]+):([a-z_.]+):(.*)$`)

func ParseLogLine(line string) LogEntry {
	m := logLinePattern.FindStringSubmatch(line)
	if m == nil {
		return LogEntry{Message: line}
	}
	return LogEntry{Level: m[1], Logger: m[2], Message: m[3]}
}

// ParseLogs parses every line, dropping blank ones.
func ParseLogs(lines []string) []LogEntry {
	entries := make([]LogEntry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, ParseLogLine(line))
	}
	return entries
}
