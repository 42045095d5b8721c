package domain

import (
	"reflect"
	"testing"
)

func TestParseLogLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected LogEntry
	}{
		{name: "structured", line: "INFO:trainer.fit:epoch 1 done", expected: LogEntry{Level: "INFO", Logger: "trainer.fit", Message: "epoch 1 done"}},
		{name: "message keeps colons", line: "ERROR:loader:path: missing", expected: LogEntry{Level: "ERROR", Logger: "loader", Message: "path: missing"}},
		{name: "multiline message", line: "WARNING:io:first\nsecond", expected: LogEntry{Level: "WARNING", Logger: "io", Message: "first\nsecond"}},
		{name: "plain text", line: "epoch 2", expected: LogEntry{Message: "epoch 2"}},
		{name: "lowercase level is plain", line: "info:x:y", expected: LogEntry{Message: "info:x:y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLogLine(tt.line); got != tt.expected {
				t.Errorf("ParseLogLine(%q) = %+v, want %+v", tt.line, got, tt.expected)
			}
		})
	}
}

func TestParseLogs_SkipsBlankLines(t *testing.T) {
	got := ParseLogs([]string{"DEBUG:a:b", "", "  ", "tail"})
	want := []LogEntry{{Level: "DEBUG", Logger: "a", Message: "b"}, {Message: "tail"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseLogs = %+v, want %+v", got, want)
	}
	if got := ParseLogs(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
