package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPreInitLoggerUsesConfiguredHandler(t *testing.T) {
	logger := L("display.catalog")

	var buf bytes.Buffer
	Init("text", "info", &buf)
	t.Cleanup(func() { Init("text", "info", nil) })

	logger.Info("enumerated displays", KeyDisplayID, 69733248)

	out := buf.String()
	if !strings.Contains(out, `msg="enumerated displays"`) {
		t.Fatalf("expected message, got: %s", out)
	}
	if !strings.Contains(out, "component=display.catalog") {
		t.Fatalf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "displayId=69733248") {
		t.Fatalf("expected display id field, got: %s", out)
	}
}

func TestPreInitLoggerRespectsConfiguredLevel(t *testing.T) {
	logger := L("display.selector")

	var buf bytes.Buffer
	Init("text", "warn", &buf)
	t.Cleanup(func() { Init("text", "info", nil) })

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info log should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn log should be emitted: %s", out)
	}
}

func TestInitJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init("JSON", "debug", &buf)
	t.Cleanup(func() { Init("text", "info", nil) })

	L("display.capture").Debug("configured", "width", 2880)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", buf.String(), err)
	}
	if entry[KeyComponent] != "display.capture" {
		t.Fatalf("component = %v, want display.capture", entry[KeyComponent])
	}
	if entry["width"] != float64(2880) {
		t.Fatalf("width = %v, want 2880", entry["width"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		" WARN ":  "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"":        "INFO",
		"verbose": "INFO",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected default logger")
	}

	logger := L("cli")
	ctx := NewContext(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatal("expected logger stored in context")
	}
}

func TestRotatingWriterRotatesAndKeepsBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "display.log")
	rw, err := NewRotatingWriter(path, 1, 2)
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}
	t.Cleanup(func() { rw.Close() })
	rw.maxSize = 16

	for _, line := range []string{"0123456789\n", "abcdefghij\n", "ABCDEFGHIJ\n", "klmnopqrst\n"} {
		if _, err := rw.Write([]byte(line)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	current, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read current: %v", err)
	}
	if string(current) != "klmnopqrst\n" {
		t.Fatalf("current log = %q", current)
	}
	if b, _ := os.ReadFile(path + ".1"); string(b) != "ABCDEFGHIJ\n" {
		t.Fatalf("backup .1 = %q", b)
	}
	if b, _ := os.ReadFile(path + ".2"); string(b) != "abcdefghij\n" {
		t.Fatalf("backup .2 = %q", b)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("expected no third backup, stat err = %v", err)
	}
}

func TestOpenOutputWithoutPathUsesStderr(t *testing.T) {
	w, rw, err := OpenOutput("", 0, 0)
	if err != nil {
		t.Fatalf("OpenOutput: %v", err)
	}
	if w != os.Stderr || rw != nil {
		t.Fatalf("expected stderr only, got %T %v", w, rw)
	}
}

func TestOpenOutputTeesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.log")
	w, rw, err := OpenOutput(path, 0, 0)
	if err != nil {
		t.Fatalf("OpenOutput: %v", err)
	}
	t.Cleanup(func() { rw.Close() })

	if _, err := w.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := rw.Reopen(); err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "hello\n" {
		t.Fatalf("log file = %q", b)
	}
}

func TestInitSwitchesBetweenFormats(t *testing.T) {
	logger := L("display.catalog")
	t.Cleanup(func() { Init("text", "info", nil) })

	var text1, js, text2 bytes.Buffer
	Init("text", "info", &text1)
	logger.Info("first")
	Init("json", "info", &js)
	logger.Info("second")
	Init("text", "info", &text2)
	logger.Info("third")

	if !strings.Contains(text1.String(), "msg=first") {
		t.Fatalf("text output = %q", text1.String())
	}
	if !strings.Contains(js.String(), `"msg":"second"`) {
		t.Fatalf("json output = %q", js.String())
	}
	if !strings.Contains(text2.String(), "msg=third") {
		t.Fatalf("text output after json = %q", text2.String())
	}
}
