//go:build !darwin || !cgo

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/breeze-rmm/displayhost/internal/config"
	"github.com/breeze-rmm/displayhost/internal/logging"
	"github.com/breeze-rmm/displayhost/internal/remote/desktop"
)

// writeConfig saves a JSON-logging config to a temp dir and returns the
// config and log file paths.
func writeConfig(t *testing.T, mutate func(*config.Config)) (string, string) {
	t.Helper()
	dir := t.TempDir()
	c := config.Default()
	c.LogFormat = "json"
	c.LogFile = filepath.Join(dir, "display.log")
	if mutate != nil {
		mutate(c)
	}
	path := filepath.Join(dir, "display.yaml")
	if err := config.SaveTo(c, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	return path, c.LogFile
}

// runCLI executes the root command and restores the package state that
// flags and setup leave behind.
func runCLI(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		if logFile != nil {
			logFile.Close()
		}
		cfgFile, outputFormat, fpsOverride, verbose = "", "", 0, false
		cfg, logFile = nil, nil
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		logging.Init("text", "info", nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func readLog(t *testing.T, path string) []map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestResolveCommandWithNonNumericConfiguredSelector(t *testing.T) {
	cfgPath, logPath := writeConfig(t, func(c *config.Config) { c.OutputName = "abc" })

	out, err := runCLI(t, cfgPath, "resolve", "-o", "json")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	var report resolveReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	want := resolveReport{Selector: "abc", DisplayID: 0, Fallback: true}
	if report != want {
		t.Fatalf("report = %+v, want %+v", report, want)
	}

	var warned bool
	for _, entry := range readLog(t, logPath) {
		if entry["msg"] == "config validation" && strings.Contains(fmt.Sprint(entry[logging.KeyError]), "not a display id") {
			warned = true
		}
	}
	if !warned {
		t.Fatal("expected the output_name warning in the JSON log file")
	}
}

func TestResolveCommandExplicitSelectorFallsBack(t *testing.T) {
	cfgPath, _ := writeConfig(t, nil)

	out, err := runCLI(t, cfgPath, "resolve", "1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out != "0 (selector \"1\" not found, using main display)\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestDisplaysCommandDegrades(t *testing.T) {
	cfgPath, _ := writeConfig(t, nil)

	out, err := runCLI(t, cfgPath, "displays")
	if err != nil {
		t.Fatalf("displays: %v", err)
	}
	if out != "" {
		t.Fatalf("expected no displays, got %q", out)
	}
}

func TestDisplaysVerboseReportsDegradation(t *testing.T) {
	cfgPath, _ := writeConfig(t, nil)

	out, err := runCLI(t, cfgPath, "displays", "-v", "-o", "json")
	if err != nil {
		t.Fatalf("displays -v: %v", err)
	}
	var report struct {
		MainID   uint32            `json:"mainDisplayId"`
		Displays []json.RawMessage `json:"displays"`
		Degraded string            `json:"degraded"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if report.MainID != 0 || len(report.Displays) != 0 || report.Degraded == "" {
		t.Fatalf("report = %+v", report)
	}
}

func TestOpenCommandReportsNotSupported(t *testing.T) {
	cfgPath, _ := writeConfig(t, nil)

	_, err := runCLI(t, cfgPath, "open", "7")
	if !errors.Is(err, desktop.ErrCaptureConfigurationFailed) {
		t.Fatalf("err = %v, want ErrCaptureConfigurationFailed", err)
	}
	if !errors.Is(err, desktop.ErrNotSupported) {
		t.Fatalf("err = %v, want ErrNotSupported cause", err)
	}
}

func TestFPSOverrideIsClamped(t *testing.T) {
	cfgPath, logPath := writeConfig(t, nil)

	if _, err := runCLI(t, cfgPath, "open", "--fps", "1000"); err == nil {
		t.Fatal("expected open to fail without a capture backend")
	}
	if cfg.TargetFPS != 240 {
		t.Fatalf("TargetFPS = %d, want clamped to 240", cfg.TargetFPS)
	}

	var warned bool
	for _, entry := range readLog(t, logPath) {
		if entry["msg"] == "config validation" && strings.Contains(fmt.Sprint(entry[logging.KeyError]), "target_fps 1000") {
			warned = true
		}
	}
	if !warned {
		t.Fatal("expected the fps clamp warning in the JSON log file")
	}
}

func TestOutputOverrideIsValidated(t *testing.T) {
	cfgPath, _ := writeConfig(t, nil)

	_, err := runCLI(t, cfgPath, "resolve", "-o", "xml")
	if err == nil || !strings.Contains(err.Error(), "output_format") {
		t.Fatalf("err = %v, want invalid output_format", err)
	}
	if cfg != nil {
		t.Fatal("setup should stop before installing config")
	}
}

func TestLoadConfigAppliesOverridesBeforeValidation(t *testing.T) {
	cfgPath, _ := writeConfig(t, nil)
	t.Cleanup(func() { cfgFile, outputFormat, fpsOverride = "", "", 0 })
	cfgFile = cfgPath
	fpsOverride = 0
	outputFormat = "YAML"

	loaded, warnings, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(warnings) != 0 || loaded.OutputFormat != "YAML" || loaded.TargetFPS != 60 {
		t.Fatalf("loaded = %+v, warnings = %v", loaded, warnings)
	}

	fpsOverride = -5
	if loaded, _, _ = loadConfig(); loaded.TargetFPS != 60 {
		t.Fatalf("non-positive --fps should be ignored, got %d", loaded.TargetFPS)
	}
}
