package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig drops a config file pointing at temp directories and
// returns its path.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[pipeline]
item_delay_ms = 0
consistency_retry_delay_ms = 0
`, filepath.Join(base, "data"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCommand(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeIngestFile(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "concerts.json")
	payload := `[
		{"id": "k-100", "title": "베토벤 교향곡 9번", "synopsis": "합창 교향곡", "performers": "시립교향악단"},
		{"id": "k-101", "title": "쇼팽 독주회", "intro_images": ["http://example.com/poster.jpg"]}
	]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write ingest file: %v", err)
	}
	return path
}

func TestIngestAndQueueStatus(t *testing.T) {
	configPath := writeTestConfig(t)
	ingestPath := writeIngestFile(t, t.TempDir())

	out, err := runCommand(t, configPath, "ingest", ingestPath)
	if err != nil {
		t.Fatalf("ingest: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Ingested 2 records (0 already present)") {
		t.Fatalf("ingest output = %q", out)
	}

	// Re-ingesting the same file is idempotent.
	out, err = runCommand(t, configPath, "ingest", ingestPath)
	if err != nil {
		t.Fatalf("re-ingest: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Ingested 0 records (2 already present)") {
		t.Fatalf("re-ingest output = %q", out)
	}

	out, err = runCommand(t, configPath, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v\n%s", err, out)
	}
	if !strings.Contains(out, "pending") || !strings.Contains(out, "2") {
		t.Fatalf("queue status output = %q", out)
	}
}

func TestQueueListFiltersByStatus(t *testing.T) {
	configPath := writeTestConfig(t)
	ingestPath := writeIngestFile(t, t.TempDir())

	if out, err := runCommand(t, configPath, "ingest", ingestPath); err != nil {
		t.Fatalf("ingest: %v\n%s", err, out)
	}

	out, err := runCommand(t, configPath, "queue", "list", "--status", "pending")
	if err != nil {
		t.Fatalf("queue list: %v\n%s", err, out)
	}
	if !strings.Contains(out, "베토벤 교향곡 9번") {
		t.Fatalf("queue list output = %q", out)
	}

	out, err = runCommand(t, configPath, "queue", "list", "--status", "failed")
	if err != nil {
		t.Fatalf("queue list failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("queue list failed output = %q", out)
	}

	if _, err := runCommand(t, configPath, "queue", "list", "--status", "bogus"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestQueueClearRequiresForce(t *testing.T) {
	configPath := writeTestConfig(t)
	ingestPath := writeIngestFile(t, t.TempDir())

	if out, err := runCommand(t, configPath, "ingest", ingestPath); err != nil {
		t.Fatalf("ingest: %v\n%s", err, out)
	}

	if _, err := runCommand(t, configPath, "queue", "clear"); err == nil {
		t.Fatal("expected clear without --force to fail")
	}

	out, err := runCommand(t, configPath, "queue", "clear", "--force")
	if err != nil {
		t.Fatalf("queue clear: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Cleared 2 queue items") {
		t.Fatalf("queue clear output = %q", out)
	}

	out, err = runCommand(t, configPath, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("queue status output = %q", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v\n%s", err, out.String())
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[llm]") {
		t.Fatalf("sample config missing llm section:\n%s", data)
	}

	// A second init without --overwrite refuses to clobber the file.
	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when target exists")
	}
}
