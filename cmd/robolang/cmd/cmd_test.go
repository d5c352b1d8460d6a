package cmd

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "robolang.toml", "[general]\nlog_level = \"error\"\n\n[history]\nenabled = false\n")
	good := writeFile(t, dir, "good.robo", "function main() { repeat (4) { move(); turnLeft(); } }")
	bad := writeFile(t, dir, "bad.robo", "function main() { move() }")

	rootCmd.SetArgs([]string{"--config", cfg, "check", "--no-color", good})
	if err := rootCmd.Execute(); err != nil {
		t.Errorf("Expected good.robo to pass, got %v", err)
	}

	rootCmd.SetArgs([]string{"--config", cfg, "check", "--no-color", good, bad})
	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "1 of 2 files rejected") {
		t.Errorf("Expected one rejection, got %v", err)
	}

	rootCmd.SetArgs([]string{"--config", cfg, "check", "--no-color", filepath.Join(dir, "missing.robo")})
	if err := rootCmd.Execute(); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestInitialFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "robolang.toml", "[history]\nenabled = false\n")
	rootCmd.SetArgs([]string{"--config", cfg, "version"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}

	writeFile(t, dir, "a.robo", "")
	writeFile(t, dir, "b.robo", "")
	writeFile(t, dir, "notes.txt", "")
	os.Mkdir(filepath.Join(dir, "sub.robo"), 0755)

	files := initialFiles(dir)
	sort.Strings(files)
	if len(files) != 2 || filepath.Base(files[0]) != "a.robo" || filepath.Base(files[1]) != "b.robo" {
		t.Errorf("Unexpected files %v", files)
	}

	single := initialFiles(filepath.Join(dir, "notes.txt"))
	if len(single) != 1 {
		t.Errorf("An explicit file is always included, got %v", single)
	}
}

func TestStatusCommand(t *testing.T) {
	dir := t.TempDir()
	db := filepath.ToSlash(filepath.Join(dir, "history.db"))
	cfg := writeFile(t, dir, "robolang.toml", "[general]\nlog_level = \"error\"\n\n[history]\nenabled = true\npath = \""+db+"\"\n")

	rootCmd.SetArgs([]string{"--config", cfg, "status", "--no-color"})
	if err := rootCmd.Execute(); err != nil {
		t.Errorf("Expected healthy status, got %v", err)
	}

	broken := writeFile(t, dir, "broken.toml", "[general]\nlog_level = \"error\"\n\n[history]\nenabled = false\n\n[catalog]\npath = \""+
		filepath.ToSlash(filepath.Join(dir, "missing.yaml"))+"\"\n")
	rootCmd.SetArgs([]string{"--config", broken, "status", "--no-color"})
	if err := rootCmd.Execute(); err == nil {
		t.Error("Expected an unhealthy status for a missing catalog")
	}
}
