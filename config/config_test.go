package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/dynamic/diag"
	"github.com/chazu/dynamic/foundation"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[logging]
enabled = true
verbosity = 2
path = "logs/dynamic.log"

[process]
name = "worker"
arguments = ["worker", "--fast"]
environment = { HOME = "/home/worker" }

[defaults]
path = "state/defaults.db"

[formatter]
time-zone = "UTC"

[protobuf]
import-paths = ["proto"]
files = ["shop.proto"]
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !c.Logging.Enabled || c.Logging.Verbosity != 2 {
		t.Errorf("logging = %+v", c.Logging)
	}
	if c.Process.Name != "worker" {
		t.Errorf("process name = %q, want worker", c.Process.Name)
	}
	if len(c.Process.Arguments) != 2 || c.Process.Arguments[1] != "--fast" {
		t.Errorf("process arguments = %v", c.Process.Arguments)
	}
	if c.Process.Environment["HOME"] != "/home/worker" {
		t.Errorf("process environment = %v", c.Process.Environment)
	}
	if c.Formatter.TimeZone != "UTC" {
		t.Errorf("time zone = %q, want UTC", c.Formatter.TimeZone)
	}
	if len(c.Protobuf.Files) != 1 || c.Protobuf.ImportPaths[0] != "proto" {
		t.Errorf("protobuf = %+v", c.Protobuf)
	}

	abs, _ := filepath.Abs(dir)
	if c.Dir != abs {
		t.Errorf("dir = %q, want %q", c.Dir, abs)
	}
	if got, want := c.Resolve(c.Defaults.Path), filepath.Join(abs, "state", "defaults.db"); got != want {
		t.Errorf("resolved defaults path = %q, want %q", got, want)
	}
	if got := c.Resolve("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path resolved to %q", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[logging]\nenabled = false\n")

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Logging.Verbosity != 1 {
		t.Errorf("default verbosity = %d, want 1", c.Logging.Verbosity)
	}
	if c.Formatter.TimeZone != "UTC" {
		t.Errorf("default time zone = %q, want UTC", c.Formatter.TimeZone)
	}
	if c.Logger() != diag.Nop {
		t.Error("disabled logging should return diag.Nop")
	}

	d := Default()
	if d.Formatter.TimeZone != "UTC" || d.Logging.Enabled {
		t.Errorf("Default() = %+v", d)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected an error for a missing file")
	}

	dir := t.TempDir()
	writeConfig(t, dir, "[logging\nenabled = ")
	if _, err := Load(dir); err == nil {
		t.Error("expected a parse error")
	}
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, dir, "[process]\nname = \"found\"\n")

	c, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c == nil {
		t.Fatal("expected a config, got nil")
	}
	if c.Process.Name != "found" {
		t.Errorf("process name = %q, want found", c.Process.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	c, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	// A temp dir may sit under a directory holding dynamic.toml; only
	// check that nothing was invented.
	if c != nil && c.Dir == "" {
		t.Error("found config without a directory")
	}
}

func TestFoundationOptions(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[process]
name = "configured"
arguments = ["configured", "-x"]

[defaults]
path = "prefs/defaults.db"
`)
	c, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	opts, err := c.FoundationOptions()
	if err != nil {
		t.Fatalf("FoundationOptions failed: %v", err)
	}
	f := foundation.New(opts...)
	defer f.Close()

	if got := f.ProcessInfo().Name(); got != "configured" {
		t.Errorf("process name = %q, want configured", got)
	}
	if err := f.Defaults().SetObject("k", "v"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "prefs", "defaults.db")); err != nil {
		t.Errorf("defaults database not created: %v", err)
	}
}

func TestFoundationOptionsBadTimeZone(t *testing.T) {
	c := Default()
	c.Formatter.TimeZone = "Not/AZone"
	if _, err := c.FoundationOptions(); err == nil {
		t.Error("expected an error for an unknown time zone")
	}
}

func TestProtoFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "proto"), 0755); err != nil {
		t.Fatal(err)
	}
	src := "syntax = \"proto3\";\npackage ping;\nmessage Ping { string id = 1; }\n"
	if err := os.WriteFile(filepath.Join(dir, "proto", "ping.proto"), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, dir, "[protobuf]\nimport-paths = [\"proto\"]\nfiles = [\"ping.proto\"]\n")

	c, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	fds, err := c.ProtoFiles()
	if err != nil {
		t.Fatalf("ProtoFiles failed: %v", err)
	}
	if len(fds) != 1 || fds[0].FindMessage("ping.Ping") == nil {
		t.Errorf("loaded %d files without ping.Ping", len(fds))
	}

	if fds, err := Default().ProtoFiles(); err != nil || fds != nil {
		t.Errorf("Default().ProtoFiles() = %v, %v", fds, err)
	}
}
