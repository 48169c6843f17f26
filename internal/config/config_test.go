package config

import (
	"os"
	"path/filepath"
	"testing"
)

// Notes:
// - White-box testing (package config) to test internal parseFile function.
// - Uses t.TempDir() + t.Setenv("XDG_CONFIG_HOME") for I/O isolation.
// - Tests using t.Setenv are NOT parallel (incompatible with t.Parallel).

// writeConfigFile creates a config file in the given directory.
func writeConfigFile(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, "audiocaps-download")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil { // #nosec G306
		t.Fatalf("failed to write config file: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv(EnvDataRoot, "")
	t.Setenv(EnvWorkers, "")

	writeConfigFile(t, tmp, "data-root=/data/audiocaps\nworkers=8\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataRoot != "/data/audiocaps" {
		t.Errorf("DataRoot = %q, want %q", cfg.DataRoot, "/data/audiocaps")
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvDataRoot, "")
	t.Setenv(EnvWorkers, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataRoot != "" || cfg.Workers != 0 {
		t.Errorf("Load() = %+v, want zero config", cfg)
	}
}

func TestLoadEnvFallback(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvDataRoot, "/env/root")
	t.Setenv(EnvWorkers, "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataRoot != "/env/root" {
		t.Errorf("DataRoot = %q, want env fallback", cfg.DataRoot)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
}

func TestLoadFileBeatsEnv(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv(EnvDataRoot, "/env/root")
	t.Setenv(EnvWorkers, "4")

	writeConfigFile(t, tmp, "data-root=/file/root\nworkers=2\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataRoot != "/file/root" {
		t.Errorf("DataRoot = %q, want file value over env", cfg.DataRoot)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want file value over env", cfg.Workers)
	}
}

func TestLoadInvalidWorkers(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv(EnvDataRoot, "")
	t.Setenv(EnvWorkers, "")

	writeConfigFile(t, tmp, "workers=many\n")

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error for non-integer workers")
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    map[string]string
		wantErr bool
	}{
		{
			name:    "key value pairs",
			content: "data-root=/data\nworkers=8\n",
			want:    map[string]string{"data-root": "/data", "workers": "8"},
		},
		{
			name:    "comments and blanks ignored",
			content: "# comment\n\ndata-root=/data\n",
			want:    map[string]string{"data-root": "/data"},
		},
		{
			name:    "whitespace trimmed",
			content: "  data-root  =  /data  \n",
			want:    map[string]string{"data-root": "/data"},
		},
		{
			name:    "value may contain equals",
			content: "data-root=/data=weird\n",
			want:    map[string]string{"data-root": "/data=weird"},
		},
		{
			name:    "invalid syntax",
			content: "just some text\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil { // #nosec G306
				t.Fatal(err)
			}

			got, err := parseFile(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("parseFile() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFile() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseFile() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("parseFile()[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestSaveAndGet(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := Save(KeyDataRoot, "/data/audiocaps"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := Save(KeyWorkers, "8"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Get(KeyDataRoot)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "/data/audiocaps" {
		t.Errorf("Get(%s) = %q, want %q", KeyDataRoot, got, "/data/audiocaps")
	}

	// Saving one key preserves the other.
	if err := Save(KeyDataRoot, "/other"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	workers, err := Get(KeyWorkers)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if workers != "8" {
		t.Errorf("Get(%s) = %q after unrelated Save, want %q", KeyWorkers, workers, "8")
	}
}

func TestGetMissingKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	got, err := Get(KeyDataRoot)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "" {
		t.Errorf("Get() = %q, want empty for unset key", got)
	}
}

func TestList(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	writeConfigFile(t, tmp, "data-root=/data\nworkers=3\n")

	got, err := List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[KeyDataRoot] != "/data" || got[KeyWorkers] != "3" {
		t.Errorf("List() = %v", got)
	}
}

func TestExpandPath(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/data", filepath.Join(home, "data")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEnsureDataRoot(t *testing.T) {
	t.Parallel()

	t.Run("creates missing directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "new", "root")
		if err := EnsureDataRoot(dir); err != nil {
			t.Fatalf("EnsureDataRoot() error = %v", err)
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Error("EnsureDataRoot() did not create the directory")
		}
	})

	t.Run("accepts existing directory", func(t *testing.T) {
		t.Parallel()

		if err := EnsureDataRoot(t.TempDir()); err != nil {
			t.Errorf("EnsureDataRoot() error = %v", err)
		}
	})

	t.Run("rejects file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
		if err := EnsureDataRoot(path); err == nil {
			t.Error("EnsureDataRoot() error = nil for a regular file")
		}
	})

	t.Run("rejects empty", func(t *testing.T) {
		t.Parallel()

		if err := EnsureDataRoot(""); err == nil {
			t.Error("EnsureDataRoot() error = nil for empty path")
		}
	})
}
