package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), FileName), nil)

	cfg, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InstallPath() != DefaultInstallPath {
		t.Errorf("InstallPath() = %q, want %q", cfg.InstallPath(), DefaultInstallPath)
	}
	if cfg.ThreadSafetyMode() != NonSafe {
		t.Errorf("ThreadSafetyMode() = %v, want NonSafe", cfg.ThreadSafetyMode())
	}
}

func TestStore_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	store := NewStore(path, nil)

	want := &Config{Path: `C:\php`, ThreadSafety: Safe}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the config file, found %d entries", len(entries))
	}
}

func TestStore_LoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(`pwin = {`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewStore(path, nil).Load(context.Background()); err == nil {
		t.Error("expected parse error")
	}
}

func TestStore_LoadUnreadable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory read semantics differ on windows")
	}

	// A directory at the config path is a read failure other than "missing".
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := NewStore(path, nil).Load(context.Background()); err == nil {
		t.Error("expected read error")
	}
}

func TestStore_LegacyTOML(t *testing.T) {
	tests := []struct {
		name   string
		legacy string
		want   Config
	}{
		{
			name:   "both keys",
			legacy: "path = 'D:\\php'\nthread_safety = \"Safe\"\n",
			want:   Config{Path: `D:\php`, ThreadSafety: Safe},
		},
		{
			name:   "thread safety only",
			legacy: "thread_safety = \"NonSafe\"\n",
			want:   Config{ThreadSafety: NonSafe},
		},
		{
			name:   "empty file",
			legacy: "",
			want:   Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, LegacyFileName), []byte(tt.legacy), 0o644); err != nil {
				t.Fatal(err)
			}

			cfg, err := NewStore(filepath.Join(dir, FileName), nil).Load(context.Background())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if *cfg != tt.want {
				t.Errorf("Load() = %+v, want %+v", cfg, tt.want)
			}
		})
	}
}

func TestStore_LuaWinsOverLegacy(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, LegacyFileName), []byte("thread_safety = \"Safe\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(filepath.Join(dir, FileName), nil)
	if err := store.Save(&Config{Path: `C:\php`, ThreadSafety: NonSafe}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cfg, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ThreadSafetyMode() != NonSafe || cfg.InstallPath() != `C:\php` {
		t.Errorf("Load() = %+v, want the Lua config", cfg)
	}
}

func TestStore_LegacyInvalid(t *testing.T) {
	tests := map[string]string{
		"syntax":        "path = \n",
		"thread safety": "thread_safety = \"Both\"\n",
	}

	for name, legacy := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, LegacyFileName), []byte(legacy), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := NewStore(filepath.Join(dir, FileName), nil).Load(context.Background()); err == nil {
				t.Error("expected legacy parse error")
			}
		})
	}
}
