package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phonebook.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Store.File != "contacts.txt" {
		t.Errorf("default file = %q, want %q", cfg.Store.File, "contacts.txt")
	}
	if cfg.Display.PageSize != 10 {
		t.Errorf("default page size = %d, want 10", cfg.Display.PageSize)
	}
	if cfg.Search.Threshold != 70 {
		t.Errorf("default threshold = %d, want 70", cfg.Search.Threshold)
	}
	if cfg.FakeData.Locale != "ru" {
		t.Errorf("default locale = %q, want %q", cfg.FakeData.Locale, "ru")
	}
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeConfig(t, `
store:
  file: people.txt
  base_dir: /srv/phonebook
display:
  page_size: 25
search:
  threshold: 85
fakedata:
  locale: en
  seed: 42
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.File != "people.txt" {
		t.Errorf("file = %q, want %q", cfg.Store.File, "people.txt")
	}
	if cfg.Store.BaseDir != "/srv/phonebook" {
		t.Errorf("base dir = %q, want %q", cfg.Store.BaseDir, "/srv/phonebook")
	}
	if cfg.Display.PageSize != 25 {
		t.Errorf("page size = %d, want 25", cfg.Display.PageSize)
	}
	if cfg.Search.Threshold != 85 {
		t.Errorf("threshold = %d, want 85", cfg.Search.Threshold)
	}
	if cfg.FakeData.Locale != "en" || cfg.FakeData.Seed != 42 {
		t.Errorf("fakedata = %+v, want en/42", cfg.FakeData)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v, want debug/json", cfg.Log)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/phonebook.yaml")
	if err != nil {
		t.Fatalf("Load() should return defaults for missing file, got error: %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("Load(missing) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "{{invalid yaml")); err == nil {
		t.Fatal("Load(invalid YAML) should return error")
	}
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeConfig(t, `
display:
  pagesize: 5
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load() should return error for unknown field 'pagesize'")
	}
}

func TestLoad_CommentOnlyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, "# just a comment\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != DefaultConfig() {
		t.Errorf("Load(comment only) = %+v, want defaults", *cfg)
	}
}

func TestLoadLayered_Priority(t *testing.T) {
	// Given a user layer that sets file and page size, and a project layer
	// that overrides only the page size
	user := writeConfig(t, `
store:
  file: user.txt
display:
  page_size: 5
`)
	project := writeConfig(t, `
display:
  page_size: 20
`)

	// When both are loaded in order
	cfg, err := LoadLayered(user, project, "", "/nonexistent/phonebook.yaml")
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}

	// Then later layers win and untouched fields keep earlier values
	if cfg.Store.File != "user.txt" {
		t.Errorf("file = %q, want %q", cfg.Store.File, "user.txt")
	}
	if cfg.Display.PageSize != 20 {
		t.Errorf("page size = %d, want 20", cfg.Display.PageSize)
	}
	if cfg.Search.Threshold != 70 {
		t.Errorf("threshold = %d, want default 70", cfg.Search.Threshold)
	}
}

func TestLoadLayered_ZeroValueOverrides(t *testing.T) {
	path := writeConfig(t, `
search:
  threshold: 0
`)
	cfg, err := LoadLayered(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.Threshold != 0 {
		t.Errorf("threshold = %d, want explicit 0", cfg.Search.Threshold)
	}
}

func TestLoadLayered_InvalidLayer(t *testing.T) {
	if _, err := LoadLayered(writeConfig(t, "log: [")); err == nil {
		t.Fatal("LoadLayered() should return error for invalid layer")
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		wantErr bool
		check   func(*testing.T, Config)
	}{
		{
			name: "PHONEBOOK_FILE overrides file",
			envs: map[string]string{"PHONEBOOK_FILE": "env.txt"},
			check: func(t *testing.T, c Config) {
				if c.Store.File != "env.txt" {
					t.Errorf("file = %q, want %q", c.Store.File, "env.txt")
				}
			},
		},
		{
			name: "PHONEBOOK_BASE_DIR overrides base dir",
			envs: map[string]string{"PHONEBOOK_BASE_DIR": "/data"},
			check: func(t *testing.T, c Config) {
				if c.Store.BaseDir != "/data" {
					t.Errorf("base dir = %q, want %q", c.Store.BaseDir, "/data")
				}
			},
		},
		{
			name: "PHONEBOOK_PAGE_SIZE overrides page size",
			envs: map[string]string{"PHONEBOOK_PAGE_SIZE": "3"},
			check: func(t *testing.T, c Config) {
				if c.Display.PageSize != 3 {
					t.Errorf("page size = %d, want 3", c.Display.PageSize)
				}
			},
		},
		{
			name: "PHONEBOOK_SEARCH_THRESHOLD overrides threshold",
			envs: map[string]string{"PHONEBOOK_SEARCH_THRESHOLD": "90"},
			check: func(t *testing.T, c Config) {
				if c.Search.Threshold != 90 {
					t.Errorf("threshold = %d, want 90", c.Search.Threshold)
				}
			},
		},
		{
			name: "PHONEBOOK_LOG_LEVEL overrides level",
			envs: map[string]string{"PHONEBOOK_LOG_LEVEL": "debug"},
			check: func(t *testing.T, c Config) {
				if c.Log.Level != "debug" {
					t.Errorf("level = %q, want %q", c.Log.Level, "debug")
				}
			},
		},
		{
			name:    "invalid PHONEBOOK_PAGE_SIZE returns error",
			envs:    map[string]string{"PHONEBOOK_PAGE_SIZE": "many"},
			wantErr: true,
		},
		{
			name:    "invalid PHONEBOOK_SEARCH_THRESHOLD returns error",
			envs:    map[string]string{"PHONEBOOK_SEARCH_THRESHOLD": "high"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			err := cfg.ApplyEnv()

			if tt.wantErr {
				if err == nil {
					t.Fatal("ApplyEnv() should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnv() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", modify: func(*Config) {}},
		{name: "empty file", modify: func(c *Config) { c.Store.File = "" }, wantErr: true},
		{name: "zero page size", modify: func(c *Config) { c.Display.PageSize = 0 }, wantErr: true},
		{name: "negative threshold", modify: func(c *Config) { c.Search.Threshold = -1 }, wantErr: true},
		{name: "threshold above 100", modify: func(c *Config) { c.Search.Threshold = 101 }, wantErr: true},
		{name: "threshold 100", modify: func(c *Config) { c.Search.Threshold = 100 }},
		{name: "unknown locale", modify: func(c *Config) { c.FakeData.Locale = "de" }, wantErr: true},
		{name: "en locale", modify: func(c *Config) { c.FakeData.Locale = "en" }},
		{name: "unknown log format", modify: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
		{name: "empty log format", modify: func(c *Config) { c.Log.Format = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
