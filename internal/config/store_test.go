package config

import (
	"os"
	"path/filepath"
	"testing"

	"mineru-cli/internal/domain"
)

// TestJSONStoreLoadMissingReturnsEmpty checks first-run behavior.
func TestJSONStoreLoadMissingReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != (domain.Settings{}) {
		t.Fatalf("settings = %+v, want empty", got)
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.json")
	store := NewJSONStore(path)
	want := domain.Settings{
		Token:     "tok-123",
		OutputDir: "/out",
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestJSONStoreLoadCorruptBehavesAsEmpty checks a damaged config file
// never blocks the token prompt.
func TestJSONStoreLoadCorruptBehavesAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != (domain.Settings{}) {
		t.Fatalf("settings = %+v, want empty", got)
	}
}

// fakeStore is an in-memory Store for resolver tests.
type fakeStore struct {
	settings domain.Settings
	loadErr  error
	saved    []domain.Settings
}

func (f *fakeStore) Load() (domain.Settings, error) { return f.settings, f.loadErr }

func (f *fakeStore) Save(cfg domain.Settings) error {
	f.settings = cfg
	f.saved = append(f.saved, cfg)
	return nil
}

func (f *fakeStore) Path() string { return "/tmp/config.json" }

// newTestResolver builds a resolver with a controlled environment.
func newTestResolver(store Store, env map[string]string) Resolver {
	return Resolver{
		Store:  store,
		Getenv: func(key string) string { return env[key] },
	}
}

// TestResolverTokenPrecedence verifies env vars beat the config file.
func TestResolverTokenPrecedence(t *testing.T) {
	store := &fakeStore{settings: domain.Settings{Token: "from-config"}}

	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"primary env wins", map[string]string{EnvToken: "primary", EnvTokenAlt: "alt"}, "primary"},
		{"alt env wins over config", map[string]string{EnvTokenAlt: "alt"}, "alt"},
		{"config fallback", map[string]string{}, "from-config"},
	}

	for _, tc := range cases {
		got, err := newTestResolver(store, tc.env).Token()
		if err != nil {
			t.Fatalf("%s: Token() error = %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: token = %q, want %q", tc.name, got, tc.want)
		}
	}
}

// TestResolverOutputDirPrecedence verifies env, config, then default.
func TestResolverOutputDirPrecedence(t *testing.T) {
	store := &fakeStore{settings: domain.Settings{OutputDir: "/from-config"}}

	got, err := newTestResolver(store, map[string]string{EnvOutputDir: "/from-env"}).OutputDir()
	if err != nil {
		t.Fatalf("OutputDir() error = %v", err)
	}
	if got != "/from-env" {
		t.Fatalf("output dir = %q, want /from-env", got)
	}

	got, err = newTestResolver(store, map[string]string{}).OutputDir()
	if err != nil {
		t.Fatalf("OutputDir() error = %v", err)
	}
	if got != "/from-config" {
		t.Fatalf("output dir = %q, want /from-config", got)
	}

	got, err = newTestResolver(&fakeStore{}, map[string]string{}).OutputDir()
	if err != nil {
		t.Fatalf("OutputDir() error = %v", err)
	}
	if got != DefaultOutputDir {
		t.Fatalf("output dir = %q, want %q", got, DefaultOutputDir)
	}
}

// TestResolverSaveTokenPreservesOutputDir checks partial updates.
func TestResolverSaveTokenPreservesOutputDir(t *testing.T) {
	store := &fakeStore{settings: domain.Settings{Token: "old", OutputDir: "/keep"}}

	if err := newTestResolver(store, nil).SaveToken("new"); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}
	if store.settings.Token != "new" {
		t.Fatalf("token = %q, want new", store.settings.Token)
	}
	if store.settings.OutputDir != "/keep" {
		t.Fatalf("output dir = %q, want /keep", store.settings.OutputDir)
	}
}
