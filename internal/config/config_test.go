package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("CAREERS_API_TOKEN", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("Load() error = %v, want ErrMissingToken", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CAREERS_API_TOKEN", "secret")
	t.Setenv("CAREERS_API_BASE_URL", "")
	t.Setenv("CAREERS_PAGE_SIZE", "")
	t.Setenv("PORT", "")
	t.Setenv("FEED_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.BaseURL == "" || cfg.Port != "8080" || cfg.PageSize != 100 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Feed.JobBaseURL != cfg.Feed.Link {
		t.Errorf("JobBaseURL should default to Link, got %q vs %q", cfg.Feed.JobBaseURL, cfg.Feed.Link)
	}
}

func TestLoadBadPageSize(t *testing.T) {
	t.Setenv("CAREERS_API_TOKEN", "secret")
	t.Setenv("CAREERS_PAGE_SIZE", "fifty")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject a non-numeric page size")
	}
}

func TestLoadFeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.yml")
	data := []byte("title: Jobs at Acme\nlink: https://acme.example/careers\nlanguage: en-gb\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFeedFile(path)
	if err != nil {
		t.Fatalf("LoadFeedFile() failed: %v", err)
	}

	want := Feed{
		Title:    "Jobs at Acme",
		Link:     "https://acme.example/careers",
		Language: "en-gb",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("feed mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFeedFileMissing(t *testing.T) {
	if _, err := LoadFeedFile(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("LoadFeedFile() should fail for a missing file")
	}
}
