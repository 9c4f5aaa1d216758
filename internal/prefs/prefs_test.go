package prefs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
)

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nested", "prefs.env"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := s.FilterMode(); got != models.DefaultFilterMode {
		t.Errorf("FilterMode() = %v, want %v", got, models.DefaultFilterMode)
	}
}

func TestFilterModeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.env")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.SetFilterMode(models.FilterCompleted); err != nil {
		t.Fatalf("SetFilterMode() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read prefs file: %v", err)
	}
	if !strings.Contains(string(data), constants.PrefSelectedFilter) {
		t.Errorf("prefs file = %q, want key %q", data, constants.PrefSelectedFilter)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := reopened.FilterMode(); got != models.FilterCompleted {
		t.Errorf("FilterMode() = %v, want %v", got, models.FilterCompleted)
	}
}

func TestUnknownFilterModeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.env")
	if err := os.WriteFile(path, []byte(constants.PrefSelectedFilter+"=sometimes\n"), 0600); err != nil {
		t.Fatalf("failed to write prefs file: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := s.FilterMode(); got != models.DefaultFilterMode {
		t.Errorf("FilterMode() = %v, want %v", got, models.DefaultFilterMode)
	}
}

func TestSetKeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.env")
	s, _ := Open(path)
	if err := s.Set("theme", "dark"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.SetFilterMode(models.FilterAll); err != nil {
		t.Fatalf("SetFilterMode() error = %v", err)
	}

	reopened, _ := Open(path)
	if v, ok := reopened.Get("theme"); !ok || v != "dark" {
		t.Errorf("Get(theme) = %q, %v, want dark, true", v, ok)
	}
}
