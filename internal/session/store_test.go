package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func newTestStore(dir string) *Store {
	return NewStore(Options{Dir: dir, DeviceName: "test"}, zerolog.Nop())
}

func TestClearMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")

	if err := newTestStore(dir).Clear(context.Background()); err != nil {
		t.Fatalf("clear on missing dir: %v", err)
	}
}

func TestClearRemovesArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".wa_session")
	nested := filepath.Join(dir, "nested")
	if err := os.MkdirAll(nested, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "creds"), []byte("secret"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := newTestStore(dir)
	if err := s.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("session dir still present: %v", err)
	}

	// Second clear is a no-op.
	if err := s.Clear(context.Background()); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestClearPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}

	parent := t.TempDir()
	dir := filepath.Join(parent, "locked")
	if err := os.MkdirAll(filepath.Join(dir, "inner"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "inner", "f"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0o700) })

	if err := newTestStore(dir).Clear(context.Background()); err == nil {
		t.Fatal("expected storage error")
	}
}

func TestDeviceThenClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".wa_session")
	s := newTestStore(dir)
	defer s.Close()

	device, err := s.Device(context.Background())
	if err != nil {
		t.Fatalf("device: %v", err)
	}
	if device == nil {
		t.Fatal("expected a new device")
	}
	if device.ID != nil {
		t.Errorf("fresh device should not be logged in, got %v", device.ID)
	}
	if _, err := os.Stat(filepath.Join(dir, dbFile)); err != nil {
		t.Fatalf("session db not created: %v", err)
	}

	if err := s.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("session dir still present after clear")
	}

	// The store reopens lazily after a clear.
	if _, err := s.Device(context.Background()); err != nil {
		t.Fatalf("device after clear: %v", err)
	}
}

func TestUnsupportedDialect(t *testing.T) {
	s := NewStore(Options{Dialect: "mysql", DSN: "x"}, zerolog.Nop())

	if _, err := s.Device(context.Background()); err == nil {
		t.Fatal("expected unsupported dialect error")
	}
}
