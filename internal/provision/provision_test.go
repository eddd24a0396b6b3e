package provision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

// fakeCloner writes a minimal template into dest, standing in for the git
// clone of the framework upstream.
type fakeCloner struct {
	calls int
	err   error
}

func (c *fakeCloner) Clone(ctx context.Context, dest string) error {
	c.calls++
	if c.err != nil {
		return c.err
	}
	if err := os.MkdirAll(filepath.Join(dest, "src"), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dest, "src", "index.html"), []byte("<html></html>"), 0o644)
}

func TestCreateWorkspace_TemplatePresent(t *testing.T) {
	root := t.TempDir()
	temp := t.TempDir()

	// Template already on disk: the cloner must not run.
	if err := os.MkdirAll(filepath.Join(root, "course_framework", "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "course_framework", "src", "app.js"), []byte("ok"), 0o644); err != nil {
		t.Fatal(err)
	}

	cloner := &fakeCloner{}
	p := New(root, "course_framework", temp, cloner, zap.NewNop())

	if err := p.CreateWorkspace(context.Background(), "tenant-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cloner.calls != 0 {
		t.Fatalf("expected no clone, got %d", cloner.calls)
	}

	copied := filepath.Join(temp, "tenant-1", "course_framework", "src", "app.js")
	data, err := os.ReadFile(copied)
	if err != nil {
		t.Fatalf("expected copied file, got %v", err)
	}
	if string(data) != "ok" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestCreateWorkspace_ClonesMissingTemplate(t *testing.T) {
	root := t.TempDir()
	temp := t.TempDir()

	cloner := &fakeCloner{}
	p := New(root, "course_framework", temp, cloner, zap.NewNop())

	if err := p.CreateWorkspace(context.Background(), "tenant-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cloner.calls != 1 {
		t.Fatalf("expected one clone, got %d", cloner.calls)
	}

	if _, err := os.Stat(filepath.Join(temp, "tenant-1", "course_framework", "src", "index.html")); err != nil {
		t.Fatalf("expected cloned template copied into workspace: %v", err)
	}
}

func TestCreateWorkspace_CloneFailure(t *testing.T) {
	root := t.TempDir()
	temp := t.TempDir()

	cloner := &fakeCloner{err: errors.New("upstream unreachable")}
	p := New(root, "course_framework", temp, cloner, zap.NewNop())

	err := p.CreateWorkspace(context.Background(), "tenant-1")
	if !errors.Is(err, cloner.err) {
		t.Fatalf("expected clone error, got %v", err)
	}

	// No cleanup on failure: the tenant dir stays behind.
	if _, statErr := os.Stat(filepath.Join(temp, "tenant-1")); statErr != nil {
		t.Fatalf("expected tenant dir left in place: %v", statErr)
	}
}

func TestCreateWorkspace_SecondTenantReusesTemplate(t *testing.T) {
	root := t.TempDir()
	temp := t.TempDir()

	cloner := &fakeCloner{}
	p := New(root, "course_framework", temp, cloner, zap.NewNop())

	if err := p.CreateWorkspace(context.Background(), "tenant-1"); err != nil {
		t.Fatal(err)
	}
	if err := p.CreateWorkspace(context.Background(), "tenant-2"); err != nil {
		t.Fatal(err)
	}

	if cloner.calls != 1 {
		t.Fatalf("expected template cloned once, got %d", cloner.calls)
	}
	for _, id := range []string{"tenant-1", "tenant-2"} {
		if _, err := os.Stat(filepath.Join(temp, id, "course_framework")); err != nil {
			t.Fatalf("expected workspace for %s: %v", id, err)
		}
	}
}
