package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilesystemStore_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store := NewFilesystemStore(root)
	ctx := context.Background()

	reference, err := store.Save(ctx, "account/images/a.png", strings.NewReader("png bytes"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if reference != "account/images/a.png" {
		t.Fatalf("expected relative reference, got %q", reference)
	}

	data, err := os.ReadFile(filepath.Join(root, "account", "images", "a.png"))
	if err != nil {
		t.Fatalf("expected file under root: %v", err)
	}
	if string(data) != "png bytes" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(ctx, reference); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "account", "images", "a.png")); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, stat err=%v", err)
	}
}

func TestFilesystemStore_DeleteMissingFileIsNil(t *testing.T) {
	store := NewFilesystemStore(t.TempDir())

	if err := store.Delete(context.Background(), "account/images/never-existed.png"); err != nil {
		t.Fatalf("expected missing file delete to succeed, got %v", err)
	}
}

func TestFilesystemStore_RejectsEscapingPaths(t *testing.T) {
	store := NewFilesystemStore(t.TempDir())
	ctx := context.Background()

	paths := []string{"../outside.png", "a/../../outside.png", "..", "."}
	for _, p := range paths {
		if _, err := store.Save(ctx, p, strings.NewReader("x")); err == nil {
			t.Fatalf("expected save of %q to be rejected", p)
		}
		if p == "." {
			continue
		}
		if err := store.Delete(ctx, p); err == nil {
			t.Fatalf("expected delete of %q to be rejected", p)
		}
	}
}

func TestFilesystemStore_NormalizesLeadingSlash(t *testing.T) {
	root := t.TempDir()
	store := NewFilesystemStore(root)

	reference, err := store.Save(context.Background(), "/account/images/b.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if reference != "account/images/b.png" {
		t.Fatalf("expected leading slash to be stripped, got %q", reference)
	}
}
