package app

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDeriveImageFileName(t *testing.T) {
	ownerID := uuid.MustParse("0b9f9f54-4a42-4a2e-8e53-111111111111")
	uploadedAt := time.Unix(1700000000, 0)

	sum := md5.Sum([]byte(strconv.FormatInt(uploadedAt.Unix(), 10)))
	wantStem := ownerID.String() + "+" + hex.EncodeToString(sum[:])

	tests := []struct {
		name         string
		originalName string
		want         string
	}{
		{"preserves extension", "photo.png", wantStem + ".png"},
		{"lowercases extension", "PHOTO.JPG", wantStem + ".jpg"},
		{"no extension", "photo", wantStem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveImageFileName(ownerID, uploadedAt, tt.originalName); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDeriveImageFileName_DistinctOwnersNeverCollide(t *testing.T) {
	now := time.Now()
	a := deriveImageFileName(uuid.New(), now, "photo.png")
	b := deriveImageFileName(uuid.New(), now, "photo.png")
	if a == b {
		t.Fatalf("expected distinct owners to yield distinct names, both %q", a)
	}
}

func TestValidImageExtension(t *testing.T) {
	tests := []struct {
		originalName string
		want         bool
	}{
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"photo.png", true},
		{"photo.gif", true},
		{"photo.webp", true},
		{"report.pdf", false},
		{"script.png.exe", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		t.Run(tt.originalName, func(t *testing.T) {
			if got := validImageExtension(tt.originalName); got != tt.want {
				t.Fatalf("expected %t for %q, got %t", tt.want, tt.originalName, got)
			}
		})
	}
}
