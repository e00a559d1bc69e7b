package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/duitku/account-service/internal/app"
	"github.com/duitku/account-service/internal/store"
)

func TestMapAccountError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"missing account maps to 404", store.ErrAccountNotFound, http.StatusNotFound},
		{"missing user maps to 404", store.ErrUserNotFound, http.StatusNotFound},
		{"foreign account maps to 403", app.ErrNotAccountOwner, http.StatusForbidden},
		{"blank name maps to 400", app.ErrAccountNameRequired, http.StatusBadRequest},
		{"bad currency maps to 400", app.ErrCurrencyNotSupported, http.StatusBadRequest},
		{"bad image type maps to 400", app.ErrUnsupportedImageType, http.StatusBadRequest},
		{"upload flood maps to 429", app.ErrUploadRateLimited, http.StatusTooManyRequests},
		{"unknown error maps to 500", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := mapAccountError(tt.err)
			if status != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, status)
			}
			if message == "" {
				t.Fatal("expected a non-empty message")
			}
		})
	}

	t.Run("wrapped errors still match", func(t *testing.T) {
		wrapped := errors.Join(errors.New("failed to trash account"), store.ErrAccountNotFound)
		status, _ := mapAccountError(wrapped)
		if status != http.StatusNotFound {
			t.Fatalf("expected 404 for wrapped not-found, got %d", status)
		}
	})

	t.Run("internal errors do not leak detail", func(t *testing.T) {
		_, message := mapAccountError(errors.New("pq: relation accounts does not exist"))
		if message != "Could not process account request." {
			t.Fatalf("expected generic message, got %q", message)
		}
	})
}

func TestParseOptionalPositiveInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback int
		want     int
		wantErr  bool
	}{
		{name: "empty uses fallback", value: "", fallback: 10, want: 10},
		{name: "whitespace uses fallback", value: "  ", fallback: 10, want: 10},
		{name: "parses value", value: "25", fallback: 10, want: 25},
		{name: "zero is allowed", value: "0", fallback: 10, want: 0},
		{name: "rejects negative", value: "-1", fallback: 10, wantErr: true},
		{name: "rejects garbage", value: "ten", fallback: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOptionalPositiveInt(tt.value, tt.fallback)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
