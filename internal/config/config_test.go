package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "PORT")
	unsetEnvWithCleanup(t, "SERVER_PORT")
	unsetEnvWithCleanup(t, "ACCOUNT_IMAGE_PATH_PREFIX")
	unsetEnvWithCleanup(t, "ACCOUNT_EVENT_EXCHANGE")
	unsetEnvWithCleanup(t, "UPLOAD_RATE_LIMIT_PER_MINUTE")
	unsetEnvWithCleanup(t, "MAX_UPLOAD_SIZE_MB")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.ServerPort)
	}
	if cfg.AccountImagePathPrefix != "account/images" {
		t.Fatalf("expected default image path prefix, got %q", cfg.AccountImagePathPrefix)
	}
	if cfg.AccountEventExchange != "bookkeeping.events" {
		t.Fatalf("expected default event exchange, got %q", cfg.AccountEventExchange)
	}
	if cfg.UploadRateLimitPerMinute != 20 {
		t.Fatalf("expected default upload rate limit 20, got %d", cfg.UploadRateLimitPerMinute)
	}
	if cfg.MaxUploadSizeMB != 5 {
		t.Fatalf("expected default max upload size 5, got %d", cfg.MaxUploadSizeMB)
	}
}

func TestLoadConfig_PortOverridesServerPort(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "SERVER_PORT", "8080")
	setEnvWithCleanup(t, "PORT", "9999")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "9999" {
		t.Fatalf("expected platform PORT to win, got %q", cfg.ServerPort)
	}
}

func TestLoadConfig_TrimsImagePathPrefix(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "ACCOUNT_IMAGE_PATH_PREFIX", " /uploads/accounts/ ")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.AccountImagePathPrefix != "uploads/accounts" {
		t.Fatalf("expected trimmed prefix, got %q", cfg.AccountImagePathPrefix)
	}
}

func TestLoadConfig_NegativeUploadLimitDisablesLimiting(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "UPLOAD_RATE_LIMIT_PER_MINUTE", "-3")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.UploadRateLimitPerMinute != 0 {
		t.Fatalf("expected negative limit to clamp to 0, got %d", cfg.UploadRateLimitPerMinute)
	}
}

func TestSupportedCurrencyCodes(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want []string
	}{
		{name: "empty enables everything", csv: "", want: nil},
		{name: "splits and normalizes", csv: " usd, idr ,EUR", want: []string{"USD", "IDR", "EUR"}},
		{name: "skips empty segments", csv: "USD,,IDR,", want: []string{"USD", "IDR"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Config{SupportedCurrencies: tt.csv}.SupportedCurrencyCodes()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i, want := range tt.want {
				if got[i] != want {
					t.Fatalf("expected %q at position %d, got %q", want, i, got[i])
				}
			}
		})
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}
