package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "JWT_TTL", "COMPLETION_POINTS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "5000")
	}
	if cfg.JWTTTL != time.Hour {
		t.Errorf("JWTTTL = %v, want %v", cfg.JWTTTL, time.Hour)
	}
	if cfg.CompletionPoints != 1 {
		t.Errorf("CompletionPoints = %d, want 1", cfg.CompletionPoints)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("COMPLETION_POINTS", "5")
	t.Setenv("MAIL_SEND_ENABLED", "true")
	t.Setenv("DB_MAX_CONNS", "notanumber")

	cfg := Load()
	if cfg.StorageDriver != "memory" {
		t.Errorf("StorageDriver = %q, want memory", cfg.StorageDriver)
	}
	if cfg.JWTTTL != 15*time.Minute {
		t.Errorf("JWTTTL = %v, want 15m", cfg.JWTTTL)
	}
	if cfg.CompletionPoints != 5 {
		t.Errorf("CompletionPoints = %d, want 5", cfg.CompletionPoints)
	}
	if !cfg.MailSendEnabled {
		t.Error("MailSendEnabled = false, want true")
	}
	if cfg.DBMaxConns != 10 {
		t.Errorf("DBMaxConns = %d, want fallback 10", cfg.DBMaxConns)
	}
}

func TestCORSOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://a.test , ,http://b.test"}
	got := cfg.CORSOrigins()
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", got)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "1", DBName: "d", DBSSLMode: "disable"}
	want := "postgres://u:p@h:1/d?sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN = %q, want %q", got, want)
	}
}

func TestValidate_JWTSecret(t *testing.T) {
	tests := []struct {
		env, secret string
		wantErr     bool
	}{
		{"development", DevJWTSecret, false},
		{"production", DevJWTSecret, true},
		{"staging", "", true},
		{"production", "a-real-secret", false},
	}
	for _, tt := range tests {
		err := (&Config{Env: tt.env, JWTSecret: tt.secret}).Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(env=%s, secret=%q) = %v, wantErr %v", tt.env, tt.secret, err, tt.wantErr)
		}
	}
}
