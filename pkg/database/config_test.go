package database_test

import (
	"strings"
	"testing"
	"time"

	"github.com/satchel-io/satchel/pkg/database"
)

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := &database.Config{Name: "satchel", User: "satchel"}

	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}

	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, want localhost", cfg.Host)
	}
	if cfg.Port != 5432 {
		t.Errorf("Port = %d, want 5432", cfg.Port)
	}
	if cfg.SSLMode != "disable" {
		t.Errorf("SSLMode = %q, want disable", cfg.SSLMode)
	}
	if cfg.ConnTimeoutDuration() != 5*time.Second {
		t.Errorf("ConnTimeoutDuration = %v, want 5s", cfg.ConnTimeoutDuration())
	}
}

func TestConfigFinalizeEnvOverride(t *testing.T) {
	t.Setenv("SATCHEL_TEST_DB_HOST", "db.internal")
	t.Setenv("SATCHEL_TEST_DB_PORT", "6432")

	cfg := &database.Config{Name: "satchel", User: "satchel"}
	env := &database.Env{Host: "SATCHEL_TEST_DB_HOST", Port: "SATCHEL_TEST_DB_PORT"}

	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}

	if cfg.Host != "db.internal" {
		t.Errorf("Host = %q, want db.internal", cfg.Host)
	}
	if cfg.Port != 6432 {
		t.Errorf("Port = %d, want 6432", cfg.Port)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &database.Config{User: "satchel"}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error for missing database name")
	}

	cfg = &database.Config{Name: "satchel", User: "satchel", ConnTimeout: "never"}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error for invalid conn_timeout")
	}
}

func TestConfigMerge(t *testing.T) {
	base := &database.Config{Host: "localhost", Port: 5432, Name: "satchel", User: "satchel"}
	base.Merge(&database.Config{Host: "db.prod", Password: "secret"})

	if base.Host != "db.prod" {
		t.Errorf("Host = %q, want db.prod", base.Host)
	}
	if base.Port != 5432 {
		t.Errorf("Port = %d, want 5432 (zero value should not overwrite)", base.Port)
	}
	if base.Password != "secret" {
		t.Errorf("Password = %q, want secret", base.Password)
	}
}

func TestDsn(t *testing.T) {
	cfg := &database.Config{Name: "satchel", User: "app"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}

	dsn := cfg.Dsn()
	for _, part := range []string{"host=localhost", "port=5432", "dbname=satchel", "user=app", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("Dsn() = %q, missing %q", dsn, part)
		}
	}
}
