package storage_test

import (
	"testing"

	"github.com/satchel-io/satchel/pkg/storage"
)

func TestConfigFinalize(t *testing.T) {
	cfg := &storage.Config{ConnectionString: "UseDevelopmentStorage=true"}

	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if cfg.ContainerName != "media" {
		t.Errorf("ContainerName = %q, want media", cfg.ContainerName)
	}
}

func TestConfigFinalizeMissingConnectionString(t *testing.T) {
	cfg := &storage.Config{}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error for missing connection string")
	}
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("SATCHEL_TEST_STORAGE_CONTAINER", "media-staging")

	cfg := &storage.Config{ConnectionString: "UseDevelopmentStorage=true"}
	env := &storage.Env{ContainerName: "SATCHEL_TEST_STORAGE_CONTAINER"}

	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if cfg.ContainerName != "media-staging" {
		t.Errorf("ContainerName = %q, want media-staging", cfg.ContainerName)
	}
}
