package config

import "testing"

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SERVICE_NAME", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("ASYNC_WRITES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServiceName != "activity" {
		t.Fatalf("expected default service name 'activity', got %q", cfg.ServiceName)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("expected default addr ':8080', got %q", cfg.HTTP.Addr)
	}
	if !cfg.AsyncWrites {
		t.Fatal("expected async writes to default on")
	}
}

func TestLoad_ProductionRequiresDatabase(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error in production without DATABASE_URL")
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("CONFIG_TEST_BOOL", "false")
	if envBool("CONFIG_TEST_BOOL", true) {
		t.Fatal("expected 'false' to parse as false")
	}
	t.Setenv("CONFIG_TEST_BOOL", "1")
	if !envBool("CONFIG_TEST_BOOL", false) {
		t.Fatal("expected '1' to parse as true")
	}
}
