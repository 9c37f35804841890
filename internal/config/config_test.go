package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "GIN_MODE", "CORS_ALLOWED_ORIGINS", "MAX_UPLOAD_BYTES",
		"ADMISSION_DELAY_MS", "MIN_PROCESSING_SEC", "MAX_PROCESSING_SEC",
		"FAILURE_PERCENT", "HISTORY_LIMIT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
	if cfg.MaxUploadBytes != 50*1024*1024 {
		t.Fatalf("unexpected upload limit: %d", cfg.MaxUploadBytes)
	}
	if cfg.HistoryLimit != 50 {
		t.Fatalf("unexpected history limit: %d", cfg.HistoryLimit)
	}
	if cfg.FailurePercent != 10 {
		t.Fatalf("unexpected failure percent: %d", cfg.FailurePercent)
	}
}

func TestValidateRejectsInvertedBounds(t *testing.T) {
	cfg := &Config{
		MaxUploadBytes:   1,
		MinProcessingSec: 10,
		MaxProcessingSec: 5,
		HistoryLimit:     50,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for inverted processing bounds")
	}
}

func TestValidateRejectsBadFailurePercent(t *testing.T) {
	cfg := &Config{
		MaxUploadBytes:   1,
		MinProcessingSec: 5,
		MaxProcessingSec: 10,
		FailurePercent:   150,
		HistoryLimit:     50,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for failure percent above 100")
	}
}

func TestPolicyConversion(t *testing.T) {
	cfg := &Config{
		AdmissionDelayMs: 500,
		MinProcessingSec: 5,
		MaxProcessingSec: 10,
		FailurePercent:   10,
	}
	policy := cfg.Policy()
	if policy.AdmissionDelay != 500*time.Millisecond {
		t.Fatalf("unexpected admission delay: %s", policy.AdmissionDelay)
	}
	if policy.MinProcessing != 5*time.Second || policy.MaxProcessing != 10*time.Second {
		t.Fatalf("unexpected processing bounds: %s %s", policy.MinProcessing, policy.MaxProcessing)
	}
	if policy.FailureRate != 0.1 {
		t.Fatalf("unexpected failure rate: %f", policy.FailureRate)
	}
	if policy.ExpectedProcessing() != 7500*time.Millisecond {
		t.Fatalf("unexpected expected processing: %s", policy.ExpectedProcessing())
	}
}
