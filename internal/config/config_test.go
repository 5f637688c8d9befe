package config

import "testing"

func TestLoadIncludesVisionDefaults(t *testing.T) {
	t.Setenv("VISION_BASE_URL", "")
	t.Setenv("VISION_MODEL", "")
	t.Setenv("VISION_RATE_LIMIT_RPS", "")
	t.Setenv("VISION_RATE_LIMIT_BURST", "")
	t.Setenv("MAX_UPLOAD_MB", "")

	cfg := Load()
	if cfg.VisionModel != "gpt-4o-mini" {
		t.Fatalf("expected default vision model, got %q", cfg.VisionModel)
	}
	if cfg.VisionRateLimitRPS != 2 {
		t.Fatalf("expected default rate limit rps 2, got %v", cfg.VisionRateLimitRPS)
	}
	if cfg.VisionRateLimitBurst != 2 {
		t.Fatalf("expected default rate limit burst 2, got %d", cfg.VisionRateLimitBurst)
	}
	if cfg.MaxUploadMB != 20 {
		t.Fatalf("expected default max upload 20, got %d", cfg.MaxUploadMB)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("VISION_BASE_URL", "http://localhost:8000/v1")
	t.Setenv("VISION_MODEL", "qwen2-vl")
	t.Setenv("VISION_RATE_LIMIT_RPS", "0.5")
	t.Setenv("NATS_SUBJECT", "docs.redo")
	t.Setenv("JPEG_QUALITY", "70")

	cfg := Load()
	if cfg.VisionBaseURL != "http://localhost:8000/v1" {
		t.Fatalf("expected base url override, got %q", cfg.VisionBaseURL)
	}
	if cfg.VisionModel != "qwen2-vl" {
		t.Fatalf("expected model override, got %q", cfg.VisionModel)
	}
	if cfg.VisionRateLimitRPS != 0.5 {
		t.Fatalf("expected rps 0.5, got %v", cfg.VisionRateLimitRPS)
	}
	if cfg.NATSSubject != "docs.redo" {
		t.Fatalf("expected subject override, got %q", cfg.NATSSubject)
	}
	if cfg.JPEGQuality != 70 {
		t.Fatalf("expected jpeg quality 70, got %d", cfg.JPEGQuality)
	}
}

func TestLoadIgnoresUnparsableNumbers(t *testing.T) {
	t.Setenv("VISION_RATE_LIMIT_RPS", "fast")
	t.Setenv("MAX_UPLOAD_MB", "huge")

	cfg := Load()
	if cfg.VisionRateLimitRPS != 2 {
		t.Fatalf("expected fallback rps 2, got %v", cfg.VisionRateLimitRPS)
	}
	if cfg.MaxUploadMB != 20 {
		t.Fatalf("expected fallback max upload 20, got %d", cfg.MaxUploadMB)
	}
}
