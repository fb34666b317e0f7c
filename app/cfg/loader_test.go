package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestAnalysisEnabled(t *testing.T) {
	cfg := &Cfg{}
	if cfg.AnalysisEnabled() {
		t.Error("Analysis should be disabled without an API key")
	}

	cfg.GeminiAPIKey = "test-key"
	if !cfg.AnalysisEnabled() {
		t.Error("Analysis should be enabled with an API key")
	}
}

func TestApplyTimezone(t *testing.T) {
	if err := applyTimezone("UTC"); err != nil {
		t.Errorf("Expected UTC to be valid, got %v", err)
	}
	if err := applyTimezone("Asia/Tokyo"); err != nil {
		t.Errorf("Expected Asia/Tokyo to be valid, got %v", err)
	}
	if err := applyTimezone("Not/AZone"); err == nil {
		t.Error("Expected an error for an invalid timezone")
	}
}
