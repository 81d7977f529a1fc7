package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	TickHz int `env:"WORLDBRIDGE_TEST_TICK_HZ" envDefault:"60"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.TickHz != 60 {
		t.Fatalf("expected default tick rate 60, got %d", cfg.TickHz)
	}
}

func TestParseEnvOverride(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("WORLDBRIDGE_TEST_TICK_HZ", "30")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.TickHz != 30 {
		t.Fatalf("expected tick rate 30, got %d", cfg.TickHz)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("WORLDBRIDGE_TEST_TICK_HZ", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
