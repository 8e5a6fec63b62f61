package config

import (
	"flag"
	"testing"
)

func TestRegisterFlagsOverridesDefault(t *testing.T) {
	cfg := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs, &cfg)

	if err := fs.Parse([]string{"-ram-size=128", "-jit-use=false"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.RAMSizeMB != 128 {
		t.Errorf("RAMSizeMB = %d, want 128", cfg.RAMSizeMB)
	}
	if cfg.JITUse {
		t.Error("JITUse should be false after -jit-use=false")
	}
	if cfg.ROMSizeMB != Default().ROMSizeMB {
		t.Error("unrelated fields should keep their defaults")
	}
}
