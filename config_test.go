package routegen

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplyConfigDefaults(t *testing.T) {
	in := &Config{Target: "Express"}
	got := applyConfigDefaults(in)

	want := &Config{
		Target:      "express",
		Port:        DefaultPort,
		AdminToken:  DefaultAdminToken,
		GuardPolicy: DefaultGuardPolicy,
		PackageName: DefaultPackageName,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("applyConfigDefaults() mismatch (-want +got):\n%s", diff)
	}
	if in.Port != 0 {
		t.Error("applyConfigDefaults mutated its input")
	}
	if got := applyConfigDefaults(nil); got.Target != DefaultTarget {
		t.Errorf("applyConfigDefaults(nil).Target = %q", got.Target)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantField string
	}{
		{name: "defaults", cfg: Config{}},
		{name: "express stacked", cfg: Config{Target: "express", GuardPolicy: "stacked", Port: 8080}},
		{name: "yaml format", cfg: Config{Format: "yml"}},
		{name: "library package", cfg: Config{PackageName: "server"}},
		{name: "bad target", cfg: Config{Target: "rust"}, wantField: "target"},
		{name: "port too large", cfg: Config{Port: 70000}, wantField: "port"},
		{name: "negative port", cfg: Config{Port: -1}, wantField: "port"},
		{name: "bad policy", cfg: Config{GuardPolicy: "any"}, wantField: "guard_policy"},
		{name: "bad package", cfg: Config{PackageName: "my-server"}, wantField: "package"},
		{name: "bad format", cfg: Config{Format: "toml"}, wantField: "format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if _, ok := ce.Fields[tt.wantField]; !ok {
				t.Errorf("Fields = %v, want entry for %q", ce.Fields, tt.wantField)
			}
			if ErrorCode(err) != "invalid_config" {
				t.Errorf("ErrorCode() = %q", ErrorCode(err))
			}
		})
	}
}

func TestConfig_Merge(t *testing.T) {
	base := Config{Target: "go", Port: 3000, AdminToken: "file"}
	got := base.Merge(Config{Port: 9000, Strict: true})
	want := Config{Target: "go", Port: 9000, AdminToken: "file", Strict: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "routegen.yaml")
		content := "target: express\nport: 8080\nguard_policy: stacked\nstrict: true\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}
		want := &Config{Target: "express", Port: 8080, GuardPolicy: "stacked", Strict: true}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("LoadConfigFile() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}
		if diff := cmp.Diff(&Config{}, cfg); diff != "" {
			t.Errorf("LoadConfigFile() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		path := filepath.Join(dir, "typo.yaml")
		if err := os.WriteFile(path, []byte("prot: 8080\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("LoadConfigFile() error = nil, want unknown field error")
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := LoadConfigFile(filepath.Join(dir, "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("LoadConfigFile() error = %v, want not exist", err)
		}
	})
}

func TestExampleConfigFile(t *testing.T) {
	cfg, err := LoadConfigFile("routegen.example.yaml")
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
