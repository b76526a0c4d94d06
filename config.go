package routegen

import (
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/broady/routegen/compiler"
	"github.com/broady/routegen/graph"
)

// Defaults applied by applyConfigDefaults.
const (
	DefaultTarget      = "go"
	DefaultPort        = 3000
	DefaultAdminToken  = "admin"
	DefaultGuardPolicy = "exclusive"
	DefaultPackageName = "main"
)

// Config holds the options for one compilation.
type Config struct {
	// Target selects the emitter.
	// Supported values: "go", "express".
	// Default: "go"
	Target string `yaml:"target" validate:"oneof=go express"`

	// Port is the fixed listen port of the generated server.
	// Default: 3000
	Port int `yaml:"port" validate:"min=1,max=65535"`

	// AdminToken is the Authorization value admin-guarded routes require.
	// Default: "admin"
	AdminToken string `yaml:"admin_token" validate:"required"`

	// GuardPolicy controls how many guards a middleware node contributes.
	// "exclusive" applies auth, else admin; "stacked" applies every flag.
	// Default: "exclusive"
	GuardPolicy string `yaml:"guard_policy" validate:"oneof=exclusive stacked"`

	// PackageName is the package clause of generated Go. Any name other
	// than "main" produces a library with ListenAndServe instead of main.
	// Default: "main"
	PackageName string `yaml:"package" validate:"goident"`

	// Strict makes incomplete, invalid and duplicate endpoints fatal.
	Strict bool `yaml:"strict"`

	// Format is the input document format: "json" or "yaml". Empty means
	// JSON for Compile; the CLI infers it from the file extension.
	Format string `yaml:"format" validate:"omitempty,oneof=json yaml yml"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return token.IsIdentifier(s) && s != "_"
	})
	return v
}

// applyConfigDefaults returns a copy of cfg with defaults filled in.
func applyConfigDefaults(cfg *Config) *Config {
	var result Config
	if cfg != nil {
		result = *cfg
	}
	if result.Target == "" {
		result.Target = DefaultTarget
	}
	if result.Port == 0 {
		result.Port = DefaultPort
	}
	if result.AdminToken == "" {
		result.AdminToken = DefaultAdminToken
	}
	if result.GuardPolicy == "" {
		result.GuardPolicy = DefaultGuardPolicy
	}
	if result.PackageName == "" {
		result.PackageName = DefaultPackageName
	}
	result.Target = strings.ToLower(result.Target)
	result.GuardPolicy = strings.ToLower(result.GuardPolicy)
	result.Format = strings.ToLower(result.Format)
	return &result
}

// Validate checks cfg after defaults are applied.
func (cfg *Config) Validate() error {
	if err := validate.Struct(applyConfigDefaults(cfg)); err != nil {
		return configError(err)
	}
	return nil
}

// Merge returns a copy of cfg with every non-zero field of override set.
func (cfg Config) Merge(override Config) Config {
	if override.Target != "" {
		cfg.Target = override.Target
	}
	if override.Port != 0 {
		cfg.Port = override.Port
	}
	if override.AdminToken != "" {
		cfg.AdminToken = override.AdminToken
	}
	if override.GuardPolicy != "" {
		cfg.GuardPolicy = override.GuardPolicy
	}
	if override.PackageName != "" {
		cfg.PackageName = override.PackageName
	}
	if override.Strict {
		cfg.Strict = true
	}
	if override.Format != "" {
		cfg.Format = override.Format
	}
	return cfg
}

// LoadConfigFile reads a YAML options file. Unknown keys are rejected so
// typos do not pass silently.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func (cfg *Config) buildOptions() (compiler.Options, error) {
	policy, err := graph.ParseGuardPolicy(cfg.GuardPolicy)
	if err != nil {
		return compiler.Options{}, err
	}
	return compiler.Options{
		Policy:      policy,
		Strict:      cfg.Strict,
		Port:        cfg.Port,
		AdminToken:  cfg.AdminToken,
		PackageName: cfg.PackageName,
	}, nil
}

func (cfg *Config) inputFormat() (graph.Format, error) {
	if cfg.Format == "" {
		return graph.FormatJSON, nil
	}
	return graph.ParseFormat(cfg.Format)
}
