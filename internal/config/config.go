// Package config loads and validates the pipeline configuration.
//
// Configuration is explicit: the loader returns a Config value that
// callers pass down as constructor arguments. There is no package
// global and no process-wide initialization.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config is the validated pipeline configuration.
type Config struct {
	Source  SourceConfig  `json:"source"`
	Target  TargetConfig  `json:"target"`
	Logging LoggingConfig `json:"logging"`
}

// SourceConfig locates the raw batch file.
type SourceConfig struct {
	Path string `json:"path"`
}

// TargetConfig describes the relational target.
type TargetConfig struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
	Table  string `json:"table"`
	Actor  string `json:"actor"`
}

// LoggingConfig controls log level and output format.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Load reads the YAML config at path, expands ${VAR} references from
// the environment (a .env file beside the process is honored if
// present), validates the result against the embedded CUE schema, and
// returns the decoded Config with schema defaults applied.
func Load(path string) (*Config, error) {
	// Optional: credentials usually live in .env, not in the YAML.
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}

	val := schema.Unify(ctx.Encode(doc))
	if err := val.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	var cfg Config
	if err := val.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
