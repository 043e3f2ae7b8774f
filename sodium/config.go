package sodium

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/skiptools/skip-salt/internal/dylib"
)

// Environment variables read by ApplyEnv.
const (
	EnvLibraryPath = "SALT_SODIUM_PATH"
	EnvDirs        = "SALT_SODIUM_DIRS"
	EnvSHA3_256    = "SALT_SODIUM_SHA3_256"
	EnvStrict      = "SALT_SODIUM_STRICT"
	EnvLogLevel    = "SALT_LOG_LEVEL"
)

// Candidate is a library name or path the resolver may load.
type Candidate = dylib.Candidate

type Config struct {
	// LibraryPath, when set, is tried before every other candidate.
	LibraryPath string `toml:"library_path" json:"library_path,omitempty"`
	// Candidates are tried in order after LibraryPath.
	Candidates []Candidate `toml:"candidates" json:"candidates"`
	// ExtraDirs are prepended to SearchPathEnv for the widened search.
	ExtraDirs []string `toml:"extra_dirs" json:"extra_dirs"`
	// SearchPathEnv names the list-valued variable the widened search extends.
	SearchPathEnv string `toml:"search_path_env" json:"search_path_env"`
	// SHA3_256 pins the library file by digest.
	SHA3_256 string `toml:"sha3_256" json:"sha3_256,omitempty"`
	// Strict makes the pin mandatory and a failing sodium_init an error.
	Strict bool `toml:"strict" json:"strict"`
	// LogLevel is the level of the resolver's and Open's own log lines.
	LogLevel string `toml:"log_level" json:"log_level"`

	// envErr records an environment value ApplyEnv could not parse.
	envErr error
}

func DefaultConfig() Config {
	return Config{
		Candidates:    dylib.DefaultCandidates(),
		ExtraDirs:     dylib.DefaultExtraDirs(),
		SearchPathEnv: dylib.DefaultSearchPathEnv,
		LogLevel:      "warn",
	}
}

// ConfigFromEnv returns DefaultConfig with the SALT_* environment applied.
func ConfigFromEnv() Config {
	return ApplyEnv(DefaultConfig())
}

// LoadConfigFile decodes a TOML file over DefaultConfig. Keys present in the
// file replace the defaults; unknown keys are an error.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("read config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ApplyEnv overlays the SALT_* environment variables onto cfg.
func ApplyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv(EnvLibraryPath)); v != "" {
		cfg.LibraryPath = v
	}
	if v := os.Getenv(EnvDirs); v != "" {
		cfg.ExtraDirs = dylib.NormalizeDirs(append([]string{v}, cfg.ExtraDirs...)...)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSHA3_256)); v != "" {
		cfg.SHA3_256 = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStrict)); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			cfg.envErr = fmt.Errorf("invalid %s %q: want true or false", EnvStrict, v)
		} else {
			cfg.Strict = strict
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

func ValidateConfig(cfg Config) error {
	if cfg.envErr != nil {
		return cfg.envErr
	}
	if _, err := logrus.ParseLevel(strings.TrimSpace(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if cfg.SHA3_256 != "" {
		raw, err := hex.DecodeString(strings.TrimSpace(cfg.SHA3_256))
		if err != nil || len(raw) != 32 {
			return fmt.Errorf("invalid sha3_256: want 64 hex characters")
		}
	} else if cfg.Strict {
		return errors.New("sha3_256 is required when strict is set")
	}
	cands := cfg.candidates()
	if len(cands) == 0 {
		return errors.New("at least one library candidate is required")
	}
	for i, c := range cands {
		if strings.TrimSpace(c.File) == "" {
			return fmt.Errorf("candidate %d (%q): file is required", i, c.Name)
		}
	}
	return nil
}

// candidates returns LibraryPath, if any, followed by Candidates.
func (c Config) candidates() []Candidate {
	out := make([]Candidate, 0, len(c.Candidates)+1)
	if p := strings.TrimSpace(c.LibraryPath); p != "" {
		out = append(out, Candidate{Name: "configured", File: p})
	}
	return append(out, c.Candidates...)
}

func (c Config) resolver(loader dylib.Loader, logger logrus.FieldLogger) *dylib.Resolver {
	return &dylib.Resolver{
		Candidates: c.candidates(),
		Search: dylib.SearchPath{
			Env:       c.SearchPathEnv,
			ExtraDirs: dylib.NormalizeDirs(c.ExtraDirs...),
		},
		Required: RequiredSymbols,
		Pin:      dylib.Pin{SHA3_256: c.SHA3_256, Strict: c.Strict},
		Loader:   loader,
		Logger:   logger,
	}
}
