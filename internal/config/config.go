// Package config loads per-profile settings from a YAML document, the
// environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/conorfennell/vocabdrill/internal/interval"
)

// EnvPrefix marks environment variables that override settings,
// e.g. VOCAB_BATCH_SIZE=10.
const EnvPrefix = "VOCAB_"

// ErrInvalid is returned when the loaded settings fail validation.
var ErrInvalid = errors.New("config: invalid settings")

// Settings is the settings document of one profile.
type Settings struct {
	Profile            string `koanf:"profile" yaml:"profile" validate:"required"`
	WordBook           string `koanf:"word_book" yaml:"word_book" validate:"required"`
	WordBookRepo       string `koanf:"word_book_repo" yaml:"word_book_repo,omitempty"`
	BatchSize          int    `koanf:"batch_size" yaml:"batch_size" validate:"min=1"`
	Intervals          []int  `koanf:"intervals" yaml:"intervals,flow" validate:"min=1,dive,gte=0"`
	CurrentIndex       int    `koanf:"current_index" yaml:"current_index" validate:"gte=0"`
	ComparisonStrategy string `koanf:"comparison_strategy" yaml:"comparison_strategy" validate:"oneof=basic"`
	Voice              string `koanf:"voice" yaml:"voice"`
	VoiceSpeed         int    `koanf:"voice_speed" yaml:"voice_speed" validate:"gte=0"`
	ShowHint           bool   `koanf:"show_target_word_hint" yaml:"show_target_word_hint"`
	MaxPasses          int    `koanf:"max_passes" yaml:"max_passes" validate:"gte=0"`
	LogLevel           string `koanf:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Default returns the settings a new profile starts with.
func Default(profile string) Settings {
	return Settings{
		Profile:            profile,
		WordBook:           "malay_basic.csv",
		BatchSize:          5,
		Intervals:          interval.DefaultTable(),
		CurrentIndex:       0,
		ComparisonStrategy: "basic",
		Voice:              "Amira",
		VoiceSpeed:         200,
		LogLevel:           "warn",
	}
}

// Path returns the settings document location of a profile.
func Path(dataDir, profile string) string {
	return filepath.Join(dataDir, profile+".yaml")
}

// defaults is a koanf provider serving Default(profile) as YAML so that
// every settings key exists before the other layers are applied.
type defaults string

func (d defaults) ReadBytes() ([]byte, error) {
	return yamlv3.Marshal(Default(string(d)))
}

func (d defaults) Read() (map[string]interface{}, error) {
	return nil, errors.New("config: defaults provider requires a parser")
}

// Load reads the profile's settings. Values are layered: defaults, then the
// YAML document (if present), then VOCAB_* environment variables, then any
// flags the user set explicitly.
func Load(dataDir, profile string, flags *pflag.FlagSet) (Settings, error) {
	k := koanf.New(".")

	if err := k.Load(defaults(profile), yaml.Parser()); err != nil {
		return Settings{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := Path(dataDir, profile)
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Settings{}, fmt.Errorf("failed to load %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Settings{}, fmt.Errorf("error checking path %s: %w", path, err)
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		// Flags are spelled with dashes, settings keys with underscores.
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Settings{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint of s.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// IntervalTable returns the configured intervals as a scheduling table.
func (s Settings) IntervalTable() interval.Table {
	return interval.Table(s.Intervals)
}

// WriteDefault creates the settings document of a new profile. An existing
// document is left untouched and created is false.
func WriteDefault(dataDir, profile string) (path string, created bool, err error) {
	path = Path(dataDir, profile)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return path, false, fmt.Errorf("error checking path %s: %w", path, err)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return path, false, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	out, err := yamlv3.Marshal(Default(profile))
	if err != nil {
		return path, false, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return path, false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, true, nil
}
