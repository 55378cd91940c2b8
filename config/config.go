package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var (
	// ErrInvalidValue is returned when a key holds a value that cannot be coerced to its field type.
	ErrInvalidValue = errors.New("invalid configuration value")
	// ErrInvalidConfig is returned when the loaded settings fail validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config represents the service settings. It is built once at process start and never mutated.
type Config struct {
	ProjectName string
	APIV1Str    string
	DatabaseURL string
	DBEcho      bool

	RunMode         string        `validate:"oneof=debug release test"`
	Host            string
	Port            int           `validate:"gte=0,lte=65535"`
	ShutdownTimeout time.Duration `validate:"gte=0s"`
	Logger          *Logger       `validate:"required"`
	Database        *Database     `validate:"required"`
}

// Source describes where settings are read from.
type Source struct {
	// EnvFile is the dotenv file consulted after the process environment. Empty disables it.
	EnvFile string
	// Overrides take precedence over every other source.
	Overrides map[string]any
}

// Option configures a Source.
type Option func(*Source)

// WithEnvFile sets the env file path.
func WithEnvFile(path string) Option {
	return func(s *Source) { s.EnvFile = path }
}

// WithOverrides sets explicit values that win over the environment.
func WithOverrides(values map[string]any) Option {
	return func(s *Source) {
		if s.Overrides == nil {
			s.Overrides = make(map[string]any, len(values))
		}
		for k, v := range values {
			s.Overrides[k] = v
		}
	}
}

// Load loads the settings. The env file defaults to DefaultEnvFile.
func Load(opts ...Option) (*Config, error) {
	src := Source{EnvFile: DefaultEnvFile}
	for _, opt := range opts {
		opt(&src)
	}
	return LoadSource(src)
}

// LoadSource loads the settings from the given source.
func LoadSource(src Source) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	fileValues, err := readEnvFile(src.EnvFile)
	if err != nil {
		return nil, err
	}
	if len(fileValues) > 0 {
		if err := v.MergeConfigMap(fileValues); err != nil {
			return nil, fmt.Errorf("failed to merge env file %s: %w", src.EnvFile, err)
		}
	}

	v.AutomaticEnv()

	for key, value := range src.Overrides {
		v.Set(key, value)
	}

	r := &reader{v: v}
	cfg := &Config{
		ProjectName:     r.string(KeyProjectName),
		APIV1Str:        r.string(KeyAPIV1Str),
		DatabaseURL:     r.string(KeyDatabaseURL),
		DBEcho:          r.bool(KeyDBEcho),
		RunMode:         strings.ToLower(r.string(KeyRunMode)),
		Host:            r.string(KeyHost),
		Port:            r.int(KeyPort),
		ShutdownTimeout: r.duration(KeyShutdownTimeout),
		Logger:          getLoggerConfig(r),
		Database:        getDatabaseConfig(r),
	}
	if err := r.err(); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// OpenAPIPath returns the path the OpenAPI document is served on.
func (c *Config) OpenAPIPath() string {
	return strings.TrimRight(c.APIV1Str, "/") + "/openapi.json"
}
