package config

import (
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/ilyakaznacheev/cleanenv"
	"time"
)

var (
	ErrConfigNotLoaded = errors.New("config not loaded")
)

type Environment string

const (
	Production  Environment = "prod"
	Development Environment = "dev"
)

func (e *Environment) SetValue(s string) error {
	*e = Environment(s)
	if *e != Production && *e != Development {
		return configNotLoadedErr(`only "prod" and "dev" environments are allowed`)
	}
	return nil
}

type Assessment struct {
	RecordMaxAgeYears   int    `yaml:"record_max_age_years" env:"RECORD_MAX_AGE_YEARS" env-default:"5"`
	MeasurementNotesMax int    `yaml:"measurement_notes_max" env:"MEASUREMENT_NOTES_MAX" env-default:"500"`
	Timezone            string `yaml:"timezone" env:"TIMEZONE" env-default:"UTC"`
	DefaultLocale       string `yaml:"default_locale" env:"DEFAULT_LOCALE" env-default:"en"`
}

// Constraints applies the configured overrides on top of the defaults.
func (a Assessment) Constraints() *assessment.Constraints {
	return assessment.DefaultConstraints().With(func(c *assessment.Constraints) {
		if a.RecordMaxAgeYears > 0 {
			c.RecordMaxAgeYears = a.RecordMaxAgeYears
		}
		if a.MeasurementNotesMax > 0 {
			c.MeasurementNotesMax = a.MeasurementNotesMax
		}
	})
}

// Location is the zone "today" is computed in for date validation.
func (a Assessment) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, configNotLoadedErr("invalid assessment timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

type Config struct {
	App struct {
		Env Environment `yaml:"env" env:"ENV" env-required:""`
	} `yaml:"app" env-prefix:"APP_" env-required:""`

	Server struct {
		Host string `yaml:"host" env:"HOST" env-default:"localhost"`
		Port int    `yaml:"port" env:"PORT" env-default:"8080"`
	} `yaml:"server" env-prefix:"SERVER_"`

	DB struct {
		DSN string `yaml:"dsn" env:"DSN" env-required:""`
	} `yaml:"db" env-prefix:"DB_" env-required:""`

	JWT struct {
		AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"2h"`
		RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"24h"`
		Secret          string        `yaml:"secret" env:"SECRET" env-required:""`
	} `yaml:"jwt" env-prefix:"JWT_" env-required:""`

	Assessment Assessment `yaml:"assessment" env-prefix:"ASSESSMENT_"`
}

func Load(filePath string) (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadConfig(filePath, cfg); err != nil {
		return nil, configNotLoadedErr("config not loaded: %w", err)
	}

	// yaml values skip the env setter
	if err := cfg.App.Env.SetValue(string(cfg.App.Env)); err != nil {
		return nil, err
	}

	if _, err := cfg.Assessment.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad(filePath string) *Config {
	cfg, err := Load(filePath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func configNotLoadedErr(format string, args ...any) error {
	return errors.Join(fmt.Errorf(format, args...), ErrConfigNotLoaded)
}
