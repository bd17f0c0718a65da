package config

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// Config is the full environment-driven configuration. Every key can be
// overridden by the environment variable named in its tag.
type Config struct {
	Port string `koanf:"PORT"`
	Env  string `koanf:"APP_ENV"`

	MongoURI      string `koanf:"MONGODB_URI"`
	MongoUser     string `koanf:"MONGODB_USER"`
	MongoPassword string `koanf:"MONGODB_PASSWORD"`
	MongoDBName   string `koanf:"MONGODB_DB_NAME"`

	SessionSecret string `koanf:"SESSION_SECRET"`
	JWTSecret     string `koanf:"JWT_SECRET"`
	JWTIssuer     string `koanf:"JWT_ISSUER"`
}

// Production reports whether the process runs with production hardening;
// auth cookies are marked Secure only then, so local http development keeps
// working.
func (c Config) Production() bool {
	return c.Env == "production"
}

func defaults() Config {
	return Config{
		Port:        "8080",
		Env:         "development",
		MongoURI:    "mongodb://localhost:27017/animeverse",
		MongoDBName: "animeverse",
		JWTIssuer:   "animeverse",
	}
}

// Load reads defaults, overlays the process environment, and generates
// random secrets for any that are unset. Generated secrets mean sessions and
// tokens do not survive a restart; pin SESSION_SECRET and JWT_SECRET to keep
// them valid across deploys.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = uuid.NewString()
		log.Warn().Msg("SESSION_SECRET not set, generated a random one; sessions will not survive a restart")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		log.Warn().Msg("JWT_SECRET not set, generated a random one; tokens will not survive a restart")
	}

	return cfg, nil
}
