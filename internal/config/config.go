package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	XClientID     string `env:"X_CLIENT_ID"`
	XClientSecret string `env:"X_CLIENT_SECRET"`
	XCallbackURL  string `env:"X_CALLBACK_URL" envDefault:"https://clawdx.ai/api/auth/x/callback"`

	SiteBaseURL       string `env:"SITE_BASE_URL" envDefault:"https://clawdx.ai"`
	SessionSecret     string `env:"SESSION_SECRET"`
	SessionTTLMinutes int    `env:"SESSION_TTL_MINUTES" envDefault:"60"`

	AdminKeyHash string `env:"ADMIN_KEY_HASH"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
