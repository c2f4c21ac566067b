package config

import (
	"strings"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort       string  `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL    string  `env:"DATABASE_URL,required"`
	DBAutoMigrate  bool    `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	LLMAPIKey      string  `env:"LLM_API_KEY"`
	LLMBaseURL     string  `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel       string  `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTemperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.7"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"Cuatro Colores"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	// Emails que se crean con rol admin (facilitadores).
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`
	// Si no esta vacio, el modo personal exige el header X-Access-Code.
	AccessCode         string   `env:"ACCESS_CODE"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	CoachCacheSize       int    `env:"COACH_CACHE_SIZE" envDefault:"256"`
	CoachCacheTTLMinutes int    `env:"COACH_CACHE_TTL_MINUTES" envDefault:"60"`
	// Consultas al LLM por usuario y por hora, separadas por modo (individual / equipo).
	CoachRequestsPerHour int `env:"COACH_REQUESTS_PER_HOUR" envDefault:"30"`
	QuestionnairePath    string `env:"QUESTIONNAIRE_PATH"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.AdminEmails = normalizeList(cfg.AdminEmails, true)
	cfg.CORSAllowedOrigins = normalizeList(cfg.CORSAllowedOrigins, false)
	return &cfg, nil
}

func normalizeList(items []string, lower bool) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if lower {
			item = strings.ToLower(item)
		}
		out = append(out, item)
	}
	return out
}
