package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuracion del servicio. Se carga una vez en main y
// se pasa explicitamente a los constructores; nunca como estado ambiente.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	LLMAPIKey        string  `env:"LLM_API_KEY,required"`
	LLMBaseURL       string  `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel         string  `env:"LLM_MODEL" envDefault:"gpt-5.1"`
	LLMFallbackModel string  `env:"LLM_FALLBACK_MODEL" envDefault:"gpt-4o"`
	LLMMaxTokens     int     `env:"LLM_MAX_TOKENS" envDefault:"16384"`
	LLMTemperature   float64 `env:"LLM_TEMPERATURE" envDefault:"0.1"`
	MaxPromptTokens  int     `env:"MAX_PROMPT_TOKENS" envDefault:"8000"`

	PDFReductionEnabled bool    `env:"PDF_REDUCTION_ENABLED" envDefault:"true"`
	PDFMaxFileSizeMB    float64 `env:"PDF_MAX_FILE_SIZE_MB" envDefault:"50"`
	PDFKeepFirstPages   int     `env:"PDF_KEEP_FIRST_PAGES" envDefault:"2"`
	PDFKeepLastPages    int     `env:"PDF_KEEP_LAST_PAGES" envDefault:"2"`

	MaxUploadSizeMB int `env:"MAX_UPLOAD_SIZE_MB" envDefault:"100"`

	RedisAddr              string `env:"REDIS_ADDR"`
	RedisPassword          string `env:"REDIS_PASSWORD"`
	RedisDB                int    `env:"REDIS_DB" envDefault:"0"`
	RateLimitWindowMinutes int    `env:"RATE_LIMIT_WINDOW_MINUTES" envDefault:"1"`
	RateLimitMaxRequests   int    `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"6"`
}

// LoadConfig carga la configuracion desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
