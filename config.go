package acestudy

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Temperature is the sampling temperature used for every provider. It is kept
// low so exam questions stay consistent.
const Temperature float32 = 0.5

// Provider names accepted in PROVIDER_ORDER
const (
	ProviderOpenRouter = "openrouter"
	ProviderGroq       = "groq"
	ProviderGemini     = "gemini"
)

// ProviderConfig holds the endpoint and credential of one provider
type ProviderConfig struct {
	Name    string
	APIKey  string `json:"-"`
	BaseURL string
	Model   string
	// Headers are sent with every request, e.g. OpenRouter attribution
	Headers map[string]string
}

// Config is the process configuration, read once from the environment and
// injected into the components that need it
type Config struct {
	OpenRouter ProviderConfig
	Groq       ProviderConfig
	Gemini     ProviderConfig

	// ProviderOrder is the fallback chain, highest priority first
	ProviderOrder   []string
	ProviderTimeout time.Duration

	Port           string
	SessionSecret  string
	AttemptStore   string // sqlite|redis
	SQLiteDSN      string
	RedisAddr      string
	AttemptTTL     time.Duration
	AllowedOrigins []string
	TranscriptDir  string
	Verbose        bool
}

// ConfigFromEnv builds a Config from environment variables
func ConfigFromEnv() Config {
	return Config{
		OpenRouter: ProviderConfig{
			Name:    ProviderOpenRouter,
			APIKey:  os.Getenv("OPENROUTER_API_KEY"),
			BaseURL: getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:   getEnvOrDefault("OPENROUTER_MODEL", "deepseek/deepseek-chat"),
			Headers: map[string]string{
				"HTTP-Referer": getEnvOrDefault("OPENROUTER_REFERER", "https://acestudy-ai.vercel.app"),
				"X-Title":      getEnvOrDefault("OPENROUTER_TITLE", "AceStudy Quiz Generator"),
			},
		},
		Groq: ProviderConfig{
			Name:    ProviderGroq,
			APIKey:  os.Getenv("GROQ_API_KEY"),
			BaseURL: getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:   getEnvOrDefault("GROQ_MODEL", "llama-3.1-8b-instant"),
		},
		Gemini: ProviderConfig{
			Name:    ProviderGemini,
			APIKey:  getEnvOrDefault("GEMINI_API_KEY", os.Getenv("API_KEY")),
			BaseURL: os.Getenv("GEMINI_BASE_URL"),
			Model:   getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		},

		ProviderOrder:   csvOrDefault("PROVIDER_ORDER", "openrouter,groq,gemini"),
		ProviderTimeout: time.Duration(intOrDefault("PROVIDER_TIMEOUT", 60)) * time.Second,

		Port:           getEnvOrDefault("PORT", "8180"),
		SessionSecret:  getEnvOrDefault("SESSION_SECRET", "acestudy-dev-session-key"),
		AttemptStore:   getEnvOrDefault("ATTEMPT_STORE", "sqlite"),
		SQLiteDSN:      getEnvOrDefault("SQLITE_DSN", "file:acestudy?mode=memory&cache=shared"),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		AttemptTTL:     time.Duration(intOrDefault("ATTEMPT_TTL", 180)) * time.Minute,
		AllowedOrigins: csvOrDefault("CORS_ALLOWED_ORIGINS", "*"),
		TranscriptDir:  os.Getenv("TRANSCRIPT_DIR"),
		Verbose:        boolOrDefault("VERBOSE", false),
	}
}

// Provider returns the configuration of the named provider
func (c Config) Provider(name string) (ProviderConfig, bool) {
	switch name {
	case ProviderOpenRouter:
		return c.OpenRouter, true
	case ProviderGroq:
		return c.Groq, true
	case ProviderGemini:
		return c.Gemini, true
	}
	return ProviderConfig{}, false
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func intOrDefault(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func boolOrDefault(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func csvOrDefault(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnvOrDefault(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
