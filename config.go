package interviewquiz

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

const (
	DefaultAPIURL         = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel          = "mixtral-8x7b-32768"
	DefaultTemperature    = 0.7
	DefaultMaxTokens      = 2000
	DefaultQuizQuestions  = 5
	MaxQuizQuestions      = 20
	placeholderAPIKey     = "your-groq-api-key-here"
	apiKeyFileName        = "api_key"
	defaultConfigDirName  = "interviewquiz"
	defaultDatabaseFile   = "./quiz.db"
	defaultHistoryLimit   = 10
	defaultSessionSecret  = "change-me-session-secret"
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultSMTPPort       = 587
	defaultListenPort     = "3000"
	defaultShuffleEnabled = true
)

// Config holds everything supplied from outside the process
type Config struct {
	APIKey           string
	APIURL           string
	Model            string
	Temperature      float32
	MaxTokens        int
	DefaultQuestions int
	MaxQuestions     int
	ShuffleFallback  bool

	DatabasePath string
	LLMLogDir    string

	SessionSecret  string
	JWTSecret      string
	RedisAddr      string
	AllowedOrigins []string // browser origins allowed to make credentialed cross-origin calls

	SMTP SMTPConfig
	Port string
}

// SMTPConfig configures the results mailer
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Configured reports whether enough is set to send mail
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.User != ""
}

// LoadConfig reads the configuration from the environment
func LoadConfig() Config {
	return Config{
		APIKey:           strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		APIURL:           getEnv("GROQ_API_URL", DefaultAPIURL),
		Model:            getEnv("GROQ_MODEL", DefaultModel),
		Temperature:      float32(getEnvFloat("GROQ_TEMPERATURE", DefaultTemperature)),
		MaxTokens:        getEnvInt("GROQ_MAX_TOKENS", DefaultMaxTokens),
		DefaultQuestions: getEnvInt("QUIZ_DEFAULT_QUESTIONS", DefaultQuizQuestions),
		MaxQuestions:     getEnvInt("QUIZ_MAX_QUESTIONS", MaxQuizQuestions),
		ShuffleFallback:  getEnvBool("QUIZ_SHUFFLE_FALLBACK", defaultShuffleEnabled),
		DatabasePath:     getEnv("QUIZ_DB_PATH", defaultDatabaseFile),
		LLMLogDir:        os.Getenv("QUIZ_LLM_LOG_DIR"),
		SessionSecret:    getEnv("SESSION_SECRET", defaultSessionSecret),
		JWTSecret:        getEnv("JWT_SECRET", defaultJWTSecret),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		AllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS"),
		SMTP: SMTPConfig{
			Host:     getEnv("EMAIL_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("EMAIL_PORT", defaultSMTPPort),
			User:     os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASS"),
		},
		Port: getEnv("PORT", defaultListenPort),
	}
}

// ValidateSecrets rejects token and session secrets that are unset or still the shipped defaults
func (c Config) ValidateSecrets() error {
	var problems []string
	if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
		problems = append(problems, "JWT_SECRET")
	}
	if c.SessionSecret == "" || c.SessionSecret == defaultSessionSecret {
		problems = append(problems, "SESSION_SECRET")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, " and ") + " must be set to a private value")
	}
	return nil
}

// HasAPIKey reports whether a usable completion API key is configured
func (c Config) HasAPIKey() bool {
	return ValidAPIKey(c.APIKey)
}

// ValidAPIKey rejects empty keys and the shipped placeholder
func ValidAPIKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != placeholderAPIKey
}

// APIKeySource resolves the completion API key for command line tools.
// The first valid value wins: explicit flag, environment, persisted key file, interactive prompt.
type APIKeySource struct {
	Flag    string
	Env     string
	KeyFile string
	Prompt  *bufio.Scanner // nil disables prompting; shared with later stdin reads
	Out     io.Writer
}

// DefaultAPIKeyFile returns the per-user path of the persisted key
func DefaultAPIKeyFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, defaultConfigDirName, apiKeyFileName)
}

// Resolve returns the API key, or "" when none was provided
func (s APIKeySource) Resolve() string {
	if ValidAPIKey(s.Flag) {
		VerboseLog("API key loaded from flag")
		return strings.TrimSpace(s.Flag)
	}
	if ValidAPIKey(s.Env) {
		VerboseLog("API key loaded from environment")
		return strings.TrimSpace(s.Env)
	}
	if s.KeyFile != "" {
		if data, err := os.ReadFile(s.KeyFile); err == nil && ValidAPIKey(string(data)) {
			VerboseLog("API key loaded from %s", s.KeyFile)
			return strings.TrimSpace(string(data))
		}
	}
	if s.Prompt == nil {
		glog.Warning("No API key provided, using fallback questions")
		return ""
	}

	if s.Out != nil {
		fmt.Fprint(s.Out, "Enter your Groq API key (get it from https://console.groq.com/): ")
	}
	if !s.Prompt.Scan() {
		return ""
	}
	key := strings.TrimSpace(s.Prompt.Text())
	if !ValidAPIKey(key) {
		glog.Warning("No API key provided, using fallback questions")
		return ""
	}
	if s.KeyFile != "" {
		if err := SaveAPIKey(s.KeyFile, key); err != nil {
			glog.Errorf("Failed to persist API key: %v", err)
		}
	}
	return key
}

// SaveAPIKey persists the key with owner-only permissions
func SaveAPIKey(path, key string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(key)+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

// ClearAPIKey removes a persisted key
func ClearAPIKey(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove key file: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		glog.Warningf("Ignoring %s=%q: %v", key, val, err)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		glog.Warningf("Ignoring %s=%q: %v", key, val, err)
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		glog.Warningf("Ignoring %s=%q: %v", key, val, err)
		return fallback
	}
	return b
}
