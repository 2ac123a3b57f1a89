package interviewquiz

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"GROQ_API_KEY", "GROQ_API_URL", "GROQ_MODEL", "GROQ_TEMPERATURE", "GROQ_MAX_TOKENS",
		"QUIZ_DEFAULT_QUESTIONS", "QUIZ_MAX_QUESTIONS", "QUIZ_SHUFFLE_FALLBACK", "PORT", "EMAIL_USER"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.InDelta(t, 0.7, cfg.Temperature, 0.0001)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, 5, cfg.DefaultQuestions)
	assert.Equal(t, 20, cfg.MaxQuestions)
	assert.True(t, cfg.ShuffleFallback)
	assert.Equal(t, "3000", cfg.Port)
	assert.False(t, cfg.HasAPIKey())
	assert.False(t, cfg.SMTP.Configured())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("GROQ_MODEL", "llama3-8b-8192")
	t.Setenv("GROQ_TEMPERATURE", "0.2")
	t.Setenv("QUIZ_MAX_QUESTIONS", "not-a-number")
	t.Setenv("QUIZ_SHUFFLE_FALLBACK", "false")
	t.Setenv("EMAIL_USER", "quiz@example.com")
	t.Setenv("EMAIL_PORT", "2525")

	cfg := LoadConfig()
	assert.True(t, cfg.HasAPIKey())
	assert.Equal(t, "llama3-8b-8192", cfg.Model)
	assert.InDelta(t, 0.2, cfg.Temperature, 0.0001)
	assert.Equal(t, MaxQuizQuestions, cfg.MaxQuestions)
	assert.False(t, cfg.ShuffleFallback)
	assert.True(t, cfg.SMTP.Configured())
	assert.Equal(t, 2525, cfg.SMTP.Port)
}

func TestValidAPIKey(t *testing.T) {
	assert.False(t, ValidAPIKey(""))
	assert.False(t, ValidAPIKey("   "))
	assert.False(t, ValidAPIKey(placeholderAPIKey))
	assert.True(t, ValidAPIKey("gsk_abc"))
}

func TestAPIKeySourceOrder(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "api_key")
	require.NoError(t, SaveAPIKey(keyFile, "from-file"))

	assert.Equal(t, "from-flag", APIKeySource{Flag: "from-flag", Env: "from-env", KeyFile: keyFile}.Resolve())
	assert.Equal(t, "from-env", APIKeySource{Env: "from-env", KeyFile: keyFile}.Resolve())
	assert.Equal(t, "from-file", APIKeySource{Env: placeholderAPIKey, KeyFile: keyFile}.Resolve())

	require.NoError(t, ClearAPIKey(keyFile))
	require.NoError(t, ClearAPIKey(keyFile), "clearing twice is not an error")
	assert.Equal(t, "", APIKeySource{KeyFile: keyFile}.Resolve())
}

func TestAPIKeySourcePromptPersistsKey(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "nested", "api_key")
	var out bytes.Buffer

	key := APIKeySource{KeyFile: keyFile, Prompt: bufio.NewScanner(strings.NewReader("  prompted-key \n")), Out: &out}.Resolve()
	assert.Equal(t, "prompted-key", key)
	assert.Contains(t, out.String(), "Enter your Groq API key")

	data, err := os.ReadFile(keyFile)
	require.NoError(t, err)
	assert.Equal(t, "prompted-key\n", string(data))

	info, err := os.Stat(keyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestAPIKeySourceEmptyPrompt(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "api_key")

	key := APIKeySource{KeyFile: keyFile, Prompt: bufio.NewScanner(strings.NewReader("\n"))}.Resolve()
	assert.Equal(t, "", key)
	_, err := os.Stat(keyFile)
	assert.True(t, os.IsNotExist(err))
}

func TestAPIKeySourcePromptLeavesRestOfInput(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader("gsk_typed\nA\nB\n"))

	key := APIKeySource{Prompt: scanner}.Resolve()
	assert.Equal(t, "gsk_typed", key)

	require.True(t, scanner.Scan())
	assert.Equal(t, "A", scanner.Text())
	require.True(t, scanner.Scan())
	assert.Equal(t, "B", scanner.Text())
}

func TestLoadConfigRejectsDefaultSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_SECRET", "")

	err := LoadConfig().ValidateSecrets()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "SESSION_SECRET")

	t.Setenv("JWT_SECRET", "a-private-jwt-secret")
	err = LoadConfig().ValidateSecrets()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "JWT_SECRET")

	t.Setenv("SESSION_SECRET", "a-private-session-secret")
	assert.NoError(t, LoadConfig().ValidateSecrets())
}

func TestValidateSecretsRejectsEmpty(t *testing.T) {
	assert.Error(t, Config{SessionSecret: "s"}.ValidateSecrets())
	assert.Error(t, Config{JWTSecret: "j"}.ValidateSecrets())
	assert.NoError(t, Config{JWTSecret: "j", SessionSecret: "s"}.ValidateSecrets())
}

func TestLoadConfigAllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	assert.Empty(t, LoadConfig().AllowedOrigins)

	t.Setenv("CORS_ALLOWED_ORIGINS", " https://quiz.example.com, ,http://localhost:3000 ")
	assert.Equal(t, []string{"https://quiz.example.com", "http://localhost:3000"}, LoadConfig().AllowedOrigins)
}
