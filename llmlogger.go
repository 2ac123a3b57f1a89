package interviewquiz

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger writes the full transcript of one quiz generation to its own file
type LLMLogger struct {
	file   *os.File
	mu     sync.Mutex
	quizID string
}

// NewLLMLogger creates <dir>/<quizID>.log and writes the request header
func NewLLMLogger(dir, quizID string, req GenerationRequest) (*LLMLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", quizID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &LLMLogger{
		file:   file,
		quizID: quizID,
	}

	logger.Logf("=== Quiz Generation Log ===\n")
	logger.Logf("Quiz ID: %s\n", quizID)
	logger.Logf("Topic: %s\n", req.Topic)
	logger.Logf("Difficulty: %s\n", req.Difficulty)
	logger.Logf("Number of Questions: %d\n", req.Count)
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger, nil
}

// Logf writes a timestamped entry and syncs the file
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.logf(format, args...)
}

func (ll *LLMLogger) logf(format string, args ...interface{}) {
	if ll.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(ll.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	ll.file.Sync()
}

// LogLLMRequest logs the prompt sent to the completion API
func (ll *LLMLogger) LogLLMRequest(prompt string) {
	ll.Logf("=== LLM REQUEST ===\n")
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("===================\n\n")
}

// LogLLMResponse logs the raw completion text
func (ll *LLMLogger) LogLLMResponse(response string) {
	ll.Logf("=== LLM RESPONSE ===\n")
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("====================\n\n")
}

// LogOutcome records where the final questions came from
func (ll *LLMLogger) LogOutcome(source QuizSource, count int, reason string) {
	if reason == "" {
		ll.Logf("Outcome: %d questions from %s\n", count, source)
		return
	}
	ll.Logf("Outcome: %d questions from %s (%s)\n", count, source, reason)
}

// Close writes the footer and closes the file
func (ll *LLMLogger) Close() error {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file == nil {
		return nil
	}
	ll.logf("=== Quiz Generation Complete ===\n")
	ll.logf("Completed: %s\n", time.Now().Format(time.RFC3339))
	ll.logf("================================\n")
	err := ll.file.Close()
	ll.file = nil
	return err
}
