package interviewquiz

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are an expert IT interview question generator. Generate high-quality technical questions with accurate answers."

// Completer turns a prompt into raw completion text
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// QuestionMaker sends prompts to an OpenAI-compatible chat completion endpoint
type QuestionMaker struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewQuestionMaker creates a question maker for the configured endpoint and model
func NewQuestionMaker(cfg Config) *QuestionMaker {
	clientConfig := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if cfg.APIURL != "" {
		clientConfig.BaseURL = baseURL(cfg.APIURL)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &QuestionMaker{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// baseURL accepts either an API root or the full chat completions URL
func baseURL(apiURL string) string {
	u := strings.TrimRight(apiURL, "/")
	return strings.TrimSuffix(u, "/chat/completions")
}

// Complete sends a single chat completion request and returns the message content.
// It never retries.
func (qm *QuestionMaker) Complete(ctx context.Context, prompt string) (string, error) {
	VerboseLog("Completion request: model=%s temperature=%.2f max_tokens=%d", qm.model, qm.temperature, qm.maxTokens)

	resp, err := qm.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: qm.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: qm.temperature,
			MaxTokens:   qm.maxTokens,
		},
	)
	if err != nil {
		return "", classifyCompletionError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &UpstreamError{StatusCode: http.StatusOK, Message: "no choices in response"}
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &UpstreamError{StatusCode: http.StatusOK, Message: "empty message content"}
	}

	VerboseLog("Received completion with %d characters", len(content))
	return content, nil
}

func classifyCompletionError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := strings.TrimSpace(string(reqErr.Body))
		if msg == "" {
			msg = http.StatusText(reqErr.HTTPStatusCode)
		}
		return &UpstreamError{StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}

	return &TransportError{Err: err}
}

// BuildPrompt asks for count questions about topic at the given difficulty as a bare JSON array
func BuildPrompt(topic, difficulty string, count int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Generate exactly %d multiple choice quiz questions about \"%s\" at \"%s\" difficulty level.\n\n", count, topic, difficulty))

	sb.WriteString(fmt.Sprintf("Topics should cover: %s\n\n", TopicDetails(topic)))

	sb.WriteString("Requirements:\n")
	sb.WriteString("- Each question must have exactly 4 options\n")
	sb.WriteString("- correctAnswer is the 0-based index of the correct option\n")
	sb.WriteString("- Include a brief explanation of why the answer is correct\n\n")

	sb.WriteString("Format as JSON array:\n")
	sb.WriteString("[\n")
	sb.WriteString("  {\n")
	sb.WriteString("    \"question\": \"Question text?\",\n")
	sb.WriteString("    \"options\": [\"Option A\", \"Option B\", \"Option C\", \"Option D\"],\n")
	sb.WriteString("    \"correctAnswer\": 0,\n")
	sb.WriteString("    \"explanation\": \"Why this is correct\"\n")
	sb.WriteString("  }\n")
	sb.WriteString("]\n\n")

	sb.WriteString("Only output valid JSON, no additional text.")

	return sb.String()
}
